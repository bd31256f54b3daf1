// Package releases discovers the releases of a project from its tags.
package releases

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/pescuma/thanks/lib/model"
)

const earlyReleasePrefix = "release-"

// Order returns the tags that look like releases, oldest first. Tags named
// release-* come first, then the ones that parse as semantic versions. Other
// tags are returned in skipped.
func Order(tags []string) (ordered []string, skipped []string) {
	var early []string
	type versionTag struct {
		tag     string
		version *semver.Version
	}
	var versions []versionTag

	for _, tag := range tags {
		if strings.HasPrefix(tag, earlyReleasePrefix) {
			early = append(early, tag)
			continue
		}

		v, err := semver.NewVersion(tag)
		if err != nil {
			skipped = append(skipped, tag)
			continue
		}

		versions = append(versions, versionTag{tag: tag, version: v})
	}

	sort.Strings(early)
	sort.SliceStable(versions, func(i, j int) bool {
		if c := versions[i].version.Compare(versions[j].version); c != 0 {
			return c < 0
		}
		return versions[i].tag < versions[j].tag
	})

	ordered = append(ordered, early...)
	for _, v := range versions {
		ordered = append(ordered, v.tag)
	}

	return ordered, skipped
}

type ChainOptions struct {
	// LinkTemplate builds the link of each release. {version} is replaced by
	// the release version.
	LinkTemplate string
	// IsAncestor reports whether the first ref is part of the history of the
	// second. When nil, releases are linked by version line only.
	IsAncestor func(ancestor string, descendant string) (bool, error)
}

// Chain builds the releases of the project from tags already in release order.
// Each release points to the release its commit range starts from (see
// Predecessor), and a last unreleased release collects the commits after the
// newest release in the history of the project branch.
func Chain(project *model.Project, ordered []string, opts *ChainOptions) ([]*model.Release, error) {
	if opts == nil {
		opts = &ChainOptions{}
	}

	result := make([]*model.Release, 0, len(ordered)+1)

	for i, tag := range ordered {
		previous, err := Predecessor(ordered[:i], tag, opts.IsAncestor)
		if err != nil {
			return nil, err
		}

		result = append(result, &model.Release{
			ProjectID: project.ID,
			Version:   tag,
			Ref:       tag,
			Previous:  previous,
			Position:  i,
			Visible:   true,
			Link:      link(opts.LinkTemplate, tag),
		})
	}

	previous, err := Predecessor(ordered, project.HeadRef(), opts.IsAncestor)
	if err != nil {
		return nil, err
	}

	result = append(result, &model.Release{
		ProjectID: project.ID,
		Version:   model.UnreleasedVersion,
		Ref:       project.HeadRef(),
		Previous:  previous,
		Position:  len(ordered),
		Visible:   true,
		Link:      link(opts.LinkTemplate, model.UnreleasedVersion),
	})

	return result, nil
}

// Predecessor picks, among the earlier releases (oldest first), the one the
// commit range of ref starts from. The newest earlier release in the history
// of ref wins. Without history information, or when none is an ancestor, the
// version line decides: a patch release x.y.z follows the newest earlier x.y
// release and any other release follows the newest earlier x.y.0 (or
// release-*) one. Returns "" when there are no earlier releases.
func Predecessor(earlier []string, ref string, isAncestor func(string, string) (bool, error)) (string, error) {
	if len(earlier) == 0 {
		return "", nil
	}

	if isAncestor != nil {
		for i := len(earlier) - 1; i >= 0; i-- {
			ok, err := isAncestor(earlier[i], ref)
			if err != nil {
				return "", err
			}
			if ok {
				return earlier[i], nil
			}
		}
	}

	return byVersionLine(earlier, ref), nil
}

func byVersionLine(earlier []string, ref string) string {
	v, err := semver.NewVersion(ref)
	patch := err == nil && v.Patch() > 0

	for i := len(earlier) - 1; i >= 0; i-- {
		ev, err := semver.NewVersion(earlier[i])

		if patch {
			if err == nil && ev.Major() == v.Major() && ev.Minor() == v.Minor() {
				return earlier[i]
			}
		} else if err != nil || ev.Patch() == 0 {
			return earlier[i]
		}
	}

	return earlier[len(earlier)-1]
}

func link(template string, version string) string {
	if template == "" {
		return ""
	}
	return strings.ReplaceAll(template, "{version}", version)
}
