package model

// UnreleasedVersion is the version label of the synthetic release that collects
// commits not yet part of any tag.
const UnreleasedVersion = "master"

type Release struct {
	ID        ID
	ProjectID ID
	Version   string

	// Ref is the revision that marks the release, usually a tag.
	Ref string
	// Previous is the version of the release used as the lower bound when
	// computing commit ranges. Empty for the first release.
	Previous string
	// Position orders the releases of a project, oldest first.
	Position int

	Visible bool
	Link    string
}

func (r *Release) IsUnreleased() bool {
	return r.Version == UnreleasedVersion
}

func (r *Release) RevisionRef() string {
	if r.Ref == "" {
		return r.Version
	}
	return r.Ref
}
