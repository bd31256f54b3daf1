// Package history computes which commits belong to a release.
package history

import (
	"sort"

	"github.com/hashicorp/go-set/v2"

	"github.com/pescuma/thanks/lib/repos"
)

type RangeWalker struct {
	repo repos.Repository
}

func NewRangeWalker(repo repos.Repository) *RangeWalker {
	return &RangeWalker{
		repo: repo,
	}
}

// CommitsBetween returns the commits reachable from exactly one of the two
// refs. When the release descends from the previous release this is the usual
// previous..release range; when the histories diverged it also includes the
// commits only the previous release had.
func (w *RangeWalker) CommitsBetween(previousRef string, releaseRef string) ([]string, error) {
	added, err := w.repo.Ancestors(releaseRef, previousRef)
	if err != nil {
		return nil, err
	}

	removed, err := w.repo.Ancestors(previousRef, releaseRef)
	if err != nil {
		return nil, err
	}

	result := set.From(added)
	result.InsertSlice(removed)

	return sorted(result), nil
}

// CommitsUpTo returns every ancestor of the ref, including itself.
func (w *RangeWalker) CommitsUpTo(releaseRef string) ([]string, error) {
	commits, err := w.repo.Ancestors(releaseRef)
	if err != nil {
		return nil, err
	}

	return sorted(set.From(commits)), nil
}

func sorted(s *set.Set[string]) []string {
	result := s.Slice()
	sort.Strings(result)
	return result
}
