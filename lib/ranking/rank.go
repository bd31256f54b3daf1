// Package ranking turns commit counts into ordered contributor lists.
package ranking

import (
	"sort"

	"github.com/samber/lo"

	"github.com/pescuma/thanks/lib/mailmap"
	"github.com/pescuma/thanks/lib/model"
	"github.com/pescuma/thanks/lib/repos"
)

type AuthorCount struct {
	Author  string
	Email   string
	Commits int
}

type Entry struct {
	Rank    int    `json:"rank"`
	Author  string `json:"author"`
	Email   string `json:"email,omitempty"`
	Commits int    `json:"commits"`
}

// Rank sorts by commits, most first, and assigns competition ranks: tied
// entries share a rank and the next entry gets its position (1, 2, 2, 4).
// Ties are listed in display order, so the result does not depend on the input
// order.
func Rank(counts []*AuthorCount) []*Entry {
	sorted := make([]*AuthorCount, len(counts))
	copy(sorted, counts)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Commits != b.Commits {
			return a.Commits > b.Commits
		}
		if c := CompareForDisplay(a.Author, b.Author); c != 0 {
			return c < 0
		}
		if c := CompareForDisplay(a.Email, b.Email); c != 0 {
			return c < 0
		}
		if a.Author != b.Author {
			return a.Author < b.Author
		}
		return a.Email < b.Email
	})

	result := make([]*Entry, len(sorted))

	lastRank := 0
	lastCommits := -1
	for i, c := range sorted {
		rank := i + 1
		if c.Commits == lastCommits {
			rank = lastRank
		}

		result[i] = &Entry{
			Rank:    rank,
			Author:  c.Author,
			Email:   c.Email,
			Commits: c.Commits,
		}

		lastRank = rank
		lastCommits = c.Commits
	}

	return result
}

func CountByName(counts map[string]int) []*Entry {
	return Rank(lo.MapToSlice(counts, func(name string, commits int) *AuthorCount {
		return &AuthorCount{Author: name, Commits: commits}
	}))
}

// ScoreRepository counts the commits of every canonical author in the
// repository, without using a store.
func ScoreRepository(repo repos.Repository, mm *mailmap.Mailmap) ([]*Entry, error) {
	counts := map[model.Identity]int{}

	err := repo.ForEachCommit(func(_ string, author model.Identity) error {
		counts[mm.ResolveIdentity(author)]++
		return nil
	})
	if err != nil {
		return nil, err
	}

	return Rank(lo.MapToSlice(counts, func(id model.Identity, commits int) *AuthorCount {
		return &AuthorCount{Author: id.Name, Email: id.Email, Commits: commits}
	})), nil
}
