// Package authors maps commit identities to stored author records.
package authors

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pescuma/thanks/lib/consoles"
	"github.com/pescuma/thanks/lib/mailmap"
	"github.com/pescuma/thanks/lib/model"
	"github.com/pescuma/thanks/lib/repos"
	"github.com/pescuma/thanks/lib/storages"
	"github.com/pescuma/thanks/lib/utils"
)

var ErrConsistency = errors.New("authors were not persisted")

type Options struct {
	// ChunkSize is the maximum number of identities sent to the store in one
	// query. Defaults to 10000.
	ChunkSize int
}

// Store canonicalizes identities with a mailmap and keeps a cache of the
// authors already loaded from or written to the storage. It is safe for
// concurrent use.
type Store struct {
	console consoles.Console
	storage storages.Storage
	mailmap *mailmap.Mailmap
	opts    Options

	mutex sync.Mutex
	cache map[model.Identity]*model.Author
}

func NewStore(console consoles.Console, storage storages.Storage, mm *mailmap.Mailmap, opts *Options) *Store {
	o := Options{
		ChunkSize: 10000,
	}
	if opts != nil && opts.ChunkSize > 0 {
		o.ChunkSize = opts.ChunkSize
	}

	return &Store{
		console: console,
		storage: storage,
		mailmap: mm,
		opts:    o,
		cache:   map[model.Identity]*model.Author{},
	}
}

func (s *Store) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return len(s.cache)
}

func (s *Store) GetOrCreate(name string, email string) (*model.Author, error) {
	result, err := s.GetOrCreateBatch([]model.Identity{model.NewIdentity(name, email)})
	if err != nil {
		return nil, err
	}

	return result[0], nil
}

// GetOrCreateBatch returns one author per identity, in the same order. The
// identities are canonicalized first, so different raw identities can return
// the same author.
func (s *Store) GetOrCreateBatch(ids []model.Identity) ([]*model.Author, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	canonical := lo.Map(ids, func(id model.Identity, _ int) model.Identity {
		return s.mailmap.ResolveIdentity(id)
	})

	missing := lo.Uniq(lo.Filter(canonical, func(id model.Identity, _ int) bool {
		_, ok := s.cache[id]
		return !ok
	}))

	for _, chunk := range lo.Chunk(missing, s.opts.ChunkSize) {
		err := s.loadChunk(chunk)
		if err != nil {
			return nil, err
		}
	}

	return lo.Map(canonical, func(id model.Identity, _ int) *model.Author {
		return s.cache[id]
	}), nil
}

func (s *Store) loadChunk(ids []model.Identity) error {
	var found []*model.Author

	err := s.storage.Transaction(func(tx storages.Storage) error {
		existing, err := tx.FindAuthors(ids)
		if err != nil {
			return err
		}

		known := lo.SliceToMap(existing, func(a *model.Author) (model.Identity, bool) {
			return a.Identity(), true
		})
		absent := lo.Filter(ids, func(id model.Identity, _ int) bool {
			return !known[id]
		})

		if len(absent) == 0 {
			found = existing
			return nil
		}

		err = tx.CreateAuthorsIfAbsent(absent)
		if err != nil {
			return err
		}

		found, err = tx.FindAuthors(ids)
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "error loading %v authors", len(ids))
	}

	exact := lo.SliceToMap(found, func(a *model.Author) (model.Identity, *model.Author) {
		return a.Identity(), a
	})
	// Databases with case-insensitive collations return the stored spelling
	folded := lo.SliceToMap(found, func(a *model.Author) (model.Identity, *model.Author) {
		return foldIdentity(a.Identity()), a
	})

	resolved := make(map[model.Identity]*model.Author, len(ids))
	for _, id := range ids {
		a, ok := exact[id]
		if !ok {
			a, ok = folded[foldIdentity(id)]
		}
		if !ok {
			return errors.Wrapf(ErrConsistency, "%v", id)
		}

		resolved[id] = a
	}

	for id, a := range resolved {
		s.cache[id] = a
	}

	return nil
}

func foldIdentity(id model.Identity) model.Identity {
	return model.NewIdentity(strings.ToLower(id.Name), strings.ToLower(id.Email))
}

// WarmCache loads the authors of every commit in the repository with batched
// queries.
func (s *Store) WarmCache(repo repos.Repository) error {
	s.console.Printf("Loading authors from %v...\n", repo.Name())

	bar := utils.NewProgressBar(-1, repo.Name())

	ids := map[model.Identity]bool{}
	err := repo.ForEachCommit(func(_ string, author model.Identity) error {
		ids[author] = true
		_ = bar.Add(1)
		return nil
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	_, err = s.GetOrCreateBatch(lo.Keys(ids))
	if err != nil {
		return err
	}

	s.console.Printf("%v authors loaded\n", s.Len())

	return nil
}
