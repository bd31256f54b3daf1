package authors

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/bloomberg/go-testgroup"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pescuma/thanks/lib/consoles"
	"github.com/pescuma/thanks/lib/mailmap"
	"github.com/pescuma/thanks/lib/model"
	"github.com/pescuma/thanks/lib/repos/repotest"
	"github.com/pescuma/thanks/lib/storages"
	"github.com/pescuma/thanks/lib/storages/orm"
)

const testMailmap = `Bob Jones <bob@example.com> <bobby@old.example.com>
Carol <carol@example.com>`

func newTestStorage(t *testgroup.T) storages.Storage {
	s, err := orm.NewGormStorage(orm.WithSqlite(filepath.Join(t.TempDir(), "thanks.sqlite")), consoles.NewDiscardConsole())
	t.Require.NoError(err)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

// failingStorage wraps a storage and breaks some operations.
type failingStorage struct {
	storages.Storage
	failCreate bool
	hideFound  bool
}

func (f *failingStorage) Transaction(fn func(tx storages.Storage) error) error {
	return f.Storage.Transaction(func(tx storages.Storage) error {
		return fn(&failingStorage{Storage: tx, failCreate: f.failCreate, hideFound: f.hideFound})
	})
}

func (f *failingStorage) CreateAuthorsIfAbsent(ids []model.Identity) error {
	if f.failCreate {
		return errors.New("disk full")
	}
	return f.Storage.CreateAuthorsIfAbsent(ids)
}

func (f *failingStorage) FindAuthors(ids []model.Identity) ([]*model.Author, error) {
	if f.hideFound {
		return nil, nil
	}
	return f.Storage.FindAuthors(ids)
}

func TestStore(t *testing.T) {
	testgroup.RunInParallel(t, &StoreTests{})
}

type StoreTests struct {
}

func (g *StoreTests) CreatesOnce(t *testgroup.T) {
	s := NewStore(consoles.NewDiscardConsole(), newTestStorage(t), nil, nil)

	a1, err := s.GetOrCreate("Alice", "alice@example.com")
	t.Require.NoError(err)
	a2, err := s.GetOrCreate("Alice", "alice@example.com")
	t.Require.NoError(err)

	t.Equal(a1.ID, a2.ID)
	t.Equal("Alice", a1.Name)
	t.True(a1.Visible)
	t.Equal(1, s.Len())
}

func (g *StoreTests) CanonicalizesWithMailmap(t *testgroup.T) {
	s := NewStore(consoles.NewDiscardConsole(), newTestStorage(t), mailmap.Parse(testMailmap), nil)

	old, err := s.GetOrCreate("Bobby", "bobby@old.example.com")
	t.Require.NoError(err)
	current, err := s.GetOrCreate("Bob Jones", "bob@example.com")
	t.Require.NoError(err)

	t.Equal(old.ID, current.ID)
	t.Equal(model.NewIdentity("Bob Jones", "bob@example.com"), old.Identity())
}

func (g *StoreTests) BatchKeepsInputOrder(t *testgroup.T) {
	s := NewStore(consoles.NewDiscardConsole(), newTestStorage(t), mailmap.Parse(testMailmap), &Options{ChunkSize: 2})

	ids := []model.Identity{
		model.NewIdentity("Zed", "zed@example.com"),
		model.NewIdentity("Bobby", "bobby@old.example.com"),
		model.NewIdentity("Alice", "alice@example.com"),
		model.NewIdentity("Bob Jones", "bob@example.com"),
		model.NewIdentity("C", "carol@example.com"),
		model.NewIdentity("Zed", "zed@example.com"),
	}

	result, err := s.GetOrCreateBatch(ids)
	t.Require.NoError(err)
	t.Require.Len(result, len(ids))

	t.Equal("Zed", result[0].Name)
	t.Equal("Bob Jones", result[1].Name)
	t.Equal("Alice", result[2].Name)
	t.Equal(result[1].ID, result[3].ID)
	t.Equal(model.NewIdentity("Carol", "carol@example.com"), result[4].Identity())
	t.Equal(result[0].ID, result[5].ID)
	t.Equal(4, s.Len())
}

func (g *StoreTests) SharesRecordsBetweenStores(t *testgroup.T) {
	storage := newTestStorage(t)

	s1 := NewStore(consoles.NewDiscardConsole(), storage, nil, nil)
	s2 := NewStore(consoles.NewDiscardConsole(), storage, nil, nil)

	a1, err := s1.GetOrCreate("Alice", "alice@example.com")
	t.Require.NoError(err)
	a2, err := s2.GetOrCreate("Alice", "alice@example.com")
	t.Require.NoError(err)

	t.Equal(a1.ID, a2.ID)
}

func (g *StoreTests) StoreErrorDoesNotFillCache(t *testgroup.T) {
	storage := &failingStorage{Storage: newTestStorage(t), failCreate: true}
	s := NewStore(consoles.NewDiscardConsole(), storage, nil, nil)

	_, err := s.GetOrCreate("Alice", "alice@example.com")
	t.ErrorContains(err, "disk full")
	t.Equal(0, s.Len())

	storage.failCreate = false

	a, err := s.GetOrCreate("Alice", "alice@example.com")
	t.Require.NoError(err)
	t.NotZero(a.ID)
}

func (g *StoreTests) MissingAfterCreateIsConsistencyError(t *testgroup.T) {
	storage := &failingStorage{Storage: newTestStorage(t), hideFound: true}
	s := NewStore(consoles.NewDiscardConsole(), storage, nil, nil)

	_, err := s.GetOrCreate("Alice", "alice@example.com")
	t.True(errors.Is(err, ErrConsistency))
	t.Equal(0, s.Len())
}

func (g *StoreTests) WarmCache(t *testgroup.T) {
	b := repotest.NewBuilder(t.T)
	c1 := b.Commit("Alice", "alice@example.com")
	c2 := b.Commit("Bobby", "bobby@old.example.com", c1)
	b.Commit("Dangling", "dangling@example.com", c2)
	b.Branch("master", c2)

	storage := newTestStorage(t)
	s := NewStore(consoles.NewDiscardConsole(), storage, mailmap.Parse(testMailmap), nil)

	t.Require.NoError(s.WarmCache(b.Repository()))
	t.Equal(2, s.Len())

	dangling, err := storage.FindAuthors([]model.Identity{model.NewIdentity("Dangling", "dangling@example.com")})
	t.Require.NoError(err)
	t.Empty(dangling)
}

func (g *StoreTests) ConcurrentCallsShareRecords(t *testgroup.T) {
	storage := newTestStorage(t)
	s := NewStore(consoles.NewDiscardConsole(), storage, mailmap.Parse(testMailmap), &Options{ChunkSize: 3})

	ids := []model.Identity{
		model.NewIdentity("Alice", "alice@example.com"),
		model.NewIdentity("Bobby", "bobby@old.example.com"),
		model.NewIdentity("Bob Jones", "bob@example.com"),
		model.NewIdentity("C", "carol@example.com"),
		model.NewIdentity("Dave", "dave@example.com"),
		model.NewIdentity("Erin", "erin@example.com"),
	}

	const routines = 8

	results := make([][]*model.Author, routines)
	errs := make([]error, routines)

	var wg sync.WaitGroup
	for i := 0; i < routines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			// Each goroutine asks for an overlapping window, rotated
			batch := append(append([]model.Identity{}, ids[i%len(ids):]...), ids[:i%len(ids)]...)
			batch = batch[:4]

			if i%2 == 0 {
				results[i], errs[i] = s.GetOrCreateBatch(batch)
				return
			}

			for _, id := range batch {
				a, err := s.GetOrCreate(id.Name, id.Email)
				if err != nil {
					errs[i] = err
					return
				}
				results[i] = append(results[i], a)
			}
		}(i)
	}
	wg.Wait()

	byIdentity := map[model.Identity]model.ID{}
	for i := range results {
		t.Require.NoError(errs[i])

		for _, a := range results[i] {
			id, ok := byIdentity[a.Identity()]
			if ok {
				t.Equal(id, a.ID, "%v", a.Identity())
			}
			byIdentity[a.Identity()] = a.ID
		}
	}

	canonical := lo.Uniq(lo.Map(ids, func(id model.Identity, _ int) model.Identity {
		return mailmap.Parse(testMailmap).ResolveIdentity(id)
	}))
	t.Len(canonical, 5)
	t.Len(byIdentity, len(canonical))
	t.Equal(len(canonical), s.Len())

	stored, err := storage.FindAuthors(canonical)
	t.Require.NoError(err)
	t.Len(stored, len(canonical))
	for _, a := range stored {
		t.Equal(byIdentity[a.Identity()], a.ID)
	}
}
