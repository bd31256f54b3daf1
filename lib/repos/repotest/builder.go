// Package repotest builds small in-memory git histories for tests.
package repotest

import (
	"sort"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/pescuma/thanks/lib/repos"
)

type Builder struct {
	t      testing.TB
	storer storage.Storer
	repo   *git.Repository
	when   time.Time
	files  map[string]string
}

// NewBuilder creates a repository in memory.
func NewBuilder(t testing.TB) *Builder {
	repo, err := git.Init(memory.NewStorage(), nil)
	require.NoError(t, err)

	return newBuilder(t, repo)
}

// NewDiskBuilder creates a bare repository in dir.
func NewDiskBuilder(t testing.TB, dir string) *Builder {
	repo, err := git.PlainInit(dir, true)
	require.NoError(t, err)

	return newBuilder(t, repo)
}

func newBuilder(t testing.TB, repo *git.Repository) *Builder {
	return &Builder{
		t:      t,
		storer: repo.Storer,
		repo:   repo,
		when:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		files:  map[string]string{},
	}
}

// File sets a file that will be part of the tree of the following commits.
func (b *Builder) File(name string, contents string) *Builder {
	b.files[name] = contents
	return b
}

// Commit creates a commit with the given parents and returns its hash.
func (b *Builder) Commit(name string, email string, parents ...plumbing.Hash) plumbing.Hash {
	b.when = b.when.Add(time.Minute)

	sig := object.Signature{Name: name, Email: email, When: b.when}
	c := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      "commit by " + name,
		TreeHash:     b.tree(),
		ParentHashes: parents,
	}

	obj := b.storer.NewEncodedObject()
	require.NoError(b.t, c.Encode(obj))

	hash, err := b.storer.SetEncodedObject(obj)
	require.NoError(b.t, err)

	return hash
}

func (b *Builder) tree() plumbing.Hash {
	t := &object.Tree{}

	names := lo.Keys(b.files)
	sort.Strings(names)

	for _, name := range names {
		contents := b.files[name]

		blob := b.storer.NewEncodedObject()
		blob.SetType(plumbing.BlobObject)

		w, err := blob.Writer()
		require.NoError(b.t, err)
		_, err = w.Write([]byte(contents))
		require.NoError(b.t, err)
		require.NoError(b.t, w.Close())

		hash, err := b.storer.SetEncodedObject(blob)
		require.NoError(b.t, err)

		t.Entries = append(t.Entries, object.TreeEntry{Name: name, Mode: filemode.Regular, Hash: hash})
	}

	obj := b.storer.NewEncodedObject()
	require.NoError(b.t, t.Encode(obj))

	hash, err := b.storer.SetEncodedObject(obj)
	require.NoError(b.t, err)

	return hash
}

// Tag creates a lightweight tag.
func (b *Builder) Tag(name string, hash plumbing.Hash) *Builder {
	ref := plumbing.NewHashReference(plumbing.NewTagReferenceName(name), hash)
	require.NoError(b.t, b.storer.SetReference(ref))
	return b
}

// AnnotatedTag creates a tag object pointing to a commit.
func (b *Builder) AnnotatedTag(name string, hash plumbing.Hash) *Builder {
	tag := &object.Tag{
		Name:       name,
		Tagger:     object.Signature{Name: "Tagger", Email: "tagger@example.com", When: b.when},
		Message:    "release " + name,
		TargetType: plumbing.CommitObject,
		Target:     hash,
	}

	obj := b.storer.NewEncodedObject()
	require.NoError(b.t, tag.Encode(obj))

	tagHash, err := b.storer.SetEncodedObject(obj)
	require.NoError(b.t, err)

	return b.Tag(name, tagHash)
}

// Branch points a branch to a commit. The master branch is HEAD.
func (b *Builder) Branch(name string, hash plumbing.Hash) *Builder {
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), hash)
	require.NoError(b.t, b.storer.SetReference(ref))
	return b
}

func (b *Builder) Repository() *repos.GitRepository {
	return repos.NewGitRepository("test", b.repo)
}
