package repos

import (
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pkg/errors"

	"github.com/pescuma/thanks/lib/consoles"
	"github.com/pescuma/thanks/lib/model"
)

const mailmapFile = ".mailmap"

type GitRepository struct {
	name string
	repo *git.Repository
}

func NewGitRepository(name string, repo *git.Repository) *GitRepository {
	return &GitRepository{
		name: name,
		repo: repo,
	}
}

func Open(dir string) (*GitRepository, error) {
	gr, err := git.PlainOpen(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening git repository at %v", dir)
	}

	return NewGitRepository(filepath.Base(dir), gr), nil
}

// OpenOrClone opens the repository at dir, cloning it from url first if it does
// not exist yet. Clones are bare.
func OpenOrClone(console consoles.Console, dir string, url string) (*GitRepository, error) {
	gr, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) && url != "" {
		console.Printf("Cloning %v into %v...\n", url, dir)

		gr, err = git.PlainClone(dir, true, &git.CloneOptions{
			URL:  url,
			Tags: git.AllTags,
		})
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error opening git repository at %v", dir)
	}

	return NewGitRepository(filepath.Base(dir), gr), nil
}

// Fetch updates all branches and tags from origin.
func (r *GitRepository) Fetch() error {
	err := r.repo.Fetch(&git.FetchOptions{
		RemoteName: git.DefaultRemoteName,
		RefSpecs: []config.RefSpec{
			"+refs/heads/*:refs/heads/*",
			"+refs/tags/*:refs/tags/*",
		},
		Tags:  git.AllTags,
		Force: true,
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "%v: error fetching", r.name)
	}

	return nil
}

func (r *GitRepository) Name() string {
	return r.name
}

func (r *GitRepository) ResolveRef(ref string) (string, error) {
	c, err := r.resolve(ref)
	if err != nil {
		return "", err
	}

	return c.Hash.String(), nil
}

func (r *GitRepository) resolve(ref string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return nil, errors.Wrapf(ErrRefNotFound, "%v: %v (%v)", r.name, ref, err)
	}

	c, err := r.peel(*hash)
	if err != nil {
		return nil, errors.Wrapf(ErrRefNotFound, "%v: %v does not point to a commit (%v)", r.name, ref, err)
	}

	return c, nil
}

// peel follows annotated tags down to the commit they point to.
func (r *GitRepository) peel(hash plumbing.Hash) (*object.Commit, error) {
	c, err := r.repo.CommitObject(hash)
	if err == nil {
		return c, nil
	}

	tag, tagErr := r.repo.TagObject(hash)
	if tagErr != nil {
		return nil, err
	}

	return tag.Commit()
}

func (r *GitRepository) Ancestors(from string, exclude ...string) ([]string, error) {
	start, err := r.resolve(from)
	if err != nil {
		return nil, err
	}

	excluded := map[plumbing.Hash]bool{}
	for _, e := range exclude {
		ec, err := r.resolve(e)
		if err != nil {
			return nil, err
		}

		err = walk(ec, excluded, func(c *object.Commit) {
			excluded[c.Hash] = true
		})
		if err != nil {
			return nil, errors.Wrapf(err, "%v: error walking %v", r.name, e)
		}
	}

	var result []string
	err = walk(start, excluded, func(c *object.Commit) {
		result = append(result, c.Hash.String())
	})
	if err != nil {
		return nil, errors.Wrapf(err, "%v: error walking %v", r.name, from)
	}

	return result, nil
}

// walk visits every commit reachable from c once, without entering commits in seen.
func walk(c *object.Commit, seen map[plumbing.Hash]bool, fn func(*object.Commit)) error {
	iter := object.NewCommitPreorderIter(c, seen, nil)
	defer iter.Close()

	return iter.ForEach(func(c *object.Commit) error {
		fn(c)
		return nil
	})
}

func (r *GitRepository) Author(sha string) (model.Identity, error) {
	c, err := r.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return model.Identity{}, errors.Wrapf(err, "%v: missing commit %v", r.name, sha)
	}

	return model.NewIdentity(c.Author.Name, c.Author.Email), nil
}

// ForEachCommit visits the commits reachable from HEAD, branches and tags.
// Dangling objects left in the storage are ignored.
func (r *GitRepository) ForEachCommit(fn func(sha string, author model.Identity) error) error {
	starts, err := r.tips()
	if err != nil {
		return err
	}

	seen := map[plumbing.Hash]bool{}
	for _, c := range starts {
		iter := object.NewCommitPreorderIter(c, seen, nil)

		err = iter.ForEach(func(c *object.Commit) error {
			seen[c.Hash] = true
			return fn(c.Hash.String(), model.NewIdentity(c.Author.Name, c.Author.Email))
		})
		iter.Close()
		if err != nil {
			return errors.Wrapf(err, "%v: error walking commits", r.name)
		}
	}

	return nil
}

// tips returns the commits pointed by HEAD and every branch or tag.
func (r *GitRepository) tips() ([]*object.Commit, error) {
	var hashes []plumbing.Hash

	head, err := r.repo.Head()
	switch {
	case err == nil:
		hashes = append(hashes, head.Hash())
	case !errors.Is(err, plumbing.ErrReferenceNotFound):
		return nil, errors.Wrapf(err, "%v: error resolving HEAD", r.name)
	}

	refs, err := r.repo.References()
	if err != nil {
		return nil, errors.Wrapf(err, "%v: error listing references", r.name)
	}
	defer refs.Close()

	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() == plumbing.HashReference {
			hashes = append(hashes, ref.Hash())
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "%v: error listing references", r.name)
	}

	var result []*object.Commit
	for _, h := range hashes {
		c, err := r.peel(h)
		if err != nil {
			// Tags can point to trees or blobs
			continue
		}

		result = append(result, c)
	}

	return result, nil
}

// IsAncestor reports whether ancestor is part of the history of descendant.
// A commit is an ancestor of itself.
func (r *GitRepository) IsAncestor(ancestor string, descendant string) (bool, error) {
	a, err := r.resolve(ancestor)
	if err != nil {
		return false, err
	}

	d, err := r.resolve(descendant)
	if err != nil {
		return false, err
	}

	if a.Hash == d.Hash {
		return true, nil
	}

	result, err := a.IsAncestor(d)
	if err != nil {
		return false, errors.Wrapf(err, "%v: error walking %v", r.name, descendant)
	}

	return result, nil
}

func (r *GitRepository) Tags() ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, errors.Wrapf(err, "%v: error listing tags", r.name)
	}
	defer iter.Close()

	var result []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		result = append(result, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(result)
	return result, nil
}

func (r *GitRepository) Mailmap() (string, error) {
	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "%v: error resolving HEAD", r.name)
	}

	c, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return "", errors.Wrapf(err, "%v: error loading HEAD", r.name)
	}

	f, err := c.File(mailmapFile)
	if errors.Is(err, object.ErrFileNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "%v: error reading %v", r.name, mailmapFile)
	}

	return f.Contents()
}
