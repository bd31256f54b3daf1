package repos

import (
	"github.com/pkg/errors"

	"github.com/pescuma/thanks/lib/model"
)

var ErrRefNotFound = errors.New("reference not found")

// Repository is the narrow view of version control history needed to attribute
// commits. Commit ids are hex strings.
type Repository interface {
	Name() string

	// ResolveRef returns the commit id a branch, tag or revision points to.
	ResolveRef(ref string) (string, error)

	// Ancestors lists every commit reachable from `from` (inclusive) that is not
	// reachable from any of `exclude`. Each commit is returned once.
	Ancestors(from string, exclude ...string) ([]string, error)

	// IsAncestor reports whether ancestor is reachable from descendant. A ref is
	// an ancestor of itself.
	IsAncestor(ancestor string, descendant string) (bool, error)

	Author(sha string) (model.Identity, error)

	// ForEachCommit visits every commit reachable from HEAD, a branch or a tag
	// once, in no particular order.
	ForEachCommit(fn func(sha string, author model.Identity) error) error

	Tags() ([]string, error)

	// Mailmap returns the contents of .mailmap at HEAD, or "" if there is none.
	Mailmap() (string, error)
}
