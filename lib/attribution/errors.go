package attribution

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var ErrConsistency = errors.New("commit attribution mismatch")

// ReleaseError is the failure to attribute the commits of one release.
type ReleaseError struct {
	Project string
	Release string
	Err     error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("%v %v: %v", e.Project, e.Release, e.Err)
}

func (e *ReleaseError) Unwrap() error {
	return e.Err
}

// BatchError collects the releases that failed while the others were still
// processed.
type BatchError struct {
	Errors []*ReleaseError
}

func (e *BatchError) Error() string {
	msgs := lo.Map(e.Errors, func(re *ReleaseError, _ int) string { return re.Error() })
	return fmt.Sprintf("%v releases failed: %v", len(e.Errors), strings.Join(msgs, "; "))
}

func (e *BatchError) Unwrap() []error {
	return lo.Map(e.Errors, func(re *ReleaseError, _ int) error { return re })
}
