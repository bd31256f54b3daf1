package orm

import (
	"time"

	"github.com/pescuma/thanks/lib/model"
)

type sqlCommit struct {
	Sha       string   `gorm:"primaryKey;size:64"`
	ReleaseID model.ID `gorm:"index"`
	AuthorID  model.ID `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func newSqlCommit(c *model.Commit) *sqlCommit {
	return &sqlCommit{
		Sha:       c.Sha,
		ReleaseID: c.ReleaseID,
		AuthorID:  c.AuthorID,
	}
}
