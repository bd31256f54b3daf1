package orm

import (
	"time"

	"github.com/pescuma/thanks/lib/model"
)

type sqlAuthor struct {
	ID      model.ID
	Name    string `gorm:"size:255;uniqueIndex:idx_authors_identity"`
	Email   string `gorm:"size:255;uniqueIndex:idx_authors_identity;index"`
	Visible bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func newSqlAuthor(id model.Identity) *sqlAuthor {
	return &sqlAuthor{
		Name:    id.Name,
		Email:   id.Email,
		Visible: true,
	}
}

func (s *sqlAuthor) ToModel() *model.Author {
	return &model.Author{
		ID:      s.ID,
		Name:    s.Name,
		Email:   s.Email,
		Visible: s.Visible,
	}
}
