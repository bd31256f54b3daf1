package orm

import (
	"strings"

	"gorm.io/gorm/schema"
)

// NamingStrategy names tables after the model, without the sql prefix of the
// row types.
type NamingStrategy struct {
	schema.NamingStrategy
}

func (n *NamingStrategy) TableName(str string) string {
	return n.NamingStrategy.TableName(strings.TrimPrefix(str, "sql"))
}
