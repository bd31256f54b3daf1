package orm

import (
	"database/sql"
	"strings"

	"github.com/glebarez/sqlite"
	mysqldriver "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func WithSqlite(file string) gorm.Dialector {
	return sqlite.Open(file + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
}

func WithSqliteInMemory() gorm.Dialector {
	return sqlite.Open(":memory:")
}

// WithMysql accepts a go-sql-driver DSN, optionally prefixed with mysql://.
func WithMysql(dsn string) (gorm.Dialector, error) {
	cfg, err := mysqldriver.ParseDSN(strings.TrimPrefix(dsn, "mysql://"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid MySQL connection string")
	}

	cfg.ParseTime = true

	return mysql.Open(cfg.FormatDSN()), nil
}

// WithPostgres accepts a postgres:// URL or a key=value connection string.
func WithPostgres(dsn string) (gorm.Dialector, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "error connecting to PostgreSQL")
	}

	return postgres.New(postgres.Config{Conn: db}), nil
}
