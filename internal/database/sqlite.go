package database

import (
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DriverName is the SQLite driver registered with the SQL functions the
// repositories rely on.
const DriverName = "sqlite3_reader"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// SQLite's LOWER folds ASCII only; Pāḷi titles need full case folding.
			return conn.RegisterFunc("unicode_lower", strings.ToLower, true)
		},
	})
}

// Dialector opens path through DriverName. Every connection can call
// unicode_lower(text).
func Dialector(path string) gorm.Dialector {
	return sqlite.New(sqlite.Config{DriverName: DriverName, DSN: path})
}
