package db

import (
	"database/sql"
)

// Database abstracts the backing SQL database so the server wiring does not
// depend on a particular driver.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}
