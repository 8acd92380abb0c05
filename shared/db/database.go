package db

import (
	"database/sql"
)

// Database owns the lifecycle of a *sql.DB connection pool
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
}
