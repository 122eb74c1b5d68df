package database

import (
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Open connects to the database behind driver ("sqlite" or "pgx").
func Open(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// SQLite allows one writer; a single connection also keeps
		// in-memory databases alive between calls.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
	}
	return db, nil
}

// Connect is Open for process startup: any failure is fatal.
func Connect(driver, dsn string) *sqlx.DB {
	db, err := Open(driver, dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return db
}
