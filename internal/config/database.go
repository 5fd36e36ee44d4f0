package config

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// SetupDatabase initializes the database connection
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sqlx.DB) error {
	// All application state lives in one keyed JSONB documents table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			collection VARCHAR(255) NOT NULL,
			doc_id VARCHAR(255) NOT NULL,
			doc JSONB NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (collection, doc_id)
		)
	`)
	if err != nil {
		return err
	}

	// Index for collection scans (reward catalog, locations)
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection)`)
	if err != nil {
		log.Printf("Warning: Failed to create index: %v", err)
		// Index is not critical
	}

	// Emails must stay unique even when two signups race past the service's
	// existence check
	_, err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_users_email
		ON documents ((doc ->> 'email'))
		WHERE collection = 'users'
	`)
	if err != nil {
		return err
	}

	return nil
}
