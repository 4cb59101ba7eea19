// Package schema defines the database schema of the document store.
package schema

// TableDefinitions contains all the SQL statements to create the database tables
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS email_documents (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		content JSONB NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_email_documents_updated_at ON email_documents(updated_at DESC)`,
}

// TableNames returns a list of all table names in creation order
var TableNames = []string{
	"email_documents",
}
