package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/Notifuse/emailbuilder/internal/domain"
	"github.com/Notifuse/emailbuilder/pkg/blocks"
)

// SetupMockDB creates a mock database connection for testing
func SetupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}

	return db, mock, cleanup
}

// DocumentColumns are the columns of a full email_documents row
var DocumentColumns = []string{"id", "name", "subject", "content", "version", "created_at", "updated_at"}

// NewTestDocument returns a document holding one section with one text block
func NewTestDocument(id string) *domain.Document {
	page := blocks.NewPage()
	page.Children = []*blocks.Block{
		{
			ID:         "section-1",
			Type:       blocks.TypeSection,
			Data:       blocks.BlockData{Value: map[string]interface{}{}},
			Attributes: map[string]string{"padding": "20px 0px"},
			Children: []*blocks.Block{
				{
					ID:         "text-1",
					Type:       blocks.TypeText,
					Data:       blocks.BlockData{Value: map[string]interface{}{"content": "<p>Hello</p>"}},
					Attributes: map[string]string{},
					Children:   []*blocks.Block{},
				},
			},
		},
	}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Document{
		ID:        id,
		Name:      "Test document " + id,
		Email:     &blocks.Email{Subject: "Hello", Content: page},
		Version:   domain.DocumentFormatVersion,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
