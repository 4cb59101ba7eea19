package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/Notifuse/emailbuilder/internal/domain"
	"github.com/Notifuse/emailbuilder/pkg/blocks"
)

const uniqueViolation = "23505"

var documentColumns = []string{
	"id",
	"name",
	"subject",
	"content",
	"version",
	"created_at",
	"updated_at",
}

type documentPostgresRepository struct {
	db   *sql.DB
	psql sq.StatementBuilderType
	now  func() time.Time
}

// NewDocumentPostgresRepository creates a document repository backed by the email_documents table
func NewDocumentPostgresRepository(db *sql.DB) domain.DocumentRepository {
	return &documentPostgresRepository{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *documentPostgresRepository) CreateDocument(ctx context.Context, doc *domain.Document) error {
	content, err := json.Marshal(doc.Email.Content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	now := r.now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Version == 0 {
		doc.Version = domain.DocumentFormatVersion
	}

	query, args, err := r.psql.Insert("email_documents").
		Columns(documentColumns...).
		Values(doc.ID, doc.Name, doc.Email.Subject, string(content), doc.Version, doc.CreatedAt, doc.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return &domain.ErrDocumentExists{ID: doc.ID}
		}
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *documentPostgresRepository) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	query, args, err := r.psql.Select(documentColumns...).
		From("email_documents").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrDocumentNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

func (r *documentPostgresRepository) ListDocuments(ctx context.Context, limit, offset int) ([]*domain.DocumentSummary, error) {
	query, args, err := r.psql.Select("id", "name", "subject", "updated_at").
		From("email_documents").
		OrderBy("updated_at DESC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	summaries := []*domain.DocumentSummary{}
	for rows.Next() {
		var s domain.DocumentSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Subject, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	return summaries, nil
}

func (r *documentPostgresRepository) UpdateDocument(ctx context.Context, doc *domain.Document) error {
	content, err := json.Marshal(doc.Email.Content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	doc.UpdatedAt = r.now()
	if doc.Version == 0 {
		doc.Version = domain.DocumentFormatVersion
	}

	query, args, err := r.psql.Update("email_documents").
		Set("name", doc.Name).
		Set("subject", doc.Email.Subject).
		Set("content", string(content)).
		Set("version", doc.Version).
		Set("updated_at", doc.UpdatedAt).
		Where(sq.Eq{"id": doc.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrDocumentNotFound{ID: doc.ID}
	}
	return nil
}

func (r *documentPostgresRepository) DeleteDocument(ctx context.Context, id string) error {
	query, args, err := r.psql.Delete("email_documents").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrDocumentNotFound{ID: id}
	}
	return nil
}

func scanDocument(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Document, error) {
	var (
		doc     domain.Document
		subject string
		content []byte
	)
	err := scanner.Scan(
		&doc.ID,
		&doc.Name,
		&subject,
		&content,
		&doc.Version,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	var root blocks.Block
	if err := json.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal content of document %s: %w", doc.ID, err)
	}
	doc.Email = &blocks.Email{Subject: subject, Content: &root}

	return &doc, nil
}
