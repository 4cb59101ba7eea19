package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Notifuse/emailbuilder/internal/domain"
	"github.com/Notifuse/emailbuilder/pkg/blocks"
)

const documentFileExt = ".json"

// storedDocument is the on-disk layout of a document file
type storedDocument struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Subject   string        `json:"subject"`
	Content   *blocks.Block `json:"content"`
	Version   int           `json:"version"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type documentFileRepository struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

// NewDocumentFileRepository stores one JSON file per document under dir.
// The directory is created if missing.
func NewDocumentFileRepository(dir string) (domain.DocumentRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &documentFileRepository{
		dir: dir,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *documentFileRepository) path(id string) string {
	return filepath.Join(r.dir, id+documentFileExt)
}

func (r *documentFileRepository) CreateDocument(ctx context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path(doc.ID)); err == nil {
		return &domain.ErrDocumentExists{ID: doc.ID}
	}

	now := r.now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Version == 0 {
		doc.Version = domain.DocumentFormatVersion
	}

	if err := r.write(doc); err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *documentFileRepository) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.read(id)
}

func (r *documentFileRepository) read(id string) (*domain.Document, error) {
	data, err := os.ReadFile(r.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &domain.ErrDocumentNotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	var stored storedDocument
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document %s: %w", id, err)
	}
	if stored.Content == nil {
		stored.Content = blocks.NewPage()
	}

	return &domain.Document{
		ID:        stored.ID,
		Name:      stored.Name,
		Email:     &blocks.Email{Subject: stored.Subject, Content: stored.Content},
		Version:   stored.Version,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	}, nil
}

// ListDocuments reads only the summary fields of each file
func (r *documentFileRepository) ListDocuments(ctx context.Context, limit, offset int) ([]*domain.DocumentSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	summaries := []*domain.DocumentSummary{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), documentFileExt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}
		if !gjson.ValidBytes(data) {
			continue
		}

		fields := gjson.GetManyBytes(data, "id", "name", "subject", "updated_at")
		summaries = append(summaries, &domain.DocumentSummary{
			ID:        fields[0].String(),
			Name:      fields[1].String(),
			Subject:   fields[2].String(),
			UpdatedAt: fields[3].Time(),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if !summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})

	if offset >= len(summaries) {
		return []*domain.DocumentSummary{}, nil
	}
	summaries = summaries[offset:]
	if limit > 0 && limit < len(summaries) {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

func (r *documentFileRepository) UpdateDocument(ctx context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.read(doc.ID)
	if err != nil {
		return err
	}

	doc.CreatedAt = existing.CreatedAt
	doc.UpdatedAt = r.now()
	if doc.Version == 0 {
		doc.Version = domain.DocumentFormatVersion
	}

	if err := r.write(doc); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}

func (r *documentFileRepository) DeleteDocument(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := os.Remove(r.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return &domain.ErrDocumentNotFound{ID: id}
	}
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// write replaces the document file through a rename so readers never see a partial file
func (r *documentFileRepository) write(doc *domain.Document) error {
	data, err := json.MarshalIndent(storedDocument{
		ID:        doc.ID,
		Name:      doc.Name,
		Subject:   doc.Email.Subject,
		Content:   doc.Email.Content,
		Version:   doc.Version,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, "."+doc.ID+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path(doc.ID))
}
