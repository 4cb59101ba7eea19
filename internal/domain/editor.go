package domain

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/asaskevich/govalidator"

	"github.com/Notifuse/emailbuilder/pkg/blocks"
)

//go:generate mockgen -destination mocks/mock_editor_service.go -package mocks github.com/Notifuse/emailbuilder/internal/domain EditorService

// EditorState is what a client needs to render the canvas of a document
type EditorState struct {
	DocumentID      string        `json:"document_id"`
	Email           *blocks.Email `json:"email"`
	SelectedBlockID *string       `json:"selected_block_id"`
	CanUndo         bool          `json:"can_undo"`
	CanRedo         bool          `json:"can_redo"`
}

// EditorResult is returned by every editing operation
type EditorResult struct {
	// Block is the block created, moved or duplicated, when there is one
	Block *blocks.Block `json:"block,omitempty"`
	// Changed is false when the operation left the document untouched
	Changed bool `json:"changed"`
	// Persisted is false when the change is only held in the editing session
	Persisted bool `json:"persisted"`

	State *EditorState `json:"state"`
}

// EditorService edits documents through per-document editing sessions
type EditorService interface {
	State(ctx context.Context, documentID string) (*EditorState, error)
	AddBlock(ctx context.Context, req *AddBlockRequest) (*EditorResult, error)
	UpdateBlock(ctx context.Context, req *UpdateBlockRequest) (*EditorResult, error)
	DeleteBlock(ctx context.Context, req *BlockRequest) (*EditorResult, error)
	MoveBlock(ctx context.Context, req *MoveBlockRequest) (*EditorResult, error)
	DuplicateBlock(ctx context.Context, req *BlockRequest) (*EditorResult, error)
	Drop(ctx context.Context, req *DropRequest) (*EditorResult, error)
	UpdateBody(ctx context.Context, req *UpdateBodyRequest) (*EditorResult, error)
	UpdateSubject(ctx context.Context, req *UpdateSubjectRequest) (*EditorResult, error)
	Clear(ctx context.Context, documentID string) (*EditorResult, error)
	Undo(ctx context.Context, documentID string) (*EditorResult, error)
	Redo(ctx context.Context, documentID string) (*EditorResult, error)
	Select(ctx context.Context, req *SelectBlockRequest) (*EditorState, error)
	// Close flushes and drops the session of a document
	Close(ctx context.Context, documentID string) error
}

func validateDocumentID(op, id string) error {
	if id == "" {
		return fmt.Errorf("invalid %s request: document_id is required", op)
	}
	if !IsValidIdentifier(id) {
		return fmt.Errorf("invalid %s request: document_id is invalid", op)
	}
	return nil
}

func validateBlockID(op, field, id string, required bool) error {
	if id == "" {
		if required {
			return fmt.Errorf("invalid %s request: %s is required", op, field)
		}
		return nil
	}
	if !IsValidIdentifier(id) {
		return fmt.Errorf("invalid %s request: %s is invalid", op, field)
	}
	return nil
}

// linkKeys are block data keys holding URLs
var linkKeys = []string{"href", "src"}

// validateLinks checks the URLs carried by block data. Anchors, mailto/tel
// links and Liquid placeholders are accepted as is.
func validateLinks(op string, data map[string]interface{}) error {
	for _, key := range linkKeys {
		raw, ok := data[key]
		if !ok {
			continue
		}
		value, ok := raw.(string)
		if !ok {
			return fmt.Errorf("invalid %s request: %s must be a string", op, key)
		}
		if value == "" || value == "#" || strings.HasPrefix(value, "#") ||
			strings.HasPrefix(value, "mailto:") || strings.HasPrefix(value, "tel:") ||
			strings.Contains(value, "{{") {
			continue
		}
		if !govalidator.IsURL(value) {
			return fmt.Errorf("invalid %s request: %s must be a valid URL", op, key)
		}
	}
	return nil
}

type DocumentRequest struct {
	DocumentID string `json:"document_id"`
}

func (r *DocumentRequest) Validate() error {
	return validateDocumentID("document", r.DocumentID)
}

func (r *DocumentRequest) FromURLParams(queryParams url.Values) error {
	r.DocumentID = queryParams.Get("document_id")
	return r.Validate()
}

// AddBlockRequest creates a block of a registered type and inserts it.
// A nil Index appends to the parent.
type AddBlockRequest struct {
	DocumentID string                 `json:"document_id"`
	ParentID   string                 `json:"parent_id,omitempty"`
	Type       blocks.BlockType       `json:"type"`
	Index      *int                   `json:"index,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Attributes map[string]string      `json:"attributes,omitempty"`
}

func (r *AddBlockRequest) Validate() error {
	if err := validateDocumentID("add block", r.DocumentID); err != nil {
		return err
	}
	if err := validateBlockID("add block", "parent_id", r.ParentID, false); err != nil {
		return err
	}
	if r.Type == "" {
		return fmt.Errorf("invalid add block request: type is required")
	}
	if r.Type == blocks.TypePage {
		return fmt.Errorf("invalid add block request: a page cannot be nested")
	}
	return validateLinks("add block", r.Data)
}

// IndexOrAppend returns the requested index, or -1 to append
func (r *AddBlockRequest) IndexOrAppend() int {
	return indexOrAppend(r.Index)
}

func indexOrAppend(index *int) int {
	if index == nil {
		return -1
	}
	return *index
}

type UpdateBlockRequest struct {
	DocumentID string                 `json:"document_id"`
	BlockID    string                 `json:"block_id"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Attributes map[string]string      `json:"attributes,omitempty"`
}

func (r *UpdateBlockRequest) Validate() error {
	if err := validateDocumentID("update block", r.DocumentID); err != nil {
		return err
	}
	if err := validateBlockID("update block", "block_id", r.BlockID, true); err != nil {
		return err
	}
	if len(r.Data) == 0 && len(r.Attributes) == 0 {
		return fmt.Errorf("invalid update block request: data or attributes are required")
	}
	return validateLinks("update block", r.Data)
}

// BlockRequest targets a single block of a document
type BlockRequest struct {
	DocumentID string `json:"document_id"`
	BlockID    string `json:"block_id"`
}

func (r *BlockRequest) Validate() error {
	if err := validateDocumentID("block", r.DocumentID); err != nil {
		return err
	}
	return validateBlockID("block", "block_id", r.BlockID, true)
}

// MoveBlockRequest moves a block to gap Index of ParentID. Index is counted
// before the block is removed from its current position.
type MoveBlockRequest struct {
	DocumentID string `json:"document_id"`
	BlockID    string `json:"block_id"`
	ParentID   string `json:"parent_id,omitempty"`
	Index      *int   `json:"index,omitempty"`
}

func (r *MoveBlockRequest) Validate() error {
	if err := validateDocumentID("move block", r.DocumentID); err != nil {
		return err
	}
	if err := validateBlockID("move block", "block_id", r.BlockID, true); err != nil {
		return err
	}
	return validateBlockID("move block", "parent_id", r.ParentID, false)
}

func (r *MoveBlockRequest) IndexOrAppend() int {
	return indexOrAppend(r.Index)
}

// DropRequest carries a drag payload such as "block:text" or "move:<id>"
type DropRequest struct {
	DocumentID string `json:"document_id"`
	Payload    string `json:"payload"`
	ParentID   string `json:"parent_id,omitempty"`
	Index      *int   `json:"index,omitempty"`
}

// Validate checks the request and returns the parsed payload
func (r *DropRequest) Validate() (blocks.DropPayload, error) {
	if err := validateDocumentID("drop", r.DocumentID); err != nil {
		return blocks.DropPayload{}, err
	}
	if err := validateBlockID("drop", "parent_id", r.ParentID, false); err != nil {
		return blocks.DropPayload{}, err
	}
	if r.Payload == "" {
		return blocks.DropPayload{}, fmt.Errorf("invalid drop request: payload is required")
	}
	payload, err := blocks.ParseDropPayload(r.Payload)
	if err != nil {
		return blocks.DropPayload{}, fmt.Errorf("invalid drop request: %w", err)
	}
	return payload, nil
}

func (r *DropRequest) IndexOrAppend() int {
	return indexOrAppend(r.Index)
}

type UpdateBodyRequest struct {
	DocumentID string            `json:"document_id"`
	Attributes map[string]string `json:"attributes"`
}

func (r *UpdateBodyRequest) Validate() error {
	if err := validateDocumentID("update body", r.DocumentID); err != nil {
		return err
	}
	if len(r.Attributes) == 0 {
		return fmt.Errorf("invalid update body request: attributes are required")
	}
	return nil
}

type UpdateSubjectRequest struct {
	DocumentID string `json:"document_id"`
	Subject    string `json:"subject"`
}

func (r *UpdateSubjectRequest) Validate() error {
	if err := validateDocumentID("update subject", r.DocumentID); err != nil {
		return err
	}
	if len(r.Subject) > 998 {
		return fmt.Errorf("invalid update subject request: subject is too long")
	}
	return nil
}

// SelectBlockRequest selects a block; an empty BlockID clears the selection
type SelectBlockRequest struct {
	DocumentID string `json:"document_id"`
	BlockID    string `json:"block_id"`
}

func (r *SelectBlockRequest) Validate() error {
	if err := validateDocumentID("select", r.DocumentID); err != nil {
		return err
	}
	return validateBlockID("select", "block_id", r.BlockID, false)
}
