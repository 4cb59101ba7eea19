package blocks

import (
	"context"
	"fmt"
	"strings"
)

// DropKind tells whether a drop creates a block or relocates one
type DropKind string

const (
	DropKindNew  DropKind = "new"
	DropKindMove DropKind = "move"
)

// DropPayload travels with a drag operation from its source to the drop target
type DropPayload struct {
	Kind      DropKind  `json:"kind"`
	BlockType BlockType `json:"block_type,omitempty"`
	BlockID   string    `json:"block_id,omitempty"`
}

// NewBlockPayload returns the payload of a palette drag
func NewBlockPayload(blockType BlockType) DropPayload {
	return DropPayload{Kind: DropKindNew, BlockType: blockType}
}

// MoveBlockPayload returns the payload of a canvas drag
func MoveBlockPayload(id string) DropPayload {
	return DropPayload{Kind: DropKindMove, BlockID: id}
}

// ParseDropPayload reads the textual drag data form: "move:<id>", "block:<type>" or a bare type
func ParseDropPayload(s string) (DropPayload, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return DropPayload{}, fmt.Errorf("empty drop payload")
	case strings.HasPrefix(s, "move:"):
		return MoveBlockPayload(strings.TrimPrefix(s, "move:")).validated()
	case strings.HasPrefix(s, "block:"):
		return NewBlockPayload(BlockType(strings.TrimPrefix(s, "block:"))).validated()
	default:
		return NewBlockPayload(BlockType(s)).validated()
	}
}

// String returns the textual drag data form of the payload
func (p DropPayload) String() string {
	if p.Kind == DropKindMove {
		return "move:" + p.BlockID
	}
	return "block:" + string(p.BlockType)
}

// Validate checks that the payload names what its kind requires
func (p DropPayload) Validate() error {
	_, err := p.validated()
	return err
}

func (p DropPayload) validated() (DropPayload, error) {
	switch p.Kind {
	case DropKindNew:
		if p.BlockType == "" {
			return p, fmt.Errorf("drop payload of kind %q requires a block type", p.Kind)
		}
	case DropKindMove:
		if p.BlockID == "" {
			return p, fmt.Errorf("drop payload of kind %q requires a block id", p.Kind)
		}
	default:
		return p, fmt.Errorf("unknown drop payload kind %q", p.Kind)
	}
	return p, nil
}

// Drop applies a drag payload at index under parentID. New blocks are created
// and inserted; existing blocks are moved. It returns the dropped block and
// whether the document changed: a move onto the block's current position is
// skipped without touching the history.
func (e *Editor) Drop(ctx context.Context, payload DropPayload, parentID string, index int) (*Block, bool, error) {
	if err := payload.Validate(); err != nil {
		return nil, false, err
	}

	if payload.Kind == DropKindNew {
		block, err := e.AddNewBlock(ctx, payload.BlockType, Overrides{}, parentID, index)
		return block, block != nil, err
	}

	if payload.BlockID == parentID {
		return nil, false, treeError("move", payload.BlockID, ErrMoveIntoSelf)
	}
	if IsNoopMove(e.email.Content, payload.BlockID, parentID, index) {
		block, _ := FindByID(e.email.Content, payload.BlockID)
		return block.Clone(), false, nil
	}
	err := e.apply(ctx, func(d *draft) error {
		if err := Move(d.email.Content, payload.BlockID, parentID, index); err != nil {
			return err
		}
		d.selected = nil
		return nil
	})
	if err != nil && !isPersistError(err) {
		return nil, false, err
	}

	block, _ := FindByID(e.email.Content, payload.BlockID)
	return block.Clone(), true, err
}
