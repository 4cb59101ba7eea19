package blocks

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownBlockType is returned when creating a block whose type was never registered
	ErrUnknownBlockType = errors.New("unknown block type")

	// ErrTargetNotFound is returned when an id does not resolve to any block of the tree
	ErrTargetNotFound = errors.New("target block not found")

	// ErrMoveIntoSelf is returned when a block would be moved into itself or one of its descendants
	ErrMoveIntoSelf = errors.New("cannot move a block into itself or its descendants")

	// ErrInvalidHierarchy is returned when a child type is not accepted by its parent type
	ErrInvalidHierarchy = errors.New("invalid block hierarchy")

	// ErrDuplicateID is returned when two blocks of one tree carry the same explicit id
	ErrDuplicateID = errors.New("duplicate block id")
)

// UnknownBlockTypeError carries the type that failed to resolve in the registry
type UnknownBlockTypeError struct {
	Type BlockType
}

func (e *UnknownBlockTypeError) Error() string {
	return fmt.Sprintf("block type %q not found", e.Type)
}

func (e *UnknownBlockTypeError) Unwrap() error {
	return ErrUnknownBlockType
}

// TreeError describes a failed tree operation
type TreeError struct {
	Op  string
	ID  string
	Err error
}

func (e *TreeError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.ID, e.Err)
}

func (e *TreeError) Unwrap() error {
	return e.Err
}

func treeError(op, id string, err error) error {
	return &TreeError{Op: op, ID: id, Err: err}
}

// PersistError is returned by the editor when a change was applied but could not be saved
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist email: %v", e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}
