package blocks

import (
	"context"
	"errors"
	"fmt"
)

// Persister stores the email after every change made through an Editor
type Persister interface {
	Save(ctx context.Context, email *Email) error
}

// PersisterFunc adapts a function to the Persister interface
type PersisterFunc func(ctx context.Context, email *Email) error

// Save calls f(ctx, email)
func (f PersisterFunc) Save(ctx context.Context, email *Email) error {
	return f(ctx, email)
}

// Editor owns a live email document, the selected block and the undo/redo
// history. Every change is applied to a copy of the document and committed,
// recorded and persisted only when it succeeds. An Editor is not safe for
// concurrent use.
type Editor struct {
	registry  *Registry
	email     *Email
	selected  *string
	history   *History
	persister Persister
}

// EditorOption configures an Editor
type EditorOption func(*editorOptions)

type editorOptions struct {
	registry     *Registry
	email        *Email
	historyLimit int
	persister    Persister
}

// WithRegistry sets the registry used to create blocks
func WithRegistry(r *Registry) EditorOption {
	return func(o *editorOptions) { o.registry = r }
}

// WithEmail sets the initial document
func WithEmail(email *Email) EditorOption {
	return func(o *editorOptions) { o.email = email }
}

// WithHistoryLimit sets the maximum number of undoable steps
func WithHistoryLimit(limit int) EditorOption {
	return func(o *editorOptions) { o.historyLimit = limit }
}

// WithPersister sets the store the document is saved to after each change
func WithPersister(p Persister) EditorOption {
	return func(o *editorOptions) { o.persister = p }
}

// NewEditor creates an editor. Blocks of the initial document that carry no
// explicit id, or repeat one, are assigned a fresh id.
func NewEditor(opts ...EditorOption) *Editor {
	o := editorOptions{historyLimit: DefaultHistoryLimit}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = DefaultRegistry()
	}

	email := normalizeEmail(o.email.Clone())
	AssignIDs(email.Content, o.registry.NewID)

	e := &Editor{
		registry:  o.registry,
		email:     email,
		persister: o.persister,
	}
	e.history = NewHistory(o.historyLimit, e.snapshot())
	return e
}

func normalizeEmail(email *Email) *Email {
	if email == nil {
		return NewEmail()
	}
	if email.Content == nil {
		email.Content = NewPage()
	}
	return email
}

// Registry returns the registry the editor creates blocks with
func (e *Editor) Registry() *Registry {
	return e.registry
}

// Email returns a deep copy of the live document
func (e *Editor) Email() *Email {
	return e.email.Clone()
}

// Selected returns the selected block id
func (e *Editor) Selected() (string, bool) {
	if e.selected == nil {
		return "", false
	}
	return *e.selected, true
}

// CanUndo reports whether Undo would change the document
func (e *Editor) CanUndo() bool {
	return e.history.CanUndo()
}

// CanRedo reports whether Redo would change the document
func (e *Editor) CanRedo() bool {
	return e.history.CanRedo()
}

// HistoryLen returns the number of undoable and redoable steps
func (e *Editor) HistoryLen() (past, future int) {
	return e.history.Len()
}

func (e *Editor) snapshot() Snapshot {
	return Snapshot{Email: e.email, SelectedBlockID: e.selected}
}

// draft is the working copy a change is applied to
type draft struct {
	email    *Email
	selected *string
}

func (e *Editor) apply(ctx context.Context, fn func(d *draft) error) error {
	d := &draft{email: e.email.Clone(), selected: copyString(e.selected)}
	if err := fn(d); err != nil {
		return err
	}

	e.email = d.email
	e.selected = d.selected
	e.history.Record(e.snapshot())
	return e.persist(ctx)
}

func (e *Editor) persist(ctx context.Context) error {
	if e.persister == nil {
		return nil
	}
	if err := e.persister.Save(ctx, e.email.Clone()); err != nil {
		return &PersistError{Err: err}
	}
	return nil
}

func isPersistError(err error) bool {
	var perr *PersistError
	return errors.As(err, &perr)
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// CreateBlock returns a new block of the given type without inserting it
func (e *Editor) CreateBlock(blockType BlockType, overrides Overrides) (*Block, error) {
	return e.registry.Create(blockType, overrides)
}

// AddBlock inserts a copy of block under parentID at index. Blocks of the
// copy without an explicit id, or with an id already used in the document,
// are assigned a fresh one. An empty parentID targets the page.
func (e *Editor) AddBlock(ctx context.Context, parentID string, block *Block, index int) (*Block, error) {
	if block == nil {
		return nil, fmt.Errorf("add block: block is nil")
	}

	inserted := block.Clone()
	assignIDs(inserted, e.registry.NewID, idsOf(e.email.Content))

	err := e.apply(ctx, func(d *draft) error {
		return Insert(d.email.Content, parentID, inserted.Clone(), index)
	})
	if err != nil && !isPersistError(err) {
		return nil, err
	}
	return inserted, err
}

// AddNewBlock creates a block of the given type and inserts it under parentID at index
func (e *Editor) AddNewBlock(ctx context.Context, blockType BlockType, overrides Overrides, parentID string, index int) (*Block, error) {
	block, err := e.registry.Create(blockType, overrides)
	if err != nil {
		return nil, err
	}
	return e.AddBlock(ctx, parentID, block, index)
}

// UpdateBlock shallow-merges update into the matching block
func (e *Editor) UpdateBlock(ctx context.Context, id string, update BlockUpdate) error {
	return e.apply(ctx, func(d *draft) error {
		return Update(d.email.Content, id, update)
	})
}

// DeleteBlock removes the matching block. The selection is cleared when it
// references the removed block or one of its descendants.
func (e *Editor) DeleteBlock(ctx context.Context, id string) error {
	return e.apply(ctx, func(d *draft) error {
		loc, ok := Locate(d.email.Content, id)
		if !ok {
			return treeError("delete", id, ErrTargetNotFound)
		}
		if d.selected != nil {
			if *d.selected == id {
				d.selected = nil
			} else if _, inside := FindByID(loc.Block, *d.selected); inside {
				d.selected = nil
			}
		}
		removeAt(loc.Parent, loc.Index)
		return nil
	})
}

// MoveBlock relocates the matching block, see Move
func (e *Editor) MoveBlock(ctx context.Context, id, targetParentID string, targetIndex int) error {
	return e.apply(ctx, func(d *draft) error {
		return Move(d.email.Content, id, targetParentID, targetIndex)
	})
}

// DuplicateBlock inserts a copy of the matching block right after it and returns the copy
func (e *Editor) DuplicateBlock(ctx context.Context, id string) (*Block, error) {
	var duplicate *Block
	err := e.apply(ctx, func(d *draft) error {
		clone, err := Duplicate(d.email.Content, id, e.registry.NewID)
		if err != nil {
			return err
		}
		duplicate = clone.Clone()
		return nil
	})
	if err != nil && !isPersistError(err) {
		return nil, err
	}
	return duplicate, err
}

// UpdateBodyAttributes merges attributes into the page attributes
func (e *Editor) UpdateBodyAttributes(ctx context.Context, attributes map[string]string) error {
	return e.apply(ctx, func(d *draft) error {
		if d.email.Content.Attributes == nil {
			d.email.Content.Attributes = make(map[string]string, len(attributes))
		}
		for k, v := range attributes {
			d.email.Content.Attributes[k] = v
		}
		return nil
	})
}

// UpdateSubject replaces the subject line
func (e *Editor) UpdateSubject(ctx context.Context, subject string) error {
	return e.apply(ctx, func(d *draft) error {
		d.email.Subject = subject
		return nil
	})
}

// ClearCanvas replaces the page with a fresh empty one and clears the selection
func (e *Editor) ClearCanvas(ctx context.Context) error {
	return e.apply(ctx, func(d *draft) error {
		page := NewPage()
		page.ID = e.registry.NewID()
		d.email.Content = page
		d.selected = nil
		return nil
	})
}

// LoadContent replaces the whole document and starts a new history from it
func (e *Editor) LoadContent(ctx context.Context, email *Email) error {
	loaded := normalizeEmail(email.Clone())
	AssignIDs(loaded.Content, e.registry.NewID)

	e.email = loaded
	e.selected = nil
	e.history.Reset(e.snapshot())
	return e.persist(ctx)
}

// SelectBlock selects the matching block. An empty id clears the selection.
// Selection changes are not recorded in the history.
func (e *Editor) SelectBlock(id string) error {
	if id == "" {
		e.selected = nil
		return nil
	}
	if _, ok := FindByID(e.email.Content, id); !ok {
		return treeError("select", id, ErrTargetNotFound)
	}
	e.selected = &id
	return nil
}

// Undo restores the previous snapshot. It returns false when there is nothing to undo.
func (e *Editor) Undo(ctx context.Context) (bool, error) {
	snapshot, ok := e.history.Undo()
	if !ok {
		return false, nil
	}
	e.restore(snapshot)
	return true, e.persist(ctx)
}

// Redo restores the next snapshot. It returns false when there is nothing to redo.
func (e *Editor) Redo(ctx context.Context) (bool, error) {
	snapshot, ok := e.history.Redo()
	if !ok {
		return false, nil
	}
	e.restore(snapshot)
	return true, e.persist(ctx)
}

func (e *Editor) restore(snapshot Snapshot) {
	e.email = normalizeEmail(snapshot.Email)
	e.selected = snapshot.SelectedBlockID
}
