package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opencensus.io/trace"
	"golang.org/x/sync/singleflight"

	"github.com/Notifuse/emailbuilder/internal/domain"
	"github.com/Notifuse/emailbuilder/pkg/blocks"
	"github.com/Notifuse/emailbuilder/pkg/logger"
	"github.com/Notifuse/emailbuilder/pkg/tracing"
)

// session is the live editing state of one document
type session struct {
	mu       sync.Mutex
	editor   *blocks.Editor
	name     string
	dirty    bool
	closed   bool
	lastUsed time.Time
}

// EditorOption configures an EditorService
type EditorOption func(*EditorService)

// WithHistoryLimit sets the number of undoable steps kept per session
func WithHistoryLimit(limit int) EditorOption {
	return func(s *EditorService) { s.historyLimit = limit }
}

// WithSessionTTL sets how long an idle session stays open. Zero disables eviction.
func WithSessionTTL(ttl time.Duration) EditorOption {
	return func(s *EditorService) { s.ttl = ttl }
}

// WithRegistry sets the block registry shared by all sessions
func WithRegistry(r *blocks.Registry) EditorOption {
	return func(s *EditorService) { s.registry = r }
}

// EditorService keeps one blocks.Editor per open document. Operations on a
// document are serialized by the session mutex; distinct documents proceed in
// parallel.
type EditorService struct {
	repo         domain.DocumentRepository
	logger       logger.Logger
	registry     *blocks.Registry
	historyLimit int
	ttl          time.Duration

	mu       sync.Mutex
	sessions map[string]*session
	loads    singleflight.Group

	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewEditorService creates the service and starts idle session eviction when a TTL is set
func NewEditorService(repo domain.DocumentRepository, logger logger.Logger, opts ...EditorOption) *EditorService {
	s := &EditorService{
		repo:         repo,
		logger:       logger,
		historyLimit: blocks.DefaultHistoryLimit,
		sessions:     make(map[string]*session),
		now:          time.Now,
		stop:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = blocks.DefaultRegistry()
	}

	if s.ttl > 0 {
		s.wg.Add(1)
		go s.evictLoop(evictionInterval(s.ttl))
	}
	return s
}

func evictionInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval < time.Second {
		return time.Second
	}
	if interval > time.Minute {
		return time.Minute
	}
	return interval
}

func (s *EditorService) evictLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictIdle(context.Background())
		case <-s.stop:
			return
		}
	}
}

// evictIdle closes the sessions that were not used for longer than the TTL
func (s *EditorService) evictIdle(ctx context.Context) {
	deadline := s.now().Add(-s.ttl)

	s.mu.Lock()
	open := make(map[string]*session, len(s.sessions))
	for id, sess := range s.sessions {
		open[id] = sess
	}
	s.mu.Unlock()

	var idle []string
	for id, sess := range open {
		sess.mu.Lock()
		if sess.lastUsed.Before(deadline) {
			idle = append(idle, id)
		}
		sess.mu.Unlock()
	}

	for _, id := range idle {
		if err := s.Close(ctx, id); err != nil {
			s.logger.WithField("document_id", id).WithField("error", err.Error()).Error("Failed to flush evicted session")
			continue
		}
		s.logger.WithField("document_id", id).Debug("Evicted idle editing session")
	}
}

// Shutdown stops eviction and flushes every open session. Sessions that fail
// to flush stay open and are retried by a later Shutdown.
func (s *EditorService) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()

	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := s.Close(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenSessions returns the number of documents currently loaded
func (s *EditorService) OpenSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// acquire returns the locked session of a document, loading it on first use
func (s *EditorService) acquire(ctx context.Context, documentID string) (*session, error) {
	for {
		s.mu.Lock()
		sess, ok := s.sessions[documentID]
		s.mu.Unlock()

		if !ok {
			v, err, _ := s.loads.Do(documentID, func() (interface{}, error) {
				return s.load(ctx, documentID)
			})
			if err != nil {
				return nil, err
			}
			sess = v.(*session)
		}

		sess.mu.Lock()
		if sess.closed {
			// closed between lookup and lock
			sess.mu.Unlock()
			continue
		}
		sess.lastUsed = s.now()
		return sess, nil
	}
}

func (s *EditorService) load(ctx context.Context, documentID string) (*session, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[documentID]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	doc, err := s.repo.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	sess := &session{name: doc.Name, lastUsed: s.now()}
	sess.editor = blocks.NewEditor(
		blocks.WithRegistry(s.registry),
		blocks.WithEmail(doc.Email),
		blocks.WithHistoryLimit(s.historyLimit),
		blocks.WithPersister(s.persister(documentID, sess)),
	)

	s.mu.Lock()
	s.sessions[documentID] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	tracing.RecordSessions(ctx, count)
	s.logger.WithField("document_id", documentID).Debug("Opened editing session")
	return sess, nil
}

// persister saves the whole document after every change of a session
func (s *EditorService) persister(documentID string, sess *session) blocks.Persister {
	return blocks.PersisterFunc(func(ctx context.Context, email *blocks.Email) error {
		return s.repo.UpdateDocument(ctx, &domain.Document{
			ID:      documentID,
			Name:    sess.name,
			Email:   email,
			Version: domain.DocumentFormatVersion,
		})
	})
}

// Close flushes unsaved changes and drops the session of a document. The
// session stays open when the flush fails so its changes can be retried.
// Closing a document without a session does nothing.
func (s *EditorService) Close(ctx context.Context, documentID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[documentID]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	// operations waiting on the session see it closed and reload the flushed document
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil
	}

	if sess.dirty {
		err := s.repo.UpdateDocument(ctx, &domain.Document{
			ID:      documentID,
			Name:    sess.name,
			Email:   sess.editor.Email(),
			Version: domain.DocumentFormatVersion,
		})
		if err != nil {
			return fmt.Errorf("failed to flush document %s: %w", documentID, err)
		}
		sess.dirty = false
	}
	sess.closed = true

	s.mu.Lock()
	if s.sessions[documentID] == sess {
		delete(s.sessions, documentID)
	}
	count := len(s.sessions)
	s.mu.Unlock()

	tracing.RecordSessions(ctx, count)
	return nil
}

// LiveEmail returns the content of the open session of a document
func (s *EditorService) LiveEmail(documentID string) (*blocks.Email, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[documentID]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, false
	}
	return sess.editor.Email(), true
}

// Email returns the live content of a document: the session state when one is
// open, the stored document otherwise
func (s *EditorService) Email(ctx context.Context, documentID string) (*blocks.Email, error) {
	if email, ok := s.LiveEmail(documentID); ok {
		return email, nil
	}

	doc, err := s.repo.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return doc.Email, nil
}

func stateOf(documentID string, e *blocks.Editor) *domain.EditorState {
	state := &domain.EditorState{
		DocumentID: documentID,
		Email:      e.Email(),
		CanUndo:    e.CanUndo(),
		CanRedo:    e.CanRedo(),
	}
	if id, ok := e.Selected(); ok {
		state.SelectedBlockID = &id
	}
	return state
}

// editFunc applies a change to an editor and returns the affected block and
// whether the document changed
type editFunc func(ctx context.Context, e *blocks.Editor) (*blocks.Block, bool, error)

// edit runs fn against the session of a document. A change that could not be
// persisted is kept in the session and retried when the session closes.
func (s *EditorService) edit(ctx context.Context, method, documentID string, fn editFunc) (_ *domain.EditorResult, err error) {
	ctx, span := tracing.StartServiceSpan(ctx, "EditorService", method, tracing.DocumentAttribute(documentID))
	defer func() { tracing.EndSpan(span, err) }()

	sess, err := s.acquire(ctx, documentID)
	if err != nil {
		s.logFailure(method, documentID, err)
		tracing.RecordOperation(ctx, method, err)
		return nil, err
	}
	defer sess.mu.Unlock()

	block, changed, err := fn(ctx, sess.editor)

	var persistErr *blocks.PersistError
	if errors.As(err, &persistErr) {
		s.logger.WithFields(map[string]interface{}{
			"document_id": documentID,
			"operation":   method,
			"error":       persistErr.Err.Error(),
		}).Warn("Change kept in editing session, failed to persist document")
		sess.dirty = true
		err = nil
	} else if err != nil {
		s.logFailure(method, documentID, err)
		tracing.RecordOperation(ctx, method, err)
		return nil, err
	} else if changed {
		sess.dirty = false
	}

	span.AddAttributes(trace.BoolAttribute("changed", changed))
	tracing.RecordOperation(ctx, method, nil)

	return &domain.EditorResult{
		Block:     block,
		Changed:   changed,
		Persisted: !sess.dirty,
		State:     stateOf(documentID, sess.editor),
	}, nil
}

// logFailure logs unexpected errors; rejected requests are only logged at debug level
func (s *EditorService) logFailure(method, documentID string, err error) {
	l := s.logger.WithFields(map[string]interface{}{
		"document_id": documentID,
		"operation":   method,
		"error":       err.Error(),
	})

	var notFound *domain.ErrDocumentNotFound
	switch {
	case errors.As(err, &notFound),
		errors.Is(err, blocks.ErrTargetNotFound),
		errors.Is(err, blocks.ErrMoveIntoSelf),
		errors.Is(err, blocks.ErrUnknownBlockType),
		errors.Is(err, blocks.ErrInvalidHierarchy):
		l.Debug("Editor operation rejected")
	default:
		l.Error("Editor operation failed")
	}
}

// containerType returns the type of the block children would be inserted into
func containerType(root *blocks.Block, parentID string) (blocks.BlockType, bool) {
	if parentID == "" || parentID == root.ID {
		return root.Type, true
	}
	parent, ok := blocks.FindByID(root, parentID)
	if !ok {
		return "", false
	}
	return parent.Type, true
}

// checkHierarchy rejects placing a block of type child under parentID. Unknown
// parents are left to the editor, which reports them as not found.
func checkHierarchy(root *blocks.Block, child blocks.BlockType, parentID string) error {
	parentType, ok := containerType(root, parentID)
	if !ok {
		return nil
	}
	if !blocks.CanDrop(child, parentType) {
		return fmt.Errorf("%w: %q cannot contain %q", blocks.ErrInvalidHierarchy, parentType, child)
	}
	return nil
}

func findBlock(e *blocks.Editor, id string) *blocks.Block {
	block, ok := blocks.FindByID(e.Email().Content, id)
	if !ok {
		return nil
	}
	return block
}

func (s *EditorService) State(ctx context.Context, documentID string) (*domain.EditorState, error) {
	return tracing.Traced(ctx, "EditorService", "State", func(ctx context.Context) (*domain.EditorState, error) {
		sess, err := s.acquire(ctx, documentID)
		if err != nil {
			s.logFailure("State", documentID, err)
			return nil, err
		}
		defer sess.mu.Unlock()

		return stateOf(documentID, sess.editor), nil
	}, tracing.DocumentAttribute(documentID))
}

func (s *EditorService) AddBlock(ctx context.Context, req *domain.AddBlockRequest) (*domain.EditorResult, error) {
	return s.edit(ctx, "AddBlock", req.DocumentID, func(ctx context.Context, e *blocks.Editor) (*blocks.Block, bool, error) {
		if _, ok := e.Registry().Definition(req.Type); !ok {
			return nil, false, &blocks.UnknownBlockTypeError{Type: req.Type}
		}
		if err := checkHierarchy(e.Email().Content, req.Type, req.ParentID); err != nil {
			return nil, false, err
		}

		overrides := blocks.Overrides{Data: req.Data, Attributes: req.Attributes}
		block, err := e.AddNewBlock(ctx, req.Type, overrides, req.ParentID, req.IndexOrAppend())
		return block, block != nil, err
	})
}

func (s *EditorService) UpdateBlock(ctx context.Context, req *domain.UpdateBlockRequest) (*domain.EditorResult, error) {
	return s.edit(ctx, "UpdateBlock", req.DocumentID, func(ctx context.Context, e *blocks.Editor) (*blocks.Block, bool, error) {
		err := e.UpdateBlock(ctx, req.BlockID, blocks.BlockUpdate{Data: req.Data, Attributes: req.Attributes})
		if err != nil && !isPersistError(err) {
			return nil, false, err
		}
		return findBlock(e, req.BlockID), true, err
	})
}

func (s *EditorService) DeleteBlock(ctx context.Context, req *domain.BlockRequest) (*domain.EditorResult, error) {
	return s.edit(ctx, "DeleteBlock", req.DocumentID, func(ctx context.Context, e *blocks.Editor) (*blocks.Block, bool, error) {
		if err := e.DeleteBlock(ctx, req.BlockID); err != nil {
			return nil, isPersistError(err), err
		}
		return nil, true, nil
	})
}

func (s *EditorService) MoveBlock(ctx context.Context, req *domain.MoveBlockRequest) (*domain.EditorResult, error) {
	return s.edit(ctx, "MoveBlock", req.DocumentID, func(ctx context.Context, e *blocks.Editor) (*blocks.Block, bool, error) {
		root := e.Email().Content
		block, ok := blocks.FindByID(root, req.BlockID)
		if !ok {
			return nil, false, fmt.Errorf("move %q: %w", req.BlockID, blocks.ErrTargetNotFound)
		}
		if err := checkHierarchy(root, block.Type, req.ParentID); err != nil {
			return nil, false, err
		}
		if blocks.IsNoopMove(root, req.BlockID, req.ParentID, req.IndexOrAppend()) {
			return block, false, nil
		}

		err := e.MoveBlock(ctx, req.BlockID, req.ParentID, req.IndexOrAppend())
		if err != nil && !isPersistError(err) {
			return nil, false, err
		}
		return findBlock(e, req.BlockID), true, err
	})
}

func (s *EditorService) DuplicateBlock(ctx context.Context, req *domain.BlockRequest) (*domain.EditorResult, error) {
	return s.edit(ctx, "DuplicateBlock", req.DocumentID, func(ctx context.Context, e *blocks.Editor) (*blocks.Block, bool, error) {
		block, err := e.DuplicateBlock(ctx, req.BlockID)
		return block, block != nil, err
	})
}

func (s *EditorService) Drop(ctx context.Context, req *domain.DropRequest) (*domain.EditorResult, error) {
	payload, err := req.Validate()
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	return s.edit(ctx, "Drop", req.DocumentID, func(ctx context.Context, e *blocks.Editor) (*blocks.Block, bool, error) {
		root := e.Email().Content

		blockType := payload.BlockType
		if payload.Kind == blocks.DropKindMove {
			dragged, ok := blocks.FindByID(root, payload.BlockID)
			if !ok {
				return nil, false, fmt.Errorf("move %q: %w", payload.BlockID, blocks.ErrTargetNotFound)
			}
			blockType = dragged.Type
		} else if _, ok := e.Registry().Definition(blockType); !ok {
			return nil, false, &blocks.UnknownBlockTypeError{Type: blockType}
		}

		if err := checkHierarchy(root, blockType, req.ParentID); err != nil {
			return nil, false, err
		}
		return e.Drop(ctx, payload, req.ParentID, req.IndexOrAppend())
	})
}

func (s *EditorService) UpdateBody(ctx context.Context, req *domain.UpdateBodyRequest) (*domain.EditorResult, error) {
	return s.edit(ctx, "UpdateBody", req.DocumentID, func(ctx context.Context, e *blocks.Editor) (*blocks.Block, bool, error) {
		err := e.UpdateBodyAttributes(ctx, req.Attributes)
		return nil, err == nil || isPersistError(err), err
	})
}

func (s *EditorService) UpdateSubject(ctx context.Context, req *domain.UpdateSubjectRequest) (*domain.EditorResult, error) {
	return s.edit(ctx, "UpdateSubject", req.DocumentID, func(ctx context.Context, e *blocks.Editor) (*blocks.Block, bool, error) {
		if e.Email().Subject == req.Subject {
			return nil, false, nil
		}
		err := e.UpdateSubject(ctx, req.Subject)
		return nil, err == nil || isPersistError(err), err
	})
}

func (s *EditorService) Clear(ctx context.Context, documentID string) (*domain.EditorResult, error) {
	return s.edit(ctx, "Clear", documentID, func(ctx context.Context, e *blocks.Editor) (*blocks.Block, bool, error) {
		err := e.ClearCanvas(ctx)
		return nil, err == nil || isPersistError(err), err
	})
}

func (s *EditorService) Undo(ctx context.Context, documentID string) (*domain.EditorResult, error) {
	return s.edit(ctx, "Undo", documentID, func(ctx context.Context, e *blocks.Editor) (*blocks.Block, bool, error) {
		changed, err := e.Undo(ctx)
		return nil, changed, err
	})
}

func (s *EditorService) Redo(ctx context.Context, documentID string) (*domain.EditorResult, error) {
	return s.edit(ctx, "Redo", documentID, func(ctx context.Context, e *blocks.Editor) (*blocks.Block, bool, error) {
		changed, err := e.Redo(ctx)
		return nil, changed, err
	})
}

func (s *EditorService) Select(ctx context.Context, req *domain.SelectBlockRequest) (*domain.EditorState, error) {
	ctx, span := tracing.StartServiceSpan(ctx, "EditorService", "Select")
	defer span.End()

	sess, err := s.acquire(ctx, req.DocumentID)
	if err != nil {
		s.logFailure("Select", req.DocumentID, err)
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}
	defer sess.mu.Unlock()

	if err := sess.editor.SelectBlock(req.BlockID); err != nil {
		tracing.MarkSpanError(ctx, err)
		return nil, err
	}
	return stateOf(req.DocumentID, sess.editor), nil
}

func isPersistError(err error) bool {
	var persistErr *blocks.PersistError
	return errors.As(err, &persistErr)
}
