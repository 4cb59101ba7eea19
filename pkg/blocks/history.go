package blocks

// DefaultHistoryLimit is the number of undoable steps kept by default
const DefaultHistoryLimit = 50

// Snapshot is a deep copy of the email plus the selection at a point in time
type Snapshot struct {
	Email           *Email  `json:"email"`
	SelectedBlockID *string `json:"selected_block_id,omitempty"`
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Email: s.Email.Clone()}
	if s.SelectedBlockID != nil {
		id := *s.SelectedBlockID
		out.SelectedBlockID = &id
	}
	return out
}

// History is a linear two-stack undo/redo history. It is not safe for
// concurrent use.
type History struct {
	limit   int
	past    []Snapshot
	present Snapshot
	future  []Snapshot
}

// NewHistory creates a history whose present is initial. A limit <= 0 uses DefaultHistoryLimit.
func NewHistory(limit int, initial Snapshot) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{
		limit:   limit,
		present: initial.Clone(),
	}
}

// Limit returns the maximum number of past entries
func (h *History) Limit() int {
	return h.limit
}

// Record makes snapshot the present. The previous present is pushed onto the
// past, evicting the oldest entry beyond the limit, and the future is cleared.
func (h *History) Record(snapshot Snapshot) {
	h.past = append(h.past, h.present)
	if len(h.past) > h.limit {
		h.past = append([]Snapshot(nil), h.past[len(h.past)-h.limit:]...)
	}
	h.present = snapshot.Clone()
	h.future = nil
}

// Reset discards past and future and makes snapshot the new baseline
func (h *History) Reset(snapshot Snapshot) {
	h.past = nil
	h.future = nil
	h.present = snapshot.Clone()
}

// Undo steps back one entry. It returns a copy of the new present and false
// when there was nothing to undo.
func (h *History) Undo() (Snapshot, bool) {
	if len(h.past) == 0 {
		return Snapshot{}, false
	}

	last := len(h.past) - 1
	previous := h.past[last]
	h.past = h.past[:last]
	h.future = append([]Snapshot{h.present}, h.future...)
	h.present = previous

	return h.present.Clone(), true
}

// Redo steps forward one entry. It returns a copy of the new present and
// false when there was nothing to redo.
func (h *History) Redo() (Snapshot, bool) {
	if len(h.future) == 0 {
		return Snapshot{}, false
	}

	next := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, h.present)
	if len(h.past) > h.limit {
		h.past = append([]Snapshot(nil), h.past[len(h.past)-h.limit:]...)
	}
	h.present = next

	return h.present.Clone(), true
}

// Present returns a copy of the current snapshot
func (h *History) Present() Snapshot {
	return h.present.Clone()
}

// CanUndo reports whether a past entry exists
func (h *History) CanUndo() bool {
	return len(h.past) > 0
}

// CanRedo reports whether a future entry exists
func (h *History) CanRedo() bool {
	return len(h.future) > 0
}

// Len returns the number of past and future entries
func (h *History) Len() (past, future int) {
	return len(h.past), len(h.future)
}
