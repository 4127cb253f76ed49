package mcp

import (
	"cmp"
	"errors"
	"slices"
	"sync"
	"time"
)

var (
	// ErrDuplicateID is returned when a request id is already outstanding.
	ErrDuplicateID = errors.New("duplicate request id")
	// ErrTableClosed is returned by Insert after CancelAll.
	ErrTableClosed = errors.New("pending table closed")
)

// PendingRequest is one in-flight call awaiting its response.
type PendingRequest struct {
	ID       int64
	Method   string
	IssuedAt time.Time
}

// PendingTable correlates outbound request ids to their calls. Each entry
// leaves the table exactly once: through Resolve or through CancelAll.
type PendingTable struct {
	mu      sync.Mutex
	entries map[int64]PendingRequest
	closed  bool
}

// NewPendingTable creates an empty table.
func NewPendingTable() *PendingTable {
	return &PendingTable{entries: make(map[int64]PendingRequest)}
}

// Insert records a new in-flight request.
func (t *PendingTable) Insert(req PendingRequest) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTableClosed
	}

	if _, ok := t.entries[req.ID]; ok {
		return ErrDuplicateID
	}

	t.entries[req.ID] = req

	return nil
}

// Resolve removes and returns the entry for id. The boolean is false when no
// such request is outstanding.
func (t *PendingTable) Resolve(id int64) (PendingRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	req, ok := t.entries[id]
	if ok {
		delete(t.entries, id)
	}

	return req, ok
}

// CancelAll removes every outstanding entry, ordered by id, and closes the
// table to further inserts.
func (t *PendingTable) CancelAll() []PendingRequest {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true

	cancelled := make([]PendingRequest, 0, len(t.entries))
	for _, req := range t.entries {
		cancelled = append(cancelled, req)
	}

	clear(t.entries)

	slices.SortFunc(cancelled, func(a, b PendingRequest) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return cancelled
}

// Len reports the number of outstanding requests.
func (t *PendingTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}
