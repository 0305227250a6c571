// Package claim defines the interface for session claim tracking. A claim
// guarantees at-most-once processing: a session submitted twice is only
// enqueued by the caller that wins the claim.
package claim

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Registry records claimed session IDs.
type Registry interface {
	// Claim atomically acquires the session. Returns true if the claim was
	// won, false if another caller already holds it or the registry is at
	// capacity.
	Claim(ctx context.Context, id uuid.UUID) bool

	// Release frees a claim so the session can be submitted again. Used
	// when enqueuing fails after a successful claim, and when a run ends.
	Release(ctx context.Context, id uuid.UUID)

	Size() int64
}

// inMemoryRegistry implements Registry with a mutex-guarded set. With
// maxSize > 0 new claims are refused at capacity, which backpressures
// intake the same way a full queue does.
type inMemoryRegistry struct {
	mu      sync.Mutex
	held    map[uuid.UUID]struct{}
	maxSize int
	size    atomic.Int64
}

// NewInMemoryRegistry creates a new in-memory claim registry with
// configuration options.
func NewInMemoryRegistry(opts ...Option) Registry {
	r := &inMemoryRegistry{
		maxSize: 4096,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.held = make(map[uuid.UUID]struct{})

	return r
}

// Claim atomically acquires the session.
func (r *inMemoryRegistry) Claim(ctx context.Context, id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.held[id]; exists {
		return false
	}
	if r.maxSize > 0 && len(r.held) >= r.maxSize {
		return false
	}

	r.held[id] = struct{}{}
	r.size.Add(1)
	return true
}

// Release frees a claim. Releasing an unclaimed ID is a no-op.
func (r *inMemoryRegistry) Release(ctx context.Context, id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.held[id]; exists {
		delete(r.held, id)
		r.size.Add(-1)
	}
}

// Size returns the current number of held claims.
func (r *inMemoryRegistry) Size() int64 {
	return r.size.Load()
}
