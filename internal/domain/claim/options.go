// Package claim defines the interface for session claim tracking.
package claim

// Option applies a configuration option to the in-memory registry.
type Option func(*inMemoryRegistry)

// WithMaxSize sets the maximum number of concurrently held claims.
// If maxSize > 0: new claims are refused at capacity.
// If maxSize <= 0: unbounded.
func WithMaxSize(maxSize int) Option {
	return func(r *inMemoryRegistry) {
		r.maxSize = maxSize
	}
}
