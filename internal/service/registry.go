package service

import (
	"context"
	"sync"
	"time"
)

type registryEntry[T any] struct {
	value      T
	lastAccess time.Time
}

// Registry holds per-key in-memory state and evicts idle entries
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]*registryEntry[T]
	idleTTL time.Duration
	now     func() time.Time
	onEvict func(key string, value T)
}

// NewRegistry creates a registry evicting entries idle for idleTTL
func NewRegistry[T any](idleTTL time.Duration) *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]*registryEntry[T]),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Get returns the entry for key and refreshes its idle timer
func (r *Registry[T]) Get(key string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	e.lastAccess = r.now()
	return e.value, true
}

// Put stores value under key, replacing any previous entry
func (r *Registry[T]) Put(key string, value T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[key] = &registryEntry[T]{value: value, lastAccess: r.now()}
}

// GetOrCreate returns the entry for key, storing create's result when absent.
// create runs outside the lock, so two racing callers may both create; the
// first stored value wins.
func (r *Registry[T]) GetOrCreate(key string, create func() (T, error)) (T, error) {
	if v, ok := r.Get(key); ok {
		return v, nil
	}

	v, err := create()
	if err != nil {
		var zero T
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[key]; ok {
		e.lastAccess = r.now()
		return e.value, nil
	}
	r.entries[key] = &registryEntry[T]{value: v, lastAccess: r.now()}
	return v, nil
}

// Len returns the number of live entries
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts idle entries and returns how many were removed
func (r *Registry[T]) Sweep() int {
	r.mu.Lock()
	cutoff := r.now().Add(-r.idleTTL)
	var evicted []*registryEntry[T]
	var keys []string
	for k, e := range r.entries {
		if e.lastAccess.Before(cutoff) {
			evicted = append(evicted, e)
			keys = append(keys, k)
			delete(r.entries, k)
		}
	}
	r.mu.Unlock()

	if r.onEvict != nil {
		for i, e := range evicted {
			r.onEvict(keys[i], e.value)
		}
	}
	return len(evicted)
}

// Run sweeps every interval until ctx is done
func (r *Registry[T]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
