package session

import (
	"context"
	"sync"
	"time"
)

type memoryValue struct {
	data      string
	expiresAt time.Time
}

// MemoryPendingStore keeps slots in process memory. Used when Redis is
// disabled and in tests.
type MemoryPendingStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	data map[string]memoryValue
}

// NewMemoryPendingStore creates an in-memory store
func NewMemoryPendingStore(ttl time.Duration) *MemoryPendingStore {
	return &MemoryPendingStore{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[string]memoryValue),
	}
}

// Save writes the three keys
func (s *MemoryPendingStore) Save(_ context.Context, sessionID string, p *PendingCheckout) error {
	values, err := encode(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt := s.now().Add(s.ttl)
	for i, k := range slotKeys(sessionID) {
		s.data[k] = memoryValue{data: values[i], expiresAt: expiresAt}
	}
	return nil
}

func (s *MemoryPendingStore) get(key string) *string {
	v, ok := s.data[key]
	if !ok {
		return nil
	}
	if !s.now().Before(v.expiresAt) {
		delete(s.data, key)
		return nil
	}
	return &v.data
}

// Load reads the three keys
func (s *MemoryPendingStore) Load(_ context.Context, sessionID string) (*PendingCheckout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := slotKeys(sessionID)
	return decode(s.get(keys[0]), s.get(keys[1]), s.get(keys[2]))
}

// Clear deletes the three keys
func (s *MemoryPendingStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range slotKeys(sessionID) {
		delete(s.data, k)
	}
	return nil
}
