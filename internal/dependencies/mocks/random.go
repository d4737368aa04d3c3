package mocks

import (
	"fmt"
	"sync"

	"github.com/Ayu-zh/placement-connector/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued values are returned first; after that it counts upwards so
// identifiers stay unique and predictable.
type MockRandom struct {
	mu sync.Mutex

	uuids   []string
	strings []string
	counter int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// UUID returns the next queued UUID or a sequential fallback
func (r *MockRandom) UUID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.uuids) > 0 {
		v := r.uuids[0]
		r.uuids = r.uuids[1:]
		return v
	}
	r.counter++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", r.counter)
}

// String returns the next queued string or a sequential fallback
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.strings) > 0 {
		v := r.strings[0]
		r.strings = r.strings[1:]
		return v
	}
	r.counter++
	return fmt.Sprintf("rand%0*d", max(length-4, 1), r.counter)
}

// QueueUUID adds values to the UUID result queue
func (r *MockRandom) QueueUUID(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uuids = append(r.uuids, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strings = append(r.strings, values...)
}
