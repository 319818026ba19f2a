package mocks

import (
	"sync"

	"github.com/mcoot/scorekeeper/internal/dependencies/random"
)

var _ random.Random = (*MockRandom)(nil)

// MockRandom hands out queued codes, then a deterministic sequence
// over the requested alphabet so generated codes never repeat.
type MockRandom struct {
	mu     sync.Mutex
	queued []string
	issued int
}

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// QueueString appends codes to be returned before the fallback sequence
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queued = append(r.queued, values...)
}

func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.queued) > 0 {
		code := r.queued[0]
		r.queued = r.queued[1:]
		return code
	}
	r.issued++
	return sequenceCode(r.issued, length, alphabet)
}

// sequenceCode spells n in base len(alphabet), left-padded to length
func sequenceCode(n, length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}
	out := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		out[i] = alphabet[n%len(alphabet)]
		n /= len(alphabet)
	}
	return string(out)
}
