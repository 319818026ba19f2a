package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/scorekeeper/internal/dependencies/ids"
)

// MockIDs issues predictable sequential IDs for testing
type MockIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a MockIDs that yields "<prefix>-1", "<prefix>-2", ...
func NewMockIDs(prefix string) *MockIDs {
	return &MockIDs{prefix: prefix}
}

// NewID returns the next ID in sequence
func (g *MockIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next)
}
