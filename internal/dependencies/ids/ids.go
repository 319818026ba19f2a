package ids

import "github.com/google/uuid"

// Generator produces unique record identifiers
type Generator interface {
	NewID() string
}

// UUIDGenerator issues time-ordered (v7) UUIDs. Within a process each id
// sorts after the previous one, so ids break ties between records created
// in the same millisecond.
type UUIDGenerator struct{}

// New creates a new UUIDGenerator
func New() *UUIDGenerator {
	return &UUIDGenerator{}
}

// NewID returns a fresh UUID string
func (g *UUIDGenerator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
