package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces verification run identifiers.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator returns a random UUIDv4 per call. It is the default for
// real runs, where run IDs only need to be unique.
type UUIDGenerator struct{}

// Generate implements IDGenerator.
func (UUIDGenerator) Generate() string {
	return uuid.NewString()
}

// FixedIDGenerator returns the same ID on every call, for golden snapshots.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator that always returns id.
// An empty id defaults to "run-fixed".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "run-fixed"
	}
	return &FixedIDGenerator{id: id}
}

// Generate implements IDGenerator.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}

// SequentialIDGenerator returns prefix-0001, prefix-0002, ...
type SequentialIDGenerator struct {
	prefix string
	next   atomic.Int64
}

// NewSequentialIDGenerator creates a generator with the given prefix.
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate implements IDGenerator.
func (g *SequentialIDGenerator) Generate() string {
	return fmt.Sprintf("%s-%04d", g.prefix, g.next.Add(1))
}
