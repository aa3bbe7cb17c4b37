package resource

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces resource identifiers. Implementations must be safe for
// concurrent use and must never hand out the same identifier twice.
type IDGenerator interface {
	NewID(p Provider, k Kind) string
}

// UUIDGenerator builds identifiers like "aws-vm-<uuid>"
type UUIDGenerator struct{}

// NewID implements IDGenerator
func (UUIDGenerator) NewID(p Provider, k Kind) string {
	return fmt.Sprintf("%s-%s-%s", p.idPrefix(), k, uuid.NewString())
}

// SequenceGenerator builds deterministic identifiers like "aws-vm-1", "aws-net-2".
// The counter is shared across providers and kinds.
type SequenceGenerator struct {
	next atomic.Uint64
}

// NewSequenceGenerator creates a SequenceGenerator starting at 1
func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{}
}

// NewID implements IDGenerator
func (g *SequenceGenerator) NewID(p Provider, k Kind) string {
	return fmt.Sprintf("%s-%s-%d", p.idPrefix(), k, g.next.Add(1))
}
