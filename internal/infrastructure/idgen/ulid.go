package idgen

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"lukechampine.com/uint128"

	"github.com/iho/ledgerd/internal/domain"
)

// ULIDGenerator issues ULIDs read as big-endian 128-bit integers: a 48-bit
// millisecond timestamp on top of 80 bits of monotonic entropy. Every id is
// greater than the previous one, even if the wall clock steps back.
type ULIDGenerator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy *ulid.MonotonicEntropy
	last    domain.Uint128
}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return newULIDGenerator(time.Now)
}

func newULIDGenerator(now func() time.Time) *ULIDGenerator {
	return &ULIDGenerator{
		now:     now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Generate returns the next identifier.
func (g *ULIDGenerator) Generate() domain.Uint128 {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := uint128.Zero
	if id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy); err == nil {
		next = uint128.New(binary.BigEndian.Uint64(id[8:]), binary.BigEndian.Uint64(id[:8]))
	}

	if next.Cmp(g.last) <= 0 {
		// Clock moved back or the millisecond's entropy ran out.
		next, _ = domain.CheckedAdd(g.last, uint128.From64(1))
	}

	g.last = next
	return next
}
