package id

import (
	"crypto/rand"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"fitlab/internal/platform/clock"
)

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// ULID produces lexicographically sortable ids derived from the clock.
// Ids created within the same millisecond stay ordered.
type ULID struct {
	clock   clock.Clock
	mu      sync.Mutex
	entropy io.Reader
}

func NewULID(clk clock.Clock) *ULID {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &ULID{clock: clk, entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ULID) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.clock.Now()), g.entropy).String()
}

type UUID struct{}

func (UUID) New() string {
	return uuid.NewString()
}
