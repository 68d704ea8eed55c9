package core

import (
	"errors"
	"math"
	"sync"
	"time"
)

// ErrIDsExhausted is returned when the largest known id is already
// math.MaxInt64, so no greater id exists.
var ErrIDsExhausted = errors.New("no todo ids left above the largest stored id")

// IDGenerator hands out todo ids.
type IDGenerator interface {
	// NextID returns an id strictly greater than every id it has returned
	// or been told about via Observe, or ErrIDsExhausted.
	NextID() (int64, error)
	// Observe records an existing id so later ids never collide with it.
	Observe(id int64)
}

// clockIDGenerator produces timestamp-like ids: the current Unix time in
// milliseconds, bumped past the last id when the clock has not advanced.
type clockIDGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewIDGenerator creates an IDGenerator driven by now. A nil now uses time.Now.
func NewIDGenerator(now func() time.Time) IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &clockIDGenerator{now: now}
}

func (g *clockIDGenerator) NextID() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		if g.last == math.MaxInt64 {
			return 0, ErrIDsExhausted
		}
		id = g.last + 1
	}
	g.last = id
	return id, nil
}

func (g *clockIDGenerator) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id > g.last {
		g.last = id
	}
}
