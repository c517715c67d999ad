package booking

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// maxNumberAttempts bounds the collision-retry loop at creation.
const maxNumberAttempts = 3

// NumberGenerator produces human-readable booking numbers of the form
// MB-<YYYYMMDD>-<HHMMSS>-<4-digit random>. Uniqueness is enforced by the
// database index, not the generator: the engine retries on a unique
// violation.
type NumberGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewNumberGenerator() *NumberGenerator {
	return &NumberGenerator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
}

func (g *NumberGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	return fmt.Sprintf("MB-%s-%s-%04d", now.Format("20060102"), now.Format("150405"), g.rng.Intn(10000))
}
