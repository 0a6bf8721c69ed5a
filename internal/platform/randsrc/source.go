package randsrc

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Source is a goroutine-safe uniform integer source.
type Source struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a source seeded with seed. A zero seed draws from the clock.
func New(seed uint64) *Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Source{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// IntN returns a value in [0, n). It panics when n <= 0.
func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}
