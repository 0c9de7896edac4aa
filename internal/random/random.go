package random

import (
	"math/rand"
	"sync"
	"time"
)

// Source is a seedable engine.Rand safe for use from several lobbies.
type Source struct {
	mu     sync.Mutex
	random *rand.Rand
}

// Config for the random source
type Config struct {
	// Optional seed for reproducible draws
	Seed int64
}

// New creates a new random source
func New(cfg *Config) *Source {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	return &Source{
		random: rand.New(rand.NewSource(seed)),
	}
}

// Intn returns a uniform value in [0, n). n must be positive.
func (s *Source) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.random.Intn(n)
}
