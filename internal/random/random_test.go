package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededSourcesAgree(t *testing.T) {
	a := New(&Config{Seed: 42})
	b := New(&Config{Seed: 42})

	for i := 0; i < 20; i++ {
		require.Equal(t, a.Intn(10), b.Intn(10))
	}
}

func TestIntnStaysInRange(t *testing.T) {
	s := New(nil)
	for i := 0; i < 200; i++ {
		v := s.Intn(3)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 3)
	}
}
