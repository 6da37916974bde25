package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	require.NoError(t, err)
	b, err := NewSeed()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewSource_FixedSeedIsReproducible(t *testing.T) {
	r1 := NewSource(42)
	r2 := NewSource(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, r1.Intn(1000), r2.Intn(1000))
	}
}
