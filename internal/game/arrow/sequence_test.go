package arrow

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestGenerate_Errors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := Generate(rng, 0, Arrows)
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, err = Generate(rng, -3, Arrows)
	assert.ErrorIs(t, err, ErrInvalidLength)

	_, err = Generate(rng, 4, nil)
	assert.ErrorIs(t, err, ErrEmptyAlphabet)
}

func TestGenerate_SeededIsReproducible(t *testing.T) {
	a, err := Generate(rand.New(rand.NewSource(99)), 8, Arrows)
	require.NoError(t, err)
	b, err := Generate(rand.New(rand.NewSource(99)), 8, Arrows)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerate_CoversAlphabet(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	seen := make(map[Symbol]int)
	for i := 0; i < 1000; i++ {
		seq, err := Generate(rng, 4, Arrows)
		require.NoError(t, err)
		for _, s := range seq {
			seen[s]++
		}
	}

	// 4000 draws over 4 symbols: each should land near 1000.
	for _, sym := range Arrows {
		assert.Greater(t, seen[sym], 800, "symbol %s drawn too rarely", sym)
		assert.Less(t, seen[sym], 1200, "symbol %s drawn too often", sym)
	}
}

// TestGenerateLengthAndAlphabetProperty checks that every generated sequence
// has the requested length and only alphabet symbols.
func TestGenerateLengthAndAlphabetProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64().Draw(t, "seed")
		length := rapid.IntRange(1, 32).Draw(t, "length")
		alphabet := rapid.SliceOfNDistinct(rapid.SampledFrom(Arrows), 1, len(Arrows), rapid.ID[Symbol]).Draw(t, "alphabet")

		seq, err := Generate(rand.New(rand.NewSource(seed)), length, alphabet)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(seq) != length {
			t.Fatalf("expected length %d, got %d", length, len(seq))
		}

		allowed := make(map[Symbol]bool)
		for _, s := range alphabet {
			allowed[s] = true
		}
		for _, s := range seq {
			if !allowed[s] {
				t.Fatalf("symbol %q not in alphabet %v", s, alphabet)
			}
		}
	})
}

func TestParseSymbol(t *testing.T) {
	for _, sym := range Arrows {
		got, err := ParseSymbol(string(sym))
		require.NoError(t, err)
		assert.Equal(t, sym, got)
	}

	_, err := ParseSymbol("diagonal")
	assert.ErrorIs(t, err, ErrInvalidSymbol)
}

func TestSymbol_Emoji(t *testing.T) {
	assert.Equal(t, "⬅️", Left.Emoji())
	assert.Equal(t, "⬆️", Up.Emoji())
	assert.Equal(t, "➡️", Right.Emoji())
	assert.Equal(t, "⬇️", Down.Emoji())
	assert.Equal(t, "x", Symbol("x").Emoji())
}
