// Package arrow implements the arrow reflex game: players race to press a
// random sequence of arrow buttons before a shared deadline.
package arrow

import (
	"errors"
	"math/rand"
)

// Sequence generation errors.
var (
	ErrInvalidLength = errors.New("sequence length must be positive")
	ErrEmptyAlphabet = errors.New("alphabet must not be empty")
	ErrInvalidSymbol = errors.New("unknown arrow symbol")
)

// Symbol is one directional input.
type Symbol string

// Arrow symbols.
const (
	Left  Symbol = "left"
	Up    Symbol = "up"
	Right Symbol = "right"
	Down  Symbol = "down"
)

// Arrows is the game's fixed alphabet, in button order.
var Arrows = []Symbol{Left, Up, Right, Down}

var emojis = map[Symbol]string{
	Left:  "⬅️",
	Up:    "⬆️",
	Right: "➡️",
	Down:  "⬇️",
}

// Emoji returns the symbol's display form.
func (s Symbol) Emoji() string {
	if e, ok := emojis[s]; ok {
		return e
	}
	return string(s)
}

// ParseSymbol converts a symbol name into a Symbol.
func ParseSymbol(name string) (Symbol, error) {
	s := Symbol(name)
	if _, ok := emojis[s]; !ok {
		return "", ErrInvalidSymbol
	}
	return s, nil
}

// Generate draws length symbols independently and uniformly from alphabet.
func Generate(rng *rand.Rand, length int, alphabet []Symbol) ([]Symbol, error) {
	if length <= 0 {
		return nil, ErrInvalidLength
	}
	if len(alphabet) == 0 {
		return nil, ErrEmptyAlphabet
	}

	seq := make([]Symbol, length)
	for i := range seq {
		seq[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return seq, nil
}
