package arrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func symbolsGen(minLen, maxLen int) *rapid.Generator[[]Symbol] {
	return rapid.SliceOfN(rapid.SampledFrom(Arrows), minLen, maxLen)
}

// TestTrackerExactMatchProperty: with exactly n inputs, the result is true iff
// the inputs equal the target element for element.
func TestTrackerExactMatchProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		target := symbolsGen(n, n).Draw(t, "target")
		inputs := symbolsGen(n, n).Draw(t, "inputs")

		tr := NewTracker(target)
		for i, s := range inputs {
			accepted, froze := tr.Submit(s)
			if !accepted {
				t.Fatalf("input %d rejected", i)
			}
			if froze != (i == n-1) {
				t.Fatalf("froze=%v at input %d of %d", froze, i, n)
			}
		}

		equal := true
		for i := range target {
			if target[i] != inputs[i] {
				equal = false
			}
		}

		passed, ok := tr.Result()
		if !ok {
			t.Fatal("result should be fixed after n inputs")
		}
		if passed != equal {
			t.Fatalf("target=%v inputs=%v passed=%v", target, inputs, passed)
		}
	})
}

// TestTrackerShortInputFailsOnTimeoutProperty: fewer than n inputs then
// timeout always scores false.
func TestTrackerShortInputFailsOnTimeoutProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		target := symbolsGen(n, n).Draw(t, "target")
		inputs := symbolsGen(0, n-1).Draw(t, "inputs")

		tr := NewTracker(target)
		for _, s := range inputs {
			tr.Submit(s)
		}
		if tr.Frozen() {
			t.Fatal("tracker frozen before reaching full length")
		}

		tr.FinalizeOnTimeout()
		passed, ok := tr.Result()
		if !ok || passed {
			t.Fatalf("short input should fail: ok=%v passed=%v", ok, passed)
		}
	})
}

// TestTrackerOverflowIgnoredProperty: inputs beyond n are ignored and the
// result depends only on the first n.
func TestTrackerOverflowIgnoredProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		target := symbolsGen(n, n).Draw(t, "target")
		inputs := symbolsGen(n+1, n+10).Draw(t, "inputs")

		tr := NewTracker(target)
		for i, s := range inputs {
			accepted, _ := tr.Submit(s)
			if accepted != (i < n) {
				t.Fatalf("input %d accepted=%v", i, accepted)
			}
		}

		ref := NewTracker(target)
		for _, s := range inputs[:n] {
			ref.Submit(s)
		}

		got, _ := tr.Result()
		want, _ := ref.Result()
		if got != want {
			t.Fatalf("overflow changed result: got %v want %v", got, want)
		}
		if tr.Count() != n {
			t.Fatalf("expected %d stored inputs, got %d", n, tr.Count())
		}
	})
}

// TestTrackerTimeoutIdempotentProperty: finalizing on timeout any number of
// times never changes a fixed result.
func TestTrackerTimeoutIdempotentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		target := symbolsGen(n, n).Draw(t, "target")
		inputs := symbolsGen(0, n).Draw(t, "inputs")
		repeats := rapid.IntRange(1, 5).Draw(t, "repeats")

		tr := NewTracker(target)
		for _, s := range inputs {
			tr.Submit(s)
		}
		tr.FinalizeOnTimeout()
		first, _ := tr.Result()

		for i := 0; i < repeats; i++ {
			if tr.FinalizeOnTimeout() {
				t.Fatal("second finalize reported a change")
			}
			again, _ := tr.Result()
			if again != first {
				t.Fatalf("result changed from %v to %v", first, again)
			}
		}
	})
}

func TestTracker_SubmitAfterTimeoutIgnored(t *testing.T) {
	tr := NewTracker([]Symbol{Left, Up})
	tr.Submit(Left)
	assert.True(t, tr.FinalizeOnTimeout())

	accepted, froze := tr.Submit(Up)
	assert.False(t, accepted)
	assert.False(t, froze)

	passed, ok := tr.Result()
	assert.True(t, ok)
	assert.False(t, passed)
	assert.Equal(t, 1, tr.Count())
}

func TestTracker_ResultUnsetInitially(t *testing.T) {
	tr := NewTracker([]Symbol{Left})
	_, ok := tr.Result()
	assert.False(t, ok)
	assert.False(t, tr.Frozen())
	assert.Equal(t, 0, tr.Count())
}
