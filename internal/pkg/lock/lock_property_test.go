// Package lock property-based tests for per-participant serialization.
package lock

import (
	"sync"
	"testing"

	"pgregory.net/rapid"
)

// TestWithLockSerializesParticipantProperty tests that concurrent appends for one
// participant never lose an element.
func TestWithLockSerializesParticipantProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		participantID := rapid.Int64Range(1, 1000000).Draw(t, "participantID")
		numOps := rapid.IntRange(2, 30).Draw(t, "numOps")

		pl := NewParticipantLock()
		var inputs []int

		var wg sync.WaitGroup
		wg.Add(numOps)
		for i := 0; i < numOps; i++ {
			go func(n int) {
				defer wg.Done()
				pl.WithLock(participantID, func() {
					inputs = append(inputs, n)
				})
			}(i)
		}
		wg.Wait()

		if len(inputs) != numOps {
			t.Fatalf("expected %d inputs, got %d", numOps, len(inputs))
		}
	})
}

// TestIndependentParticipantsProperty tests that each participant's counter
// ends with exactly its own number of operations.
func TestIndependentParticipantsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numParticipants := rapid.IntRange(2, 10).Draw(t, "numParticipants")
		opsPerParticipant := rapid.IntRange(5, 20).Draw(t, "opsPerParticipant")

		pl := NewParticipantLock()
		counts := make(map[int64]*int, numParticipants)
		for i := 1; i <= numParticipants; i++ {
			n := 0
			counts[int64(i)] = &n
		}

		var wg sync.WaitGroup
		wg.Add(numParticipants * opsPerParticipant)
		for id := int64(1); id <= int64(numParticipants); id++ {
			for j := 0; j < opsPerParticipant; j++ {
				go func(pid int64) {
					defer wg.Done()
					pl.WithLock(pid, func() {
						*counts[pid]++
					})
				}(id)
			}
		}
		wg.Wait()

		for id, n := range counts {
			if *n != opsPerParticipant {
				t.Fatalf("participant %d: expected %d, got %d", id, opsPerParticipant, *n)
			}
		}
	})
}
