package arrow

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"telegram-clock-bot/internal/game"
	"telegram-clock-bot/internal/pkg/deadline"
	"telegram-clock-bot/internal/pkg/lock"
)

// Options configures a new game session.
type Options struct {
	Length   int
	Alphabet []Symbol
	Timeout  time.Duration
	Rand     *rand.Rand
	Now      func() time.Time
}

// Session is one running arrow game. The target sequence and deadline are
// fixed at creation; participants join lazily on their first input.
type Session struct {
	id       string
	chatID   int64
	target   []Symbol
	deadline deadline.Deadline
	now      func() time.Time

	participants sync.Map // int64 -> *Tracker
	locks        *lock.ParticipantLock

	// pending counts trackers without a fixed result plus in-flight creations.
	pending   atomic.Int64
	finalized atomic.Bool

	done         chan struct{}
	doneOnce     sync.Once
	finalizeOnce sync.Once
	results      map[int64]bool
}

var _ game.Session = (*Session)(nil)

// Start generates the target sequence, fixes the deadline and returns a
// running session for chatID.
func Start(chatID int64, opts Options) (*Session, error) {
	if opts.Alphabet == nil {
		opts.Alphabet = Arrows
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(opts.Now().UnixNano()))
	}

	target, err := Generate(opts.Rand, opts.Length, opts.Alphabet)
	if err != nil {
		return nil, err
	}

	return &Session{
		id:       game.NewSessionID(),
		chatID:   chatID,
		target:   target,
		deadline: deadline.New(opts.Timeout, opts.Now()),
		now:      opts.Now,
		locks:    lock.NewParticipantLock(),
		done:     make(chan struct{}),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// ChatID returns the chat the game runs in.
func (s *Session) ChatID() int64 { return s.chatID }

// Finalized reports whether results have been fixed.
func (s *Session) Finalized() bool { return s.finalized.Load() }

// Target returns a copy of the target sequence.
func (s *Session) Target() []Symbol {
	out := make([]Symbol, len(s.target))
	copy(out, s.target)
	return out
}

// TimeRemaining returns whole seconds left before the deadline.
func (s *Session) TimeRemaining() int {
	return s.deadline.RemainingSeconds(s.now())
}

// ParticipantCount returns the number of participants that have sent input.
func (s *Session) ParticipantCount() int {
	n := 0
	s.participants.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// RecordInput applies one input from a participant. Inputs after the session
// is finalized or the deadline has passed are ignored, as are inputs beyond
// the target length. It returns how many inputs the participant has so far
// and whether this one was accepted.
func (s *Session) RecordInput(participantID int64, sym Symbol) (count int, accepted bool) {
	if s.finalized.Load() || s.deadline.Expired(s.now()) {
		return 0, false
	}

	t := s.tracker(participantID)

	var froze bool
	s.locks.WithLock(participantID, func() {
		if s.finalized.Load() {
			count = t.Count()
			return
		}
		accepted, froze = t.Submit(sym)
		count = t.Count()
	})

	if froze {
		s.release()
	}
	return count, accepted
}

// Finished reports whether the participant's result is already fixed.
// Participants who have not sent input are never finished.
func (s *Session) Finished(participantID int64) bool {
	v, ok := s.participants.Load(participantID)
	if !ok {
		return false
	}
	var frozen bool
	s.locks.WithLock(participantID, func() {
		frozen = v.(*Tracker).Frozen()
	})
	return frozen
}

// tracker returns the participant's tracker, creating it on first use.
func (s *Session) tracker(participantID int64) *Tracker {
	if v, ok := s.participants.Load(participantID); ok {
		return v.(*Tracker)
	}

	// Count the new tracker before it becomes visible so a concurrent freeze
	// cannot observe zero pending while it is still unfinished.
	s.pending.Add(1)
	actual, loaded := s.participants.LoadOrStore(participantID, NewTracker(s.target))
	if loaded {
		s.release()
	}
	return actual.(*Tracker)
}

// release drops one pending count and signals completion at zero.
func (s *Session) release() {
	if s.pending.Add(-1) == 0 {
		s.signalDone()
	}
}

func (s *Session) signalDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

// Done is closed once every known participant has a fixed result, or the
// session is finalized.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// AwaitCompletion blocks until every participant that has sent input has a
// fixed result, or the deadline passes, whichever comes first. Unfinished
// participants are then scored as failures. Cancelling ctx finalizes the
// session early, as on shutdown. The returned map holds one entry per
// participant; participants who never sent input are absent.
func (s *Session) AwaitCompletion(ctx context.Context) map[int64]bool {
	timer := time.NewTimer(s.deadline.Remaining(s.now()))
	defer timer.Stop()

	select {
	case <-s.done:
	case <-timer.C:
	case <-ctx.Done():
	}

	return s.Finalize()
}

// Finalize fixes all results and closes the session to further input.
// Calling it again returns the same results.
func (s *Session) Finalize() map[int64]bool {
	s.finalizeOnce.Do(func() {
		s.finalized.Store(true)

		results := make(map[int64]bool)
		s.participants.Range(func(k, v any) bool {
			participantID := k.(int64)
			t := v.(*Tracker)
			s.locks.WithLock(participantID, func() {
				t.FinalizeOnTimeout()
				passed, _ := t.Result()
				results[participantID] = passed
			})
			return true
		})
		s.results = results
		s.signalDone()
	})

	out := make(map[int64]bool, len(s.results))
	for k, v := range s.results {
		out[k] = v
	}
	return out
}
