package arrow

// Tracker accumulates one participant's inputs and fixes their pass/fail
// result exactly once. It is not safe for concurrent use; the owning Session
// serializes access per participant.
type Tracker struct {
	target []Symbol
	inputs []Symbol
	result *bool
}

// NewTracker creates a tracker scored against target.
func NewTracker(target []Symbol) *Tracker {
	return &Tracker{
		target: target,
		inputs: make([]Symbol, 0, len(target)),
	}
}

// Submit appends sym unless the tracker is already full or frozen.
// accepted reports whether sym was appended; froze reports whether this call
// fixed the result.
func (t *Tracker) Submit(sym Symbol) (accepted, froze bool) {
	if t.result != nil || len(t.inputs) >= len(t.target) {
		return false, false
	}

	t.inputs = append(t.inputs, sym)
	if len(t.inputs) < len(t.target) {
		return true, false
	}

	passed := true
	for i := range t.target {
		if t.inputs[i] != t.target[i] {
			passed = false
			break
		}
	}
	t.result = &passed
	return true, true
}

// FinalizeOnTimeout scores an unfinished tracker as a failure. It is
// idempotent and never changes a result that is already fixed.
func (t *Tracker) FinalizeOnTimeout() bool {
	if t.result != nil {
		return false
	}
	failed := false
	t.result = &failed
	return true
}

// Result returns the fixed result; ok is false while the result is unset.
func (t *Tracker) Result() (passed, ok bool) {
	if t.result == nil {
		return false, false
	}
	return *t.result, true
}

// Frozen reports whether the result has been fixed.
func (t *Tracker) Frozen() bool {
	return t.result != nil
}

// Count returns how many inputs have been accepted.
func (t *Tracker) Count() int {
	return len(t.inputs)
}
