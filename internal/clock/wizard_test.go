package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-clock-bot/internal/ledger"
)

const owner = int64(42)

// fakeLedger collects entries handed to it.
type fakeLedger struct {
	mu      sync.Mutex
	entries []ledger.Entry
}

func (f *fakeLedger) Record(e ledger.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
}

func (f *fakeLedger) recorded() []ledger.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ledger.Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 1, 30, 0, 0, time.UTC)
}

func newTestWizard(lw LedgerWriter) *Wizard {
	loc := time.FixedZone("ICT", 7*3600)
	return NewWizard(100, owner, DefaultRoster(), lw, loc, fixedNow)
}

// Scenario D: name, action, roster choice in order produce a summary and a
// ledger record with the same values.
func TestWizard_FullFlow(t *testing.T) {
	lw := &fakeLedger{}
	w := newTestWizard(lw)
	assert.Equal(t, StateAwaitingName, w.State())

	require.NoError(t, w.PromptName(owner))
	assert.True(t, w.ExpectsName())

	require.NoError(t, w.SubmitName(owner, "Somchai"))
	assert.Equal(t, StateAwaitingAction, w.State())
	assert.False(t, w.ExpectsName())

	require.NoError(t, w.ChooseAction(owner, ActionClockIn))
	assert.Equal(t, StateAwaitingRosterChoice, w.State())

	summary, err := w.SelectParticipant(owner, "Alice")
	require.NoError(t, err)
	assert.Equal(t, StateFinalized, w.State())
	assert.True(t, w.Finalized())

	assert.Equal(t, "Somchai", summary.Name)
	assert.Equal(t, ActionClockIn, summary.Action)
	assert.Equal(t, "Alice", summary.Participant)
	assert.Equal(t, "https://example.com/cards/alice.png", summary.RosterImage)
	assert.Equal(t, "ICT", summary.Timestamp.Location().String())
	assert.Equal(t, 8, summary.Timestamp.Hour())

	entries := lw.recorded()
	require.Len(t, entries, 1)
	assert.Equal(t, "Somchai", entries[0].Name)
	assert.Equal(t, "Clock in", entries[0].Action)
	assert.Equal(t, "2024-03-01T08:30:00+07:00", entries[0].ISOTimestamp())

	got, ok := w.Summary()
	require.True(t, ok)
	assert.Equal(t, summary, got)
}

// Scenario E: a roster choice while waiting for a name changes nothing.
func TestWizard_OutOfOrderEventIgnored(t *testing.T) {
	lw := &fakeLedger{}
	w := newTestWizard(lw)

	_, err := w.SelectParticipant(owner, "Alice")
	assert.ErrorIs(t, err, ErrUnexpectedEvent)
	assert.Equal(t, StateAwaitingName, w.State())

	err = w.ChooseAction(owner, ActionClockOut)
	assert.ErrorIs(t, err, ErrUnexpectedEvent)
	assert.Equal(t, StateAwaitingName, w.State())

	_, ok := w.Summary()
	assert.False(t, ok)
	assert.Empty(t, lw.recorded())
}

func TestWizard_Validation(t *testing.T) {
	w := newTestWizard(nil)

	assert.ErrorIs(t, w.SubmitName(owner, "   "), ErrEmptyName)
	assert.Equal(t, StateAwaitingName, w.State())

	require.NoError(t, w.SubmitName(owner, "  Niran  "))
	assert.Equal(t, "Niran", w.Name())

	assert.ErrorIs(t, w.ChooseAction(owner, Action("sideways")), ErrInvalidAction)
	assert.Equal(t, StateAwaitingAction, w.State())

	require.NoError(t, w.ChooseAction(owner, ActionClockOut))

	_, err := w.SelectParticipant(owner, "Mallory")
	assert.ErrorIs(t, err, ErrUnknownRosterEntry)
	assert.Equal(t, StateAwaitingRosterChoice, w.State())

	summary, err := w.SelectParticipant(owner, "Davika")
	require.NoError(t, err)
	assert.Equal(t, "cards/davika.png", summary.RosterImage)
}

func TestWizard_OnlyOwner(t *testing.T) {
	w := newTestWizard(nil)

	assert.ErrorIs(t, w.PromptName(7), ErrNotOwner)
	assert.ErrorIs(t, w.SubmitName(7, "Intruder"), ErrNotOwner)
	assert.Equal(t, StateAwaitingName, w.State())
	assert.Empty(t, w.Name())
}

func TestWizard_WriteOnce(t *testing.T) {
	lw := &fakeLedger{}
	w := newTestWizard(lw)

	require.NoError(t, w.SubmitName(owner, "Somchai"))
	assert.ErrorIs(t, w.SubmitName(owner, "Other"), ErrUnexpectedEvent)
	assert.Equal(t, "Somchai", w.Name())

	require.NoError(t, w.ChooseAction(owner, ActionClockIn))
	assert.ErrorIs(t, w.ChooseAction(owner, ActionClockOut), ErrUnexpectedEvent)
	assert.Equal(t, ActionClockIn, w.Action())

	_, err := w.SelectParticipant(owner, "Bob")
	require.NoError(t, err)
	_, err = w.SelectParticipant(owner, "Charlie")
	assert.ErrorIs(t, err, ErrUnexpectedEvent)

	summary, _ := w.Summary()
	assert.Equal(t, "Bob", summary.Participant)
	assert.Len(t, lw.recorded(), 1)
}

func TestWizard_Expire(t *testing.T) {
	lw := &fakeLedger{}
	w := newTestWizard(lw)
	require.NoError(t, w.SubmitName(owner, "Somchai"))

	assert.True(t, w.Expire())
	assert.False(t, w.Expire())
	assert.Equal(t, StateExpired, w.State())
	assert.True(t, w.Finalized())
	assert.Empty(t, w.Name())

	assert.ErrorIs(t, w.ChooseAction(owner, ActionClockIn), ErrSessionExpired)
	assert.Empty(t, lw.recorded())
}

func TestWizard_ExpireAfterFinalizeIsNoop(t *testing.T) {
	w := newTestWizard(nil)
	require.NoError(t, w.SubmitName(owner, "A"))
	require.NoError(t, w.ChooseAction(owner, ActionClockOut))
	_, err := w.SelectParticipant(owner, "Alice")
	require.NoError(t, err)

	assert.False(t, w.Expire())
	assert.Equal(t, StateFinalized, w.State())
}

func TestNormalizeName(t *testing.T) {
	// "e" followed by a combining acute accent composes to a single rune.
	name, err := NormalizeName(" Ame\u0301lie ")
	require.NoError(t, err)
	assert.Equal(t, "Am\u00e9lie", name)

	name, err = NormalizeName("สมชาย")
	require.NoError(t, err)
	assert.Equal(t, "สมชาย", name)

	_, err = NormalizeName("\t\n")
	assert.ErrorIs(t, err, ErrEmptyName)

	long := make([]rune, MaxNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = NormalizeName(string(long))
	assert.ErrorIs(t, err, ErrNameTooLong)
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("in")
	require.NoError(t, err)
	assert.Equal(t, ActionClockIn, a)

	a, err = ParseAction("out")
	require.NoError(t, err)
	assert.Equal(t, ActionClockOut, a)

	_, err = ParseAction("IN")
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting_name", StateAwaitingName.String())
	assert.Equal(t, "finalized", StateFinalized.String())
	assert.Equal(t, "expired", StateExpired.String())
	assert.Equal(t, "unknown", State(99).String())
}
