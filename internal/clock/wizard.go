// Package clock implements the clock-in/out wizard: a linear conversation
// that collects a name, an action and a roster choice, then records the
// result to the ledger.
package clock

import (
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"telegram-clock-bot/internal/game"
	"telegram-clock-bot/internal/ledger"
)

// Wizard errors
var (
	ErrUnexpectedEvent    = errors.New("event not expected in the current step")
	ErrEmptyName          = errors.New("name must not be empty")
	ErrNameTooLong        = errors.New("name is too long")
	ErrInvalidAction      = errors.New("action must be clock in or clock out")
	ErrUnknownRosterEntry = errors.New("unknown roster entry")
	ErrNotOwner           = errors.New("only the user who started the wizard can use it")
	ErrSessionExpired     = errors.New("wizard has expired")
	ErrWizardRunning      = errors.New("a clock wizard is already open for this user")
)

// MaxNameLength is the longest accepted name, in runes.
const MaxNameLength = 64

// State is a wizard step.
type State int

const (
	StateAwaitingName State = iota
	StateAwaitingAction
	StateAwaitingRosterChoice
	StateFinalized
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateAwaitingName:
		return "awaiting_name"
	case StateAwaitingAction:
		return "awaiting_action"
	case StateAwaitingRosterChoice:
		return "awaiting_roster_choice"
	case StateFinalized:
		return "finalized"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Action is the clock direction.
type Action string

const (
	ActionClockIn  Action = "in"
	ActionClockOut Action = "out"
)

// Label returns the display label recorded in the ledger.
func (a Action) Label() string {
	switch a {
	case ActionClockIn:
		return "Clock in"
	case ActionClockOut:
		return "Clock out"
	default:
		return string(a)
	}
}

// ParseAction validates an action value.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionClockIn, ActionClockOut:
		return Action(s), nil
	default:
		return "", ErrInvalidAction
	}
}

// Summary is the finalized result of a wizard.
type Summary struct {
	Name        string
	Action      Action
	Participant string
	Timestamp   time.Time
	RosterImage string
}

// LedgerWriter accepts finalized entries without blocking.
type LedgerWriter interface {
	Record(e ledger.Entry)
}

// Wizard is one clock-in/out conversation owned by a single user in a chat.
// Each field is written once, by the transition out of the step that
// collects it.
type Wizard struct {
	mu sync.Mutex

	id      string
	chatID  int64
	ownerID int64

	state       State
	namePrompt  bool
	name        string
	action      Action
	participant string
	summary     *Summary

	roster       *Roster
	ledger       LedgerWriter
	loc          *time.Location
	now          func() time.Time
	lastActivity time.Time
}

var _ game.Session = (*Wizard)(nil)

// NewWizard creates a wizard in the AwaitingName step.
func NewWizard(chatID, ownerID int64, roster *Roster, lw LedgerWriter, loc *time.Location, now func() time.Time) *Wizard {
	if roster == nil {
		roster = DefaultRoster()
	}
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Wizard{
		id:           game.NewSessionID(),
		chatID:       chatID,
		ownerID:      ownerID,
		state:        StateAwaitingName,
		roster:       roster,
		ledger:       lw,
		loc:          loc,
		now:          now,
		lastActivity: now(),
	}
}

// ID returns the wizard identifier.
func (w *Wizard) ID() string { return w.id }

// ChatID returns the chat the wizard runs in.
func (w *Wizard) ChatID() int64 { return w.chatID }

// OwnerID returns the user who started the wizard.
func (w *Wizard) OwnerID() int64 { return w.ownerID }

// Roster returns the roster the wizard selects from.
func (w *Wizard) Roster() *Roster { return w.roster }

// State returns the current step.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Finalized reports whether the wizard accepts no further events, either
// because it completed or because it expired.
func (w *Wizard) Finalized() bool {
	s := w.State()
	return s == StateFinalized || s == StateExpired
}

// Name returns the collected name, empty until set.
func (w *Wizard) Name() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.name
}

// Action returns the chosen action, empty until set.
func (w *Wizard) Action() Action {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.action
}

// Summary returns the final summary once the wizard has completed.
func (w *Wizard) Summary() (Summary, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.summary == nil {
		return Summary{}, false
	}
	return *w.summary, true
}

// ExpectsName reports whether the owner has been prompted for a name and the
// wizard is still waiting for it.
func (w *Wizard) ExpectsName() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state == StateAwaitingName && w.namePrompt
}

// IdleFor returns how long it has been since the last accepted event.
func (w *Wizard) IdleFor() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.now().Sub(w.lastActivity)
}

// check validates the actor and step. Caller holds w.mu.
func (w *Wizard) check(actorID int64, want State) error {
	if w.state == StateExpired {
		return ErrSessionExpired
	}
	if actorID != w.ownerID {
		return ErrNotOwner
	}
	if w.state != want {
		return ErrUnexpectedEvent
	}
	return nil
}

// PromptName records that the owner asked to enter a name. The wizard stays
// in AwaitingName.
func (w *Wizard) PromptName(actorID int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.check(actorID, StateAwaitingName); err != nil {
		return err
	}
	w.namePrompt = true
	w.lastActivity = w.now()
	return nil
}

// SubmitName sets the name and advances to AwaitingAction. The name is
// trimmed and NFC-normalized.
func (w *Wizard) SubmitName(actorID int64, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.check(actorID, StateAwaitingName); err != nil {
		return err
	}

	name, err := NormalizeName(text)
	if err != nil {
		return err
	}

	w.name = name
	w.state = StateAwaitingAction
	w.lastActivity = w.now()
	return nil
}

// ChooseAction sets the action and advances to AwaitingRosterChoice.
func (w *Wizard) ChooseAction(actorID int64, action Action) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.check(actorID, StateAwaitingAction); err != nil {
		return err
	}
	if _, err := ParseAction(string(action)); err != nil {
		return err
	}

	w.action = action
	w.state = StateAwaitingRosterChoice
	w.lastActivity = w.now()
	return nil
}

// SelectParticipant sets the roster choice and finalizes the wizard. The
// timestamp is taken in the wizard's location and the entry is handed to
// the ledger without waiting for it.
func (w *Wizard) SelectParticipant(actorID int64, participant string) (Summary, error) {
	w.mu.Lock()

	if err := w.check(actorID, StateAwaitingRosterChoice); err != nil {
		w.mu.Unlock()
		return Summary{}, err
	}
	image, ok := w.roster.Image(participant)
	if !ok {
		w.mu.Unlock()
		return Summary{}, ErrUnknownRosterEntry
	}

	now := w.now().In(w.loc)
	w.participant = participant
	w.summary = &Summary{
		Name:        w.name,
		Action:      w.action,
		Participant: participant,
		Timestamp:   now,
		RosterImage: image,
	}
	w.state = StateFinalized
	w.lastActivity = now
	summary := *w.summary
	w.mu.Unlock()

	if w.ledger != nil {
		w.ledger.Record(ledger.Entry{
			Name:      summary.Name,
			Action:    summary.Action.Label(),
			Timestamp: summary.Timestamp,
		})
	}
	return summary, nil
}

// Expire discards the wizard unless it already completed. It reports whether
// this call expired it.
func (w *Wizard) Expire() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateFinalized || w.state == StateExpired {
		return false
	}
	w.state = StateExpired
	w.name = ""
	w.action = ""
	return true
}

// NormalizeName trims and NFC-normalizes a free-text name.
func NormalizeName(text string) (string, error) {
	name := strings.TrimSpace(norm.NFC.String(text))
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}
