package clock

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-clock-bot/internal/game"
)

// DefaultIdleExpiry is how long a wizard may sit without activity.
const DefaultIdleExpiry = 120 * time.Second

// Config holds wizard manager settings.
type Config struct {
	IdleExpiry time.Duration
	Location   *time.Location
	Roster     *Roster
	Ledger     LedgerWriter
	Now        func() time.Time
}

// Manager owns all open wizards, allows one per user per chat, and tears
// wizards down after the idle expiry.
type Manager struct {
	wizards *game.Registry[*Wizard]
	cfg     Config

	mu       sync.Mutex
	timers   map[string]*time.Timer
	onExpire func(*Wizard)
}

// NewManager creates a Manager. Zero config fields take defaults.
func NewManager(cfg Config) *Manager {
	if cfg.IdleExpiry <= 0 {
		cfg.IdleExpiry = DefaultIdleExpiry
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Roster == nil {
		cfg.Roster = DefaultRoster()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{
		wizards: game.NewRegistry[*Wizard](),
		cfg:     cfg,
		timers:  make(map[string]*time.Timer),
	}
}

// OnExpire sets a callback run after a wizard expires.
func (m *Manager) OnExpire(fn func(*Wizard)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = fn
}

// Roster returns the shared roster.
func (m *Manager) Roster() *Roster {
	return m.cfg.Roster
}

// IdleExpiry returns the configured idle expiry.
func (m *Manager) IdleExpiry() time.Duration {
	return m.cfg.IdleExpiry
}

// Start opens a wizard for ownerID in chatID.
func (m *Manager) Start(chatID, ownerID int64) (*Wizard, error) {
	w := NewWizard(chatID, ownerID, m.cfg.Roster, m.cfg.Ledger, m.cfg.Location, m.cfg.Now)

	_, ok, err := m.wizards.RegisterUnless(w, func(existing *Wizard) bool {
		return existing.ChatID() == chatID && existing.OwnerID() == ownerID && !existing.Finalized()
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrWizardRunning
	}

	id := w.ID()
	m.mu.Lock()
	m.timers[id] = time.AfterFunc(m.cfg.IdleExpiry, func() { m.checkIdle(id) })
	m.mu.Unlock()

	log.Info().
		Int64("chat_id", chatID).
		Int64("user_id", ownerID).
		Str("session_id", id).
		Msg("Clock wizard started")

	return w, nil
}

// Get looks up an open wizard by ID.
func (m *Manager) Get(id string) (*Wizard, bool) {
	return m.wizards.Get(id)
}

// ForOwner returns the open wizard of ownerID in chatID, if any.
func (m *Manager) ForOwner(chatID, ownerID int64) (*Wizard, bool) {
	return m.wizards.Find(func(w *Wizard) bool {
		return w.ChatID() == chatID && w.OwnerID() == ownerID && !w.Finalized()
	})
}

// Count returns the number of open wizards.
func (m *Manager) Count() int {
	return m.wizards.Count()
}

func (m *Manager) lookup(id string) (*Wizard, error) {
	w, ok := m.wizards.Get(id)
	if !ok {
		return nil, ErrSessionExpired
	}
	return w, nil
}

// PromptName dispatches an "enter name" request to wizard id.
func (m *Manager) PromptName(id string, actorID int64) (*Wizard, error) {
	w, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return w, w.PromptName(actorID)
}

// SubmitName dispatches a name submission to wizard id.
func (m *Manager) SubmitName(id string, actorID int64, text string) (*Wizard, error) {
	w, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := w.SubmitName(actorID, text); err != nil {
		return w, err
	}

	log.Debug().
		Str("session_id", id).
		Str("state", w.State().String()).
		Msg("Clock wizard name set")
	return w, nil
}

// ChooseAction dispatches an action choice to wizard id.
func (m *Manager) ChooseAction(id string, actorID int64, action Action) (*Wizard, error) {
	w, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return w, w.ChooseAction(actorID, action)
}

// SelectParticipant dispatches a roster choice to wizard id. On success the
// wizard is finalized and removed.
func (m *Manager) SelectParticipant(id string, actorID int64, participant string) (Summary, error) {
	w, err := m.lookup(id)
	if err != nil {
		return Summary{}, err
	}

	summary, err := w.SelectParticipant(actorID, participant)
	if err != nil {
		return Summary{}, err
	}
	m.remove(id)

	log.Info().
		Int64("chat_id", w.ChatID()).
		Int64("user_id", actorID).
		Str("session_id", id).
		Str("name", summary.Name).
		Str("action", string(summary.Action)).
		Str("participant", summary.Participant).
		Msg("Clock wizard finalized")

	return summary, nil
}

// Close stops all idle timers and drops every open wizard without recording.
func (m *Manager) Close() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.timers))
	for id, t := range m.timers {
		t.Stop()
		ids = append(ids, id)
	}
	m.timers = make(map[string]*time.Timer)
	m.mu.Unlock()

	for _, id := range ids {
		if w, ok := m.wizards.Get(id); ok {
			w.Expire()
		}
		m.wizards.Remove(id)
	}
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	if t, ok := m.timers[id]; ok {
		t.Stop()
		delete(m.timers, id)
	}
	m.mu.Unlock()
	m.wizards.Remove(id)
}

// checkIdle runs when a wizard's idle timer fires. Activity since the timer
// was armed pushes the expiry out instead of expiring.
func (m *Manager) checkIdle(id string) {
	w, ok := m.wizards.Get(id)
	if !ok {
		return
	}

	if idle := w.IdleFor(); idle < m.cfg.IdleExpiry {
		m.mu.Lock()
		if t, ok := m.timers[id]; ok {
			t.Reset(m.cfg.IdleExpiry - idle)
		}
		m.mu.Unlock()
		return
	}

	if !w.Expire() {
		return
	}
	m.remove(id)

	log.Info().
		Int64("chat_id", w.ChatID()).
		Int64("user_id", w.OwnerID()).
		Str("session_id", id).
		Msg("Clock wizard expired")

	m.mu.Lock()
	fn := m.onExpire
	m.mu.Unlock()
	if fn != nil {
		fn(w)
	}
}
