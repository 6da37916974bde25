package arrow

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-clock-bot/internal/game"
	"telegram-clock-bot/internal/pkg/random"
)

const (
	// DefaultTimeout is how long players have to enter the sequence.
	DefaultTimeout = 15 * time.Second
	// DefaultLength is the number of arrows in a target sequence.
	DefaultLength = 4
)

// ErrGameRunning is returned when a chat already has a running game.
var ErrGameRunning = errors.New("a game is already running in this chat")

// Config holds arrow game settings.
type Config struct {
	Length  int
	Timeout time.Duration
	// Seed fixes the sequence generator; zero draws a random seed.
	Seed int64
}

// Game creates and tracks arrow game sessions, at most one running per chat.
type Game struct {
	sessions *game.Registry[*Session]
	length   int
	timeout  time.Duration
	now      func() time.Time

	rng   *rand.Rand
	rngMu sync.Mutex
}

// New creates a Game. A nil config uses the defaults.
func New(cfg *Config) *Game {
	length := DefaultLength
	timeout := DefaultTimeout
	var seed int64
	if cfg != nil {
		if cfg.Length > 0 {
			length = cfg.Length
		}
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
		seed = cfg.Seed
	}

	return &Game{
		sessions: game.NewRegistry[*Session](),
		length:   length,
		timeout:  timeout,
		now:      time.Now,
		rng:      random.NewSource(seed),
	}
}

// Name returns the game's display name.
func (g *Game) Name() string {
	return "Arrow Game"
}

// Command returns the command that starts the game.
func (g *Game) Command() string {
	return "game"
}

// Timeout returns the per-session time limit.
func (g *Game) Timeout() time.Duration {
	return g.timeout
}

// Start creates a session in chatID unless one is already running there.
func (g *Game) Start(chatID int64) (*Session, error) {
	g.rngMu.Lock()
	s, err := Start(chatID, Options{
		Length:   g.length,
		Alphabet: Arrows,
		Timeout:  g.timeout,
		Rand:     g.rng,
		Now:      g.now,
	})
	g.rngMu.Unlock()
	if err != nil {
		return nil, err
	}

	_, ok, err := g.sessions.RegisterUnless(s, func(existing *Session) bool {
		return existing.ChatID() == chatID && !existing.Finalized()
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrGameRunning
	}

	log.Info().
		Int64("chat_id", chatID).
		Str("session_id", s.ID()).
		Interface("target", s.Target()).
		Dur("timeout", g.timeout).
		Msg("Arrow game started")

	return s, nil
}

// Session looks up a running session by ID.
func (g *Game) Session(id string) (*Session, bool) {
	return g.sessions.Get(id)
}

// ActiveInChat returns the running session in chatID, if any.
func (g *Game) ActiveInChat(chatID int64) (*Session, bool) {
	return g.sessions.Find(func(s *Session) bool {
		return s.ChatID() == chatID && !s.Finalized()
	})
}

// Finish waits for the session to complete, removes it and returns the
// results.
func (g *Game) Finish(ctx context.Context, s *Session) map[int64]bool {
	results := s.AwaitCompletion(ctx)
	g.sessions.Remove(s.ID())

	log.Info().
		Int64("chat_id", s.ChatID()).
		Str("session_id", s.ID()).
		Int("participants", len(results)).
		Msg("Arrow game finished")

	return results
}

// ActiveCount returns the number of running sessions.
func (g *Game) ActiveCount() int {
	return g.sessions.Count()
}
