// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-clock-bot/internal/clock"
	"telegram-clock-bot/internal/config"
	"telegram-clock-bot/internal/game/arrow"
	"telegram-clock-bot/internal/handler"
	"telegram-clock-bot/internal/ledger"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot    *tele.Bot
	cfg    *config.Config
	access *Access

	arrowHandler  *handler.ArrowHandler
	clockHandler  *handler.ClockHandler
	ledgerHandler *handler.LedgerHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config       *config.Config
	ArrowGame    *arrow.Game
	ClockManager *clock.Manager
	// Lister is optional; nil disables /ledger results.
	Lister   ledger.Lister
	Location *time.Location
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	teleBot, err := tele.NewBot(settings(deps.Config))
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:           teleBot,
		cfg:           deps.Config,
		access:        NewAccess(deps.Config),
		arrowHandler:  handler.NewArrowHandler(deps.ArrowGame, teleBot),
		clockHandler:  handler.NewClockHandler(deps.ClockManager, teleBot),
		ledgerHandler: handler.NewLedgerHandler(deps.Lister, deps.Location),
	}

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// settings builds the telebot settings. Updates are handled one at a time
// in poll order, so one participant's button presses reach a game in the
// order they were sent; long waits run in their own goroutines.
func settings(cfg *config.Config) tele.Settings {
	pollTimeout := cfg.Bot.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 10 * time.Second
	}

	return tele.Settings{
		Token:       cfg.Bot.Token,
		Poller:      &tele.LongPoller{Timeout: pollTimeout},
		Synchronous: true,
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("Handler error")
		},
	}
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(b.access.Whitelist())
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/hello", handler.HandleHello)
	b.bot.Handle("/clock", b.clockHandler.HandleClock)

	// Administrator-only commands
	adminGroup := b.bot.Group()
	adminGroup.Use(b.access.Admin())
	adminGroup.Handle("/game", b.arrowHandler.HandleGame)
	adminGroup.Handle("/ledger", b.ledgerHandler.HandleLedger)

	// Name replies for open clock wizards
	b.bot.Handle(tele.OnText, b.clockHandler.HandleText)

	// Button presses for both features
	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleCallback routes callbacks by data prefix.
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	data := normalizeCallbackData(callback.Data)
	log.Debug().Str("data", data).Msg("Callback received")

	switch {
	case strings.HasPrefix(data, arrow.CallbackPrefix):
		return b.arrowHandler.HandleCallback(c, data)
	case strings.HasPrefix(data, clock.CallbackPrefix):
		return b.clockHandler.HandleCallback(c, data)
	default:
		return c.Respond()
	}
}

// normalizeCallbackData strips the \f prefix telebot may add to callback data.
func normalizeCallbackData(data string) string {
	return strings.TrimPrefix(data, "\f")
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("username", b.bot.Me.Username).Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops polling, then finalizes running games so their results are
// announced before exit.
func (b *Bot) Stop(ctx context.Context) {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()

	if err := b.arrowHandler.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Arrow games did not finish before shutdown deadline")
	}
}
