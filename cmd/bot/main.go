// Package main is the entry point for the clock bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"telegram-clock-bot/internal/bot"
	"telegram-clock-bot/internal/clock"
	"telegram-clock-bot/internal/config"
	"telegram-clock-bot/internal/game/arrow"
	"telegram-clock-bot/internal/ledger"
)

const shutdownTimeout = 15 * time.Second

// CLI holds the command line flags.
type CLI struct {
	Config string `help:"Directory containing config.yaml." default:"config" type:"path"`
	Debug  bool   `help:"Enable debug logging."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("clockbot"),
		kong.Description("Telegram bot with an arrow reflex game and a clock-in wizard."),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(cli.Run())
}

// Run loads configuration, wires every component and blocks until a
// shutdown signal arrives.
func (cli *CLI) Run() error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	setLogLevel(cfg.Log.Level, cli.Debug)

	if err := cfg.Validate(); err != nil {
		return err
	}
	log.Info().Msg("Configuration loaded successfully")

	loc, err := cfg.Location()
	if err != nil {
		log.Warn().Err(err).Msg("Falling back to UTC")
	}

	roster, err := loadRoster(cfg.Clock.RosterFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backends, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer backends.Close()

	adapter := ledger.NewAdapter(backends.multi, cfg.Ledger.WriteTimeout)

	arrowGame := arrow.New(&arrow.Config{
		Length:  cfg.Games.Arrow.Length,
		Timeout: cfg.ArrowTimeout(),
	})

	clockManager := clock.NewManager(clock.Config{
		IdleExpiry: cfg.IdleExpiry(),
		Location:   loc,
		Roster:     roster,
		Ledger:     adapter,
	})

	lister, _ := backends.multi.Lister()
	telegramBot, err := bot.New(&bot.Dependencies{
		Config:       cfg,
		ArrowGame:    arrowGame,
		ClockManager: clockManager,
		Lister:       lister,
		Location:     loc,
	})
	if err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().
			Strs("ledger_backends", backends.names).
			Int("roster_size", roster.Len()).
			Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()

	telegramBot.Stop(shutdownCtx)
	clockManager.Close()
	if err := adapter.Wait(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Pending ledger writes abandoned")
	}

	log.Info().Msg("Bot stopped gracefully")
	return nil
}

func setLogLevel(level string, debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func loadRoster(path string) (*clock.Roster, error) {
	if path == "" {
		return clock.DefaultRoster(), nil
	}
	return clock.LoadRoster(path)
}
