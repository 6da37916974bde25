package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"telegram-clock-bot/internal/config"
	"telegram-clock-bot/internal/ledger"
	"telegram-clock-bot/internal/pkg/db"
	"telegram-clock-bot/internal/repository"
)

// backendSet is the opened ledger fan-out plus the resources to release on
// shutdown.
type backendSet struct {
	names   []string
	multi   *ledger.Multi
	closers []func()
}

func (b *backendSet) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackends connects every backend named in ledger.backends.
func openBackends(ctx context.Context, cfg *config.Config) (*backendSet, error) {
	names, err := ledger.ParseBackends(cfg.Ledger.Backends)
	if err != nil {
		return nil, err
	}

	set := &backendSet{names: names, multi: ledger.NewMulti()}
	for _, name := range names {
		if err := set.open(ctx, cfg, name); err != nil {
			set.Close()
			return nil, fmt.Errorf("failed to open %s ledger: %w", name, err)
		}
		log.Info().Str("backend", name).Msg("Ledger backend ready")
	}
	return set, nil
}

func (b *backendSet) open(ctx context.Context, cfg *config.Config, name string) error {
	switch name {
	case ledger.BackendPostgres:
		pool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, pool.Close)
		if err := repository.MigrateLedger(ctx, pool.Pool); err != nil {
			return err
		}
		b.multi.Add(name, repository.NewPostgresLedger(pool.Pool))

	case ledger.BackendSQLite:
		store, err := repository.NewSQLiteLedger(cfg.SQLite.Path)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close sqlite ledger")
			}
		})
		b.multi.Add(name, store)

	case ledger.BackendSheets:
		rec, err := ledger.NewSheetsRecorder(ctx, ledger.SheetsConfig{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			Range:           cfg.Sheets.Range,
			CredentialsFile: cfg.Sheets.CredentialsFile,
			Endpoint:        cfg.Sheets.Endpoint,
		})
		if err != nil {
			return err
		}
		b.multi.Add(name, rec)

	case ledger.BackendLog:
		b.multi.Add(name, ledger.NewLogRecorder(log.Logger))

	default:
		return fmt.Errorf("%w: %s", ledger.ErrUnknownBackend, name)
	}
	return nil
}
