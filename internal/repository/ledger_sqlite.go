package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"telegram-clock-bot/internal/ledger"
	"telegram-clock-bot/internal/model"
)

// SQLiteLedger stores ledger entries in a local SQLite file using GORM.
type SQLiteLedger struct {
	db *gorm.DB
}

var (
	_ ledger.Recorder = (*SQLiteLedger)(nil)
	_ ledger.Lister   = (*SQLiteLedger)(nil)
)

// gormLogger routes GORM logs through zerolog.
type gormLogger struct {
	level logger.LogLevel
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		log.Info().Msgf(msg, data...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		log.Warn().Msgf(msg, data...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		log.Error().Msgf(msg, data...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < logger.Info {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		log.Error().Err(err).Dur("duration", elapsed).Str("sql", sql).Int64("rows", rows).Msg("gorm query error")
	case elapsed > 200*time.Millisecond:
		log.Warn().Dur("duration", elapsed).Str("sql", sql).Int64("rows", rows).Msg("slow query")
	default:
		log.Debug().Dur("duration", elapsed).Str("sql", sql).Int64("rows", rows).Msg("gorm query")
	}
}

func newGormLogger() logger.Interface {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		return (&gormLogger{}).LogMode(logger.Info)
	}
	return (&gormLogger{}).LogMode(logger.Silent)
}

// NewSQLiteLedger opens (creating if needed) the database at path and
// migrates the ledger table.
func NewSQLiteLedger(path string) (*SQLiteLedger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  newGormLogger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("SQLite pragmas not applied")
	}

	if err := db.AutoMigrate(&model.LedgerEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger schema: %w", err)
	}

	log.Info().Str("path", path).Msg("SQLite ledger opened")

	return &SQLiteLedger{db: db}, nil
}

var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
}

// applyPragmas runs every pragma and reports the ones that failed.
func applyPragmas(db *gorm.DB) error {
	var errs []error
	for _, p := range sqlitePragmas {
		if err := db.Exec(p).Error; err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// Record inserts one entry.
func (r *SQLiteLedger) Record(ctx context.Context, e ledger.Entry) error {
	row := model.LedgerEntry{
		Name:       e.Name,
		Action:     e.Action,
		RecordedAt: e.Timestamp.UTC(),
		Zone:       e.Timestamp.Location().String(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

// List returns entries newest first, optionally filtered by name.
func (r *SQLiteLedger) List(ctx context.Context, f ledger.Filter) ([]ledger.Entry, error) {
	q := r.db.WithContext(ctx).Model(&model.LedgerEntry{})
	if f.Name != "" {
		q = q.Where("name = ?", f.Name)
	}

	var rows []model.LedgerEntry
	err := q.Order("recorded_at DESC").Order("id DESC").Limit(f.EffectiveLimit()).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries: %w", err)
	}

	entries := make([]ledger.Entry, 0, len(rows))
	for _, m := range rows {
		entries = append(entries, toEntry(m))
	}
	return entries, nil
}

// Close closes the underlying database.
func (r *SQLiteLedger) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
