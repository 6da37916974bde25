package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultWriteTimeout bounds a single background write.
const DefaultWriteTimeout = 10 * time.Second

// Adapter runs writes to a backend in the background. Record never blocks
// and never reports failure to the caller.
type Adapter struct {
	backend Recorder
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewAdapter wraps backend. A non-positive timeout uses DefaultWriteTimeout.
func NewAdapter(backend Recorder, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	return &Adapter{backend: backend, timeout: timeout}
}

// Record schedules e for writing and returns immediately.
func (a *Adapter) Record(e Entry) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("name", e.Name).
					Str("action", e.Action).
					Msg("Panic in ledger write")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		if err := a.backend.Record(ctx, e); err != nil {
			log.Error().
				Err(err).
				Str("name", e.Name).
				Str("action", e.Action).
				Str("timestamp", e.ISOTimestamp()).
				Msg("Failed to record ledger entry")
			return
		}

		log.Debug().
			Str("name", e.Name).
			Str("action", e.Action).
			Msg("Ledger entry recorded")
	}()
}

// Wait blocks until all scheduled writes finish or ctx is done.
func (a *Adapter) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
