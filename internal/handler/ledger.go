package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-clock-bot/internal/clock"
	"telegram-clock-bot/internal/ledger"
)

// LedgerHandler lists recent clock entries for administrators.
type LedgerHandler struct {
	lister ledger.Lister
	loc    *time.Location
}

// NewLedgerHandler creates a LedgerHandler. lister may be nil when no SQL
// backend is configured.
func NewLedgerHandler(lister ledger.Lister, loc *time.Location) *LedgerHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerHandler{lister: lister, loc: loc}
}

// HandleLedger handles /ledger [name].
func (h *LedgerHandler) HandleLedger(c tele.Context) error {
	if h.lister == nil {
		return c.Reply("❌ No queryable ledger backend is configured")
	}

	filter := ledger.Filter{Name: strings.TrimSpace(strings.Join(c.Args(), " "))}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := h.lister.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("name", filter.Name).Msg("Failed to list ledger entries")
		return c.Reply("❌ Failed to read the ledger, please try again")
	}

	return c.Reply(FormatLedger(entries, filter.Name, h.loc))
}

// FormatLedger renders ledger entries, newest first, in loc.
func FormatLedger(entries []ledger.Entry, name string, loc *time.Location) string {
	title := "📒 Recent clock entries"
	if name != "" {
		title = fmt.Sprintf("📒 Recent clock entries for %s", name)
	}
	if len(entries) == 0 {
		return title + "\n\nNo entries yet"
	}

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n━━━━━━━━━━━━━━━\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s | %s | %s\n", e.Timestamp.In(loc).Format(clock.TimeLayout), e.Name, e.Action))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// HandleHello handles /hello.
func HandleHello(c tele.Context) error {
	return c.Reply("👋 Hello!")
}
