package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"

	"telegram-clock-bot/internal/ledger"
)

type fakeLister struct {
	entries []ledger.Entry
	err     error
	got     ledger.Filter
}

func (f *fakeLister) List(_ context.Context, filter ledger.Filter) ([]ledger.Entry, error) {
	f.got = filter
	return f.entries, f.err
}

func TestLedgerHandler(t *testing.T) {
	ts := time.Date(2024, 3, 1, 1, 30, 0, 0, time.UTC)
	lister := &fakeLister{entries: []ledger.Entry{{Name: "Somchai", Action: "Clock in", Timestamp: ts}}}
	h := NewLedgerHandler(lister, time.FixedZone("ICT", 7*3600))

	c := newFakeContext(-100, &tele.User{ID: 1})
	c.args = []string{"Somchai"}
	require.NoError(t, h.HandleLedger(c))

	assert.Equal(t, "Somchai", lister.got.Name)
	assert.Contains(t, c.lastReply(), "2024-03-01 08:30:00 ICT | Somchai | Clock in")
}

func TestLedgerHandler_NoBackend(t *testing.T) {
	h := NewLedgerHandler(nil, nil)
	c := newFakeContext(-100, &tele.User{ID: 1})
	require.NoError(t, h.HandleLedger(c))
	assert.Contains(t, c.lastReply(), "No queryable ledger")
}

func TestLedgerHandler_Error(t *testing.T) {
	h := NewLedgerHandler(&fakeLister{err: errors.New("db down")}, nil)
	c := newFakeContext(-100, &tele.User{ID: 1})
	require.NoError(t, h.HandleLedger(c))
	assert.Contains(t, c.lastReply(), "Failed")
}

func TestFormatLedger_Empty(t *testing.T) {
	assert.Contains(t, FormatLedger(nil, "", time.UTC), "No entries yet")
	assert.Contains(t, FormatLedger(nil, "Bob", time.UTC), "for Bob")
}

func TestHandleHello(t *testing.T) {
	c := newFakeContext(-100, &tele.User{ID: 1})
	require.NoError(t, HandleHello(c))
	assert.Contains(t, c.lastReply(), "Hello")
}
