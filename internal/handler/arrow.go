package handler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-clock-bot/internal/game/arrow"
)

// ArrowHandler runs the arrow reflex game.
type ArrowHandler struct {
	game  *arrow.Game
	api   Messenger
	names nameBook

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewArrowHandler creates a new ArrowHandler.
func NewArrowHandler(g *arrow.Game, api Messenger) *ArrowHandler {
	ctx, cancel := context.WithCancel(context.Background())
	return &ArrowHandler{
		game:   g,
		api:    api,
		ctx:    ctx,
		cancel: cancel,
	}
}

// HandleGame handles the /game command. The caller must already be
// authorized.
func (h *ArrowHandler) HandleGame(c tele.Context) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}

	s, err := h.game.Start(chat.ID)
	if err != nil {
		if errors.Is(err, arrow.ErrGameRunning) {
			if running, ok := h.game.ActiveInChat(chat.ID); ok {
				return c.Reply(fmt.Sprintf("❌ A game is already running, %d seconds left", running.TimeRemaining()))
			}
			return c.Reply("❌ A game is already running")
		}
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to start arrow game")
		return c.Reply("❌ Failed to start the game, please try again")
	}

	timeoutSecs := int(h.game.Timeout().Seconds())
	text := arrow.FormatStartMessage(s.Target(), timeoutSecs)
	panel, err := h.api.Send(chat, text, arrow.BuildPanel(s.ID()))
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to send arrow panel")
		s.Finalize()
		h.game.Finish(h.ctx, s)
		return err
	}

	h.wg.Add(1)
	go h.run(s, chat, panel, text)

	return nil
}

// run waits for the session to end and announces the results.
func (h *ArrowHandler) run(s *arrow.Session, chat *tele.Chat, panel *tele.Message, text string) {
	defer h.wg.Done()

	results := h.game.Finish(h.ctx, s)

	if panel != nil {
		if _, err := h.api.Edit(stored(panel), text+"\n\n⌛ Game over"); err != nil {
			log.Debug().Err(err).Int64("chat_id", chat.ID).Msg("Failed to close arrow panel")
		}
	}

	for _, msg := range arrow.FormatResults(results, h.names.mention) {
		if _, err := h.api.Send(chat, msg); err != nil {
			log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to send arrow results")
		}
	}
}

// HandleCallback handles arrow button presses.
func (h *ArrowHandler) HandleCallback(c tele.Context, data string) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	sessionID, sym, err := arrow.DecodeCallback(data)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Invalid button"})
	}

	s, ok := h.game.Session(sessionID)
	if !ok || s.Finalized() {
		return c.Respond(&tele.CallbackResponse{Text: "⌛ This game has ended"})
	}

	h.names.remember(sender)
	count, accepted := s.RecordInput(sender.ID, sym)
	if !accepted {
		switch {
		case s.Finalized():
			return c.Respond(&tele.CallbackResponse{Text: "⌛ This game has ended"})
		case s.Finished(sender.ID):
			return c.Respond(&tele.CallbackResponse{Text: "✋ You already entered the full sequence"})
		default:
			return c.Respond(&tele.CallbackResponse{Text: "⌛ Time is up"})
		}
	}

	log.Debug().
		Int64("user_id", sender.ID).
		Str("session_id", sessionID).
		Str("symbol", string(sym)).
		Int("count", count).
		Msg("Arrow input recorded")

	return c.Respond(&tele.CallbackResponse{
		Text: fmt.Sprintf("%s (%d/%d)", sym.Emoji(), count, len(s.Target())),
	})
}

// Shutdown finalizes running games early and waits for their results to
// be announced.
func (h *ArrowHandler) Shutdown(ctx context.Context) error {
	h.cancel()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
