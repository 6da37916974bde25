package handler

import (
	"errors"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-clock-bot/internal/clock"
)

// ClockHandler drives clock-in/out wizards.
type ClockHandler struct {
	mgr   *clock.Manager
	api   Messenger
	names nameBook

	// messages holds the wizard message to edit as the wizard advances.
	messages sync.Map // wizard ID -> tele.StoredMessage
}

// NewClockHandler creates a ClockHandler and subscribes to wizard expiry.
func NewClockHandler(mgr *clock.Manager, api Messenger) *ClockHandler {
	h := &ClockHandler{mgr: mgr, api: api}
	mgr.OnExpire(h.onExpire)
	return h
}

// HandleClock handles the /clock command.
func (h *ClockHandler) HandleClock(c tele.Context) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}
	h.names.remember(sender)

	w, err := h.mgr.Start(chat.ID, sender.ID)
	if err != nil {
		if errors.Is(err, clock.ErrWizardRunning) {
			return c.Reply(clock.FormatError(err))
		}
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to start clock wizard")
		return c.Reply(clock.FormatError(err))
	}

	msg, err := h.api.Send(chat, clock.FormatStartMessage(), clock.StartKeyboard(w.ID()))
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to send clock wizard")
		return err
	}
	h.messages.Store(w.ID(), stored(msg))

	return nil
}

// HandleCallback handles clock wizard button presses.
func (h *ClockHandler) HandleCallback(c tele.Context, data string) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	wizardID, kind, value, err := clock.DecodeCallback(data)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Invalid button"})
	}

	switch kind {
	case clock.KindName:
		return h.promptName(c, wizardID, sender)
	case clock.KindAction:
		return h.chooseAction(c, wizardID, sender, value)
	default:
		return h.pick(c, wizardID, sender, value)
	}
}

func (h *ClockHandler) promptName(c tele.Context, wizardID string, sender *tele.User) error {
	w, err := h.mgr.PromptName(wizardID, sender.ID)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: clock.FormatError(err)})
	}

	chat := &tele.Chat{ID: w.ChatID()}
	markup := &tele.ReplyMarkup{ForceReply: true, Selective: true, Placeholder: "Somchai"}
	if _, err := h.api.Send(chat, clock.FormatNamePrompt(DisplayName(sender)), markup); err != nil {
		log.Error().Err(err).Str("session_id", wizardID).Msg("Failed to send name prompt")
	}
	return c.Respond()
}

func (h *ClockHandler) chooseAction(c tele.Context, wizardID string, sender *tele.User, value string) error {
	action, err := clock.ParseAction(value)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: clock.FormatError(err)})
	}

	w, err := h.mgr.ChooseAction(wizardID, sender.ID, action)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: clock.FormatError(err)})
	}

	h.edit(wizardID, clock.FormatRosterPrompt(action), clock.RosterKeyboard(wizardID, w.Roster()))
	return c.Respond()
}

func (h *ClockHandler) pick(c tele.Context, wizardID string, sender *tele.User, value string) error {
	participant, err := clock.ParsePick(h.mgr.Roster(), value)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: clock.FormatError(err)})
	}

	w, ok := h.mgr.Get(wizardID)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: clock.FormatError(clock.ErrSessionExpired)})
	}

	summary, err := h.mgr.SelectParticipant(wizardID, sender.ID, participant)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: clock.FormatError(err)})
	}

	h.edit(wizardID, clock.FormatSummary(summary, DisplayName(sender)), nil)
	h.messages.Delete(wizardID)

	if card := rosterCard(summary); card != nil {
		if _, err := h.api.Send(&tele.Chat{ID: w.ChatID()}, card); err != nil {
			log.Warn().Err(err).Str("participant", summary.Participant).Msg("Failed to send roster image")
		}
	}

	return c.Respond(&tele.CallbackResponse{Text: "✅ " + summary.Action.Label()})
}

// HandleText treats a text message as the wizard name when its sender has a
// wizard in this chat waiting for one. Other text is ignored.
func (h *ClockHandler) HandleText(c tele.Context) error {
	chat := c.Chat()
	sender := c.Sender()
	if chat == nil || sender == nil {
		return nil
	}

	w, ok := h.mgr.ForOwner(chat.ID, sender.ID)
	if !ok || !w.ExpectsName() {
		return nil
	}

	if _, err := h.mgr.SubmitName(w.ID(), sender.ID, c.Text()); err != nil {
		return c.Reply(clock.FormatError(err), &tele.ReplyMarkup{ForceReply: true, Selective: true})
	}

	h.edit(w.ID(), clock.FormatActionPrompt(w.Name()), clock.ActionKeyboard(w.ID()))
	return nil
}

// onExpire replaces the wizard message once the wizard is discarded.
func (h *ClockHandler) onExpire(w *clock.Wizard) {
	h.edit(w.ID(), clock.FormatExpired(), nil)
	h.messages.Delete(w.ID())
}

// edit replaces the wizard message text and keyboard. Editing without markup
// drops the inline keyboard.
func (h *ClockHandler) edit(wizardID, text string, markup *tele.ReplyMarkup) {
	v, ok := h.messages.Load(wizardID)
	if !ok {
		return
	}
	var opts []interface{}
	if markup != nil {
		opts = append(opts, markup)
	}
	if _, err := h.api.Edit(v.(tele.StoredMessage), text, opts...); err != nil {
		log.Debug().Err(err).Str("session_id", wizardID).Msg("Failed to edit clock wizard message")
	}
}

// rosterCard returns the roster image as a photo when the locator is a URL
// or an existing local file, and as its caption text otherwise. It returns
// nil when the participant has no image.
func rosterCard(s clock.Summary) interface{} {
	caption := "🧑‍💼 " + s.Participant
	switch {
	case s.RosterImage == "":
		return nil
	case clock.IsURL(s.RosterImage):
		return &tele.Photo{File: tele.FromURL(s.RosterImage), Caption: caption}
	}
	if _, err := os.Stat(s.RosterImage); err != nil {
		log.Debug().Err(err).Str("image", s.RosterImage).Msg("Roster image not found, sending caption only")
		return caption + "\n🖼 " + s.RosterImage
	}
	return &tele.Photo{File: tele.FromDisk(s.RosterImage), Caption: caption}
}
