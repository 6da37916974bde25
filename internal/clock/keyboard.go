package clock

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"
)

const (
	// CallbackPrefix is the prefix for all clock wizard callback data
	CallbackPrefix = "clock_"

	// TimeLayout formats the local time shown in the summary.
	TimeLayout = "2006-01-02 15:04:05 MST"
)

// Callback kinds
const (
	KindName   = "name"
	KindAction = "act"
	KindPick   = "pick"
)

// ErrInvalidCallback is returned for malformed clock callback data.
var ErrInvalidCallback = errors.New("invalid clock callback data")

// EncodeCallback encodes wizard callback data as clock_<id>_<kind>[_<value>].
func EncodeCallback(wizardID, kind, value string) string {
	if value == "" {
		return fmt.Sprintf("%s%s_%s", CallbackPrefix, wizardID, kind)
	}
	return fmt.Sprintf("%s%s_%s_%s", CallbackPrefix, wizardID, kind, value)
}

// DecodeCallback splits clock callback data into wizard ID, kind and value.
func DecodeCallback(data string) (wizardID, kind, value string, err error) {
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", "", "", ErrInvalidCallback
	}

	parts := strings.SplitN(strings.TrimPrefix(data, CallbackPrefix), "_", 3)
	if len(parts) < 2 || parts[0] == "" {
		return "", "", "", ErrInvalidCallback
	}

	wizardID, kind = parts[0], parts[1]
	if len(parts) == 3 {
		value = parts[2]
	}

	switch kind {
	case KindName:
		if value != "" {
			return "", "", "", ErrInvalidCallback
		}
	case KindAction, KindPick:
		if value == "" {
			return "", "", "", ErrInvalidCallback
		}
	default:
		return "", "", "", ErrInvalidCallback
	}
	return wizardID, kind, value, nil
}

// StartKeyboard shows the "enter name" button.
func StartKeyboard(wizardID string) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{
			{{Text: "✍️ Enter name", Data: EncodeCallback(wizardID, KindName, "")}},
		},
	}
}

// ActionKeyboard shows the clock in / clock out choice.
func ActionKeyboard(wizardID string) *tele.ReplyMarkup {
	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{
			{
				{Text: "🟢 " + ActionClockIn.Label(), Data: EncodeCallback(wizardID, KindAction, string(ActionClockIn))},
				{Text: "🔴 " + ActionClockOut.Label(), Data: EncodeCallback(wizardID, KindAction, string(ActionClockOut))},
			},
		},
	}
}

// RosterKeyboard shows one button per roster name, two per row. Buttons
// carry the roster index to stay within Telegram's callback data limit.
func RosterKeyboard(wizardID string, roster *Roster) *tele.ReplyMarkup {
	var rows [][]tele.InlineButton
	var row []tele.InlineButton
	for i, name := range roster.Names() {
		row = append(row, tele.InlineButton{
			Text: name,
			Data: EncodeCallback(wizardID, KindPick, strconv.Itoa(i)),
		})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

// ParsePick resolves a pick callback value to a roster name.
func ParsePick(roster *Roster, value string) (string, error) {
	i, err := strconv.Atoi(value)
	if err != nil {
		return "", ErrUnknownRosterEntry
	}
	name, ok := roster.NameAt(i)
	if !ok {
		return "", ErrUnknownRosterEntry
	}
	return name, nil
}

// FormatStartMessage is shown when the wizard opens.
func FormatStartMessage() string {
	return "🕒 Clock in / clock out\nPress the button below to begin 👇"
}

// FormatNamePrompt asks the owner to reply with their name.
func FormatNamePrompt(mention string) string {
	return fmt.Sprintf("%s please reply with your name (e.g. Somchai)", mention)
}

// FormatActionPrompt confirms the name and asks for the action.
func FormatActionPrompt(name string) string {
	return fmt.Sprintf("✅ Name set to: %s\nChoose %s or %s", name, ActionClockIn.Label(), ActionClockOut.Label())
}

// FormatRosterPrompt confirms the action and asks for a roster choice.
func FormatRosterPrompt(action Action) string {
	return fmt.Sprintf("📌 You chose: %s\nNow pick the employee", action.Label())
}

// FormatSummary renders a finalized wizard.
func FormatSummary(s Summary, mention string) string {
	msg := fmt.Sprintf("🕒 %s successful\n", s.Action.Label())
	msg += "━━━━━━━━━━━━━━━\n"
	msg += fmt.Sprintf("%s signed %s\n", mention, strings.ToLower(s.Action.Label()))
	msg += fmt.Sprintf("👤 Name: %s\n", s.Name)
	msg += fmt.Sprintf("🧑‍💼 Employee: %s\n", s.Participant)
	msg += fmt.Sprintf("⏰ Time: %s", s.Timestamp.Format(TimeLayout))
	return msg
}

// FormatExpired replaces the wizard message after idle expiry.
func FormatExpired() string {
	return "⌛ Clock wizard expired. Nothing was recorded; use /clock to start again."
}

// FormatError maps a wizard error to a short user-facing message.
func FormatError(err error) string {
	switch {
	case errors.Is(err, ErrNotOwner):
		return "❌ This is not your clock wizard"
	case errors.Is(err, ErrSessionExpired):
		return "⌛ This clock wizard has expired"
	case errors.Is(err, ErrUnexpectedEvent):
		return "❌ That step is not expected now"
	case errors.Is(err, ErrEmptyName):
		return "❌ Name must not be empty, please reply again"
	case errors.Is(err, ErrNameTooLong):
		return fmt.Sprintf("❌ Name must be at most %d characters, please reply again", MaxNameLength)
	case errors.Is(err, ErrUnknownRosterEntry):
		return "❌ Unknown employee"
	case errors.Is(err, ErrInvalidAction):
		return "❌ Invalid choice"
	case errors.Is(err, ErrWizardRunning):
		return "❌ You already have an open clock wizard"
	default:
		return "❌ Something went wrong, please try again"
	}
}
