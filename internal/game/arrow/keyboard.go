package arrow

import (
	"fmt"
	"sort"
	"strings"

	tele "gopkg.in/telebot.v3"
)

const (
	// CallbackPrefix is the prefix for all arrow game callback data
	CallbackPrefix = "arrow_"
)

// EncodeCallback encodes a session ID and symbol into callback data.
func EncodeCallback(sessionID string, sym Symbol) string {
	return fmt.Sprintf("%s%s_%s", CallbackPrefix, sessionID, sym)
}

// DecodeCallback decodes callback data into a session ID and symbol.
func DecodeCallback(data string) (sessionID string, sym Symbol, err error) {
	if !strings.HasPrefix(data, CallbackPrefix) {
		return "", "", ErrInvalidSymbol
	}

	content := strings.TrimPrefix(data, CallbackPrefix)
	idx := strings.LastIndex(content, "_")
	if idx <= 0 {
		return "", "", ErrInvalidSymbol
	}

	sym, err = ParseSymbol(content[idx+1:])
	if err != nil {
		return "", "", err
	}
	return content[:idx], sym, nil
}

// BuildPanel builds the single-row arrow keyboard for a session.
// Layout: [⬅️] [⬆️] [➡️] [⬇️]
func BuildPanel(sessionID string) *tele.ReplyMarkup {
	row := make([]tele.InlineButton, 0, len(Arrows))
	for _, sym := range Arrows {
		row = append(row, tele.InlineButton{
			Text: sym.Emoji(),
			Data: EncodeCallback(sessionID, sym),
		})
	}

	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{row},
	}
}

// FormatSequence renders a sequence as space-separated emoji.
func FormatSequence(seq []Symbol) string {
	parts := make([]string, len(seq))
	for i, sym := range seq {
		parts[i] = sym.Emoji()
	}
	return strings.Join(parts, " ")
}

// FormatStartMessage formats the opening message showing the target.
func FormatStartMessage(target []Symbol, timeoutSecs int) string {
	msg := "🎯 Mini Arrow Game\n"
	msg += "━━━━━━━━━━━━━━━\n"
	msg += fmt.Sprintf("Press the buttons in this order within %d seconds:\n\n", timeoutSecs)
	msg += FormatSequence(target)
	return msg
}

// FormatResults formats the end-of-game announcements. Participants who never
// pressed a button are not in results and are not mentioned.
func FormatResults(results map[int64]bool, mention func(int64) string) []string {
	if len(results) == 0 {
		return []string{"⏰ Time is up! Nobody finished the sequence."}
	}

	ids := make([]int64, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var winners, losers []string
	for _, id := range ids {
		if results[id] {
			winners = append(winners, mention(id))
		} else {
			losers = append(losers, mention(id))
		}
	}

	var msgs []string
	if len(winners) > 0 {
		msgs = append(msgs, "✅ Correct: "+strings.Join(winners, ", "))
	}
	if len(losers) > 0 {
		msgs = append(msgs, "❌ Wrong: "+strings.Join(losers, ", "))
	}
	return msgs
}
