// Package handler provides Telegram bot command and callback handlers.
package handler

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v3"
)

// Messenger is the subset of the Telegram API the handlers use outside a
// request context. *tele.Bot satisfies it.
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// DisplayName returns a short human name for a Telegram user.
func DisplayName(u *tele.User) string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return fmt.Sprintf("user %d", u.ID)
}

// nameBook remembers display names of users seen in updates so results can
// mention them later.
type nameBook struct {
	names sync.Map // int64 -> string
}

func (b *nameBook) remember(u *tele.User) {
	if u != nil {
		b.names.Store(u.ID, DisplayName(u))
	}
}

func (b *nameBook) mention(id int64) string {
	if v, ok := b.names.Load(id); ok {
		return v.(string)
	}
	return fmt.Sprintf("user %d", id)
}

// stored converts a sent message into an editable reference.
func stored(m *tele.Message) tele.StoredMessage {
	var chatID int64
	if m.Chat != nil {
		chatID = m.Chat.ID
	}
	return tele.StoredMessage{MessageID: strconv.Itoa(m.ID), ChatID: chatID}
}
