package bot

import (
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-clock-bot/internal/config"
)

// Access decides which updates reach the handlers. Group updates need a
// whitelisted chat; private updates need a sender already seen in one.
// Admin-only commands additionally need a configured administrator.
type Access struct {
	cfg  *config.Config
	seen sync.Map // int64 user ID -> struct{}
}

// NewAccess creates an Access over cfg.
func NewAccess(cfg *config.Config) *Access {
	return &Access{cfg: cfg}
}

// Allows reports whether an update from sender in chat may be handled, and
// remembers senders of allowed group updates.
func (a *Access) Allows(chat *tele.Chat, sender *tele.User) bool {
	if chat == nil || sender == nil {
		return false
	}
	if len(a.cfg.Whitelist.Chats) == 0 {
		return true
	}
	if chat.Type == tele.ChatPrivate {
		_, ok := a.seen.Load(sender.ID)
		return ok
	}
	if !a.cfg.IsChatAllowed(chat.ID) {
		return false
	}
	a.seen.Store(sender.ID, struct{}{})
	return true
}

// Whitelist drops updates that Allows rejects.
func (a *Access) Whitelist() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if !a.Allows(c.Chat(), c.Sender()) {
				ev := log.Debug().Str("kind", updateKind(c))
				if chat := c.Chat(); chat != nil {
					ev = ev.Int64("chat_id", chat.ID).Str("chat_type", string(chat.Type))
				}
				ev.Msg("Dropping update outside the whitelist")
				return nil
			}
			return next(c)
		}
	}
}

// Admin lets only configured administrators through.
func (a *Access) Admin() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}
			if a.cfg.IsAdmin(sender.ID) {
				return next(c)
			}

			log.Warn().
				Int64("user_id", sender.ID).
				Str("command", command(c.Text())).
				Msg("Non-admin attempted admin command")
			return notify(c, "❌ "+command(c.Text())+" is for administrators only")
		}
	}
}

// LoggingMiddleware logs every update at debug level.
func LoggingMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			ev := log.Debug().Str("kind", updateKind(c))
			if sender := c.Sender(); sender != nil {
				ev = ev.Int64("user_id", sender.ID)
			}
			if chat := c.Chat(); chat != nil {
				ev = ev.Int64("chat_id", chat.ID)
			}
			if cb := c.Callback(); cb != nil {
				ev = ev.Str("data", normalizeCallbackData(cb.Data))
			} else {
				ev = ev.Str("command", command(c.Text()))
			}
			ev.Msg("Received update")

			return next(c)
		}
	}
}

// RecoveryMiddleware turns a handler panic into a short notice to the user.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Str("kind", updateKind(c)).
						Msg("Recovered from panic in handler")
					err = notify(c, "❌ Internal error, please try again later")
				}
			}()
			return next(c)
		}
	}
}

// notify answers a button press with a popup and anything else with a reply.
func notify(c tele.Context, text string) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
	}
	return c.Reply(text)
}

func updateKind(c tele.Context) string {
	switch {
	case c.Callback() != nil:
		return "callback"
	case strings.HasPrefix(c.Text(), "/"):
		return "command"
	default:
		return "text"
	}
}

// command returns the leading /command of text without any @botname suffix.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(strings.Fields(text)[0], "@")
	return cmd
}
