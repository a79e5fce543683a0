package controller

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const flashSessionName = "pos-flash"

// Flash keeps one-shot messages across a redirect in a signed cookie.
type Flash struct {
	store sessions.Store
}

// NewCookieFlash creates a Flash backed by a cookie store signed with secret.
func NewCookieFlash(secret string) *Flash {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Flash{store: store}
}

// Add queues a message for the next rendered page.
func (f *Flash) Add(c *gin.Context, message string) {
	session, err := f.store.Get(c.Request, flashSessionName)
	if err != nil {
		// a tampered or stale cookie still yields a fresh session
		slog.Debug("Discarding invalid flash cookie", slog.Any("err", err))
	}

	session.AddFlash(message)
	if err := session.Save(c.Request, c.Writer); err != nil {
		slog.Error("Failed to save flash message", slog.Any("err", err))
	}
}

// Pop returns and clears the queued messages.
func (f *Flash) Pop(c *gin.Context) []string {
	session, err := f.store.Get(c.Request, flashSessionName)
	if err != nil {
		slog.Debug("Expiring invalid flash cookie", slog.Any("err", err))
		session.Options.MaxAge = -1
		if err := session.Save(c.Request, c.Writer); err != nil {
			slog.Error("Failed to expire flash cookie", slog.Any("err", err))
		}
		return nil
	}

	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}

	if err := session.Save(c.Request, c.Writer); err != nil {
		slog.Error("Failed to clear flash messages", slog.Any("err", err))
	}

	messages := make([]string, 0, len(flashes))
	for _, flash := range flashes {
		if message, ok := flash.(string); ok {
			messages = append(messages, message)
		}
	}
	return messages
}
