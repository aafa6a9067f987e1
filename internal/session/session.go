// Package session ties each browser to its own staged files and runs.
package session

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

const (
	CookieName = "cv_session"
	HeaderName = "X-Session-ID"
	LocalsKey  = "session_id"
)

type contextKey struct{}

func NewID() string {
	return uuid.NewString()
}

// WithID returns a copy of ctx carrying the session id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the session id stored by WithID.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// Middleware resolves the session id from the X-Session-ID header or the
// session cookie, issuing a new cookie when neither holds a valid id.
func Middleware(ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderName)
		if !valid(id) {
			id = c.Cookies(CookieName)
		}
		if !valid(id) {
			id = NewID()
		}
		// Header and cookie values point into the request buffer, which
		// fasthttp reuses; the id outlives the request as a store key.
		id = utils.CopyString(id)

		c.Cookie(&fiber.Cookie{
			Name:     CookieName,
			Value:    id,
			Path:     "/",
			Expires:  time.Now().Add(ttl),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		c.Locals(LocalsKey, id)
		c.SetUserContext(WithID(c.UserContext(), id))

		return c.Next()
	}
}

// ID returns the session id resolved by Middleware.
func ID(c *fiber.Ctx) string {
	if id, ok := FromContext(c.UserContext()); ok {
		return id
	}
	id, _ := c.Locals(LocalsKey).(string)
	return id
}

func valid(id string) bool {
	_, err := uuid.Parse(id)
	return id != "" && err == nil
}
