package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rocket-telemetry/dashboard/services"
)

// SessionCookie carries the session id.
const SessionCookie = "rocket_session"

const sessionLocalKey = "session"

// SessionMiddleware attaches the caller's session to the request, creating
// one and setting the cookie on first contact.
func SessionMiddleware(sessions services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, created := sessions.GetOrCreate(c.Cookies(SessionCookie))
		if created {
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookie,
				Value:    sess.ID,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
				Expires:  time.Now().Add(24 * time.Hour),
			})
		}
		c.Locals(sessionLocalKey, sess)
		return c.Next()
	}
}

func currentSession(c *fiber.Ctx) *services.Session {
	sess, _ := c.Locals(sessionLocalKey).(*services.Session)
	return sess
}
