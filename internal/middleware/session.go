package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	SessionCookie = "store_session"
	sessionKey    = "session_id"
	sessionMaxAge = 30 * 24 * time.Hour
)

// SessionMiddleware gives every visitor a stable anonymous id. The cookie plays the part of the
// browser profile that owns the cart and basket ident.
func SessionMiddleware(secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				if id, err := uuid.Parse(cookie.Value); err == nil {
					c.Set(sessionKey, id.String())
					return next(c)
				}
			}

			id := uuid.NewString()
			c.SetCookie(&http.Cookie{
				Name:     SessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(sessionMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(sessionKey, id)
			return next(c)
		}
	}
}

func SessionID(c echo.Context) string {
	id, _ := c.Get(sessionKey).(string)
	return id
}
