package session

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const claimsKey = "session.claims"

// Get returns the claims a guard stored on the request context.
func Get(c echo.Context) *Claims {
	claims, _ := c.Get(claimsKey).(*Claims)
	return claims
}

type Role func(*Claims) bool

func Admin(c *Claims) bool      { return c.IsAdmin }
func Instructor(c *Claims) bool { return c.IsInstructor }
func Student(c *Claims) bool    { return c.IsStudent() }
func Any(c *Claims) bool        { return true }

// RequirePage guards browser routes: anonymous callers go to the login page,
// wrong-role callers back to the home page.
func (m *Manager) RequirePage(role Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := m.FromRequest(c)
			if err != nil {
				return c.Redirect(http.StatusFound, "/login")
			}
			if !role(claims) {
				return c.Redirect(http.StatusFound, "/")
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// RequireJSON guards API routes: 401 for anonymous callers, 403 with the
// access-denied payload for wrong-role callers.
func (m *Manager) RequireJSON(role Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := m.FromRequest(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"status":  "error",
					"message": "Wymagane logowanie",
				})
			}
			if !role(claims) {
				return c.JSON(http.StatusForbidden, echo.Map{
					"status":  "error",
					"message": "Odmowa dostępu",
				})
			}
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}
