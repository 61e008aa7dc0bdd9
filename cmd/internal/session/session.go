package session

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"tutorcal/cmd/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CookieName = "session"
	lifetime   = 7 * 24 * time.Hour
)

var ErrNoSession = errors.New("no valid session")

// Claims is the session payload carried in the signed cookie. Role flags are
// embedded so guards do not need a user lookup per request.
type Claims struct {
	Username     string `json:"username"`
	IsAdmin      bool   `json:"is_admin"`
	IsInstructor bool   `json:"is_instructor"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() uint {
	id, _ := strconv.ParseUint(c.Subject, 10, 64)
	return uint(id)
}

func (c *Claims) IsStudent() bool {
	return !c.IsAdmin && !c.IsInstructor
}

type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

func (m *Manager) Issue(user *entity.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username:     user.Username,
		IsAdmin:      user.IsAdmin,
		IsInstructor: user.IsInstructor,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrNoSession
	}
	return claims, nil
}

func (m *Manager) FromRequest(c echo.Context) (*Claims, error) {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	return m.Parse(cookie.Value)
}

func (m *Manager) SetCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(lifetime),
	})
}

func (m *Manager) ClearCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
