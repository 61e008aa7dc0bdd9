package routes

import (
	"net/http"

	"tutorcal/cmd/internal/domain/entity"
	"tutorcal/cmd/internal/service"
	"tutorcal/cmd/internal/session"
	"tutorcal/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type AuthUserService interface {
	Register(req *service.RegisterRequest) apierror.ErrorResponse
	Login(req *service.LoginRequest) (*entity.User, apierror.ErrorResponse)
}

type DefaultAuthRoute struct {
	UserService AuthUserService
	Sessions    *session.Manager
}

func NewAuthDefault(userService AuthUserService, sessions *session.Manager) *DefaultAuthRoute {
	return &DefaultAuthRoute{UserService: userService, Sessions: sessions}
}

func (a *DefaultAuthRoute) Home(c echo.Context) error {
	return c.HTML(http.StatusOK, renderPage("Kalendarz zajęć", ""))
}

func (a *DefaultAuthRoute) LoginPage(c echo.Context) error {
	return c.HTML(http.StatusOK, renderPage("Logowanie", ""))
}

func (a *DefaultAuthRoute) Login(c echo.Context) error {
	var req service.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.HTML(http.StatusOK, renderPage("Logowanie", apierror.MalformedBodyError.Message()))
	}

	user, apierr := a.UserService.Login(&req)
	if apierr != nil {
		return c.HTML(http.StatusOK, renderPage("Logowanie", apierr.Message()))
	}

	token, err := a.Sessions.Issue(user)
	if err != nil {
		log.Errorf("failed to issue session for user %d: %v", user.ID, err)
		return c.HTML(http.StatusOK, renderPage("Logowanie", apierror.InternalServerError.Message()))
	}

	a.Sessions.SetCookie(c, token)
	return c.Redirect(http.StatusFound, "/")
}

func (a *DefaultAuthRoute) RegisterPage(c echo.Context) error {
	return c.HTML(http.StatusOK, renderPage("Rejestracja", ""))
}

func (a *DefaultAuthRoute) Register(c echo.Context) error {
	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.HTML(http.StatusOK, renderPage("Rejestracja", apierror.MalformedBodyError.Message()))
	}

	if apierr := a.UserService.Register(&req); apierr != nil {
		return c.HTML(http.StatusOK, renderPage("Rejestracja", apierr.Message()))
	}
	return c.Redirect(http.StatusFound, "/login")
}

func (a *DefaultAuthRoute) Logout(c echo.Context) error {
	a.Sessions.ClearCookie(c)
	return c.Redirect(http.StatusFound, "/")
}
