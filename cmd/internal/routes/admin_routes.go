package routes

import (
	"net/http"
	"strconv"

	"tutorcal/cmd/internal/service"
	"tutorcal/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type AdminUserService interface {
	CreateInstructor(req *service.RegisterRequest) apierror.ErrorResponse
	DeleteInstructor(id uint) (int, apierror.ErrorResponse)
}

type DefaultAdminRoute struct {
	UserService AdminUserService
}

func NewAdminDefault(userService AdminUserService) *DefaultAdminRoute {
	return &DefaultAdminRoute{UserService: userService}
}

func (a *DefaultAdminRoute) Dashboard(c echo.Context) error {
	return c.HTML(http.StatusOK, renderPage("Panel administratora", ""))
}

func (a *DefaultAdminRoute) CreateInstructor(c echo.Context) error {
	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.HTML(http.StatusOK, renderPage("Panel administratora", apierror.MalformedBodyError.Message()))
	}

	if apierr := a.UserService.CreateInstructor(&req); apierr != nil {
		return c.HTML(http.StatusOK, renderPage("Panel administratora", apierr.Message()))
	}
	return c.HTML(http.StatusOK, renderPage("Panel administratora", "Instruktor został utworzony."))
}

func (a *DefaultAdminRoute) DeleteInstructor(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		errResp := apierror.NewSimple(http.StatusBadRequest, "Nieprawidłowy identyfikator")
		return c.JSON(errResp.Code(), errResp)
	}

	notified, apierr := a.UserService.DeleteInstructor(uint(id))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":            "success",
		"notified_students": notified,
	})
}
