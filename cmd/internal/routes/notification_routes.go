package routes

import (
	"net/http"

	"tutorcal/cmd/internal/service"
	"tutorcal/cmd/internal/session"
	"tutorcal/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type NotificationService interface {
	List(userID uint) (*service.NotificationListResponse, apierror.ErrorResponse)
	Details(notifID, userID uint) (*service.NotificationDetails, apierror.ErrorResponse)
	MarkRead(notifID, userID uint) apierror.ErrorResponse
	Delete(notifID, userID uint) apierror.ErrorResponse
}

type DefaultNotificationRoute struct {
	NotificationService NotificationService
}

func NewNotificationDefault(notifService NotificationService) *DefaultNotificationRoute {
	return &DefaultNotificationRoute{NotificationService: notifService}
}

func (r *DefaultNotificationRoute) GetNotifications(c echo.Context) error {
	claims := session.Get(c)
	resp, apierr := r.NotificationService.List(claims.UserID())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (r *DefaultNotificationRoute) GetDetails(c echo.Context) error {
	id, apierr := parseID(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	claims := session.Get(c)
	details, apierr := r.NotificationService.Details(id, claims.UserID())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "appointment": details})
}

func (r *DefaultNotificationRoute) MarkRead(c echo.Context) error {
	id, apierr := parseID(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	claims := session.Get(c)
	if apierr := r.NotificationService.MarkRead(id, claims.UserID()); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

func (r *DefaultNotificationRoute) Delete(c echo.Context) error {
	id, apierr := parseID(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	claims := session.Get(c)
	if apierr := r.NotificationService.Delete(id, claims.UserID()); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}
