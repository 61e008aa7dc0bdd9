package routes

import (
	"net/http"
	"time"

	"tutorcal/cmd/internal/service"
	"tutorcal/cmd/internal/session"
	"tutorcal/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type InstructorAppointmentService interface {
	CreateSlot(req *service.AddSlotRequest, instructorID uint) (uint, apierror.ErrorResponse)
	DeleteSlot(req *service.DeleteSlotRequest, instructorID uint) apierror.ErrorResponse
	Confirm(apptID, instructorID uint) apierror.ErrorResponse
	Reject(apptID, instructorID uint) apierror.ErrorResponse
	CancelByInstructor(apptID, instructorID uint) apierror.ErrorResponse
	GetInstructorEvents(instructorID uint, start, end time.Time) ([]*service.EventResponse, apierror.ErrorResponse)
}

type InstructorDirectoryService interface {
	GetInstructors() ([]*service.InstructorResponse, apierror.ErrorResponse)
}

type DefaultInstructorRoute struct {
	AppointmentService InstructorAppointmentService
	UserService        InstructorDirectoryService
}

func NewInstructorDefault(apptService InstructorAppointmentService, userService InstructorDirectoryService) *DefaultInstructorRoute {
	return &DefaultInstructorRoute{AppointmentService: apptService, UserService: userService}
}

func (r *DefaultInstructorRoute) CalendarPage(c echo.Context) error {
	return c.HTML(http.StatusOK, renderPage("Kalendarz instruktora", ""))
}

func (r *DefaultInstructorRoute) GetAppointments(c echo.Context) error {
	start, end, apierr := parseWindow(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	claims := session.Get(c)
	events, apierr := r.AppointmentService.GetInstructorEvents(claims.UserID(), start, end)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, events)
}

func (r *DefaultInstructorRoute) AddAppointment(c echo.Context) error {
	var req service.AddSlotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	claims := session.Get(c)
	id, apierr := r.AppointmentService.CreateSlot(&req, claims.UserID())
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "id": id})
}

func (r *DefaultInstructorRoute) DeleteAppointment(c echo.Context) error {
	var req service.DeleteSlotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	claims := session.Get(c)
	if apierr := r.AppointmentService.DeleteSlot(&req, claims.UserID()); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

func (r *DefaultInstructorRoute) ConfirmAppointment(c echo.Context) error {
	return r.transition(c, r.AppointmentService.Confirm)
}

func (r *DefaultInstructorRoute) RejectAppointment(c echo.Context) error {
	return r.transition(c, r.AppointmentService.Reject)
}

func (r *DefaultInstructorRoute) CancelAppointment(c echo.Context) error {
	return r.transition(c, r.AppointmentService.CancelByInstructor)
}

func (r *DefaultInstructorRoute) transition(c echo.Context, op func(apptID, instructorID uint) apierror.ErrorResponse) error {
	id, apierr := parseID(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	claims := session.Get(c)
	if apierr := op(id, claims.UserID()); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

func (r *DefaultInstructorRoute) GetInstructors(c echo.Context) error {
	instructors, apierr := r.UserService.GetInstructors()
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, instructors)
}
