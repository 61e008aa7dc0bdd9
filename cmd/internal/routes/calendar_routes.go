package routes

import (
	"net/http"
	"strconv"
	"time"

	"tutorcal/cmd/internal/service"
	"tutorcal/cmd/internal/session"
	"tutorcal/cmd/internal/utils"
	"tutorcal/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type CalendarService interface {
	GetStudentEvents(studentID uint, start, end time.Time) ([]*service.EventResponse, apierror.ErrorResponse)
	Book(apptID, studentID uint, req *service.BookRequest) apierror.ErrorResponse
	CancelByStudent(apptID, studentID uint) apierror.ErrorResponse
}

type DefaultCalendarRoute struct {
	AppointmentService CalendarService
}

func NewCalendarDefault(apptService CalendarService) *DefaultCalendarRoute {
	return &DefaultCalendarRoute{AppointmentService: apptService}
}

func (r *DefaultCalendarRoute) ViewPage(c echo.Context) error {
	return c.HTML(http.StatusOK, renderPage("Kalendarz", ""))
}

func (r *DefaultCalendarRoute) GetAppointments(c echo.Context) error {
	start, end, apierr := parseWindow(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	claims := session.Get(c)
	events, apierr := r.AppointmentService.GetStudentEvents(claims.UserID(), start, end)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, events)
}

func (r *DefaultCalendarRoute) Book(c echo.Context) error {
	id, apierr := parseID(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	var req service.BookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	claims := session.Get(c)
	if apierr := r.AppointmentService.Book(id, claims.UserID(), &req); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

func (r *DefaultCalendarRoute) Cancel(c echo.Context) error {
	id, apierr := parseID(c)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	claims := session.Get(c)
	if apierr := r.AppointmentService.CancelByStudent(id, claims.UserID()); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success"})
}

func parseID(c echo.Context) (uint, apierror.ErrorResponse) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return 0, apierror.NewSimple(http.StatusBadRequest, "Nieprawidłowy identyfikator")
	}
	return uint(id), nil
}

// parseWindow reads the calendar widget's start/end query params. The
// timeZone param is accepted for compatibility; comparisons happen in UTC.
func parseWindow(c echo.Context) (time.Time, time.Time, apierror.ErrorResponse) {
	startStr := c.QueryParam("start")
	if startStr == "" {
		return time.Time{}, time.Time{}, apierror.NewMissingParamError("start")
	}
	endStr := c.QueryParam("end")
	if endStr == "" {
		return time.Time{}, time.Time{}, apierror.NewMissingParamError("end")
	}

	start, err := utils.ParseTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, apierror.NewSimple(http.StatusBadRequest, "Nieprawidłowy format daty")
	}
	end, err := utils.ParseTime(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, apierror.NewSimple(http.StatusBadRequest, "Nieprawidłowy format daty")
	}
	return start, end, nil
}
