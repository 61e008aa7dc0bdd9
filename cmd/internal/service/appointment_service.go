package service

import (
	"errors"
	"fmt"
	"time"

	"tutorcal/cmd/internal/domain/entity"
	"tutorcal/cmd/internal/domain/sqlite/repository"
	"tutorcal/cmd/internal/utils"
	"tutorcal/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

// Minimum lead times measured against "now" at request time.
const (
	CreateLeadTime  = time.Hour
	BookingLeadTime = 30 * time.Minute
)

const (
	colorAvailable = "#1B8359"
	colorPending   = "#996C00"
	colorConfirmed = "#205493"
)

const (
	msgBooked    = "Nowa prośba o rezerwację terminu"
	msgConfirmed = "Twoja rezerwacja została zaakceptowana."
	msgRejected  = "Twoja rezerwacja została odrzucona."
	msgCanceled  = "Rezerwacja została anulowana."
)

type AppointmentRepository interface {
	FindByID(id uint) (*entity.Appointment, error)
	FindStudentWindow(studentID uint, start, end time.Time) ([]*entity.Appointment, error)
	FindInstructorWindow(instructorID uint, start, end time.Time) ([]*entity.Appointment, error)
	Save(appointment *entity.Appointment) error
	Delete(appointment *entity.Appointment) error
	Book(apptID, studentID uint, topic string, notif *entity.Notification) error
	Transition(appointment *entity.Appointment, notif *entity.Notification) error
}

type AddSlotRequest struct {
	Start string `json:"start" validate:"required"`
	End   string `json:"end" validate:"required"`
}

type BookRequest struct {
	Topic string `json:"topic" validate:"required,max=255"`
}

type DeleteSlotRequest struct {
	ID uint `json:"id" validate:"required"`
}

// EventResponse is the calendar-widget event shape shared by the student and
// instructor feeds.
type EventResponse struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	TitleMessage string `json:"titleMessage"`
	Start        string `json:"start"`
	End          string `json:"end"`
	Color        string `json:"color"`
	IsAvailable  bool   `json:"is_available"`
	Status       string `json:"status"`
}

type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	UserRepo        UserRepository
	Validate        *validator.Validate
}

func NewAppointmentService(apptRepo AppointmentRepository, userRepo UserRepository, validate *validator.Validate) *DefaultAppointmentService {
	return &DefaultAppointmentService{AppointmentRepo: apptRepo, UserRepo: userRepo, Validate: validate}
}

// CreateSlot opens a new bookable window for the instructor. The start must
// be at least an hour out and the end after the start.
func (a *DefaultAppointmentService) CreateSlot(req *AddSlotRequest, instructorID uint) (uint, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return 0, apierror.FromValidationError(err)
	}

	start, err := utils.ParseTime(req.Start)
	if err != nil {
		return 0, apierror.MalformedBodyError
	}
	end, err := utils.ParseTime(req.End)
	if err != nil {
		return 0, apierror.MalformedBodyError
	}

	if start.Before(utils.NowUTC().Add(CreateLeadTime)) {
		return 0, apierror.SlotTooSoonError
	}
	if !end.After(start) {
		return 0, apierror.NewSimple(400, "Czas zakończenia musi być późniejszy niż czas rozpoczęcia.")
	}

	appt := &entity.Appointment{
		InstructorID: instructorID,
		StartTime:    start,
		EndTime:      end,
		IsAvailable:  true,
		Status:       entity.StatusAvailable,
	}

	if err := a.AppointmentRepo.Save(appt); err != nil {
		log.Errorf("failed to save slot for instructor %d: %v", instructorID, err)
		return 0, apierror.InternalServerError
	}
	return appt.ID, nil
}

// Book moves an open slot to pending on behalf of a student and notifies the
// instructor. At most one concurrent booking per slot can succeed.
func (a *DefaultAppointmentService) Book(apptID, studentID uint, req *BookRequest) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := a.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	appt, err := a.AppointmentRepo.FindByID(apptID)
	if err != nil {
		log.Errorf("failed to fetch appointment %d: %v", apptID, err)
		return apierror.InternalServerError
	}
	if appt == nil {
		return apierror.NotFoundError
	}
	if !appt.IsAvailable {
		return apierror.SlotTakenError
	}
	if appt.StartTime.Before(utils.NowUTC().Add(BookingLeadTime)) {
		return apierror.BookingTooSoonError
	}

	notif := &entity.Notification{
		UserID:    appt.InstructorID,
		Message:   fmt.Sprintf("%s: %s", msgBooked, req.Topic),
		Type:      entity.NotificationAppointment,
		RelatedID: appt.ID,
	}

	if err := a.AppointmentRepo.Book(apptID, studentID, req.Topic, notif); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return apierror.SlotTakenError
		}
		log.Errorf("failed to book appointment %d: %v", apptID, err)
		return apierror.InternalServerError
	}
	return nil
}

// Confirm accepts a pending booking and notifies the student.
func (a *DefaultAppointmentService) Confirm(apptID, instructorID uint) apierror.ErrorResponse {
	appt, apierr := a.fetchOwned(apptID, instructorID)
	if apierr != nil {
		return apierr
	}
	if appt.Status != entity.StatusPending || appt.StudentID == nil {
		return apierror.NotFoundError
	}

	studentID := *appt.StudentID
	appt.Status = entity.StatusConfirmed

	return a.transition(appt, studentID, msgConfirmed)
}

// Reject declines a pending booking. The slot opens up again but keeps the
// rejected status until somebody books it anew.
func (a *DefaultAppointmentService) Reject(apptID, instructorID uint) apierror.ErrorResponse {
	appt, apierr := a.fetchOwned(apptID, instructorID)
	if apierr != nil {
		return apierr
	}
	if appt.Status != entity.StatusPending || appt.StudentID == nil {
		return apierror.NotFoundError
	}

	studentID := *appt.StudentID
	appt.Status = entity.StatusRejected
	appt.IsAvailable = true
	appt.StudentID = nil
	appt.Topic = nil

	return a.transition(appt, studentID, msgRejected)
}

// CancelByStudent returns the student's own booking to the open pool and
// notifies the instructor.
func (a *DefaultAppointmentService) CancelByStudent(apptID, studentID uint) apierror.ErrorResponse {
	appt, err := a.AppointmentRepo.FindByID(apptID)
	if err != nil {
		log.Errorf("failed to fetch appointment %d: %v", apptID, err)
		return apierror.InternalServerError
	}
	if appt == nil {
		return apierror.NotFoundError
	}
	if appt.StudentID == nil || *appt.StudentID != studentID {
		return apierror.NotOwnBookingError
	}

	appt.Status = entity.StatusAvailable
	appt.IsAvailable = true
	appt.StudentID = nil
	appt.Topic = nil

	return a.transition(appt, appt.InstructorID, msgCanceled)
}

// CancelByInstructor withdraws a confirmed booking. The slot reopens with
// the student cleared but the status demoted to pending rather than
// available, unlike the student cancel path. That mismatch is longstanding
// observed behavior and is kept on purpose.
func (a *DefaultAppointmentService) CancelByInstructor(apptID, instructorID uint) apierror.ErrorResponse {
	appt, apierr := a.fetchOwned(apptID, instructorID)
	if apierr != nil {
		return apierr
	}
	if appt.Status != entity.StatusConfirmed || appt.StudentID == nil {
		return apierror.NotFoundError
	}

	studentID := *appt.StudentID
	appt.Status = entity.StatusPending
	appt.IsAvailable = true
	appt.StudentID = nil
	appt.Topic = nil

	return a.transition(appt, studentID, msgCanceled)
}

// DeleteSlot removes a never-booked slot. Booked slots must go through
// reject or cancel first.
func (a *DefaultAppointmentService) DeleteSlot(req *DeleteSlotRequest, instructorID uint) apierror.ErrorResponse {
	if err := a.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	appt, err := a.AppointmentRepo.FindByID(req.ID)
	if err != nil {
		log.Errorf("failed to fetch appointment %d: %v", req.ID, err)
		return apierror.InternalServerError
	}
	if appt == nil {
		return apierror.SlotNotDeletable
	}
	if appt.InstructorID != instructorID {
		return apierror.NotOwnResourceError
	}
	if !appt.IsAvailable {
		return apierror.SlotNotDeletable
	}

	if err := a.AppointmentRepo.Delete(appt); err != nil {
		log.Errorf("failed to delete appointment %d: %v", req.ID, err)
		return apierror.InternalServerError
	}
	return nil
}

// GetStudentEvents lists open slots plus the student's own bookings in the
// requested window.
func (a *DefaultAppointmentService) GetStudentEvents(studentID uint, start, end time.Time) ([]*EventResponse, apierror.ErrorResponse) {
	appts, err := a.AppointmentRepo.FindStudentWindow(studentID, start, end)
	if err != nil {
		log.Errorf("failed to fetch calendar for student %d: %v", studentID, err)
		return nil, apierror.InternalServerError
	}
	return toEvents(appts), nil
}

func (a *DefaultAppointmentService) GetInstructorEvents(instructorID uint, start, end time.Time) ([]*EventResponse, apierror.ErrorResponse) {
	appts, err := a.AppointmentRepo.FindInstructorWindow(instructorID, start, end)
	if err != nil {
		log.Errorf("failed to fetch calendar for instructor %d: %v", instructorID, err)
		return nil, apierror.InternalServerError
	}
	return toEvents(appts), nil
}

func (a *DefaultAppointmentService) fetchOwned(apptID, instructorID uint) (*entity.Appointment, apierror.ErrorResponse) {
	appt, err := a.AppointmentRepo.FindByID(apptID)
	if err != nil {
		log.Errorf("failed to fetch appointment %d: %v", apptID, err)
		return nil, apierror.InternalServerError
	}
	if appt == nil {
		return nil, apierror.NotFoundError
	}
	if appt.InstructorID != instructorID {
		return nil, apierror.NotOwnResourceError
	}
	return appt, nil
}

func (a *DefaultAppointmentService) transition(appt *entity.Appointment, recipientID uint, message string) apierror.ErrorResponse {
	notif := &entity.Notification{
		UserID:    recipientID,
		Message:   message,
		Type:      entity.NotificationAppointment,
		RelatedID: appt.ID,
	}
	if err := a.AppointmentRepo.Transition(appt, notif); err != nil {
		log.Errorf("failed to transition appointment %d: %v", appt.ID, err)
		return apierror.InternalServerError
	}
	return nil
}

func toEvents(appts []*entity.Appointment) []*EventResponse {
	events := make([]*EventResponse, len(appts))
	for i, appt := range appts {
		events[i] = toEvent(appt)
	}
	return events
}

func toEvent(appt *entity.Appointment) *EventResponse {
	event := &EventResponse{
		ID:          appt.ID,
		Start:       utils.FormatTime(appt.StartTime),
		End:         utils.FormatTime(appt.EndTime),
		IsAvailable: appt.IsAvailable,
		Status:      appt.Status,
	}

	switch {
	case appt.IsAvailable:
		event.Title = "Dostępny"
		event.TitleMessage = "Dostępny"
		event.Color = colorAvailable
	case appt.Status == entity.StatusConfirmed:
		event.Title = "Potwierdzony"
		event.TitleMessage = withTopic("Potwierdzony", appt.Topic)
		event.Color = colorConfirmed
	default:
		event.Title = "Oczekujący"
		event.TitleMessage = withTopic("Oczekujący", appt.Topic)
		event.Color = colorPending
	}
	return event
}

func withTopic(label string, topic *string) string {
	if topic == nil || *topic == "" {
		return label
	}
	return fmt.Sprintf("%s: %s", label, *topic)
}
