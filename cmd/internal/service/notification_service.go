package service

import (
	"fmt"

	"tutorcal/cmd/internal/domain/entity"
	"tutorcal/cmd/internal/utils"
	"tutorcal/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

// The list endpoint never returns more than this many items; the unread
// counter still spans everything.
const notificationPageSize = 5

type NotificationRepository interface {
	FindByID(id uint) (*entity.Notification, error)
	FindRecent(userID uint, limit int) ([]*entity.Notification, error)
	CountUnread(userID uint) (int64, error)
	Save(notif *entity.Notification) error
	Delete(notif *entity.Notification) error
}

type NotificationResponse struct {
	ID        uint   `json:"id"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	RelatedID uint   `json:"related_id"`
	IsRead    bool   `json:"is_read"`
	Timestamp string `json:"timestamp"`
}

type NotificationListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	UnreadCount   int64                   `json:"unread_count"`
}

// NotificationDetails carries the related appointment in the calendar-event
// shape the frontend renders in the notification popover.
type NotificationDetails struct {
	ID            uint           `json:"id"`
	Title         string         `json:"title"`
	Start         string         `json:"start"`
	End           string         `json:"end"`
	ExtendedProps map[string]any `json:"extendedProps"`
}

type DefaultNotificationService struct {
	NotificationRepo NotificationRepository
	AppointmentRepo  AppointmentRepository
}

func NewNotificationService(notifRepo NotificationRepository, apptRepo AppointmentRepository) *DefaultNotificationService {
	return &DefaultNotificationService{NotificationRepo: notifRepo, AppointmentRepo: apptRepo}
}

func (n *DefaultNotificationService) List(userID uint) (*NotificationListResponse, apierror.ErrorResponse) {
	notifs, err := n.NotificationRepo.FindRecent(userID, notificationPageSize)
	if err != nil {
		log.Errorf("failed to fetch notifications for user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}

	unread, err := n.NotificationRepo.CountUnread(userID)
	if err != nil {
		log.Errorf("failed to count unread notifications for user %d: %v", userID, err)
		return nil, apierror.InternalServerError
	}

	resp := &NotificationListResponse{
		Notifications: make([]*NotificationResponse, len(notifs)),
		UnreadCount:   unread,
	}
	for i, notif := range notifs {
		resp.Notifications[i] = &NotificationResponse{
			ID:        notif.ID,
			Message:   notif.Message,
			Type:      notif.Type,
			RelatedID: notif.RelatedID,
			IsRead:    notif.IsRead,
			Timestamp: utils.FormatTime(notif.CreatedAt),
		}
	}
	return resp, nil
}

// Details resolves the appointment a notification points at. Only the
// recipient may look.
func (n *DefaultNotificationService) Details(notifID, userID uint) (*NotificationDetails, apierror.ErrorResponse) {
	notif, apierr := n.fetchOwned(notifID, userID)
	if apierr != nil {
		return nil, apierr
	}
	if notif.Type != entity.NotificationAppointment {
		return nil, apierror.NotFoundError
	}

	appt, err := n.AppointmentRepo.FindByID(notif.RelatedID)
	if err != nil {
		log.Errorf("failed to fetch appointment %d: %v", notif.RelatedID, err)
		return nil, apierror.InternalServerError
	}
	if appt == nil {
		return nil, apierror.NotFoundError
	}

	title := "Termin"
	if appt.Topic != nil && *appt.Topic != "" {
		title = fmt.Sprintf("Termin: %s", *appt.Topic)
	}

	return &NotificationDetails{
		ID:    appt.ID,
		Title: title,
		Start: utils.FormatTime(appt.StartTime),
		End:   utils.FormatTime(appt.EndTime),
		ExtendedProps: map[string]any{
			"status":       appt.Status,
			"is_available": appt.IsAvailable,
		},
	}, nil
}

func (n *DefaultNotificationService) MarkRead(notifID, userID uint) apierror.ErrorResponse {
	notif, apierr := n.fetchOwned(notifID, userID)
	if apierr != nil {
		return apierr
	}

	notif.IsRead = true
	if err := n.NotificationRepo.Save(notif); err != nil {
		log.Errorf("failed to mark notification %d read: %v", notifID, err)
		return apierror.InternalServerError
	}
	return nil
}

func (n *DefaultNotificationService) Delete(notifID, userID uint) apierror.ErrorResponse {
	notif, apierr := n.fetchOwned(notifID, userID)
	if apierr != nil {
		return apierr
	}

	if err := n.NotificationRepo.Delete(notif); err != nil {
		log.Errorf("failed to delete notification %d: %v", notifID, err)
		return apierror.InternalServerError
	}
	return nil
}

func (n *DefaultNotificationService) fetchOwned(notifID, userID uint) (*entity.Notification, apierror.ErrorResponse) {
	notif, err := n.NotificationRepo.FindByID(notifID)
	if err != nil {
		log.Errorf("failed to fetch notification %d: %v", notifID, err)
		return nil, apierror.InternalServerError
	}
	if notif == nil {
		return nil, apierror.NotFoundError
	}
	if notif.UserID != userID {
		return nil, apierror.NotOwnResourceError
	}
	return notif, nil
}
