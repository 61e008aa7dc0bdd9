package repository

import (
	"tutorcal/cmd/internal/domain/entity"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrSlotTaken is returned when a booking loses the race for an available slot.
var ErrSlotTaken = errors.New("appointment already booked")

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

func (a *DefaultAppointmentRepository) FindByID(id uint) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.First(&appt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &appt, err
}

// FindStudentWindow returns every slot overlapping [start, end) that a student
// may see: open slots plus the student's own bookings.
func (a *DefaultAppointmentRepository) FindStudentWindow(studentID uint, start, end time.Time) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.
		Where("start_time < ? AND end_time > ?", end, start).
		Where("is_available = ? OR student_id = ?", true, studentID).
		Order("start_time asc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) FindInstructorWindow(instructorID uint, start, end time.Time) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.
		Where("instructor_id = ?", instructorID).
		Where("start_time < ? AND end_time > ?", end, start).
		Order("start_time asc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) Save(appointment *entity.Appointment) error {
	return a.db.Save(appointment).Error
}

func (a *DefaultAppointmentRepository) Delete(appointment *entity.Appointment) error {
	return a.db.Delete(appointment).Error
}

// Book claims an open slot for a student and records the instructor's
// notification in the same transaction. The guarded update serializes
// concurrent attempts: whoever flips is_available first wins, the loser sees
// zero affected rows and gets ErrSlotTaken.
func (a *DefaultAppointmentRepository) Book(apptID, studentID uint, topic string, notif *entity.Notification) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Appointment{}).
			Where("id = ? AND is_available = ?", apptID, true).
			Updates(map[string]any{
				"student_id":   studentID,
				"topic":        topic,
				"is_available": false,
				"status":       entity.StatusPending,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSlotTaken
		}
		return tx.Create(notif).Error
	})
}

// Transition persists a state change together with its notification so the
// two can never drift apart.
func (a *DefaultAppointmentRepository) Transition(appointment *entity.Appointment, notif *entity.Notification) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(appointment).Error; err != nil {
			return err
		}
		return tx.Create(notif).Error
	})
}

// DeleteInstructorCascade soft-deletes the instructor, hard-deletes all of
// their slots and notifies every student holding a booking, atomically.
// Returns the number of distinct students notified.
func (a *DefaultAppointmentRepository) DeleteInstructorCascade(instructor *entity.User, message string) (int, error) {
	notified := 0
	err := a.db.Transaction(func(tx *gorm.DB) error {
		var appts []*entity.Appointment
		if err := tx.Where("instructor_id = ?", instructor.ID).Find(&appts).Error; err != nil {
			return err
		}

		seen := make(map[uint]bool)
		for _, appt := range appts {
			if appt.StudentID == nil || seen[*appt.StudentID] {
				continue
			}
			seen[*appt.StudentID] = true
			notif := &entity.Notification{
				UserID:    *appt.StudentID,
				Message:   message,
				Type:      entity.NotificationInstructorDeleted,
				RelatedID: appt.ID,
			}
			if err := tx.Create(notif).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("instructor_id = ?", instructor.ID).Delete(&entity.Appointment{}).Error; err != nil {
			return err
		}

		instructor.Deleted = true
		if err := tx.Save(instructor).Error; err != nil {
			return err
		}

		notified = len(seen)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return notified, nil
}
