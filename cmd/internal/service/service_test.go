package service_test

import (
	"fmt"
	"testing"
	"time"

	"tutorcal/cmd/internal/domain/entity"
	"tutorcal/cmd/internal/domain/sqlite"
	"tutorcal/cmd/internal/domain/sqlite/repository"
	"tutorcal/cmd/internal/service"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	userRepo  *repository.DefaultUserRepository
	apptRepo  *repository.DefaultAppointmentRepository
	notifRepo *repository.DefaultNotificationRepository
	users     *service.DefaultUserService
	appts     *service.DefaultAppointmentService
	notifs    *service.DefaultNotificationService
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := sqlite.Init(":memory:")
	if err != nil {
		t.Fatalf("db: %v", err)
	}

	validate := validator.New()
	userRepo := repository.NewUserRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	return &fixture{
		db:        db,
		userRepo:  userRepo,
		apptRepo:  apptRepo,
		notifRepo: notifRepo,
		users:     service.NewUserService(userRepo, apptRepo, validate),
		appts:     service.NewAppointmentService(apptRepo, userRepo, validate),
		notifs:    service.NewNotificationService(notifRepo, apptRepo),
	}
}

var userSeq int

func (f *fixture) createUser(t *testing.T, admin, instructor bool) *entity.User {
	t.Helper()
	userSeq++
	user := &entity.User{
		Username:     fmt.Sprintf("user%d", userSeq),
		Email:        fmt.Sprintf("user%d@example.com", userSeq),
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     fmt.Sprintf("User%d", userSeq),
		IsAdmin:      admin,
		IsInstructor: instructor,
	}
	if err := f.userRepo.Save(user); err != nil {
		t.Fatalf("save user: %v", err)
	}
	return user
}

func (f *fixture) createStudent(t *testing.T) *entity.User {
	t.Helper()
	return f.createUser(t, false, false)
}

func (f *fixture) createInstructor(t *testing.T) *entity.User {
	t.Helper()
	return f.createUser(t, false, true)
}

// createSlot seeds an open slot starting the given duration from now.
func (f *fixture) createSlot(t *testing.T, instructorID uint, fromNow time.Duration) *entity.Appointment {
	t.Helper()
	start := time.Now().UTC().Add(fromNow)
	appt := &entity.Appointment{
		InstructorID: instructorID,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		IsAvailable:  true,
		Status:       entity.StatusAvailable,
	}
	if err := f.apptRepo.Save(appt); err != nil {
		t.Fatalf("save slot: %v", err)
	}
	return appt
}

// bookSlot marks the slot as booked by the student, bypassing the lead-time
// checks so tests can set up pending/confirmed appointments directly.
func (f *fixture) bookSlot(t *testing.T, appt *entity.Appointment, studentID uint, status string) {
	t.Helper()
	topic := "Test topic"
	appt.StudentID = &studentID
	appt.Topic = &topic
	appt.IsAvailable = false
	appt.Status = status
	if err := f.apptRepo.Save(appt); err != nil {
		t.Fatalf("book slot: %v", err)
	}
}

func (f *fixture) reload(t *testing.T, id uint) *entity.Appointment {
	t.Helper()
	appt, err := f.apptRepo.FindByID(id)
	if err != nil {
		t.Fatalf("reload appointment %d: %v", id, err)
	}
	if appt == nil {
		t.Fatalf("appointment %d gone", id)
	}
	return appt
}

func (f *fixture) lastNotification(t *testing.T, userID uint) *entity.Notification {
	t.Helper()
	notifs, err := f.notifRepo.FindRecent(userID, 1)
	if err != nil {
		t.Fatalf("fetch notifications: %v", err)
	}
	if len(notifs) == 0 {
		t.Fatalf("no notification for user %d", userID)
	}
	return notifs[0]
}
