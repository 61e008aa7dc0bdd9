package routes_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"tutorcal/cmd/internal/domain/entity"
	"tutorcal/cmd/internal/domain/sqlite"
	"tutorcal/cmd/internal/domain/sqlite/repository"
	"tutorcal/cmd/internal/routes"
	"tutorcal/cmd/internal/service"
	"tutorcal/cmd/internal/session"
	"tutorcal/cmd/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type app struct {
	e        *echo.Echo
	db       *gorm.DB
	sessions *session.Manager
	userRepo *repository.DefaultUserRepository
}

// newApp wires the echo instance the way cmd/api/main.go does.
func newApp(t *testing.T) *app {
	t.Helper()

	db, err := sqlite.Init(":memory:")
	if err != nil {
		t.Fatalf("db: %v", err)
	}

	validate := validator.New()
	userRepo := repository.NewUserRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	userService := service.NewUserService(userRepo, apptRepo, validate)
	apptService := service.NewAppointmentService(apptRepo, userRepo, validate)
	notifService := service.NewNotificationService(notifRepo, apptRepo)

	sessions := session.NewManager("test-secret")

	authRoutes := routes.NewAuthDefault(userService, sessions)
	adminRoutes := routes.NewAdminDefault(userService)
	calendarRoutes := routes.NewCalendarDefault(apptService)
	instructorRoutes := routes.NewInstructorDefault(apptService, userService)
	notifRoutes := routes.NewNotificationDefault(notifService)

	e := echo.New()
	e.GET("/", authRoutes.Home)
	e.GET("/login", authRoutes.LoginPage)
	e.POST("/login", authRoutes.Login)
	e.GET("/register", authRoutes.RegisterPage)
	e.POST("/register", authRoutes.Register)
	e.GET("/logout", authRoutes.Logout)

	e.GET("/dashboard", adminRoutes.Dashboard, sessions.RequirePage(session.Admin))
	e.POST("/create_instructor", adminRoutes.CreateInstructor, sessions.RequirePage(session.Admin))
	e.POST("/admin/delete_instructor/:id", adminRoutes.DeleteInstructor, sessions.RequireJSON(session.Admin))

	e.GET("/view", calendarRoutes.ViewPage, sessions.RequirePage(session.Student))
	e.GET("/calendar/get_appointments", calendarRoutes.GetAppointments, sessions.RequireJSON(session.Student))
	e.POST("/calendar/book/:id", calendarRoutes.Book, sessions.RequireJSON(session.Student))
	e.POST("/calendar/cancel/:id", calendarRoutes.Cancel, sessions.RequireJSON(session.Student))

	e.GET("/instructor/calendar", instructorRoutes.CalendarPage, sessions.RequirePage(session.Instructor))
	e.GET("/instructor/get_appointments", instructorRoutes.GetAppointments, sessions.RequireJSON(session.Instructor))
	e.POST("/instructor/add_appointment", instructorRoutes.AddAppointment, sessions.RequireJSON(session.Instructor))
	e.POST("/instructor/delete_appointment", instructorRoutes.DeleteAppointment, sessions.RequireJSON(session.Instructor))
	e.POST("/instructor/confirm_appointment/:id", instructorRoutes.ConfirmAppointment, sessions.RequireJSON(session.Instructor))
	e.POST("/instructor/reject_appointment/:id", instructorRoutes.RejectAppointment, sessions.RequireJSON(session.Instructor))
	e.POST("/instructor/cancel_appointment/:id", instructorRoutes.CancelAppointment, sessions.RequireJSON(session.Instructor))

	e.GET("/api/instructors", instructorRoutes.GetInstructors, sessions.RequireJSON(session.Any))
	e.GET("/api/notifications", notifRoutes.GetNotifications, sessions.RequireJSON(session.Any))
	e.GET("/api/notifications/:id/details", notifRoutes.GetDetails, sessions.RequireJSON(session.Any))
	e.POST("/api/notifications/:id/read", notifRoutes.MarkRead, sessions.RequireJSON(session.Any))
	e.DELETE("/api/notifications/:id", notifRoutes.Delete, sessions.RequireJSON(session.Any))

	return &app{e: e, db: db, sessions: sessions, userRepo: userRepo}
}

func (a *app) seedUser(t *testing.T, username string, admin, instructor bool) *entity.User {
	t.Helper()
	user := &entity.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		IsAdmin:      admin,
		IsInstructor: instructor,
	}
	if err := a.userRepo.Save(user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (a *app) cookieFor(t *testing.T, user *entity.User) *http.Cookie {
	t.Helper()
	token, err := a.sessions.Issue(user)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return &http.Cookie{Name: session.CookieName, Value: token}
}

func (a *app) do(method, target string, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *app) doForm(method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestPageGuards(t *testing.T) {
	a := newApp(t)
	admin := a.seedUser(t, "adminuser", true, false)
	student := a.seedUser(t, "student", false, false)
	instructor := a.seedUser(t, "instructor", false, true)

	tests := []struct {
		name     string
		target   string
		cookie   *http.Cookie
		code     int
		location string
	}{
		{"dashboard admin", "/dashboard", a.cookieFor(t, admin), http.StatusOK, ""},
		{"dashboard student", "/dashboard", a.cookieFor(t, student), http.StatusFound, "/"},
		{"dashboard anonymous", "/dashboard", nil, http.StatusFound, "/login"},
		{"view student", "/view", a.cookieFor(t, student), http.StatusOK, ""},
		{"view instructor", "/view", a.cookieFor(t, instructor), http.StatusFound, "/"},
		{"instructor calendar", "/instructor/calendar", a.cookieFor(t, instructor), http.StatusOK, ""},
		{"instructor calendar as student", "/instructor/calendar", a.cookieFor(t, student), http.StatusFound, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(http.MethodGet, tt.target, "", tt.cookie)
			if rec.Code != tt.code {
				t.Fatalf("code: got %d, want %d", rec.Code, tt.code)
			}
			if tt.location != "" && rec.Header().Get("Location") != tt.location {
				t.Errorf("location: got %q, want %q", rec.Header().Get("Location"), tt.location)
			}
		})
	}
}

func TestJSONGuards(t *testing.T) {
	a := newApp(t)
	student := a.seedUser(t, "student", false, false)

	rec := a.do(http.MethodPost, "/admin/delete_instructor/1", "", a.cookieFor(t, student))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code: got %d, want 403", rec.Code)
	}
	var resp map[string]any
	decode(t, rec, &resp)
	if resp["status"] != "error" {
		t.Errorf("status: got %v", resp["status"])
	}
	if !strings.Contains(resp["message"].(string), "Odmowa dostępu") {
		t.Errorf("message: got %v", resp["message"])
	}

	rec = a.do(http.MethodGet, "/api/notifications", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous code: got %d, want 401", rec.Code)
	}
}

func TestAuthPages(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/login", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Logowanie") {
		t.Errorf("login page: code %d body %q", rec.Code, rec.Body.String())
	}

	rec = a.do(http.MethodGet, "/register", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Rejestracja") {
		t.Errorf("register page: code %d", rec.Code)
	}
}

func TestRegisterAndLoginFlow(t *testing.T) {
	a := newApp(t)

	form := url.Values{
		"username":   {"testuser"},
		"email":      {"test@example.com"},
		"password":   {"securepassword"},
		"first_name": {"Test"},
		"last_name":  {"User"},
	}
	rec := a.doForm(http.MethodPost, "/register", form, nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("register: got %d, want 302", rec.Code)
	}

	// Duplicate username renders the form again with the message.
	rec = a.doForm(http.MethodPost, "/register", form, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "już istnieje") {
		t.Errorf("duplicate register: code %d body %q", rec.Code, rec.Body.String())
	}

	login := url.Values{"username": {"testuser"}, "password": {"securepassword"}}
	rec = a.doForm(http.MethodPost, "/login", login, nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("login: got %d, want 302", rec.Code)
	}
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("no session cookie set")
	}

	bad := url.Values{"username": {"testuser"}, "password": {"wrongpassword"}}
	rec = a.doForm(http.MethodPost, "/login", bad, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Nieprawidłowa nazwa użytkownika lub hasło") {
		t.Errorf("bad login: code %d", rec.Code)
	}
}

// The core walkthrough: admin provisions an instructor, the instructor opens
// a slot two days out, a student books it, the instructor confirms and the
// student is told about it.
func TestBookingScenario(t *testing.T) {
	a := newApp(t)
	admin := a.seedUser(t, "adminuser", true, false)
	student := a.seedUser(t, "student", false, false)
	adminCookie := a.cookieFor(t, admin)
	studentCookie := a.cookieFor(t, student)

	form := url.Values{
		"username":   {"instructor"},
		"email":      {"instructor@example.com"},
		"password":   {"securepassword"},
		"first_name": {"Test"},
		"last_name":  {"Instructor"},
	}
	rec := a.doForm(http.MethodPost, "/create_instructor", form, adminCookie)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "utworzony") {
		t.Fatalf("create instructor: code %d body %q", rec.Code, rec.Body.String())
	}

	instructor, err := a.userRepo.FindByUsername("instructor")
	if err != nil || instructor == nil {
		t.Fatalf("instructor lookup: %v", err)
	}
	instructorCookie := a.cookieFor(t, instructor)

	start := time.Now().UTC().Add(48 * time.Hour)
	body := fmt.Sprintf(`{"start":%q,"end":%q}`, utils.FormatTime(start), utils.FormatTime(start.Add(time.Hour)))
	rec = a.do(http.MethodPost, "/instructor/add_appointment", body, instructorCookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add slot: code %d body %q", rec.Code, rec.Body.String())
	}
	var created struct {
		Status string `json:"status"`
		ID     uint   `json:"id"`
	}
	decode(t, rec, &created)
	if created.Status != "success" || created.ID == 0 {
		t.Fatalf("add slot response: %+v", created)
	}

	rec = a.do(http.MethodPost, fmt.Sprintf("/calendar/book/%d", created.ID), `{"topic":"X"}`, studentCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("book: code %d body %q", rec.Code, rec.Body.String())
	}

	// The slot now shows as pending in the student feed.
	window := fmt.Sprintf("/calendar/get_appointments?start=%s&end=%s&timeZone=UTC",
		url.QueryEscape(utils.FormatTime(start.Add(-24*time.Hour))),
		url.QueryEscape(utils.FormatTime(start.Add(24*time.Hour))))
	rec = a.do(http.MethodGet, window, "", studentCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("feed: code %d", rec.Code)
	}
	var events []map[string]any
	decode(t, rec, &events)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0]["status"] != entity.StatusPending {
		t.Errorf("event status: got %v", events[0]["status"])
	}

	rec = a.do(http.MethodPost, fmt.Sprintf("/instructor/confirm_appointment/%d", created.ID), "", instructorCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: code %d body %q", rec.Code, rec.Body.String())
	}

	rec = a.do(http.MethodGet, "/api/notifications", "", studentCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("notifications: code %d", rec.Code)
	}
	var notifResp struct {
		UnreadCount   int `json:"unread_count"`
		Notifications []struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"notifications"`
	}
	decode(t, rec, &notifResp)
	if notifResp.UnreadCount != 1 || len(notifResp.Notifications) != 1 {
		t.Fatalf("notification list: %+v", notifResp)
	}
	if notifResp.Notifications[0].Type != entity.NotificationAppointment {
		t.Errorf("type: got %s", notifResp.Notifications[0].Type)
	}
	if !strings.Contains(notifResp.Notifications[0].Message, "zaakceptowana") {
		t.Errorf("message %q does not contain acceptance", notifResp.Notifications[0].Message)
	}
}

func TestBookTooSoonOverHTTP(t *testing.T) {
	a := newApp(t)
	instructor := a.seedUser(t, "instructor", false, true)
	student := a.seedUser(t, "student", false, false)

	apptRepo := repository.NewAppointmentRepository(a.db)
	start := time.Now().UTC().Add(15 * time.Minute)
	slot := &entity.Appointment{
		InstructorID: instructor.ID,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		IsAvailable:  true,
		Status:       entity.StatusAvailable,
	}
	if err := apptRepo.Save(slot); err != nil {
		t.Fatalf("seed slot: %v", err)
	}

	rec := a.do(http.MethodPost, fmt.Sprintf("/calendar/book/%d", slot.ID), `{"topic":"X"}`, a.cookieFor(t, student))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code: got %d, want 400", rec.Code)
	}
	var resp map[string]any
	decode(t, rec, &resp)
	if resp["status"] != "error" {
		t.Errorf("status: got %v", resp["status"])
	}
	if !strings.Contains(resp["message"].(string), "mniej niż 30 minut") {
		t.Errorf("message: got %v", resp["message"])
	}
}

func TestDeleteInstructorOverHTTP(t *testing.T) {
	a := newApp(t)
	admin := a.seedUser(t, "adminuser", true, false)
	instructor := a.seedUser(t, "instructor", false, true)
	student := a.seedUser(t, "student", false, false)

	apptRepo := repository.NewAppointmentRepository(a.db)
	start := time.Now().UTC().Add(24 * time.Hour)
	topic := "Test appointment"
	slot := &entity.Appointment{
		InstructorID: instructor.ID,
		StudentID:    &student.ID,
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		IsAvailable:  false,
		Topic:        &topic,
		Status:       entity.StatusPending,
	}
	if err := apptRepo.Save(slot); err != nil {
		t.Fatalf("seed slot: %v", err)
	}

	rec := a.do(http.MethodPost, fmt.Sprintf("/admin/delete_instructor/%d", instructor.ID), "", a.cookieFor(t, admin))
	if rec.Code != http.StatusOK {
		t.Fatalf("code: got %d body %q", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status           string `json:"status"`
		NotifiedStudents int    `json:"notified_students"`
	}
	decode(t, rec, &resp)
	if resp.Status != "success" || resp.NotifiedStudents != 1 {
		t.Fatalf("response: %+v", resp)
	}

	survivor, err := a.userRepo.FindByID(instructor.ID)
	if err != nil || survivor == nil {
		t.Fatalf("instructor row must survive: %v", err)
	}
	if !survivor.Deleted {
		t.Error("deleted flag not set")
	}
	gone, err := apptRepo.FindByID(slot.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if gone != nil {
		t.Error("appointment should be gone")
	}
}
