package main

import (
	"os"

	"tutorcal/cmd/internal/domain/sqlite"
	"tutorcal/cmd/internal/domain/sqlite/repository"
	"tutorcal/cmd/internal/routes"
	"tutorcal/cmd/internal/service"
	"tutorcal/cmd/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

func main() {
	validate := validator.New()

	err := godotenv.Load()
	if err != nil {
		log.Warn("no .env file found, relying on the environment")
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}

	// Init SQLite
	db, err := sqlite.Init(envOr("TUTORCAL_DB", "./database.db"))
	if err != nil {
		log.Fatal("failed to initialize database", err)
	}

	// Getting repositories
	userRepo := repository.NewUserRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// Getting services
	userService := service.NewUserService(userRepo, apptRepo, validate)
	apptService := service.NewAppointmentService(apptRepo, userRepo, validate)
	notifService := service.NewNotificationService(notifRepo, apptRepo)

	sessions := session.NewManager(secret)

	// Getting routes
	authRoutes := routes.NewAuthDefault(userService, sessions)
	adminRoutes := routes.NewAdminDefault(userService)
	calendarRoutes := routes.NewCalendarDefault(apptService)
	instructorRoutes := routes.NewInstructorDefault(apptService, userService)
	notifRoutes := routes.NewNotificationDefault(notifService)

	e := echo.New()
	e.Use(middleware.CORS())

	// Auth
	e.GET("/", authRoutes.Home)
	e.GET("/login", authRoutes.LoginPage)
	e.POST("/login", authRoutes.Login)
	e.GET("/register", authRoutes.RegisterPage)
	e.POST("/register", authRoutes.Register)
	e.GET("/logout", authRoutes.Logout)

	// Admin
	e.GET("/dashboard", adminRoutes.Dashboard, sessions.RequirePage(session.Admin))
	e.POST("/create_instructor", adminRoutes.CreateInstructor, sessions.RequirePage(session.Admin))
	e.POST("/admin/delete_instructor/:id", adminRoutes.DeleteInstructor, sessions.RequireJSON(session.Admin))

	// Student calendar
	e.GET("/view", calendarRoutes.ViewPage, sessions.RequirePage(session.Student))
	e.GET("/calendar/get_appointments", calendarRoutes.GetAppointments, sessions.RequireJSON(session.Student))
	e.POST("/calendar/book/:id", calendarRoutes.Book, sessions.RequireJSON(session.Student))
	e.POST("/calendar/cancel/:id", calendarRoutes.Cancel, sessions.RequireJSON(session.Student))

	// Instructor calendar
	e.GET("/instructor/calendar", instructorRoutes.CalendarPage, sessions.RequirePage(session.Instructor))
	e.GET("/instructor/get_appointments", instructorRoutes.GetAppointments, sessions.RequireJSON(session.Instructor))
	e.POST("/instructor/add_appointment", instructorRoutes.AddAppointment, sessions.RequireJSON(session.Instructor))
	e.POST("/instructor/delete_appointment", instructorRoutes.DeleteAppointment, sessions.RequireJSON(session.Instructor))
	e.POST("/instructor/confirm_appointment/:id", instructorRoutes.ConfirmAppointment, sessions.RequireJSON(session.Instructor))
	e.POST("/instructor/reject_appointment/:id", instructorRoutes.RejectAppointment, sessions.RequireJSON(session.Instructor))
	e.POST("/instructor/cancel_appointment/:id", instructorRoutes.CancelAppointment, sessions.RequireJSON(session.Instructor))

	// Directory and notifications
	e.GET("/api/instructors", instructorRoutes.GetInstructors, sessions.RequireJSON(session.Any))
	e.GET("/api/notifications", notifRoutes.GetNotifications, sessions.RequireJSON(session.Any))
	e.GET("/api/notifications/:id/details", notifRoutes.GetDetails, sessions.RequireJSON(session.Any))
	e.POST("/api/notifications/:id/read", notifRoutes.MarkRead, sessions.RequireJSON(session.Any))
	e.DELETE("/api/notifications/:id", notifRoutes.Delete, sessions.RequireJSON(session.Any))

	err = e.Start(envOr("TUTORCAL_ADDR", ":6060"))
	if err != nil {
		e.Logger.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
