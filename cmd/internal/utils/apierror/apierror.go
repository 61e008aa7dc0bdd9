package apierror

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is what services hand back to routes; the route serializes
// it as-is with the carried HTTP status code.
type ErrorResponse interface {
	Code() int
	Message() string
}

type simpleError struct {
	StatusField  string `json:"status"`
	MessageField string `json:"message"`
	code         int
}

func NewSimple(code int, message string) ErrorResponse {
	return &simpleError{StatusField: "error", MessageField: message, code: code}
}

func (e *simpleError) Code() int       { return e.code }
func (e *simpleError) Message() string { return e.MessageField }

var (
	InternalServerError = NewSimple(http.StatusInternalServerError, "Wystąpił błąd serwera.")
	MalformedBodyError  = NewSimple(http.StatusBadRequest, "Nieprawidłowe dane żądania.")
	NotFoundError       = NewSimple(http.StatusNotFound, "Nie znaleziono zasobu.")
	AccessDeniedError   = NewSimple(http.StatusForbidden, "Odmowa dostępu")

	UsernameTakenError      = NewSimple(http.StatusBadRequest, "Nazwa użytkownika już istnieje.")
	EmailTakenError         = NewSimple(http.StatusBadRequest, "Adres email jest już używany.")
	InvalidCredentialsError = NewSimple(http.StatusBadRequest, "Nieprawidłowa nazwa użytkownika lub hasło.")

	SlotTakenError      = NewSimple(http.StatusBadRequest, "Ten termin jest już zarezerwowany.")
	BookingTooSoonError = NewSimple(http.StatusBadRequest, "Nie można rezerwować terminów na mniej niż 30 minut przed rozpoczęciem.")
	SlotTooSoonError    = NewSimple(http.StatusBadRequest, "Termin musi być ustawiony co najmniej godzinę do przodu.")
	SlotNotDeletable    = NewSimple(http.StatusNotFound, "Ten termin nie jest dostępny do usunięcia.")
	NotOwnBookingError  = NewSimple(http.StatusForbidden, "Możesz anulować tylko własne terminy.")
	NotOwnResourceError = NewSimple(http.StatusForbidden, "Unauthorized")
)

func NewMissingParamError(param string) ErrorResponse {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Brak wymaganego parametru: %s", param))
}

// FromValidationError folds a validator error into a single 400 naming the
// first offending field.
func FromValidationError(err error) ErrorResponse {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return NewSimple(http.StatusBadRequest, fmt.Sprintf("Nieprawidłowe pole: %s", verrs[0].Field()))
	}
	return MalformedBodyError
}
