package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidInput       = errors.New("invalid input")

	ErrLotNotFound         = errors.New("parking lot not found")
	ErrSpotNotFound        = errors.New("spot not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrNoAvailableSpots    = errors.New("no available spots in this lot")
	ErrLotOccupied         = errors.New("some spots are occupied")
	ErrAlreadyReleased     = errors.New("reservation already released")
	ErrTaskNotFound        = errors.New("export task not found")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	// Message is the server-provided message, empty when the body carried none.
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// UserError is a failure meant to be shown to the person using the client.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Err }

// ValidationError lists the payload fields rejected before sending.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid payload: " + strings.Join(e.Fields, "; ")
}

// ServerMessage extracts the API-provided message from err, if any.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
