package apierr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/yungbote/microlearn-backend/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(code string, err error) *Error {
	return New(http.StatusNotFound, code, err)
}

func Invalid(code string, err error) *Error {
	return New(http.StatusUnprocessableEntity, code, err)
}

func Conflict(code string, err error) *Error {
	return New(http.StatusConflict, code, err)
}

func Internal(code string, err error) *Error {
	return New(http.StatusInternalServerError, code, err)
}

// FromError classifies err into an HTTP-mapped error. An *Error anywhere in
// the chain passes through; known sentinels get their canonical status;
// everything else is a 500.
func FromError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, pkgerrors.ErrSessionNotFound):
		return NotFound("session_not_found", err)
	case errors.Is(err, pkgerrors.ErrNoActiveStudySession):
		return Conflict("no_active_study_session", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return Invalid("invalid_argument", err)
	case errors.Is(err, pkgerrors.ErrNoUsableInput):
		return Internal("no_usable_input", err)
	case errors.Is(err, pkgerrors.ErrEmptyResult):
		return Internal("empty_result", err)
	default:
		return Internal("internal_error", err)
	}
}
