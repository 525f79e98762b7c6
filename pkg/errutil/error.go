package errutil

import (
	"errors"
	"net/http"
)

type HttpError struct {
	code int
	err  error
}

func (e *HttpError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *HttpError) Unwrap() error {
	return e.err
}

func (e *HttpError) Code() int {
	return e.code
}

func newHttpError(code int, err error) *HttpError {
	return &HttpError{
		code: code,
		err:  err,
	}
}

func ValidationError(err error) error {
	return newHttpError(http.StatusBadRequest, err)
}

func BadRequestError(err error) error {
	return newHttpError(http.StatusBadRequest, err)
}

func UnauthorizedError(err error) error {
	return newHttpError(http.StatusUnauthorized, err)
}

func NotFoundError(err error) error {
	return newHttpError(http.StatusNotFound, err)
}

func ConflictError(err error) error {
	return newHttpError(http.StatusConflict, err)
}

// ParseHttpError maps an error to an HTTP status code and message.
// A nil error is a 200.
func ParseHttpError(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	httpErr := new(HttpError)
	if errors.As(err, &httpErr) {
		return httpErr.Code(), httpErr.Error()
	}

	return http.StatusInternalServerError, err.Error()
}
