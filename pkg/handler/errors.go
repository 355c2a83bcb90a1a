package handler

import (
	"net/http"

	"github.com/pkg/errors"
)

var (
	ErrSlashInFilename = errors.New("File names cannot contain forward slashes!")
	ErrNotAllowlisted  = errors.New("Only .md and .pdf files are allowed!")
	ErrPathEscape      = errors.New("Invalid file path!")
)

// HTTPError attaches the response status to an error passed to the error
// handler.
type HTTPError struct {
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	return e.Err.Error()
}

func (e *HTTPError) Cause() error {
	return e.Err
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func forbidden(err error) error {
	return &HTTPError{StatusCode: http.StatusForbidden, Err: err}
}

// statusOf maps an error to a response status, 500 when nothing says
// otherwise.
func statusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return http.StatusInternalServerError
}
