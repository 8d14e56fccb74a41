// Package errors contains helper functions and types to work with errors
package errors

import (
	"errors"
	"net/http"
)

// Category defines error category
type Category int

const (
	// CategoryNoError is the zero value, returned when no error occurred.
	CategoryNoError Category = iota
	// CategoryDataError The client sends some invalid data in the request,
	// for example, missing or incorrect content in the payload or parameters.
	CategoryDataError
	// CategoryResourceNotFound The client is attempting to access a resource that does not exist
	CategoryResourceNotFound
	// CategoryDataConflict The client sends data that conflicts with existing data.
	// Conflicts are soft failures: the response carries the existing record so
	// callers can recover idempotently.
	CategoryDataConflict
	// CategoryUnavailable The storage layer (or another hard dependency) is unreachable
	CategoryUnavailable
	// CategoryGeneralError The service failed in an unexpected way
	CategoryGeneralError
)

func (c Category) String() string {
	switch c {
	case CategoryDataError:
		return "CategoryDataError"
	case CategoryResourceNotFound:
		return "CategoryResourceNotFound"
	case CategoryDataConflict:
		return "CategoryDataConflict"
	case CategoryUnavailable:
		return "CategoryUnavailable"
	default:
		return "CategoryGeneralError"
	}
}

// ServiceError represents service specific error type that
// is used all over the ledger services.
type ServiceError struct {
	Category Category
	Message  string
	// Data optionally carries the authoritative existing record on
	// conflict responses.
	Data any
	Err  error
}

// Error method to comply with error interface
func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err ServiceError) Unwrap() error {
	return err.Err
}

// Is implements the custom condition to check an error is equal to a service error
func (err ServiceError) Is(target error) bool {
	return err.Message == target.Error()
}

// Is checks that provided error is a ServiceError with desired Category
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Category == cat {
		return true
	}
	return false
}

// GeneralError returns a general service error
// this error message sent to the user is "Internal Server Error"
// the error passed is logged in the logger
func GeneralError(err error) error {
	if err == nil {
		err = errors.New("internal server error")
	}
	return &ServiceError{
		Category: CategoryGeneralError,
		Message:  "Internal Server Error",
		Err:      err,
	}
}

// ResourceNotFoundError returns an error with category ResourceNotFound
// the error message provided is returned to the user
// the err object provided is logged in logger
func ResourceNotFoundError(err error, message string) error {
	if err == nil {
		err = errors.New("resource not found:" + message)
	}
	return &ServiceError{
		Category: CategoryResourceNotFound,
		Message:  message,
		Err:      err,
	}
}

// BadRequestError returns an error with category DataError
// the error message provided is returned to the user
// the error object provided is logged in logger
func BadRequestError(err error, message string) error {
	if err == nil {
		err = errors.New("bad request:" + message)
	}
	return &ServiceError{
		Category: CategoryDataError,
		Message:  message,
		Err:      err,
	}
}

// ConflictError returns an error with category CategoryDataConflict
// the error message provided is returned to the user
// the error object provided is logged in logger
func ConflictError(err error, message string) error {
	if err == nil {
		err = errors.New("conflict")
	}
	return &ServiceError{
		Category: CategoryDataConflict,
		Message:  message,
		Err:      err,
	}
}

// ConflictWithDataError returns a conflict error carrying the existing
// record, so the caller receives the authoritative data instead of an
// opaque error.
func ConflictWithDataError(err error, message string, data any) error {
	if err == nil {
		err = errors.New("conflict")
	}
	return &ServiceError{
		Category: CategoryDataConflict,
		Message:  message,
		Data:     data,
		Err:      err,
	}
}

// UnavailableError returns an error with category CategoryUnavailable.
// Used when the storage layer is unreachable, so clients can distinguish
// a degraded service from a missing resource.
func UnavailableError(err error, message string) error {
	if err == nil {
		err = errors.New("service unavailable")
	}
	return &ServiceError{
		Category: CategoryUnavailable,
		Message:  message,
		Err:      err,
	}
}

// StatusCode returns the HTTP status code for the error category
func (err ServiceError) StatusCode() int {
	switch err.Category {
	case CategoryDataError:
		return http.StatusBadRequest
	case CategoryResourceNotFound:
		return http.StatusNotFound
	case CategoryDataConflict:
		return http.StatusConflict
	case CategoryUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
