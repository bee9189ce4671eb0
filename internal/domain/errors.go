package domain

import (
	"errors"
	"fmt"
	"net/http"
)

type NotFoundError struct {
	Resource string
	ID       any
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource == "":
		return "not found"
	case e.ID != nil:
		return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
	default:
		return fmt.Sprintf("%s not found", e.Resource)
	}
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Msg string
	Err error
}

func (e ConflictError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "conflict"
}

func (e ConflictError) Unwrap() error { return e.Err }

// InvalidPromoError is returned for promo codes missing from the promo table.
// It is a user-facing message, never a fatal condition.
type InvalidPromoError struct {
	Code string
}

func (e InvalidPromoError) Error() string { return "Invalid promo code" }

// FetchError wraps a failed call to the upstream catalog. Status is the HTTP
// status code, or 0 when the request never got a response.
type FetchError struct {
	Op     string
	Status int
	Err    error
}

func (e FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("HTTP error! status: %d", e.Status)
	}
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %v", e.Op, e.Err)
		}
		return e.Err.Error()
	}
	return "fetch failed"
}

func (e FetchError) Unwrap() error { return e.Err }

// Unauthorized reports whether the upstream rejected the credentials.
func (e FetchError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "unauthorized"
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInvalidPromo(err error) bool {
	var target InvalidPromoError
	return errors.As(err, &target)
}

func IsFetch(err error) bool {
	var target FetchError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	if errors.As(err, &target) {
		return true
	}
	var fe FetchError
	return errors.As(err, &fe) && fe.Unauthorized()
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
