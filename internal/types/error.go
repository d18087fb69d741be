// error.go
//
// DD Property listing API
// Copyright (c) 2026 DD Property Co., Ltd.
//
// This file is part of ddproperty-api.
// ddproperty-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ddproperty-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ddproperty-api.
// If not, see <https://www.gnu.org/licenses/>.

package types

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Error types reported in the response envelope.
const (
	ErrTypeValidation   = "validation"
	ErrTypeUnauthorized = "unauthorized"
	ErrTypeForbidden    = "forbidden"
	ErrTypeNotFound     = "not_found"
	ErrTypeConflict     = "conflict"
	ErrTypeInternal     = "internal"
)

// APIError is a classified error carrying the HTTP status it maps to.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	cause      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.StatusCode, e.Message, e.Type)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *APIError) Unwrap() error {
	return e.cause
}

// Stack renders the stack trace recorded with the cause, if any.
func (e *APIError) Stack() string {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	var st stackTracer
	if errors.As(e.cause, &st) {
		return fmt.Sprintf("%+v", st.StackTrace())
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return ""
}

// NewAPIError builds an APIError with no underlying cause.
func NewAPIError(status int, message, errType string) *APIError {
	return &APIError{StatusCode: status, Message: message, Type: errType}
}

func BadRequest(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, message, ErrTypeValidation)
}

func Unauthorized(message string) *APIError {
	return NewAPIError(http.StatusUnauthorized, message, ErrTypeUnauthorized)
}

func Forbidden(message string) *APIError {
	return NewAPIError(http.StatusForbidden, message, ErrTypeForbidden)
}

func NotFound(message string) *APIError {
	return NewAPIError(http.StatusNotFound, message, ErrTypeNotFound)
}

func Conflict(message string) *APIError {
	return NewAPIError(http.StatusConflict, message, ErrTypeConflict)
}

// Internal wraps err as an unclassified 500, recording a stack at the wrap point.
func Internal(message string, err error) *APIError {
	e := NewAPIError(http.StatusInternalServerError, message, ErrTypeInternal)
	if err != nil {
		e.cause = errors.WithStack(err)
	}
	return e
}

// Wrap returns err unchanged when it is already classified, otherwise an
// internal error with the given message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(message, err)
}

// FromStorage classifies an ORM error. Callers open the database with
// TranslateError so driver specific codes arrive as gorm sentinel errors.
// subject names the entity, e.g. "Property with ID 4".
func FromStorage(err error, subject string) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var e *APIError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		e = NotFound(subject + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		e = Conflict(subject + " already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		e = BadRequest(subject + " references a record that does not exist")
	case errors.Is(err, gorm.ErrCheckConstraintViolated), errors.Is(err, gorm.ErrInvalidValue):
		e = BadRequest(subject + " contains an invalid value")
	default:
		return Internal("Error processing "+subject, err)
	}
	e.cause = errors.WithStack(err)
	return e
}

// StatusOf reports the HTTP status for any error.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return http.StatusInternalServerError
}
