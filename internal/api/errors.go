package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/dmo-api/internal/api/shared"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/service"
	"github.com/phrazzld/dmo-api/internal/service/auth"
	"github.com/phrazzld/dmo-api/internal/store"
)

// validationErrors are domain sentinels whose text is safe to show clients.
var validationErrors = []error{
	domain.ErrValidation,
	domain.ErrInvalidFormat,
	domain.ErrInvalidID,
	domain.ErrTaskTitleEmpty,
	domain.ErrTaskDateEmpty,
	domain.ErrInvalidQuadrant,
	domain.ErrInvalidTaskStatus,
	domain.ErrTemplateTitleEmpty,
	domain.ErrTemplateOrderIndex,
	domain.ErrTagNameEmpty,
	domain.ErrInvalidTagCategory,
	domain.ErrTopicNameEmpty,
	domain.ErrPostTitleEmpty,
	domain.ErrPostTopicEmpty,
	domain.ErrInvalidMood,
	domain.ErrGoalTitleEmpty,
	domain.ErrInvalidGoalCategory,
	domain.ErrBucketItemTitleEmpty,
	domain.ErrInvalidEmail,
	domain.ErrEmptyEmail,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	domain.ErrEmptyPassword,
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, service.ErrShareNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody),
		isValidationError(err):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Unknown
// errors get a generic message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var fieldErr *domain.ValidationError
	if errors.As(err, &fieldErr) {
		return capitalize(fieldErr.Error())
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Authentication required"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrTemplateNotFound):
		return "Template not found"
	case errors.Is(err, store.ErrTagNotFound):
		return "Tag not found"
	case errors.Is(err, store.ErrTopicNotFound):
		return "Journal topic not found"
	case errors.Is(err, store.ErrPostNotFound):
		return "Journal post not found"
	case errors.Is(err, store.ErrGoalNotFound):
		return "Goal not found"
	case errors.Is(err, store.ErrBucketItemNotFound):
		return "Bucketlist item not found"
	case errors.Is(err, service.ErrShareNotFound):
		return "Shared topic not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"

	case errors.Is(err, service.ErrInvalidInput):
		return capitalize(strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": "))

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case isValidationError(err):
		for _, target := range validationErrors {
			if errors.Is(err, target) {
				return capitalize(target.Error())
			}
		}

	case errors.Is(err, service.ErrUnavailable):
		return "This feature is not available right now"
	}

	return "An unexpected error occurred"
}

// HandleAPIError writes the mapped status and safe message for err and logs
// the redacted detail. A non-empty fallback replaces the generic message of
// a 500.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns validator output into a short message
// naming the first failing field.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				if len(fieldParts) >= 5 {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(fieldParts[3]))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "url":
		return "invalid URL"
	case "datetime":
		return "invalid date"
	default:
		return "validation failed"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
