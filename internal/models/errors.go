package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned at the API boundary.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodePermissionDenied  = "PERMISSION_DENIED"
	CodeDuplicateIdentity = "DUPLICATE_IDENTITY"
	CodeInvalidCreds      = "INVALID_CREDENTIALS"
	CodeInvalidStatus     = "INVALID_STATUS"
	CodeStoreUnavailable  = "STORE_UNAVAILABLE"
	CodeInternal          = "INTERNAL_ERROR"
)

// Permission-denied reason subcodes.
const (
	ReasonSelfDeletion   = "self_deletion"
	ReasonRoleProtection = "role_protection"
	ReasonNotOwner       = "not_owner"
	ReasonRoleChange     = "role_change_restricted"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Reason  string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError reports a missing resource by id.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

// NewValidationError reports a field-level validation failure.
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewPermissionDeniedError reports an authorization denial with a reason subcode.
func NewPermissionDeniedError(reason, message string) *AppError {
	return &AppError{
		Code:    CodePermissionDenied,
		Reason:  reason,
		Message: message,
	}
}

// NewDuplicateIdentityError reports a username/email uniqueness collision.
func NewDuplicateIdentityError(field string) *AppError {
	return &AppError{
		Code:    CodeDuplicateIdentity,
		Message: fmt.Sprintf("A user with this %s already exists", field),
	}
}

// NewInvalidCredentialsError reports an authentication failure without
// revealing whether the account exists.
func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Code:    CodeInvalidCreds,
		Message: "Invalid credentials",
	}
}

// NewInvalidStatusError reports a status value outside the enumerated set.
func NewInvalidStatusError(status string) *AppError {
	return &AppError{
		Code:    CodeInvalidStatus,
		Message: fmt.Sprintf("Invalid status %q", status),
	}
}

// NewStoreUnavailableError reports a store timeout or unavailability; the
// caller may safely retry.
func NewStoreUnavailableError(err error) *AppError {
	return &AppError{
		Code:    CodeStoreUnavailable,
		Message: "Storage temporarily unavailable",
		Err:     err,
	}
}

// NewInternalError wraps an unexpected fault.
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// httpStatus maps an error code to the HTTP status used at the boundary.
func httpStatus(code string) int {
	switch code {
	case CodeValidation, CodeInvalidStatus:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodePermissionDenied:
		return fiber.StatusForbidden
	case CodeDuplicateIdentity:
		return fiber.StatusConflict
	case CodeInvalidCreds:
		return fiber.StatusUnauthorized
	case CodeStoreUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes a standardized error response. AppError values map
// to their taxonomy status; anything else is treated as an internal fault.
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		resp := ErrorResponse{
			Error:  appErr.Message,
			Code:   appErr.Code,
			Reason: appErr.Reason,
		}
		if appErr.Err != nil && appErr.Code == CodeInternal {
			resp.Details = appErr.Err.Error()
		}
		return c.Status(httpStatus(appErr.Code)).JSON(resp)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: err.Error(),
	})
}
