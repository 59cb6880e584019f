package handler

import (
	"errors"

	"github.com/darematch/api/internal/model"
	"github.com/darematch/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrNotParticipant):
		pd := model.NewForbiddenError(err.Error())
		pd.Code = model.ErrCodeNotParticipant
		return pd
	case errors.Is(err, service.ErrNotRecipient),
		errors.Is(err, service.ErrNotRequestRecipient),
		errors.Is(err, service.ErrNotRequestSender):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrChallengeNotFound):
		return model.NewNotFoundError("challenge")
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRecipientNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrFriendRequestNotFound):
		return model.NewNotFoundError("friend request")
	case errors.Is(err, service.ErrFriendNotFound):
		return model.NewNotFoundError("friendship")
	case errors.Is(err, service.ErrFriendCodeNotFound):
		return model.NewNotFoundError("friend code")

	// ===== State Machine Errors → 409 =====
	case errors.Is(err, service.ErrInvalidTransition):
		return model.NewInvalidTransitionError(err.Error())

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrAlreadyFriends),
		errors.Is(err, service.ErrRequestAlreadyPending),
		errors.Is(err, service.ErrRequestNotPending):
		return model.NewConflictError(err.Error())

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrInvalidRange):
		pd := model.NewValidationError([]model.FieldError{{Field: "range", Message: err.Error()}})
		pd.Code = model.ErrCodeOutOfRange
		return pd
	case errors.Is(err, service.ErrNumberOutOfRange):
		pd := model.NewValidationError([]model.FieldError{{Field: "value", Message: err.Error()}})
		pd.Code = model.ErrCodeOutOfRange
		return pd
	case errors.Is(err, service.ErrRecipientRequired),
		errors.Is(err, service.ErrSelfChallenge),
		errors.Is(err, service.ErrChallengeNotFriends):
		return model.NewValidationError([]model.FieldError{{Field: "to_user", Message: err.Error()}})
	case errors.Is(err, service.ErrDescriptionRequired),
		errors.Is(err, service.ErrDescriptionTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "description", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidDirection):
		return model.NewValidationError([]model.FieldError{{Field: "direction", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidStatusFilter):
		return model.NewValidationError([]model.FieldError{{Field: "status", Message: err.Error()}})
	case errors.Is(err, service.ErrCannotFriendSelf),
		errors.Is(err, service.ErrFriendTargetRequired),
		errors.Is(err, service.ErrFriendTargetAmbiguous):
		return model.NewValidationError([]model.FieldError{{Field: "to_user", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidFriendCode):
		return model.NewValidationError([]model.FieldError{{Field: "friend_code", Message: err.Error()}})
	case errors.Is(err, service.ErrMessageTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "message", Message: err.Error()}})

	// ===== Contention Errors → 503 =====
	// The write raced other commits past the retry budget; the client can
	// simply retry.
	case errors.Is(err, service.ErrConcurrentUpdate),
		errors.Is(err, service.ErrFriendCodeExhausted):
		return model.NewTransientError(err.Error())

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails
// response with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}
