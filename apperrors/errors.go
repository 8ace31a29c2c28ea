package apperrors

import (
	"errors"
	"fmt"

	"hotel-ops/models"
)

// Kind is the coarse class of a failure, used by transports to pick a status code.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindDependency:
		return "dependency"
	}
	return "unknown"
}

type ErrorCode string

const (
	// Validation
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidDates ErrorCode = "INVALID_DATES"
	ErrCodeInvalidState ErrorCode = "INVALID_STATUS"

	// Not found
	ErrCodeRoomNotFound        ErrorCode = "ROOM_NOT_FOUND"
	ErrCodeGuestNotFound       ErrorCode = "GUEST_NOT_FOUND"
	ErrCodeReservationNotFound ErrorCode = "RESERVATION_NOT_FOUND"

	// Conflict
	ErrCodeDateConflict      ErrorCode = "DATE_CONFLICT"
	ErrCodeRoomNotBookable   ErrorCode = "ROOM_NOT_BOOKABLE"
	ErrCodeRoomInUse         ErrorCode = "ROOM_IN_USE"
	ErrCodeDuplicateRoom     ErrorCode = "DUPLICATE_ROOM_NUMBER"
	ErrCodeDuplicateEmail    ErrorCode = "DUPLICATE_GUEST_EMAIL"
	ErrCodeDuplicateCPF      ErrorCode = "DUPLICATE_GUEST_CPF"
	ErrCodeDuplicate         ErrorCode = "DUPLICATE_VALUE"
	ErrCodeIllegalTransition ErrorCode = "ILLEGAL_TRANSITION"
	ErrCodeAlreadyOccupied   ErrorCode = "ROOM_ALREADY_OCCUPIED"
	ErrCodeNoActiveStay      ErrorCode = "NO_ACTIVE_STAY"

	// Dependency
	ErrCodeDependency ErrorCode = "DEPENDENCY_FAILURE"
)

// AppError is the error every service operation reports.
type AppError struct {
	Kind    Kind
	Code    ErrorCode
	Message string
	Err     error

	// Set for date conflicts so callers can show who holds the room.
	Conflict *models.ConflictResult
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func New(kind Kind, code ErrorCode, message string, err error) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(code ErrorCode, message string) *AppError {
	return New(KindValidation, code, message, nil)
}

func NotFound(code ErrorCode, message string) *AppError {
	return New(KindNotFound, code, message, nil)
}

func Conflict(code ErrorCode, message string) *AppError {
	return New(KindConflict, code, message, nil)
}

func Dependency(message string, err error) *AppError {
	return New(KindDependency, ErrCodeDependency, message, err)
}

// DateConflict names the guest and range that block a new stay.
func DateConflict(result models.ConflictResult) *AppError {
	msg := "room already has a reservation for the requested dates"
	if result.Range != nil {
		msg = fmt.Sprintf("date conflict: room reserved by %s from %s to %s",
			result.GuestName, result.Range.CheckIn, result.Range.CheckOut)
	}
	e := Conflict(ErrCodeDateConflict, msg)
	e.Conflict = &result
	return e
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err; anything that is not an AppError is a dependency failure.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindDependency
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
