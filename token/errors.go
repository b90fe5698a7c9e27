package token

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized          = errors.New("Unauthorized")
	ErrTransfersDisabled     = errors.New("TransfersDisabled")
	ErrInsufficientBalance   = errors.New("InsufficientBalance")
	ErrInsufficientAllowance = errors.New("InsufficientAllowance")
	ErrPolicyViolation       = errors.New("PolicyViolation")
	ErrTokenAlreadySet       = errors.New("TokenAlreadySet")
	ErrCannotBeZero          = errors.New("CannotBeZero")
	ErrInvalidUserAddress    = errors.New("InvalidUserAddress")
)

func InvalidAmountError(entity, value string) error {
	return fmt.Errorf("InvalidAmount for %s with value %s", entity, value)
}

type CustomError struct {
	Code    int
	Message string
	Err     error
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

func NewCustomError(code int, message string, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
