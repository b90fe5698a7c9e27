package sale

import (
	"errors"
	"fmt"
)

var (
	ErrPolicyViolation       = errors.New("PolicyViolation")
	ErrAlreadyReleased       = errors.New("AlreadyReleased")
	ErrSaleCapacityExhausted = errors.New("SaleCapacityExhausted")
	ErrNotWhitelisted        = errors.New("NotWhitelisted")
	ErrCannotBeZero          = errors.New("CannotBeZero")
	ErrNoAdvisors            = errors.New("NoAdvisors")
	ErrTokenAlreadySet       = errors.New("TokenAlreadySet")
	ErrInvalidUserAddress    = errors.New("InvalidUserAddress")
)

func InvalidAmountError(entity, value string) error {
	return fmt.Errorf("InvalidAmount for %s with value %s", entity, value)
}

func ArraysLengthMismatchError(length1, length2 int) error {
	return fmt.Errorf("ArraysLengthMismatch: length1: %d, length2: %d", length1, length2)
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
