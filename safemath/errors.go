package safemath

import "errors"

var (
	ErrArithmeticOverflow  = errors.New("ArithmeticOverflow")
	ErrArithmeticUnderflow = errors.New("ArithmeticUnderflow")
)
