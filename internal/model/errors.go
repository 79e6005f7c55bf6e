package model

import "errors"

var (
	// ErrInvalidParameter is returned for non-positive T, N or M, negative sigma,
	// or non-finite inputs.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidPrice is returned for non-positive or non-numeric historical prices.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidRecord is returned for historical records without a usable timestamp.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInsufficientData is returned when too few observations remain to estimate volatility.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNumericOverflow is returned when a simulation produces a non-finite value.
	ErrNumericOverflow = errors.New("numeric overflow")
)
