package roadnet

import "errors"

var (
	// ErrInvalidInput is returned when a caller supplies arguments an operation cannot work with
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedReference is returned when a map declares a geo reference that cannot be parsed
	ErrMalformedReference = errors.New("malformed geo reference")

	// ErrExternalService wraps failures and empty results from the road network or route planner
	ErrExternalService = errors.New("road network service failure")

	// ErrUnreachable is returned when a bounded walk runs out of steps before its goal
	ErrUnreachable = errors.New("goal unreachable within step limit")
)
