package model

import "errors"

// Error taxonomy for the pipeline. Every failure wraps exactly one of
// these sentinels; callers classify with errors.Is. None are retried.
var (
	// ErrParse indicates malformed or unreadable input. Fatal to the
	// load; no partial result is retained.
	ErrParse = errors.New("parse error")

	// ErrValidation indicates bad built data: a NaN in a tensor, a
	// shape mismatch, or a malformed wire layout. Fatal; blocks
	// training and evaluation.
	ErrValidation = errors.New("validation error")

	// ErrState indicates an operation requested before its
	// prerequisite step, e.g. evaluating before a dataset exists.
	ErrState = errors.New("state error")

	// ErrComputation indicates an unexpected failure inside importance
	// or breakout analysis. Degrades to an empty result locally; the
	// rest of the evaluation still completes.
	ErrComputation = errors.New("computation error")
)
