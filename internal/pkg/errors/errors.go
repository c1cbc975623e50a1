package errors

import "errors"

var (
	// ErrSessionNotFound is returned for operations against an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoActiveStudySession is returned when completing a study session for a
	// record with no open study session to close.
	ErrNoActiveStudySession = errors.New("no active study session")
	// ErrEmptyResult is returned when a transcoder produced no usable text.
	ErrEmptyResult = errors.New("empty result")
	// ErrNoUsableInput is returned when a processing request carries no text-bearing input.
	ErrNoUsableInput = errors.New("no usable input provided")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
)
