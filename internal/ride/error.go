package ride

import "errors"

var (
	ErrRideNotFound        = errors.New("ride not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrRideClosed          = errors.New("ride is not open for sign-up")
	ErrRideFull            = errors.New("ride is full")
	ErrInvalidInput        = errors.New("invalid input")
)
