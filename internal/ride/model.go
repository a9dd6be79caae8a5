package ride

import "time"

type Ride struct {
	ID              string    `json:"id"`
	Title           string    `json:"title" validate:"required,max=255"`
	Date            time.Time `json:"date" validate:"required"`
	StartLocation   string    `json:"startLocation" validate:"max=255"`
	Distance        int       `json:"distance" validate:"gte=0"`
	Description     string    `json:"description"`
	Active          bool      `json:"active"`
	MaxParticipants int       `json:"maxParticipants" validate:"gte=0"`
}

type Participant struct {
	ID        string    `json:"id"`
	RideID    string    `json:"rideId"`
	Name      string    `json:"name" validate:"required,max=255"`
	Email     string    `json:"email" validate:"omitempty,email"`
	Phone     string    `json:"phone" validate:"max=50"`
	CreatedAt time.Time `json:"createdAt"`
}

// RideWithCount is a ride plus its current number of sign-ups.
type RideWithCount struct {
	Ride
	ParticipantCount int `json:"participantCount"`
}

// acceptsSignup checks a ride against its current participant count.
// A MaxParticipants of zero means unlimited.
func acceptsSignup(r Ride, count int) error {
	if !r.Active {
		return ErrRideClosed
	}
	if r.MaxParticipants > 0 && count >= r.MaxParticipants {
		return ErrRideFull
	}
	return nil
}
