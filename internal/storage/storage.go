// Package storage defines the persistence records and errors shared by
// storage backends.
package storage

import (
	"errors"
	"time"

	"github.com/alex-user-go/treks/internal/booking"
)

// Booking is one confirmed booking as persisted.
type Booking struct {
	ID             string
	PackageID      string
	Travelers      []booking.Traveler
	AdditionalInfo string
	Status         string
	CreatedAt      time.Time
}

// Booking statuses.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// ErrBookingNotFound is returned when no booking exists for an ID.
var ErrBookingNotFound = errors.New("booking not found")

// ErrAlreadyExists is returned on a duplicate insert.
var ErrAlreadyExists = errors.New("record already exists")
