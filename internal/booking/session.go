// Package booking implements the multi-traveler booking configuration engine:
// traveler list sizing with lead-traveler autofill, room-sharing eligibility,
// derived price quotes and the submission state machine.
//
// A Session is not safe for concurrent use; the Registry serializes access.
package booking

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/alex-user-go/treks/internal/catalog"
)

// MaxTravelers bounds the traveler list for one booking.
const MaxTravelers = 20

// State is the booking flow state of a session.
type State string

const (
	StateEditing             State = "editing"
	StatePendingConfirmation State = "pending_confirmation"
	StateSubmitted           State = "submitted"
)

var (
	// ErrIncomplete is the single generic validation failure surfaced at
	// submission time; the engine reports no per-field detail.
	ErrIncomplete = errors.New("fill all required fields")

	// ErrInvalidState is returned when an operation does not apply to the
	// session's current state.
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrTravelerIndex is returned for an out-of-range traveler index.
	ErrTravelerIndex = errors.New("traveler index out of range")

	// ErrUnknownField is returned for an unrecognized traveler field name.
	ErrUnknownField = errors.New("unknown traveler field")
)

// Session holds all state for one booking attempt against one package.
// The package record is fetched once at session creation and is immutable
// for the session's lifetime.
type Session struct {
	ID             string
	Package        *catalog.Package
	Travelers      []Traveler
	AdditionalInfo string
	State          State
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BookingRequest is the validated output handed to the submission collaborator.
type BookingRequest struct {
	PackageID      string     `json:"package_id"`
	Travelers      []Traveler `json:"travelers"`
	AdditionalInfo string     `json:"additional_info,omitempty"`
}

// NewSession starts a booking session with a single blank traveler.
func NewSession(pkg *catalog.Package) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New().String(),
		Package:   pkg,
		Travelers: []Traveler{{RoomType: RoomSingle}},
		State:     StateEditing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetTravelerCount resizes the traveler list. The raw value is leniently
// coerced to an int (non-numeric input becomes 0) and clamped to
// [1, MaxTravelers]; out-of-range counts are clamped, never rejected.
//
// Entries below the new length are kept verbatim. New entries inherit
// nationality, arrival and departure dates from the current lead traveler
// and default to a Single room; everything else starts empty.
func (s *Session) SetTravelerCount(raw any) {
	n := cast.ToInt(raw)
	if n < 1 {
		n = 1
	}
	if n > MaxTravelers {
		n = MaxTravelers
	}

	switch {
	case n < len(s.Travelers):
		s.Travelers = s.Travelers[:n]
	case n > len(s.Travelers):
		lead := s.Travelers[0]
		for i := len(s.Travelers); i < n; i++ {
			s.Travelers = append(s.Travelers, Traveler{
				Nationality:     lead.Nationality,
				DateOfArrival:   lead.DateOfArrival,
				DateOfDeparture: lead.DateOfDeparture,
				RoomType:        RoomSingle,
			})
		}
	}
	s.touch()
}

// UpdateTravelerField sets one field on one traveler.
//
// Lead-traveler edits to nationality, arrival or departure propagate to every
// other traveler whose value for that field is still empty. Propagation fires
// only from index 0, only for those three fields, and never overwrites a
// non-empty value.
func (s *Session) UpdateTravelerField(index int, field Field, value string) error {
	if index < 0 || index >= len(s.Travelers) {
		return ErrTravelerIndex
	}
	if err := s.Travelers[index].set(field, value); err != nil {
		return err
	}

	if index == 0 && isAutofillField(field) {
		for i := 1; i < len(s.Travelers); i++ {
			current, _ := s.Travelers[i].get(field)
			if current == "" {
				_ = s.Travelers[i].set(field, value)
			}
		}
	}

	s.touch()
	return nil
}

func isAutofillField(field Field) bool {
	return field == FieldNationality || field == FieldDateOfArrival || field == FieldDateOfDeparture
}

// SetAdditionalInfo records free-form notes attached to the booking request.
func (s *Session) SetAdditionalInfo(info string) {
	s.AdditionalInfo = info
	s.touch()
}

// AvailableRoommates returns the names traveler index may share a room with,
// in traveler-list order.
//
// The paired set is inferred fresh on every call, never stored: any traveler
// with a Shared room and a non-empty ShareRoomWith marks both endpoints of
// that reference as paired, and paired names are excluded from the result,
// along with the traveler itself and unnamed travelers.
func (s *Session) AvailableRoommates(index int) ([]string, error) {
	if index < 0 || index >= len(s.Travelers) {
		return nil, ErrTravelerIndex
	}

	paired := make(map[string]struct{})
	for _, t := range s.Travelers {
		if t.RoomType == RoomShared && t.ShareRoomWith != "" {
			paired[t.ShareRoomWith] = struct{}{}
			paired[t.FullName] = struct{}{}
		}
	}

	names := make([]string, 0, len(s.Travelers)-1)
	for i, t := range s.Travelers {
		if i == index || t.FullName == "" {
			continue
		}
		if _, ok := paired[t.FullName]; ok {
			continue
		}
		names = append(names, t.FullName)
	}
	return names, nil
}

// Quote derives the itemized price breakdown for the current traveler list.
func (s *Session) Quote() Quote {
	return ComputeQuote(s.Package, s.Travelers)
}

// Validate checks that every traveler is complete. Presence only; on any gap
// it returns ErrIncomplete with no per-field detail.
func (s *Session) Validate() error {
	for i := range s.Travelers {
		if !s.Travelers[i].complete() {
			return ErrIncomplete
		}
	}
	return nil
}

// Submit validates the traveler list and moves the session from Editing to
// PendingConfirmation.
func (s *Session) Submit() error {
	if s.State != StateEditing {
		return ErrInvalidState
	}
	if err := s.Validate(); err != nil {
		return err
	}
	s.State = StatePendingConfirmation
	s.touch()
	return nil
}

// Confirm moves the session from PendingConfirmation to Submitted and returns
// the booking request for the submission collaborator. If persisting the
// request fails, the caller must Reopen the session.
func (s *Session) Confirm() (BookingRequest, error) {
	if s.State != StatePendingConfirmation {
		return BookingRequest{}, ErrInvalidState
	}
	s.State = StateSubmitted
	s.touch()

	travelers := make([]Traveler, len(s.Travelers))
	copy(travelers, s.Travelers)

	return BookingRequest{
		PackageID:      s.Package.ID,
		Travelers:      travelers,
		AdditionalInfo: s.AdditionalInfo,
	}, nil
}

// Cancel returns a pending session to Editing.
func (s *Session) Cancel() error {
	if s.State != StatePendingConfirmation {
		return ErrInvalidState
	}
	s.State = StateEditing
	s.touch()
	return nil
}

// Reopen forces the session back to Editing after a failed submission.
func (s *Session) Reopen() {
	s.State = StateEditing
	s.touch()
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
