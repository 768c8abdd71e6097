package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-user-go/treks/internal/booking"
	"github.com/alex-user-go/treks/internal/catalog"
)

func testPackage(price float64) *catalog.Package {
	return &catalog.Package{
		ID:         "ebc-14",
		Title:      "Everest Base Camp Trek",
		Price:      price,
		Duration:   14,
		Altitude:   5364,
		Difficulty: catalog.DifficultyTough,
	}
}

func fillTraveler(t *testing.T, s *booking.Session, index int, name string) {
	t.Helper()
	fields := map[booking.Field]string{
		booking.FieldFullName:        name,
		booking.FieldDateOfBirth:     "1990-04-12",
		booking.FieldEmail:           name + "@example.com",
		booking.FieldPhone:           "+9779812345678",
		booking.FieldNationality:     "Nepal",
		booking.FieldGender:          booking.GenderOther,
		booking.FieldDateOfArrival:   "2025-10-01",
		booking.FieldDateOfDeparture: "2025-10-15",
		booking.FieldRoomType:        booking.RoomSingle,
	}
	for field, value := range fields {
		require.NoError(t, s.UpdateTravelerField(index, field, value))
	}
}

func TestSession_SetTravelerCount_Clamping(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want int
	}{
		{name: "in range", raw: 5, want: 5},
		{name: "lower bound", raw: 1, want: 1},
		{name: "upper bound", raw: 20, want: 20},
		{name: "below range clamps to one", raw: 0, want: 1},
		{name: "negative clamps to one", raw: -3, want: 1},
		{name: "above range clamps to max", raw: 25, want: 20},
		{name: "numeric string", raw: "7", want: 7},
		{name: "json number", raw: float64(4), want: 4},
		{name: "non-numeric defaults to one", raw: "lots", want: 1},
		{name: "nil defaults to one", raw: nil, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := booking.NewSession(testPackage(800))
			s.SetTravelerCount(tt.raw)
			assert.Len(t, s.Travelers, tt.want)
		})
	}
}

func TestSession_SetTravelerCount_PreservesPrefix(t *testing.T) {
	s := booking.NewSession(testPackage(800))
	s.SetTravelerCount(3)
	require.NoError(t, s.UpdateTravelerField(1, booking.FieldFullName, "Mira"))
	require.NoError(t, s.UpdateTravelerField(2, booking.FieldFullName, "Sonam"))

	s.SetTravelerCount(2)
	require.Len(t, s.Travelers, 2)
	assert.Equal(t, "Mira", s.Travelers[1].FullName)

	// Growing again creates a fresh blank entry, not the removed one
	s.SetTravelerCount(3)
	require.Len(t, s.Travelers, 3)
	assert.Equal(t, "Mira", s.Travelers[1].FullName)
	assert.Empty(t, s.Travelers[2].FullName)

	// Resizing to the current length is a no-op on the prefix
	s.SetTravelerCount(3)
	assert.Equal(t, "Mira", s.Travelers[1].FullName)
}

func TestSession_SetTravelerCount_AutofillFromLead(t *testing.T) {
	s := booking.NewSession(testPackage(800))
	require.NoError(t, s.UpdateTravelerField(0, booking.FieldNationality, "Nepal"))
	require.NoError(t, s.UpdateTravelerField(0, booking.FieldDateOfArrival, "2025-10-01"))

	s.SetTravelerCount(3)
	for i := 1; i < 3; i++ {
		assert.Equal(t, "Nepal", s.Travelers[i].Nationality, "traveler %d", i)
		assert.Equal(t, "2025-10-01", s.Travelers[i].DateOfArrival, "traveler %d", i)
		assert.Empty(t, s.Travelers[i].DateOfDeparture, "traveler %d", i)
		assert.Equal(t, booking.RoomSingle, s.Travelers[i].RoomType, "traveler %d", i)
		assert.Empty(t, s.Travelers[i].FullName, "traveler %d", i)
	}
}

func TestSession_UpdateTravelerField_Propagation(t *testing.T) {
	s := booking.NewSession(testPackage(800))
	s.SetTravelerCount(3)

	// Lead edit fills empty fields on the others
	require.NoError(t, s.UpdateTravelerField(0, booking.FieldNationality, "Nepal"))
	assert.Equal(t, "Nepal", s.Travelers[1].Nationality)
	assert.Equal(t, "Nepal", s.Travelers[2].Nationality)

	// A later lead edit must not overwrite non-empty values
	require.NoError(t, s.UpdateTravelerField(0, booking.FieldNationality, "Canada"))
	assert.Equal(t, "Canada", s.Travelers[0].Nationality)
	assert.Equal(t, "Nepal", s.Travelers[1].Nationality)
	assert.Equal(t, "Nepal", s.Travelers[2].Nationality)

	// Non-lead edits never propagate
	require.NoError(t, s.UpdateTravelerField(1, booking.FieldDateOfArrival, "2025-11-05"))
	assert.Empty(t, s.Travelers[0].DateOfArrival)
	assert.Empty(t, s.Travelers[2].DateOfArrival)

	// Lead edit skips the traveler that already has a value
	require.NoError(t, s.UpdateTravelerField(0, booking.FieldDateOfArrival, "2025-10-01"))
	assert.Equal(t, "2025-11-05", s.Travelers[1].DateOfArrival)
	assert.Equal(t, "2025-10-01", s.Travelers[2].DateOfArrival)

	// Non-autofill fields never propagate, even from the lead
	require.NoError(t, s.UpdateTravelerField(0, booking.FieldEmail, "lead@example.com"))
	assert.Empty(t, s.Travelers[1].Email)
}

func TestSession_UpdateTravelerField_Errors(t *testing.T) {
	s := booking.NewSession(testPackage(800))

	err := s.UpdateTravelerField(1, booking.FieldFullName, "x")
	assert.ErrorIs(t, err, booking.ErrTravelerIndex)

	err = s.UpdateTravelerField(-1, booking.FieldFullName, "x")
	assert.ErrorIs(t, err, booking.ErrTravelerIndex)

	err = s.UpdateTravelerField(0, booking.Field("shoe_size"), "43")
	assert.ErrorIs(t, err, booking.ErrUnknownField)
}

func TestSession_AvailableRoommates(t *testing.T) {
	s := booking.NewSession(testPackage(800))
	s.SetTravelerCount(5)
	names := []string{"Asha", "Bikram", "Chandra", "Dolma", ""}
	for i, name := range names {
		require.NoError(t, s.UpdateTravelerField(i, booking.FieldFullName, name))
	}

	// No pairs yet: everyone named except self
	got, err := s.AvailableRoommates(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bikram", "Chandra", "Dolma"}, got)

	// Pair Bikram with Chandra; both drop out everywhere
	require.NoError(t, s.UpdateTravelerField(1, booking.FieldRoomType, booking.RoomShared))
	require.NoError(t, s.UpdateTravelerField(1, booking.FieldShareRoomWith, "Chandra"))

	got, err = s.AvailableRoommates(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dolma"}, got)

	got, err = s.AvailableRoommates(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Asha"}, got)

	// The chooser's own list excludes its partner too: the paired set is
	// symmetric and applied uniformly
	got, err = s.AvailableRoommates(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Asha", "Dolma"}, got)

	_, err = s.AvailableRoommates(5)
	assert.ErrorIs(t, err, booking.ErrTravelerIndex)
}

func TestSession_AvailableRoommates_NeverIncludesSelfOrEmpty(t *testing.T) {
	s := booking.NewSession(testPackage(800))
	s.SetTravelerCount(3)
	require.NoError(t, s.UpdateTravelerField(0, booking.FieldFullName, "Asha"))
	// Travelers 1 and 2 stay unnamed

	got, err := s.AvailableRoommates(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Asha"}, got)

	got, err = s.AvailableRoommates(0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSession_Validate(t *testing.T) {
	s := booking.NewSession(testPackage(800))
	assert.ErrorIs(t, s.Validate(), booking.ErrIncomplete)

	fillTraveler(t, s, 0, "Asha")
	assert.NoError(t, s.Validate())

	// Shared room without a roommate reference fails
	require.NoError(t, s.UpdateTravelerField(0, booking.FieldRoomType, booking.RoomShared))
	assert.ErrorIs(t, s.Validate(), booking.ErrIncomplete)

	require.NoError(t, s.UpdateTravelerField(0, booking.FieldShareRoomWith, "Bikram"))
	assert.NoError(t, s.Validate())

	// Any single empty field fails the whole list
	s.SetTravelerCount(2)
	assert.ErrorIs(t, s.Validate(), booking.ErrIncomplete)
}

func TestSession_StateMachine(t *testing.T) {
	s := booking.NewSession(testPackage(500))
	fillTraveler(t, s, 0, "Asha")

	// Single traveler, Single room, price 500: quote total 600
	assert.Equal(t, float64(600), s.Quote().Total)

	// Incomplete submit keeps the session editing
	require.NoError(t, s.UpdateTravelerField(0, booking.FieldEmail, ""))
	assert.ErrorIs(t, s.Submit(), booking.ErrIncomplete)
	assert.Equal(t, booking.StateEditing, s.State)

	require.NoError(t, s.UpdateTravelerField(0, booking.FieldEmail, "asha@example.com"))
	require.NoError(t, s.Submit())
	assert.Equal(t, booking.StatePendingConfirmation, s.State)

	// No double submit while pending
	assert.ErrorIs(t, s.Submit(), booking.ErrInvalidState)

	// Cancel returns to editing
	require.NoError(t, s.Cancel())
	assert.Equal(t, booking.StateEditing, s.State)
	assert.ErrorIs(t, s.Cancel(), booking.ErrInvalidState)

	// Submit again and confirm
	require.NoError(t, s.Submit())
	s.SetAdditionalInfo("vegetarian meals")
	request, err := s.Confirm()
	require.NoError(t, err)
	assert.Equal(t, booking.StateSubmitted, s.State)
	assert.Equal(t, "ebc-14", request.PackageID)
	assert.Equal(t, "vegetarian meals", request.AdditionalInfo)
	require.Len(t, request.Travelers, 1)
	assert.Equal(t, "Asha", request.Travelers[0].FullName)

	// A failed submission reopens the session
	s.Reopen()
	assert.Equal(t, booking.StateEditing, s.State)

	// Confirm only applies to pending sessions
	_, err = s.Confirm()
	assert.ErrorIs(t, err, booking.ErrInvalidState)
}

func TestSession_ConfirmCopiesTravelers(t *testing.T) {
	s := booking.NewSession(testPackage(500))
	fillTraveler(t, s, 0, "Asha")
	require.NoError(t, s.Submit())

	request, err := s.Confirm()
	require.NoError(t, err)

	require.NoError(t, s.UpdateTravelerField(0, booking.FieldFullName, "Renamed"))
	assert.Equal(t, "Asha", request.Travelers[0].FullName)
}
