package booking

// Room type options for a traveler.
const (
	RoomSingle = "Single"
	RoomShared = "Shared"
)

// Gender options for a traveler.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// Traveler is one person registered in a booking attempt. Dates are plain
// YYYY-MM-DD strings; the engine only ever checks them for emptiness, format
// validation happens outside this layer.
//
// ShareRoomWith is a weak reference: it names another traveler's FullName and
// goes stale if that traveler is renamed or removed.
type Traveler struct {
	FullName        string `json:"full_name"`
	DateOfBirth     string `json:"date_of_birth"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Nationality     string `json:"nationality"`
	Gender          string `json:"gender"`
	DateOfArrival   string `json:"date_of_arrival"`
	DateOfDeparture string `json:"date_of_departure"`
	RoomType        string `json:"room_type"`
	ShareRoomWith   string `json:"share_room_with,omitempty"`
}

// Field names an updatable traveler attribute. Values match the JSON tags.
type Field string

const (
	FieldFullName        Field = "full_name"
	FieldDateOfBirth     Field = "date_of_birth"
	FieldEmail           Field = "email"
	FieldPhone           Field = "phone"
	FieldNationality     Field = "nationality"
	FieldGender          Field = "gender"
	FieldDateOfArrival   Field = "date_of_arrival"
	FieldDateOfDeparture Field = "date_of_departure"
	FieldRoomType        Field = "room_type"
	FieldShareRoomWith   Field = "share_room_with"
)

func (t *Traveler) set(field Field, value string) error {
	switch field {
	case FieldFullName:
		t.FullName = value
	case FieldDateOfBirth:
		t.DateOfBirth = value
	case FieldEmail:
		t.Email = value
	case FieldPhone:
		t.Phone = value
	case FieldNationality:
		t.Nationality = value
	case FieldGender:
		t.Gender = value
	case FieldDateOfArrival:
		t.DateOfArrival = value
	case FieldDateOfDeparture:
		t.DateOfDeparture = value
	case FieldRoomType:
		t.RoomType = value
	case FieldShareRoomWith:
		t.ShareRoomWith = value
	default:
		return ErrUnknownField
	}
	return nil
}

func (t *Traveler) get(field Field) (string, error) {
	switch field {
	case FieldFullName:
		return t.FullName, nil
	case FieldDateOfBirth:
		return t.DateOfBirth, nil
	case FieldEmail:
		return t.Email, nil
	case FieldPhone:
		return t.Phone, nil
	case FieldNationality:
		return t.Nationality, nil
	case FieldGender:
		return t.Gender, nil
	case FieldDateOfArrival:
		return t.DateOfArrival, nil
	case FieldDateOfDeparture:
		return t.DateOfDeparture, nil
	case FieldRoomType:
		return t.RoomType, nil
	case FieldShareRoomWith:
		return t.ShareRoomWith, nil
	}
	return "", ErrUnknownField
}

// complete reports whether every required field is filled in. Presence only:
// no shape checks on emails, phones or dates.
func (t *Traveler) complete() bool {
	required := []string{
		t.FullName,
		t.DateOfBirth,
		t.Email,
		t.Phone,
		t.Nationality,
		t.Gender,
		t.DateOfArrival,
		t.DateOfDeparture,
		t.RoomType,
	}
	for _, v := range required {
		if v == "" {
			return false
		}
	}
	if t.RoomType == RoomShared && t.ShareRoomWith == "" {
		return false
	}
	return true
}
