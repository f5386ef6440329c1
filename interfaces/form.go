package interfaces

import "strings"

// FormState holds the values entered into the registration form during one
// form-fill session. Values are stored exactly as entered; trimming only
// happens when presence is judged.
//
// The JSON tags are the storage representation used by account stores. Wire
// payloads are produced by the conventions in the api package instead.
type FormState struct {
	// Identity
	FirstName  string `json:"firstname"`
	MiddleName string `json:"middlename"`
	LastName   string `json:"lastname"`
	Suffix     string `json:"suffix"`

	// Address
	BlkRoom  string `json:"blk_room"`
	Building string `json:"building"`
	Street   string `json:"street"`
	Barangay string `json:"barangay"`
	Province string `json:"province"`
	ZipCode  string `json:"zip_code"`

	// Contact
	ContactNo    string `json:"contact_no"`
	TelNo        string `json:"tel_no"`
	EmailAddress string `json:"email"`

	// Identity document. SelectedID is a key of the ID type catalog.
	SelectedID string `json:"valid_id_type"`
	IDNumber   string `json:"valid_id_number"`
}

// Field names a single FormState field.
type Field string

const (
	FieldFirstName    Field = "first_name"
	FieldMiddleName   Field = "middle_name"
	FieldLastName     Field = "last_name"
	FieldSuffix       Field = "suffix"
	FieldBlkRoom      Field = "blk_no_or_room_no"
	FieldBuilding     Field = "building"
	FieldStreet       Field = "street"
	FieldBarangay     Field = "barangay"
	FieldProvince     Field = "province"
	FieldZipCode      Field = "zip_code"
	FieldContactNo    Field = "contact_no"
	FieldTelNo        Field = "tel_no"
	FieldEmailAddress Field = "email_address"
	FieldSelectedID   Field = "selected_id"
	FieldIDNumber     Field = "id_no"
)

// Fields lists every form field in display order.
var Fields = []Field{
	FieldFirstName,
	FieldMiddleName,
	FieldLastName,
	FieldSuffix,
	FieldBlkRoom,
	FieldBuilding,
	FieldStreet,
	FieldBarangay,
	FieldProvince,
	FieldZipCode,
	FieldContactNo,
	FieldTelNo,
	FieldEmailAddress,
	FieldSelectedID,
	FieldIDNumber,
}

// RequiredFields lists the fields that must be non-blank before a submission
// is attempted.
var RequiredFields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldBarangay,
	FieldProvince,
	FieldZipCode,
	FieldContactNo,
	FieldEmailAddress,
	FieldSelectedID,
	FieldIDNumber,
}

var fieldLabels = map[Field]string{
	FieldFirstName:    "First name",
	FieldMiddleName:   "Middle name",
	FieldLastName:     "Last name",
	FieldSuffix:       "Suffix",
	FieldBlkRoom:      "Blk no. / Room no.",
	FieldBuilding:     "Building",
	FieldStreet:       "Street",
	FieldBarangay:     "Barangay",
	FieldProvince:     "Province",
	FieldZipCode:      "Zip code",
	FieldContactNo:    "Contact no.",
	FieldTelNo:        "Tel no.",
	FieldEmailAddress: "Email address",
	FieldSelectedID:   "Valid ID",
	FieldIDNumber:     "ID number",
}

// Label returns the human readable field name.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// Required reports whether the field takes part in the presence check.
func (f Field) Required() bool {
	for _, r := range RequiredFields {
		if r == f {
			return true
		}
	}
	return false
}

// Valid reports whether f is one of the known form fields.
func (f Field) Valid() bool {
	_, ok := fieldLabels[f]
	return ok
}

// ParseField resolves a field from its canonical name.
func ParseField(name string) (Field, error) {
	f := Field(strings.TrimSpace(name))
	if !f.Valid() {
		return "", ErrUnknownField
	}
	return f, nil
}

func (s *FormState) ref(f Field) *string {
	switch f {
	case FieldFirstName:
		return &s.FirstName
	case FieldMiddleName:
		return &s.MiddleName
	case FieldLastName:
		return &s.LastName
	case FieldSuffix:
		return &s.Suffix
	case FieldBlkRoom:
		return &s.BlkRoom
	case FieldBuilding:
		return &s.Building
	case FieldStreet:
		return &s.Street
	case FieldBarangay:
		return &s.Barangay
	case FieldProvince:
		return &s.Province
	case FieldZipCode:
		return &s.ZipCode
	case FieldContactNo:
		return &s.ContactNo
	case FieldTelNo:
		return &s.TelNo
	case FieldEmailAddress:
		return &s.EmailAddress
	case FieldSelectedID:
		return &s.SelectedID
	case FieldIDNumber:
		return &s.IDNumber
	default:
		return nil
	}
}

// Get returns the value of a field, or an empty string for an unknown field.
func (s FormState) Get(f Field) string {
	if p := s.ref(f); p != nil {
		return *p
	}
	return ""
}

// Set stores value into the named field without any normalization.
func (s *FormState) Set(f Field, value string) error {
	p := s.ref(f)
	if p == nil {
		return ErrUnknownField
	}
	*p = value
	return nil
}

// MissingRequired returns the required fields that are empty or whitespace
// only, in RequiredFields order.
func (s FormState) MissingRequired() []Field {
	var missing []Field
	for _, f := range RequiredFields {
		if strings.TrimSpace(s.Get(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// IsEmpty reports whether every field is the empty string.
func (s FormState) IsEmpty() bool {
	return s == FormState{}
}

// FullName joins first, middle and last name the way account records expect
// it, omitting an empty middle name.
func (s FormState) FullName() string {
	name := s.FirstName
	if s.MiddleName != "" {
		name += " " + s.MiddleName
	}
	name += " " + s.LastName
	return strings.TrimSpace(name)
}
