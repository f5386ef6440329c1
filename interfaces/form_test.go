package interfaces

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormState_SetGet(t *testing.T) {
	var s FormState
	for i, f := range Fields {
		value := string(f) + "-value"
		if i%2 == 0 {
			value = "  " + value + "  "
		}
		require.NoError(t, s.Set(f, value))
		assert.Equal(t, value, s.Get(f), "field %s", f)
	}

	err := s.Set(Field("nickname"), "x")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, "", s.Get(Field("nickname")))
}

func TestFormState_MissingRequired(t *testing.T) {
	var s FormState
	assert.Equal(t, RequiredFields, s.MissingRequired())

	for _, f := range RequiredFields {
		require.NoError(t, s.Set(f, "x"))
	}
	assert.Empty(t, s.MissingRequired())

	s.Province = " \t "
	s.MiddleName = ""
	assert.Equal(t, []Field{FieldProvince}, s.MissingRequired())
	// Trimming is only used for the check.
	assert.Equal(t, " \t ", s.Province)
}

func TestField_Required(t *testing.T) {
	optional := map[Field]bool{
		FieldMiddleName: true,
		FieldSuffix:     true,
		FieldBlkRoom:    true,
		FieldBuilding:   true,
		FieldStreet:     true,
		FieldTelNo:      true,
	}
	for _, f := range Fields {
		assert.Equal(t, !optional[f], f.Required(), "field %s", f)
		assert.NotEmpty(t, f.Label())
	}
}

func TestParseField(t *testing.T) {
	f, err := ParseField(" zip_code ")
	require.NoError(t, err)
	assert.Equal(t, FieldZipCode, f)

	_, err = ParseField("zipcode")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestFormState_FullName(t *testing.T) {
	tests := []struct {
		name  string
		state FormState
		want  string
	}{
		{"first and last", FormState{FirstName: "Juan", LastName: "Dela Cruz"}, "Juan Dela Cruz"},
		{"with middle", FormState{FirstName: "Juan", MiddleName: "Santos", LastName: "Dela Cruz"}, "Juan Santos Dela Cruz"},
		{"empty", FormState{}, ""},
		{"only last", FormState{LastName: "Reyes"}, "Reyes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.FullName())
		})
	}
}

func TestFormState_IsEmpty(t *testing.T) {
	assert.True(t, FormState{}.IsEmpty())
	assert.False(t, FormState{TelNo: "1"}.IsEmpty())
}

func TestNewStorageBackendLocation(t *testing.T) {
	loc, err := NewStorageBackendLocation("s3://key:secret@bucket/accounts?region=eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, "s3", loc.Scheme)
	assert.Equal(t, "bucket", loc.Host)
	assert.Equal(t, "/accounts", loc.Path)
	assert.Equal(t, "eu-west-1", loc.GetParam("region"))
	assert.NotEmpty(t, loc.Auth)

	_, err = NewStorageBackendLocation("ipfs://localhost:5001")
	assert.ErrorIs(t, err, ErrInvalidLocationURI)
}

func TestValidAccountNumber(t *testing.T) {
	assert.True(t, ValidAccountNumber("191026-143005-001"))
	assert.True(t, ValidAccountNumber("191026-143005-1024"))
	assert.False(t, ValidAccountNumber("191026-143005-01"))
	assert.False(t, ValidAccountNumber("../../etc/passwd"))
	assert.False(t, ValidAccountNumber("191026-143005-001/x"))
	assert.False(t, ValidAccountNumber(""))
}

func TestAccountIsActive(t *testing.T) {
	assert.True(t, (&Account{Status: "Active"}).IsActive())
	assert.True(t, (&Account{Status: "ACTIVE"}).IsActive())
	assert.False(t, (&Account{Status: "Suspended"}).IsActive())
	assert.False(t, (&Account{}).IsActive())
}
