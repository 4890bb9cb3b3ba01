package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPESEL(t *testing.T) {
	tests := []struct {
		name      string
		pesel     string
		birthDate time.Time
		gender    Gender
		want      bool
	}{
		{
			name:      "valid female born 1990",
			pesel:     "90051512340",
			birthDate: date(1990, time.May, 15),
			gender:    GenderFemale,
			want:      true,
		},
		{
			name:      "valid male born 1990",
			pesel:     "90051512333",
			birthDate: date(1990, time.May, 15),
			gender:    GenderMale,
			want:      true,
		},
		{
			name:      "valid female born 2002 uses month offset",
			pesel:     "02211512345",
			birthDate: date(2002, time.January, 15),
			gender:    GenderFemale,
			want:      true,
		},
		{
			name:      "gender digit disagrees",
			pesel:     "90051512340",
			birthDate: date(1990, time.May, 15),
			gender:    GenderMale,
			want:      false,
		},
		{
			name:      "birth date disagrees",
			pesel:     "90051512340",
			birthDate: date(1990, time.May, 16),
			gender:    GenderFemale,
			want:      false,
		},
		{
			name:      "checksum digit wrong",
			pesel:     "90051512341",
			birthDate: date(1990, time.May, 15),
			gender:    GenderFemale,
			want:      false,
		},
		{
			name:      "month out of every century band",
			pesel:     "90131512341",
			birthDate: date(1990, time.January, 15),
			gender:    GenderFemale,
			want:      false,
		},
		{
			name:      "too short",
			pesel:     "9005151234",
			birthDate: date(1990, time.May, 15),
			gender:    GenderFemale,
			want:      false,
		},
		{
			name:      "non-digit characters",
			pesel:     "9005151234x",
			birthDate: date(1990, time.May, 15),
			gender:    GenderFemale,
			want:      false,
		},
		{
			name:      "unknown gender never matches",
			pesel:     "90051512340",
			birthDate: date(1990, time.May, 15),
			gender:    Gender("OTHER"),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PESEL(tt.pesel, tt.birthDate, tt.gender))
		})
	}
}

func TestEmailOK(t *testing.T) {
	assert.True(t, EmailOK("jan.kowalski@example.com"))
	assert.True(t, EmailOK("a-b_c@gov.pl"))
	assert.False(t, EmailOK("not-an-email"))
	assert.False(t, EmailOK("missing@tld"))
	assert.False(t, EmailOK("@example.com"))
	assert.False(t, EmailOK(""))
}

func TestPasswordOK(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"meets policy", "Passw0rd!", true},
		{"minimum length", "Aa1!aaaa", true},
		{"too short", "Aa1!aaa", false},
		{"too long", "Aa1!" + string(make([]byte, 40)), false},
		{"no uppercase", "passw0rd!", false},
		{"no lowercase", "PASSW0RD!", false},
		{"no digit", "Password!", false},
		{"no special", "Passw0rdX", false},
		{"disallowed character", "Passw0rd!#", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PasswordOK(tt.password))
		})
	}
}

func TestFieldSet(t *testing.T) {
	set := "value"
	blank := "   "
	empty := ""
	assert.True(t, FieldSet(&set))
	assert.False(t, FieldSet(&blank))
	assert.False(t, FieldSet(&empty))
	assert.False(t, FieldSet(nil))
}
