package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/contactscout/internal/domain"
	"github.com/jonesrussell/contactscout/internal/normalize"
)

func TestSplitName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		first    string
		last     string
		ok       bool
	}{
		{"two tokens", "John Smith", "John", "Smith", true},
		{"middle initial", "John Q Smith", "John", "Smith", true},
		{"middle initial with period", "John Q. Smith", "John", "Smith", true},
		{"compound last name", "Mary Van Buren", "Mary", "Van Buren", true},
		{"four tokens", "John Jacob Jingleheimer Schmidt", "John", "Schmidt", true},
		{"punctuation stripped", "John Smith, P.E.", "John", "Smith", true},
		{"hyphen kept", "Anna Smith-Jones", "Anna", "Smith-Jones", true},
		{"apostrophe kept", "Sean O'Brien", "Sean", "O'Brien", true},
		{"single token", "Smith", "", "", false},
		{"too short", "Jo", "", "", false},
		{"empty", "", "", "", false},
		{"only punctuation", "@#$", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			first, last, ok := normalize.SplitName(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
		})
	}
}

func TestEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		email string
		valid bool
	}{
		{"already clean", "jsmith@city.gov", "jsmith@city.gov", true},
		{"uppercase", "JSmith@City.GOV", "jsmith@city.gov", true},
		{"surrounding whitespace", "  jsmith@city.gov ", "jsmith@city.gov", true},
		{"interior whitespace", "jsmith @city.gov", "jsmith@city.gov", true},
		{"missing tld", "jsmith@city", "jsmith@city", false},
		{"missing at", "jsmith.city.gov", "jsmith.city.gov", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			email, valid := normalize.Email(tt.input)
			assert.Equal(t, tt.email, email)
			assert.Equal(t, tt.valid, valid)
		})
	}
}

func TestPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"parenthesized", "Call (202) 555-0143 today", "(202) 555-0143"},
		{"dashed", "202-555-0143", "(202) 555-0143"},
		{"dotted", "202.555.0143", "(202) 555-0143"},
		{"with country code", "+1 202-555-0143", "(202) 555-0143"},
		{"no phone", "no numbers here", ""},
		{"too few digits", "555-0143", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, normalize.Phone(tt.input))
		})
	}
}

func TestIsGenericLocalPart(t *testing.T) {
	t.Parallel()

	assert.True(t, normalize.IsGenericLocalPart("info@city.gov"))
	assert.True(t, normalize.IsGenericLocalPart("OPERATIONS@city.gov"))
	assert.True(t, normalize.IsGenericLocalPart("webmaster@example.com"))
	assert.False(t, normalize.IsGenericLocalPart("jsmith@city.gov"))
	assert.False(t, normalize.IsGenericLocalPart("not-an-email"))
}

func TestNameFromEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		first string
		last  string
		ok    bool
	}{
		{"dotted", "john.smith@city.gov", "John", "Smith", true},
		{"underscored", "john_smith@city.gov", "John", "Smith", true},
		{"three segments", "john.q.smith@city.gov", "John", "Smith", true},
		{"single segment", "jsmith@city.gov", "", "", false},
		{"not an email", "jsmith", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			first, last, ok := normalize.NameFromEmail(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
		})
	}
}

func TestCandidate(t *testing.T) {
	t.Parallel()

	t.Run("normalizes email and phone", func(t *testing.T) {
		t.Parallel()

		c := &domain.ContactCandidate{
			FirstName: "John",
			LastName:  "Smith",
			Email:     "JSmith@City.GOV",
			Phone:     "call 202-555-0143",
		}
		normalize.Candidate(c)

		assert.Equal(t, "jsmith@city.gov", c.Email)
		assert.True(t, c.EmailValid)
		assert.Equal(t, "(202) 555-0143", c.Phone)
		assert.Equal(t, domain.ContactTypeActual, c.ContactType)
	})

	t.Run("invalid email kept with flag", func(t *testing.T) {
		t.Parallel()

		c := &domain.ContactCandidate{FirstName: "John", LastName: "Smith", Email: "broken@city"}
		normalize.Candidate(c)

		assert.Equal(t, "broken@city", c.Email)
		assert.False(t, c.EmailValid)
	})

	t.Run("role mailbox without name is generic", func(t *testing.T) {
		t.Parallel()

		c := &domain.ContactCandidate{Email: "info@city.gov"}
		normalize.Candidate(c)

		assert.Equal(t, domain.ContactTypeGeneric, c.ContactType)
	})

	t.Run("role mailbox with name stays actual", func(t *testing.T) {
		t.Parallel()

		c := &domain.ContactCandidate{FirstName: "Jane", LastName: "Doe", Email: "info@city.gov"}
		normalize.Candidate(c)

		assert.Equal(t, domain.ContactTypeActual, c.ContactType)
	})
}
