// Package normalize cleans raw contact candidates into canonical shape:
// name splitting, email validation, and phone normalization.
package normalize

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// minNameLength is the shortest cleaned full name worth splitting.
const minNameLength = 3

// defaultPhoneRegion is used when a phone number carries no country code.
const defaultPhoneRegion = "US"

var (
	nameCleanRe = regexp.MustCompile(`[^\w\s'-]`)
	emailRe     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRe     = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
)

// genericPrefixes is the closed set of role-mailbox local parts. An email with
// one of these local parts and no independently recovered name is generic.
var genericPrefixes = map[string]bool{
	"info":       true,
	"contact":    true,
	"admin":      true,
	"operations": true,
	"webmaster":  true,
	"support":    true,
	"sales":      true,
	"general":    true,
}

// SplitName splits a full name into (first, last) using a best-effort
// heuristic, not a strict grammar. It returns ok=false when the cleaned name
// is too short to split.
func SplitName(fullName string) (first, last string, ok bool) {
	name := strings.TrimSpace(nameCleanRe.ReplaceAllString(fullName, ""))
	if len(name) < minNameLength {
		return "", "", false
	}

	parts := strings.Fields(name)
	switch len(parts) {
	case 0, 1:
		return "", "", false
	case 2:
		return parts[0], parts[1], true
	case 3:
		// Middle initial collapses to (first, third); otherwise treat the
		// trailing two tokens as a compound last name.
		if len(parts[1]) == 1 || strings.HasSuffix(parts[1], ".") {
			return parts[0], parts[2], true
		}
		return parts[0], parts[1] + " " + parts[2], true
	default:
		return parts[0], parts[len(parts)-1], true
	}
}

// Email lowercases and trims an email address and reports whether it looks
// like a valid local@domain.tld address. Invalid addresses are returned
// as-cleaned with valid=false so the caller can keep the contact and flag it,
// rather than discard a name-only record.
func Email(raw string) (email string, valid bool) {
	email = strings.ToLower(strings.Join(strings.Fields(raw), ""))
	if email == "" {
		return "", false
	}
	return email, emailRe.MatchString(email)
}

// Phone extracts and formats the first North-American-style phone number in
// the input. It returns empty when nothing phone-shaped is present; it never
// fabricates a number.
func Phone(raw string) string {
	match := phoneRe.FindString(raw)
	if match == "" {
		return ""
	}

	num, err := phonenumbers.Parse(match, defaultPhoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		// Keep the raw match; an unparseable but phone-shaped string is
		// still useful for human review.
		return strings.TrimSpace(match)
	}
	return phonenumbers.Format(num, phonenumbers.NATIONAL)
}

// IsGenericLocalPart reports whether an email's local part is a role-mailbox
// prefix (info@, contact@, ...).
func IsGenericLocalPart(email string) bool {
	local, _, found := strings.Cut(strings.ToLower(email), "@")
	if !found {
		return false
	}
	return genericPrefixes[local]
}

// NameFromEmail derives a placeholder (first, last) from an email local part
// split on "." or "_", capitalizing each segment. It returns ok=false when
// the local part has fewer than two segments.
func NameFromEmail(email string) (first, last string, ok bool) {
	local, _, found := strings.Cut(email, "@")
	if !found {
		return "", "", false
	}

	segments := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_'
	})
	if len(segments) < 2 {
		return "", "", false
	}
	return capitalize(segments[0]), capitalize(segments[len(segments)-1]), true
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
