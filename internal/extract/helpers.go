package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	emailTokenRe    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneTokenRe    = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	titleCaseNameRe = regexp.MustCompile(`[A-Z][a-z]+ [A-Z][a-z]+`)
	exactNameRe     = regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+$`)
	spaceRe         = regexp.MustCompile(`\s+`)
)

// collapseSpace trims a string and collapses interior whitespace runs.
func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// mailtoEmail finds the first mailto: link within sel and returns its address,
// stripped of any query component.
func mailtoEmail(sel *goquery.Selection) string {
	var email string
	sel.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		email = hrefEmail(link)
		return email == ""
	})
	return email
}

// hrefEmail returns the address of one mailto: link itself, stripped of any
// query component.
func hrefEmail(link *goquery.Selection) string {
	href, _ := link.Attr("href")
	addr := strings.TrimPrefix(href, "mailto:")
	if q := strings.IndexByte(addr, '?'); q >= 0 {
		addr = addr[:q]
	}
	return strings.TrimSpace(addr)
}

// telPhone finds the first tel: link within sel and returns its number.
func telPhone(sel *goquery.Selection) string {
	var phone string
	sel.Find(`a[href^="tel:"]`).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		phone = strings.TrimSpace(strings.TrimPrefix(href, "tel:"))
		return phone == ""
	})
	return phone
}

// firstEmailIn returns the first email-shaped token in text.
func firstEmailIn(text string) string {
	return emailTokenRe.FindString(text)
}

// firstPhoneIn returns the first phone-shaped token in text.
func firstPhoneIn(text string) string {
	return phoneTokenRe.FindString(text)
}

// firstNameIn returns the first Title-Case "Firstname Lastname" pattern in text.
func firstNameIn(text string) string {
	return titleCaseNameRe.FindString(text)
}

// looksLikeExactName reports whether text is exactly a Title-Case two-word name.
func looksLikeExactName(text string) bool {
	return exactNameRe.MatchString(text)
}

// attrHintMatch reports whether the element's class or id attribute contains
// any of the given hint tokens.
func attrHintMatch(sel *goquery.Selection, hints []string) bool {
	class, _ := sel.Attr("class")
	id, _ := sel.Attr("id")
	attrs := strings.ToLower(class + " " + id)
	if attrs == " " {
		return false
	}
	for _, hint := range hints {
		if strings.Contains(attrs, hint) {
			return true
		}
	}
	return false
}
