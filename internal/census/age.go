package census

import (
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD date. A longer timestamp is accepted when its
// first ten characters form such a date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Age returns the number of whole years between birthDate and ref. A birthday
// counts only once its month and day have been reached in ref's year. The
// boolean is false when birthDate is empty or does not parse.
func Age(birthDate string, ref time.Time) (int, bool) {
	dob, ok := ParseDate(birthDate)
	if !ok {
		return 0, false
	}
	age := ref.Year() - dob.Year()
	if ref.Month() < dob.Month() || (ref.Month() == dob.Month() && ref.Day() < dob.Day()) {
		age--
	}
	return age, true
}

// AgeLabel is Age rendered for display, "N/A" when unknown.
func AgeLabel(birthDate string, ref time.Time) string {
	age, ok := Age(birthDate, ref)
	if !ok {
		return "N/A"
	}
	return strconv.Itoa(age)
}
