package datefmt

// Long-form rendering of month-day-year chart labels
// "01-01-2024" -> "January 1st, 2024"
// The ordinal suffix comes from the units digit only, so day 11 renders as "11st"

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layout is the Go time layout of the labels served by the balance history endpoint.
const Layout = "01-02-2006"

// Separator splits the month, day and year fields.
const Separator = "-"

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var unitsOrdinals = [...]string{
	"0th", "1st", "2nd", "3rd", "4th", "5th", "6th", "7th", "8th", "9th",
}

// FormatError is returned when a label cannot be rendered as a date.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

// Format converts "MM-DD-YYYY" into "<Month> <Day><Ordinal>, <Year>".
// The year is copied verbatim and the day is not range checked.
func Format(date string) (string, error) {
	parts := strings.Split(date, Separator)
	if len(parts) != 3 {
		return "", &FormatError{Input: date, Reason: fmt.Sprintf("expected 3 fields, got %d", len(parts))}
	}

	if !isShortNumber(parts[0]) {
		return "", &FormatError{Input: date, Reason: fmt.Sprintf("month %q must be one or two digits", parts[0])}
	}
	month, _ := strconv.Atoi(parts[0])
	if month < 1 || month > len(monthNames) {
		return "", &FormatError{Input: date, Reason: fmt.Sprintf("month %q out of range 1-12", parts[0])}
	}

	if !isShortNumber(parts[1]) {
		return "", &FormatError{Input: date, Reason: fmt.Sprintf("day %q must be one or two digits", parts[1])}
	}
	day := parts[1]
	if len(day) == 1 {
		day = "0" + day
	}
	units := day[1]

	var b strings.Builder
	b.WriteString(monthNames[month-1])
	b.WriteByte(' ')
	if day[0] != '0' {
		b.WriteByte(day[0])
	}
	b.WriteString(unitsOrdinals[units-'0'])
	b.WriteString(", ")
	b.WriteString(parts[2])
	return b.String(), nil
}

// isShortNumber reports whether s is one or two ASCII digits.
func isShortNumber(s string) bool {
	if len(s) < 1 || len(s) > 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatTime renders t through the same rules as Format.
func FormatTime(t time.Time) string {
	s, err := Format(t.Format(Layout))
	if err != nil {
		// unreachable: Layout always yields a valid month
		return t.Format(Layout)
	}
	return s
}
