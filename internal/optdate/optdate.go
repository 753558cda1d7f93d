// Package optdate resolves the year-less dates found in brokerage history.
//
// Fill dates look backwards: history only lists executions that already
// happened, so a month/day later than today belongs to last year. Expiries
// look forwards: a month/day earlier than today belongs to next year.
package optdate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISOFormat is the feed's canonical date layout.
const ISOFormat = "2006-01-02"

var monthDay = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{2}|\d{4}))?$`)

// feedExpiryLayouts are tried in order against feed expiration strings.
var feedExpiryLayouts = []string{
	ISOFormat,
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 02, 2006",
}

// ParseMonthDay splits "M/D" (optionally "M/D/YY" or "M/D/YYYY") into parts.
// year is 0 when the text has none.
func ParseMonthDay(s string) (month time.Month, day, year int, err error) {
	m := monthDay.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, 0, fmt.Errorf("invalid month/day %q", s)
	}
	mo, _ := strconv.Atoi(m[1])
	d, _ := strconv.Atoi(m[2])
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return 0, 0, 0, fmt.Errorf("month/day out of range %q", s)
	}
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
	}
	return time.Month(mo), d, year, nil
}

// ResolveFill resolves a fill date relative to today. A month/day strictly
// after today's is assumed to be last year.
func ResolveFill(s string, today time.Time) (time.Time, error) {
	month, day, year, err := ParseMonthDay(s)
	if err != nil {
		return time.Time{}, err
	}
	if year == 0 {
		year = today.Year()
		if after(month, day, today.Month(), today.Day()) {
			year--
		}
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

// ResolveExpiry resolves an expiry relative to the reference day today. A
// month/day strictly before today's is assumed to be next year. The
// reconciler passes a leg's fill date as today, not the wall clock, so an
// option that expired before the import runs still resolves to the year it
// traded in.
func ResolveExpiry(s string, today time.Time) (time.Time, error) {
	month, day, year, err := ParseMonthDay(s)
	if err != nil {
		return time.Time{}, err
	}
	if year == 0 {
		year = today.Year()
		if after(today.Month(), today.Day(), month, day) {
			year++
		}
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

// ParseFeedExpiry parses a feed expiration in ISO or "Mon D, YYYY" form.
func ParseFeedExpiry(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range feedExpiryLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized expiration date %q", s)
}

// ParseClock parses "H:MM AM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("3:04 PM", strings.ToUpper(strings.Join(strings.Fields(s), " ")))
	if err != nil {
		return 0, fmt.Errorf("parsing time %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// DaysApart returns the absolute number of calendar days between a and b.
func DaysApart(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	days := int(da.Sub(db).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

func after(m1 time.Month, d1 int, m2 time.Month, d2 int) bool {
	if m1 != m2 {
		return m1 > m2
	}
	return d1 > d2
}
