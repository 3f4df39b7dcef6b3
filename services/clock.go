package services

import "time"

// DateLayout is the storage format for calendar days.
const DateLayout = "2006-01-02"

// Clock supplies the single time policy for the engine. Every operation that
// compares calendar days goes through it, so tests can pin time and production
// uses exactly one application timezone instead of ambient device/server clocks.
type Clock interface {
	Now() time.Time
	Today() string
	Location() *time.Location
}

type realClock struct {
	loc *time.Location
}

// NewClock returns a Clock pinned to the given location.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return realClock{loc: loc}
}

func (c realClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c realClock) Today() string            { return c.Now().Format(DateLayout) }
func (c realClock) Location() *time.Location { return c.loc }

// DaysBetween returns the whole calendar days from one YYYY-MM-DD date to
// another. Returns 0 when either date fails to parse.
func DaysBetween(from, to string) int {
	a, err := time.Parse(DateLayout, from)
	if err != nil {
		return 0
	}
	b, err := time.Parse(DateLayout, to)
	if err != nil {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(date string, n int) string {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return d.AddDate(0, 0, n).Format(DateLayout)
}

// DayStart returns midnight of the given date in the clock's location.
func DayStart(c Clock, date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, c.Location())
}
