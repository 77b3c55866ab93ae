package clock

import "time"

// Clock supplies "now" to request handlers; services take the instant as a parameter.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in a fixed location so that day boundaries
// follow the business time zone rather than the host's.
type System struct {
	Location *time.Location
}

func (c System) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// Fixed always returns the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }
