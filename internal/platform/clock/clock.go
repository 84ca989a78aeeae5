package clock

import "time"

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Func adapts a plain function, mostly for wiring test doubles.
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}

// Date renders the calendar day of t as YYYY-MM-DD.
func Date(t time.Time) string {
	return t.Format(time.DateOnly)
}
