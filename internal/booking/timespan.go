package booking

// MinutesPerDay bounds the minute-of-day encoding used by time spans and
// operating windows.
const MinutesPerDay = 24 * 60

// TimeSpan is a sub-day interval attached to a legacy reservation, encoded as
// minutes since midnight. Spans never cross midnight themselves.
type TimeSpan struct {
	StartMinute int
	EndMinute   int
	Status      Status
}

// Valid reports whether the span is well formed: within a single day and with
// a positive duration.
func (s TimeSpan) Valid() bool {
	return s.StartMinute >= 0 && s.EndMinute <= MinutesPerDay && s.StartMinute < s.EndMinute
}

// Overlaps reports whether two spans share any minute. Touching endpoints do
// not overlap.
func (s TimeSpan) Overlaps(other TimeSpan) bool {
	return s.StartMinute < other.EndMinute && other.StartMinute < s.EndMinute
}

// OperatingWindow is a building's opening interval for one weekday, encoded as
// minutes since midnight. When ClosesAt is less than OpensAt the window crosses
// midnight (for example 22:00 through 06:00 the next day).
type OperatingWindow struct {
	OpensAt  int
	ClosesAt int
	Closed   bool
}

// CrossesMidnight reports whether the window wraps past midnight.
func (w OperatingWindow) CrossesMidnight() bool {
	return !w.Closed && w.ClosesAt < w.OpensAt
}

// Contains reports whether the span lies entirely inside the operating window.
//
// For a window that crosses midnight the span must fit entirely within the
// after-opening segment or entirely within the before-closing segment; a span
// straddling both segments in one request is rejected.
func (w OperatingWindow) Contains(span TimeSpan) bool {
	if w.Closed || !span.Valid() {
		return false
	}
	if !w.CrossesMidnight() {
		return span.StartMinute >= w.OpensAt && span.EndMinute <= w.ClosesAt
	}
	afterOpening := span.StartMinute >= w.OpensAt && span.EndMinute <= MinutesPerDay
	beforeClosing := span.StartMinute >= 0 && span.EndMinute <= w.ClosesAt
	return afterOpening || beforeClosing
}

// DetectSpanConflicts returns the active spans on the same desk and date that
// overlap the candidate. The invariant generalizes the whole-day rule to
// intervals: no two active spans may overlap.
func DetectSpanConflicts(existing []TimeSpan, candidate TimeSpan) []TimeSpan {
	var conflicts []TimeSpan
	for _, s := range existing {
		if s.Status != StatusActive {
			continue
		}
		if s.Overlaps(candidate) {
			conflicts = append(conflicts, s)
		}
	}
	return conflicts
}
