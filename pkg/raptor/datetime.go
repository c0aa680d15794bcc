package raptor

import "fmt"

const secondsPerDay = 86400

// DateTime is a (date, seconds-of-day) pair, per spec.md §3. Date is a
// dense day counter (any epoch works as long as it is consistent with
// the timetable's calendars); Sec is always normalized to [0,
// secondsPerDay).
type DateTime struct {
	Date int32
	Sec  int32
}

// DateTimeMIN and DateTimeINF are the "never reached" sentinels for
// forward and reverse search respectively.
var (
	DateTimeMIN = DateTime{Date: sentinelMinDay, Sec: 0}
	DateTimeINF = DateTime{Date: sentinelMaxDay, Sec: 0}
)

func NewDateTime(date int32, secondsOfDay int) DateTime {
	return DateTime{Date: date, Sec: int32(secondsOfDay)}
}

// Less reports whether dt happens strictly before o.
func (dt DateTime) Less(o DateTime) bool {
	return dt.Date < o.Date || (dt.Date == o.Date && dt.Sec < o.Sec)
}

// Equal reports whether dt and o denote the same instant.
func (dt DateTime) Equal(o DateTime) bool {
	return dt.Date == o.Date && dt.Sec == o.Sec
}

// Update advances dt to the next occurrence of clock time secondsOfDay
// that is >= dt, per spec.md §3. secondsOfDay must be in [0,
// secondsPerDay).
func (dt DateTime) Update(secondsOfDay int) DateTime {
	candidate := DateTime{Date: dt.Date, Sec: int32(secondsOfDay)}
	if candidate.Less(dt) {
		candidate.Date++
	}
	return candidate
}

// UpdateReverse retreats dt to the previous occurrence of clock time
// secondsOfDay that is <= dt.
func (dt DateTime) UpdateReverse(secondsOfDay int) DateTime {
	candidate := DateTime{Date: dt.Date, Sec: int32(secondsOfDay)}
	if dt.Less(candidate) {
		candidate.Date--
	}
	return candidate
}

// Add returns dt shifted forward by seconds, carrying into the date
// component as needed. Used by Direction.Combine in the forward
// direction.
func (dt DateTime) Add(seconds int) DateTime {
	total := int64(dt.Sec) + int64(seconds)
	days := int32(total / secondsPerDay)
	rem := int32(total % secondsPerDay)
	if rem < 0 {
		rem += secondsPerDay
		days--
	}
	return DateTime{Date: dt.Date + days, Sec: rem}
}

// Sub returns dt shifted backward by seconds. Used by Direction.Combine
// in the reverse direction.
func (dt DateTime) Sub(seconds int) DateTime {
	return dt.Add(-seconds)
}

func (dt DateTime) String() string {
	return fmt.Sprintf("day=%d@%02d:%02d:%02d", dt.Date, dt.Sec/3600, (dt.Sec%3600)/60, dt.Sec%60)
}

// FromAnchor turns a stop-time's raw seconds-of-day figure (possibly
// negative or >= secondsPerDay, for trips that span midnight) into a
// real DateTime relative to anchor, a dense day counter that already
// accounts for any such rollover in the caller's chosen reference
// instant. Shared by the round scanner's alighting-time computation and
// the path reconstructor's stop-time replay (spec.md §4.4, §4.7).
func FromAnchor(anchor int32, seconds int32) DateTime {
	days := seconds / secondsPerDay
	rem := seconds % secondsPerDay
	if rem < 0 {
		rem += secondsPerDay
		days--
	}
	return DateTime{Date: anchor + days, Sec: rem}
}

// IsMin reports whether dt is the forward-search "never reached" sentinel.
func (dt DateTime) IsMin() bool { return dt == DateTimeMIN }

// IsInf reports whether dt is the reverse-search "never reached" sentinel.
func (dt DateTime) IsInf() bool { return dt == DateTimeINF }
