package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mondayWeekdayOf(day int32) int {
	// day 0 is a Monday for these fixtures.
	m := int(day % 7)
	if m < 0 {
		m += 7
	}
	return m
}

func TestCalendarCheckWeeklyPattern(t *testing.T) {
	cal := Calendar{
		StartDay:  0,
		EndDay:    100,
		Weekdays:  1 << 0, // Monday only
		WeekdayOf: mondayWeekdayOf,
	}
	assert.True(t, cal.Check(0))  // Monday
	assert.False(t, cal.Check(1)) // Tuesday
	assert.True(t, cal.Check(7))  // next Monday
}

func TestCalendarCheckExceptions(t *testing.T) {
	cal := Calendar{
		StartDay:  0,
		EndDay:    100,
		Weekdays:  1 << 0,
		Added:     []int32{2},
		Removed:   []int32{7},
		WeekdayOf: mondayWeekdayOf,
	}
	assert.True(t, cal.Check(2))  // added exception, not a Monday
	assert.False(t, cal.Check(7)) // removed exception, would-be Monday
}

func TestCalendarCheck2AcceptsPriorDay(t *testing.T) {
	cal := Calendar{
		StartDay:  0,
		EndDay:    100,
		Weekdays:  1 << 0, // Monday only
		WeekdayOf: mondayWeekdayOf,
	}
	assert.False(t, cal.Check(1))
	assert.True(t, cal.Check2(1)) // day-1 (Monday) covers a trip spanning midnight
}

func TestCalendarCheckOutsideRangeUsesAddedOnly(t *testing.T) {
	cal := Calendar{
		StartDay:  10,
		EndDay:    20,
		Weekdays:  0xFF,
		Added:     []int32{5},
		WeekdayOf: mondayWeekdayOf,
	}
	assert.True(t, cal.Check(5))
	assert.False(t, cal.Check(6))
}
