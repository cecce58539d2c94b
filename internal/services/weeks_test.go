package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestISOWeek(t *testing.T) {
	// 2025-01-06 is the Monday of ISO week 2.
	assert.Equal(t, 2, ISOWeek(time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)))
	// 2024-12-30 already belongs to week 1 of 2025.
	assert.Equal(t, 1, ISOWeek(time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC)))
}

func TestPreviousISOWeek(t *testing.T) {
	// Mid-year: plain week-1 arithmetic. 2025-03-10 is in week 11.
	assert.Equal(t, 10, PreviousISOWeek(time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)))

	// Week 1 rolls back to the last week of the previous ISO year.
	// 2024 has 52 ISO weeks.
	assert.Equal(t, 52, PreviousISOWeek(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
	// 2020 has 53 ISO weeks; 2021-01-06 is in week 1 of 2021.
	assert.Equal(t, 53, PreviousISOWeek(time.Date(2021, time.January, 6, 0, 0, 0, 0, time.UTC)))
}

func TestWeekBounds(t *testing.T) {
	// Sunday belongs to the week that started the previous Monday.
	sunday := time.Date(2025, time.March, 16, 15, 30, 0, 0, time.UTC)
	start, end := WeekBounds(sunday)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), start)
	assert.True(t, end.After(sunday))
	assert.True(t, end.Before(time.Date(2025, time.March, 17, 0, 0, 0, 0, time.UTC)))

	// A Monday is its own week start.
	monday := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	start, _ = WeekBounds(monday)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), start)
}
