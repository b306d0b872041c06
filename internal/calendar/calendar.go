// Package calendar decides which dates are school teaching days.
package calendar

import "time"

// MonthDay is a recurring calendar day without a year.
type MonthDay struct {
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
	Name  string     `json:"name"`
}

var holidays = []MonthDay{
	{Month: time.January, Day: 1, Name: "New Year's Day"},
	{Month: time.January, Day: 6, Name: "Epiphany"},
	{Month: time.April, Day: 25, Name: "Liberation Day"},
	{Month: time.May, Day: 1, Name: "Labour Day"},
	{Month: time.June, Day: 2, Name: "Republic Day"},
	{Month: time.August, Day: 15, Name: "Assumption Day"},
	{Month: time.November, Day: 1, Name: "All Saints' Day"},
	{Month: time.December, Day: 8, Name: "Immaculate Conception"},
	{Month: time.December, Day: 25, Name: "Christmas Day"},
	{Month: time.December, Day: 26, Name: "St. Stephen's Day"},
}

// Holidays returns a copy of the fixed national holiday list.
func Holidays() []MonthDay {
	out := make([]MonthDay, len(holidays))
	copy(out, holidays)
	return out
}

// IsHoliday reports whether date falls on a national holiday.
// The date's own calendar fields are used; no timezone conversion happens.
func IsHoliday(date time.Time) bool {
	_, month, day := date.Date()
	for _, h := range holidays {
		if h.Month == month && h.Day == day {
			return true
		}
	}
	return false
}

// IsTeachingDay reports whether date is neither a Sunday nor a holiday.
func IsTeachingDay(date time.Time) bool {
	if date.Weekday() == time.Sunday {
		return false
	}
	return !IsHoliday(date)
}

// NextTeachingDay returns the first teaching day on or after from.
func NextTeachingDay(from time.Time) time.Time {
	d := from
	// at most a Sunday followed by two consecutive holidays (Dec 25-26)
	for !IsTeachingDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
