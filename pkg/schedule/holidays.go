package schedule

import (
	"time"
)

// Holiday is a named US holiday on a specific date.
type Holiday struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// holidayRule reports whether a calendar date matches a named holiday.
type holidayRule struct {
	name    string
	matches func(month time.Month, day int, weekday time.Weekday, date time.Time) bool
}

func fixedDate(m time.Month, d int) func(time.Month, int, time.Weekday, time.Time) bool {
	return func(month time.Month, day int, _ time.Weekday, _ time.Time) bool {
		return month == m && day == d
	}
}

func weekdayInRange(m time.Month, wd time.Weekday, first, last int) func(time.Month, int, time.Weekday, time.Time) bool {
	return func(month time.Month, day int, weekday time.Weekday, _ time.Time) bool {
		return month == m && weekday == wd && day >= first && day <= last
	}
}

// usHolidays are evaluated in order and the first match wins.
// The Nth-weekday holidays use fixed day-of-month ranges and are never
// shifted to an observed day.
var usHolidays = []holidayRule{
	{"New Year's Day", fixedDate(time.January, 1)},
	{"Martin Luther King Jr. Day", weekdayInRange(time.January, time.Monday, 15, 21)},
	{"Presidents Day", weekdayInRange(time.February, time.Monday, 15, 21)},
	{"Memorial Day", func(month time.Month, _ int, weekday time.Weekday, date time.Time) bool {
		// last Monday: a week later is already June
		return month == time.May && weekday == time.Monday && date.AddDate(0, 0, 7).Month() != month
	}},
	{"Independence Day", fixedDate(time.July, 4)},
	{"Labor Day", weekdayInRange(time.September, time.Monday, 1, 7)},
	{"Thanksgiving Day", weekdayInRange(time.November, time.Thursday, 22, 28)},
	{"Day after Thanksgiving", weekdayInRange(time.November, time.Friday, 23, 29)},
	{"Christmas Eve", fixedDate(time.December, 24)},
	{"Christmas Day", fixedDate(time.December, 25)},
}

// HolidayName returns the name of the US holiday falling on the calendar date of t.
func HolidayName(t time.Time) (string, bool) {
	// Normalize to noon so the one-week lookahead never crosses a DST edge into the wrong day.
	date := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
	for _, rule := range usHolidays {
		if rule.matches(date.Month(), date.Day(), date.Weekday(), date) {
			return rule.name, true
		}
	}
	return "", false
}

// IsUSHoliday checks if the calendar date of t is one of the observed US holidays:
// New Year's Day, MLK Day, Presidents Day, Memorial Day, Independence Day,
// Labor Day, Thanksgiving and the day after, Christmas Eve and Christmas Day.
func IsUSHoliday(t time.Time) bool {
	_, ok := HolidayName(t)
	return ok
}

// HolidaysInYear lists every holiday of the given year in date order.
// Dates are midnight in loc.
func HolidaysInYear(year int, loc *time.Location) []Holiday {
	if loc == nil {
		loc = time.Local
	}

	var holidays []Holiday
	for day := time.Date(year, time.January, 1, 0, 0, 0, 0, loc); day.Year() == year; day = day.AddDate(0, 0, 1) {
		if name, ok := HolidayName(day); ok {
			holidays = append(holidays, Holiday{Name: name, Date: day})
		}
	}
	return holidays
}
