package schedule

import (
	"context"
	"fmt"
	"time"
)

// BusinessHours is the daily window, in whole local hours, during which mail
// is sent immediately. Callers guarantee 0 <= StartHour < EndHour <= 23.
type BusinessHours struct {
	StartHour int `json:"startHour"`
	EndHour   int `json:"endHour"`
}

// String returns the window as "HH:00-HH:00".
func (h BusinessHours) String() string {
	return fmt.Sprintf("%02d:00-%02d:00", h.StartHour, h.EndHour)
}

// IsOutsideBusinessHours reports whether now falls on a weekend or outside
// [StartHour, EndHour) on a weekday.
func IsOutsideBusinessHours(now time.Time, hours BusinessHours) bool {
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}

	hour := now.Hour()
	return hour < hours.StartHour || hour >= hours.EndHour
}

// CalculateNextBusinessDayStart returns the start of business on the next
// weekday that is not a US holiday. Today qualifies only while the current
// hour is still before StartHour. The result is in now's location with
// minutes and seconds zeroed.
func CalculateNextBusinessDayStart(now time.Time, hours BusinessHours) time.Time {
	year, month, day := now.Date()
	if now.Hour() >= hours.StartHour {
		day++
	}
	next := time.Date(year, month, day, hours.StartHour, 0, 0, 0, now.Location())

	for {
		switch {
		case next.Weekday() == time.Sunday:
			next = advanceDays(next, 1, hours.StartHour)
		case next.Weekday() == time.Saturday:
			next = advanceDays(next, 2, hours.StartHour)
		case IsUSHoliday(next):
			next = advanceDays(next, 1, hours.StartHour)
		default:
			return next
		}
	}
}

// advanceDays moves t forward by whole calendar days and pins the time of day to startHour.
func advanceDays(t time.Time, days, startHour int) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day+days, startHour, 0, 0, 0, t.Location())
}

// BusinessHoursProvider is a schedule provider backed by a fixed business-hours window
type BusinessHoursProvider struct {
	Hours BusinessHours
}

// NewBusinessHoursProvider creates a new business-hours schedule provider
func NewBusinessHoursProvider(hours BusinessHours) *BusinessHoursProvider {
	return &BusinessHoursProvider{Hours: hours}
}

// IsWorkTime checks if t is inside the business-hours window on a weekday
func (p *BusinessHoursProvider) IsWorkTime(ctx context.Context, t time.Time) (bool, error) {
	if p.Hours.StartHour < 0 || p.Hours.EndHour > 24 || p.Hours.StartHour >= p.Hours.EndHour {
		return false, fmt.Errorf("invalid business hours %s", p.Hours)
	}
	return !IsOutsideBusinessHours(t, p.Hours), nil
}

// String returns a string representation of the BusinessHoursProvider
func (p *BusinessHoursProvider) String() string {
	return fmt.Sprintf("BusinessHoursProvider{hours: %s, workDays: Monday-Friday}", p.Hours)
}

// HolidayProvider treats US holidays as off-time for the whole day
type HolidayProvider struct{}

// NewHolidayProvider creates a new holiday schedule provider
func NewHolidayProvider() *HolidayProvider {
	return &HolidayProvider{}
}

// IsWorkTime returns false on US holidays
func (p *HolidayProvider) IsWorkTime(ctx context.Context, t time.Time) (bool, error) {
	return !IsUSHoliday(t), nil
}

// String returns a string representation of the HolidayProvider
func (p *HolidayProvider) String() string {
	return "HolidayProvider{calendar: US}"
}
