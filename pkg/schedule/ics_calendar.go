package schedule

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
)

const icsProductID = "-//kezhenxu94//after-hours//EN"

// NewHolidayCalendar builds an iCalendar with one all-day event per US holiday in year.
func NewHolidayCalendar(year int, loc *time.Location) *ics.Calendar {
	calendar := ics.NewCalendar()
	calendar.SetMethod(ics.MethodPublish)
	calendar.SetProductId(icsProductID)

	stamp := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, holiday := range HolidaysInYear(year, loc) {
		event := calendar.AddEvent(fmt.Sprintf("%s@after-hours", holiday.Date.Format("20060102")))
		event.SetDtStampTime(stamp)
		event.SetSummary(holiday.Name)
		event.SetAllDayStartAt(holiday.Date)
		// DTEND is exclusive for all-day events
		event.SetAllDayEndAt(holiday.Date.AddDate(0, 0, 1))
	}
	return calendar
}

// WriteHolidayCalendar serializes the holiday calendar for year to w.
func WriteHolidayCalendar(w io.Writer, year int, loc *time.Location) error {
	if err := NewHolidayCalendar(year, loc).SerializeTo(w); err != nil {
		return fmt.Errorf("failed to serialize holiday calendar: %v", err)
	}
	return nil
}
