package schedule

import (
	"bytes"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

func TestIsUSHoliday(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		want     bool
		wantName string
	}{
		{"New Year's Day", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), true, "New Year's Day"},
		{"MLK Day", time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC), true, "Martin Luther King Jr. Day"},
		{"Second Monday of January", time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC), false, ""},
		{"Presidents Day", time.Date(2025, time.February, 17, 9, 0, 0, 0, time.UTC), true, "Presidents Day"},
		{"Memorial Day", time.Date(2024, time.May, 27, 9, 0, 0, 0, time.UTC), true, "Memorial Day"},
		{"Monday before Memorial Day", time.Date(2024, time.May, 20, 9, 0, 0, 0, time.UTC), false, ""},
		{"Memorial Day on the 31st", time.Date(2021, time.May, 31, 9, 0, 0, 0, time.UTC), true, "Memorial Day"},
		{"Independence Day", time.Date(2024, time.July, 4, 23, 59, 0, 0, time.UTC), true, "Independence Day"},
		{"Labor Day", time.Date(2024, time.September, 2, 9, 0, 0, 0, time.UTC), true, "Labor Day"},
		{"Second Monday of September", time.Date(2024, time.September, 9, 9, 0, 0, 0, time.UTC), false, ""},
		{"Thanksgiving", time.Date(2024, time.November, 28, 9, 0, 0, 0, time.UTC), true, "Thanksgiving Day"},
		{"Day after Thanksgiving", time.Date(2024, time.November, 29, 9, 0, 0, 0, time.UTC), true, "Day after Thanksgiving"},
		{"Thursday before Thanksgiving", time.Date(2024, time.November, 21, 9, 0, 0, 0, time.UTC), false, ""},
		{"Christmas Eve", time.Date(2024, time.December, 24, 9, 0, 0, 0, time.UTC), true, "Christmas Eve"},
		{"Christmas Day", time.Date(2024, time.December, 25, 9, 0, 0, 0, time.UTC), true, "Christmas Day"},
		{"Boxing Day", time.Date(2024, time.December, 26, 9, 0, 0, 0, time.UTC), false, ""},
		// observed days are not shifted
		{"Observed Independence Day", time.Date(2026, time.July, 3, 9, 0, 0, 0, time.UTC), false, ""},
		{"Juneteenth", time.Date(2024, time.June, 19, 9, 0, 0, 0, time.UTC), false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUSHoliday(tt.date); got != tt.want {
				t.Errorf("IsUSHoliday(%v) = %v, want %v", tt.date, got, tt.want)
			}
			name, _ := HolidayName(tt.date)
			if name != tt.wantName {
				t.Errorf("HolidayName(%v) = %q, want %q", tt.date, name, tt.wantName)
			}
		})
	}
}

// The day-of-month ranges must agree with an exact Nth-weekday calculation.
func TestIsUSHoliday_MatchesNthWeekday(t *testing.T) {
	rules := []struct {
		name    string
		holiday *cal.Holiday
	}{
		{"Martin Luther King Jr. Day", us.MlkDay},
		{"Presidents Day", us.PresidentsDay},
		{"Memorial Day", us.MemorialDay},
		{"Labor Day", us.LaborDay},
		{"Thanksgiving Day", us.ThanksgivingDay},
	}

	for year := 2000; year <= 2100; year++ {
		for _, rule := range rules {
			actual, _ := rule.holiday.Calc(year)
			if name, ok := HolidayName(actual); !ok || name != rule.name {
				t.Fatalf("HolidayName(%s) = %q, %v, want %q", actual.Format("2006-01-02"), name, ok, rule.name)
			}
		}

		thanksgiving, _ := us.ThanksgivingDay.Calc(year)
		dayAfter := thanksgiving.AddDate(0, 0, 1)
		if name, _ := HolidayName(dayAfter); name != "Day after Thanksgiving" {
			t.Fatalf("HolidayName(%s) = %q, want Day after Thanksgiving", dayAfter.Format("2006-01-02"), name)
		}

		byName := make(map[string]time.Time)
		for _, h := range HolidaysInYear(year, time.UTC) {
			if _, dup := byName[h.Name]; dup {
				t.Fatalf("%s matched twice in %d", h.Name, year)
			}
			byName[h.Name] = h.Date
		}
		if len(byName) != len(usHolidays) {
			t.Fatalf("HolidaysInYear(%d) found %d holidays, want %d", year, len(byName), len(usHolidays))
		}
		for _, rule := range rules {
			actual, _ := rule.holiday.Calc(year)
			if got := byName[rule.name]; got.Format("2006-01-02") != actual.Format("2006-01-02") {
				t.Fatalf("%s %d = %s, want %s", rule.name, year, got.Format("2006-01-02"), actual.Format("2006-01-02"))
			}
		}
	}
}

func TestHolidaysInYear(t *testing.T) {
	want := []string{
		"2024-01-01 New Year's Day",
		"2024-01-15 Martin Luther King Jr. Day",
		"2024-02-19 Presidents Day",
		"2024-05-27 Memorial Day",
		"2024-07-04 Independence Day",
		"2024-09-02 Labor Day",
		"2024-11-28 Thanksgiving Day",
		"2024-11-29 Day after Thanksgiving",
		"2024-12-24 Christmas Eve",
		"2024-12-25 Christmas Day",
	}

	got := HolidaysInYear(2024, time.UTC)
	if len(got) != len(want) {
		t.Fatalf("HolidaysInYear(2024) returned %d holidays, want %d", len(got), len(want))
	}
	for i, h := range got {
		if s := h.Date.Format("2006-01-02") + " " + h.Name; s != want[i] {
			t.Errorf("holiday %d = %q, want %q", i, s, want[i])
		}
	}
}

func TestWriteHolidayCalendar(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHolidayCalendar(&buf, 2024, time.UTC); err != nil {
		t.Fatalf("WriteHolidayCalendar() error = %v", err)
	}

	calendar, err := ics.ParseCalendar(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Failed to parse exported calendar: %v", err)
	}

	events := calendar.Events()
	holidays := HolidaysInYear(2024, time.UTC)
	if len(events) != len(holidays) {
		t.Fatalf("exported %d events, want %d", len(events), len(holidays))
	}

	for i, event := range events {
		summary := event.GetProperty(ics.ComponentPropertySummary)
		if summary == nil || summary.Value != holidays[i].Name {
			t.Errorf("event %d summary = %v, want %q", i, summary, holidays[i].Name)
		}
		start, err := event.GetAllDayStartAt()
		if err != nil {
			t.Fatalf("event %d has no start date: %v", i, err)
		}
		if start.Format("2006-01-02") != holidays[i].Date.Format("2006-01-02") {
			t.Errorf("event %d start = %s, want %s", i, start.Format("2006-01-02"), holidays[i].Date.Format("2006-01-02"))
		}
	}
}
