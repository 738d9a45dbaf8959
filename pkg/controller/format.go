package controller

import (
	"fmt"
	"time"

	"github.com/kezhenxu94/after-hours/pkg/settings"
)

// deliveryTimeLayout renders times like "Monday, July 8 at 7:00 AM".
const deliveryTimeLayout = "Monday, January 2 at 3:04 PM"

// FormatHour renders a 24-hour clock hour for display, e.g. 0 -> "12 AM", 18 -> "6 PM".
func FormatHour(hour int) string {
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d %s", display, suffix)
}

// FormatDeliveryTime renders a deferred delivery time for the scheduling notification.
func FormatDeliveryTime(t time.Time) string {
	return t.Format(deliveryTimeLayout)
}

// HoursSummary describes the business-hours window, e.g. "7 AM - 6 PM, Monday-Friday".
func HoursSummary(s settings.Settings) string {
	return fmt.Sprintf("%s - %s, Monday-Friday", FormatHour(s.BusinessStartHour), FormatHour(s.BusinessEndHour))
}
