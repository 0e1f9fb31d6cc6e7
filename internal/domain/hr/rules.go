package hr

import (
	"strings"
	"time"
)

// Business-rule derivations. The forward aggregation and the drill-through
// resolver both go through these, so a bucket can never disagree with the
// rows behind it.

// WFHBucketFor classifies a distinct-WFH-day count for one employee-month.
// The boundary value 9 itself lands in the low bucket.
func WFHBucketFor(days int) string {
	if days > 9 {
		return WFHBucketHigh
	}
	return WFHBucketLow
}

// OfficeHoursBucketFor classifies working hours of a Work From Office day.
// Boundaries are half-open: [0,3), [3,6), [6,inf).
func OfficeHoursBucketFor(hours float64) string {
	switch {
	case hours < 3:
		return OfficeBucketUnder3
	case hours < 6:
		return OfficeBucket3To6
	default:
		return OfficeBucket6Plus
	}
}

// LeaveCategoryFor classifies a leave application by when it was filed.
// Equal dates (and unparseable dates) resolve to Post Availing.
func LeaveCategoryFor(applicationDate, fromDate time.Time) string {
	if !applicationDate.IsZero() && !fromDate.IsZero() && applicationDate.Before(fromDate) {
		return CategoryBeforeAvailing
	}
	return CategoryPostAvailing
}

// TotalLeaveDaysFor applies the half-day override: a raw total of exactly 0
// with either half-day flag set counts as half a day.
func TotalLeaveDaysFor(rawDays float64, halfDayFrom, halfDayTo bool) float64 {
	if rawDays == 0 && (halfDayFrom || halfDayTo) {
		return 0.5
	}
	return rawDays
}

// IsHalfDayFlag interprets the raw half-day cell ("yes" case-insensitively).
func IsHalfDayFlag(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "yes")
}

// CountsTowardLeave reports whether a leave status contributes to
// utilization, forecast and trend metrics.
func CountsTowardLeave(status string) bool {
	return status == StatusApproved || status == StatusOpen
}

// ISOWeekday returns the weekday under the Monday=1 convention.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
