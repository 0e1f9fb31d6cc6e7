package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/tabular"
)

// Derived column names. Their presence in a persisted table header is what
// grants the dependent capability at load time.
const (
	ColYearMonth       = "year_month"
	ColWFHDays         = "wfh_days"
	ColWFHBucket       = "wfh_bucket"
	ColOfficeHrsBucket = "office_hrs_bucket"
	ColLeaveCategory   = "leave_application_category"
	ColTotalLeaveDays  = "total_leave_days_calc"
)

// deriveRule applies the business-rule columns for one source.
type deriveRule func(*tabular.Table) error

// deriveRules dispatches derivation per source identifier. Sources without
// an entry are persisted as-is.
var deriveRules = map[string]deriveRule{
	hr.SourceAttendance:        deriveAttendance,
	hr.SourceLeaveApplications: deriveLeaveApplications,
}

// Derive applies the source's derivation rule, if any. Rules are idempotent;
// re-deriving an already derived table overwrites the same columns.
func Derive(source string, t *tabular.Table) error {
	rule, ok := deriveRules[source]
	if !ok {
		return nil
	}
	return rule(t)
}

func deriveAttendance(t *tabular.Table) error {
	if !t.HasColumn("attendance_date") {
		return fmt.Errorf("attendance table is missing attendance_date")
	}

	// Distinct WFH dates per employee-month, broadcast onto every row of
	// that employee-month.
	wfhDates := make(map[string]map[string]struct{})
	for _, row := range t.Rows {
		date, ok := ParseDate(row["attendance_date"])
		if !ok {
			continue
		}
		if strings.TrimSpace(row["presence_type"]) != hr.PresenceWorkFromHome {
			continue
		}
		key := strings.TrimSpace(row["employee"]) + "|" + date.Format("2006-01")
		if wfhDates[key] == nil {
			wfhDates[key] = make(map[string]struct{})
		}
		wfhDates[key][date.Format("2006-01-02")] = struct{}{}
	}

	t.SetColumn(ColYearMonth, func(row tabular.Row) string {
		date, ok := ParseDate(row["attendance_date"])
		if !ok {
			return ""
		}
		return date.Format("2006-01")
	})
	t.SetColumn(ColWFHDays, func(row tabular.Row) string {
		key := strings.TrimSpace(row["employee"]) + "|" + row[ColYearMonth]
		return strconv.Itoa(len(wfhDates[key]))
	})
	t.SetColumn(ColWFHBucket, func(row tabular.Row) string {
		days, _ := strconv.Atoi(row[ColWFHDays])
		return hr.WFHBucketFor(days)
	})
	t.SetColumn(ColOfficeHrsBucket, func(row tabular.Row) string {
		if strings.TrimSpace(row["presence_type"]) != hr.PresenceWorkFromOffice {
			return ""
		}
		raw := strings.TrimSpace(row["working_hours"])
		if raw == "" {
			return ""
		}
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return ""
		}
		return hr.OfficeHoursBucketFor(hours)
	})
	return nil
}

func deriveLeaveApplications(t *tabular.Table) error {
	if !t.HasColumn("from_date") {
		return fmt.Errorf("leave table is missing from_date")
	}

	t.SetColumn(ColLeaveCategory, func(row tabular.Row) string {
		applied, _ := ParseDate(row["application_date"])
		from, _ := ParseDate(row["from_date"])
		return hr.LeaveCategoryFor(applied, from)
	})
	t.SetColumn(ColTotalLeaveDays, func(row tabular.Row) string {
		raw, err := strconv.ParseFloat(strings.TrimSpace(row["total_leave_days"]), 64)
		if err != nil {
			raw = 0
		}
		total := hr.TotalLeaveDaysFor(raw,
			hr.IsHalfDayFlag(row["half_day_on_from_date"]),
			hr.IsHalfDayFlag(row["half_day_on_to_date"]))
		return strconv.FormatFloat(total, 'f', -1, 64)
	})
	return nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate parses the date formats the HR API emits. The zero time and
// false mean unparseable.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
