package pipeline

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/tabular"
)

// Calendar table column names.
const (
	ColDate         = "date"
	ColDay          = "day"
	ColDayNo        = "day_no"
	ColIsHoliday    = "is_holiday"
	ColIsWeekend    = "is_weekend"
	ColIsWorkingDay = "is_working_day"
)

type holidayEntry struct {
	HolidayDate string `json:"holiday_date"`
}

// BuildCalendar constructs the day-by-day calendar spanning the observed
// leave-application date range. An undefined bound yields an empty calendar;
// the run continues and working-day aggregates surface as empty.
func BuildCalendar(leaves, holidays *tabular.Table, optionalHolidayList string) *tabular.Table {
	t := tabular.New(ColDate, ColDay, ColDayNo, ColIsHoliday, ColIsWeekend, ColIsWorkingDay)

	minDate, maxDate := leaveBounds(leaves)
	if minDate.IsZero() || maxDate.IsZero() {
		slog.Warn("calendar not built: no parseable leave date bounds")
		return t
	}

	holidaySet := collectHolidays(holidays, optionalHolidayList)

	for d := minDate; !d.After(maxDate); d = d.AddDate(0, 0, 1) {
		dayNo := hr.ISOWeekday(d)
		isHoliday := holidaySet[d.Format("2006-01-02")]
		isWeekend := dayNo >= 6
		t.Append(tabular.Row{
			ColDate:         d.Format("2006-01-02"),
			ColDay:          d.Weekday().String(),
			ColDayNo:        strconv.Itoa(dayNo),
			ColIsHoliday:    boolCell(isHoliday),
			ColIsWeekend:    boolCell(isWeekend),
			ColIsWorkingDay: boolCell(!isWeekend && !isHoliday),
		})
	}
	return t
}

func leaveBounds(leaves *tabular.Table) (minDate, maxDate time.Time) {
	for _, row := range tableRows(leaves) {
		if from, ok := ParseDate(row["from_date"]); ok {
			if minDate.IsZero() || from.Before(minDate) {
				minDate = from
			}
		}
		if to, ok := ParseDate(row["to_date"]); ok {
			if maxDate.IsZero() || to.After(maxDate) {
				maxDate = to
			}
		}
	}
	return minDate, maxDate
}

// collectHolidays aggregates holiday dates across holiday-list rows,
// skipping the configured optional list and any row whose holiday payload
// cannot be parsed.
func collectHolidays(holidays *tabular.Table, optionalHolidayList string) map[string]bool {
	set := make(map[string]bool)
	for _, row := range tableRows(holidays) {
		if row["holiday_list_id"] == optionalHolidayList {
			continue
		}
		raw := row["holidays"]
		if raw == "" {
			continue
		}
		var entries []holidayEntry
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			slog.Warn("skipping unparseable holiday list", "holiday_list_id", row["holiday_list_id"], "error", err)
			continue
		}
		for _, e := range entries {
			if e.HolidayDate != "" {
				set[e.HolidayDate] = true
			}
		}
	}
	return set
}

func boolCell(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func tableRows(t *tabular.Table) []tabular.Row {
	if t == nil {
		return nil
	}
	return t.Rows
}
