package analytics

import (
	"fmt"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
	"github.com/qbadvisory/hr-analytics-go/internal/service/pipeline"
)

// Drill-through re-applies the forward aggregation predicate over the same
// narrowed rows and derived columns, so a drill count always matches the
// aggregate cell it came from.

func drillDaily(sc *scope, req hr.DrillRequest) (hr.DrillResult, error) {
	if req.Bucket == "" {
		return hr.DrillResult{}, hr.ErrMissingBucket
	}
	res := hr.DrillResult{
		Chart:  req.Chart,
		Bucket: req.Bucket,
		Title:  fmt.Sprintf("%s on %s", req.Bucket, req.Date),
	}
	seen := make(map[string]bool)
	for _, row := range sc.Attendance() {
		if row.Date.IsZero() || row.Date.Format("2006-01-02") != req.Date {
			continue
		}
		if chartPresence(row.PresenceType) != req.Bucket {
			continue
		}
		if seen[row.Employee] {
			continue
		}
		seen[row.Employee] = true
		res.Attendance = append(res.Attendance, attendanceDrillRow(row, true))
	}
	res.Count = len(res.Attendance)
	return res, nil
}

func drillWFH(sc *scope, req hr.DrillRequest) (hr.DrillResult, error) {
	if req.Bucket == "" {
		return hr.DrillResult{}, hr.ErrMissingBucket
	}
	res := hr.DrillResult{
		Chart:  req.Chart,
		Bucket: req.Bucket,
		Title:  fmt.Sprintf("%s in %s", req.Bucket, req.Month),
	}
	seen := make(map[string]bool)
	for _, row := range sc.Attendance() {
		if row.Date.IsZero() || hr.MonthLabel(row.Date) != req.Month {
			continue
		}
		if row.WFHBucket != req.Bucket {
			continue
		}
		if seen[row.Employee] {
			continue
		}
		seen[row.Employee] = true
		drillRow := attendanceDrillRow(row, false)
		wfh := row.WFHDays
		drillRow.WFHDays = &wfh
		res.Attendance = append(res.Attendance, drillRow)
	}
	res.Count = len(res.Attendance)
	return res, nil
}

func drillHours(sc *scope, req hr.DrillRequest) (hr.DrillResult, error) {
	if req.Bucket == "" {
		return hr.DrillResult{}, hr.ErrMissingBucket
	}
	res := hr.DrillResult{
		Chart:  req.Chart,
		Bucket: req.Bucket,
		Title:  fmt.Sprintf("Office attendance, %s", req.Bucket),
	}

	type acc struct {
		row   hr.AttendanceRow
		hours float64
		n     int
	}
	perEmployee := make(map[string]*acc)
	var order []string
	for _, row := range sc.Attendance() {
		if row.OfficeHrsBucket != req.Bucket {
			continue
		}
		a := perEmployee[row.Employee]
		if a == nil {
			a = &acc{row: row}
			perEmployee[row.Employee] = a
			order = append(order, row.Employee)
		}
		a.hours += row.WorkingHours
		a.n++
	}

	for _, id := range order {
		a := perEmployee[id]
		drillRow := attendanceDrillRow(a.row, false)
		mean := a.hours / float64(a.n)
		drillRow.WorkingHours = &mean
		res.Attendance = append(res.Attendance, drillRow)
	}
	res.Count = len(res.Attendance)
	return res, nil
}

func drillTrend(sc *scope, req hr.DrillRequest) (hr.DrillResult, error) {
	if req.Bucket == "" {
		return hr.DrillResult{}, hr.ErrMissingBucket
	}
	res := hr.DrillResult{
		Chart:  req.Chart,
		Bucket: req.Bucket,
		Title:  fmt.Sprintf("%s, %s", req.Bucket, req.Month),
	}
	for _, row := range sc.Leaves() {
		if row.FromDate.IsZero() || hr.MonthLabel(row.FromDate) != req.Month {
			continue
		}
		if row.Category != req.Bucket || !hr.CountsTowardLeave(row.Status) {
			continue
		}
		res.Leaves = append(res.Leaves, leaveDrillRow(row))
	}
	res.Count = len(res.Leaves)
	return res, nil
}

func drillUtilization(sc *scope, req hr.DrillRequest) (hr.DrillResult, error) {
	res := hr.DrillResult{
		Chart: req.Chart,
		Title: fmt.Sprintf("Leave applications, %s", req.Month),
	}
	for _, row := range sc.Leaves() {
		if row.FromDate.IsZero() || hr.MonthLabel(row.FromDate) != req.Month {
			continue
		}
		if !hr.CountsTowardLeave(row.Status) {
			continue
		}
		res.Leaves = append(res.Leaves, leaveDrillRow(row))
	}
	res.Count = len(res.Leaves)
	return res, nil
}

func drillTop(sc *scope, req hr.DrillRequest) (hr.DrillResult, error) {
	res := hr.DrillResult{
		Chart: req.Chart,
		Title: fmt.Sprintf("Unplanned leave, %s", req.Employee),
	}
	for _, row := range sc.Leaves() {
		if row.EmployeeName != req.Employee {
			continue
		}
		if row.Category != hr.CategoryPostAvailing || !hr.CountsTowardLeave(row.Status) {
			continue
		}
		res.Leaves = append(res.Leaves, leaveDrillRow(row))
	}
	res.Count = len(res.Leaves)
	return res, nil
}

func drillForecast(sc *scope, req hr.DrillRequest) (hr.DrillResult, error) {
	res := hr.DrillResult{
		Chart: req.Chart,
		Title: fmt.Sprintf("On leave, %s", req.Date),
	}
	day, ok := pipeline.ParseDate(req.Date)
	if !ok {
		return res, nil
	}
	leaves := sc.Leaves()
	onLeave := onLeaveEmployees(leaves, day)

	seen := make(map[string]bool)
	for _, row := range leaves {
		if !onLeave[row.Employee] || seen[row.Employee] {
			continue
		}
		if !row.ValidRange || !hr.CountsTowardLeave(row.Status) {
			continue
		}
		if day.Before(row.FromDate) || day.After(row.ToDate) {
			continue
		}
		seen[row.Employee] = true
		res.Leaves = append(res.Leaves, leaveDrillRow(row))
	}
	res.Count = len(res.Leaves)
	return res, nil
}

func attendanceDrillRow(row hr.AttendanceRow, withDay bool) hr.AttendanceDrillRow {
	out := hr.AttendanceDrillRow{
		UserID:       row.Employee,
		EmployeeID:   row.EmployeeID,
		EmployeeName: row.EmployeeName,
		Department:   row.Department,
		Designation:  row.Designation,
	}
	if withDay {
		out.Date = row.Date.Format("2006-01-02")
		out.PresenceType = chartPresence(row.PresenceType)
		if row.HasHours {
			hours := row.WorkingHours
			out.WorkingHours = &hours
		}
	}
	return out
}

func leaveDrillRow(row hr.LeaveRow) hr.LeaveDrillRow {
	return hr.LeaveDrillRow{
		UserID:       row.Employee,
		EmployeeID:   row.EmployeeID,
		EmployeeName: row.EmployeeName,
		Status:       row.Status,
		FromDate:     row.FromDate.Format("2006-01-02"),
		ToDate:       row.ToDate.Format("2006-01-02"),
		TotalDays:    row.TotalDays,
		Category:     row.Category,
	}
}
