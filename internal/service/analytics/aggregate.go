package analytics

import (
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
)

func trendView(sc *scope) []hr.TrendPoint {
	counts := make(map[string]map[string]int)
	for _, row := range sc.Leaves() {
		if row.FromDate.IsZero() || !hr.CountsTowardLeave(row.Status) {
			continue
		}
		key := hr.MonthKey(row.FromDate)
		if counts[key] == nil {
			counts[key] = make(map[string]int)
		}
		counts[key][row.Category]++
	}

	// Dense cross product: every month in range appears for both
	// categories even at zero.
	var out []hr.TrendPoint
	for _, m := range sc.MonthsInScope() {
		for _, category := range hr.LeaveCategories {
			out = append(out, hr.TrendPoint{
				Month:    hr.MonthLabel(m),
				Category: category,
				Count:    counts[hr.MonthKey(m)][category],
			})
		}
	}
	return out
}

func utilizationView(sc *scope) []hr.UtilizationPoint {
	days := make(map[string]float64)
	for _, row := range sc.Leaves() {
		if !row.FromDate.IsZero() && hr.CountsTowardLeave(row.Status) {
			days[hr.MonthKey(row.FromDate)] += row.TotalDays
		}
	}

	workingDays := make(map[string]int)
	for _, d := range sc.WorkingDays() {
		workingDays[hr.MonthKey(d.Date)]++
	}

	activeCount := sc.ActiveCount()

	var out []hr.UtilizationPoint
	for _, m := range sc.MonthsInScope() {
		key := hr.MonthKey(m)
		wd := workingDays[key]
		leaveHours := days[key] * 8
		capacity := float64(activeCount) * 8 * float64(wd)

		percent := 0.0
		if capacity > 0 {
			percent = leaveHours / capacity * 100
		}
		out = append(out, hr.UtilizationPoint{
			Month:           hr.MonthLabel(m),
			LeaveHours:      leaveHours,
			WorkingDays:     wd,
			ActiveEmployees: activeCount,
			CapacityHours:   capacity,
			Percent:         percent,
		})
	}
	return out
}

func topUnplannedView(sc *scope) []hr.TopLeaveTaker {
	type agg struct {
		count int
		days  float64
	}
	perEmployee := make(map[string]*agg)
	for _, row := range sc.Leaves() {
		if row.Category != hr.CategoryPostAvailing || !hr.CountsTowardLeave(row.Status) {
			continue
		}
		a := perEmployee[row.EmployeeName]
		if a == nil {
			a = &agg{}
			perEmployee[row.EmployeeName] = a
		}
		a.count++
		a.days += row.TotalDays
	}

	out := make([]hr.TopLeaveTaker, 0, len(perEmployee))
	for name, a := range perEmployee {
		out = append(out, hr.TopLeaveTaker{Employee: name, Applications: a.count, Days: a.days})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Applications != out[j].Applications {
			return out[i].Applications > out[j].Applications
		}
		if out[i].Days != out[j].Days {
			return out[i].Days > out[j].Days
		}
		return out[i].Employee < out[j].Employee
	})
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

// onLeaveEmployees resolves the distinct employees whose approved or open
// leave covers the given day. Rows with an invalid date range never expand.
func onLeaveEmployees(leaves []hr.LeaveRow, day time.Time) map[string]bool {
	out := make(map[string]bool)
	for _, row := range leaves {
		if !row.ValidRange || !hr.CountsTowardLeave(row.Status) {
			continue
		}
		if day.Before(row.FromDate) || day.After(row.ToDate) {
			continue
		}
		out[row.Employee] = true
	}
	return out
}

func forecastView(sc *scope) []hr.ForecastPoint {
	leaves := sc.Leaves()
	activeCount := sc.ActiveCount()

	var out []hr.ForecastPoint
	for _, d := range sc.WorkingDays() {
		onLeave := len(onLeaveEmployees(leaves, d.Date))
		available := activeCount - onLeave
		if available < 0 {
			available = 0
		}
		out = append(out, hr.ForecastPoint{
			Date:      d.Date.Format("2006-01-02"),
			OnLeave:   onLeave,
			Available: available,
		})
	}
	return out
}

func matrixView(sc *scope) *hr.MatrixResult {
	leaves := sc.Leaves()

	deptSet := make(map[string]bool)
	typeSet := make(map[string]bool)
	cells := make(map[string]map[string]float64)
	for _, row := range leaves {
		deptSet[row.Department] = true
		typeSet[row.LeaveType] = true
		if cells[row.LeaveType] == nil {
			cells[row.LeaveType] = make(map[string]float64)
		}
		cells[row.LeaveType][row.Department] += row.TotalDays
	}

	departments := sortedKeys(deptSet)
	leaveTypes := sortedKeys(typeSet)

	res := &hr.MatrixResult{
		Departments: departments,
		Totals:      make([]float64, len(departments)),
	}
	for _, lt := range leaveTypes {
		row := hr.MatrixRow{LeaveType: lt, Cells: make([]float64, len(departments))}
		for i, dept := range departments {
			v := cells[lt][dept]
			row.Cells[i] = v
			row.Total += v
			res.Totals[i] += v
			res.GrandTotal += v
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}

// chartPresence is the chart-time blank default. Distinct from the join-time
// "On Duty" rule: a row that reaches a chart without a presence type reads
// as absence, not presence.
func chartPresence(p string) string {
	if p == "" {
		return hr.PresenceOnLeave
	}
	return p
}

func dailyAttendanceView(sc *scope) []hr.DailyAttendancePoint {
	counts := make(map[string]map[string]map[string]bool)
	for _, row := range sc.Attendance() {
		if row.Date.IsZero() {
			continue
		}
		date := row.Date.Format("2006-01-02")
		presence := chartPresence(row.PresenceType)
		if counts[date] == nil {
			counts[date] = make(map[string]map[string]bool)
		}
		if counts[date][presence] == nil {
			counts[date][presence] = make(map[string]bool)
		}
		counts[date][presence][row.Employee] = true
	}

	// Dense over working days x the fixed six presence types.
	var out []hr.DailyAttendancePoint
	for _, d := range sc.WorkingDays() {
		date := d.Date.Format("2006-01-02")
		for _, presence := range hr.PresenceTypes {
			out = append(out, hr.DailyAttendancePoint{
				Date:         date,
				PresenceType: presence,
				Count:        len(counts[date][presence]),
			})
		}
	}
	return out
}

func wfhComplianceView(sc *scope) []hr.WFHCompliancePoint {
	employees := make(map[string]map[string]map[string]bool)
	for _, row := range sc.Attendance() {
		if row.Date.IsZero() || row.WFHBucket == "" {
			continue
		}
		key := hr.MonthKey(row.Date)
		if employees[key] == nil {
			employees[key] = make(map[string]map[string]bool)
		}
		if employees[key][row.WFHBucket] == nil {
			employees[key][row.WFHBucket] = make(map[string]bool)
		}
		employees[key][row.WFHBucket][row.Employee] = true
	}

	var out []hr.WFHCompliancePoint
	for _, m := range sc.MonthsInScope() {
		for _, bucket := range hr.WFHBuckets {
			out = append(out, hr.WFHCompliancePoint{
				Month:     hr.MonthLabel(m),
				Bucket:    bucket,
				Employees: len(employees[hr.MonthKey(m)][bucket]),
			})
		}
	}
	return out
}

func officeHoursView(sc *scope) []hr.OfficeHoursPoint {
	type agg struct {
		employees map[string]bool
		hours     float64
		rows      int
	}
	buckets := make(map[string]*agg)
	for _, row := range sc.Attendance() {
		if row.OfficeHrsBucket == "" {
			continue
		}
		a := buckets[row.OfficeHrsBucket]
		if a == nil {
			a = &agg{employees: make(map[string]bool)}
			buckets[row.OfficeHrsBucket] = a
		}
		a.employees[row.Employee] = true
		a.hours += row.WorkingHours
		a.rows++
	}

	var out []hr.OfficeHoursPoint
	for _, bucket := range hr.OfficeBuckets {
		point := hr.OfficeHoursPoint{Bucket: bucket}
		if a := buckets[bucket]; a != nil {
			point.Employees = len(a.employees)
			point.AvgHours = a.hours / float64(a.rows)
		}
		out = append(out, point)
	}
	return out
}

// overviewView computes the summary-tab charts concurrently over one shared
// scope.
func overviewView(sc *scope) *hr.Overview {
	var ov hr.Overview
	g := new(errgroup.Group)
	g.Go(func() error { ov.Trend = trendView(sc); return nil })
	g.Go(func() error { ov.Utilization = utilizationView(sc); return nil })
	g.Go(func() error { ov.TopUnplanned = topUnplannedView(sc); return nil })
	_ = g.Wait()
	return &ov
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
