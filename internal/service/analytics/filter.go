package analytics

import (
	"sort"
	"time"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
	"github.com/qbadvisory/hr-analytics-go/internal/service/dataset"
)

// scope is one snapshot narrowed by a period selection and categorical
// filters. It is built eagerly so concurrent view computations can share it
// without synchronization.
type scope struct {
	snap    *dataset.Snapshot
	keys    map[string]bool // nil means no period restriction
	filters hr.Filters

	// allowed is the employee-id set implied by the indirect filters
	// (attendance mode, project, project manager); nil means unrestricted.
	allowed map[string]bool
}

func newScope(snap *dataset.Snapshot, period hr.PeriodSelection, filters hr.Filters) *scope {
	s := &scope{
		snap:    snap,
		keys:    dataset.ResolveKeys(snap.Periods, period),
		filters: filters,
	}
	s.allowed = s.indirectEmployeeSet()
	return s
}

func active(value string) bool {
	return value != "" && value != hr.FilterAll
}

// indirectEmployeeSet intersects the employee sets implied by filters whose
// home table is not the one being narrowed. Project and project-manager
// always resolve through allocations; attendance mode resolves through the
// attendance table for every other table.
func (s *scope) indirectEmployeeSet() map[string]bool {
	var sets []map[string]bool

	if active(s.filters.AttendanceMode) {
		set := make(map[string]bool)
		for _, row := range s.snap.Attendance {
			if row.Mode == s.filters.AttendanceMode {
				set[row.Employee] = true
			}
		}
		sets = append(sets, set)
	}

	if active(s.filters.Project) {
		set := make(map[string]bool)
		for _, a := range s.snap.Allocations {
			if a.ProjectName == s.filters.Project {
				set[a.Employee] = true
			}
		}
		sets = append(sets, set)
	}

	if active(s.filters.ProjectManager) {
		projects := make(map[string]bool)
		for _, p := range s.snap.Projects {
			if p.ManagerName == s.filters.ProjectManager {
				projects[p.ID] = true
			}
		}
		set := make(map[string]bool)
		for _, a := range s.snap.Allocations {
			if projects[a.ProjectID] {
				set[a.Employee] = true
			}
		}
		sets = append(sets, set)
	}

	if len(sets) == 0 {
		return nil
	}
	out := sets[0]
	for _, set := range sets[1:] {
		for id := range out {
			if !set[id] {
				delete(out, id)
			}
		}
	}
	return out
}

func (s *scope) employeeAllowed(userID string) bool {
	return s.allowed == nil || s.allowed[userID]
}

// inPeriod tests a date against the resolved key set. Restricted periods
// exclude rows whose date never parsed.
func (s *scope) inPeriod(t time.Time) bool {
	if s.keys == nil {
		return true
	}
	if t.IsZero() {
		return false
	}
	return s.keys[hr.MonthKey(t)]
}

func (s *scope) matchIdentity(name, department, manager, employmentType string) bool {
	if active(s.filters.Department) && department != s.filters.Department {
		return false
	}
	if active(s.filters.Employee) && name != s.filters.Employee {
		return false
	}
	if active(s.filters.Manager) && manager != s.filters.Manager {
		return false
	}
	if active(s.filters.EmploymentType) && employmentType != s.filters.EmploymentType {
		return false
	}
	return true
}

// Employees is the active master narrowed by the employee-level filters.
// The period selection does not apply: master data carries no date column.
func (s *scope) Employees() []hr.Employee {
	out := make([]hr.Employee, 0, len(s.snap.Employees))
	for _, e := range s.snap.Employees {
		if !s.employeeAllowed(e.UserID) {
			continue
		}
		if !s.matchIdentity(e.Name, e.Department, e.Manager, e.EmploymentType) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ActiveCount is the denominator population for utilization and forecast.
func (s *scope) ActiveCount() int {
	return len(s.Employees())
}

func (s *scope) Attendance() []hr.AttendanceRow {
	out := make([]hr.AttendanceRow, 0, len(s.snap.Attendance))
	for _, row := range s.snap.Attendance {
		if !s.inPeriod(row.Date) {
			continue
		}
		if !s.employeeAllowed(row.Employee) {
			continue
		}
		if !s.matchIdentity(row.EmployeeName, row.Department, row.Manager, row.EmploymentType) {
			continue
		}
		if active(s.filters.AttendanceMode) && row.Mode != s.filters.AttendanceMode {
			continue
		}
		if active(s.filters.WorkflowState) && row.WorkflowState != s.filters.WorkflowState {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (s *scope) Leaves() []hr.LeaveRow {
	out := make([]hr.LeaveRow, 0, len(s.snap.Leaves))
	for _, row := range s.snap.Leaves {
		if !s.inPeriod(row.FromDate) {
			continue
		}
		if !s.employeeAllowed(row.Employee) {
			continue
		}
		if !s.matchIdentity(row.EmployeeName, row.Department, row.Manager, row.EmploymentType) {
			continue
		}
		if active(s.filters.LeaveType) && row.LeaveType != s.filters.LeaveType {
			continue
		}
		out = append(out, row)
	}
	return out
}

// Balances pass the period filter untouched: balance periods are annual
// grants, not monthly facts.
func (s *scope) Balances() []hr.BalanceRow {
	out := make([]hr.BalanceRow, 0, len(s.snap.Balances))
	for _, row := range s.snap.Balances {
		if !s.employeeAllowed(row.Employee) {
			continue
		}
		if !s.matchIdentity(row.EmployeeName, row.Department, row.Manager, row.EmploymentType) {
			continue
		}
		if active(s.filters.LeaveType) && row.LeaveType != s.filters.LeaveType {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (s *scope) CalendarDays() []hr.CalendarDay {
	out := make([]hr.CalendarDay, 0, len(s.snap.Calendar))
	for _, d := range s.snap.Calendar {
		if s.inPeriod(d.Date) {
			out = append(out, d)
		}
	}
	return out
}

// WorkingDays is the calendar narrowed to working days, in calendar order.
func (s *scope) WorkingDays() []hr.CalendarDay {
	out := make([]hr.CalendarDay, 0, len(s.snap.Calendar))
	for _, d := range s.CalendarDays() {
		if d.IsWorkingDay {
			out = append(out, d)
		}
	}
	return out
}

// MonthsInScope lists the first-of-month dates covered by the period
// selection, in chronological order. The calendar's own range defines the
// universe; when no calendar exists the months observed in the leave table
// stand in, so trend charts stay dense.
func (s *scope) MonthsInScope() []time.Time {
	seen := make(map[string]time.Time)
	for _, d := range s.snap.Calendar {
		if s.inPeriod(d.Date) {
			m := time.Date(d.Date.Year(), d.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
			seen[hr.MonthKey(m)] = m
		}
	}
	if len(seen) == 0 {
		for _, row := range s.snap.Leaves {
			if !row.FromDate.IsZero() && s.inPeriod(row.FromDate) {
				m := time.Date(row.FromDate.Year(), row.FromDate.Month(), 1, 0, 0, 0, 0, time.UTC)
				seen[hr.MonthKey(m)] = m
			}
		}
	}

	out := make([]time.Time, 0, len(seen))
	for _, m := range seen {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
