package dataset

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/storage"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/tabular"
	"github.com/qbadvisory/hr-analytics-go/internal/service/pipeline"
)

// Loader builds a Snapshot from the persisted processed tables and publishes
// it through the holder. It is the pipeline's publish step and the startup
// warm load.
type Loader struct {
	store  storage.DatasetStore
	holder *Holder
}

func NewLoader(store storage.DatasetStore, holder *Holder) *Loader {
	return &Loader{store: store, holder: holder}
}

// Reload reads every processed table, applies the master join, and swaps in
// the new snapshot. Missing tables narrow the snapshot instead of failing it.
func (l *Loader) Reload(ctx context.Context) (string, error) {
	users := l.table(ctx, hr.SourceUsers)
	attendance := l.table(ctx, hr.SourceAttendance)
	leaves := l.table(ctx, hr.SourceLeaveApplications)
	balances := l.table(ctx, hr.SourceLeaveBalance)
	calendar := l.table(ctx, hr.TableCalendar)
	projects := l.table(ctx, hr.SourceProjects)
	allocations := l.table(ctx, hr.SourceAllocations)

	caser := cases.Title(language.English)

	snap := &Snapshot{
		ID:       uuid.NewString(),
		LoadedAt: time.Now().UTC(),
		Caps:     make(hr.CapabilitySet),
	}

	// Master data is the single source of truth for identity columns; the
	// full user list still serves email lookups (project owners may be
	// inactive).
	emailToName := make(map[string]string)
	master := make(map[string]hr.Employee)
	for _, row := range users.Rows {
		name := caser.String(cell(row, "employee_name"))
		if email := strings.ToLower(cell(row, "email")); email != "" {
			emailToName[email] = name
		}
		if cell(row, "employee_status") != hr.EmployeeStatusActive {
			continue
		}
		userID := cell(row, "user_id")
		if userID == "" {
			continue
		}
		emp := hr.Employee{
			UserID:         userID,
			EmployeeID:     cell(row, "employee_id"),
			Name:           name,
			Department:     caser.String(cell(row, "department_name")),
			Manager:        caser.String(cell(row, "reporting_manager_name")),
			EmploymentType: cell(row, "employment_type"),
			Designation:    cell(row, "designation"),
			Email:          cell(row, "email"),
			Status:         hr.EmployeeStatusActive,
		}
		master[userID] = emp
		snap.Employees = append(snap.Employees, emp)
	}

	// Identity columns already present on a source table are dropped before
	// the join so the master's values always win.
	masterCols := []string{"employee_name", "employee_id", "department_name",
		"reporting_manager_name", "employment_type", "designation", "employee_status"}
	attendance.DropColumns(masterCols...)
	leaves.DropColumns(masterCols...)
	balances.DropColumns(masterCols...)

	snap.Calendar = parseCalendar(calendar)
	byDate := make(map[string]hr.CalendarDay, len(snap.Calendar))
	for _, d := range snap.Calendar {
		byDate[d.Date.Format("2006-01-02")] = d
	}

	snap.Attendance = joinAttendance(attendance, master, byDate)
	snap.Leaves = joinLeaves(leaves, master)
	snap.Balances = joinBalances(balances, master)
	snap.Projects = parseProjects(projects, emailToName)
	snap.Allocations = parseAllocations(allocations)
	snap.Periods = BuildPeriodTree(snap.Calendar)

	snap.Caps[hr.CapAttendanceDerived] = attendance.HasColumn(pipeline.ColYearMonth) &&
		attendance.HasColumn(pipeline.ColWFHDays) &&
		attendance.HasColumn(pipeline.ColWFHBucket)
	snap.Caps[hr.CapLeaveDerived] = leaves.HasColumn(pipeline.ColLeaveCategory) &&
		leaves.HasColumn(pipeline.ColTotalLeaveDays)
	snap.Caps[hr.CapCalendar] = len(snap.Calendar) > 0
	snap.Caps[hr.CapProjects] = len(snap.Projects) > 0 && len(snap.Allocations) > 0

	l.holder.Publish(snap)
	slog.Info("dataset snapshot published",
		"snapshot_id", snap.ID,
		"active_employees", len(snap.Employees),
		"capabilities", snap.CapList())
	return snap.ID, nil
}

func (l *Loader) table(ctx context.Context, name string) *tabular.Table {
	exists, err := l.store.TableExists(ctx, name)
	if err == nil && !exists {
		slog.Warn("processed table missing, loading without it", "table", name)
		return tabular.New()
	}
	t, err := l.store.LoadTable(ctx, name)
	if err != nil {
		slog.Warn("failed to load processed table", "table", name, "error", err)
		return tabular.New()
	}
	return t
}

// joinAttendance inner-joins attendance to the active master and left-joins
// the calendar. Denormalized identity columns on the source rows are
// discarded in favor of the master's.
func joinAttendance(t *tabular.Table, master map[string]hr.Employee, byDate map[string]hr.CalendarDay) []hr.AttendanceRow {
	out := make([]hr.AttendanceRow, 0, t.Len())
	for _, row := range t.Rows {
		emp, ok := master[cell(row, "employee")]
		if !ok {
			continue
		}
		date, _ := pipeline.ParseDate(row["attendance_date"])

		presence := cell(row, "presence_type")
		if presence == "" {
			presence = hr.PresenceOnDuty
		}

		hours, hasHours := floatCell(row, "working_hours")
		wfhDays, _ := strconv.Atoi(cell(row, pipeline.ColWFHDays))

		day, onCalendar := byDate[date.Format("2006-01-02")]

		out = append(out, hr.AttendanceRow{
			Employee:      emp.UserID,
			Date:          date,
			PresenceType:  presence,
			Mode:          cell(row, "mode_of_attendance"),
			WorkflowState: cell(row, "workflow_state"),
			WorkingHours:  hours,
			HasHours:      hasHours,

			YearMonth:       cell(row, pipeline.ColYearMonth),
			WFHDays:         wfhDays,
			WFHBucket:       cell(row, pipeline.ColWFHBucket),
			OfficeHrsBucket: cell(row, pipeline.ColOfficeHrsBucket),
			IsWorkingDay:    onCalendar && day.IsWorkingDay,

			EmployeeID:     emp.EmployeeID,
			EmployeeName:   emp.Name,
			Department:     emp.Department,
			Manager:        emp.Manager,
			EmploymentType: emp.EmploymentType,
			Designation:    emp.Designation,
		})
	}
	return out
}

func joinLeaves(t *tabular.Table, master map[string]hr.Employee) []hr.LeaveRow {
	out := make([]hr.LeaveRow, 0, t.Len())
	invalid := 0
	for _, row := range t.Rows {
		emp, ok := master[cell(row, "employee")]
		if !ok {
			continue
		}
		applied, _ := pipeline.ParseDate(row["application_date"])
		from, fromOK := pipeline.ParseDate(row["from_date"])
		to, toOK := pipeline.ParseDate(row["to_date"])
		validRange := fromOK && toOK && !from.After(to)
		if !validRange {
			invalid++
		}

		rawDays, _ := floatCell(row, "total_leave_days")
		total := rawDays
		if v, ok := floatCell(row, pipeline.ColTotalLeaveDays); ok {
			total = v
		}

		out = append(out, hr.LeaveRow{
			Employee:        emp.UserID,
			ApplicationDate: applied,
			FromDate:        from,
			ToDate:          to,
			LeaveType:       cell(row, "leave_type"),
			Status:          cell(row, "status"),
			HalfDayFrom:     hr.IsHalfDayFlag(row["half_day_on_from_date"]),
			HalfDayTo:       hr.IsHalfDayFlag(row["half_day_on_to_date"]),
			RawDays:         rawDays,
			TotalDays:       total,
			Category:        cell(row, pipeline.ColLeaveCategory),
			ValidRange:      validRange,

			EmployeeID:     emp.EmployeeID,
			EmployeeName:   emp.Name,
			Department:     emp.Department,
			Manager:        emp.Manager,
			EmploymentType: emp.EmploymentType,
		})
	}
	if invalid > 0 {
		slog.Warn("leave rows with invalid date ranges kept for counting only", "rows", invalid)
	}
	return out
}

func joinBalances(t *tabular.Table, master map[string]hr.Employee) []hr.BalanceRow {
	out := make([]hr.BalanceRow, 0, t.Len())
	for _, row := range t.Rows {
		emp, ok := master[cell(row, "user_id")]
		if !ok {
			continue
		}
		from, _ := pipeline.ParseDate(row["leave_period_from"])
		to, _ := pipeline.ParseDate(row["leave_period_to"])
		total, _ := floatCell(row, "total_leaves")
		availed, _ := floatCell(row, "availed")
		balance, _ := floatCell(row, "balance")

		out = append(out, hr.BalanceRow{
			Employee:   emp.UserID,
			LeaveType:  cell(row, "leave_type"),
			PeriodFrom: from,
			PeriodTo:   to,
			Total:      total,
			Availed:    availed,
			Balance:    balance,

			EmployeeName:   emp.Name,
			Department:     emp.Department,
			Manager:        emp.Manager,
			EmploymentType: emp.EmploymentType,
		})
	}
	return out
}

func parseCalendar(t *tabular.Table) []hr.CalendarDay {
	out := make([]hr.CalendarDay, 0, t.Len())
	for _, row := range t.Rows {
		date, ok := pipeline.ParseDate(row[pipeline.ColDate])
		if !ok {
			continue
		}
		dayNo, _ := strconv.Atoi(cell(row, pipeline.ColDayNo))
		out = append(out, hr.CalendarDay{
			Date:         date,
			Day:          cell(row, pipeline.ColDay),
			DayNo:        dayNo,
			IsHoliday:    boolCellSet(row, pipeline.ColIsHoliday),
			IsWeekend:    boolCellSet(row, pipeline.ColIsWeekend),
			IsWorkingDay: boolCellSet(row, pipeline.ColIsWorkingDay),
		})
	}
	return out
}

// parseProjects resolves each project's manager display name from the full
// user list via the owner email.
func parseProjects(t *tabular.Table, emailToName map[string]string) []hr.ProjectRow {
	out := make([]hr.ProjectRow, 0, t.Len())
	for _, row := range t.Rows {
		owner := strings.ToLower(cell(row, "owner"))
		out = append(out, hr.ProjectRow{
			ID:          cell(row, "name"),
			Name:        cell(row, "project_name"),
			OwnerEmail:  owner,
			ManagerName: emailToName[owner],
		})
	}
	return out
}

// allocationEntry is one element of the encoded project_allocations column.
type allocationEntry struct {
	Project     string `json:"project"`
	ProjectName string `json:"project_name"`
}

func parseAllocations(t *tabular.Table) []hr.AllocationRow {
	var out []hr.AllocationRow
	for _, row := range t.Rows {
		userID := cell(row, "user_id")
		raw := row["project_allocations"]
		if userID == "" || raw == "" {
			continue
		}
		var entries []allocationEntry
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			slog.Warn("skipping unparseable project allocations", "user_id", userID, "error", err)
			continue
		}
		for _, e := range entries {
			out = append(out, hr.AllocationRow{
				Employee:    userID,
				ProjectID:   e.Project,
				ProjectName: e.ProjectName,
			})
		}
	}
	return out
}

func cell(row tabular.Row, name string) string {
	return strings.TrimSpace(row[name])
}

func floatCell(row tabular.Row, name string) (float64, bool) {
	raw := cell(row, name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func boolCellSet(row tabular.Row, name string) bool {
	return cell(row, name) == "1"
}
