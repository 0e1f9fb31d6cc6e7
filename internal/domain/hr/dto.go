package hr

import "github.com/qbadvisory/hr-analytics-go/internal/pkg/validator"

// FilterAll is the sentinel slicer value meaning "no restriction".
const FilterAll = "All"

// PeriodSelection is the hierarchical period chosen by the user.
// Year "All" (or empty) disables the period restriction entirely.
type PeriodSelection struct {
	Year    string   `json:"year"`
	Quarter string   `json:"quarter"`
	Months  []string `json:"months"`
}

// Filters are the categorical slicers. Every field is an independent
// equality predicate; FilterAll (or empty) is a no-op.
type Filters struct {
	Department     string `json:"department"`
	Employee       string `json:"employee"`
	Manager        string `json:"manager"`
	EmploymentType string `json:"employment_type"`
	LeaveType      string `json:"leave_type"`
	AttendanceMode string `json:"attendance_mode"`
	WorkflowState  string `json:"workflow_state"`
	Project        string `json:"project"`
	ProjectManager string `json:"project_manager"`
}

// TableResult is the narrowed row set for the query boundary.
type TableResult struct {
	Table string      `json:"table"`
	Count int         `json:"count"`
	Rows  interface{} `json:"rows"`
}

// Aggregate view names.
const (
	ViewTrend           = "trend"
	ViewUtilization     = "utilization"
	ViewTopUnplanned    = "top_unplanned"
	ViewForecast        = "forecast"
	ViewMatrix          = "matrix"
	ViewDailyAttendance = "daily_attendance"
	ViewWFHCompliance   = "wfh_compliance"
	ViewOfficeHours     = "office_hours"
	ViewOverview        = "overview"
)

// TrendPoint is one (month, category) cell of the leave trend chart.
type TrendPoint struct {
	Month    string `json:"month"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// UtilizationPoint is the monthly leave utilization impact.
type UtilizationPoint struct {
	Month           string  `json:"month"`
	LeaveHours      float64 `json:"total_leave_hours"`
	WorkingDays     int     `json:"working_days"`
	ActiveEmployees int     `json:"active_employees"`
	CapacityHours   float64 `json:"total_available_org_hours"`
	Percent         float64 `json:"leave_impact_percent"`
}

// TopLeaveTaker is one employee in the top-N unplanned-leave ranking.
type TopLeaveTaker struct {
	Employee     string  `json:"employee_name"`
	Applications int     `json:"leave_instances"`
	Days         float64 `json:"leave_days"`
}

// ForecastPoint is the availability forecast for one working day.
type ForecastPoint struct {
	Date      string `json:"date"`
	OnLeave   int    `json:"employees_on_leave"`
	Available int    `json:"available_employees"`
}

// MatrixRow is one leave type across all departments plus its row total.
type MatrixRow struct {
	LeaveType string    `json:"leave_type"`
	Cells     []float64 `json:"cells"`
	Total     float64   `json:"total"`
}

// MatrixResult is the leave-type x department pivot of summed leave days.
type MatrixResult struct {
	Departments []string    `json:"departments"`
	Rows        []MatrixRow `json:"rows"`
	Totals      []float64   `json:"totals"`
	GrandTotal  float64     `json:"grand_total"`
}

// DailyAttendancePoint is one (working day, presence type) cell.
type DailyAttendancePoint struct {
	Date         string `json:"date"`
	PresenceType string `json:"presence_type"`
	Count        int    `json:"count"`
}

// WFHCompliancePoint counts distinct employees per (month, WFH bucket).
type WFHCompliancePoint struct {
	Month     string `json:"month"`
	Bucket    string `json:"bucket"`
	Employees int    `json:"employees"`
}

// OfficeHoursPoint counts distinct WFO employees per office-hours bucket.
type OfficeHoursPoint struct {
	Bucket    string  `json:"bucket"`
	Employees int     `json:"employees"`
	AvgHours  float64 `json:"avg_office_hours"`
}

// Overview bundles the summary-tab charts, computed concurrently.
type Overview struct {
	Trend        []TrendPoint       `json:"trend"`
	Utilization  []UtilizationPoint `json:"utilization"`
	TopUnplanned []TopLeaveTaker    `json:"top_unplanned"`
}

// AggregateResult wraps one computed view. Available is false when a derived
// column the view depends on did not survive the pipeline; the payload is
// then empty and Reason says what was missing.
type AggregateResult struct {
	View      string `json:"view"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`

	Trend           []TrendPoint           `json:"trend,omitempty"`
	Utilization     []UtilizationPoint     `json:"utilization,omitempty"`
	TopUnplanned    []TopLeaveTaker        `json:"top_unplanned,omitempty"`
	Forecast        []ForecastPoint        `json:"forecast,omitempty"`
	Matrix          *MatrixResult          `json:"matrix,omitempty"`
	DailyAttendance []DailyAttendancePoint `json:"daily_attendance,omitempty"`
	WFHCompliance   []WFHCompliancePoint   `json:"wfh_compliance,omitempty"`
	OfficeHours     []OfficeHoursPoint     `json:"office_hours,omitempty"`
	Overview        *Overview              `json:"overview,omitempty"`
}

// Drill chart tags.
const (
	ChartDaily       = "daily"
	ChartWFH         = "wfh"
	ChartHours       = "hours"
	ChartTrend       = "trend"
	ChartUtilization = "utilization"
	ChartTop         = "top"
	ChartForecast    = "forecast"
)

// DrillRequest identifies one aggregate cell to resolve back to rows.
type DrillRequest struct {
	Chart    string          `json:"chart"`
	Bucket   string          `json:"bucket"`
	Month    string          `json:"month,omitempty"`    // "Jan 2006" label
	Date     string          `json:"date,omitempty"`     // "2006-01-02"
	Employee string          `json:"employee,omitempty"` // top-N drill
	Period   PeriodSelection `json:"period"`
	Filters  Filters         `json:"filters"`
}

var drillQuarters = []string{"Q1", "Q2", "Q3", "Q4"}

func (r *DrillRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Date != "" {
		if _, ok := validator.IsValidDate(r.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "Date must be in YYYY-MM-DD format",
			})
		}
	}
	if r.Month != "" {
		if _, ok := validator.IsValidMonthLabel(r.Month); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "month",
				Message: "Month must be a label like Nov 2025",
			})
		}
	}
	if q := r.Period.Quarter; q != "" && q != FilterAll && !validator.IsInSlice(q, drillQuarters) {
		errs = append(errs, validator.ValidationError{
			Field:   "quarter",
			Message: "Quarter must be one of Q1, Q2, Q3, Q4",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AttendanceDrillRow is one attendance-side drill-through row.
type AttendanceDrillRow struct {
	UserID       string   `json:"user_id"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName string   `json:"employee_name"`
	Department   string   `json:"department"`
	Designation  string   `json:"designation"`
	Date         string   `json:"date,omitempty"`
	PresenceType string   `json:"presence_type,omitempty"`
	WorkingHours *float64 `json:"working_hours,omitempty"`
	WFHDays      *int     `json:"wfh_days,omitempty"`
}

// LeaveDrillRow is one leave-side drill-through row.
type LeaveDrillRow struct {
	UserID       string  `json:"user_id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Status       string  `json:"status"`
	FromDate     string  `json:"from_date"`
	ToDate       string  `json:"to_date"`
	TotalDays    float64 `json:"total_leave_days"`
	Category     string  `json:"category"`
}

// DrillResult is the resolved row set for one aggregate cell.
type DrillResult struct {
	Chart      string               `json:"chart"`
	Bucket     string               `json:"bucket"`
	Title      string               `json:"title"`
	Count      int                  `json:"count"`
	Attendance []AttendanceDrillRow `json:"attendance_rows,omitempty"`
	Leaves     []LeaveDrillRow      `json:"leave_rows,omitempty"`
}

// PeriodQuarter is one quarter node of the period tree.
type PeriodQuarter struct {
	Name   string   `json:"name"`
	Months []string `json:"months"`
}

// PeriodYear is one year node of the period tree.
type PeriodYear struct {
	Year     string          `json:"year"`
	Quarters []PeriodQuarter `json:"quarters"`
}

// FilterOptions lists the distinct values available per slicer.
type FilterOptions struct {
	Departments     []string `json:"departments"`
	Employees       []string `json:"employees"`
	Managers        []string `json:"managers"`
	EmploymentTypes []string `json:"employment_types"`
	LeaveTypes      []string `json:"leave_types"`
	AttendanceModes []string `json:"attendance_modes"`
	WorkflowStates  []string `json:"workflow_states"`
	Projects        []string `json:"projects"`
	ProjectManagers []string `json:"project_managers"`
}

// SnapshotStatus reports the currently published dataset.
type SnapshotStatus struct {
	SnapshotID string         `json:"snapshot_id"`
	LoadedAt   string         `json:"loaded_at"`
	RowCounts  map[string]int `json:"row_counts"`
	Caps       []string       `json:"capabilities"`
}

// SourceReport is the per-source outcome of one pipeline run.
type SourceReport struct {
	Source  string `json:"source"`
	Fetched bool   `json:"fetched"`
	Rows    int    `json:"rows"`
	Error   string `json:"error,omitempty"`
}

// RunReport summarizes one ETL run.
type RunReport struct {
	StartedAt  string         `json:"started_at"`
	FinishedAt string         `json:"finished_at"`
	Sources    []SourceReport `json:"sources"`
	SnapshotID string         `json:"snapshot_id,omitempty"`
}
