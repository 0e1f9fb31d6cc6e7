package hr

import (
	"time"
)

// Source names as configured against the HR API. Each maps to one staged raw
// payload and one processed table.
const (
	SourceUsers             = "users_details"
	SourceAttendance        = "attendance"
	SourceLeaveApplications = "leave_applications"
	SourceLeaveBalance      = "leave_balance"
	SourceHolidays          = "holidays"
	SourceProjects          = "projects_details"
	SourceAllocations       = "project_allocations"
	SourceManagers          = "managers"
	SourceTimesheet         = "timesheet"

	// TableCalendar is derived during transform, not fetched.
	TableCalendar = "date_table"
)

// Presence type classifications for an employee-day.
const (
	PresenceWorkFromOffice   = "Work From Office"
	PresenceWorkFromHome     = "Work From Home"
	PresenceWorkFromAnywhere = "Work From Anywhere"
	PresenceOnDuty           = "On Duty"
	PresenceMissedEntry      = "Missed Entry"
	PresenceOnLeave          = "On Leave"
)

// PresenceTypes is the fixed category set daily-attendance charts reindex
// over, so zero-count cells render as zero instead of going missing.
var PresenceTypes = []string{
	PresenceWorkFromOffice,
	PresenceWorkFromHome,
	PresenceWorkFromAnywhere,
	PresenceOnDuty,
	PresenceMissedEntry,
	PresenceOnLeave,
}

// Derived bucket and category labels.
const (
	WFHBucketHigh = "WFH > 9"
	WFHBucketLow  = "WFH ≤ 9"

	OfficeBucketUnder3 = "< 3 hours"
	OfficeBucket3To6   = "3–6 hours"
	OfficeBucket6Plus  = "6+ hours"

	CategoryBeforeAvailing = "Applied Before Availing"
	CategoryPostAvailing   = "Applied Post Availing"
)

// OfficeBuckets in display order.
var OfficeBuckets = []string{OfficeBucketUnder3, OfficeBucket3To6, OfficeBucket6Plus}

// LeaveCategories in display order.
var LeaveCategories = []string{CategoryBeforeAvailing, CategoryPostAvailing}

// WFHBuckets in display order.
var WFHBuckets = []string{WFHBucketHigh, WFHBucketLow}

// Leave application statuses that count toward utilization and forecast.
const (
	StatusApproved = "Approved"
	StatusOpen     = "Open"
)

// EmployeeStatusActive marks the only population counted in organizational
// aggregates.
const EmployeeStatusActive = "Active"

// Employee is one row of the reconciled master list. Master data is the
// single source of truth for names, departments and managers post-join.
type Employee struct {
	UserID         string `json:"user_id"`
	EmployeeID     string `json:"employee_id"`
	Name           string `json:"employee_name"`
	Department     string `json:"department"`
	Manager        string `json:"reporting_manager"`
	EmploymentType string `json:"employment_type"`
	Designation    string `json:"designation"`
	Email          string `json:"email"`
	Status         string `json:"status"`
}

// AttendanceRow is one employee-day attendance record after derivation and
// the master/calendar joins.
type AttendanceRow struct {
	Employee      string    `json:"employee"`
	Date          time.Time `json:"date"`
	PresenceType  string    `json:"presence_type"`
	Mode          string    `json:"mode_of_attendance"`
	WorkflowState string    `json:"workflow_state"`
	WorkingHours  float64   `json:"working_hours"`
	HasHours      bool      `json:"-"`

	YearMonth       string `json:"year_month"`
	WFHDays         int    `json:"wfh_days"`
	WFHBucket       string `json:"wfh_bucket"`
	OfficeHrsBucket string `json:"office_hrs_bucket,omitempty"`
	IsWorkingDay    bool   `json:"is_working_day"`

	EmployeeID     string `json:"employee_id"`
	EmployeeName   string `json:"employee_name"`
	Department     string `json:"department"`
	Manager        string `json:"reporting_manager"`
	EmploymentType string `json:"employment_type"`
	Designation    string `json:"designation"`
}

// LeaveRow is one leave application after derivation and the master join.
type LeaveRow struct {
	Employee        string    `json:"employee"`
	ApplicationDate time.Time `json:"application_date"`
	FromDate        time.Time `json:"from_date"`
	ToDate          time.Time `json:"to_date"`
	LeaveType       string    `json:"leave_type"`
	Status          string    `json:"status"`
	HalfDayFrom     bool      `json:"half_day_on_from_date"`
	HalfDayTo       bool      `json:"half_day_on_to_date"`
	RawDays         float64   `json:"raw_leave_days"`

	TotalDays float64 `json:"total_leave_days"`
	Category  string  `json:"leave_application_category"`

	// ValidRange is false when from_date > to_date or a bound is missing;
	// such rows still count but are never expanded into day ranges.
	ValidRange bool `json:"-"`

	EmployeeID     string `json:"employee_id"`
	EmployeeName   string `json:"employee_name"`
	Department     string `json:"department"`
	Manager        string `json:"reporting_manager"`
	EmploymentType string `json:"employment_type"`
}

// BalanceRow is one leave-balance entry. Purely informational.
type BalanceRow struct {
	Employee   string    `json:"employee"`
	LeaveType  string    `json:"leave_type"`
	PeriodFrom time.Time `json:"period_from"`
	PeriodTo   time.Time `json:"period_to"`
	Total      float64   `json:"total_leaves"`
	Availed    float64   `json:"leave_availed"`
	Balance    float64   `json:"leave_balance"`

	EmployeeName   string `json:"employee_name"`
	Department     string `json:"department"`
	Manager        string `json:"reporting_manager"`
	EmploymentType string `json:"employment_type"`
}

// CalendarDay classifies one day of the canonical calendar.
type CalendarDay struct {
	Date         time.Time `json:"date"`
	Day          string    `json:"day"`
	DayNo        int       `json:"day_no"`
	IsHoliday    bool      `json:"is_holiday"`
	IsWeekend    bool      `json:"is_weekend"`
	IsWorkingDay bool      `json:"is_working_day"`
}

// AllocationRow maps an employee to one allocated project.
type AllocationRow struct {
	Employee    string `json:"employee"`
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
}

// ProjectRow is one project with its manager resolved from the user list.
type ProjectRow struct {
	ID          string `json:"project_id"`
	Name        string `json:"project_name"`
	OwnerEmail  string `json:"owner_email"`
	ManagerName string `json:"project_manager"`
}

// Capability names a derived-column group the aggregation layer may require.
// Missing capabilities make the dependent metrics explicitly unavailable
// instead of being probed for at each call site.
type Capability string

const (
	CapAttendanceDerived Capability = "attendance_derived"
	CapLeaveDerived      Capability = "leave_derived"
	CapCalendar          Capability = "calendar"
	CapProjects          Capability = "projects"
)

// CapabilitySet records which derived-column groups survived the pipeline.
type CapabilitySet map[Capability]bool

func (c CapabilitySet) Has(cap Capability) bool {
	return c[cap]
}

// MonthKey derives the (year, month-name) period key used by the hierarchy
// index, e.g. "2025_November".
func MonthKey(t time.Time) string {
	return t.Format("2006") + "_" + t.Month().String()
}

// MonthLabel is the display form of a month, e.g. "Nov 2025".
func MonthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}
