package analytics

import (
	"time"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
	"github.com/qbadvisory/hr-analytics-go/internal/service/dataset"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func calDay(t time.Time, working bool) hr.CalendarDay {
	return hr.CalendarDay{
		Date:         t,
		Day:          t.Weekday().String(),
		DayNo:        hr.ISOWeekday(t),
		IsWeekend:    hr.ISOWeekday(t) >= 6,
		IsWorkingDay: working,
	}
}

func attRow(emp, name, dept string, date time.Time, presence, mode string, hours float64, wfhDays int) hr.AttendanceRow {
	row := hr.AttendanceRow{
		Employee:       emp,
		Date:           date,
		PresenceType:   presence,
		Mode:           mode,
		WorkflowState:  "HR Approved",
		WorkingHours:   hours,
		HasHours:       hours > 0,
		YearMonth:      date.Format("2006-01"),
		WFHDays:        wfhDays,
		WFHBucket:      hr.WFHBucketFor(wfhDays),
		EmployeeName:   name,
		Department:     dept,
		Manager:        "Meera Iyer",
		EmploymentType: "Full-time",
		IsWorkingDay:   true,
	}
	if presence == hr.PresenceWorkFromOffice && hours > 0 {
		row.OfficeHrsBucket = hr.OfficeHoursBucketFor(hours)
	}
	return row
}

func leaveRow(emp, name, dept, leaveType, status, category string, from, to time.Time, days float64, valid bool) hr.LeaveRow {
	return hr.LeaveRow{
		Employee:       emp,
		FromDate:       from,
		ToDate:         to,
		LeaveType:      leaveType,
		Status:         status,
		TotalDays:      days,
		Category:       category,
		ValidRange:     valid,
		EmployeeName:   name,
		Department:     dept,
		Manager:        "Meera Iyer",
		EmploymentType: "Full-time",
	}
}

// testSnapshot covers October through December 2025: two fully working late
// October days, the first full November week, and one December weekend (a
// month in range with zero working days).
func testSnapshot() *dataset.Snapshot {
	calendar := []hr.CalendarDay{
		calDay(day(2025, 10, 30), true),
		calDay(day(2025, 10, 31), true),
		calDay(day(2025, 11, 3), true),
		calDay(day(2025, 11, 4), true),
		calDay(day(2025, 11, 5), true),
		calDay(day(2025, 11, 6), true),
		calDay(day(2025, 11, 7), true),
		calDay(day(2025, 11, 8), false),
		calDay(day(2025, 11, 9), false),
		calDay(day(2025, 12, 6), false),
		calDay(day(2025, 12, 7), false),
	}

	snap := &dataset.Snapshot{
		ID:       "snap-test",
		LoadedAt: day(2025, 11, 10),
		Employees: []hr.Employee{
			{UserID: "asha@qb.example", EmployeeID: "EMP-001", Name: "Asha Rao",
				Department: "Advisory", Manager: "Meera Iyer", EmploymentType: "Full-time"},
			{UserID: "ravi@qb.example", EmployeeID: "EMP-002", Name: "Ravi Menon",
				Department: "Advisory", Manager: "Meera Iyer", EmploymentType: "Full-time"},
			{UserID: "meera@qb.example", EmployeeID: "EMP-003", Name: "Meera Iyer",
				Department: "Technology", Manager: "Meera Iyer", EmploymentType: "Full-time"},
		},
		Attendance: []hr.AttendanceRow{
			attRow("asha@qb.example", "Asha Rao", "Advisory", day(2025, 11, 3), hr.PresenceWorkFromOffice, "Biometric", 8, 2),
			attRow("asha@qb.example", "Asha Rao", "Advisory", day(2025, 11, 4), hr.PresenceWorkFromHome, "Web", 7, 2),
			attRow("asha@qb.example", "Asha Rao", "Advisory", day(2025, 11, 5), hr.PresenceWorkFromHome, "Web", 7, 2),
			attRow("ravi@qb.example", "Ravi Menon", "Advisory", day(2025, 11, 3), hr.PresenceWorkFromOffice, "Web", 2, 0),
			attRow("meera@qb.example", "Meera Iyer", "Technology", day(2025, 11, 3), hr.PresenceWorkFromOffice, "Biometric", 4, 12),
		},
		Leaves: []hr.LeaveRow{
			leaveRow("asha@qb.example", "Asha Rao", "Advisory", "Earned Leave", hr.StatusApproved,
				hr.CategoryBeforeAvailing, day(2025, 11, 4), day(2025, 11, 5), 2, true),
			leaveRow("ravi@qb.example", "Ravi Menon", "Advisory", "Sick Leave", hr.StatusOpen,
				hr.CategoryPostAvailing, day(2025, 11, 5), day(2025, 11, 5), 1, true),
			leaveRow("ravi@qb.example", "Ravi Menon", "Advisory", "Sick Leave", hr.StatusApproved,
				hr.CategoryPostAvailing, day(2025, 11, 6), day(2025, 11, 6), 1, true),
			leaveRow("meera@qb.example", "Meera Iyer", "Technology", "Casual Leave", hr.StatusApproved,
				hr.CategoryPostAvailing, day(2025, 10, 30), day(2025, 10, 30), 0.5, true),
			// Inverted range: counts toward totals, never expands into days.
			leaveRow("asha@qb.example", "Asha Rao", "Advisory", "Sick Leave", hr.StatusApproved,
				hr.CategoryPostAvailing, day(2025, 11, 20), day(2025, 11, 18), 1, false),
			// Rejected and cancelled applications: visible to tables and the
			// matrix, excluded from trend, utilization, top-N and forecast.
			leaveRow("meera@qb.example", "Meera Iyer", "Technology", "Casual Leave", "Rejected",
				hr.CategoryPostAvailing, day(2025, 11, 6), day(2025, 11, 7), 2, true),
			leaveRow("meera@qb.example", "Meera Iyer", "Technology", "Earned Leave", "Cancelled",
				hr.CategoryBeforeAvailing, day(2025, 11, 7), day(2025, 11, 7), 1, true),
		},
		Calendar: calendar,
		Projects: []hr.ProjectRow{
			{ID: "PRJ-1", Name: "Atlas", OwnerEmail: "meera@qb.example", ManagerName: "Meera Iyer"},
		},
		Allocations: []hr.AllocationRow{
			{Employee: "asha@qb.example", ProjectID: "PRJ-1", ProjectName: "Atlas"},
		},
		Caps: hr.CapabilitySet{
			hr.CapAttendanceDerived: true,
			hr.CapLeaveDerived:      true,
			hr.CapCalendar:          true,
			hr.CapProjects:          true,
		},
	}
	snap.Periods = dataset.BuildPeriodTree(calendar)
	return snap
}

func testService() hr.AnalyticsService {
	holder := dataset.NewHolder()
	holder.Publish(testSnapshot())
	return NewAnalyticsService(holder)
}
