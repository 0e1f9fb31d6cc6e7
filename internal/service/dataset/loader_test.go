package dataset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/storage"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/tabular"
)

func tableOf(columns []string, rows ...tabular.Row) *tabular.Table {
	t := tabular.New(columns...)
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func seedStore(t *testing.T) *storage.LocalStore {
	t.Helper()
	ctx := context.Background()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	users := tableOf(
		[]string{"user_id", "employee_id", "employee_name", "department_name",
			"reporting_manager_name", "employment_type", "designation", "email", "employee_status"},
		tabular.Row{"user_id": "asha@qb.example", "employee_id": "EMP-001",
			"employee_name": "asha rao", "department_name": "ADVISORY",
			"reporting_manager_name": "meera iyer", "employment_type": "Full-time",
			"designation": "Consultant", "email": "asha@qb.example", "employee_status": "Active"},
		tabular.Row{"user_id": "ravi@qb.example", "employee_id": "EMP-002",
			"employee_name": "ravi menon", "department_name": "advisory",
			"employee_status": "Active", "email": "ravi@qb.example"},
		tabular.Row{"user_id": "gone@qb.example", "employee_id": "EMP-003",
			"employee_name": "gone person", "employee_status": "Left", "email": "gone@qb.example"},
	)
	require.NoError(t, store.SaveTable(ctx, hr.SourceUsers, users))

	attendance := tableOf(
		[]string{"employee", "attendance_date", "presence_type", "mode_of_attendance",
			"working_hours", "workflow_state", "year_month", "wfh_days", "wfh_bucket", "office_hrs_bucket"},
		tabular.Row{"employee": "asha@qb.example", "attendance_date": "2025-11-03",
			"presence_type": "Work From Home", "working_hours": "8",
			"year_month": "2025-11", "wfh_days": "3", "wfh_bucket": hr.WFHBucketLow},
		tabular.Row{"employee": "asha@qb.example", "attendance_date": "2025-11-04",
			"presence_type": "", "working_hours": "",
			"year_month": "2025-11", "wfh_days": "3", "wfh_bucket": hr.WFHBucketLow},
		tabular.Row{"employee": "gone@qb.example", "attendance_date": "2025-11-03",
			"presence_type": "Work From Office", "working_hours": "8",
			"year_month": "2025-11", "wfh_days": "0", "wfh_bucket": hr.WFHBucketLow},
	)
	require.NoError(t, store.SaveTable(ctx, hr.SourceAttendance, attendance))

	// The first row carries stale denormalized identity columns; the join
	// must drop them in favor of the master's.
	leaves := tableOf(
		[]string{"employee", "employee_name", "department_name", "application_date",
			"from_date", "to_date", "leave_type",
			"status", "half_day_on_from_date", "half_day_on_to_date", "total_leave_days",
			"leave_application_category", "total_leave_days_calc"},
		tabular.Row{"employee": "asha@qb.example", "employee_name": "A. Rao (stale)",
			"department_name": "Old Dept", "application_date": "2025-11-01",
			"from_date": "2025-11-10", "to_date": "2025-11-11", "leave_type": "Earned Leave",
			"status": "Approved", "total_leave_days": "2",
			"leave_application_category": hr.CategoryBeforeAvailing, "total_leave_days_calc": "2"},
		tabular.Row{"employee": "ravi@qb.example", "application_date": "2025-11-12",
			"from_date": "2025-11-20", "to_date": "2025-11-18", "leave_type": "Sick Leave",
			"status": "Open", "total_leave_days": "1",
			"leave_application_category": hr.CategoryPostAvailing, "total_leave_days_calc": "1"},
	)
	require.NoError(t, store.SaveTable(ctx, hr.SourceLeaveApplications, leaves))

	balances := tableOf(
		[]string{"user_id", "employee", "leave_type", "leave_period_from", "leave_period_to",
			"total_leaves", "availed", "balance"},
		tabular.Row{"user_id": "asha@qb.example", "employee": "EMP-001",
			"leave_type": "Earned Leave", "leave_period_from": "2025-01-01",
			"leave_period_to": "2025-12-31", "total_leaves": "18", "availed": "6", "balance": "12"},
	)
	require.NoError(t, store.SaveTable(ctx, hr.SourceLeaveBalance, balances))

	calendar := tableOf(
		[]string{"date", "day", "day_no", "is_holiday", "is_weekend", "is_working_day"},
		tabular.Row{"date": "2025-11-03", "day": "Monday", "day_no": "1",
			"is_holiday": "0", "is_weekend": "0", "is_working_day": "1"},
		tabular.Row{"date": "2025-11-08", "day": "Saturday", "day_no": "6",
			"is_holiday": "0", "is_weekend": "1", "is_working_day": "0"},
	)
	require.NoError(t, store.SaveTable(ctx, hr.TableCalendar, calendar))

	projects := tableOf(
		[]string{"name", "project_name", "owner"},
		tabular.Row{"name": "PRJ-1", "project_name": "Atlas", "owner": "GONE@qb.example"},
	)
	require.NoError(t, store.SaveTable(ctx, hr.SourceProjects, projects))

	allocations := tableOf(
		[]string{"user_id", "project_allocations"},
		tabular.Row{"user_id": "asha@qb.example",
			"project_allocations": `[{"project":"PRJ-1","project_name":"Atlas"}]`},
		tabular.Row{"user_id": "ravi@qb.example", "project_allocations": "not json"},
	)
	require.NoError(t, store.SaveTable(ctx, hr.SourceAllocations, allocations))

	return store
}

func TestLoaderReload(t *testing.T) {
	store := seedStore(t)
	holder := NewHolder()
	loader := NewLoader(store, holder)

	id, err := loader.Reload(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	snap, err := holder.Current()
	require.NoError(t, err)
	assert.Equal(t, id, snap.ID)

	// Inactive users never enter the master.
	require.Len(t, snap.Employees, 2)
	assert.Equal(t, "Asha Rao", snap.Employees[0].Name)
	assert.Equal(t, "Advisory", snap.Employees[0].Department)
	assert.Equal(t, "Meera Iyer", snap.Employees[0].Manager)

	// Attendance inner join drops the inactive employee's rows; blank
	// presence defaults at join time.
	require.Len(t, snap.Attendance, 2)
	assert.Equal(t, "Asha Rao", snap.Attendance[0].EmployeeName)
	assert.True(t, snap.Attendance[0].IsWorkingDay)
	assert.True(t, snap.Attendance[0].HasHours)
	assert.Equal(t, hr.PresenceOnDuty, snap.Attendance[1].PresenceType)
	assert.False(t, snap.Attendance[1].HasHours)
	assert.False(t, snap.Attendance[1].IsWorkingDay, "dates off the calendar are not working days")

	require.Len(t, snap.Leaves, 2)
	assert.Equal(t, "Asha Rao", snap.Leaves[0].EmployeeName)
	assert.Equal(t, "Advisory", snap.Leaves[0].Department)
	assert.True(t, snap.Leaves[0].ValidRange)
	assert.Equal(t, 2.0, snap.Leaves[0].TotalDays)
	assert.False(t, snap.Leaves[1].ValidRange, "inverted ranges are kept but flagged")

	require.Len(t, snap.Balances, 1)
	assert.Equal(t, 12.0, snap.Balances[0].Balance)
	assert.Equal(t, "Asha Rao", snap.Balances[0].EmployeeName)

	require.Len(t, snap.Calendar, 2)

	// Owner resolution uses the full user list, case-insensitively, so an
	// inactive project owner still gets a display name.
	require.Len(t, snap.Projects, 1)
	assert.Equal(t, "Gone Person", snap.Projects[0].ManagerName)

	require.Len(t, snap.Allocations, 1)
	assert.Equal(t, "PRJ-1", snap.Allocations[0].ProjectID)

	assert.True(t, snap.Caps.Has(hr.CapAttendanceDerived))
	assert.True(t, snap.Caps.Has(hr.CapLeaveDerived))
	assert.True(t, snap.Caps.Has(hr.CapCalendar))
	assert.True(t, snap.Caps.Has(hr.CapProjects))

	assert.Equal(t, 2, snap.RowCounts()[hr.SourceAttendance])
}

func TestLoaderReloadWithMissingTables(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	holder := NewHolder()

	_, err = NewLoader(store, holder).Reload(context.Background())
	require.NoError(t, err)

	snap, err := holder.Current()
	require.NoError(t, err)
	assert.Empty(t, snap.Employees)
	assert.False(t, snap.Caps.Has(hr.CapAttendanceDerived))
	assert.False(t, snap.Caps.Has(hr.CapCalendar))
	assert.Empty(t, snap.Periods)
}

func TestHolderBeforeFirstLoad(t *testing.T) {
	_, err := NewHolder().Current()
	assert.ErrorIs(t, err, hr.ErrNoSnapshot)
}
