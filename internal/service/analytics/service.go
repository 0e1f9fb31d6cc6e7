package analytics

import (
	"context"
	"time"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
	"github.com/qbadvisory/hr-analytics-go/internal/service/dataset"
)

type AnalyticsServiceImpl struct {
	holder *dataset.Holder
}

func NewAnalyticsService(holder *dataset.Holder) hr.AnalyticsService {
	return &AnalyticsServiceImpl{holder: holder}
}

func (s *AnalyticsServiceImpl) Query(ctx context.Context, table string, period hr.PeriodSelection, filters hr.Filters) (hr.TableResult, error) {
	snap, err := s.holder.Current()
	if err != nil {
		return hr.TableResult{}, err
	}
	sc := newScope(snap, period, filters)

	res := hr.TableResult{Table: table}
	switch table {
	case hr.SourceAttendance:
		rows := sc.Attendance()
		res.Count, res.Rows = len(rows), rows
	case hr.SourceLeaveApplications:
		rows := sc.Leaves()
		res.Count, res.Rows = len(rows), rows
	case hr.SourceLeaveBalance:
		rows := sc.Balances()
		res.Count, res.Rows = len(rows), rows
	case hr.SourceUsers:
		rows := sc.Employees()
		res.Count, res.Rows = len(rows), rows
	case hr.TableCalendar:
		rows := sc.CalendarDays()
		res.Count, res.Rows = len(rows), rows
	default:
		return hr.TableResult{}, hr.ErrUnknownTable
	}
	return res, nil
}

// viewCaps maps each aggregate view to the derived-column groups it needs.
var viewCaps = map[string][]hr.Capability{
	hr.ViewTrend:           {hr.CapLeaveDerived},
	hr.ViewUtilization:     {hr.CapLeaveDerived, hr.CapCalendar},
	hr.ViewTopUnplanned:    {hr.CapLeaveDerived},
	hr.ViewForecast:        {hr.CapCalendar},
	hr.ViewMatrix:          {hr.CapLeaveDerived},
	hr.ViewDailyAttendance: {hr.CapCalendar},
	hr.ViewWFHCompliance:   {hr.CapAttendanceDerived},
	hr.ViewOfficeHours:     {hr.CapAttendanceDerived},
	hr.ViewOverview:        {hr.CapLeaveDerived, hr.CapCalendar},
}

func (s *AnalyticsServiceImpl) Aggregate(ctx context.Context, view string, period hr.PeriodSelection, filters hr.Filters) (hr.AggregateResult, error) {
	snap, err := s.holder.Current()
	if err != nil {
		return hr.AggregateResult{}, err
	}
	caps, known := viewCaps[view]
	if !known {
		return hr.AggregateResult{}, hr.ErrUnknownView
	}

	res := hr.AggregateResult{View: view, Available: true}
	for _, c := range caps {
		if !snap.Caps.Has(c) {
			res.Available = false
			res.Reason = "missing capability: " + string(c)
			return res, nil
		}
	}

	sc := newScope(snap, period, filters)
	switch view {
	case hr.ViewTrend:
		res.Trend = trendView(sc)
	case hr.ViewUtilization:
		res.Utilization = utilizationView(sc)
	case hr.ViewTopUnplanned:
		res.TopUnplanned = topUnplannedView(sc)
	case hr.ViewForecast:
		res.Forecast = forecastView(sc)
	case hr.ViewMatrix:
		res.Matrix = matrixView(sc)
	case hr.ViewDailyAttendance:
		res.DailyAttendance = dailyAttendanceView(sc)
	case hr.ViewWFHCompliance:
		res.WFHCompliance = wfhComplianceView(sc)
	case hr.ViewOfficeHours:
		res.OfficeHours = officeHoursView(sc)
	case hr.ViewOverview:
		res.Overview = overviewView(sc)
	}
	return res, nil
}

// chartCaps mirrors viewCaps for drill-through charts.
var chartCaps = map[string][]hr.Capability{
	hr.ChartDaily:       {hr.CapCalendar},
	hr.ChartWFH:         {hr.CapAttendanceDerived},
	hr.ChartHours:       {hr.CapAttendanceDerived},
	hr.ChartTrend:       {hr.CapLeaveDerived},
	hr.ChartUtilization: {hr.CapLeaveDerived},
	hr.ChartTop:         {hr.CapLeaveDerived},
	hr.ChartForecast:    {hr.CapCalendar},
}

func (s *AnalyticsServiceImpl) Drill(ctx context.Context, req hr.DrillRequest) (hr.DrillResult, error) {
	if err := req.Validate(); err != nil {
		return hr.DrillResult{}, err
	}
	snap, err := s.holder.Current()
	if err != nil {
		return hr.DrillResult{}, err
	}
	caps, known := chartCaps[req.Chart]
	if !known {
		return hr.DrillResult{}, hr.ErrUnknownChart
	}
	for _, c := range caps {
		if !snap.Caps.Has(c) {
			return hr.DrillResult{Chart: req.Chart, Bucket: req.Bucket}, nil
		}
	}

	sc := newScope(snap, req.Period, req.Filters)
	switch req.Chart {
	case hr.ChartDaily:
		return drillDaily(sc, req)
	case hr.ChartWFH:
		return drillWFH(sc, req)
	case hr.ChartHours:
		return drillHours(sc, req)
	case hr.ChartTrend:
		return drillTrend(sc, req)
	case hr.ChartUtilization:
		return drillUtilization(sc, req)
	case hr.ChartTop:
		return drillTop(sc, req)
	default:
		return drillForecast(sc, req)
	}
}

func (s *AnalyticsServiceImpl) FilterOptions(ctx context.Context) (hr.FilterOptions, error) {
	snap, err := s.holder.Current()
	if err != nil {
		return hr.FilterOptions{}, err
	}

	departments := make(map[string]bool)
	employees := make(map[string]bool)
	managers := make(map[string]bool)
	types := make(map[string]bool)
	for _, e := range snap.Employees {
		setIf(departments, e.Department)
		setIf(employees, e.Name)
		setIf(managers, e.Manager)
		setIf(types, e.EmploymentType)
	}

	leaveTypes := make(map[string]bool)
	for _, row := range snap.Leaves {
		setIf(leaveTypes, row.LeaveType)
	}

	modes := make(map[string]bool)
	states := make(map[string]bool)
	for _, row := range snap.Attendance {
		setIf(modes, row.Mode)
		setIf(states, row.WorkflowState)
	}

	projects := make(map[string]bool)
	for _, a := range snap.Allocations {
		setIf(projects, a.ProjectName)
	}
	projectManagers := make(map[string]bool)
	for _, p := range snap.Projects {
		setIf(projectManagers, p.ManagerName)
	}

	return hr.FilterOptions{
		Departments:     sortedKeys(departments),
		Employees:       sortedKeys(employees),
		Managers:        sortedKeys(managers),
		EmploymentTypes: sortedKeys(types),
		LeaveTypes:      sortedKeys(leaveTypes),
		AttendanceModes: sortedKeys(modes),
		WorkflowStates:  sortedKeys(states),
		Projects:        sortedKeys(projects),
		ProjectManagers: sortedKeys(projectManagers),
	}, nil
}

func (s *AnalyticsServiceImpl) PeriodTree(ctx context.Context) ([]hr.PeriodYear, error) {
	snap, err := s.holder.Current()
	if err != nil {
		return nil, err
	}
	return snap.Periods, nil
}

func (s *AnalyticsServiceImpl) Status(ctx context.Context) (hr.SnapshotStatus, error) {
	snap, err := s.holder.Current()
	if err != nil {
		return hr.SnapshotStatus{}, err
	}
	return hr.SnapshotStatus{
		SnapshotID: snap.ID,
		LoadedAt:   snap.LoadedAt.Format(time.RFC3339),
		RowCounts:  snap.RowCounts(),
		Caps:       snap.CapList(),
	}, nil
}

func setIf(set map[string]bool, v string) {
	if v != "" {
		set[v] = true
	}
}
