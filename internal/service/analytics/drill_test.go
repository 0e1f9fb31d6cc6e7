package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/validator"
)

func TestDrillDailyMatchesAggregate(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	period := hr.PeriodSelection{Year: "2025", Quarter: "Q4", Months: []string{"November"}}

	agg, err := svc.Aggregate(ctx, hr.ViewDailyAttendance, period, hr.Filters{})
	require.NoError(t, err)

	// Every cell's drill count equals the displayed aggregate count.
	for _, cell := range agg.DailyAttendance {
		drill, err := svc.Drill(ctx, hr.DrillRequest{
			Chart:  hr.ChartDaily,
			Bucket: cell.PresenceType,
			Date:   cell.Date,
			Period: period,
		})
		require.NoError(t, err)
		assert.Equal(t, cell.Count, drill.Count, "cell %s/%s", cell.Date, cell.PresenceType)
	}
}

func TestDrillTrendMatchesAggregate(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	agg, err := svc.Aggregate(ctx, hr.ViewTrend, hr.PeriodSelection{}, hr.Filters{})
	require.NoError(t, err)

	for _, cell := range agg.Trend {
		drill, err := svc.Drill(ctx, hr.DrillRequest{
			Chart:  hr.ChartTrend,
			Bucket: cell.Category,
			Month:  cell.Month,
		})
		require.NoError(t, err)
		assert.Equal(t, cell.Count, drill.Count, "cell %s/%s", cell.Month, cell.Category)
	}
}

func TestDrillWFHMatchesAggregate(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	agg, err := svc.Aggregate(ctx, hr.ViewWFHCompliance, hr.PeriodSelection{}, hr.Filters{})
	require.NoError(t, err)

	for _, cell := range agg.WFHCompliance {
		drill, err := svc.Drill(ctx, hr.DrillRequest{
			Chart:  hr.ChartWFH,
			Bucket: cell.Bucket,
			Month:  cell.Month,
		})
		require.NoError(t, err)
		assert.Equal(t, cell.Employees, drill.Count, "cell %s/%s", cell.Month, cell.Bucket)
		for _, row := range drill.Attendance {
			require.NotNil(t, row.WFHDays)
		}
	}
}

func TestDrillHoursMatchesAggregate(t *testing.T) {
	svc := testService()
	ctx := context.Background()

	agg, err := svc.Aggregate(ctx, hr.ViewOfficeHours, hr.PeriodSelection{}, hr.Filters{})
	require.NoError(t, err)

	for _, cell := range agg.OfficeHours {
		drill, err := svc.Drill(ctx, hr.DrillRequest{Chart: hr.ChartHours, Bucket: cell.Bucket})
		require.NoError(t, err)
		assert.Equal(t, cell.Employees, drill.Count, "bucket %s", cell.Bucket)
	}
}

func TestDrillForecastMatchesAggregate(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	period := hr.PeriodSelection{Year: "2025", Quarter: "Q4", Months: []string{"November"}}

	agg, err := svc.Aggregate(ctx, hr.ViewForecast, period, hr.Filters{})
	require.NoError(t, err)

	for _, point := range agg.Forecast {
		drill, err := svc.Drill(ctx, hr.DrillRequest{
			Chart:  hr.ChartForecast,
			Date:   point.Date,
			Period: period,
		})
		require.NoError(t, err)
		assert.Equal(t, point.OnLeave, drill.Count, "date %s", point.Date)
	}
}

func TestDrillTop(t *testing.T) {
	svc := testService()

	drill, err := svc.Drill(context.Background(), hr.DrillRequest{
		Chart:    hr.ChartTop,
		Employee: "Ravi Menon",
	})
	require.NoError(t, err)
	require.Equal(t, 2, drill.Count)
	for _, row := range drill.Leaves {
		assert.Equal(t, "Ravi Menon", row.EmployeeName)
		assert.Equal(t, hr.CategoryPostAvailing, row.Category)
	}
}

func TestDrillUtilizationMonth(t *testing.T) {
	svc := testService()

	drill, err := svc.Drill(context.Background(), hr.DrillRequest{
		Chart: hr.ChartUtilization,
		Month: "Nov 2025",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, drill.Count)
}

func TestDrillSkipsRejectedAndCancelledLeaves(t *testing.T) {
	svc := testService()

	// Meera's rejected and cancelled November applications appear in
	// neither the trend nor the utilization drill tables.
	drill, err := svc.Drill(context.Background(), hr.DrillRequest{
		Chart:  hr.ChartTrend,
		Bucket: hr.CategoryPostAvailing,
		Month:  "Nov 2025",
	})
	require.NoError(t, err)
	require.Equal(t, 3, drill.Count)
	for _, row := range drill.Leaves {
		assert.True(t, hr.CountsTowardLeave(row.Status), "status %s", row.Status)
	}

	drill, err = svc.Drill(context.Background(), hr.DrillRequest{
		Chart: hr.ChartUtilization,
		Month: "Nov 2025",
	})
	require.NoError(t, err)
	require.Equal(t, 4, drill.Count)
	for _, row := range drill.Leaves {
		assert.True(t, hr.CountsTowardLeave(row.Status), "status %s", row.Status)
	}
}

func TestDrillRequiresBucket(t *testing.T) {
	svc := testService()

	_, err := svc.Drill(context.Background(), hr.DrillRequest{
		Chart: hr.ChartDaily,
		Date:  "2025-11-03",
	})
	assert.ErrorIs(t, err, hr.ErrMissingBucket)
}

func TestDrillUnknownChart(t *testing.T) {
	svc := testService()

	_, err := svc.Drill(context.Background(), hr.DrillRequest{Chart: "pie"})
	assert.ErrorIs(t, err, hr.ErrUnknownChart)
}

func TestDrillRejectsMalformedTargets(t *testing.T) {
	svc := testService()

	_, err := svc.Drill(context.Background(), hr.DrillRequest{
		Chart:  hr.ChartDaily,
		Bucket: hr.PresenceWorkFromOffice,
		Date:   "03-11-2025",
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "date")

	_, err = svc.Drill(context.Background(), hr.DrillRequest{
		Chart:  hr.ChartWFH,
		Bucket: hr.WFHBucketHigh,
		Month:  "November 2025",
	})
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "month")
}
