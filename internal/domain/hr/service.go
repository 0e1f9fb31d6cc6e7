package hr

import "context"

// AnalyticsService answers parameterized queries over the published
// dataset snapshot. Every method observes one consistent snapshot.
type AnalyticsService interface {
	// Query narrows a table by period + categorical filters.
	Query(ctx context.Context, table string, period PeriodSelection, filters Filters) (TableResult, error)

	// Aggregate computes a named view over the narrowed tables.
	Aggregate(ctx context.Context, view string, period PeriodSelection, filters Filters) (AggregateResult, error)

	// Drill resolves an aggregate cell back to its constituent rows.
	Drill(ctx context.Context, req DrillRequest) (DrillResult, error)

	// FilterOptions lists the distinct slicer values of the snapshot.
	FilterOptions(ctx context.Context) (FilterOptions, error)

	// PeriodTree returns the Year -> Quarter -> Month hierarchy.
	PeriodTree(ctx context.Context) ([]PeriodYear, error)

	// Status describes the published snapshot.
	Status(ctx context.Context) (SnapshotStatus, error)
}

// PipelineService runs the extract/transform/load cycle and publishes a new
// snapshot. Soft failures narrow the dataset, they never abort the run.
type PipelineService interface {
	Run(ctx context.Context) (RunReport, error)
}
