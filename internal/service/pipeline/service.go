package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/hrapi"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/storage"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/tabular"
)

// Fetcher retrieves one raw source payload from the HR API.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// Publisher rebuilds the dataset snapshot from the persisted tables and
// atomically publishes it, returning the new snapshot id.
type Publisher interface {
	Reload(ctx context.Context) (string, error)
}

type PipelineServiceImpl struct {
	fetcher             Fetcher
	store               storage.DatasetStore
	optionalHolidayList string
	publisher           Publisher
	running             atomic.Bool
}

// NewPipelineService wires the ETL cycle. A nil fetcher skips the extract
// phase and re-transforms whatever is already staged.
func NewPipelineService(fetcher Fetcher, store storage.DatasetStore, optionalHolidayList string, publisher Publisher) hr.PipelineService {
	return &PipelineServiceImpl{
		fetcher:             fetcher,
		store:               store,
		optionalHolidayList: optionalHolidayList,
		publisher:           publisher,
	}
}

// Run executes extract -> transform -> calendar -> publish. No source
// failure aborts the run; each failure narrows the dataset and is reported.
func (s *PipelineServiceImpl) Run(ctx context.Context) (hr.RunReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return hr.RunReport{}, hr.ErrRefreshInProgress
	}
	defer s.running.Store(false)

	report := hr.RunReport{StartedAt: time.Now().UTC().Format(time.RFC3339)}
	reports := make(map[string]*hr.SourceReport, len(hrapi.Sources))
	for _, source := range hrapi.Sources {
		reports[source] = &hr.SourceReport{Source: source}
	}

	s.extract(ctx, reports)
	tables := s.transform(ctx, reports)
	s.buildCalendar(ctx, tables)

	if s.publisher != nil {
		snapshotID, err := s.publisher.Reload(ctx)
		if err != nil {
			slog.Error("failed to publish dataset snapshot", "error", err)
		} else {
			report.SnapshotID = snapshotID
		}
	}

	for _, source := range hrapi.Sources {
		report.Sources = append(report.Sources, *reports[source])
	}
	report.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	return report, nil
}

// extract fetches every source concurrently and stages the raw payloads.
// Fetch failures keep the previous staging file.
func (s *PipelineServiceImpl) extract(ctx context.Context, reports map[string]*hr.SourceReport) {
	if s.fetcher == nil {
		return
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, source := range hrapi.Sources {
		source := source
		g.Go(func() error {
			payload, err := s.fetcher.Fetch(gctx, source)
			if err != nil {
				slog.Warn("source fetch failed", "source", source, "error", err)
				mu.Lock()
				reports[source].Error = err.Error()
				mu.Unlock()
				return nil
			}
			if _, err := s.store.SaveRaw(gctx, source, payload, time.Now()); err != nil {
				slog.Warn("failed to stage raw payload", "source", source, "error", err)
				mu.Lock()
				reports[source].Error = err.Error()
				mu.Unlock()
				return nil
			}
			mu.Lock()
			reports[source].Fetched = true
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
}

// transform normalizes and derives each staged source and persists the
// processed table. A parse failure yields an empty table; a derivation
// failure keeps the partially derived table.
func (s *PipelineServiceImpl) transform(ctx context.Context, reports map[string]*hr.SourceReport) map[string]*tabular.Table {
	tables := make(map[string]*tabular.Table, len(hrapi.Sources))
	for _, source := range hrapi.Sources {
		raw, err := s.store.LoadLatestRaw(ctx, source)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			slog.Warn("failed to read staged payload", "source", source, "error", err)
			continue
		}

		var t *tabular.Table
		if source == hr.SourceLeaveBalance {
			t, err = NormalizeBalances(raw)
		} else {
			t, err = NormalizeGeneric(raw)
		}
		if err != nil {
			slog.Warn("source normalization failed", "source", source, "error", err)
			reports[source].Error = err.Error()
			t = tabular.New()
		}

		if err := Derive(source, t); err != nil {
			slog.Warn("column derivation failed", "source", source, "error", err)
		}

		if err := s.store.SaveTable(ctx, source, t); err != nil {
			slog.Error("failed to persist table", "source", source, "error", err)
			continue
		}
		reports[source].Rows = t.Len()
		tables[source] = t
	}
	return tables
}

func (s *PipelineServiceImpl) buildCalendar(ctx context.Context, tables map[string]*tabular.Table) {
	leaves := s.tableOrLoad(ctx, tables, hr.SourceLeaveApplications)
	holidays := s.tableOrLoad(ctx, tables, hr.SourceHolidays)

	cal := BuildCalendar(leaves, holidays, s.optionalHolidayList)
	if err := s.store.SaveTable(ctx, hr.TableCalendar, cal); err != nil {
		slog.Error("failed to persist calendar", "error", err)
	}
}

// tableOrLoad prefers a table transformed in this run, falling back to the
// persisted copy from a previous run.
func (s *PipelineServiceImpl) tableOrLoad(ctx context.Context, tables map[string]*tabular.Table, name string) *tabular.Table {
	if t, ok := tables[name]; ok {
		return t
	}
	t, err := s.store.LoadTable(ctx, name)
	if err != nil {
		return tabular.New()
	}
	return t
}
