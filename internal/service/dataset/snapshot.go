package dataset

import (
	"sync/atomic"
	"time"

	"github.com/qbadvisory/hr-analytics-go/internal/domain/hr"
)

// Snapshot is one immutable, fully joined view of the dataset. Queries and
// aggregates read a single snapshot for their whole lifetime; a refresh
// builds a new one and swaps the holder pointer.
type Snapshot struct {
	ID       string
	LoadedAt time.Time

	Employees   []hr.Employee // active master, post title-casing
	Attendance  []hr.AttendanceRow
	Leaves      []hr.LeaveRow
	Balances    []hr.BalanceRow
	Calendar    []hr.CalendarDay
	Projects    []hr.ProjectRow
	Allocations []hr.AllocationRow

	Periods []hr.PeriodYear
	Caps    hr.CapabilitySet
}

// RowCounts reports per-table sizes for the status endpoint.
func (s *Snapshot) RowCounts() map[string]int {
	return map[string]int{
		hr.SourceUsers:             len(s.Employees),
		hr.SourceAttendance:        len(s.Attendance),
		hr.SourceLeaveApplications: len(s.Leaves),
		hr.SourceLeaveBalance:      len(s.Balances),
		hr.TableCalendar:           len(s.Calendar),
		hr.SourceProjects:          len(s.Projects),
		hr.SourceAllocations:       len(s.Allocations),
	}
}

// CapList lists the granted capabilities in a stable order.
func (s *Snapshot) CapList() []string {
	all := []hr.Capability{hr.CapAttendanceDerived, hr.CapLeaveDerived, hr.CapCalendar, hr.CapProjects}
	out := make([]string, 0, len(all))
	for _, c := range all {
		if s.Caps.Has(c) {
			out = append(out, string(c))
		}
	}
	return out
}

// Holder publishes the current snapshot atomically.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the published snapshot, or ErrNoSnapshot before the first
// successful load.
func (h *Holder) Current() (*Snapshot, error) {
	s := h.current.Load()
	if s == nil {
		return nil, hr.ErrNoSnapshot
	}
	return s, nil
}

func (h *Holder) Publish(s *Snapshot) {
	h.current.Store(s)
}
