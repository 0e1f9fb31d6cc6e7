package storage

import (
	"context"
	"errors"
	"time"

	"github.com/qbadvisory/hr-analytics-go/internal/pkg/tabular"
)

// ErrNotFound is returned when no staged payload or persisted table exists
// for a source.
var ErrNotFound = errors.New("no stored data for source")

// DatasetStore persists the two dataset boundaries: raw staged payloads
// (timestamped, latest wins) and processed normalized tables keyed by source
// name.
type DatasetStore interface {
	// SaveRaw stages a fetched payload and returns its path.
	SaveRaw(ctx context.Context, source string, payload []byte, fetchedAt time.Time) (string, error)

	// LoadLatestRaw returns the most recently staged payload for a source.
	LoadLatestRaw(ctx context.Context, source string) ([]byte, error)

	// SaveTable persists a processed table under the source name.
	SaveTable(ctx context.Context, name string, t *tabular.Table) error

	// LoadTable reads a processed table; ErrNotFound when absent.
	LoadTable(ctx context.Context, name string) (*tabular.Table, error)

	// TableExists checks whether a processed table has been persisted.
	TableExists(ctx context.Context, name string) (bool, error)
}
