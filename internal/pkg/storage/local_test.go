package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbadvisory/hr-analytics-go/internal/pkg/tabular"
)

func TestLocalStoreRawLatestWins(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	_, err = store.SaveRaw(ctx, "attendance", []byte(`{"v":1}`), base)
	require.NoError(t, err)
	_, err = store.SaveRaw(ctx, "attendance", []byte(`{"v":2}`), base.Add(time.Hour))
	require.NoError(t, err)

	got, err := store.LoadLatestRaw(ctx, "attendance")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))
}

func TestLocalStoreRawMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.LoadLatestRaw(context.Background(), "holidays")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreTableRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	tbl := tabular.New("employee", "presence_type")
	tbl.Append(tabular.Row{"employee": "EMP-1", "presence_type": "Work From Home"})
	require.NoError(t, store.SaveTable(ctx, "attendance", tbl))

	exists, err := store.TableExists(ctx, "attendance")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := store.LoadTable(ctx, "attendance")
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "Work From Home", got.Rows[0]["presence_type"])

	_, err = store.LoadTable(ctx, "date_table")
	assert.ErrorIs(t, err, ErrNotFound)
}
