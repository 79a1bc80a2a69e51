package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRun(mode string, matches int, started time.Time) Run {
	return Run{
		ID:             uuid.New().String(),
		StartedAt:      started,
		Duration:       125 * time.Millisecond,
		StartDir:       "/tmp/project",
		Mode:           mode,
		MatchCount:     matches,
		EntriesVisited: matches * 10,
		Completed:      true,
	}
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		dbPath  string
		wantErr bool
	}{
		{
			name:    "creates database successfully",
			dbPath:  filepath.Join(t.TempDir(), "history.db"),
			wantErr: false,
		},
		{
			name:    "handles in-memory database",
			dbPath:  ":memory:",
			wantErr: false,
		},
		{
			name:    "creates parent directories if needed",
			dbPath:  filepath.Join(t.TempDir(), "nested", "dir", "history.db"),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.dbPath)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, store)
			defer store.Close()
		})
	}
}

func TestRecordAndList(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	older := testRun("name=main.go", 3, base)
	newer := testRun("type=exec", 1, base.Add(time.Hour))
	require.NoError(t, store.Record(ctx, older))
	require.NoError(t, store.Record(ctx, newer))

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, older.ID, runs[1].ID)

	got := runs[1]
	assert.Equal(t, "name=main.go", got.Mode)
	assert.Equal(t, 3, got.MatchCount)
	assert.Equal(t, 30, got.EntriesVisited)
	assert.Equal(t, 125*time.Millisecond, got.Duration)
	assert.Equal(t, "/tmp/project", got.StartDir)
	assert.True(t, got.Completed)
	assert.True(t, got.StartedAt.Equal(base), "StartedAt = %v, want %v", got.StartedAt, base)
}

func TestListLimit(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, testRun("type=dir", i, base.Add(time.Duration(i)*time.Minute))))
	}

	runs, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Equal(t, 4, runs[0].MatchCount, "most recent run first")
}

func TestStats(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, store.Record(ctx, testRun("type=exec", 2, base)))
	require.NoError(t, store.Record(ctx, testRun("type=exec", 1, base.Add(time.Minute))))

	aborted := testRun("regex=\\.go$", 0, base.Add(2*time.Minute))
	aborted.Completed = false
	aborted.Error = "read directory /tmp/project/locked: permission denied"
	require.NoError(t, store.Record(ctx, aborted))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalRuns)
	assert.Equal(t, 3, stats.TotalMatches)
	assert.Equal(t, 1, stats.Aborted)
	assert.Equal(t, 2, stats.RunsPerMode["type=exec"])
	assert.Equal(t, 1, stats.RunsPerMode["regex=\\.go$"])
}

func TestStatsEmptyStore(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalRuns)
	assert.Equal(t, 0, stats.TotalMatches)
	assert.Empty(t, stats.RunsPerMode)
}

func TestClearAll(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Now().UTC()
	require.NoError(t, store.Record(ctx, testRun("type=dir", 1, base)))
	require.NoError(t, store.Record(ctx, testRun("type=dir", 2, base.Add(time.Minute))))

	deleted, err := store.Clear(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestClearOlderThan(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	old := testRun("type=dir", 1, base)
	recent := testRun("type=dir", 2, base.Add(48*time.Hour))
	require.NoError(t, store.Record(ctx, old))
	require.NoError(t, store.Record(ctx, recent))

	cutoff := base.Add(24 * time.Hour)
	deleted, err := store.Clear(ctx, &cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, recent.ID, runs[0].ID)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), testRun("name=foo", 1, time.Now().UTC())))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
