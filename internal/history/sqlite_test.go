package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T) Service {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")
	svc, err := NewService(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestRecordAndRecent(t *testing.T) {
	svc := newTestHistory(t)
	ctx := context.Background()

	first, err := svc.Record(ctx, Event{
		App:       "HoloMotion",
		Operation: OpInstall,
		Channel:   "release",
		ToVersion: "v1.0.0",
		Strategy:  "checkout",
		CreatedAt: time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Positive(t, first)

	_, err = svc.Record(ctx, Event{
		App:         "HoloMotion",
		Operation:   OpUpgrade,
		Channel:     "release",
		FromVersion: "v1.0.0",
		ToVersion:   "v1.1.0",
		Status:      StatusFailed,
		Message:     "all checkout strategies failed",
	})
	require.NoError(t, err)

	_, err = svc.Record(ctx, Event{App: "HoloMotion_Test", Operation: OpUninstall})
	require.NoError(t, err)

	events, err := svc.Recent(ctx, "HoloMotion", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, OpUpgrade, events[0].Operation)
	assert.Equal(t, StatusFailed, events[0].Status)
	assert.Equal(t, "v1.0.0", events[0].FromVersion)
	assert.Equal(t, "all checkout strategies failed", events[0].Message)
	assert.False(t, events[0].CreatedAt.IsZero())

	assert.Equal(t, OpInstall, events[1].Operation)
	assert.Equal(t, StatusSuccess, events[1].Status)
	assert.Equal(t, "checkout", events[1].Strategy)
	assert.True(t, events[1].CreatedAt.Equal(time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)))
}

func TestRecentLimit(t *testing.T) {
	svc := newTestHistory(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Record(ctx, Event{App: "HoloMotion", Operation: OpUpgrade})
		require.NoError(t, err)
	}

	events, err := svc.Recent(ctx, "HoloMotion", 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)

	all, err := svc.Recent(ctx, "HoloMotion", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestRecentUnknownApp(t *testing.T) {
	svc := newTestHistory(t)
	events, err := svc.Recent(context.Background(), "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRecordValidates(t *testing.T) {
	svc := newTestHistory(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, Event{Operation: OpInstall})
	assert.Error(t, err)

	_, err = svc.Record(ctx, Event{App: "HoloMotion"})
	assert.Error(t, err)
}

func TestNewServiceRequiresPath(t *testing.T) {
	_, err := NewService("  ")
	assert.Error(t, err)
}

func TestReopenKeepsEvents(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	svc, err := NewService(dbPath)
	require.NoError(t, err)
	_, err = svc.Record(ctx, Event{App: "HoloMotion", Operation: OpInstall, ToVersion: "v2.0.0"})
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	_, err = os.Stat(dbPath)
	require.NoError(t, err)

	reopened, err := NewService(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	events, err := reopened.Recent(ctx, "HoloMotion", 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "v2.0.0", events[0].ToVersion)
}
