package bus

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"agro-telemetry-backend/internal/model"
	"agro-telemetry-backend/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	dsn := "file:listener_" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.Machine{}, &model.Reading{}))
	return store.NewGormStore(db)
}

func TestHandleAppendsReadingAndRegistersMachine(t *testing.T) {
	s := newTestStore(t)
	listener := NewListener(s)
	ctx := context.Background()
	receivedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	listener.Handle(ctx, "agro/12/telemetry", []byte(`{"metric":"vibration","value":64.2,"ts":"2024-03-01T11:45:00Z"}`), receivedAt)

	readings, err := s.QueryReadings(ctx, 12, store.ReadingFilter{})
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "vibration", readings[0].Metric)
	assert.Equal(t, 64.2, readings[0].Value)

	machines, err := s.ListMachines(ctx)
	require.NoError(t, err)
	require.Len(t, machines, 1)
	assert.Equal(t, int64(12), machines[0].ID)
	assert.Equal(t, "Machine 12", machines[0].Name)
	assert.Equal(t, "online", machines[0].Status)
	require.NotNil(t, machines[0].LastSeen)
	assert.Equal(t, time.Date(2024, 3, 1, 11, 45, 0, 0, time.UTC).Unix(), machines[0].LastSeen.Unix())
}

func TestHandleDefaultsToReceiptTime(t *testing.T) {
	s := newTestStore(t)
	listener := NewListener(s)
	ctx := context.Background()
	receivedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	listener.Handle(ctx, "agro/7/telemetry", []byte(`{"metric":"rpm","value":1500}`), receivedAt)

	machines, err := s.ListMachines(ctx)
	require.NoError(t, err)
	require.Len(t, machines, 1)
	assert.Equal(t, receivedAt.Unix(), machines[0].LastSeen.Unix())
}

func TestHandleDropsUndecodableMessages(t *testing.T) {
	s := newTestStore(t)
	listener := NewListener(s)
	ctx := context.Background()
	now := time.Now().UTC()

	listener.Handle(ctx, "agro/tractor/telemetry", []byte(`{"metric":"rpm","value":1500}`), now)
	listener.Handle(ctx, "agro/8/telemetry", []byte(`not json`), now)

	machines, err := s.ListMachines(ctx)
	require.NoError(t, err)
	assert.Empty(t, machines)

	readings, err := s.QueryReadings(ctx, 8, store.ReadingFilter{})
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestHandleRefreshesExistingMachineOnly(t *testing.T) {
	s := newTestStore(t)
	listener := NewListener(s)
	ctx := context.Background()
	first := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.TouchMachine(ctx, 3, "Sprayer North", first, "maintenance"))

	listener.Handle(ctx, "agro/3/telemetry", []byte(`{"metric":"oil_level","value":73}`), first.Add(time.Hour))

	machines, err := s.ListMachines(ctx)
	require.NoError(t, err)
	require.Len(t, machines, 1)
	// Name and operational status survive ingestion; only last_seen moves.
	assert.Equal(t, "Sprayer North", machines[0].Name)
	assert.Equal(t, "maintenance", machines[0].Status)
	assert.Equal(t, first.Add(time.Hour).Unix(), machines[0].LastSeen.Unix())
}
