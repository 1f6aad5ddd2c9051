package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emailscheduler/internal/clock"
	"emailscheduler/internal/config"
	"emailscheduler/internal/model"
)

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{
		Store:  config.StoreConfig{Driver: config.StoreSQLite},
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "events.db")},
	}
	ctx := context.Background()

	stores, err := Open(ctx, cfg, clock.MustLoad("Asia/Singapore"))
	require.NoError(t, err)
	defer stores.Close()

	_, err = stores.Events.Create(ctx, model.NewEvent{Subject: "s", Content: "c", DueAt: time.Now()})
	require.NoError(t, err)

	events, err := stores.Events.List(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestOpenMemory(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreMemory}}

	stores, err := Open(context.Background(), cfg, clock.Zone{})
	require.NoError(t, err)
	assert.NoError(t, stores.Close())
}

func TestOpenUnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "mongo"}}

	_, err := Open(context.Background(), cfg, clock.Zone{})
	assert.Error(t, err)
}
