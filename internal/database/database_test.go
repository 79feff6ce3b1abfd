package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpenBoltCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "patients.db")
	db, err := OpenBolt(path, time.Second)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestConnectPostgresRejectsBadURL(t *testing.T) {
	_, err := ConnectPostgres(context.Background(), "://not-a-url", time.Second)
	require.Error(t, err)
}

func TestConnectMongoWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ConnectMongoWithRetry(ctx, "mongodb://127.0.0.1:1", 50*time.Millisecond, 3)
	require.Error(t, err)
}
