package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	at := time.Date(2026, 10, 19, 8, 30, 5, 0, time.FixedZone("IST", 5*3600+1800))
	require.Equal(t, "exports/2026/10/19/030005-Itakarlapalli_Data.xlsx", ObjectKey(at, "Itakarlapalli_Data.xlsx"))
}

func TestNewMinIOStorageRequiresEndpoint(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), MinIOConfig{Bucket: "b"})
	require.Error(t, err)
	require.False(t, MinIOConfig{}.Enabled())
}
