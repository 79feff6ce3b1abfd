package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// OpenBolt opens (creating if needed) the bbolt file at path. bbolt holds an
// exclusive file lock, so a second process waits up to timeout and then fails.
func OpenBolt(path string, timeout time.Duration) (*bolt.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("bolt dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("bolt open: %w", err)
	}
	return db, nil
}
