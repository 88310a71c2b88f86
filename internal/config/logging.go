package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const (
	logFilePrefix     = "server-"
	logFileTimeLayout = "2006-01-02T15-04-05"
)

// SetupLogFile opens LOG_DIR/server-<timestamp>.log and prunes the directory down to
// the maxFiles newest logs. The caller closes the file.
func SetupLogFile(dir string, maxFiles int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := filepath.Join(dir, logFilePrefix+time.Now().Format(logFileTimeLayout)+".log")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if err := pruneLogs(dir, maxFiles); err != nil {
		// logging still works with a full directory
		fmt.Fprintf(os.Stderr, "warning: prune logs in %s: %v\n", dir, err)
	}
	return f, nil
}

// pruneLogs removes the oldest server logs. Timestamped names sort chronologically.
func pruneLogs(dir string, maxFiles int) error {
	logs, err := filepath.Glob(filepath.Join(dir, logFilePrefix+"*.log"))
	if err != nil {
		return err
	}
	if maxFiles < 1 || len(logs) <= maxFiles {
		return nil
	}

	slices.Sort(logs)
	for _, old := range logs[:len(logs)-maxFiles] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("remove %s: %w", old, err)
		}
	}
	return nil
}
