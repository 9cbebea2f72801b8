/*
Package csvfile persists the roster and both ledgers as flat UTF-8 CSV
files whose columns are the canonical external contract.

DISCIPLINE:
  Read the entire file, compute in memory, write the entire file. Every
  write goes to a temp file in the same directory and is renamed over the
  target, so a crash mid-write leaves either the old or the new complete
  file - never a partial one.

FILE LAYOUT (under one data directory):
  influencer.csv          roster (read-only for this system)
  assignment_history.csv  assignment ledger
  execution_status.csv    execution ledger

A missing ledger file reads as an empty ledger; a missing roster file is a
fatal error. Malformed rows are fatal too - they indicate an environment
problem, not user input.
*/
package csvfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Default file names within the data directory.
const (
	RosterFileName     = "influencer.csv"
	AssignmentFileName = "assignment_history.csv"
	ExecutionFileName  = "execution_status.csv"
)

// writeFileAtomic replaces path with data via write-to-temp-then-rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
