package fs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"account-chart/internal/clients_api/history"
)

// HistorySnapshotFile is the file name of the last fetched balance history inside the data dir.
const HistorySnapshotFile = "balance_history.json"

// HistorySnapshot is the on-disk form of a fetched history.
type HistorySnapshot struct {
	FetchedAt string                  `json:"fetched_at"` // RFC3339
	Source    string                  `json:"source"`
	History   *history.BalanceHistory `json:"history"`
}

// ErrNoSnapshot is returned by LoadHistorySnapshot when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no balance history snapshot saved")

// SaveHistorySnapshot writes h to <dataDir>/balance_history.json via a temp file and rename.
func SaveHistorySnapshot(dataDir, source string, h *history.BalanceHistory) (string, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	snap := HistorySnapshot{
		FetchedAt: time.Now().Format(time.RFC3339),
		Source:    source,
		History:   h,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal balance history snapshot: %w", err)
	}

	path := filepath.Join(dataDir, HistorySnapshotFile)
	tmp, err := os.CreateTemp(dataDir, HistorySnapshotFile+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary snapshot file: %w", err)
	}
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write temporary snapshot file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to set snapshot permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to rename temporary snapshot file: %w", err)
	}
	return path, nil
}

// LoadHistorySnapshot reads and validates the saved snapshot.
func LoadHistorySnapshot(dataDir string) (*HistorySnapshot, error) {
	path := filepath.Join(dataDir, HistorySnapshotFile)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap HistorySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}
	if snap.History == nil {
		return nil, fmt.Errorf("snapshot %s has no history", path)
	}
	if err := snap.History.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// EnsureDir creates dir and returns it, used for chart and export output.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return dir, nil
}

// CheckNonEmpty fails when path is missing or zero bytes, removing an empty file.
func CheckNonEmpty(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		_ = os.Remove(path)
		return 0, fmt.Errorf("%s is empty after writing", path)
	}
	return info.Size(), nil
}
