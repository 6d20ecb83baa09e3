package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// inFlight holds uploads saved but not yet cleaned up by their import.
// SweepStale never touches them, whatever their age.
var inFlight = struct {
	sync.Mutex
	paths map[string]struct{}
}{paths: make(map[string]struct{})}

func uploadKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func holdUpload(path string) {
	inFlight.Lock()
	defer inFlight.Unlock()
	inFlight.paths[uploadKey(path)] = struct{}{}
}

func releaseUpload(path string) {
	inFlight.Lock()
	defer inFlight.Unlock()
	delete(inFlight.paths, uploadKey(path))
}

func uploadHeld(path string) bool {
	inFlight.Lock()
	defer inFlight.Unlock()
	_, ok := inFlight.paths[uploadKey(path)]
	return ok
}

// SaveUpload copies src into dir under a fresh random name and returns the
// new path. On failure nothing is left behind. The file is held against
// SweepStale until a Processor cleans it up.
func SaveUpload(dir string, src io.Reader) (string, error) {
	path := filepath.Join(dir, uuid.NewString()+".csv")
	holdUpload(path)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		releaseUpload(path)
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(path)
		releaseUpload(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		releaseUpload(path)
		return "", fmt.Errorf("close upload: %w", err)
	}
	return path, nil
}

// SweepStale removes upload files older than maxAge that no import is still
// processing. It returns the number of files removed; individual failures
// are logged and skipped.
func SweepStale(dir string, maxAge time.Duration, logger *zap.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read upload dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if uploadHeld(path) {
			continue
		}
		if err := os.Remove(path); err != nil {
			cleanupFailures.Inc()
			logger.Warn("failed to remove stale upload", zap.String("path", path), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}
