package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/qbadvisory/hr-analytics-go/internal/pkg/tabular"
)

// LocalStore keeps the dataset on the local filesystem:
// <base>/raw/<source>_<YYYYMMDD>_<HHMMSS>.json and
// <base>/processed/<name>.csv.
type LocalStore struct {
	rawDir       string
	processedDir string
}

func NewLocalStore(basePath string) (*LocalStore, error) {
	rawDir := filepath.Join(basePath, "raw")
	processedDir := filepath.Join(basePath, "processed")
	for _, dir := range []string{rawDir, processedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return &LocalStore{rawDir: rawDir, processedDir: processedDir}, nil
}

func sanitize(name string) string {
	return filepath.Base(filepath.Clean(name))
}

func (s *LocalStore) SaveRaw(ctx context.Context, source string, payload []byte, fetchedAt time.Time) (string, error) {
	name := fmt.Sprintf("%s_%s.json", sanitize(source), fetchedAt.Format("20060102_150405"))
	path := filepath.Join(s.rawDir, name)
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return "", fmt.Errorf("failed to stage raw payload: %w", err)
	}
	return path, nil
}

func (s *LocalStore) LoadLatestRaw(ctx context.Context, source string) ([]byte, error) {
	pattern := filepath.Join(s.rawDir, sanitize(source)+"_*.json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list staged payloads: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	// The timestamp suffix sorts lexicographically, so the last match is the
	// most recent staging file.
	sort.Strings(matches)
	data, err := os.ReadFile(matches[len(matches)-1])
	if err != nil {
		return nil, fmt.Errorf("failed to read staged payload: %w", err)
	}
	return data, nil
}

func (s *LocalStore) tablePath(name string) string {
	return filepath.Join(s.processedDir, sanitize(name)+".csv")
}

func (s *LocalStore) SaveTable(ctx context.Context, name string, t *tabular.Table) error {
	var buf strings.Builder
	if err := t.WriteCSV(&buf); err != nil {
		return fmt.Errorf("failed to encode table %s: %w", name, err)
	}
	if err := os.WriteFile(s.tablePath(name), []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to persist table %s: %w", name, err)
	}
	return nil
}

func (s *LocalStore) LoadTable(ctx context.Context, name string) (*tabular.Table, error) {
	f, err := os.Open(s.tablePath(name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open table %s: %w", name, err)
	}
	defer f.Close()

	t, err := tabular.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode table %s: %w", name, err)
	}
	return t, nil
}

func (s *LocalStore) TableExists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(s.tablePath(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
