package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fjacquet/pdf-ledger/internal/logging"
	"fjacquet/pdf-ledger/internal/models"
)

// Layout of the data directory.
const (
	ProcessedDir = "processed"
	RawDir       = "raw"
	SnapshotFile = "categorized_transactions.json"
	FAQFile      = "financial_analysis_qa.json"
)

// ErrSnapshotNotFound is returned by Load when no ledger has been processed.
var ErrSnapshotNotFound = errors.New("no processed transactions found")

// SnapshotStore persists the latest processed ledger as a single JSON array.
// The most recent Save is the sole source of truth.
type SnapshotStore struct {
	dir    string
	logger logging.Logger
	mu     sync.RWMutex
}

// NewSnapshotStore creates a store rooted at dataDir.
func NewSnapshotStore(dataDir string, logger logging.Logger) *SnapshotStore {
	if dataDir == "" {
		dataDir = "data"
	}
	return &SnapshotStore{dir: dataDir, logger: logging.OrDefault(logger)}
}

// Dir returns the data directory.
func (s *SnapshotStore) Dir() string {
	return s.dir
}

// SnapshotPath returns the location of the processed ledger.
func (s *SnapshotStore) SnapshotPath() string {
	return filepath.Join(s.dir, ProcessedDir, SnapshotFile)
}

// FAQPath returns the location of the generated FAQ bundle.
func (s *SnapshotStore) FAQPath() string {
	return filepath.Join(s.dir, ProcessedDir, FAQFile)
}

// Save replaces the snapshot with ledger. An empty ledger is written as [].
func (s *SnapshotStore) Save(ledger *models.Ledger) error {
	records := []models.TransactionRecord{}
	if ledger != nil {
		records = ledger.Records
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeFileAtomic(s.SnapshotPath(), data); err != nil {
		return err
	}

	s.logger.Info("Saved transaction snapshot",
		logging.F(logging.FieldFile, s.SnapshotPath()),
		logging.F(logging.FieldCount, len(records)))
	return nil
}

// Load reads the snapshot back into a ledger with a dense index.
func (s *SnapshotStore) Load() (*models.Ledger, error) {
	data, err := s.LoadRaw()
	if err != nil {
		return nil, err
	}

	var records []models.TransactionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", s.SnapshotPath(), err)
	}
	for i := range records {
		records[i].Index = i
	}
	return models.NewLedger(records), nil
}

// LoadRaw returns the snapshot bytes as stored.
func (s *SnapshotStore) LoadRaw() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.SnapshotPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// SaveRaw stores an uploaded statement under the raw directory. Only the base
// name of name is used. It returns the stored path.
func (s *SnapshotStore) SaveRaw(name string, r io.Reader) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." || base == "" {
		return "", fmt.Errorf("invalid upload name %q", name)
	}

	dir := filepath.Join(s.dir, RawDir)
	if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
		return "", fmt.Errorf("failed to create raw directory: %w", err)
	}

	path := filepath.Join(dir, base)
	f, err := os.Create(path) // #nosec G304 -- base name only
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.WithError(cerr).Warn("Failed to close upload file",
				logging.F(logging.FieldFile, path))
		}
	}()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return path, nil
}

// SaveFAQ writes the analytics bundle next to the snapshot.
func (s *SnapshotStore) SaveFAQ(bundle any) error {
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode FAQ: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.FAQPath(), data)
}

// Clear removes the snapshot, the raw uploads and the FAQ bundle. Missing
// files are not an error.
func (s *SnapshotStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range []string{s.SnapshotPath(), s.FAQPath()} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	if err := os.RemoveAll(filepath.Join(s.dir, RawDir)); err != nil {
		return fmt.Errorf("failed to remove raw uploads: %w", err)
	}

	s.logger.Info("Cleared processed data", logging.F(logging.FieldPath, s.dir))
	return nil
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, models.PermissionReportFile); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
