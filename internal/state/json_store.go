package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/TheMichaelB/pincheck/internal/events"
)

// MaxJSONEntries caps the JSON history; the oldest entries are dropped.
const MaxJSONEntries = 1000

// historyFile is the on-disk layout of the JSON store.
type historyFile struct {
	SchemaVersion int       `json:"schema_version"`
	UpdatedAt     time.Time `json:"updated_at"`
	Entries       []*Entry  `json:"entries"`
	Checksum      string    `json:"checksum,omitempty"`
}

// JSONStore implements file-based history storage.
type JSONStore struct {
	path   string
	logger *events.Logger

	mu sync.RWMutex
}

// NewJSONStore creates a JSON-based history store at path.
func NewJSONStore(path string, logger *events.Logger) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	return &JSONStore{
		path:   path,
		logger: logger.WithField("component", "json_history_store"),
	}, nil
}

// Append records a lookup. Re-recording a request ID replaces it.
func (s *JSONStore) Append(entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.WithFields(map[string]interface{}{
		"request_id": entry.RequestID,
		"pincode":    entry.Pincode,
	}).Debug("Recording lookup")

	entries, err := s.load()
	if err != nil {
		return err
	}

	stored := *entry
	stored.Time = stored.Time.UTC()

	kept := entries[:0]
	for _, e := range entries {
		if e.RequestID != entry.RequestID {
			kept = append(kept, e)
		}
	}
	kept = append(kept, &stored)

	if len(kept) > MaxJSONEntries {
		kept = kept[len(kept)-MaxJSONEntries:]
	}

	return s.save(kept)
}

// Recent returns the newest lookups first.
func (s *JSONStore) Recent(limit int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}

	result := make([]*Entry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, entries[i])
	}

	return result, nil
}

// Get retrieves a lookup by request ID.
func (s *JSONStore) Get(requestID string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.RequestID == requestID {
			return e, nil
		}
	}

	return nil, ErrEntryNotFound
}

// Clear removes the history file and its backup.
func (s *JSONStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("Clearing history")

	_ = os.Remove(s.path)
	_ = os.Remove(s.backupPath())

	return nil
}

// Migrate copies all lookups into target.
func (s *JSONStore) Migrate(target Store) error {
	return migrate(s, target, s.logger)
}

// Close releases resources.
func (s *JSONStore) Close() error {
	return nil
}

// Helper methods

func (s *JSONStore) backupPath() string {
	return s.path + ".backup"
}

// load reads entries oldest first. A missing file is an empty history.
func (s *JSONStore) load() ([]*Entry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}

	file, err := decodeHistory(data)
	if err != nil {
		s.logger.WithError(err).Warn("History file unreadable, trying backup")

		if entries, backupErr := s.loadBackup(); backupErr == nil {
			s.logger.Warn("Loaded history from backup due to corruption")
			return entries, nil
		}
		return nil, ErrStateCorrupt
	}

	if file.SchemaVersion != CurrentSchemaVersion {
		s.logger.WithField("version", file.SchemaVersion).Warn("History schema version mismatch")
	}

	return file.Entries, nil
}

func (s *JSONStore) loadBackup() ([]*Entry, error) {
	data, err := os.ReadFile(s.backupPath())
	if err != nil {
		return nil, err
	}

	file, err := decodeHistory(data)
	if err != nil {
		return nil, err
	}

	return file.Entries, nil
}

// save writes entries with a checksum, keeping the previous file as backup.
func (s *JSONStore) save(entries []*Entry) error {
	file := historyFile{
		SchemaVersion: CurrentSchemaVersion,
		UpdatedAt:     time.Now().UTC(),
		Entries:       entries,
	}

	checksum, err := historyChecksum(file)
	if err != nil {
		return err
	}
	file.Checksum = checksum

	jsonData, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	// Create backup of existing file
	if _, err := os.Stat(s.path); err == nil {
		if err := copyFile(s.path, s.backupPath()); err != nil {
			s.logger.WithError(err).Warn("Failed to create backup")
		}
	}

	// Write atomically
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, jsonData, 0600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if f, err := os.Open(tmpPath); err == nil {
		_ = f.Sync()
		f.Close()
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename history file: %w", err)
	}

	return nil
}

func decodeHistory(data []byte) (*historyFile, error) {
	var file historyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	if file.Checksum != "" {
		calculated, err := historyChecksum(file)
		if err != nil {
			return nil, err
		}
		if calculated != file.Checksum {
			return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", file.Checksum, calculated)
		}
	}

	return &file, nil
}

// historyChecksum hashes the file with its checksum field cleared.
func historyChecksum(file historyFile) (string, error) {
	file.Checksum = ""
	data, err := json.Marshal(file)
	if err != nil {
		return "", fmt.Errorf("marshal history for checksum: %w", err)
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
