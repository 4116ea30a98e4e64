package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/certifyos/ts-automation/internal/config"
)

const (
	stateFileName = "customer-automation-state.json"

	// maxProcessedKeys bounds the ledger; the oldest keys are evicted
	// first.
	maxProcessedKeys = 1000

	// defaultLookBack is applied when no ledger exists yet.
	defaultLookBack = 24 * time.Hour
)

// Ledger is the persisted checkpoint of scan progress.
type Ledger struct {
	LastRunTimestamp    time.Time `json:"lastRunTimestamp"`
	ProcessedTicketKeys []string  `json:"processedTicketKeys"`
}

// IsProcessed reports whether a ticket key was already handled.
func (l *Ledger) IsProcessed(key string) bool {
	for _, processed := range l.ProcessedTicketKeys {
		if processed == key {
			return true
		}
	}
	return false
}

// MarkProcessed records a ticket key as handled.
func (l *Ledger) MarkProcessed(key string) {
	l.ProcessedTicketKeys = append(l.ProcessedTicketKeys, key)
}

// Trim drops the oldest processed keys beyond the ledger cap.
func (l *Ledger) Trim() {
	if excess := len(l.ProcessedTicketKeys) - maxProcessedKeys; excess > 0 {
		l.ProcessedTicketKeys = l.ProcessedTicketKeys[excess:]
	}
}

// Store handles persistent storage of the processing ledger.
type Store struct {
	path string
}

// NewStore creates a storage instance backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStatePath returns the state file path inside the user data
// directory.
func DefaultStatePath() (string, error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, stateFileName), nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the ledger. A missing or corrupt file falls back to the
// default look-back window rather than failing the scan.
func (s *Store) Load() (*Ledger, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultLedger(), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var ledger Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		logrus.WithError(err).Warn("Could not parse state file, using defaults")
		return defaultLedger(), nil
	}
	if ledger.LastRunTimestamp.IsZero() {
		ledger.LastRunTimestamp = time.Now().Add(-defaultLookBack)
	}

	return &ledger, nil
}

// Save writes the ledger back to disk.
func (s *Store) Save(ledger *Ledger) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// Delete removes the state file.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	return nil
}

func defaultLedger() *Ledger {
	return &Ledger{
		LastRunTimestamp: time.Now().Add(-defaultLookBack),
	}
}
