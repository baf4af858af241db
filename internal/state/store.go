// Package state records pincode lookups in a local history.
package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/TheMichaelB/pincheck/internal/config"
	"github.com/TheMichaelB/pincheck/internal/events"
)

// Store manages lookup history persistence.
type Store interface {
	// Append records one lookup.
	Append(entry *Entry) error

	// Recent returns up to limit entries, newest first. A limit of zero or
	// less returns everything.
	Recent(limit int) ([]*Entry, error)

	// Get retrieves a lookup by request ID.
	Get(requestID string) (*Entry, error)

	// Clear removes all history.
	Clear() error

	// Migrate copies every entry into target, oldest first.
	Migrate(target Store) error

	// Close releases resources.
	Close() error
}

// Errors
var (
	ErrEntryNotFound = errors.New("history entry not found")
	ErrStateCorrupt  = errors.New("history file is corrupt")
)

// Entry is one recorded lookup.
type Entry struct {
	RequestID string    `json:"request_id" yaml:"request_id"`
	Pincode   string    `json:"pincode" yaml:"pincode"`
	Strategy  string    `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	City      string    `json:"city,omitempty" yaml:"city,omitempty"`
	Raw       bool      `json:"raw" yaml:"raw"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
	Time      time.Time `json:"time" yaml:"time"`
}

// Serviceable reports whether the lookup found a location.
func (e *Entry) Serviceable() bool {
	return e.Error == "" && e.City != ""
}

// CurrentSchemaVersion for migrations.
const CurrentSchemaVersion = 1

// Open creates the store selected by cfg.
func Open(cfg *config.HistoryConfig, logger *events.Logger) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLiteStore(cfg.Path, logger)
	case "json":
		return NewJSONStore(cfg.Path, logger)
	default:
		return nil, fmt.Errorf("unknown history driver: %s", cfg.Driver)
	}
}

// migrate copies all entries of src into target, oldest first.
func migrate(src, target Store, logger *events.Logger) error {
	entries, err := src.Recent(0)
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}

	logger.WithField("count", len(entries)).Info("Migrating history")

	for i := len(entries) - 1; i >= 0; i-- {
		if err := target.Append(entries[i]); err != nil {
			return fmt.Errorf("append entry %s: %w", entries[i].RequestID, err)
		}
	}

	return nil
}
