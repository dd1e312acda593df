package backend

import (
	"context"

	"expenseflow/internal/store"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the created store and an optional cleanup function.
type Result struct {
	Store   store.ExpenseStore
	Cleanup CleanupFunc
}

// Factory creates expense stores based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
}

// BackendType represents the type of backend.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid.
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []BackendType {
	return []BackendType{SQLiteBackend, MemoryBackend}
}
