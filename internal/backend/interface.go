package backend

import (
	"context"

	"wallet/internal/store"
)

// CleanupFunc releases the resources held by a backend
type CleanupFunc func() error

// BackendResult contains the store handle and optional cleanup function
type BackendResult struct {
	Store   store.Store
	Type    BackendType
	Cleanup CleanupFunc
}

// Close runs Cleanup when set
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend builds and initializes the store selected by config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
