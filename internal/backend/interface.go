package backend

import (
	"context"

	"expensetracker/internal/services"
	"expensetracker/internal/sheets"
	"expensetracker/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the opened store, the optional event publisher and
// a cleanup function releasing both.
type BackendResult struct {
	Store     storage.Store
	Publisher services.EventPublisher // nil when AMQP is not configured
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend opens the record store and, when configured, the
	// event publisher.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateMirror opens the spreadsheet mirror used by the worker.
	CreateMirror(ctx context.Context, config Config) (sheets.Mirror, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath    string
	DatabaseURL     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

// BackendType represents the type of record store
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	MongoBackend    BackendType = "mongo"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend, MongoBackend:
		return true
	default:
		return false
	}
}
