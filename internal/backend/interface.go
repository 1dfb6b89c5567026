package backend

import (
	"context"

	"expensetracker/internal/amqp"
	"expensetracker/internal/notify"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
	"expensetracker/internal/sheets"
	"expensetracker/internal/storage"
)

// Backend bundles the store and the services built on top of it.
type Backend struct {
	Repo     *storage.SQLiteRepository
	Accounts *services.AccountService
	Profiles *services.ProfileService
	Ledger   *services.LedgerService
	Router   *session.Router
	AMQP     *amqp.Client // nil when publishing is disabled
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and its cleanup function
type BackendResult struct {
	Backend *Backend
	Cleanup CleanupFunc
}

// Factory creates the pieces the two binaries are assembled from.
type Factory interface {
	// CreateBackend opens the store and wires the services.
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreateMirror returns the ledger mirror, or nil when mirroring is off.
	CreateMirror(ctx context.Context, config Config) (sheets.TransactionWriter, error)
	// CreateSender returns the notification sender for budget alerts.
	CreateSender(config Config) notify.Sender
}

// Config holds configuration for backend creation
type Config struct {
	SQLiteDBPath string
	BcryptCost   int

	// AMQP is optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Mirror MirrorType

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// SMS gateway; an empty URL logs notifications instead
	SMSGatewayURL string
	SMSAccountSID string
	SMSAuthToken  string
	SMSFromNumber string
}

// MirrorType selects where appended transactions are mirrored.
type MirrorType string

const (
	MirrorNone   MirrorType = "none"
	MirrorSheets MirrorType = "sheets"
	MirrorMemory MirrorType = "memory"
)

// String implements fmt.Stringer
func (mt MirrorType) String() string {
	return string(mt)
}

// IsValid returns true if the mirror type is valid
func (mt MirrorType) IsValid() bool {
	switch mt {
	case MirrorNone, MirrorSheets, MirrorMemory:
		return true
	default:
		return false
	}
}
