package backend

import (
	"context"
	"fmt"

	"expensetracker/internal/amqp"
	"expensetracker/internal/auth"
	applog "expensetracker/internal/log"
	"expensetracker/internal/notify"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
	"expensetracker/internal/sheets"
	gsheet "expensetracker/internal/sheets/google"
	"expensetracker/internal/sheets/memory"
	"expensetracker/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	// AMQP is optional. A broker outage at startup degrades to no publishing.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without sync", applog.FieldError, err)
			amqpClient = nil
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	// A typed nil *amqp.Client must not leak into the interface.
	var publisher services.Publisher
	if amqpClient != nil {
		publisher = amqpClient
	}

	hasher := auth.NewHasher(config.BcryptCost)
	accounts := services.NewAccountService(repo, hasher)
	profiles := services.NewProfileService(repo)
	ledger := services.NewLedgerService(repo, repo, repo, publisher)

	b := &Backend{
		Repo:     repo,
		Accounts: accounts,
		Profiles: profiles,
		Ledger:   ledger,
		Router:   session.NewRouter(accounts, profiles),
		AMQP:     amqpClient,
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", amqpClient != nil)

	return &BackendResult{
		Backend: b,
		Cleanup: func() error {
			var firstErr error
			if amqpClient != nil {
				if err := amqpClient.Close(); err != nil {
					firstErr = err
				}
			}
			if err := repo.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
			return firstErr
		},
	}, nil
}

// CreateMirror implements Factory.CreateMirror
func (f *DefaultFactory) CreateMirror(ctx context.Context, config Config) (sheets.TransactionWriter, error) {
	switch config.Mirror {
	case MirrorSheets:
		cli, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      config.GoogleSpreadsheetID,
			SheetName:          config.GoogleSheetName,
			ServiceAccountFile: config.GoogleServiceAccountFile,
			ServiceAccountJSON: config.GoogleServiceAccountJSON,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Google Sheets mirror", "sheet", config.GoogleSheetName)
		return cli, nil
	case MirrorMemory:
		f.logger.InfoContext(ctx, "Initialized in-memory mirror")
		return memory.New(), nil
	case MirrorNone, "":
		f.logger.InfoContext(ctx, "Ledger mirror disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported mirror type: %s", config.Mirror)
	}
}

// CreateSender implements Factory.CreateSender
func (f *DefaultFactory) CreateSender(config Config) notify.Sender {
	if config.SMSGatewayURL == "" {
		return notify.NewLogSender(f.logger.WithComponent(applog.ComponentNotify))
	}
	return notify.NewGatewaySender(notify.GatewayConfig{
		URL:        config.SMSGatewayURL,
		AccountSID: config.SMSAccountSID,
		AuthToken:  config.SMSAuthToken,
		From:       config.SMSFromNumber,
	}, nil)
}
