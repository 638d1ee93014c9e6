package backend

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	"wallet/internal/amqp"
	applog "wallet/internal/log"
	"wallet/internal/services"
	gsheet "wallet/internal/sheets/google"
	"wallet/internal/storage"
)

// PublisherDialer opens the change-event publisher.
type PublisherDialer func(url, exchange, queue string, logger *applog.Logger) (services.EventPublisher, error)

// DialAMQP is the default PublisherDialer.
func DialAMQP(url, exchange, queue string, logger *applog.Logger) (services.EventPublisher, error) {
	client, err := amqp.NewClient(url, exchange, queue, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger        *applog.Logger
	sheetsOptions []option.ClientOption
	dial          PublisherDialer
}

var _ Factory = (*DefaultFactory)(nil)

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.Default(applog.ComponentBackend)
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
		dial:   DialAMQP,
	}
}

// WithSheetsOptions replaces credential resolution for the sheets backend,
// e.g. to point it at another endpoint.
func (f *DefaultFactory) WithSheetsOptions(opts ...option.ClientOption) *DefaultFactory {
	f.sheetsOptions = opts
	return f
}

// WithPublisherDialer overrides how the event publisher is opened.
func (f *DefaultFactory) WithPublisherDialer(dial PublisherDialer) *DefaultFactory {
	f.dial = dial
	return f
}

// CreateBackend implements Factory.CreateBackend. The returned store is
// initialized; there is no fallback to another backend on failure.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case SheetsBackend:
		result, err = f.createSheetsBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := result.Store.Initialize(ctx); err != nil {
		result.Close()
		return nil, fmt.Errorf("initialize %s backend: %w", config.Type, err)
	}

	if config.AMQPURL != "" {
		f.attachPublisher(ctx, config, result)
	}

	f.logger.InfoContext(ctx, "Backend ready", applog.FieldBackend, result.Type)
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Store:   repo,
		Type:    SQLiteBackend,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	sheetsConfig := gsheet.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		SheetName:          config.GoogleSheetName,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	}

	opts := f.sheetsOptions
	if opts == nil {
		var err error
		opts, err = gsheet.CredentialOptions(sheetsConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve Google credentials: %w", err)
		}
	}

	cli, err := gsheet.New(ctx, sheetsConfig, f.logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", applog.FieldSheet, config.GoogleSheetName)

	return &BackendResult{
		Store: cli,
		Type:  SheetsBackend,
	}, nil
}

// attachPublisher wraps the store with change events. A broker that cannot be
// reached leaves the store unwrapped.
func (f *DefaultFactory) attachPublisher(ctx context.Context, config Config, result *BackendResult) {
	publisher, err := f.dial(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change events",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeNetwork)
		return
	}

	svc := services.NewExpenseService(result.Store, publisher, result.Type.String(), f.logger)
	result.Store = svc
	result.Cleanup = svc.Close

	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
}
