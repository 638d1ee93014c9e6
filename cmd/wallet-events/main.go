package main

import (
	"context"
	"errors"
	"os"

	"wallet/internal/amqp"
	"wallet/internal/cli"
	applog "wallet/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production)
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(cli.SetupLogger("info", "text", applog.ComponentEvents), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat, applog.ComponentEvents)

	if !cfg.EventsEnabled() {
		cli.Fatal(logger, "Cannot consume events", errors.New("AMQP_URL is not set"))
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	ctx, cancel := cli.GracefulShutdown(logger, nil)
	defer cancel()

	logger.Info("Starting wallet-events",
		applog.FieldOperation, applog.OpStartup,
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	err = client.ConsumeExpenseEvents(ctx, func(ctx context.Context, event *amqp.ExpenseEvent) error {
		fields := applog.NewFields().
			WithOperation(string(event.Operation)).
			WithExpenseID(event.ExpenseID)
		if event.Expense != nil {
			fields = fields.WithExpense(string(event.Expense.Date), event.Expense.Category, event.Expense.Amount)
		}
		args := append(fields.ToSlice(),
			applog.FieldMessageID, event.MessageID,
			applog.FieldBackend, event.Backend)
		logger.InfoContext(ctx, "Expense changed", args...)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		client.Close()
		os.Exit(1)
	}

	logger.Info("wallet-events stopped gracefully", applog.FieldOperation, applog.OpShutdown)
}
