package services

import (
	"context"
	"errors"
	"fmt"

	"wallet/internal/amqp"
	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/store"
)

// EventPublisher delivers expense change events. *amqp.Client implements it.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, event *amqp.ExpenseEvent) error
	Close() error
}

// ExpenseService decorates a store.Store with change events. Results always
// come from the wrapped store; a failed publish is logged and otherwise ignored.
type ExpenseService struct {
	store.Store
	publisher EventPublisher
	backend   string
	logger    *applog.Logger
}

var _ store.Store = (*ExpenseService)(nil)

func NewExpenseService(s store.Store, publisher EventPublisher, backend string, logger *applog.Logger) *ExpenseService {
	if logger == nil {
		logger = applog.Default(applog.ComponentEvents)
	}
	return &ExpenseService{
		Store:     s,
		publisher: publisher,
		backend:   backend,
		logger:    logger.WithComponent(applog.ComponentEvents),
	}
}

func (s *ExpenseService) AddExpense(ctx context.Context, in core.ExpenseInput) bool {
	if !s.Store.AddExpense(ctx, in) {
		return false
	}
	// every backend issues increasing ids, so the new record holds the largest one
	all := s.Store.GetAllExpenses(ctx)
	if len(all) == 0 {
		s.logger.WarnContext(ctx, "Skipping create event, new expense id could not be read back",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldErrorType, applog.ErrorTypeNotFound)
		return true
	}
	s.publish(ctx, amqp.OperationCreate, store.NextID(all)-1, &in)
	return true
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, in core.ExpenseInput) bool {
	if !s.Store.UpdateExpense(ctx, id, in) {
		return false
	}
	s.publish(ctx, amqp.OperationUpdate, id, &in)
	return true
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) bool {
	if !s.Store.DeleteExpense(ctx, id) {
		return false
	}
	s.publish(ctx, amqp.OperationDelete, id, nil)
	return true
}

func (s *ExpenseService) publish(ctx context.Context, op amqp.Operation, id int64, in *core.ExpenseInput) {
	if s.publisher == nil {
		return
	}
	event := amqp.NewExpenseEvent(op, id, in, s.backend)
	if err := s.publisher.PublishExpenseEvent(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense event",
			applog.NewFields().
				WithOperation(applog.OpPublish).
				WithErrorType(applog.ErrorTypeNetwork).
				WithError(err).
				WithExpenseID(id).
				ToSlice()...)
	}
}

// Close closes the publisher and, when it holds resources, the wrapped store.
func (s *ExpenseService) Close() error {
	var errs []error

	if c, ok := s.Store.(store.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	return errors.Join(errs...)
}
