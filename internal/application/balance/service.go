// Package balance keeps customer balances equal to the ledger formula and
// detects and repairs drift.
package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/reconciler/internal/application/uow"
	"github.com/erp/reconciler/internal/domain/finance"
	"github.com/erp/reconciler/internal/domain/partner"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const defaultWorkers = 4

// Service recalculates customer balances from ledger primitives.
// It never adjusts a balance by a delta.
type Service struct {
	scope     uow.TransactionScope
	publisher shared.EventPublisher
	metrics   Metrics
	logger    *zap.Logger
	workers   int
	inflight  singleflight.Group
}

// Option configures the Service
type Option func(*Service)

// WithEventPublisher publishes CustomerBalanceRecalculated events after commit
func WithEventPublisher(publisher shared.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(metrics Metrics) Option {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithWorkers bounds the parallelism of tenant-wide operations
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewService creates a new balance Service
func NewService(scope uow.TransactionScope, opts ...Option) *Service {
	s := &Service{
		scope:   scope,
		metrics: noopMetrics{},
		logger:  zap.NewNop(),
		workers: defaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecalculateInTx recomputes the customer's balance using the caller's
// transaction. Every ledger mutation calls it before committing; the returned
// customer carries any CustomerBalanceRecalculated event for the caller to publish.
func (s *Service) RecalculateInTx(ctx context.Context, repos uow.Repositories, tenantID, customerID uuid.UUID) (*partner.Customer, error) {
	customer, _, _, err := s.recalculate(ctx, repos, tenantID, customerID)
	return customer, err
}

func (s *Service) recalculate(ctx context.Context, repos uow.Repositories, tenantID, customerID uuid.UUID) (*partner.Customer, finance.LedgerTotals, decimal.Decimal, error) {
	// The row lock orders concurrent recalculations of one customer; totals
	// are read only after it is held
	customer, err := repos.Customers().FindByIDForUpdate(ctx, tenantID, customerID)
	if err != nil {
		return nil, finance.LedgerTotals{}, decimal.Zero, err
	}
	totals, err := repos.Ledger().LoadTotals(ctx, tenantID, customerID)
	if err != nil {
		return nil, finance.LedgerTotals{}, decimal.Zero, fmt.Errorf("failed to load ledger totals: %w", err)
	}

	previous := customer.PendingBalance
	customer.ApplyLedgerTotals(totals)
	if err := repos.Customers().SaveBalances(ctx, customer); err != nil {
		return nil, finance.LedgerTotals{}, decimal.Zero, fmt.Errorf("failed to save customer balance: %w", err)
	}
	return customer, totals, previous, nil
}

// RecalculateCustomerBalance recomputes one customer's balance in its own
// transaction. Concurrent calls for the same customer share one execution.
// The shared execution is detached from every caller's cancellation; a caller
// whose ctx ends stops waiting and gets ctx.Err() while the others still
// receive the result.
func (s *Service) RecalculateCustomerBalance(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerBalanceDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := tenantID.String() + ":" + customerID.String()
	detached := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(key, func() (any, error) {
		return s.recalculateStandalone(detached, tenantID, customerID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("shared in-flight balance recalculation",
				zap.String("tenant_id", tenantID.String()),
				zap.String("customer_id", customerID.String()),
			)
		}
		return res.Val.(*CustomerBalanceDTO), nil
	}
}

func (s *Service) recalculateStandalone(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerBalanceDTO, error) {
	start := time.Now()
	var (
		result CustomerBalanceDTO
		events uow.EventCollector
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		customer, totals, previous, err := s.recalculate(ctx, repos, tenantID, customerID)
		if err != nil {
			return err
		}
		result = *toCustomerBalanceDTO(customer, totals, previous)
		events.Reset()
		events.Collect(customer)
		return nil
	})
	if err != nil {
		s.logger.Error("balance recalculation failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.RecordRecalculation(ctx, tenantID, time.Since(start), result.Changed)
	events.Publish(ctx, s.publisher, s.logger)

	if result.Changed {
		s.logger.Info("customer balance recalculated",
			zap.String("tenant_id", tenantID.String()),
			zap.String("customer_id", customerID.String()),
			zap.String("previous_balance", result.PreviousBalance.String()),
			zap.String("pending_balance", result.PendingBalance.String()),
		)
	}
	return &result, nil
}

// RecalculateAllCustomerBalances recalculates every customer of the tenant
// and returns how many were recalculated.
func (s *Service) RecalculateAllCustomerBalances(ctx context.Context, tenantID uuid.UUID) (int, error) {
	ids, err := s.customerIDs(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	results := make([]bool, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, id := range ids {
		g.Go(func() error {
			if _, err := s.RecalculateCustomerBalance(gctx, tenantID, id); err != nil {
				return fmt.Errorf("customer %s: %w", id, err)
			}
			results[i] = true
			return nil
		})
	}
	err = g.Wait()

	count := 0
	for _, ok := range results {
		if ok {
			count++
		}
	}
	s.logger.Info("recalculated all customer balances",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("customers", len(ids)),
		zap.Int("recalculated", count),
	)
	return count, err
}

func (s *Service) customerIDs(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		ids, err = repos.Customers().ListIDs(ctx, tenantID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return ids, nil
}
