// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CypherCore Contributors

package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Pool is the subset of *pgxpool.Pool used by the gateway. pgxmock pools
// satisfy it in tests.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Committer commits a transaction atomically. Pipelines depend on this
// rather than on the concrete executor.
type Committer interface {
	Commit(ctx context.Context, tx *Transaction) error
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRetry sets how many times a transaction is replayed after a
// serialization failure, deadlock, or dropped connection, and the base delay
// of the exponential backoff between attempts.
func WithRetry(maxRetries uint64, base time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.maxRetries = maxRetries
		e.retryBase = base
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// Executor is the durable store gateway for one database scope.
type Executor struct {
	pool       Pool
	scope      Scope
	maxRetries uint64
	retryBase  time.Duration
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewExecutor creates an executor that commits scope transactions on pool.
func NewExecutor(pool Pool, scope Scope, opts ...ExecutorOption) *Executor {
	e := &Executor{
		pool:       pool,
		scope:      scope,
		maxRetries: 3,
		retryBase:  50 * time.Millisecond,
		logger:     slog.Default(),
		tracer:     otel.Tracer("github.com/CypherCore/CypherCore-sub002/internal/store"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scope returns the database scope this executor commits to.
func (e *Executor) Scope() Scope {
	return e.scope
}

// Commit runs every statement of tx inside one database transaction.
// An empty transaction is a no-op and never touches the pool. Transient
// failures replay the whole transaction with backoff; anything else is
// returned to the caller.
func (e *Executor) Commit(ctx context.Context, tx *Transaction) error {
	if tx == nil || tx.Empty() {
		return nil
	}
	if tx.Scope() != e.scope {
		return oops.Code("TX_SCOPE_MISMATCH").
			With("executor_scope", e.scope.String()).
			With("tx_scope", tx.Scope().String()).
			Errorf("transaction scope does not match executor")
	}

	ctx, span := e.tracer.Start(ctx, "store.Commit",
		trace.WithAttributes(
			attribute.String("db.scope", e.scope.String()),
			attribute.Int("db.statements", tx.Len()),
		))
	defer span.End()

	start := time.Now()
	attempt := 0
	backoff := retry.WithMaxRetries(e.maxRetries, retry.NewExponential(e.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := e.commitOnce(ctx, tx)
		if err != nil && isTransient(err) {
			commitRetries.WithLabelValues(e.scope.String()).Inc()
			e.logger.WarnContext(ctx, "retrying transaction",
				"scope", e.scope.String(),
				"attempt", attempt,
				"error", err)
			return retry.RetryableError(err)
		}
		return err
	})
	commitDuration.WithLabelValues(e.scope.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		commitFailures.WithLabelValues(e.scope.String()).Inc()
		span.RecordError(err)
		return err
	}
	for _, stmt := range tx.stmts {
		statementsCommitted.WithLabelValues(e.scope.String(), stmt.ID.String()).Inc()
	}
	return nil
}

func (e *Executor) commitOnce(ctx context.Context, tx *Transaction) error {
	pgTx, err := e.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").With("scope", e.scope.String()).Wrap(err)
	}
	defer pgTx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for i, stmt := range tx.stmts {
		if _, err := pgTx.Exec(ctx, stmt.ID.SQL(), stmt.Args...); err != nil {
			return oops.Code("TX_EXEC_FAILED").
				With("scope", e.scope.String()).
				With("statement", stmt.ID.String()).
				With("index", i).
				Wrap(err)
		}
	}
	if err := pgTx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").With("scope", e.scope.String()).Wrap(err)
	}
	return nil
}

// isTransient reports whether replaying the transaction may succeed.
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return true
		}
		return pgerrcode.IsConnectionException(pgErr.Code)
	}
	return false
}

var _ Committer = (*Executor)(nil)
