package db

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type contextKey string

const txKey contextKey = "db_tx"

// Querier is the subset of pgx operations shared by pools, connections and
// transactions. Repositories accept whichever the request context carries.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxFromContext retrieves the request transaction from context, or nil when
// the request runs outside one.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey).(pgx.Tx)
	return tx
}

// WithTx returns a context carrying tx so repositories resolve it.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// Resolve returns the querier a repository should use: the request
// transaction when present, otherwise the pool.
func Resolve(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// TxBeginner starts transactions. *pgxpool.Pool satisfies it; tests supply
// their own.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Transaction wraps each request in a single transaction, committed when the
// handler succeeds and rolled back on any error. The deferred rollback also
// releases the connection when a handler panics and the recovery middleware
// swallows the panic further out; rolling back after a commit is a no-op.
func Transaction(db TxBeginner, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			tx, err := db.Begin(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("failed to begin transaction")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
			}
			defer tx.Rollback(ctx)

			c.SetRequest(c.Request().WithContext(WithTx(ctx, tx)))

			if err := next(c); err != nil {
				return err
			}

			if err := tx.Commit(ctx); err != nil {
				logger.Error().Err(err).
					Str("method", c.Request().Method).
					Str("path", c.Request().URL.Path).
					Msg("transaction commit failed")
				return echo.NewHTTPError(http.StatusInternalServerError, "commit failed")
			}
			return nil
		}
	}
}
