package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	id "safereturn/pkg/domain"
	dErrors "safereturn/pkg/domain-errors"
	"safereturn/pkg/platform/tx"
)

var tracer = otel.Tracer("safereturn/followup/store")

const defaultTxTimeout = 5 * time.Second

// PostgresTx runs a unit of work in one SQL transaction. The transaction
// travels in ctx so every Postgres store, tickets included, joins it.
type PostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresTx(db *sql.DB, timeout time.Duration) *PostgresTx {
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &PostgresTx{db: db, timeout: timeout}
}

func (t *PostgresTx) RunInTx(ctx context.Context, pid id.ProfileID, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "followup.RunInTx",
		trace.WithAttributes(attribute.String("profile_id", pid.String())))
	defer span.End()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		span.SetStatus(codes.Error, "begin")
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to begin transaction")
	}
	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		_ = sqlTx.Rollback()
		span.RecordError(err)
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		span.SetStatus(codes.Error, "commit")
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
