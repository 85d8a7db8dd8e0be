package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"safereturn/internal/tickets/models"
	id "safereturn/pkg/domain"
	"safereturn/pkg/platform/sentinel"
	"safereturn/pkg/platform/tx"
)

// PostgresStore persists support tickets, joining the transaction in ctx.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const ticketColumns = `id, profile_id, checkin_id, category, status, auto_generated, created_by,
	assigned_worker_id, resolved_by, notes, created_at, updated_at, resolved_at`

func (s *PostgresStore) Create(ctx context.Context, t *models.SupportTicket) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO support_tickets (`+ticketColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		uuid.UUID(t.ID), uuid.UUID(t.ProfileID), checkInArg(t.CheckInID), string(t.Category), string(t.Status),
		t.AutoGenerated, workerArg(t.CreatedBy), workerArg(t.AssignedWorker), workerArg(t.ResolvedBy),
		t.Notes, t.CreatedAt, t.UpdatedAt, t.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, tid id.TicketID) (*models.SupportTicket, error) {
	return s.find(ctx, `SELECT `+ticketColumns+` FROM support_tickets WHERE id = $1`, tid)
}

func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, tid id.TicketID) (*models.SupportTicket, error) {
	return s.find(ctx, `SELECT `+ticketColumns+` FROM support_tickets WHERE id = $1 FOR UPDATE`, tid)
}

func (s *PostgresStore) find(ctx context.Context, query string, tid id.TicketID) (*models.SupportTicket, error) {
	t, err := scanTicket(tx.Executor(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(tid)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) Update(ctx context.Context, t *models.SupportTicket) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE support_tickets SET
			status = $2,
			assigned_worker_id = $3,
			resolved_by = $4,
			notes = $5,
			updated_at = $6,
			resolved_at = $7
		WHERE id = $1`,
		uuid.UUID(t.ID), string(t.Status), workerArg(t.AssignedWorker), workerArg(t.ResolvedBy),
		t.Notes, t.UpdatedAt, t.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, f models.Filter) ([]*models.SupportTicket, error) {
	var profile uuid.NullUUID
	if !f.ProfileID.IsNil() {
		profile = uuid.NullUUID{UUID: uuid.UUID(f.ProfileID), Valid: true}
	}
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT `+ticketColumns+` FROM support_tickets
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR category = $2)
		  AND ($3::uuid IS NULL OR profile_id = $3)
		ORDER BY created_at DESC, category`,
		string(f.Status), string(f.Category), profile,
	)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var out []*models.SupportTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) PendingCategories(ctx context.Context, pid id.ProfileID) (map[models.Category]bool, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT DISTINCT category FROM support_tickets
		WHERE profile_id = $1 AND status IN ('open', 'in_progress')`, uuid.UUID(pid))
	if err != nil {
		return nil, fmt.Errorf("pending ticket categories: %w", err)
	}
	defer rows.Close()

	out := make(map[models.Category]bool)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out[models.Category(c)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pending ticket categories: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	var n int
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM support_tickets WHERE status = $1`, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return n, nil
}

func checkInArg(c *id.CheckInID) uuid.NullUUID {
	if c == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*c), Valid: true}
}

func workerArg(w *id.WorkerID) uuid.NullUUID {
	if w == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*w), Valid: true}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTicket(row scanner) (*models.SupportTicket, error) {
	var (
		t                                   models.SupportTicket
		tid, pid                            uuid.UUID
		checkIn, createdBy, assigned, resBy uuid.NullUUID
		category, status                    string
		resolvedAt                          sql.NullTime
	)
	err := row.Scan(&tid, &pid, &checkIn, &category, &status, &t.AutoGenerated, &createdBy,
		&assigned, &resBy, &t.Notes, &t.CreatedAt, &t.UpdatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	t.ID = id.TicketID(tid)
	t.ProfileID = id.ProfileID(pid)
	t.Category = models.Category(category)
	t.Status = models.Status(status)
	if checkIn.Valid {
		c := id.CheckInID(checkIn.UUID)
		t.CheckInID = &c
	}
	t.CreatedBy = workerPtr(createdBy)
	t.AssignedWorker = workerPtr(assigned)
	t.ResolvedBy = workerPtr(resBy)
	if resolvedAt.Valid {
		r := resolvedAt.Time
		t.ResolvedAt = &r
	}
	return &t, nil
}

func workerPtr(u uuid.NullUUID) *id.WorkerID {
	if !u.Valid {
		return nil
	}
	w := id.WorkerID(u.UUID)
	return &w
}
