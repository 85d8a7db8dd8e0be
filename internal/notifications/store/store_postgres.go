package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"safereturn/internal/notifications/models"
	id "safereturn/pkg/domain"
	"safereturn/pkg/platform/sentinel"
	"safereturn/pkg/platform/tx"
)

// PostgresStore persists notifications in PostgreSQL. Writes join the
// transaction carried in ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const notificationColumns = `id, recipient_kind, recipient_id, message, link, is_read, created_at`

func (s *PostgresStore) Save(ctx context.Context, n *models.Notification) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.UUID(n.ID), string(n.Recipient.Kind), recipientID(n.Recipient), n.Message, n.Link, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByRecipient(ctx context.Context, r models.Recipient, unreadOnly bool) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE recipient_kind = $1 AND recipient_id IS NOT DISTINCT FROM $2`
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, query, string(r.Kind), recipientID(r))
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MarkRead(ctx context.Context, nid id.NotificationID) (*models.Notification, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1
		RETURNING `+notificationColumns, uuid.UUID(nid))
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

func recipientID(r models.Recipient) uuid.NullUUID {
	if r.ID == uuid.Nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: r.ID, Valid: true}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNotification(row scanner) (*models.Notification, error) {
	var (
		n    models.Notification
		nid  uuid.UUID
		kind string
		rid  uuid.NullUUID
	)
	if err := row.Scan(&nid, &kind, &rid, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.ID = id.NotificationID(nid)
	n.Recipient = models.Recipient{Kind: models.RecipientKind(kind), ID: rid.UUID}
	return &n, nil
}
