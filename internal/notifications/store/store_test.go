package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"safereturn/internal/notifications/models"
	id "safereturn/pkg/domain"
	"safereturn/pkg/platform/sentinel"
)

var createdAt = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) save(r models.Recipient, at time.Time) *models.Notification {
	n := &models.Notification{ID: id.NewNotificationID(), Recipient: r, Message: "m", CreatedAt: at}
	s.Require().NoError(s.store.Save(s.ctx, n))
	return n
}

func (s *MemoryStoreSuite) TestListByRecipient() {
	profile := id.NewProfileID()
	older := s.save(models.Beneficiary(profile), createdAt)
	newer := s.save(models.Beneficiary(profile), createdAt.Add(time.Minute))
	s.save(models.WorkerPool(), createdAt)

	got, err := s.store.ListByRecipient(s.ctx, models.Beneficiary(profile), false)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(newer.ID, got[0].ID)
	s.Equal(older.ID, got[1].ID)

	_, err = s.store.MarkRead(s.ctx, older.ID)
	s.Require().NoError(err)
	got, err = s.store.ListByRecipient(s.ctx, models.Beneficiary(profile), true)
	s.Require().NoError(err)
	s.Len(got, 1)
}

func (s *MemoryStoreSuite) TestMarkReadNotFound() {
	_, err := s.store.MarkRead(s.ctx, id.NewNotificationID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func newMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgres(db), mock
}

func TestPostgresSave(t *testing.T) {
	st, mock := newMock(t)
	n := &models.Notification{ID: id.NewNotificationID(), Recipient: models.WorkerPool(), Message: "m", CreatedAt: createdAt}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WithArgs(uuid.UUID(n.ID), "worker_pool", nil, "m", "", false, createdAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.Save(context.Background(), n))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListByRecipient(t *testing.T) {
	st, mock := newMock(t)
	worker := uuid.New()
	nid := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("AND is_read = FALSE ORDER BY created_at DESC")).
		WithArgs("case_worker", worker.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient_kind", "recipient_id", "message", "link", "is_read", "created_at"}).
			AddRow(nid.String(), "case_worker", worker.String(), "hello", "/x", false, createdAt))

	got, err := st.ListByRecipient(context.Background(), models.CaseWorker(id.WorkerID(worker)), true)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id.NotificationID(nid), got[0].ID)
	assert.Equal(t, models.CaseWorker(id.WorkerID(worker)), got[0].Recipient)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkReadNotFound(t *testing.T) {
	st, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE notifications SET is_read = TRUE")).
		WillReturnError(sql.ErrNoRows)

	_, err := st.MarkRead(context.Background(), id.NewNotificationID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
