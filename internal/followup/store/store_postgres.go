package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"safereturn/internal/followup/models"
	"safereturn/internal/platform/postgres"
	"safereturn/internal/risk"
	id "safereturn/pkg/domain"
	"safereturn/pkg/platform/sentinel"
	"safereturn/pkg/platform/tx"
)

// PostgresProfileStore persists release profiles with their embedded plan.
// Every method joins the transaction in ctx when one is present.
type PostgresProfileStore struct {
	db *sql.DB
}

func NewPostgresProfiles(db *sql.DB) *PostgresProfileStore {
	return &PostgresProfileStore{db: db}
}

const profileColumns = `id, national_id, full_name, city, release_date, end_of_followup_date,
	assigned_worker_id, plan_current_month, plan_status, plan_last_tier,
	plan_closed_at, plan_close_reason, created_at, updated_at`

func (s *PostgresProfileStore) Create(ctx context.Context, p *models.ReleaseProfile) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO release_profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		profileArgs(p)...,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *PostgresProfileStore) FindByID(ctx context.Context, pid id.ProfileID) (*models.ReleaseProfile, error) {
	return s.find(ctx, `SELECT `+profileColumns+` FROM release_profiles WHERE id = $1`, pid)
}

// FindByIDForUpdate row-locks the profile until the surrounding transaction ends.
func (s *PostgresProfileStore) FindByIDForUpdate(ctx context.Context, pid id.ProfileID) (*models.ReleaseProfile, error) {
	return s.find(ctx, `SELECT `+profileColumns+` FROM release_profiles WHERE id = $1 FOR UPDATE`, pid)
}

func (s *PostgresProfileStore) find(ctx context.Context, query string, pid id.ProfileID) (*models.ReleaseProfile, error) {
	p, err := scanProfile(tx.Executor(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(pid)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

func (s *PostgresProfileStore) Update(ctx context.Context, p *models.ReleaseProfile) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		UPDATE release_profiles SET
			assigned_worker_id = $2,
			plan_current_month = $3,
			plan_status = $4,
			plan_last_tier = $5,
			plan_closed_at = $6,
			plan_close_reason = $7,
			updated_at = $8
		WHERE id = $1`,
		uuid.UUID(p.ID), workerArg(p.AssignedWorker), p.Plan.CurrentMonth, string(p.Plan.Status),
		string(p.Plan.LastTier), p.Plan.ClosedAt, p.Plan.CloseReason, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresProfileStore) List(ctx context.Context, f models.ProfileFilter) ([]*models.ReleaseProfile, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT `+profileColumns+` FROM release_profiles
		WHERE ($1 = '' OR plan_status = $1)
		  AND ($2 = '' OR plan_last_tier = $2)
		  AND ($3 = '' OR city = $3)
		ORDER BY created_at`,
		string(f.Status), string(f.Tier), string(f.City),
	)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []*models.ReleaseProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

func (s *PostgresProfileStore) CountActiveByTier(ctx context.Context, tier risk.Tier) (int, error) {
	var n int
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM release_profiles
		WHERE plan_status = 'active' AND plan_last_tier = $1`, string(tier),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count profiles by tier: %w", err)
	}
	return n, nil
}

func profileArgs(p *models.ReleaseProfile) []any {
	return []any{
		uuid.UUID(p.ID), string(p.NationalID), p.FullName, string(p.City), p.ReleaseDate, p.EndOfFollowUpDate,
		workerArg(p.AssignedWorker), p.Plan.CurrentMonth, string(p.Plan.Status), string(p.Plan.LastTier),
		p.Plan.ClosedAt, p.Plan.CloseReason, p.CreatedAt, p.UpdatedAt,
	}
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

func scanProfile(row scanner) (*models.ReleaseProfile, error) {
	var (
		p        models.ReleaseProfile
		pid      uuid.UUID
		national string
		city     string
		worker   uuid.NullUUID
		status   string
		tier     string
		closedAt sql.NullTime
	)
	err := row.Scan(&pid, &national, &p.FullName, &city, &p.ReleaseDate, &p.EndOfFollowUpDate,
		&worker, &p.Plan.CurrentMonth, &status, &tier, &closedAt, &p.Plan.CloseReason,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.ID = id.ProfileID(pid)
	p.NationalID = id.NationalID(national)
	p.City = models.City(city)
	if worker.Valid {
		w := id.WorkerID(worker.UUID)
		p.AssignedWorker = &w
	}
	p.Plan.StartDate = p.ReleaseDate
	p.Plan.Status = models.PlanStatus(status)
	p.Plan.LastTier = risk.Tier(tier)
	if closedAt.Valid {
		t := closedAt.Time
		p.Plan.ClosedAt = &t
	}
	return &p, nil
}

// PostgresCheckInStore persists check-ins. The unique constraint on
// (profile_id, month_index) surfaces as sentinel.ErrConflict.
type PostgresCheckInStore struct {
	db *sql.DB
}

func NewPostgresCheckIns(db *sql.DB) *PostgresCheckInStore {
	return &PostgresCheckInStore{db: db}
}

const checkInColumns = `id, profile_id, month_index, housing_status, job_status, mental_state,
	family_status, notes, risk_tier, submitted_at`

func (s *PostgresCheckInStore) Save(ctx context.Context, c *models.CheckIn) error {
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO checkins (`+checkInColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		uuid.UUID(c.ID), uuid.UUID(c.ProfileID), c.MonthIndex,
		string(c.Assessment.Housing), string(c.Assessment.Job), string(c.Assessment.Mental), string(c.Assessment.Family),
		c.Notes, string(c.Tier), c.SubmittedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("save checkin: %w", err)
	}
	return nil
}

func (s *PostgresCheckInStore) FindByProfileAndMonth(ctx context.Context, pid id.ProfileID, month int) (*models.CheckIn, error) {
	c, err := scanCheckIn(tx.Executor(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+checkInColumns+` FROM checkins
		WHERE profile_id = $1 AND month_index = $2`, uuid.UUID(pid), month))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find checkin: %w", err)
	}
	return c, nil
}

func (s *PostgresCheckInStore) ListByProfile(ctx context.Context, pid id.ProfileID) ([]*models.CheckIn, error) {
	rows, err := tx.Executor(ctx, s.db).QueryContext(ctx, `
		SELECT `+checkInColumns+` FROM checkins
		WHERE profile_id = $1 ORDER BY month_index`, uuid.UUID(pid))
	if err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	defer rows.Close()

	var out []*models.CheckIn
	for rows.Next() {
		c, err := scanCheckIn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checkin: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	return out, nil
}

func scanCheckIn(row scanner) (*models.CheckIn, error) {
	var (
		c                               models.CheckIn
		cid, pid                        uuid.UUID
		housing, job, mental, family, t string
	)
	err := row.Scan(&cid, &pid, &c.MonthIndex, &housing, &job, &mental, &family, &c.Notes, &t, &c.SubmittedAt)
	if err != nil {
		return nil, err
	}
	c.ID = id.CheckInID(cid)
	c.ProfileID = id.ProfileID(pid)
	c.Assessment = risk.Assessment{
		Housing: risk.HousingStatus(housing),
		Job:     risk.JobStatus(job),
		Mental:  risk.MentalState(mental),
		Family:  risk.FamilyStatus(family),
	}
	c.Tier = risk.Tier(t)
	return &c, nil
}
