package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core/routine"
)

// dbRoutine maps the routine table.
type dbRoutine struct {
	ID          string      `db:"id"`
	Time        string      `db:"time"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	Category    string      `db:"category"`
	Duration    int         `db:"duration"`
	UserID      string      `db:"user_id"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r dbRoutine) toRoutine() routine.Routine {
	return routine.Routine{
		ID:          r.ID,
		Time:        r.Time,
		Title:       r.Title,
		Description: r.Description.String,
		Category:    r.Category,
		Duration:    r.Duration,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type routineRepository struct {
	db *sqlx.DB
}

var _ routine.Repository = (*routineRepository)(nil)

func NewRoutineRepository(db *sqlx.DB) routine.Repository {
	return &routineRepository{db: db}
}

func (repo *routineRepository) CreateRoutine(ctx context.Context, r routine.Routine) (routine.Routine, error) {
	query := `
INSERT INTO routine ("time", title, description, category, duration, user_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := repo.db.QueryRowxContext(
		ctx, query,
		r.Time, r.Title, null.NewString(r.Description, r.Description != ""), r.Category, r.Duration, r.UserID, r.CreatedAt, r.UpdatedAt,
	).Scan(&r.ID)
	if err != nil {
		return routine.Routine{}, errors.Wrap(err, "creating routine")
	}
	return r, nil
}

func (repo *routineRepository) QueryRoutines(ctx context.Context, userID string) ([]routine.Routine, error) {
	var dbRoutines []dbRoutine
	query := `SELECT * FROM routine WHERE user_id = $1 ORDER BY "time", created_at`
	if err := repo.db.SelectContext(ctx, &dbRoutines, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying routines")
	}

	routines := make([]routine.Routine, 0, len(dbRoutines))
	for _, r := range dbRoutines {
		routines = append(routines, r.toRoutine())
	}
	return routines, nil
}

func (repo *routineRepository) GetRoutine(ctx context.Context, userID, id string) (routine.Routine, error) {
	var r dbRoutine
	query := `SELECT * FROM routine WHERE id = $1 AND user_id = $2`
	if err := repo.db.GetContext(ctx, &r, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return routine.Routine{}, routine.ErrNotFound
		}
		return routine.Routine{}, errors.Wrap(err, "getting routine")
	}
	return r.toRoutine(), nil
}

func (repo *routineRepository) UpdateRoutine(ctx context.Context, r routine.Routine) (routine.Routine, error) {
	query := `
UPDATE routine
SET "time" = $3, title = $4, description = $5, category = $6, duration = $7, updated_at = $8
WHERE id = $1 AND user_id = $2
RETURNING created_at`
	err := repo.db.QueryRowxContext(
		ctx, query,
		r.ID, r.UserID, r.Time, r.Title, null.NewString(r.Description, r.Description != ""), r.Category, r.Duration, r.UpdatedAt,
	).Scan(&r.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return routine.Routine{}, routine.ErrNotFound
		}
		return routine.Routine{}, errors.Wrap(err, "updating routine")
	}
	return r, nil
}

func (repo *routineRepository) DeleteRoutine(ctx context.Context, userID, id string) error {
	// deleting an absent routine is a no-op
	_, err := repo.db.ExecContext(ctx, `DELETE FROM routine WHERE id = $1 AND user_id = $2`, id, userID)
	return errors.Wrap(err, "deleting routine")
}
