package routine

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

var (
	// errors
	ErrNotFound = errors.New("routine not found")
)

type (
	Repository interface {
		CreateRoutine(ctx context.Context, r Routine) (Routine, error)
		// QueryRoutines returns the owner's routines ordered by (time, created_at).
		QueryRoutines(ctx context.Context, userID string) ([]Routine, error)
		GetRoutine(ctx context.Context, userID, id string) (Routine, error)
		UpdateRoutine(ctx context.Context, r Routine) (Routine, error)
		// DeleteRoutine is a no-op if no matching row exists.
		DeleteRoutine(ctx context.Context, userID, id string) error
	}

	Service interface {
		List(ctx context.Context, userID string) ([]Routine, error)
		Add(ctx context.Context, userID string, nr NewRoutine) (Routine, error)
		Update(ctx context.Context, userID, id string, ur UpdateRoutine) (Routine, error)
		Remove(ctx context.Context, userID, id string) error
		TotalByCategory(ctx context.Context, userID, category string) (int, error)
	}

	service struct {
		repo     Repository
		notifier core.Notifier
		validate *validator.Validate
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, notifier core.Notifier, validate *validator.Validate) Service {
	return &service{
		repo:     repo,
		notifier: notifier,
		validate: validate,
	}
}

// List returns the owner's routines, always sorted ascending by Time
// (valid string compare: "HH:MM" is fixed-width and zero-padded) with
// arrival order preserved for equal times. Never nil.
func (svc *service) List(ctx context.Context, userID string) ([]Routine, error) {
	routines, err := svc.repo.QueryRoutines(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying routines")
	}
	if routines == nil {
		routines = []Routine{}
	}
	sort.SliceStable(routines, func(i, j int) bool { return routines[i].Time < routines[j].Time })
	return routines, nil
}

func (svc *service) Add(ctx context.Context, userID string, nr NewRoutine) (Routine, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return Routine{}, err
	}

	now := time.Now().UTC()
	r := Routine{
		Time:        nr.Time,
		Title:       nr.Title,
		Description: nr.Description,
		Category:    nr.Category,
		Duration:    nr.Duration,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r, err := svc.repo.CreateRoutine(ctx, r)
	if err != nil {
		svc.notify(userID, core.NoticeError, "Error adding routine", "Please try again later.")
		return Routine{}, errors.Wrap(err, "creating routine")
	}
	svc.notify(userID, core.NoticeSuccess, "Routine added", "Your new routine has been saved successfully.")
	return r, nil
}

func (svc *service) Update(ctx context.Context, userID, id string, ur UpdateRoutine) (Routine, error) {
	if err := ur.Validate(svc.validate); err != nil {
		return Routine{}, err
	}

	orig, err := svc.repo.GetRoutine(ctx, userID, id)
	if err != nil {
		return Routine{}, err
	}

	r := ur.merge(orig)
	r.UpdatedAt = time.Now().UTC()
	r, err = svc.repo.UpdateRoutine(ctx, r)
	if err != nil {
		svc.notify(userID, core.NoticeError, "Error updating routine", "Please try again later.")
		return Routine{}, errors.Wrap(err, "updating routine")
	}
	svc.notify(userID, core.NoticeSuccess, "Routine updated", "Your routine has been updated successfully.")
	return r, nil
}

// Remove deletes the routine; deleting an absent routine is a no-op success.
func (svc *service) Remove(ctx context.Context, userID, id string) error {
	if err := svc.repo.DeleteRoutine(ctx, userID, id); err != nil {
		svc.notify(userID, core.NoticeError, "Error deleting routine", "Please try again later.")
		return errors.Wrap(err, "deleting routine")
	}
	svc.notify(userID, core.NoticeSuccess, "Routine deleted", "Your routine has been deleted successfully.")
	return nil
}

func (svc *service) TotalByCategory(ctx context.Context, userID, category string) (int, error) {
	routines, err := svc.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	return TotalByCategory(routines, category), nil
}

func (svc *service) notify(userID, level, title, body string) {
	svc.notifier.Notify(core.Notice{
		UserID: userID,
		Level:  level,
		Title:  title,
		Body:   body,
		At:     time.Now().UTC(),
	})
}
