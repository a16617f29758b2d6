package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core/routine"
)

type routineRepository struct {
	db *routineTable
}

var _ routine.Repository = (*routineRepository)(nil)

func NewRoutineRepository(db *DB) routine.Repository {
	return &routineRepository{db: db.routine}
}

func (repo *routineRepository) CreateRoutine(_ context.Context, r routine.Routine) (routine.Routine, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	r.ID = uuid.New().String()
	repo.db.table[r.ID] = &r
	return r, nil
}

func (repo *routineRepository) QueryRoutines(_ context.Context, userID string) ([]routine.Routine, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	routines := make([]routine.Routine, 0, len(repo.db.table))
	for _, r := range repo.db.table {
		if r.UserID == userID {
			routines = append(routines, *r)
		}
	}
	// (time, created_at) ordering as per the SQL query
	sort.Slice(routines, func(i, j int) bool {
		if routines[i].Time != routines[j].Time {
			return routines[i].Time < routines[j].Time
		}
		return routines[i].CreatedAt.Before(routines[j].CreatedAt)
	})
	return routines, nil
}

func (repo *routineRepository) GetRoutine(_ context.Context, userID, id string) (routine.Routine, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.table[id]; ok && r.UserID == userID {
		return *r, nil
	}
	return routine.Routine{}, routine.ErrNotFound
}

func (repo *routineRepository) UpdateRoutine(_ context.Context, r routine.Routine) (routine.Routine, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[r.ID]
	if !ok || orig.UserID != r.UserID {
		return routine.Routine{}, routine.ErrNotFound
	}
	r.CreatedAt = orig.CreatedAt
	repo.db.table[r.ID] = &r
	return r, nil
}

func (repo *routineRepository) DeleteRoutine(_ context.Context, userID, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if r, ok := repo.db.table[id]; ok && r.UserID == userID {
		delete(repo.db.table, id)
	}
	// deleting an absent routine is a no-op
	return nil
}
