package routine_test

import (
	"context"
	"sort"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/routine"
	notifysvc "github.com/trezcool/ratiba/services/notify"
	inmemdb "github.com/trezcool/ratiba/storage/database/inmem"
)

const owner = "2ed1780c-74ff-4a50-b54e-f3d0e79dbca7"

func setup(t *testing.T) (routine.Service, *notifysvc.MemoryNotifier) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	notifier := notifysvc.NewMemoryNotifier()
	svc := routine.NewService(inmemdb.NewRoutineRepository(db), notifier, newValidate())
	return svc, notifier
}

func newValidate() *validator.Validate {
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	routine.InitValidators(validate, translator)
	return validate
}

func newRoutine(time, title, category string, duration int) routine.NewRoutine {
	return routine.NewRoutine{
		Time:     time,
		Title:    title,
		Category: category,
		Duration: duration,
	}
}

func TestService_AddListSorted(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	drafts := []routine.NewRoutine{
		newRoutine("12:30", "Lunch", routine.CategoryMeal, 45),
		newRoutine("07:00", "Morning run", routine.CategoryExercise, 30),
		newRoutine("09:00", "Algorithms", routine.CategoryClass, 90),
		newRoutine("09:00", "Reading", routine.CategoryStudy, 60), // same time; arrival order must hold
	}
	for _, nr := range drafts {
		if _, err := svc.Add(ctx, owner, nr); err != nil {
			t.Fatalf("Add() failed: %v", err)
		}
	}

	routines, err := svc.List(ctx, owner)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	assert.Len(t, routines, 4)
	assert.True(t, sort.SliceIsSorted(routines, func(i, j int) bool { return routines[i].Time < routines[j].Time }))
	assert.Equal(t, "Algorithms", routines[1].Title)
	assert.Equal(t, "Reading", routines[2].Title)
}

func TestService_AddValidation(t *testing.T) {
	svc, notifier := setup(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		draft routine.NewRoutine
	}{
		{name: "empty time", draft: newRoutine("", "Reading", routine.CategoryStudy, 60)},
		{name: "empty title", draft: newRoutine("09:00", "", routine.CategoryStudy, 60)},
		{name: "bad time format", draft: newRoutine("9:00", "Reading", routine.CategoryStudy, 60)},
		{name: "unknown category", draft: newRoutine("09:00", "Reading", "gaming", 60)},
		{name: "duration too short", draft: newRoutine("09:00", "Reading", routine.CategoryStudy, 3)},
		{name: "duration too long", draft: newRoutine("09:00", "Reading", routine.CategoryStudy, 485)},
		{name: "duration off step", draft: newRoutine("09:00", "Reading", routine.CategoryStudy, 42)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, owner, tt.draft)
			if err == nil {
				t.Fatalf("Add() expected a validation error")
			}
			if _, ok := err.(validator.ValidationErrors); !ok {
				t.Errorf("Add() error = %T; want validator.ValidationErrors", err)
			}
		})
	}

	// list unchanged, no network-side notice emitted
	routines, err := svc.List(ctx, owner)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	assert.Empty(t, routines)
	assert.Empty(t, notifier.Notices(owner))
}

func TestService_UpdatePartial(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	nr := newRoutine("09:00", "Reading", routine.CategoryStudy, 60)
	nr.Description = "Chapter 4"
	orig, err := svc.Add(ctx, owner, nr)
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	duration := 90
	updated, err := svc.Update(ctx, owner, orig.ID, routine.UpdateRoutine{Duration: &duration})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	assert.Equal(t, 90, updated.Duration)
	assert.Equal(t, orig.Time, updated.Time)
	assert.Equal(t, orig.Title, updated.Title)
	assert.Equal(t, orig.Description, updated.Description)
	assert.Equal(t, orig.Category, updated.Category)

	routines, _ := svc.List(ctx, owner)
	assert.Len(t, routines, 1)
	assert.Equal(t, 90, routines[0].Duration)
}

func TestService_UpdateResorts(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	first, _ := svc.Add(ctx, owner, newRoutine("08:00", "Breakfast", routine.CategoryMeal, 30))
	_, _ = svc.Add(ctx, owner, newRoutine("10:00", "Lecture", routine.CategoryClass, 90))

	if _, err := svc.Update(ctx, owner, first.ID, routine.UpdateRoutine{Time: "11:00"}); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	routines, _ := svc.List(ctx, owner)
	assert.Equal(t, "Lecture", routines[0].Title)
	assert.Equal(t, "Breakfast", routines[1].Title)
}

func TestService_UpdateNotFound(t *testing.T) {
	svc, _ := setup(t)

	_, err := svc.Update(context.Background(), owner, "9e0277f1-9523-48a8-a4a5-7132dbcd7e1a", routine.UpdateRoutine{Title: "Nope"})
	if errors.Cause(err) != routine.ErrNotFound {
		t.Errorf("Update() error = %v; want ErrNotFound", err)
	}
}

func TestService_RemoveIdempotent(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	r, err := svc.Add(ctx, owner, newRoutine("09:00", "Reading", routine.CategoryStudy, 60))
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	if err := svc.Remove(ctx, owner, r.ID); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	routines, _ := svc.List(ctx, owner)
	assert.Empty(t, routines)

	// repeated delete is a no-op, not an error
	if err := svc.Remove(ctx, owner, r.ID); err != nil {
		t.Errorf("Remove() repeat error = %v; want nil", err)
	}
}

func TestService_OwnerScoping(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	other := "b2e9c1ec-54ea-4adb-b441-0b76998230b8"

	mine, _ := svc.Add(ctx, owner, newRoutine("09:00", "Reading", routine.CategoryStudy, 60))
	_, _ = svc.Add(ctx, other, newRoutine("10:00", "Gym", routine.CategoryExercise, 45))

	routines, _ := svc.List(ctx, owner)
	assert.Len(t, routines, 1)

	// another owner cannot touch my routine
	_, err := svc.Update(ctx, other, mine.ID, routine.UpdateRoutine{Title: "Hijacked"})
	if errors.Cause(err) != routine.ErrNotFound {
		t.Errorf("Update() error = %v; want ErrNotFound", err)
	}
}

func TestService_AddKeepsCategoryOrder(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, owner, newRoutine("09:00", "Reading", routine.CategoryStudy, 60)); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if _, err := svc.Add(ctx, owner, newRoutine("10:00", "Gaming", "gaming", 60)); err == nil {
		t.Fatalf("Add() expected a validation error")
	}

	// the summary endpoint iterates AllCategories; validation must not reorder it
	assert.Equal(
		t,
		[]string{routine.CategoryStudy, routine.CategoryClass, routine.CategoryRest, routine.CategoryExercise, routine.CategoryMeal},
		routine.AllCategories,
	)
}

type failingRepo struct {
	routine.Repository
	err error
}

func (repo failingRepo) CreateRoutine(context.Context, routine.Routine) (routine.Routine, error) {
	return routine.Routine{}, repo.err
}

func TestService_AddPersistenceFailure(t *testing.T) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	notifier := notifysvc.NewMemoryNotifier()
	repo := failingRepo{Repository: inmemdb.NewRoutineRepository(db), err: errors.New("connection reset")}
	svc := routine.NewService(repo, notifier, newValidate())
	ctx := context.Background()

	_, err = svc.Add(ctx, owner, newRoutine("09:00", "Reading", routine.CategoryStudy, 60))
	if err == nil {
		t.Fatalf("Add() expected an error")
	}

	// no partial record, failure notice recorded
	routines, err := svc.List(ctx, owner)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	assert.Empty(t, routines)

	notices := notifier.Notices(owner)
	if assert.Len(t, notices, 1) {
		assert.Equal(t, core.NoticeError, notices[0].Level)
		assert.Equal(t, "Error adding routine", notices[0].Title)
	}
}
