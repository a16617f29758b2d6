package routine

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
)

// Categories
const (
	CategoryStudy    = "study"
	CategoryClass    = "class"
	CategoryRest     = "rest"
	CategoryExercise = "exercise"
	CategoryMeal     = "meal"
)

var AllCategories = []string{CategoryStudy, CategoryClass, CategoryRest, CategoryExercise, CategoryMeal}

// CategoryMeta is the static display metadata attached to each category.
type CategoryMeta struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var categoryMetas = map[string]CategoryMeta{
	CategoryStudy:    {Label: "Study", Color: "blue", Icon: "book"},
	CategoryClass:    {Label: "Class", Color: "purple", Icon: "graduation-cap"},
	CategoryRest:     {Label: "Rest", Color: "green", Icon: "moon"},
	CategoryExercise: {Label: "Exercise", Color: "orange", Icon: "dumbbell"},
	CategoryMeal:     {Label: "Meal", Color: "red", Icon: "utensils"},
}

// MetaFor returns the display metadata for a category.
// An unknown category is a data-integrity error; callers get a zero meta.
func MetaFor(category string) (CategoryMeta, bool) {
	meta, ok := categoryMetas[category]
	return meta, ok
}

// Routine is a user-defined, time-boxed daily activity.
type Routine struct {
	ID          string    `json:"id"`
	Time        string    `json:"time"` // wall-clock "HH:MM", zero-padded
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Duration    int       `json:"duration"` // minutes
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewRoutine contains information needed to create a new Routine.
type NewRoutine struct {
	Time        string `json:"time" validate:"required,hhmm"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"required,category"`
	Duration    int    `json:"duration" validate:"required,min=5,max=480,mult5"`
}

func (nr *NewRoutine) Validate(validate *validator.Validate) error {
	nr.Time = core.CleanString(nr.Time)
	nr.Title = core.CleanString(nr.Title)
	nr.Description = core.CleanString(nr.Description)
	nr.Category = core.CleanString(nr.Category, true /* lower */)
	return validate.Struct(nr)
}

// UpdateRoutine defines what information may be provided to modify an existing Routine.
// Zero fields keep the original value.
type UpdateRoutine struct {
	Time        string  `json:"time" validate:"omitempty,hhmm"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Category    string  `json:"category" validate:"omitempty,category"`
	Duration    *int    `json:"duration" validate:"omitempty,min=5,max=480,mult5"`
}

func (ur *UpdateRoutine) Validate(validate *validator.Validate) error {
	ur.Time = core.CleanString(ur.Time)
	ur.Title = core.CleanString(ur.Title)
	if ur.Description != nil {
		desc := core.CleanString(*ur.Description)
		ur.Description = &desc
	}
	ur.Category = core.CleanString(ur.Category, true /* lower */)
	return validate.Struct(ur)
}

// merge applies the set fields onto orig.
func (ur UpdateRoutine) merge(orig Routine) Routine {
	if ur.Time != "" {
		orig.Time = ur.Time
	}
	if ur.Title != "" {
		orig.Title = ur.Title
	}
	if ur.Description != nil {
		orig.Description = *ur.Description
	}
	if ur.Category != "" {
		orig.Category = ur.Category
	}
	if ur.Duration != nil {
		orig.Duration = *ur.Duration
	}
	return orig
}
