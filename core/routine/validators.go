package routine

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
)

var (
	hhmmTag   = "hhmm"
	hhmmText  = "must be a zero-padded HH:MM time"
	hhmmRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	categoryTag  = "category"
	categoryText = "invalid category"

	mult5Tag  = "mult5"
	mult5Text = "must be a multiple of 5 minutes"
)

// InitValidators registers the routine validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(hhmmTag, hhmmValidation)
	core.RegisterCustomTranslation(validate, translator, hhmmTag, hhmmText)

	_ = validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)

	_ = validate.RegisterValidation(mult5Tag, mult5Validation)
	core.RegisterCustomTranslation(validate, translator, mult5Tag, mult5Text)
}

// Custom Validators

// hhmmValidation checks for a fixed-width, zero-padded wall-clock time.
// The fixed width is what makes lexicographic ordering on Routine.Time valid.
func hhmmValidation(fl validator.FieldLevel) bool {
	return hhmmRegex.MatchString(fl.Field().String())
}

// categoryValidation checks that the category is a known one. Read-only lookup;
// AllCategories keeps its declared order (the summary endpoint iterates it).
func categoryValidation(fl validator.FieldLevel) bool {
	_, ok := MetaFor(fl.Field().String())
	return ok
}

// mult5Validation enforces the 5-minute duration granularity.
func mult5Validation(fl validator.FieldLevel) bool {
	return fl.Field().Int()%5 == 0
}
