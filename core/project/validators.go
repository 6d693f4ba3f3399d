package project

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/worksite/progress/core"
)

var (
	projectKindTag  = "projectkind"
	projectKindText = "invalid project kind"
)

// InitValidators registers this package's custom validators; call once at
// startup after core.InitValidators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(projectKindTag, projectKindValidation)
	core.RegisterCustomTranslation(validate, translator, projectKindTag, projectKindText)
}

func projectKindValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, kind := range AllKinds {
		if val == kind {
			return true
		}
	}
	return false
}
