package requirement

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vitrine/core"
)

var (
	typeTag  = "reqtype"
	typeText = "invalid requirement type"

	urgencyTag  = "requrgency"
	urgencyText = "invalid requirement urgency"

	statusTag  = "reqstatus"
	statusText = "invalid requirement status"
)

// InitValidators registers the requirement package's custom validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(typeTag, typeValidation)
	core.RegisterCustomTranslation(validate, translator, typeTag, typeText)

	_ = validate.RegisterValidation(urgencyTag, urgencyValidation)
	core.RegisterCustomTranslation(validate, translator, urgencyTag, urgencyText)

	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

// Custom Validators

func typeValidation(fl validator.FieldLevel) bool {
	return Type(fl.Field().String()).IsValid()
}

func urgencyValidation(fl validator.FieldLevel) bool {
	return Urgency(fl.Field().String()).IsValid()
}

func statusValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).IsValid()
}
