package achievement

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vitrine/core"
)

// RejectReasonMinLen is the minimum length of a rejection reason. The review UI
// asks reviewers for a meaningful explanation, not a bare "no".
const RejectReasonMinLen = 20

var (
	categoryTag  = "achcategory"
	categoryText = "invalid achievement category"

	levelTag  = "achlevel"
	levelText = "invalid achievement level"

	priceDescTag  = "pricedesc"
	priceDescText = `price must be a fixed amount, a "lo-hi" range or "negotiable"`

	rejectReasonTag  = "rejectreason"
	rejectReasonText = fmt.Sprintf("rejection reason must contain at least %d characters", RejectReasonMinLen)
)

// InitValidators registers the achievement package's custom validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)

	_ = validate.RegisterValidation(levelTag, levelValidation)
	core.RegisterCustomTranslation(validate, translator, levelTag, levelText)

	_ = validate.RegisterValidation(priceDescTag, priceDescValidation)
	core.RegisterCustomTranslation(validate, translator, priceDescTag, priceDescText)

	_ = validate.RegisterValidation(rejectReasonTag, rejectReasonValidation)
	core.RegisterCustomTranslation(validate, translator, rejectReasonTag, rejectReasonText)
}

// Custom Validators

func categoryValidation(fl validator.FieldLevel) bool {
	return Category(fl.Field().String()).IsValid()
}

func levelValidation(fl validator.FieldLevel) bool {
	return Level(fl.Field().String()).IsValid()
}

func priceDescValidation(fl validator.FieldLevel) bool {
	_, ok := ParsePrice(fl.Field().String())
	return ok
}

func rejectReasonValidation(fl validator.FieldLevel) bool {
	return len(core.CleanString(fl.Field().String())) >= RejectReasonMinLen
}
