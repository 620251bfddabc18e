package document

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/dossiers/core"
)

var (
	docTypeTag  = "doctype"
	docTypeText = "{0} must be one of birth_certificate, vaccination_record, parental_authorization or school_record"
)

// RegisterValidators registers the `doctype` tag: any spelling ParseType understands.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(docTypeTag, docTypeValidation)
	core.RegisterCustomTranslation(validate, translator, docTypeTag, docTypeText)
}

func docTypeValidation(fl validator.FieldLevel) bool {
	if raw, ok := fl.Field().Interface().(string); ok {
		_, err := ParseType(raw)
		return err == nil
	}
	return false
}
