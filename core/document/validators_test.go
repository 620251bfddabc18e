package document

import (
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/dossiers/core"
)

func TestRegisterValidators(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	RegisterValidators(validate, translator)

	type params struct {
		Type string `json:"type" validate:"doctype"`
	}
	tests := []struct {
		typ     string
		wantErr string
	}{
		{typ: "birth_certificate"},
		{typ: "Carnet de vaccination"},
		{typ: "ParentalAuthorization"},
		{typ: "", wantErr: "type must be one of birth_certificate, vaccination_record, parental_authorization or school_record"},
		{typ: "passport", wantErr: "type must be one of birth_certificate, vaccination_record, parental_authorization or school_record"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			err := validate.Struct(params{Type: tt.typ})
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validate.Struct() error = %v", err)
				}
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			if !ok {
				t.Fatalf("validate.Struct() error = %v; want validator.ValidationErrors", err)
			}
			got := core.TranslateValidationErrors(vErrs, translator)
			if len(got.Fields) != 1 || got.Fields[0].Field != "type" || got.Fields[0].Error != tt.wantErr {
				t.Errorf("TranslateValidationErrors() = %+v; want type: %s", got.Fields, tt.wantErr)
			}
		})
	}
}
