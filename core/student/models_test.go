package student

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/dossiers/core"
)

func TestNewStudent_Validate(t *testing.T) {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	tests := []struct {
		name      string
		ns        NewStudent
		wantErr   bool
		wantClean NewStudent
	}{
		{
			name:      "valid",
			ns:        NewStudent{RegistrationNumber: " 2024-001 ", FirstName: " Awa", LastName: "Diallo ", GuardianEmail: " Parent@Test.CD "},
			wantClean: NewStudent{RegistrationNumber: "2024-001", FirstName: "Awa", LastName: "Diallo", GuardianEmail: "parent@test.cd"},
		},
		{name: "no first name", ns: NewStudent{LastName: "Diallo"}, wantErr: true},
		{name: "blank last name", ns: NewStudent{FirstName: "Awa", LastName: "   "}, wantErr: true},
		{name: "bad email", ns: NewStudent{FirstName: "Awa", LastName: "Diallo", GuardianEmail: "lol"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ns.Validate(validate)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v; wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				assert.Equal(t, tt.wantClean, tt.ns)
			}
		})
	}
}

func TestStudent_FullName(t *testing.T) {
	assert.Equal(t, "Awa Diallo", Student{FirstName: "Awa", LastName: "Diallo"}.FullName())
	assert.Equal(t, "Diallo", Student{LastName: "Diallo"}.FullName())
}

func TestQueryFilter(t *testing.T) {
	qf := &QueryFilter{Search: "  "}
	qf.Clean()
	assert.True(t, qf.IsEmpty())
}
