package student

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/dossiers/core"
)

type Student struct {
	ID                 string    `json:"id"`
	RegistrationNumber string    `json:"registration_number"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	GuardianEmail      string    `json:"guardian_email,omitempty"`
	CreatedAt          time.Time `json:"created_at"` // UTC
	UpdatedAt          time.Time `json:"updated_at"` // UTC
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	RegistrationNumber string `json:"registration_number" validate:"omitempty,max=50"`
	FirstName          string `json:"first_name" validate:"required,notblank,max=100"`
	LastName           string `json:"last_name" validate:"required,notblank,max=100"`
	GuardianEmail      string `json:"guardian_email" validate:"omitempty,email"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.RegistrationNumber = core.CleanString(ns.RegistrationNumber)
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.GuardianEmail = core.CleanString(ns.GuardianEmail, true /* lower */)
	return validate.Struct(ns)
}

type QueryFilter struct {
	// Search does a case-insensitive match on one of first name, last name or registration number.
	Search string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Orderings accepted by Service.Query.
var OrderingFields = []string{"last_name", "first_name", "registration_number", "created_at"}
