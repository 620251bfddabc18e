package student

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/dossiers/core"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

type (
	Repository interface {
		CreateStudent(std Student) (Student, error)
		GetStudentByID(id string) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields, all students if filter is nil.
		FilterStudents(filter *QueryFilter, ordering ...core.DBOrdering) ([]Student, error)
		// DeleteStudentsByID also removes the document sets of the deleted students.
		DeleteStudentsByID(ids ...string) error
	}

	Service struct {
		repo Repository
		now  func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (svc *Service) Create(ns NewStudent) (Student, error) {
	now := svc.now().UTC()
	return svc.repo.CreateStudent(Student{
		ID:                 uuid.NewString(),
		RegistrationNumber: ns.RegistrationNumber,
		FirstName:          ns.FirstName,
		LastName:           ns.LastName,
		GuardianEmail:      ns.GuardianEmail,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
}

func (svc *Service) Get(id string) (Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Student{}, ErrNotFound
	}
	return svc.repo.GetStudentByID(id)
}

func (svc *Service) Query(filter *QueryFilter, ordering ...core.DBOrdering) ([]Student, error) {
	if filter != nil {
		filter.Clean()
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "last_name", Ascending: true}, {Field: "first_name", Ascending: true}}
	}
	return svc.repo.FilterStudents(filter, ordering...)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteStudentsByID(ids...)
}
