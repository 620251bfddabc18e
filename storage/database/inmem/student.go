package inmemdb

import (
	"sort"
	"strings"

	"github.com/trezcool/dossiers/core"
	"github.com/trezcool/dossiers/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(filter *student.QueryFilter, ordering ...core.DBOrdering) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	search := ""
	if filter != nil {
		search = strings.ToLower(filter.Search)
	}
	students := make([]student.Student, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		if search == "" ||
			strings.Contains(strings.ToLower(std.FirstName), search) ||
			strings.Contains(strings.ToLower(std.LastName), search) ||
			strings.Contains(strings.ToLower(std.RegistrationNumber), search) {
			students = append(students, *std)
		}
	}
	sort.SliceStable(students, func(i, j int) bool { return lessStudent(students[i], students[j], ordering) })
	return students, nil
}

func (repo *studentRepository) DeleteStudentsByID(ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.students, id)
		delete(repo.db.documents, id)
	}
	return nil
}

// lessStudent compares on each ordering in turn, then on ID to keep results stable.
func lessStudent(a, b student.Student, ordering []core.DBOrdering) bool {
	for _, ord := range ordering {
		var c int
		switch ord.Field {
		case "first_name":
			c = strings.Compare(strings.ToLower(a.FirstName), strings.ToLower(b.FirstName))
		case "last_name":
			c = strings.Compare(strings.ToLower(a.LastName), strings.ToLower(b.LastName))
		case "registration_number":
			c = strings.Compare(a.RegistrationNumber, b.RegistrationNumber)
		case "created_at":
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			continue
		}
		if ord.Ascending {
			return c < 0
		}
		return c > 0
	}
	return a.ID < b.ID
}
