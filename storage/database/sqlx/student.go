package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dossiers/core"
	"github.com/trezcool/dossiers/core/student"
)

var studentColumns = []string{
	"id", "registration_number", "first_name", "last_name", "guardian_email", "created_at", "updated_at",
}

type studentRow struct {
	ID                 string      `db:"id"`
	RegistrationNumber string      `db:"registration_number"`
	FirstName          string      `db:"first_name"`
	LastName           string      `db:"last_name"`
	GuardianEmail      null.String `db:"guardian_email"`
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
}

func (r studentRow) toStudent() student.Student {
	return student.Student{
		ID:                 r.ID,
		RegistrationNumber: r.RegistrationNumber,
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		GuardianEmail:      r.GuardianEmail.String,
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(std student.Student) (student.Student, error) {
	q, args, err := psql.Insert("students").
		Columns(studentColumns...).
		Values(
			std.ID, std.RegistrationNumber, std.FirstName, std.LastName,
			nullString(std.GuardianEmail), std.CreatedAt, std.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "building insert")
	}
	if _, err = repo.db.Exec(q, args...); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	q, args, err := psql.Select(studentColumns...).From("students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "building select")
	}

	var row studentRow
	if err = repo.db.Get(&row, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "selecting student")
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) FilterStudents(filter *student.QueryFilter, ordering ...core.DBOrdering) ([]student.Student, error) {
	sb := psql.Select(studentColumns...).From("students")
	if filter != nil && filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		sb = sb.Where(squirrel.Or{
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
			squirrel.ILike{"registration_number": pattern},
		})
	}
	sb = orderBy(sb, ordering, student.OrderingFields...).OrderBy("id")

	q, args, err := sb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building select")
	}
	var rows []studentRow
	if err = repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting students")
	}

	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toStudent())
	}
	return students, nil
}

// DeleteStudentsByID relies on ON DELETE CASCADE to remove documents and their history.
func (repo *studentRepository) DeleteStudentsByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	q, args, err := psql.Delete("students").Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building delete")
	}
	if _, err = repo.db.Exec(q, args...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return nil
}
