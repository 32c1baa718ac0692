package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/student"
)

const studentColumns = `id, first_name, last_name, birth_date, guardian_name, guardian_phone, address, status, created_at, updated_at`

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) student.Repository {
	return &studentRepository{exec: exec}
}

func (repo *studentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	std.ID = uuid.New().String()

	query := `INSERT INTO students
		(id, first_name, last_name, birth_date, guardian_name, guardian_phone, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.getExec(exec).ExecContext(ctx, query,
		std.ID, std.FirstName, std.LastName, std.BirthDate, std.GuardianName,
		std.GuardianPhone, std.Address, std.Status, std.CreatedAt, std.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE id = $1"
	std, err := scanStudent(repo.getExec(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return std, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context, exec ...core.DBExecutor) ([]student.Student, error) {
	query := "SELECT " + studentColumns + " FROM students ORDER BY last_name, first_name"
	return repo.queryStudents(ctx, repo.getExec(exec), query)
}

func (repo *studentRepository) ListStudentsByStatus(ctx context.Context, status student.Status, exec ...core.DBExecutor) ([]student.Student, error) {
	query := "SELECT " + studentColumns + " FROM students WHERE status = $1 ORDER BY last_name, first_name"
	return repo.queryStudents(ctx, repo.getExec(exec), query, status)
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	// empty fields keep their stored value
	query := `UPDATE students SET
			first_name = COALESCE(NULLIF($2, ''), first_name),
			last_name = COALESCE(NULLIF($3, ''), last_name),
			guardian_name = COALESCE(NULLIF($4, ''), guardian_name),
			guardian_phone = COALESCE(NULLIF($5, ''), guardian_phone),
			address = COALESCE(NULLIF($6, ''), address),
			status = COALESCE(NULLIF($7, ''), status),
			updated_at = $8
		WHERE id = $1
		RETURNING ` + studentColumns
	updated, err := scanStudent(repo.getExec(exec).QueryRowContext(ctx, query,
		std.ID, std.FirstName, std.LastName, std.GuardianName, std.GuardianPhone,
		std.Address, std.Status, std.UpdatedAt,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return updated, nil
}

func (repo *studentRepository) queryStudents(ctx context.Context, exec core.DBExecutor, query string, args ...interface{}) ([]student.Student, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	defer func() { _ = rows.Close() }()

	students := make([]student.Student, 0)
	for rows.Next() {
		std, err := scanStudent(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning student")
		}
		students = append(students, std)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func scanStudent(row rowScanner) (student.Student, error) {
	var std student.Student
	err := row.Scan(
		&std.ID, &std.FirstName, &std.LastName, &std.BirthDate, &std.GuardianName,
		&std.GuardianPhone, &std.Address, &std.Status, &std.CreatedAt, &std.UpdatedAt,
	)
	return std, err
}
