package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/course"
)

const (
	courseColumns       = `id, title, monthly_price, schedule, active, created_at, updated_at`
	extraStudentColumns = `id, first_name, last_name, guardian_name, guardian_phone, created_at, updated_at`
	enrollmentColumns   = `id, student_id, course_id, status, enrolled_at, notes, created_at, updated_at`
)

type courseRepository struct {
	exec core.DBExecutor
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) course.Repository {
	return &courseRepository{exec: exec}
}

func (repo *courseRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	crs.ID = uuid.New().String()

	query := `INSERT INTO extra_courses (id, title, monthly_price, schedule, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.getExec(exec).ExecContext(ctx, query,
		crs.ID, crs.Title, crs.MonthlyPrice, crs.Schedule, crs.Active, crs.CreatedAt, crs.UpdatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string, exec ...core.DBExecutor) (course.Course, error) {
	query := "SELECT " + courseColumns + " FROM extra_courses WHERE id = $1"
	crs, err := scanCourse(repo.getExec(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrCourseNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context, exec ...core.DBExecutor) ([]course.Course, error) {
	query := "SELECT " + courseColumns + " FROM extra_courses ORDER BY title"
	rows, err := repo.getExec(exec).QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	defer func() { _ = rows.Close() }()

	courses := make([]course.Course, 0)
	for rows.Next() {
		crs, err := scanCourse(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning course")
		}
		courses = append(courses, crs)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo *courseRepository) CreateExtraStudent(ctx context.Context, std course.ExtraStudent, exec ...core.DBExecutor) (course.ExtraStudent, error) {
	std.ID = uuid.New().String()

	query := `INSERT INTO extra_students (id, first_name, last_name, guardian_name, guardian_phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.getExec(exec).ExecContext(ctx, query,
		std.ID, std.FirstName, std.LastName, std.GuardianName, std.GuardianPhone, std.CreatedAt, std.UpdatedAt,
	)
	if err != nil {
		return course.ExtraStudent{}, errors.Wrap(err, "inserting extra student")
	}
	return std, nil
}

func (repo *courseRepository) GetExtraStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (course.ExtraStudent, error) {
	query := "SELECT " + extraStudentColumns + " FROM extra_students WHERE id = $1"
	std, err := scanExtraStudent(repo.getExec(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return course.ExtraStudent{}, course.ErrStudentNotFound
		}
		return course.ExtraStudent{}, errors.Wrap(err, "getting extra student")
	}
	return std, nil
}

func (repo *courseRepository) QueryAllExtraStudents(ctx context.Context, exec ...core.DBExecutor) ([]course.ExtraStudent, error) {
	query := "SELECT " + extraStudentColumns + " FROM extra_students ORDER BY last_name, first_name"
	rows, err := repo.getExec(exec).QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "querying extra students")
	}
	defer func() { _ = rows.Close() }()

	students := make([]course.ExtraStudent, 0)
	for rows.Next() {
		std, err := scanExtraStudent(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning extra student")
		}
		students = append(students, std)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying extra students")
	}
	return students, nil
}

func (repo *courseRepository) CreateEnrollment(ctx context.Context, enr course.Enrollment, exec ...core.DBExecutor) (course.Enrollment, error) {
	enr.ID = uuid.New().String()

	query := `INSERT INTO extra_enrollments (id, student_id, course_id, status, enrolled_at, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.getExec(exec).ExecContext(ctx, query,
		enr.ID, enr.StudentID, enr.CourseID, enr.Status, enr.EnrolledAt, enr.Notes, enr.CreatedAt, enr.UpdatedAt,
	)
	if err != nil {
		return course.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo *courseRepository) GetEnrollmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (course.Enrollment, error) {
	query := "SELECT " + enrollmentColumns + " FROM extra_enrollments WHERE id = $1"
	enr, err := scanEnrollment(repo.getExec(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Enrollment{}, course.ErrEnrollmentNotFound
		}
		return course.Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	return enr, nil
}

func (repo *courseRepository) ListEnrollmentsByStatus(ctx context.Context, status course.EnrollmentStatus, exec ...core.DBExecutor) ([]course.Enrollment, error) {
	query := "SELECT " + enrollmentColumns + " FROM extra_enrollments WHERE status = $1 ORDER BY enrolled_at"
	rows, err := repo.getExec(exec).QueryContext(ctx, query, status)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	defer func() { _ = rows.Close() }()

	enrollments := make([]course.Enrollment, 0)
	for rows.Next() {
		enr, err := scanEnrollment(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning enrollment")
		}
		enrollments = append(enrollments, enr)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	return enrollments, nil
}

func (repo *courseRepository) UpdateEnrollmentStatus(ctx context.Context, id string, status course.EnrollmentStatus, exec ...core.DBExecutor) (course.Enrollment, error) {
	query := `UPDATE extra_enrollments SET status = $2, updated_at = $3 WHERE id = $1 RETURNING ` + enrollmentColumns
	enr, err := scanEnrollment(repo.getExec(exec).QueryRowContext(ctx, query, id, status, time.Now().UTC()))
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Enrollment{}, course.ErrEnrollmentNotFound
		}
		return course.Enrollment{}, errors.Wrap(err, "updating enrollment status")
	}
	return enr, nil
}

func scanCourse(row rowScanner) (course.Course, error) {
	var crs course.Course
	err := row.Scan(&crs.ID, &crs.Title, &crs.MonthlyPrice, &crs.Schedule, &crs.Active, &crs.CreatedAt, &crs.UpdatedAt)
	return crs, err
}

func scanExtraStudent(row rowScanner) (course.ExtraStudent, error) {
	var std course.ExtraStudent
	err := row.Scan(&std.ID, &std.FirstName, &std.LastName, &std.GuardianName, &std.GuardianPhone, &std.CreatedAt, &std.UpdatedAt)
	return std, err
}

func scanEnrollment(row rowScanner) (course.Enrollment, error) {
	var enr course.Enrollment
	err := row.Scan(&enr.ID, &enr.StudentID, &enr.CourseID, &enr.Status, &enr.EnrolledAt, &enr.Notes, &enr.CreatedAt, &enr.UpdatedAt)
	return enr, err
}
