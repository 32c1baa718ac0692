package dummydb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/course"
)

type courseRepository struct {
	courses      *courseTable
	students     *extraStudentTable
	enrollments  *enrollmentTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{
		courses:     db.course,
		students:    db.extraStudent,
		enrollments: db.enrollment,
	}
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course, _ ...core.DBExecutor) (course.Course, error) {
	repo.courses.Lock()
	defer repo.courses.Unlock()

	crs.ID = uuid.New().String()
	repo.courses.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(_ context.Context, id string, _ ...core.DBExecutor) (course.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	if crs, ok := repo.courses.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrCourseNotFound
}

func (repo *courseRepository) QueryAllCourses(_ context.Context, _ ...core.DBExecutor) ([]course.Course, error) {
	repo.courses.RLock()
	defer repo.courses.RUnlock()

	courses := make([]course.Course, 0, len(repo.courses.table))
	for _, crs := range repo.courses.table {
		courses = append(courses, *crs)
	}
	return courses, nil
}

func (repo *courseRepository) CreateExtraStudent(_ context.Context, std course.ExtraStudent, _ ...core.DBExecutor) (course.ExtraStudent, error) {
	repo.students.Lock()
	defer repo.students.Unlock()

	std.ID = uuid.New().String()
	repo.students.table[std.ID] = &std
	return std, nil
}

func (repo *courseRepository) GetExtraStudentByID(_ context.Context, id string, _ ...core.DBExecutor) (course.ExtraStudent, error) {
	repo.students.RLock()
	defer repo.students.RUnlock()

	if std, ok := repo.students.table[id]; ok {
		return *std, nil
	}
	return course.ExtraStudent{}, course.ErrStudentNotFound
}

func (repo *courseRepository) QueryAllExtraStudents(_ context.Context, _ ...core.DBExecutor) ([]course.ExtraStudent, error) {
	repo.students.RLock()
	defer repo.students.RUnlock()

	students := make([]course.ExtraStudent, 0, len(repo.students.table))
	for _, std := range repo.students.table {
		students = append(students, *std)
	}
	return students, nil
}

func (repo *courseRepository) CreateEnrollment(_ context.Context, enr course.Enrollment, _ ...core.DBExecutor) (course.Enrollment, error) {
	repo.enrollments.Lock()
	defer repo.enrollments.Unlock()

	enr.ID = uuid.New().String()
	repo.enrollments.table[enr.ID] = &enr
	return enr, nil
}

func (repo *courseRepository) GetEnrollmentByID(_ context.Context, id string, _ ...core.DBExecutor) (course.Enrollment, error) {
	repo.enrollments.RLock()
	defer repo.enrollments.RUnlock()

	if enr, ok := repo.enrollments.table[id]; ok {
		return *enr, nil
	}
	return course.Enrollment{}, course.ErrEnrollmentNotFound
}

func (repo *courseRepository) ListEnrollmentsByStatus(_ context.Context, status course.EnrollmentStatus, _ ...core.DBExecutor) ([]course.Enrollment, error) {
	repo.enrollments.RLock()
	defer repo.enrollments.RUnlock()

	enrollments := make([]course.Enrollment, 0)
	for _, enr := range repo.enrollments.table {
		if enr.Status == status {
			enrollments = append(enrollments, *enr)
		}
	}
	return enrollments, nil
}

func (repo *courseRepository) UpdateEnrollmentStatus(_ context.Context, id string, status course.EnrollmentStatus, _ ...core.DBExecutor) (course.Enrollment, error) {
	repo.enrollments.Lock()
	defer repo.enrollments.Unlock()

	enr, ok := repo.enrollments.table[id]
	if !ok {
		return course.Enrollment{}, course.ErrEnrollmentNotFound
	}
	enr.Status = status
	enr.UpdatedAt = time.Now().UTC()
	return *enr, nil
}
