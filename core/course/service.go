package course

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/rawdahq/rawda/core"
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		GetCourseByID(ctx context.Context, id string, exec ...core.DBExecutor) (Course, error)
		QueryAllCourses(ctx context.Context, exec ...core.DBExecutor) ([]Course, error)

		CreateExtraStudent(ctx context.Context, std ExtraStudent, exec ...core.DBExecutor) (ExtraStudent, error)
		GetExtraStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (ExtraStudent, error)
		QueryAllExtraStudents(ctx context.Context, exec ...core.DBExecutor) ([]ExtraStudent, error)

		CreateEnrollment(ctx context.Context, enr Enrollment, exec ...core.DBExecutor) (Enrollment, error)
		GetEnrollmentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Enrollment, error)
		ListEnrollmentsByStatus(ctx context.Context, status EnrollmentStatus, exec ...core.DBExecutor) ([]Enrollment, error)
		UpdateEnrollmentStatus(ctx context.Context, id string, status EnrollmentStatus, exec ...core.DBExecutor) (Enrollment, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	price, err := decimal.NewFromString(nc.MonthlyPrice)
	if err != nil {
		return Course{}, core.NewValidationError(errors.New("invalid monthly price"), core.FieldError{Field: "monthly_price", Error: "unparseable monetary amount"})
	}
	now := time.Now().UTC()
	crs := Course{
		Title:        core.CleanString(nc.Title),
		MonthlyPrice: price,
		Schedule:     core.CleanString(nc.Schedule),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) GetCourseByID(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourseByID(ctx, id)
}

func (svc *Service) QueryAllCourses(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) CreateExtraStudent(ctx context.Context, ns NewExtraStudent) (ExtraStudent, error) {
	now := time.Now().UTC()
	std := ExtraStudent{
		FirstName:     core.CleanString(ns.FirstName),
		LastName:      core.CleanString(ns.LastName),
		GuardianName:  core.CleanString(ns.GuardianName),
		GuardianPhone: core.CleanString(ns.GuardianPhone),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateExtraStudent(ctx, std)
}

func (svc *Service) GetExtraStudentByID(ctx context.Context, id string) (ExtraStudent, error) {
	return svc.repo.GetExtraStudentByID(ctx, id)
}

func (svc *Service) QueryAllExtraStudents(ctx context.Context) ([]ExtraStudent, error) {
	return svc.repo.QueryAllExtraStudents(ctx)
}

// Enroll links an extra student to a course; the enrollment starts ACTIVE and
// becomes billable from the next generation run.
func (svc *Service) Enroll(ctx context.Context, ne NewEnrollment) (Enrollment, error) {
	if _, err := svc.repo.GetExtraStudentByID(ctx, ne.StudentID); err != nil {
		return Enrollment{}, err
	}
	if _, err := svc.repo.GetCourseByID(ctx, ne.CourseID); err != nil {
		return Enrollment{}, err
	}
	now := time.Now().UTC()
	enr := Enrollment{
		StudentID:  ne.StudentID,
		CourseID:   ne.CourseID,
		Status:     EnrollmentActive,
		EnrolledAt: now,
		Notes:      core.CleanString(ne.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateEnrollment(ctx, enr)
}

func (svc *Service) ListActiveEnrollments(ctx context.Context) ([]Enrollment, error) {
	return svc.repo.ListEnrollmentsByStatus(ctx, EnrollmentActive)
}

func (svc *Service) UpdateEnrollmentStatus(ctx context.Context, id string, status EnrollmentStatus) (Enrollment, error) {
	if !status.Valid() {
		return Enrollment{}, core.NewValidationError(errors.New("invalid status"), core.FieldError{Field: "status", Error: "unknown enrollment status"})
	}
	return svc.repo.UpdateEnrollmentStatus(ctx, id, status)
}
