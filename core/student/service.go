package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/rawdahq/rawda/core"
)

const dateLayout = "2006-01-02"

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		QueryAllStudents(ctx context.Context, exec ...core.DBExecutor) ([]Student, error)
		ListStudentsByStatus(ctx context.Context, status Status, exec ...core.DBExecutor) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	birthDate, err := time.Parse(dateLayout, ns.BirthDate)
	if err != nil {
		return Student{}, core.NewValidationError(errors.New("invalid birth date"), core.FieldError{Field: "birth_date", Error: "expected YYYY-MM-DD"})
	}
	now := time.Now().UTC()
	std := Student{
		FirstName:     core.CleanString(ns.FirstName),
		LastName:      core.CleanString(ns.LastName),
		BirthDate:     birthDate,
		GuardianName:  core.CleanString(ns.GuardianName),
		GuardianPhone: core.CleanString(ns.GuardianPhone),
		Address:       core.CleanString(ns.Address),
		Status:        StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *Service) ListActive(ctx context.Context) ([]Student, error) {
	return svc.repo.ListStudentsByStatus(ctx, StatusActive)
}

func (svc *Service) ListByStatus(ctx context.Context, status Status) ([]Student, error) {
	if !status.Valid() {
		return nil, core.NewValidationError(errors.New("invalid status"), core.FieldError{Field: "status", Error: "unknown student status"})
	}
	return svc.repo.ListStudentsByStatus(ctx, status)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	if us.Status != "" && !us.Status.Valid() {
		return Student{}, core.NewValidationError(errors.New("invalid status"), core.FieldError{Field: "status", Error: "unknown student status"})
	}
	std := Student{
		ID:            id,
		FirstName:     core.CleanString(us.FirstName),
		LastName:      core.CleanString(us.LastName),
		GuardianName:  core.CleanString(us.GuardianName),
		GuardianPhone: core.CleanString(us.GuardianPhone),
		Address:       core.CleanString(us.Address),
		Status:        us.Status,
		UpdatedAt:     time.Now().UTC(),
	}
	return svc.repo.UpdateStudent(ctx, std)
}
