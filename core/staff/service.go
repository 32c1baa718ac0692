package staff

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/rawdahq/rawda/core"
)

type (
	Repository interface {
		CreateStaff(ctx context.Context, stf Staff, exec ...core.DBExecutor) (Staff, error)
		GetStaffByID(ctx context.Context, id string, exec ...core.DBExecutor) (Staff, error)
		QueryAllStaff(ctx context.Context, exec ...core.DBExecutor) ([]Staff, error)
		// ListActiveStaff returns staff with active = true as of now; no salary
		// history is kept, past-period payroll reflects current salaries.
		ListActiveStaff(ctx context.Context, exec ...core.DBExecutor) ([]Staff, error)
		UpdateStaff(ctx context.Context, stf Staff, active *bool, exec ...core.DBExecutor) (Staff, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewStaff) (Staff, error) {
	salary, err := decimal.NewFromString(ns.Salary)
	if err != nil {
		return Staff{}, core.NewValidationError(errors.New("invalid salary"), core.FieldError{Field: "salary", Error: "unparseable monetary amount"})
	}
	if !ns.Type.Valid() {
		return Staff{}, core.NewValidationError(errors.New("invalid staff type"), core.FieldError{Field: "type", Error: "unknown staff type"})
	}
	now := time.Now().UTC()
	stf := Staff{
		FirstName:      core.CleanString(ns.FirstName),
		LastName:       core.CleanString(ns.LastName),
		IdentityNumber: core.CleanString(ns.IdentityNumber),
		PhoneNumber:    core.CleanString(ns.PhoneNumber),
		Salary:         salary,
		Type:           ns.Type,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return svc.repo.CreateStaff(ctx, stf)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Staff, error) {
	return svc.repo.GetStaffByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Staff, error) {
	return svc.repo.QueryAllStaff(ctx)
}

func (svc *Service) ListActive(ctx context.Context) ([]Staff, error) {
	return svc.repo.ListActiveStaff(ctx)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStaff) (Staff, error) {
	stf := Staff{
		ID:          id,
		FirstName:   core.CleanString(us.FirstName),
		LastName:    core.CleanString(us.LastName),
		PhoneNumber: core.CleanString(us.PhoneNumber),
		UpdatedAt:   time.Now().UTC(),
	}
	if us.Salary != "" {
		salary, err := decimal.NewFromString(us.Salary)
		if err != nil {
			return Staff{}, core.NewValidationError(errors.New("invalid salary"), core.FieldError{Field: "salary", Error: "unparseable monetary amount"})
		}
		stf.Salary = salary
	}
	if us.Type != "" {
		if !us.Type.Valid() {
			return Staff{}, core.NewValidationError(errors.New("invalid staff type"), core.FieldError{Field: "type", Error: "unknown staff type"})
		}
		stf.Type = us.Type
	}
	return svc.repo.UpdateStaff(ctx, stf, us.Active)
}
