package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/staff"
)

type staffRepository struct {
	db *staffTable
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *DB) staff.Repository {
	return &staffRepository{db: db.staff}
}

func (repo *staffRepository) CreateStaff(_ context.Context, stf staff.Staff, _ ...core.DBExecutor) (staff.Staff, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stf.ID = uuid.New().String()
	repo.db.table[stf.ID] = &stf
	return stf, nil
}

func (repo *staffRepository) GetStaffByID(_ context.Context, id string, _ ...core.DBExecutor) (staff.Staff, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if stf, ok := repo.db.table[id]; ok {
		return *stf, nil
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) QueryAllStaff(_ context.Context, _ ...core.DBExecutor) ([]staff.Staff, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := make([]staff.Staff, 0, len(repo.db.table))
	for _, stf := range repo.db.table {
		members = append(members, *stf)
	}
	return members, nil
}

func (repo *staffRepository) ListActiveStaff(_ context.Context, _ ...core.DBExecutor) ([]staff.Staff, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := make([]staff.Staff, 0)
	for _, stf := range repo.db.table {
		if stf.Active {
			members = append(members, *stf)
		}
	}
	return members, nil
}

func (repo *staffRepository) UpdateStaff(_ context.Context, stf staff.Staff, active *bool, _ ...core.DBExecutor) (staff.Staff, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	existing, ok := repo.db.table[stf.ID]
	if !ok {
		return staff.Staff{}, staff.ErrNotFound
	}
	if stf.FirstName != "" {
		existing.FirstName = stf.FirstName
	}
	if stf.LastName != "" {
		existing.LastName = stf.LastName
	}
	if stf.PhoneNumber != "" {
		existing.PhoneNumber = stf.PhoneNumber
	}
	if !stf.Salary.IsZero() {
		existing.Salary = stf.Salary
	}
	if stf.Type != "" {
		existing.Type = stf.Type
	}
	if active != nil {
		existing.Active = *active
	}
	existing.UpdatedAt = stf.UpdatedAt
	return *existing, nil
}
