package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	std.ID = uuid.New().String()
	repo.db.table[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if std, ok := repo.db.table[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryAllStudents(_ context.Context, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(repo.db.table))
	for _, std := range repo.db.table {
		students = append(students, *std)
	}
	return students, nil
}

func (repo *studentRepository) ListStudentsByStatus(_ context.Context, status student.Status, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0)
	for _, std := range repo.db.table {
		if std.Status == status {
			students = append(students, *std)
		}
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, std student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	existing, ok := repo.db.table[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if std.FirstName != "" {
		existing.FirstName = std.FirstName
	}
	if std.LastName != "" {
		existing.LastName = std.LastName
	}
	if std.GuardianName != "" {
		existing.GuardianName = std.GuardianName
	}
	if std.GuardianPhone != "" {
		existing.GuardianPhone = std.GuardianPhone
	}
	if std.Address != "" {
		existing.Address = std.Address
	}
	if std.Status != "" {
		existing.Status = std.Status
	}
	existing.UpdatedAt = std.UpdatedAt
	return *existing, nil
}
