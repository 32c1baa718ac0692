package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/staff"
)

const staffColumns = `id, first_name, last_name, identity_number, phone_number, salary, type, active, created_at, updated_at`

type staffRepository struct {
	exec core.DBExecutor
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(exec core.DBExecutor) staff.Repository {
	return &staffRepository{exec: exec}
}

func (repo *staffRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo *staffRepository) CreateStaff(ctx context.Context, stf staff.Staff, exec ...core.DBExecutor) (staff.Staff, error) {
	stf.ID = uuid.New().String()

	query := `INSERT INTO staff
		(id, first_name, last_name, identity_number, phone_number, salary, type, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.getExec(exec).ExecContext(ctx, query,
		stf.ID, stf.FirstName, stf.LastName, stf.IdentityNumber, stf.PhoneNumber,
		stf.Salary, stf.Type, stf.Active, stf.CreatedAt, stf.UpdatedAt,
	)
	if err != nil {
		return staff.Staff{}, errors.Wrap(err, "inserting staff member")
	}
	return stf, nil
}

func (repo *staffRepository) GetStaffByID(ctx context.Context, id string, exec ...core.DBExecutor) (staff.Staff, error) {
	query := "SELECT " + staffColumns + " FROM staff WHERE id = $1"
	stf, err := scanStaff(repo.getExec(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return staff.Staff{}, staff.ErrNotFound
		}
		return staff.Staff{}, errors.Wrap(err, "getting staff member")
	}
	return stf, nil
}

func (repo *staffRepository) QueryAllStaff(ctx context.Context, exec ...core.DBExecutor) ([]staff.Staff, error) {
	query := "SELECT " + staffColumns + " FROM staff ORDER BY last_name, first_name"
	return repo.queryStaff(ctx, repo.getExec(exec), query)
}

func (repo *staffRepository) ListActiveStaff(ctx context.Context, exec ...core.DBExecutor) ([]staff.Staff, error) {
	query := "SELECT " + staffColumns + " FROM staff WHERE active ORDER BY last_name, first_name"
	return repo.queryStaff(ctx, repo.getExec(exec), query)
}

func (repo *staffRepository) UpdateStaff(ctx context.Context, stf staff.Staff, active *bool, exec ...core.DBExecutor) (staff.Staff, error) {
	// empty/zero fields keep their stored value; active only changes when provided
	query := `UPDATE staff SET
			first_name = COALESCE(NULLIF($2, ''), first_name),
			last_name = COALESCE(NULLIF($3, ''), last_name),
			phone_number = COALESCE(NULLIF($4, ''), phone_number),
			salary = CASE WHEN $5::numeric = 0 THEN salary ELSE $5::numeric END,
			type = COALESCE(NULLIF($6, ''), type),
			active = COALESCE($7, active),
			updated_at = $8
		WHERE id = $1
		RETURNING ` + staffColumns
	updated, err := scanStaff(repo.getExec(exec).QueryRowContext(ctx, query,
		stf.ID, stf.FirstName, stf.LastName, stf.PhoneNumber, stf.Salary, stf.Type, active, stf.UpdatedAt,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return staff.Staff{}, staff.ErrNotFound
		}
		return staff.Staff{}, errors.Wrap(err, "updating staff member")
	}
	return updated, nil
}

func (repo *staffRepository) queryStaff(ctx context.Context, exec core.DBExecutor, query string, args ...interface{}) ([]staff.Staff, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying staff")
	}
	defer func() { _ = rows.Close() }()

	members := make([]staff.Staff, 0)
	for rows.Next() {
		stf, err := scanStaff(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning staff member")
		}
		members = append(members, stf)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying staff")
	}
	return members, nil
}

func scanStaff(row rowScanner) (staff.Staff, error) {
	var stf staff.Staff
	err := row.Scan(
		&stf.ID, &stf.FirstName, &stf.LastName, &stf.IdentityNumber, &stf.PhoneNumber,
		&stf.Salary, &stf.Type, &stf.Active, &stf.CreatedAt, &stf.UpdatedAt,
	)
	return stf, err
}
