package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/billing"
)

const pqUniqueViolation = "23505"

const invoiceColumns = `i.id, i.population, i.student_id, i.course_id, COALESCE(c.title, ''),
	i.bill_type, i.origin, i.amount, i.status, i.due_date, i.paid_date, i.bill_year, i.bill_month,
	i.notes, i.created_at, i.updated_at`

const invoiceFrom = `FROM invoices i LEFT JOIN extra_courses c ON c.id = i.course_id`

type invoiceRepository struct {
	exec core.DBExecutor
}

var _ billing.Repository = (*invoiceRepository)(nil) // interface compliance check

func NewInvoiceRepository(exec core.DBExecutor) billing.Repository {
	return &invoiceRepository{exec: exec}
}

func (repo *invoiceRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo *invoiceRepository) CreateInvoice(ctx context.Context, inv billing.Invoice, exec ...core.DBExecutor) (billing.Invoice, error) {
	inv.ID = uuid.New().String()

	query := `INSERT INTO invoices
		(id, population, student_id, course_id, bill_type, origin, amount, status, due_date, paid_date, bill_year, bill_month, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := repo.getExec(exec).ExecContext(ctx, query,
		inv.ID, inv.Population, inv.StudentID, nullUUID(inv.CourseID), inv.Type, inv.Origin,
		inv.Amount, inv.Status, inv.DueDate, nullDate(inv.PaidDate), inv.Year, inv.Month,
		inv.Notes, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return billing.Invoice{}, billing.ErrAlreadyBilled
		}
		return billing.Invoice{}, errors.Wrap(err, "inserting invoice")
	}
	return inv, nil
}

func (repo *invoiceRepository) GetInvoiceByID(ctx context.Context, id string, exec ...core.DBExecutor) (billing.Invoice, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE i.id = $1", invoiceColumns, invoiceFrom)
	return repo.scanOne(repo.getExec(exec).QueryRowContext(ctx, query, id))
}

func (repo *invoiceRepository) GetInvoiceByIDForUpdate(ctx context.Context, id string, exec ...core.DBExecutor) (billing.Invoice, error) {
	// lock the invoice row only; the joined course row is read-only reference data
	query := fmt.Sprintf("SELECT %s %s WHERE i.id = $1 FOR UPDATE OF i", invoiceColumns, invoiceFrom)
	return repo.scanOne(repo.getExec(exec).QueryRowContext(ctx, query, id))
}

func (repo *invoiceRepository) HasMonthlyInvoice(ctx context.Context, rel billing.Relationship, year, month int, exec ...core.DBExecutor) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM invoices
		WHERE origin = $1 AND population = $2 AND student_id = $3
			AND COALESCE(course_id::text, '') = $4 AND bill_year = $5 AND bill_month = $6)`

	var exists bool
	err := repo.getExec(exec).QueryRowContext(ctx, query,
		billing.OriginMonthly, rel.Population, rel.StudentID, rel.CourseID, year, month,
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "checking existing invoice")
	}
	return exists, nil
}

func (repo *invoiceRepository) UpdateInvoice(ctx context.Context, inv billing.Invoice, exec ...core.DBExecutor) (billing.Invoice, error) {
	query := `UPDATE invoices
		SET amount = $2, status = $3, paid_date = $4, notes = $5, updated_at = $6
		WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, query,
		inv.ID, inv.Amount, inv.Status, nullDate(inv.PaidDate), inv.Notes, inv.UpdatedAt,
	)
	if err != nil {
		return billing.Invoice{}, errors.Wrap(err, "updating invoice")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return billing.Invoice{}, billing.ErrNotFound
	}
	return inv, nil
}

func (repo *invoiceRepository) FilterInvoices(ctx context.Context, filter billing.QueryFilter, exec ...core.DBExecutor) ([]billing.Invoice, error) {
	conds := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Population != "" {
		conds = append(conds, "i.population = "+arg(filter.Population))
	}
	if filter.StudentID != "" {
		conds = append(conds, "i.student_id = "+arg(filter.StudentID))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		conds = append(conds, "i.status = ANY("+arg(pq.Array(statuses))+")")
	}
	if filter.Year != 0 {
		conds = append(conds, "i.bill_year = "+arg(filter.Year))
	}
	if filter.Month != 0 {
		conds = append(conds, "i.bill_month = "+arg(filter.Month))
	}
	if !filter.DueFrom.IsZero() {
		conds = append(conds, "i.due_date >= "+arg(filter.DueFrom))
	}
	if !filter.DueTo.IsZero() {
		conds = append(conds, "i.due_date <= "+arg(filter.DueTo))
	}
	if !filter.PaidFrom.IsZero() {
		conds = append(conds, "i.paid_date >= "+arg(filter.PaidFrom))
	}
	if !filter.PaidTo.IsZero() {
		conds = append(conds, "i.paid_date <= "+arg(filter.PaidTo))
	}

	query := fmt.Sprintf("SELECT %s %s", invoiceColumns, invoiceFrom)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY i.due_date DESC, i.created_at DESC"

	rows, err := repo.getExec(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying invoices")
	}
	defer func() { _ = rows.Close() }()

	invs := make([]billing.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning invoice")
		}
		invs = append(invs, inv)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying invoices")
	}
	return invs, nil
}

func (repo *invoiceRepository) MarkOverdueInvoices(ctx context.Context, today time.Time, exec ...core.DBExecutor) (int, error) {
	query := `UPDATE invoices
		SET status = $1, updated_at = now()
		WHERE due_date < $2 AND status = ANY($3)`
	res, err := repo.getExec(exec).ExecContext(ctx, query,
		billing.StatusOverdue, today, pq.Array([]string{string(billing.StatusUnpaid), string(billing.StatusPartial)}),
	)
	if err != nil {
		return 0, errors.Wrap(err, "marking invoices overdue")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "marking invoices overdue")
	}
	return int(n), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (repo *invoiceRepository) scanOne(row rowScanner) (billing.Invoice, error) {
	inv, err := scanInvoice(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return billing.Invoice{}, billing.ErrNotFound
		}
		return billing.Invoice{}, errors.Wrap(err, "getting invoice")
	}
	return inv, nil
}

func scanInvoice(row rowScanner) (billing.Invoice, error) {
	var inv billing.Invoice
	var courseID sql.NullString
	var paidDate sql.NullTime
	err := row.Scan(
		&inv.ID, &inv.Population, &inv.StudentID, &courseID, &inv.CourseTitle,
		&inv.Type, &inv.Origin, &inv.Amount, &inv.Status, &inv.DueDate, &paidDate,
		&inv.Year, &inv.Month, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return billing.Invoice{}, err
	}
	inv.CourseID = courseID.String
	if paidDate.Valid {
		inv.PaidDate = paidDate.Time
	}
	return inv, nil
}

func nullUUID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}

func nullDate(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
