package dummydb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/billing"
)

type invoiceRepository struct {
	db *invoiceTable
}

var _ billing.Repository = (*invoiceRepository)(nil) // interface compliance check

func NewInvoiceRepository(db *DB) billing.Repository {
	return &invoiceRepository{db: db.invoice}
}

func (repo *invoiceRepository) CreateInvoice(_ context.Context, inv billing.Invoice, _ ...core.DBExecutor) (billing.Invoice, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if inv.Origin == billing.OriginMonthly {
		// mirror of the storage uniqueness guard
		for _, existing := range repo.db.table {
			if existing.Origin == billing.OriginMonthly &&
				existing.Population == inv.Population &&
				existing.StudentID == inv.StudentID &&
				existing.CourseID == inv.CourseID &&
				existing.Year == inv.Year &&
				existing.Month == inv.Month {
				return billing.Invoice{}, billing.ErrAlreadyBilled
			}
		}
	}

	inv.ID = uuid.New().String()
	repo.db.table[inv.ID] = &inv
	return inv, nil
}

func (repo *invoiceRepository) GetInvoiceByID(_ context.Context, id string, _ ...core.DBExecutor) (billing.Invoice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if inv, ok := repo.db.table[id]; ok {
		return *inv, nil
	}
	return billing.Invoice{}, billing.ErrNotFound
}

func (repo *invoiceRepository) GetInvoiceByIDForUpdate(ctx context.Context, id string, exec ...core.DBExecutor) (billing.Invoice, error) {
	// table lock stands in for the row lock
	return repo.GetInvoiceByID(ctx, id, exec...)
}

func (repo *invoiceRepository) HasMonthlyInvoice(_ context.Context, rel billing.Relationship, year, month int, _ ...core.DBExecutor) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, inv := range repo.db.table {
		if inv.Origin == billing.OriginMonthly &&
			inv.Population == rel.Population &&
			inv.StudentID == rel.StudentID &&
			inv.CourseID == rel.CourseID &&
			inv.Year == year &&
			inv.Month == month {
			return true, nil
		}
	}
	return false, nil
}

func (repo *invoiceRepository) UpdateInvoice(_ context.Context, inv billing.Invoice, _ ...core.DBExecutor) (billing.Invoice, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[inv.ID]; !ok {
		return billing.Invoice{}, billing.ErrNotFound
	}
	repo.db.table[inv.ID] = &inv
	return inv, nil
}

func (repo *invoiceRepository) FilterInvoices(_ context.Context, filter billing.QueryFilter, _ ...core.DBExecutor) ([]billing.Invoice, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	invs := make([]billing.Invoice, 0)
	for _, inv := range repo.db.table {
		if matches(*inv, filter) {
			invs = append(invs, *inv)
		}
	}
	return invs, nil
}

func (repo *invoiceRepository) MarkOverdueInvoices(_ context.Context, today time.Time, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, inv := range repo.db.table {
		if (inv.Status == billing.StatusUnpaid || inv.Status == billing.StatusPartial) && inv.DueDate.Before(today) {
			inv.Status = billing.StatusOverdue
			inv.UpdatedAt = time.Now().UTC()
			n++
		}
	}
	return n, nil
}

func matches(inv billing.Invoice, filter billing.QueryFilter) bool {
	if filter.Population != "" && inv.Population != filter.Population {
		return false
	}
	if filter.StudentID != "" && inv.StudentID != filter.StudentID {
		return false
	}
	if len(filter.Statuses) > 0 {
		var found bool
		for _, s := range filter.Statuses {
			if inv.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Year != 0 && inv.Year != filter.Year {
		return false
	}
	if filter.Month != 0 && inv.Month != filter.Month {
		return false
	}
	if !filter.DueFrom.IsZero() && inv.DueDate.Before(filter.DueFrom) {
		return false
	}
	if !filter.DueTo.IsZero() && inv.DueDate.After(filter.DueTo) {
		return false
	}
	if !filter.PaidFrom.IsZero() && (inv.PaidDate.IsZero() || inv.PaidDate.Before(filter.PaidFrom)) {
		return false
	}
	if !filter.PaidTo.IsZero() && (inv.PaidDate.IsZero() || inv.PaidDate.After(filter.PaidTo)) {
		return false
	}
	return true
}
