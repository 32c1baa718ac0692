package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/rawdahq/rawda/core"
)

var nowFunc = time.Now // mockable

type (
	Repository interface {
		CreateInvoice(ctx context.Context, inv Invoice, exec ...core.DBExecutor) (Invoice, error)
		GetInvoiceByID(ctx context.Context, id string, exec ...core.DBExecutor) (Invoice, error)
		// GetInvoiceByIDForUpdate takes a row-level lock; call it inside a transaction.
		GetInvoiceByIDForUpdate(ctx context.Context, id string, exec ...core.DBExecutor) (Invoice, error)
		// HasMonthlyInvoice reports whether a monthly-cycle invoice already exists
		// for (relationship, year, month).
		HasMonthlyInvoice(ctx context.Context, rel Relationship, year, month int, exec ...core.DBExecutor) (bool, error)
		UpdateInvoice(ctx context.Context, inv Invoice, exec ...core.DBExecutor) (Invoice, error)
		// FilterInvoices applies AND operation on available QueryFilter fields.
		FilterInvoices(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Invoice, error)
		// MarkOverdueInvoices promotes every invoice with dueDate < today and a
		// status in {UNPAID, PARTIAL} to OVERDUE and returns the number affected.
		MarkOverdueInvoices(ctx context.Context, today time.Time, exec ...core.DBExecutor) (int, error)
	}

	// Directory is the read-only view of the billable populations.
	Directory interface {
		ListActiveRelationships(ctx context.Context, pop Population) ([]Relationship, error)
		// GetRelationship resolves a single billed party; courseID is ignored for
		// the regular population. Returns ErrRelationshipNotFound when unknown.
		GetRelationship(ctx context.Context, pop Population, studentID, courseID string) (Relationship, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		dir      Directory
		policy   Policy
		notifSvc core.NotificationService
		logger   core.Logger
	}
)

func NewService(db core.DB, repo Repository, dir Directory, notifSvc core.NotificationService, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		db:       db,
		repo:     repo,
		dir:      dir,
		policy:   NewPolicy(conf),
		notifSvc: notifSvc,
		logger:   logger,
	}
}

func (svc *Service) Policy() Policy { return svc.policy }

// GenerateForPeriod creates one UNPAID invoice per active billable relationship
// in pop for (year, month), skipping relationships already billed for that
// period. Idempotent: a second run for the same period creates nothing.
// Returns the number of invoices created.
func (svc *Service) GenerateForPeriod(ctx context.Context, pop Population, year, month int) (int, error) {
	if !pop.Valid() {
		return 0, core.NewValidationError(errors.New("unknown population"), core.FieldError{Field: "population", Error: "unknown population"})
	}
	if err := ValidatePeriod(year, month); err != nil {
		return 0, err
	}

	rels, err := svc.dir.ListActiveRelationships(ctx, pop)
	if err != nil {
		return 0, errors.Wrap(err, "listing active relationships")
	}

	dueDate := svc.policy.DueDateFor(year, month)
	var created int
	for _, rel := range rels {
		inv, ok, err := svc.generateMonthly(ctx, rel, year, month, dueDate)
		if err != nil {
			return created, err
		}
		if ok {
			created++
			svc.notify(ctx, core.EventInvoiceCreated, inv)
		}
	}
	return created, nil
}

// generateMonthly runs the existence check and the insert in one transaction so
// concurrent generation triggers cannot bill the same period twice; the storage
// uniqueness guard backs this up and a guard conflict counts as already billed.
func (svc *Service) generateMonthly(ctx context.Context, rel Relationship, year, month int, dueDate time.Time) (Invoice, bool, error) {
	tx, err := svc.beginTx(ctx)
	if err != nil {
		return Invoice{}, false, errors.Wrap(err, "beginning transaction")
	}
	defer svc.rollback(tx)

	exists, err := svc.repo.HasMonthlyInvoice(ctx, rel, year, month, exec(tx)...)
	if err != nil {
		return Invoice{}, false, errors.Wrap(err, "checking existing invoice")
	}
	if exists {
		return Invoice{}, false, nil
	}

	now := nowFunc().UTC()
	inv := Invoice{
		Population:  rel.Population,
		StudentID:   rel.StudentID,
		CourseID:    rel.CourseID,
		CourseTitle: rel.CourseTitle,
		Type:        TypeTuition,
		Origin:      OriginMonthly,
		Amount:      svc.policy.AmountFor(rel),
		Status:      StatusUnpaid,
		DueDate:     dueDate,
		Year:        year,
		Month:       month,
		Notes:       monthlyNotes(rel, year, month),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	inv, err = svc.repo.CreateInvoice(ctx, inv, exec(tx)...)
	if err != nil {
		if errors.Cause(err) == ErrAlreadyBilled { // lost a generation race; period is covered
			return Invoice{}, false, nil
		}
		return Invoice{}, false, errors.Wrap(err, "creating invoice")
	}
	if err = svc.commit(tx); err != nil {
		return Invoice{}, false, errors.Wrap(err, "committing invoice")
	}
	return inv, true, nil
}

// GenerateSingle creates an ad-hoc invoice outside the monthly cycle. No
// period-uniqueness check applies: an explicit user action may legitimately
// duplicate a billed period.
func (svc *Service) GenerateSingle(ctx context.Context, pop Population, studentID, courseID string, dueDate time.Time, notes string) (Invoice, error) {
	if !pop.Valid() {
		return Invoice{}, core.NewValidationError(errors.New("unknown population"), core.FieldError{Field: "population", Error: "unknown population"})
	}
	if dueDate.IsZero() {
		return Invoice{}, core.NewValidationError(errors.New("missing due date"), core.FieldError{Field: "due_date", Error: "this field is required"})
	}

	rel, err := svc.dir.GetRelationship(ctx, pop, studentID, courseID)
	if err != nil {
		return Invoice{}, err
	}

	if notes == "" {
		notes = "Monthly tuition fee"
		if rel.Population == PopulationExtra {
			notes = "Monthly fee for " + rel.CourseTitle
		}
	}

	now := nowFunc().UTC()
	inv := Invoice{
		Population:  rel.Population,
		StudentID:   rel.StudentID,
		CourseID:    rel.CourseID,
		CourseTitle: rel.CourseTitle,
		Type:        TypeTuition,
		Origin:      OriginManual,
		Amount:      svc.policy.AmountFor(rel),
		Status:      StatusUnpaid,
		DueDate:     dueDate.UTC(),
		Year:        dueDate.Year(),
		Month:       int(dueDate.Month()),
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	inv, err = svc.repo.CreateInvoice(ctx, inv)
	if err != nil {
		return Invoice{}, errors.Wrap(err, "creating invoice")
	}
	svc.notify(ctx, core.EventInvoiceCreated, inv)
	return inv, nil
}

// MarkPaid transitions an invoice to PAID from any non-PAID status.
// paidDate defaults to today; notes replace the invoice's notes when given.
func (svc *Service) MarkPaid(ctx context.Context, id string, paidDate time.Time, notes string) (Invoice, error) {
	inv, err := svc.transition(ctx, id, func(inv *Invoice) error {
		if inv.Status == StatusPaid {
			return core.NewValidationError(ErrAlreadyPaid)
		}
		if paidDate.IsZero() {
			paidDate = nowFunc()
		}
		inv.Status = StatusPaid
		// paid_date is a calendar date; time-of-day would leak past the
		// month-end balance bound
		inv.PaidDate = truncateToDate(paidDate)
		if notes != "" {
			inv.Notes = notes
		}
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	svc.notify(ctx, core.EventInvoicePaid, inv)
	return inv, nil
}

// MarkPartial transitions an invoice to PARTIAL and overwrites its amount with
// the partial amount; the originally billed amount is not retained. No event is
// emitted for this transition.
func (svc *Service) MarkPartial(ctx context.Context, id string, amount decimal.Decimal, notes string) (Invoice, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Invoice{}, core.NewValidationError(errors.New("invalid partial amount"), core.FieldError{Field: "amount", Error: "amount must be positive"})
	}
	return svc.transition(ctx, id, func(inv *Invoice) error {
		if inv.Status == StatusPaid {
			return core.NewValidationError(ErrAlreadyPaid)
		}
		inv.Status = StatusPartial
		inv.Amount = amount
		if notes != "" {
			inv.Notes = notes
		}
		return nil
	})
}

// transition runs a read-modify-write on one invoice under a row-level lock.
func (svc *Service) transition(ctx context.Context, id string, mutate func(*Invoice) error) (Invoice, error) {
	tx, err := svc.beginTx(ctx)
	if err != nil {
		return Invoice{}, errors.Wrap(err, "beginning transaction")
	}
	defer svc.rollback(tx)

	inv, err := svc.repo.GetInvoiceByIDForUpdate(ctx, id, exec(tx)...)
	if err != nil {
		return Invoice{}, err
	}
	if err = mutate(&inv); err != nil {
		return Invoice{}, err
	}
	inv.UpdatedAt = nowFunc().UTC()

	inv, err = svc.repo.UpdateInvoice(ctx, inv, exec(tx)...)
	if err != nil {
		return Invoice{}, errors.Wrap(err, "updating invoice")
	}
	if err = svc.commit(tx); err != nil {
		return Invoice{}, errors.Wrap(err, "committing invoice update")
	}
	return inv, nil
}

// SweepOverdue promotes every invoice past due and still UNPAID or PARTIAL to
// OVERDUE. Idempotent for a given today. Returns the number transitioned.
func (svc *Service) SweepOverdue(ctx context.Context, today time.Time) (int, error) {
	if today.IsZero() {
		today = nowFunc()
	}
	today = truncateToDate(today)
	n, err := svc.repo.MarkOverdueInvoices(ctx, today)
	if err != nil {
		return 0, errors.Wrap(err, "sweeping overdue invoices")
	}
	return n, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Invoice, error) {
	return svc.repo.GetInvoiceByID(ctx, id)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Invoice, error) {
	return svc.repo.FilterInvoices(ctx, filter)
}

// notify fans out a billing event. Delivery failures are logged and swallowed:
// billing correctness never depends on notification delivery.
func (svc *Service) notify(ctx context.Context, event string, inv Invoice) {
	if svc.notifSvc == nil {
		return
	}
	payload := map[string]interface{}{
		"invoice_id": inv.ID,
		"population": inv.Population,
		"student_id": inv.StudentID,
		"amount":     inv.Amount.StringFixed(2),
		"due_date":   inv.DueDate.Format("2006-01-02"),
	}
	if inv.CourseID != "" {
		payload["course_id"] = inv.CourseID
		payload["course_title"] = inv.CourseTitle
	}
	if err := svc.notifSvc.Notify(ctx, event, payload); err != nil && svc.logger != nil {
		svc.logger.Error(fmt.Sprintf("notifying %s: %v", event, err), err)
	}
}

func (svc *Service) beginTx(ctx context.Context) (core.DBTransactor, error) {
	if svc.db == nil { // in-memory repositories are atomic on their own
		return nil, nil
	}
	return svc.db.BeginTx(ctx, nil)
}

func (svc *Service) rollback(tx core.DBTransactor) {
	if tx != nil {
		_ = tx.Rollback()
	}
}

func (svc *Service) commit(tx core.DBTransactor) error {
	if tx == nil {
		return nil
	}
	return tx.Commit()
}

func exec(tx core.DBTransactor) []core.DBExecutor {
	if tx == nil {
		return nil
	}
	return []core.DBExecutor{tx}
}

func monthlyNotes(rel Relationship, year, month int) string {
	period := fmt.Sprintf("%s %d", time.Month(month), year)
	if rel.Population == PopulationExtra {
		return fmt.Sprintf("Monthly fee for %s - %s", rel.CourseTitle, period)
	}
	return "Monthly tuition fee for " + period
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
