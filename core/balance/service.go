package balance

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/billing"
	"github.com/rawdahq/rawda/core/staff"
)

type (
	// InvoiceSource is the slice of billing.Repository the aggregator reads from.
	InvoiceSource interface {
		FilterInvoices(ctx context.Context, filter billing.QueryFilter, exec ...core.DBExecutor) ([]billing.Invoice, error)
	}

	// StaffSource provides active staff as of the query time; salaries are
	// current values, not historical snapshots.
	StaffSource interface {
		ListActiveStaff(ctx context.Context, exec ...core.DBExecutor) ([]staff.Staff, error)
	}

	Service struct {
		invoices InvoiceSource
		staff    StaffSource
	}
)

func NewService(invoices InvoiceSource, staffSrc StaffSource) *Service {
	return &Service{invoices: invoices, staff: staffSrc}
}

// Monthly computes the full balance report for (year, month): collected income
// by population, payroll, net position, provisional income and breakdowns.
// Any partial store failure aborts the whole report.
func (svc *Service) Monthly(ctx context.Context, year, month int) (Report, error) {
	if err := billing.ValidatePeriod(year, month); err != nil {
		return Report{}, err
	}

	regularPaid, err := svc.paidInvoices(ctx, billing.PopulationRegular, year, month)
	if err != nil {
		return Report{}, err
	}
	extraPaid, err := svc.paidInvoices(ctx, billing.PopulationExtra, year, month)
	if err != nil {
		return Report{}, err
	}
	activeStaff, err := svc.staff.ListActiveStaff(ctx)
	if err != nil {
		return Report{}, errors.Wrap(err, "listing active staff")
	}
	provisional, err := svc.provisional(ctx, year, month)
	if err != nil {
		return Report{}, err
	}

	regularBrk := paymentBreakdown(regularPaid, func(inv billing.Invoice) string { return string(inv.Type) })
	extraBrk := paymentBreakdown(extraPaid, func(inv billing.Invoice) string { return inv.CourseTitle })
	payrollBrk := payrollBreakdown(activeStaff)

	totalIncome := regularBrk.Total.Add(extraBrk.Total)
	return Report{
		Year:             year,
		Month:            month,
		MonthName:        time.Month(month).String(),
		RegularIncome:    regularBrk.Total,
		ExtraIncome:      extraBrk.Total,
		TotalIncome:      totalIncome,
		TotalPayroll:     payrollBrk.Total,
		NetIncome:        totalIncome.Sub(payrollBrk.Total),
		Provisional:      provisional,
		RegularBreakdown: regularBrk,
		ExtraBreakdown:   extraBrk,
		PayrollBreakdown: payrollBrk,
	}, nil
}

// Yearly recomputes the 12 monthly reports for year and sums their totals.
// No caching: every call goes back to the ledger. Fine at current invoice
// volumes; revisit if populations grow past a few thousand invoices a month.
func (svc *Service) Yearly(ctx context.Context, year int) (YearlyReport, error) {
	if year <= 0 {
		return YearlyReport{}, core.NewValidationError(errors.New("invalid year"), core.FieldError{Field: "year", Error: "year must be positive"})
	}

	yr := YearlyReport{
		Year:         year,
		Months:       make([]Report, 0, 12),
		TotalIncome:  decimal.Zero,
		TotalPayroll: decimal.Zero,
		NetIncome:    decimal.Zero,
	}
	for month := 1; month <= 12; month++ {
		rpt, err := svc.Monthly(ctx, year, month)
		if err != nil {
			return YearlyReport{}, err
		}
		yr.Months = append(yr.Months, rpt)
		yr.TotalIncome = yr.TotalIncome.Add(rpt.TotalIncome)
		yr.TotalPayroll = yr.TotalPayroll.Add(rpt.TotalPayroll)
	}
	yr.NetIncome = yr.TotalIncome.Sub(yr.TotalPayroll)
	return yr, nil
}

// Pending sums all uncollected invoices across all periods, split by population.
func (svc *Service) Pending(ctx context.Context) (PendingReport, error) {
	rpt := PendingReport{Regular: decimal.Zero, Extra: decimal.Zero, Total: decimal.Zero}

	for _, pop := range billing.Populations {
		invs, err := svc.invoices.FilterInvoices(ctx, billing.QueryFilter{
			Population: pop,
			Statuses:   billing.PendingStatuses,
		})
		if err != nil {
			return PendingReport{}, errors.Wrapf(err, "listing pending %s invoices", pop)
		}
		total := sumAmounts(invs)
		switch pop {
		case billing.PopulationRegular:
			rpt.Regular = total
			rpt.RegularCount = len(invs)
		case billing.PopulationExtra:
			rpt.Extra = total
			rpt.ExtraCount = len(invs)
		}
	}
	rpt.Total = rpt.Regular.Add(rpt.Extra)
	return rpt, nil
}

func (svc *Service) paidInvoices(ctx context.Context, pop billing.Population, year, month int) ([]billing.Invoice, error) {
	start, end := monthSpan(year, month)
	invs, err := svc.invoices.FilterInvoices(ctx, billing.QueryFilter{
		Population: pop,
		Statuses:   []billing.Status{billing.StatusPaid},
		PaidFrom:   start,
		PaidTo:     end,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing paid %s invoices", pop)
	}
	return invs, nil
}

func (svc *Service) provisional(ctx context.Context, year, month int) (Provisional, error) {
	start, end := monthSpan(year, month)
	prov := Provisional{Regular: decimal.Zero, Extra: decimal.Zero, Total: decimal.Zero}

	for _, pop := range billing.Populations {
		invs, err := svc.invoices.FilterInvoices(ctx, billing.QueryFilter{
			Population: pop,
			Statuses:   billing.PendingStatuses,
			DueFrom:    start,
			DueTo:      end,
		})
		if err != nil {
			return Provisional{}, errors.Wrapf(err, "listing provisional %s invoices", pop)
		}
		total := sumAmounts(invs)
		switch pop {
		case billing.PopulationRegular:
			prov.Regular = total
			prov.RegularCount = len(invs)
		case billing.PopulationExtra:
			prov.Extra = total
			prov.ExtraCount = len(invs)
		}
	}
	prov.Total = prov.Regular.Add(prov.Extra)
	return prov, nil
}

func paymentBreakdown(invs []billing.Invoice, keyFunc func(billing.Invoice) string) PaymentBreakdown {
	brk := PaymentBreakdown{
		Payments: len(invs),
		ByKey:    make(map[string]decimal.Decimal),
		Total:    decimal.Zero,
	}
	for _, inv := range invs {
		key := keyFunc(inv)
		brk.ByKey[key] = brk.ByKey[key].Add(inv.Amount)
		brk.Total = brk.Total.Add(inv.Amount)
	}
	return brk
}

func payrollBreakdown(activeStaff []staff.Staff) PayrollBreakdown {
	brk := PayrollBreakdown{
		Staff:  len(activeStaff),
		ByType: make(map[string]decimal.Decimal),
		Counts: make(map[string]int),
		Total:  decimal.Zero,
	}
	for _, stf := range activeStaff {
		typ := string(stf.Type)
		brk.ByType[typ] = brk.ByType[typ].Add(stf.Salary)
		brk.Counts[typ]++
		brk.Total = brk.Total.Add(stf.Salary)
	}
	return brk
}

func sumAmounts(invs []billing.Invoice) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range invs {
		total = total.Add(inv.Amount)
	}
	return total
}
