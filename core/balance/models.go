package balance

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	// PaymentBreakdown groups a month's collected income: by bill type for the
	// regular population, by course title for the extra-course population.
	PaymentBreakdown struct {
		Payments int                        `json:"payments"`
		ByKey    map[string]decimal.Decimal `json:"by_key"`
		Total    decimal.Decimal            `json:"total"`
	}

	// PayrollBreakdown groups active-staff salaries by staff type.
	PayrollBreakdown struct {
		Staff  int                        `json:"staff"`
		ByType map[string]decimal.Decimal `json:"by_type"`
		Counts map[string]int             `json:"counts"`
		Total  decimal.Decimal            `json:"total"`
	}

	// Provisional is income billed for the period but not yet collected
	// (UNPAID, PARTIAL or OVERDUE invoices due within the month).
	Provisional struct {
		Regular      decimal.Decimal `json:"regular"`
		Extra        decimal.Decimal `json:"extra"`
		Total        decimal.Decimal `json:"total"`
		RegularCount int             `json:"regular_count"`
		ExtraCount   int             `json:"extra_count"`
	}

	// Report is computed on demand and never persisted.
	Report struct {
		Year      int    `json:"year"`
		Month     int    `json:"month"`
		MonthName string `json:"month_name"`

		RegularIncome decimal.Decimal `json:"regular_income"`
		ExtraIncome   decimal.Decimal `json:"extra_income"`
		TotalIncome   decimal.Decimal `json:"total_income"`
		TotalPayroll  decimal.Decimal `json:"total_payroll"`
		NetIncome     decimal.Decimal `json:"net_income"`

		Provisional      Provisional      `json:"provisional"`
		RegularBreakdown PaymentBreakdown `json:"regular_breakdown"`
		ExtraBreakdown   PaymentBreakdown `json:"extra_breakdown"`
		PayrollBreakdown PayrollBreakdown `json:"payroll_breakdown"`
	}

	YearlyReport struct {
		Year         int             `json:"year"`
		Months       []Report        `json:"months"`
		TotalIncome  decimal.Decimal `json:"total_income"`
		TotalPayroll decimal.Decimal `json:"total_payroll"`
		NetIncome    decimal.Decimal `json:"net_income"`
	}

	// PendingReport is the global (not period-scoped) sum of uncollected invoices.
	PendingReport struct {
		Regular      decimal.Decimal `json:"regular"`
		Extra        decimal.Decimal `json:"extra"`
		Total        decimal.Decimal `json:"total"`
		RegularCount int             `json:"regular_count"`
		ExtraCount   int             `json:"extra_count"`
	}
)

// monthSpan returns the inclusive calendar bounds of (year, month).
func monthSpan(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}
