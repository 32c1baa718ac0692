package billing

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/rawdahq/rawda/core"
)

// Policy holds the pure pricing and due-date rules. No state, no side effects.
type Policy struct {
	monthlyTuition decimal.Decimal
}

func NewPolicy(conf *core.Config) Policy {
	return Policy{monthlyTuition: conf.Billing.MonthlyTuition}
}

// AmountFor returns the monthly amount billed for a relationship: the flat
// platform-wide tuition rate for regular students, the course's configured
// monthly price for extra-course enrollments.
func (p Policy) AmountFor(rel Relationship) decimal.Decimal {
	if rel.Population == PopulationExtra {
		return rel.MonthlyPrice
	}
	return p.monthlyTuition
}

// DueDateFor returns the due date for a billed period: always the 1st of the month.
func (p Policy) DueDateFor(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// ValidatePeriod rejects a malformed (year, month) billing period.
func ValidatePeriod(year, month int) error {
	if year <= 0 {
		return core.NewValidationError(errors.New("invalid period"), core.FieldError{Field: "year", Error: "year must be positive"})
	}
	if month < 1 || month > 12 {
		return core.NewValidationError(errors.New("invalid period"), core.FieldError{Field: "month", Error: "month must be between 1 and 12"})
	}
	return nil
}
