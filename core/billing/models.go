package billing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// errors
	ErrNotFound             = errors.New("invoice not found")
	ErrRelationshipNotFound = errors.New("billed party not found")
	ErrAlreadyBilled        = errors.New("an invoice already exists for this period")
	ErrAlreadyPaid          = errors.New("invoice is already paid")
)

// Population is one of the two billable cohorts: regular (kindergarten)
// students, billed a flat tuition, and extra-course students, billed the
// enrolled course's monthly price.
type Population string

const (
	PopulationRegular Population = "regular"
	PopulationExtra   Population = "extra_course"
)

var Populations = []Population{PopulationRegular, PopulationExtra}

func (p Population) Valid() bool {
	return p == PopulationRegular || p == PopulationExtra
}

type Status string

const (
	StatusUnpaid  Status = "UNPAID"
	StatusPartial Status = "PARTIAL"
	StatusPaid    Status = "PAID"
	StatusOverdue Status = "OVERDUE"
)

// PendingStatuses are the statuses counted as billed-but-not-collected.
var PendingStatuses = []Status{StatusUnpaid, StatusPartial, StatusOverdue}

var statuses = []Status{StatusUnpaid, StatusPartial, StatusPaid, StatusOverdue}

func (s Status) Valid() bool {
	for _, st := range statuses {
		if s == st {
			return true
		}
	}
	return false
}

type BillType string

const (
	TypeTuition BillType = "TUITION"
	TypeOther   BillType = "OTHER"
)

// Origin records how an invoice came to exist. Monthly-cycle invoices are
// subject to the one-per-period uniqueness guard; manual ones are not.
type Origin string

const (
	OriginMonthly Origin = "monthly"
	OriginManual  Origin = "manual"
)

type Invoice struct {
	ID         string          `json:"id"`
	Population Population      `json:"population"`
	StudentID  string          `json:"student_id"`
	CourseID   string          `json:"course_id,omitempty"`    // extra-course only
	CourseTitle string         `json:"course_title,omitempty"` // read-only, joined
	Type       BillType        `json:"type"`
	Origin     Origin          `json:"origin"`
	Amount     decimal.Decimal `json:"amount"`
	Status     Status          `json:"status"`
	DueDate    time.Time       `json:"due_date"`            // calendar date, UTC
	PaidDate   time.Time       `json:"paid_date,omitempty"` // zero until paid
	Year       int             `json:"year"`                // billed period
	Month      int             `json:"month"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"` // UTC
	UpdatedAt  time.Time       `json:"updated_at"` // UTC
}

// Pending reports whether the invoice still counts towards provisional income.
func (inv Invoice) Pending() bool {
	for _, s := range PendingStatuses {
		if inv.Status == s {
			return true
		}
	}
	return false
}

// Relationship is the active link that justifies a periodic invoice: a regular
// student, or an (extra student, course) pair. The invoice holds a read-only
// reference; it never owns the student/course lifecycle.
type Relationship struct {
	Population   Population
	StudentID    string
	StudentName  string
	CourseID     string // extra-course only
	CourseTitle  string
	MonthlyPrice decimal.Decimal // extra-course price
}

// QueryFilter applies AND operation on its set fields.
type QueryFilter struct {
	Population Population
	StudentID  string
	Statuses   []Status
	Year       int // billed period; 0 = any
	Month      int

	// calendar-date windows, inclusive; zero = unbounded
	DueFrom  time.Time
	DueTo    time.Time
	PaidFrom time.Time
	PaidTo   time.Time
}
