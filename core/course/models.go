package course

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrCourseNotFound     = errors.New("extra course not found")
	ErrStudentNotFound    = errors.New("extra student not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

// Course is an extra activity (languages, sports...) with its own configured
// monthly price, billed per enrollment.
type Course struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	Schedule     string          `json:"schedule,omitempty"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"` // UTC
	UpdatedAt    time.Time       `json:"updated_at"` // UTC
}

// ExtraStudent attends extra courses only; not part of the kindergarten roll.
type ExtraStudent struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	GuardianName  string    `json:"guardian_name"`
	GuardianPhone string    `json:"guardian_phone"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

func (s ExtraStudent) FullName() string {
	return s.FirstName + " " + s.LastName
}

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentInactive  EnrollmentStatus = "INACTIVE"
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentCancelled EnrollmentStatus = "CANCELLED"
)

var EnrollmentStatuses = []EnrollmentStatus{EnrollmentActive, EnrollmentInactive, EnrollmentCompleted, EnrollmentCancelled}

func (s EnrollmentStatus) Valid() bool {
	for _, st := range EnrollmentStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Enrollment is the (extra student, course) link; each ACTIVE enrollment is a
// billable relationship in the extra-course population.
type Enrollment struct {
	ID         string           `json:"id"`
	StudentID  string           `json:"student_id"`
	CourseID   string           `json:"course_id"`
	Status     EnrollmentStatus `json:"status"`
	EnrolledAt time.Time        `json:"enrolled_at"`
	Notes      string           `json:"notes,omitempty"`
	CreatedAt  time.Time        `json:"created_at"` // UTC
	UpdatedAt  time.Time        `json:"updated_at"` // UTC
}

type NewCourse struct {
	Title        string `json:"title" validate:"required"`
	MonthlyPrice string `json:"monthly_price" validate:"required"`
	Schedule     string `json:"schedule"`
}

type NewExtraStudent struct {
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	GuardianName  string `json:"guardian_name" validate:"required"`
	GuardianPhone string `json:"guardian_phone" validate:"required"`
}

type NewEnrollment struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
	CourseID  string `json:"course_id" validate:"required,uuid4"`
	Notes     string `json:"notes"`
}
