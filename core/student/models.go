package student

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("student not found")

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusGraduated Status = "GRADUATED"
	StatusWithdrawn Status = "WITHDRAWN"
)

var Statuses = []Status{StatusActive, StatusInactive, StatusGraduated, StatusWithdrawn}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Student is a regular (kindergarten) student; each ACTIVE student is a
// billable relationship in the regular population.
type Student struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	BirthDate     time.Time `json:"birth_date"`
	GuardianName  string    `json:"guardian_name"`
	GuardianPhone string    `json:"guardian_phone"`
	Address       string    `json:"address,omitempty"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

type NewStudent struct {
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	BirthDate     string `json:"birth_date" validate:"required"`
	GuardianName  string `json:"guardian_name" validate:"required"`
	GuardianPhone string `json:"guardian_phone" validate:"required"`
	Address       string `json:"address"`
}

type UpdateStudent struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
	Address       string `json:"address"`
	Status        Status `json:"status"`
}
