package staff

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("staff member not found")

type Type string

const (
	TypeAssistant         Type = "ASSISTANT"
	TypeEducator          Type = "EDUCATOR"
	TypeAssistantEducator Type = "ASSISTANT_EDUCATOR"
)

var Types = []Type{TypeAssistant, TypeEducator, TypeAssistantEducator}

func (t Type) Valid() bool {
	for _, typ := range Types {
		if t == typ {
			return true
		}
	}
	return false
}

type Staff struct {
	ID             string          `json:"id"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	IdentityNumber string          `json:"identity_number"`
	PhoneNumber    string          `json:"phone_number"`
	Salary         decimal.Decimal `json:"salary"` // monthly, as currently configured
	Type           Type            `json:"type"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"` // UTC
	UpdatedAt      time.Time       `json:"updated_at"` // UTC
}

type NewStaff struct {
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	IdentityNumber string `json:"identity_number" validate:"required"`
	PhoneNumber    string `json:"phone_number" validate:"required"`
	Salary         string `json:"salary" validate:"required"`
	Type           Type   `json:"type" validate:"required"`
}

type UpdateStaff struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Salary      string `json:"salary"`
	Type        Type   `json:"type"`
	Active      *bool  `json:"active"`
}
