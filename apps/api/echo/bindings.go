package echoapi

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/billing"
)

// bindIDParam rejects ids that cannot be UUIDs before they reach the
// repositories; Postgres would otherwise fail the uuid cast with a 500.
func bindIDParam(ctx echo.Context, name string) (string, error) {
	id := ctx.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", core.NewValidationError(nil, core.FieldError{Field: name, Error: "malformed id"})
	}
	return id, nil
}

// bindInvoiceFilter reads the invoice list filters off the query string.
// All params are optional and combine with AND.
func bindInvoiceFilter(ctx echo.Context) (billing.QueryFilter, error) {
	var filter billing.QueryFilter

	if pop := ctx.QueryParam("population"); pop != "" {
		filter.Population = billing.Population(pop)
		if !filter.Population.Valid() {
			return filter, core.NewValidationError(nil, core.FieldError{Field: "population", Error: "unknown population"})
		}
	}
	if studentID := ctx.QueryParam("student"); studentID != "" {
		if _, err := uuid.Parse(studentID); err != nil {
			return filter, core.NewValidationError(nil, core.FieldError{Field: "student", Error: "malformed id"})
		}
		filter.StudentID = studentID
	}

	if statuses := ctx.QueryParam("status"); statuses != "" {
		for _, s := range strings.Split(statuses, ",") {
			status := billing.Status(strings.TrimSpace(s))
			if !status.Valid() {
				return filter, core.NewValidationError(nil, core.FieldError{Field: "status", Error: "unknown status"})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	var err error
	if filter.Year, err = bindIntParam(ctx, "year"); err != nil {
		return filter, err
	}
	if filter.Month, err = bindIntParam(ctx, "month"); err != nil {
		return filter, err
	}
	return filter, nil
}

func bindIntParam(ctx echo.Context, name string) (int, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, core.NewValidationError(nil, core.FieldError{Field: name, Error: "expected an integer"})
	}
	return n, nil
}
