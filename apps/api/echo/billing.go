package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/billing"
)

const dateLayout = "2006-01-02"

type billingApi struct {
	svc      *billing.Service
	validate *validator.Validate
}

func registerBillingAPI(g *echo.Group, svc *billing.Service, validate *validator.Validate) {
	api := billingApi{svc: svc, validate: validate}

	bg := g.Group("/billing/invoices")
	bg.POST("/generate", api.generate)
	bg.POST("/sweep", api.sweep)
	bg.POST("", api.createSingle)
	bg.GET("", api.query)
	bg.GET("/:id", api.retrieve)
	bg.POST("/:id/pay", api.pay)
	bg.POST("/:id/partial", api.payPartial)
}

type (
	GenerateRequest struct {
		Population billing.Population `json:"population" validate:"required"`
		Year       int                `json:"year" validate:"required"`
		Month      int                `json:"month" validate:"required"`
	}

	GenerateResponse struct {
		Created int `json:"created"`
	}

	SingleInvoiceRequest struct {
		Population billing.Population `json:"population" validate:"required"`
		StudentID  string             `json:"student_id" validate:"required,uuid4"`
		CourseID   string             `json:"course_id" validate:"omitempty,uuid4"`
		DueDate    string             `json:"due_date" validate:"required"`
		Notes      string             `json:"notes"`
	}

	PayRequest struct {
		PaidDate string `json:"paid_date"`
		Notes    string `json:"notes"`
	}

	PartialPayRequest struct {
		Amount string `json:"amount" validate:"required"`
		Notes  string `json:"notes"`
	}

	SweepResponse struct {
		Swept int `json:"swept"`
	}
)

// Handlers

func (api *billingApi) generate(ctx echo.Context) error {
	var data GenerateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	if !data.Population.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "population", Error: "unknown population"})
	}

	n, err := api.svc.GenerateForPeriod(ctx.Request().Context(), data.Population, data.Year, data.Month)
	if err != nil {
		return errors.Wrap(err, "generating invoices")
	}
	return ctx.JSON(http.StatusOK, GenerateResponse{Created: n})
}

func (api *billingApi) createSingle(ctx echo.Context) error {
	var data SingleInvoiceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SingleInvoiceRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	if !data.Population.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "population", Error: "unknown population"})
	}
	if data.Population == billing.PopulationExtra && data.CourseID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "course_id", Error: "this field is required"})
	}
	dueDate, err := time.Parse(dateLayout, data.DueDate)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "due_date", Error: "invalid date, expected YYYY-MM-DD"})
	}

	inv, err := api.svc.GenerateSingle(ctx.Request().Context(), data.Population, data.StudentID, data.CourseID, dueDate, data.Notes)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, inv)
}

func (api *billingApi) query(ctx echo.Context) error {
	filter, err := bindInvoiceFilter(ctx)
	if err != nil {
		return err
	}
	invs, err := api.svc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "filtering invoices")
	}
	return ctx.JSON(http.StatusOK, invs)
}

func (api *billingApi) retrieve(ctx echo.Context) error {
	id, err := bindIDParam(ctx, "id")
	if err != nil {
		return err
	}
	inv, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *billingApi) pay(ctx echo.Context) error {
	id, err := bindIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var data PayRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PayRequest")
	}

	var paidDate time.Time
	if data.PaidDate != "" {
		if paidDate, err = time.Parse(dateLayout, data.PaidDate); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "paid_date", Error: "invalid date, expected YYYY-MM-DD"})
		}
	}

	inv, err := api.svc.MarkPaid(ctx.Request().Context(), id, paidDate, data.Notes)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *billingApi) payPartial(ctx echo.Context) error {
	id, err := bindIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var data PartialPayRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PartialPayRequest")
	}
	if err = api.validate.Struct(&data); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(data.Amount)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "unparseable monetary amount"})
	}

	inv, err := api.svc.MarkPartial(ctx.Request().Context(), id, amount, data.Notes)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inv)
}

func (api *billingApi) sweep(ctx echo.Context) error {
	n, err := api.svc.SweepOverdue(ctx.Request().Context(), time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "sweeping overdue invoices")
	}
	return ctx.JSON(http.StatusOK, SweepResponse{Swept: n})
}
