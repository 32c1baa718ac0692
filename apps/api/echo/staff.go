package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/rawdahq/rawda/core"
	"github.com/rawdahq/rawda/core/staff"
)

type staffApi struct {
	svc      *staff.Service
	validate *validator.Validate
}

func registerStaffAPI(g *echo.Group, svc *staff.Service, validate *validator.Validate) {
	api := staffApi{svc: svc, validate: validate}

	sg := g.Group("/staff")
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
}

// Handlers

func (api *staffApi) create(ctx echo.Context) error {
	var data staff.NewStaff
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStaff")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}
	if !data.Type.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "type", Error: "unknown staff type"})
	}

	stf, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, stf)
}

func (api *staffApi) query(ctx echo.Context) error {
	if ctx.QueryParam("active") == "true" {
		members, err := api.svc.ListActive(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "listing active staff")
		}
		return ctx.JSON(http.StatusOK, members)
	}

	members, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing staff")
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *staffApi) retrieve(ctx echo.Context) error {
	id, err := bindIDParam(ctx, "id")
	if err != nil {
		return err
	}
	stf, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stf)
}

func (api *staffApi) update(ctx echo.Context) error {
	id, err := bindIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var data staff.UpdateStaff
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStaff")
	}
	if data.Type != "" && !data.Type.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "type", Error: "unknown staff type"})
	}

	stf, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stf)
}
