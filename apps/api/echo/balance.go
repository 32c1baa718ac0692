package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/rawdahq/rawda/core/balance"
)

type balanceApi struct {
	svc *balance.Service
}

func registerBalanceAPI(g *echo.Group, svc *balance.Service) {
	api := balanceApi{svc: svc}

	bg := g.Group("/balance")
	bg.GET("/monthly", api.monthly)
	bg.GET("/yearly", api.yearly)
	bg.GET("/pending", api.pending)
}

// Handlers

func (api *balanceApi) monthly(ctx echo.Context) error {
	year, month, err := bindPeriod(ctx)
	if err != nil {
		return err
	}
	report, err := api.svc.Monthly(ctx.Request().Context(), year, month)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *balanceApi) yearly(ctx echo.Context) error {
	year, err := bindIntParam(ctx, "year")
	if err != nil {
		return err
	}
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	report, err := api.svc.Yearly(ctx.Request().Context(), year)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *balanceApi) pending(ctx echo.Context) error {
	report, err := api.svc.Pending(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing pending payments")
	}
	return ctx.JSON(http.StatusOK, report)
}

// bindPeriod reads year and month off the query string, defaulting to the
// current month.
func bindPeriod(ctx echo.Context) (year, month int, err error) {
	if year, err = bindIntParam(ctx, "year"); err != nil {
		return 0, 0, err
	}
	if month, err = bindIntParam(ctx, "month"); err != nil {
		return 0, 0, err
	}
	now := time.Now().UTC()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	return year, month, nil
}
