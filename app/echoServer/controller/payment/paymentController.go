package payment

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	paymentsvc "github.com/SiddharthPaudel/MangaZone-Backend/service/payment"
)

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

// GET /api/payment/esewa-success?txn=
//
// Hit by the gateway redirect after the user pays. The browser ends up on
// the front-end success page; failures render plain text since there is
// no API client on the other end.
func (h *Controller) EsewaSuccess(c echo.Context) error {
	txn := c.QueryParam("txn")
	loc, err := h.Svc.HandleEsewaSuccess(c.Request().Context(), txn)
	if err != nil {
		h.Log.Error("esewa success callback", "txn", txn, "err", err)
		return c.String(http.StatusInternalServerError, "Payment processing failed")
	}
	return c.Redirect(http.StatusFound, loc)
}

// GET /api/payment/esewa-failure?txn=
func (h *Controller) EsewaFailure(c echo.Context) error {
	loc := h.Svc.HandleEsewaFailure(c.Request().Context(), c.QueryParam("txn"))
	return c.Redirect(http.StatusFound, loc)
}
