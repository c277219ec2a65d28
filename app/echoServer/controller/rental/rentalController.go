package rental

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/SiddharthPaudel/MangaZone-Backend/model"
	rentalsvc "github.com/SiddharthPaudel/MangaZone-Backend/service/rental"
)

type Controller struct {
	Svc rentalsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /api/manga/:mangaId/rent
func (h *Controller) Rent(c echo.Context) error {
	mangaID, err := strconv.ParseInt(c.Param("mangaId"), 10, 64)
	if err != nil || mangaID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid manga id"})
	}

	var req RentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "User ID, payment method, and phone number are required.",
			"errors":  err.Error(),
		})
	}

	out, err := h.Svc.Rent(c.Request().Context(), rentalsvc.RentReq{
		UserID:        req.UserID,
		MangaID:       mangaID,
		DurationValue: req.DurationValue,
		DurationUnit:  model.DurationUnit(req.DurationUnit),
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		PhoneNumber:   req.PhoneNumber,
		Location:      req.Location,
	})
	if err != nil {
		switch rentalsvc.Code(err) {
		case rentalsvc.ErrInvalidPhone:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Phone number must be exactly 10 digits."})
		case rentalsvc.ErrInvalidDuration:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid duration unit."})
		case rentalsvc.ErrInvalidMethod:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid payment method"})
		case rentalsvc.ErrNotFound, rentalsvc.ErrNotRentable:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Manga not found or not rentable."})
		}
		h.Log.Error("rent", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to rent manga"})
	}

	if out.Gateway != nil {
		return c.JSON(http.StatusOK, echo.Map{
			"esewa":  true,
			"action": out.Gateway.Action,
			"values": out.Gateway.Values,
		})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Manga rented successfully",
		"rental":  out.Rental,
	})
}

// GET /api/manga/user/:userId
func (h *Controller) UserRentals(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	rows, err := h.Svc.UserRentals(c.Request().Context(), userID)
	if err != nil {
		h.Log.Error("user rentals", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch user rentals"})
	}
	return c.JSON(http.StatusOK, rows)
}

// GET /api/manga/rentals  (admin)
func (h *Controller) AllRentals(c echo.Context) error {
	rows, err := h.Svc.AllRentals(c.Request().Context())
	if err != nil {
		h.Log.Error("all rentals", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch rentals"})
	}
	return c.JSON(http.StatusOK, rows)
}

// DELETE /api/manga/rental/:rentalId  (admin)
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("rentalId"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid rental id"})
	}
	if err := h.Svc.DeleteRental(c.Request().Context(), id); err != nil {
		if rentalsvc.Code(err) == rentalsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Rental not found"})
		}
		h.Log.Error("rental delete", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to delete rental"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Rental deleted successfully"})
}

// GET /api/manga/summary  (admin)
func (h *Controller) Summary(c echo.Context) error {
	s, err := h.Svc.DashboardSummary(c.Request().Context())
	if err != nil {
		h.Log.Error("summary", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, s)
}
