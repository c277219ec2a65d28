package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/SiddharthPaudel/MangaZone-Backend/model"
	authsvc "github.com/SiddharthPaudel/MangaZone-Backend/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func publicUser(u *model.User) echo.Map {
	return echo.Map{
		"id":     u.ID,
		"name":   u.Name,
		"email":  u.Email,
		"role":   u.Role,
		"avatar": u.Avatar,
	}
}

// POST /api/auth/signup
func (h *Controller) Signup(c echo.Context) error {
	var req model.SignupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	if _, err := h.Svc.Signup(c.Request().Context(), req); err != nil {
		if errors.Is(err, authsvc.ErrEmailTaken) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "User already exists"})
		}
		h.Log.Error("signup", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Signup failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "User registered successfully"})
}

// POST /api/auth/login
func (h *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email and password required"})
	}

	u, token, err := h.Svc.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCreds) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid credentials"})
		}
		h.Log.Error("login", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Login failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": publicUser(u)})
}

// PUT /api/auth/update/:userId
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	var req UpdateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	u, err := h.Svc.Update(c.Request().Context(), id, authsvc.UpdateReq{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	})
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrBadAvatar):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid avatar selection"})
		case errors.Is(err, authsvc.ErrNoFields):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "No valid fields to update"})
		case errors.Is(err, authsvc.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		h.Log.Error("user update", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to update user"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User updated successfully", "user": publicUser(u)})
}

// GET /api/auth/profile/:userId
func (h *Controller) Profile(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	u, err := h.Svc.Profile(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, authsvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		h.Log.Error("profile", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to get user profile"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": publicUser(u)})
}

// GET /api/auth
func (h *Controller) List(c echo.Context) error {
	users, err := h.Svc.ListUsers(c.Request().Context())
	if err != nil {
		h.Log.Error("list users", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to fetch users"})
	}
	out := make([]echo.Map, 0, len(users))
	for i := range users {
		out = append(out, publicUser(&users[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// POST /api/auth/forgot-password
//
// The reset token is returned in the response body; mail delivery is not
// part of this service.
func (h *Controller) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	token, err := h.Svc.ForgotPassword(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, authsvc.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
		}
		h.Log.Error("forgot password", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to issue reset token"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset token issued", "resetToken": token})
}

// POST /api/auth/reset-password
func (h *Controller) ResetPassword(c echo.Context) error {
	var req ResetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Token and new password are required"})
	}

	if err := h.Svc.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, authsvc.ErrInvalidToken) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid or expired token"})
		}
		h.Log.Error("reset password", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Failed to reset password"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password has been reset successfully"})
}
