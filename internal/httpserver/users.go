package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Nekrasovv/web_store/internal/middleware"
	"github.com/Nekrasovv/web_store/internal/repo"
	"github.com/Nekrasovv/web_store/pkg/logging"
)

type UserHandler struct {
	Store *repo.GormStore
}

func (h *UserHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := h.Store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch profile")
	}

	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.Store.ListUsers(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list_users_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch users")
	}

	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) UpdateRole(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Role != "admin" && req.Role != "user" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role, use 'admin' or 'user'")
	}

	user, err := h.Store.UpdateRole(ctx, id, req.Role)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		logging.FromContext(ctx).Error("update_role_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update user role")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "user role updated",
		"user":    user,
	})
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := h.Store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		logging.FromContext(ctx).Error("delete_user_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete user")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "user deleted successfully",
	})
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
