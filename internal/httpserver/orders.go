package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Nekrasovv/web_store/internal/middleware"
	"github.com/Nekrasovv/web_store/internal/models"
	"github.com/Nekrasovv/web_store/internal/repo"
	"github.com/Nekrasovv/web_store/pkg/logging"
)

type OrderHandler struct {
	Store *repo.GormStore
}

func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.Store.ListOrders(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list_orders_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch orders")
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := h.Store.ListOrdersByUser(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("list_user_orders_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch user orders")
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		ProductName string  `json:"product_name"`
		Quantity    uint    `json:"quantity"`
		TotalPrice  float64 `json:"total_price"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductName == "" || req.Quantity == 0 || req.TotalPrice == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "all fields are required")
	}

	order := models.Order{
		UserID:      userID,
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		TotalPrice:  req.TotalPrice,
	}
	if err := h.Store.CreateOrder(ctx, &order); err != nil {
		logging.FromContext(ctx).Error("create_order_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create order")
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	if err := h.Store.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		logging.FromContext(ctx).Error("delete_order_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete order")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "order deleted successfully"})
}
