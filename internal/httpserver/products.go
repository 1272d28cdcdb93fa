package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/Nekrasovv/web_store/internal/es"
	"github.com/Nekrasovv/web_store/internal/models"
	"github.com/Nekrasovv/web_store/internal/repo"
	"github.com/Nekrasovv/web_store/pkg/logging"
)

type ProductHandler struct {
	Store *repo.GormStore
	ES    *elasticsearch.Client
}

func (h *ProductHandler) index(c echo.Context, prod *models.Product) {
	ctx := c.Request().Context()
	if err := es.IndexProduct(ctx, h.ES, es.ProductIndex, prod); err != nil {
		logging.FromContext(ctx).Error("es index error", "product_id", prod.ID, "error", err)
	}
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.Store.ListProducts(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list_products_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch products")
	}

	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

func (h *ProductHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	prod, err := h.Store.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch product")
	}

	return c.JSON(http.StatusOK, echo.Map{"product": prod})
}

func (h *ProductHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	prod := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}
	if err := h.Store.CreateProduct(ctx, &prod); err != nil {
		logging.FromContext(ctx).Error("create_product_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create product")
	}

	h.index(c, &prod)

	return c.JSON(http.StatusCreated, echo.Map{"product": prod})
}

func (h *ProductHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod, err := h.Store.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update product")
	}

	prod.Name = req.Name
	prod.Description = req.Description
	prod.Price = req.Price

	if err := h.Store.SaveProduct(ctx, prod); err != nil {
		logging.FromContext(ctx).Error("update_product_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update product")
	}

	h.index(c, prod)

	return c.JSON(http.StatusOK, echo.Map{"product": prod})
}

func (h *ProductHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := h.Store.DeleteProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Error("delete_product_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete product")
	}

	if err := es.DeleteProduct(ctx, h.ES, es.ProductIndex, id); err != nil {
		logging.FromContext(ctx).Error("es delete error", "product_id", id, "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

func (h *ProductHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not available")
	}

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := paginate(page, size)

	total, products, err := es.SearchProducts(ctx, h.ES, es.ProductIndex, q, from, size)
	if err != nil {
		logging.FromContext(ctx).Error("search_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": products})
}

func paginate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return (page - 1) * size, size
}
