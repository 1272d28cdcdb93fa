package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Nekrasovv/web_store/internal/middleware"
)

type Deps struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Products *ProductHandler
	Orders   *OrderHandler

	JWTSecret []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)

	requireAuth := middleware.RequireAuth(d.JWTSecret)
	adminOnly := middleware.RequireRole("admin")
	anyRole := middleware.RequireRole("user", "admin")

	users := api.Group("/users", requireAuth)
	users.GET("/me", d.Users.Me)
	users.GET("", d.Users.List, adminOnly)
	users.PUT("/:id/role", d.Users.UpdateRole, adminOnly)
	users.DELETE("/:id", d.Users.Delete, adminOnly)

	products := api.Group("/products", requireAuth)
	products.GET("", d.Products.List)
	products.GET("/search", d.Products.Search)
	products.GET("/:id", d.Products.Get)
	products.POST("", d.Products.Create, adminOnly)
	products.PUT("/:id", d.Products.Update, adminOnly)
	products.DELETE("/:id", d.Products.Delete, adminOnly)

	orders := api.Group("/orders", requireAuth)
	orders.GET("", d.Orders.List, adminOnly)
	orders.GET("/my-orders", d.Orders.ListMine, anyRole)
	orders.POST("", d.Orders.Create, anyRole)
	orders.DELETE("/:id", d.Orders.Delete, adminOnly)
}
