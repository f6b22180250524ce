package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/danuart/invitation-shop/internal/service/auth"
)

type Deps struct {
	AuthSvc         *auth.Service
	AuthHandler     *AuthHandler
	TemplateHandler *TemplateHandler
	OrderHandler    *OrderHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.Logout)

	templates := v1.Group("/templates")
	templates.GET("", d.TemplateHandler.ListTemplates)
	templates.GET("/featured", d.TemplateHandler.FeaturedTemplates)
	templates.GET("/search", d.TemplateHandler.SearchTemplates)
	templates.GET("/:id", d.TemplateHandler.GetTemplate)

	authed := v1.Group("", RequireAuth(d.AuthSvc))
	authed.GET("/dashboard", d.OrderHandler.Dashboard)

	orders := authed.Group("/orders")
	orders.GET("", d.OrderHandler.ListOrders)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.PATCH("/:id", d.OrderHandler.UpdateOrder)
	orders.DELETE("/:id", d.OrderHandler.CancelOrder)
	orders.GET("/:id/proof", d.OrderHandler.GetPaymentProof)
}
