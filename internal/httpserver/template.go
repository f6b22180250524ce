package httpserver

import (
	"errors"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/labstack/echo/v4"

	"github.com/danuart/invitation-shop/internal/logging"
	"github.com/danuart/invitation-shop/internal/service/catalog"
	"github.com/danuart/invitation-shop/internal/util"
)

type TemplateHandler struct {
	Svc     *catalog.Service
	ES      *elasticsearch.Client
	ESIndex string
}

func (h *TemplateHandler) GetTemplate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "template.get_template")

	id := util.ParseIntDefault(c.Param("id"), 0)
	if id <= 0 {
		l.Warn("get_template_error", "status", 400, "reason", "id is not an integer")
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	tpl, err := h.Svc.GetTemplate(ctx, uint(id))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			l.Warn("get_template_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "template not found")
		}
		l.Error("get_template_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get template")
	}

	return c.JSON(http.StatusOK, tpl)
}

func (h *TemplateHandler) ListTemplates(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "template.list_templates")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), catalog.DefaultPageSize)

	result, err := h.Svc.ListActive(ctx, page, size)
	if err != nil {
		l.Error("list_templates_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list templates")
	}

	l.Info("list_templates_success", "total", result.Meta.Total)
	return c.JSON(http.StatusOK, result)
}

func (h *TemplateHandler) FeaturedTemplates(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "template.featured")

	items, err := h.Svc.Featured(ctx, util.ParseIntDefault(c.QueryParam("count"), 6))
	if err != nil {
		l.Error("featured_templates_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list templates")
	}

	return c.JSON(http.StatusOK, items)
}

func (h *TemplateHandler) SearchTemplates(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "template.search")

	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not available")
	}

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), catalog.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	total, items, err := catalog.Search(ctx, h.ES, h.ESIndex, q, from, limit)
	if err != nil {
		l.Error("search_templates_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	l.Info("search_templates_success", "query", q, "total", total)
	return c.JSON(http.StatusOK, echo.Map{"total": total, "templates": items})
}
