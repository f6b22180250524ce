package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/danuart/invitation-shop/internal/logging"
	"github.com/danuart/invitation-shop/internal/mykafka"
	"github.com/danuart/invitation-shop/internal/service/order"
	"github.com/danuart/invitation-shop/internal/storage"
	"github.com/danuart/invitation-shop/internal/transport"
	"github.com/danuart/invitation-shop/internal/util"
)

type OrderHandler struct {
	Svc      *order.Service
	Files    *storage.Store
	Producer *mykafka.Producer
}

func (h *OrderHandler) publish(c echo.Context, userID uint, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(userID), event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("kafka publish error", "error", err)
	}
}

func orderHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, order.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	case errors.Is(err, order.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	case errors.Is(err, order.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func orderID(c echo.Context) (uint, error) {
	id := util.ParseIntDefault(c.Param("id"), 0)
	if id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}
	return uint(id), nil
}

func isMultipart(c echo.Context) bool {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	return strings.HasPrefix(ct, echo.MIMEMultipartForm)
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			l.Warn("create_order_error", "status", 400, "reason", "invalid form", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
		}
		req.InvitationTemplateID = uint(util.ParseIntDefault(c.FormValue("invitation_template_id"), 0))
		if raw, ok := formValue(form.Value, "customization_data"); ok {
			if err := json.Unmarshal([]byte(raw), &req.CustomizationData); err != nil {
				l.Warn("create_order_error", "status", 400, "reason", "invalid customization data", "error", err)
				return echo.NewHTTPError(http.StatusBadRequest, "customization_data must be a JSON object")
			}
		}
		if raw, ok := formValue(form.Value, "guest_list"); ok {
			if err := json.Unmarshal([]byte(raw), &req.GuestList); err != nil {
				l.Warn("create_order_error", "status", 400, "reason", "invalid guest list", "error", err)
				return echo.NewHTTPError(http.StatusBadRequest, "guest_list must be a JSON array")
			}
		}
	} else if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	created, err := h.Svc.Create(ctx, callerID(c), req)
	if err != nil {
		he := orderHTTPError(err)
		l.Warn("create_order_error", "status", he.Code, "error", err)
		return he
	}

	h.publish(c, created.UserID, map[string]any{
		"type":         "order_created",
		"userID":       created.UserID,
		"orderID":      created.ID,
		"order_number": created.OrderNumber,
		"total_amount": created.TotalAmount,
	})

	l.Info("create_order_success", "order_id", created.ID, "order_number", created.OrderNumber)
	return c.JSON(http.StatusCreated, created)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, err := orderID(c)
	if err != nil {
		return err
	}

	ord, err := h.Svc.Get(ctx, callerID(c), id)
	if err != nil {
		he := orderHTTPError(err)
		l.Warn("get_order_error", "status", he.Code, "error", err)
		return he
	}

	return c.JSON(http.StatusOK, ord)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.List(ctx, callerID(c), offset, limit)
	if err != nil {
		l.Error("list_orders_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list orders")
	}

	l.Info("list_orders_success", "total", total)
	return c.JSON(http.StatusOK, transport.OrderPage{
		Data: orders,
		Meta: transport.NewPageMeta(page, limit, offset, total),
	})
}

func (h *OrderHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.dashboard")

	orders, err := h.Svc.Recent(ctx, callerID(c), 5)
	if err != nil {
		l.Error("dashboard_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load dashboard")
	}

	return c.JSON(http.StatusOK, echo.Map{"recent_orders": orders})
}

func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_order")

	id, err := orderID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateOrderRequest
	var proof *order.ProofUpload

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			l.Warn("update_order_error", "status", 400, "reason", "invalid form", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
		}
		if raw, ok := formValue(form.Value, "customization_data"); ok {
			if err := json.Unmarshal([]byte(raw), &req.CustomizationData); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "customization_data must be a JSON object")
			}
		}
		if raw, ok := formValue(form.Value, "guest_list"); ok {
			var guests []transport.GuestEntry
			if err := json.Unmarshal([]byte(raw), &guests); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "guest_list must be a JSON array")
			}
			req.GuestList = &guests
		}

		if fh, err := c.FormFile("payment_proof"); err == nil {
			f, err := fh.Open()
			if err != nil {
				l.Error("update_order_error", "status", 500, "reason", "cannot open upload", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "cannot read upload")
			}
			defer f.Close()
			proof = &order.ProofUpload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get(echo.HeaderContentType),
				Size:        fh.Size,
				Content:     f,
			}
		}
	} else if err := c.Bind(&req); err != nil {
		l.Warn("update_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	updated, err := h.Svc.Update(ctx, callerID(c), id, req, proof)
	if err != nil {
		he := orderHTTPError(err)
		l.Warn("update_order_error", "status", he.Code, "error", err)
		return he
	}

	event := map[string]any{
		"type":    "order_updated",
		"userID":  updated.UserID,
		"orderID": updated.ID,
		"status":  updated.Status,
	}
	if proof != nil {
		event["type"] = "payment_proof_uploaded"
	}
	h.publish(c, updated.UserID, event)

	l.Info("update_order_success", "order_id", updated.ID, "status", updated.Status)
	return c.JSON(http.StatusOK, updated)
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel_order")

	id, err := orderID(c)
	if err != nil {
		return err
	}

	userID := callerID(c)
	if err := h.Svc.Cancel(ctx, userID, id); err != nil {
		he := orderHTTPError(err)
		l.Warn("cancel_order_error", "status", he.Code, "error", err)
		return he
	}

	h.publish(c, userID, map[string]any{
		"type":    "order_cancelled",
		"userID":  userID,
		"orderID": id,
	})

	l.Info("cancel_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}

// GetPaymentProof streams the stored proof back to its owner for review.
func (h *OrderHandler) GetPaymentProof(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_payment_proof")

	id, err := orderID(c)
	if err != nil {
		return err
	}

	ord, err := h.Svc.Get(ctx, callerID(c), id)
	if err != nil {
		he := orderHTTPError(err)
		l.Warn("get_payment_proof_error", "status", he.Code, "error", err)
		return he
	}
	if ord.PaymentProof == nil {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}

	rc, err := h.Files.Open(*ord.PaymentProof)
	if err != nil {
		l.Error("get_payment_proof_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read payment proof")
	}
	defer rc.Close()

	return c.Stream(http.StatusOK, proofContentType(*ord.PaymentProof), rc)
}

func proofContentType(storedPath string) string {
	switch strings.ToLower(path.Ext(storedPath)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}

func formValue(values map[string][]string, key string) (string, bool) {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}
