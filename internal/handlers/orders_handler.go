package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/models"
)

// Orders is the order queue the handlers serve
type Orders interface {
	SubmitOrder(ctx context.Context, customer models.CustomerInfo, items []models.CartItem, total decimal.Decimal) models.Order
	GetAllOrders(ctx context.Context) []models.Order
	Get(ctx context.Context, id string) (models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	FlushLocal(ctx context.Context) (int, error)
	ContactLinks(order models.Order) models.ContactLinks
}

type OrdersHandler struct {
	orders Orders
	logger *logrus.Entry
}

func NewOrdersHandler(orders Orders, logger *logrus.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders: orders,
		logger: logger.WithField("component", "orders-handler"),
	}
}

// SubmitOrder records a checkout. The request is accepted even when the
// remote store is down; the order is then queued locally.
// @Summary Submit order
// @Tags Orders
// @Accept json
// @Produce json
// @Param order body models.SubmitOrderRequest true "Checkout data"
// @Success 201 {object} models.OrderResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /orders [post]
func (h *OrdersHandler) SubmitOrder(c *gin.Context) {
	var req models.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	total := req.Total
	if total.IsZero() {
		for _, item := range req.Items {
			total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	order := h.orders.SubmitOrder(c.Request.Context(), req.Customer, req.Items, total)
	links := h.orders.ContactLinks(order)

	message := "Order received. Confirm it through one of the contact links."
	c.JSON(http.StatusCreated, models.OrderResponse{
		Success: true,
		Data:    &order,
		Contact: &links,
		Message: &message,
	})
}

// GetOrders lists every order newest first
// @Summary List orders
// @Tags Admin
// @Produce json
// @Success 200 {object} models.OrderListResponse
// @Security BearerAuth
// @Router /admin/orders [get]
func (h *OrdersHandler) GetOrders(c *gin.Context) {
	orders := h.orders.GetAllOrders(c.Request.Context())

	if status := c.Query("status"); status != "" {
		filtered := make([]models.Order, 0, len(orders))
		for _, o := range orders {
			if string(o.Status) == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	c.JSON(http.StatusOK, models.OrderListResponse{
		Success: true,
		Data:    orders,
		Total:   len(orders),
	})
}

// UpdateOrderStatus moves an order through pending, contacted and completed
// @Summary Update order status
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param status body models.UpdateOrderStatusRequest true "New status"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/orders/{id}/status [put]
func (h *OrdersHandler) UpdateOrderStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "VALIDATION_ERROR", err.Error())
		return
	}

	id := c.Param("id")
	if err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    gin.H{"id": id, "status": req.Status},
	})
}

// FlushOrders pushes locally queued orders to the remote store
// @Summary Flush queued orders
// @Tags Admin
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 503 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/orders/flush [post]
func (h *OrdersHandler) FlushOrders(c *gin.Context) {
	flushed, err := h.orders.FlushLocal(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithField("count", flushed).Info("Manual order flush")
	c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Data:    gin.H{"flushed": flushed},
	})
}
