package controllers

import (
	"net/http"
	"strings"

	"freshfetch/models"
	"freshfetch/services"
	"freshfetch/utils"

	"github.com/gin-gonic/gin"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type OrderController struct {
	orderService *services.OrderService
}

func NewOrderController(orderService *services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// CreateOrder godoc
// @Summary Place order
// @Description Re-prices the cart, reserves stock and stores the order. A repeated Idempotency-Key returns the existing order.
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client generated key"
// @Param request body models.CreateOrderRequest true "Order"
// @Success 201 {object} models.Response
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /orders [post]
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid order data", err)
		return
	}

	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	order, created, err := ctrl.orderService.Create(c.Request.Context(), p, req, key)
	if err != nil {
		handleError(c, err)
		return
	}

	data := gin.H{"orderId": order.ID.Hex(), "order": order}
	if !created {
		respond(c, http.StatusOK, "Order already placed", data)
		return
	}
	respond(c, http.StatusCreated, "Order placed", data)
}

// GetAllOrders godoc
// @Summary List orders
// @Description Staff see all orders; other roles only their own. Newest first.
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param email query string false "Customer email"
// @Param status query string false "Order status" Enums(pending, shipped, delivered, cancelled)
// @Param search query string false "Email, name or city substring"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} models.HATEOASResponse
// @Router /orders [get]
func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	filter := models.OrderFilter{
		Email:  strings.TrimSpace(c.Query("email")),
		Status: c.Query("status"),
		Search: strings.TrimSpace(c.Query("search")),
		Page:   queryPage(c),
	}

	orders, total, err := ctrl.orderService.List(c.Request.Context(), p, filter)
	if err != nil {
		handleError(c, err)
		return
	}

	meta := utils.BuildMeta(filter.Page, total)
	c.JSON(http.StatusOK, models.HATEOASResponse{
		Success: true,
		Message: "Orders retrieved",
		Data:    orders,
		Meta:    meta,
		Links:   utils.BuildLinks(c.Request.URL.Path, c.Request.URL.Query(), meta),
	})
}

// GetOrderByID godoc
// @Summary Get order
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Response{data=models.Order}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id} [get]
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	order, err := ctrl.orderService.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order retrieved", order)
}

// UpdateOrder godoc
// @Summary Update order
// @Description Partial update; status changes follow the order workflow
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body models.UpdateOrderRequest true "Fields to change"
// @Success 200 {object} models.Response{data=models.Order}
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id} [patch]
func (ctrl *OrderController) UpdateOrder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req models.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	order, err := ctrl.orderService.Update(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order updated", order)
}

// CancelOrder godoc
// @Summary Cancel order
// @Description Cancels a pending order and releases its stock
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Response{data=models.Order}
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id}/cancel [post]
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	order, err := ctrl.orderService.Cancel(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order cancelled", order)
}

// DeleteOrder godoc
// @Summary Delete order
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id} [delete]
func (ctrl *OrderController) DeleteOrder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := ctrl.orderService.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order deleted", nil)
}
