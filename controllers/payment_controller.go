package controllers

import (
	"net/http"

	"freshfetch/models"
	"freshfetch/services"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	paymentService *services.PaymentService
}

func NewPaymentController(paymentService *services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: paymentService}
}

// CreatePaymentIntent godoc
// @Summary Create Stripe payment intent
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body models.PaymentIntentRequest true "Payment"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /payments/create-payment-intent [post]
func (ctrl *PaymentController) CreatePaymentIntent(c *gin.Context) {
	var req models.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	secret, err := ctrl.paymentService.CreateIntent(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Payment intent created", gin.H{"clientSecret": secret})
}
