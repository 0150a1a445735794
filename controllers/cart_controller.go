package controllers

import (
	"net/http"

	"freshfetch/models"
	"freshfetch/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	cartService *services.CartService
}

func NewCartController(cartService *services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// Quote godoc
// @Summary Price a cart
// @Description Re-prices the items from the catalog and computes subtotal, shipping and total
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body models.CartQuoteRequest true "Cart"
// @Success 200 {object} models.Response{data=models.CartQuote}
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/quote [post]
func (ctrl *CartController) Quote(c *gin.Context) {
	var req models.CartQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	quote, err := ctrl.cartService.Quote(c.Request.Context(), req.Items)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart priced", quote)
}

// AddItem godoc
// @Summary Add to cart
// @Description Merges the item into the client cart and returns the re-priced cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body models.AddCartItemRequest true "Cart and item"
// @Success 200 {object} models.Response{data=models.CartQuote}
// @Failure 400 {object} models.ErrorResponse
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	quote, err := ctrl.cartService.AddItem(c.Request.Context(), req.Items, req.Item)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Item added", quote)
}

// UpdateItem godoc
// @Summary Change cart quantity
// @Description Sets the quantity of one line (minimum one) and returns the re-priced cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param cartId path string true "Cart line key (productId-unit)"
// @Param request body models.UpdateCartItemRequest true "Cart and quantity"
// @Success 200 {object} models.Response{data=models.CartQuote}
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items/{cartId} [patch]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	quote, err := ctrl.cartService.UpdateItem(c.Request.Context(), req.Items, c.Param("cartId"), req.Quantity)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart updated", quote)
}

// RemoveItem godoc
// @Summary Remove from cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param cartId path string true "Cart line key (productId-unit)"
// @Param request body models.CartQuoteRequest true "Cart"
// @Success 200 {object} models.Response{data=models.CartQuote}
// @Router /cart/items/{cartId} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	var req models.CartQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	quote, err := ctrl.cartService.RemoveItem(c.Request.Context(), req.Items, c.Param("cartId"))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Item removed", quote)
}
