package controllers

import (
	"net/http"
	"strings"

	"freshfetch/models"
	"freshfetch/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	productService *services.ProductService
}

func NewProductController(productService *services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

func productFilter(c *gin.Context) models.ProductFilter {
	// Without sortBy the listing is newest first; an explicit sortBy is ascending unless order=desc.
	sortBy := c.Query("sortBy")
	sortDesc := strings.EqualFold(c.Query("order"), "desc")
	if !models.ProductSortFields[sortBy] {
		sortBy, sortDesc = "", true
	}
	return models.ProductFilter{
		Category:  strings.TrimSpace(c.Query("category")),
		Search:    strings.TrimSpace(c.Query("search")),
		AddedBy:   strings.TrimSpace(c.Query("addedBy")),
		MinPrice:  queryFloat(c, "minPrice"),
		MaxPrice:  queryFloat(c, "maxPrice"),
		MinRating: queryFloat(c, "rating"),
		SortBy:    sortBy,
		SortDesc:  sortDesc,
		Page:      queryPage(c),
	}
}

// GetAllProducts godoc
// @Summary List products
// @Description Filtered, sorted and paginated catalog. Results are cached for five minutes.
// @Tags Products
// @Produce json
// @Param category query string false "Category"
// @Param search query string false "Case-insensitive name substring"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param rating query number false "Minimum rating"
// @Param addedBy query string false "Email of the staff member who added the product"
// @Param sortBy query string false "Sort field" Enums(price, name, rating, stock, createdAt, discountPercentage)
// @Param order query string false "Sort order" Enums(asc, desc)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} models.Response{data=models.ProductListData}
// @Router /products [get]
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	data, err := ctrl.productService.List(c.Request.Context(), productFilter(c))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Products retrieved", data)
}

// GetAllCategories godoc
// @Summary List categories
// @Description Distinct categories with product counts
// @Tags Products
// @Produce json
// @Success 200 {object} models.Response{data=[]models.CategoryCount}
// @Router /products/categories [get]
func (ctrl *ProductController) GetAllCategories(c *gin.Context) {
	categories, err := ctrl.productService.Categories(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Categories retrieved", categories)
}

// GetProductByID godoc
// @Summary Get product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Response{data=models.Product}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	product, err := ctrl.productService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product retrieved", product)
}

// GetRelatedProducts godoc
// @Summary Related products
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Param limit query int false "Number of products" default(4)
// @Success 200 {object} models.Response{data=[]models.Product}
// @Router /products/{id}/related [get]
func (ctrl *ProductController) GetRelatedProducts(c *gin.Context) {
	products, err := ctrl.productService.Related(c.Request.Context(), c.Param("id"), queryInt(c, "limit", 0))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Related products retrieved", products)
}

// CreateProduct godoc
// @Summary Create product
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateProductRequest true "Product"
// @Success 201 {object} models.Response{data=models.Product}
// @Failure 403 {object} models.ErrorResponse
// @Router /products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	product, err := ctrl.productService.Create(c.Request.Context(), p, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Product created", product)
}

// UpdateProduct godoc
// @Summary Update product
// @Description Admins may edit any product, managers only the ones they added
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body models.UpdateProductRequest true "Fields to change"
// @Success 200 {object} models.Response{data=models.Product}
// @Failure 403 {object} models.ErrorResponse
// @Router /products/{id} [patch]
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	product, err := ctrl.productService.Update(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product updated", product)
}

// DeleteProduct godoc
// @Summary Delete product
// @Tags Products
// @Security BearerAuth
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [delete]
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := ctrl.productService.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Product deleted", nil)
}
