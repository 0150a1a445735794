package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"freshfetch/repositories"
	"freshfetch/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{repositories.ErrInvalidID, http.StatusBadRequest},
		{fmt.Errorf("%w: bad unit", services.ErrValidation), http.StatusBadRequest},
		{services.ErrTotalMismatch, http.StatusBadRequest},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{repositories.ErrNotFound, http.StatusNotFound},
		{repositories.ErrDuplicate, http.StatusConflict},
		{fmt.Errorf("%w: Apples", repositories.ErrInsufficientStock), http.StatusConflict},
		{services.ErrInvalidTransition, http.StatusConflict},
		{services.ErrIdempotencyKeyReused, http.StatusConflict},
		{services.ErrUpstream, http.StatusBadGateway},
		{services.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			handleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestHandleErrorHidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	handleError(c, errors.New("pq: password authentication failed"))

	assert.NotContains(t, w.Body.String(), "password authentication")
}

func TestQueryHelpers(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/products?page=0&limit=5000&minPrice=2.5&maxPrice=abc&sortBy=password&order=asc", nil)

	filter := productFilter(c)
	assert.Equal(t, 1, filter.Page.Page)
	assert.Equal(t, 1000, filter.Page.Limit)
	if assert.NotNil(t, filter.MinPrice) {
		assert.Equal(t, 2.5, *filter.MinPrice)
	}
	assert.Nil(t, filter.MaxPrice)
	assert.Empty(t, filter.SortBy)
	assert.True(t, filter.SortDesc)
}

func TestProductFilterSortDirection(t *testing.T) {
	tests := []struct {
		query  string
		sortBy string
		desc   bool
	}{
		{"", "", true},
		{"sortBy=price", "price", false},
		{"sortBy=price&order=asc", "price", false},
		{"sortBy=price&order=DESC", "price", true},
		{"order=asc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/products?"+tt.query, nil)

			filter := productFilter(c)
			assert.Equal(t, tt.sortBy, filter.SortBy)
			assert.Equal(t, tt.desc, filter.SortDesc)
		})
	}
}
