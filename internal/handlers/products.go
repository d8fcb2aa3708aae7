package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListProducts handles GET /api/products.
func (a *API) ListProducts(c *gin.Context) {
	list, err := a.Products.List(c.Request.Context())
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "list_products_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list})
}

// GetProduct handles GET /api/products/:id.
func (a *API) GetProduct(c *gin.Context) {
	p, err := a.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.fail(c, http.StatusInternalServerError, "get_product_failed", err)
		return
	}
	if p == nil {
		a.fail(c, http.StatusNotFound, "product_not_found", nil)
		return
	}
	c.JSON(http.StatusOK, p)
}
