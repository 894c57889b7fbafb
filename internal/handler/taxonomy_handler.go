package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bitconnect/vault-api/internal/taxonomy"
	"github.com/bitconnect/vault-api/pkg/response"
)

// TaxonomyHandler serves the static catalog tables.
type TaxonomyHandler struct{}

// NewTaxonomyHandler constructs the handler.
func NewTaxonomyHandler() *TaxonomyHandler {
	return &TaxonomyHandler{}
}

// Catalog godoc
// @Summary Branches, semesters, categories, streams and cycles
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /taxonomy [get]
func (h *TaxonomyHandler) Catalog(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.JSON(http.StatusOK, response.Envelope{Data: taxonomy.All()})
}
