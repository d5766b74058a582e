// Package handlers exposes the verification API over HTTP.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DealDocs/dealdocs-backend/errors"
	"github.com/DealDocs/dealdocs-backend/types"
)

// VerificationHandler handles the per-deal verification pass and the review
// queue endpoints.
type VerificationHandler struct {
	service VerificationService
}

func NewVerificationHandler(service VerificationService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// VerifyDeal runs the reconciliation pass for a deal.
// POST /v1/deals/:id/verify
func (h *VerificationHandler) VerifyDeal(c *gin.Context) {
	dealID := c.Param("id")
	if dealID == "" {
		_ = c.Error(errors.ValidationFailed("missing deal ID", ""))
		return
	}

	var req types.VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("invalid request body", err.Error()))
		return
	}

	result, err := h.service.VerifyDeal(c.Request.Context(), dealID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListReviewItems returns the review queue for a deal.
// GET /v1/deals/:id/review-items
func (h *VerificationHandler) ListReviewItems(c *gin.Context) {
	dealID := c.Param("id")
	if dealID == "" {
		_ = c.Error(errors.ValidationFailed("missing deal ID", ""))
		return
	}

	items, err := h.service.ListReviewItems(c.Request.Context(), dealID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if items == nil {
		items = []types.ReviewItem{}
	}
	c.JSON(http.StatusOK, gin.H{"reviewItems": items})
}

type resolveRequest struct {
	Status types.ReviewStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// ResolveReviewItem records a human's terminal decision on a review item.
// POST /v1/deals/:id/review-items/:itemID/resolve
func (h *VerificationHandler) ResolveReviewItem(c *gin.Context) {
	dealID := c.Param("id")
	itemID := c.Param("itemID")
	if dealID == "" || itemID == "" {
		_ = c.Error(errors.ValidationFailed("missing deal or item ID", ""))
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.ValidationFailed("invalid request body", err.Error()))
		return
	}

	if err := h.service.ResolveReviewItem(c.Request.Context(), dealID, itemID, req.Status, req.Note); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
