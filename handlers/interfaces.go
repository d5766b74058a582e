package handlers

import (
	"context"

	"github.com/DealDocs/dealdocs-backend/types"
)

// VerificationService is the service surface the verification handler needs.
type VerificationService interface {
	VerifyDeal(ctx context.Context, dealID string, req types.VerificationRequest) (*types.GateResult, error)
	ListReviewItems(ctx context.Context, dealID string) ([]types.ReviewItem, error)
	ResolveReviewItem(ctx context.Context, dealID, itemID string, status types.ReviewStatus, note string) error
}
