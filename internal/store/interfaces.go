// Package store defines the persistence interfaces for the review queue.
// The reconciliation core never reads back what is written here; the store
// exists so the orchestration layer can surface review items to humans and
// record their resolutions.
package store

import (
	"context"

	"github.com/DealDocs/dealdocs-backend/types"
)

// ReviewStore persists review items produced by the gate and records the
// terminal status a human assigns through the review UI.
type ReviewStore interface {
	// CreateReviewItems inserts the gate's items for a deal, assigning IDs.
	CreateReviewItems(ctx context.Context, dealID string, items []types.ReviewItem) ([]types.ReviewItem, error)

	// ListReviewItems returns all review items for a deal, oldest first.
	ListReviewItems(ctx context.Context, dealID string) ([]types.ReviewItem, error)

	// ResolveReviewItem moves a PENDING item to a terminal status
	// (CONFIRMED, CORRECTED or NOTED). Resolving a non-pending item is a
	// conflict.
	ResolveReviewItem(ctx context.Context, itemID string, status types.ReviewStatus, note string) error
}
