// Package postgres implements the store interfaces using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/DealDocs/dealdocs-backend/internal/store"
	"github.com/DealDocs/dealdocs-backend/types"
)

// DB is the subset of pgxpool.Pool the store needs; pgxmock satisfies it.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ReviewStore implements store.ReviewStore on PostgreSQL.
type ReviewStore struct {
	db DB
}

var _ store.ReviewStore = (*ReviewStore)(nil)

// NewReviewStore creates a new ReviewStore instance.
func NewReviewStore(db DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// CreateReviewItems inserts the gate's items for a deal in one transaction,
// so a partial failure leaves no orphaned rows for a retry to duplicate.
// Amounts are stored as NUMERIC text so no precision is lost in transit.
func (s *ReviewStore) CreateReviewItems(ctx context.Context, dealID string, items []types.ReviewItem) ([]types.ReviewItem, error) {
	query := `
		INSERT INTO review_items
			(id, deal_id, field_path, observed, expected, check_kind, description, page, document_ref, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		// No-op once committed.
		_ = tx.Rollback(ctx)
	}()

	created := make([]types.ReviewItem, 0, len(items))
	for _, item := range items {
		item.ID = uuid.New().String()
		item.DealID = dealID
		if item.Status == "" {
			item.Status = types.ReviewStatusPending
		}

		_, err := tx.Exec(ctx, query,
			item.ID,
			item.DealID,
			item.FieldPath,
			item.Observed.String(),
			item.Expected.String(),
			string(item.CheckKind),
			item.Description,
			item.Page,
			item.DocumentRef,
			string(item.Status),
		)
		if err != nil {
			return nil, fmt.Errorf("error creating review item: %w", err)
		}
		created = append(created, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing review items: %w", err)
	}
	return created, nil
}

// ListReviewItems returns all review items for a deal, oldest first.
func (s *ReviewStore) ListReviewItems(ctx context.Context, dealID string) ([]types.ReviewItem, error) {
	query := `
		SELECT id, deal_id, field_path, observed, expected, check_kind, description, page, document_ref, status, COALESCE(note, '')
		FROM review_items
		WHERE deal_id = $1
		ORDER BY created_at, id`

	rows, err := s.db.Query(ctx, query, dealID)
	if err != nil {
		return nil, fmt.Errorf("error listing review items: %w", err)
	}
	defer rows.Close()

	var items []types.ReviewItem
	for rows.Next() {
		var (
			item               types.ReviewItem
			observed, expected string
			checkKind, status  string
		)
		if err := rows.Scan(
			&item.ID,
			&item.DealID,
			&item.FieldPath,
			&observed,
			&expected,
			&checkKind,
			&item.Description,
			&item.Page,
			&item.DocumentRef,
			&status,
			&item.Note,
		); err != nil {
			return nil, fmt.Errorf("error scanning review item: %w", err)
		}
		if item.Observed, err = decimal.NewFromString(observed); err != nil {
			return nil, fmt.Errorf("invalid observed amount for item %s: %w", item.ID, err)
		}
		if item.Expected, err = decimal.NewFromString(expected); err != nil {
			return nil, fmt.Errorf("invalid expected amount for item %s: %w", item.ID, err)
		}
		item.CheckKind = types.CheckKind(checkKind)
		item.Status = types.ReviewStatus(status)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review items: %w", err)
	}
	return items, nil
}

// ResolveReviewItem records the terminal status a human assigned. Only
// PENDING items can transition; anything else is a conflict.
func (s *ReviewStore) ResolveReviewItem(ctx context.Context, itemID string, status types.ReviewStatus, note string) error {
	switch status {
	case types.ReviewStatusConfirmed, types.ReviewStatusCorrected, types.ReviewStatusNoted:
	default:
		return fmt.Errorf("invalid terminal status %q", status)
	}

	query := `
		UPDATE review_items
		SET status = $1, note = $2, resolved_at = NOW()
		WHERE id = $3 AND status = $4`

	tag, err := s.db.Exec(ctx, query, string(status), note, itemID, string(types.ReviewStatusPending))
	if err != nil {
		return fmt.Errorf("error resolving review item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the item does not exist or it is no longer pending.
		var current string
		err := s.db.QueryRow(ctx, `SELECT status FROM review_items WHERE id = $1`, itemID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("error checking review item: %w", err)
		}
		return store.ErrAlreadyResolved
	}
	return nil
}
