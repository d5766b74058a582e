package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/DealDocs/dealdocs-backend/errors"
	"github.com/DealDocs/dealdocs-backend/logger"
	"github.com/DealDocs/dealdocs-backend/middleware"
	"github.com/DealDocs/dealdocs-backend/types"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type mockVerificationService struct {
	mock.Mock
}

func (m *mockVerificationService) VerifyDeal(ctx context.Context, dealID string, req types.VerificationRequest) (*types.GateResult, error) {
	args := m.Called(ctx, dealID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.GateResult), args.Error(1)
}

func (m *mockVerificationService) ListReviewItems(ctx context.Context, dealID string) ([]types.ReviewItem, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ReviewItem), args.Error(1)
}

func (m *mockVerificationService) ResolveReviewItem(ctx context.Context, dealID, itemID string, status types.ReviewStatus, note string) error {
	args := m.Called(ctx, dealID, itemID, status, note)
	return args.Error(0)
}

func setupRouter(svc VerificationService) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	h := NewVerificationHandler(svc)
	deals := r.Group("/v1/deals")
	{
		deals.POST("/:id/verify", h.VerifyDeal)
		deals.GET("/:id/review-items", h.ListReviewItems)
		deals.POST("/:id/review-items/:itemID/resolve", h.ResolveReviewItem)
	}
	return r
}

func TestVerifyDealEndpoint(t *testing.T) {
	svc := new(mockVerificationService)
	svc.On("VerifyDeal", mock.Anything, "deal-1", mock.Anything).
		Return(&types.GateResult{CanProceed: true}, nil)

	body := `{
		"extractions": [
			{"documentType": "W2", "data": {"wages": {"gross": 50000}}},
			{"documentType": "FORM_1040", "data": {"income": {"wages": 50000}}}
		],
		"documentRef": "doc-1"
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/deals/deal-1/verify", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result types.GateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.CanProceed)
	svc.AssertExpectations(t)
}

func TestVerifyDealEndpointRejectsBadJSON(t *testing.T) {
	svc := new(mockVerificationService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/deals/deal-1/verify", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "VerifyDeal", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyDealEndpointServiceError(t *testing.T) {
	svc := new(mockVerificationService)
	svc.On("VerifyDeal", mock.Anything, "deal-1", mock.Anything).
		Return(nil, apperrors.NewDatabaseError(assert.AnError))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/deals/deal-1/verify", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(apperrors.DatabaseError), resp.Type)
}

func TestListReviewItemsEndpoint(t *testing.T) {
	svc := new(mockVerificationService)
	svc.On("ListReviewItems", mock.Anything, "deal-2").
		Return([]types.ReviewItem{{
			ID:        "item-1",
			DealID:    "deal-2",
			FieldPath: "income.total",
			Observed:  decimal.RequireFromString("2000"),
			Expected:  decimal.RequireFromString("2500"),
			CheckKind: types.CheckKindArithmetic,
			Status:    types.ReviewStatusPending,
		}}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/deals/deal-2/review-items", nil)
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ReviewItems []types.ReviewItem `json:"reviewItems"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.ReviewItems, 1)
	assert.Equal(t, "item-1", resp.ReviewItems[0].ID)
}

func TestListReviewItemsEndpointEmptyQueue(t *testing.T) {
	svc := new(mockVerificationService)
	svc.On("ListReviewItems", mock.Anything, "deal-3").Return([]types.ReviewItem(nil), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/deals/deal-3/review-items", nil)
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"reviewItems": []}`, w.Body.String(), "an empty queue is [], not null")
}

func TestResolveReviewItemEndpoint(t *testing.T) {
	svc := new(mockVerificationService)
	svc.On("ResolveReviewItem", mock.Anything, "deal-4", "item-9", types.ReviewStatusConfirmed, "verified against source").
		Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/deals/deal-4/review-items/item-9/resolve",
		bytes.NewBufferString(`{"status": "CONFIRMED", "note": "verified against source"}`))
	req.Header.Set("Content-Type", "application/json")
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestResolveReviewItemEndpointRequiresStatus(t *testing.T) {
	svc := new(mockVerificationService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/deals/deal-4/review-items/item-9/resolve",
		bytes.NewBufferString(`{"note": "no status"}`))
	req.Header.Set("Content-Type", "application/json")
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ResolveReviewItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveReviewItemEndpointConflict(t *testing.T) {
	svc := new(mockVerificationService)
	svc.On("ResolveReviewItem", mock.Anything, "deal-4", "item-9", types.ReviewStatusNoted, "").
		Return(apperrors.Conflict("Review item already resolved", "item-9"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/deals/deal-4/review-items/item-9/resolve",
		bytes.NewBufferString(`{"status": "NOTED"}`))
	req.Header.Set("Content-Type", "application/json")
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestResolveReviewItemEndpointNotFound(t *testing.T) {
	svc := new(mockVerificationService)
	svc.On("ResolveReviewItem", mock.Anything, "deal-4", "missing", types.ReviewStatusConfirmed, "").
		Return(apperrors.NotFound("Review item", "missing"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/deals/deal-4/review-items/missing/resolve",
		bytes.NewBufferString(`{"status": "CONFIRMED"}`))
	req.Header.Set("Content-Type", "application/json")
	setupRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
