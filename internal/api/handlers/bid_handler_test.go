package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"famwish/internal/api/middleware"
	"famwish/internal/domain"
	"famwish/internal/infrastructure/memory"
	"famwish/internal/services"
	"famwish/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*echo.Echo, *memory.AuctionStore) {
	t.Helper()

	store := memory.NewAuctionStore()
	err := store.CreateAuction(context.Background(), &domain.Auction{
		ID:             "auction1",
		Title:          "Studio tour",
		CelebrityID:    "celeb1",
		CharityID:      "charity1",
		StartingBid:    1000,
		CurrentHighBid: 1000,
		Status:         domain.AuctionOpen,
		EndDate:        time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)

	log := logger.New()
	ledger := services.NewBidLedger(store, services.BidLedgerOptions{
		MinIncrement: 50,
		MaxRetries:   3,
		EnforceClose: true,
	}, log)
	handler := NewBidHandler(ledger, log)

	e := echo.New()
	e.POST("/api/v1/auctions/:id/bids", handler.PlaceBid, middleware.RequireIdentity)
	e.GET("/api/v1/auctions/:id/bids", handler.GetBidHistory)
	return e, store
}

func placeBid(e *echo.Echo, auctionID, body string, identity bool, caps string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auctions/"+auctionID+"/bids", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if identity {
		req.Header.Set(middleware.HeaderUserID, "user1")
		req.Header.Set(middleware.HeaderUserName, "Alice")
		req.Header.Set(middleware.HeaderCapabilities, caps)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestBidHandler_PlaceBid(t *testing.T) {
	tests := []struct {
		name           string
		auctionID      string
		body           string
		identity       bool
		caps           string
		expectedStatus int
	}{
		{
			name:           "accepted",
			auctionID:      "auction1",
			body:           `{"amount": 1050}`,
			identity:       true,
			caps:           domain.CapabilityBid,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "no_identity",
			auctionID:      "auction1",
			body:           `{"amount": 1050}`,
			identity:       false,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing_capability",
			auctionID:      "auction1",
			body:           `{"amount": 1050}`,
			identity:       true,
			caps:           "viewer",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "too_low",
			auctionID:      "auction1",
			body:           `{"amount": 1000}`,
			identity:       true,
			caps:           domain.CapabilityBid,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "negative_amount",
			auctionID:      "auction1",
			body:           `{"amount": -5}`,
			identity:       true,
			caps:           domain.CapabilityBid,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown_auction",
			auctionID:      "missing",
			body:           `{"amount": 1050}`,
			identity:       true,
			caps:           domain.CapabilityBid,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "malformed_body",
			auctionID:      "auction1",
			body:           `{"amount": `,
			identity:       true,
			caps:           domain.CapabilityBid,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestServer(t)
			rec := placeBid(e, tt.auctionID, tt.body, tt.identity, tt.caps)
			require.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestBidHandler_PlaceBid_ReceiptBody(t *testing.T) {
	e, _ := newTestServer(t)
	rec := placeBid(e, "auction1", `{"amount": 1050}`, true, domain.CapabilityBid)
	require.Equal(t, http.StatusCreated, rec.Code)

	var receipt domain.BidReceipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	require.Equal(t, int64(1050), receipt.CurrentHighBid)
	require.Equal(t, 1, receipt.BidCount)
	require.Equal(t, "user1", receipt.Bid.BidderID)
	require.Equal(t, "Alice", receipt.Bid.BidderName)
}

func TestBidHandler_PlaceBid_TooLowCarriesMinimum(t *testing.T) {
	e, _ := newTestServer(t)
	rec := placeBid(e, "auction1", `{"amount": 1000}`, true, domain.CapabilityBid)
	require.Equal(t, http.StatusConflict, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, float64(1050), payload["min_required_bid"])
}

func TestBidHandler_GetBidHistory(t *testing.T) {
	e, _ := newTestServer(t)

	rec := placeBid(e, "auction1", `{"amount": 1050}`, true, domain.CapabilityBid)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = placeBid(e, "auction1", `{"amount": 1100}`, true, domain.CapabilityBid)
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auctions/auction1/bids", nil)
	getRec := httptest.NewRecorder()
	e.ServeHTTP(getRec, req)
	require.Equal(t, http.StatusOK, getRec.Code)

	var payload struct {
		AuctionID      string       `json:"auction_id"`
		CurrentHighBid int64        `json:"current_high_bid"`
		BidCount       int          `json:"bid_count"`
		BidHistory     []domain.Bid `json:"bid_history"`
	}
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &payload))
	require.Equal(t, "auction1", payload.AuctionID)
	require.Equal(t, int64(1100), payload.CurrentHighBid)
	require.Equal(t, 2, payload.BidCount)
	require.Len(t, payload.BidHistory, 2)
	require.Equal(t, int64(1100), payload.BidHistory[0].Amount)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auctions/missing/bids", nil)
	getRec = httptest.NewRecorder()
	e.ServeHTTP(getRec, req)
	require.Equal(t, http.StatusNotFound, getRec.Code)
}
