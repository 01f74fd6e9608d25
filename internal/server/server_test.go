package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdevs17/event-ticketing/internal/chain"
	"github.com/smartdevs17/event-ticketing/internal/payments"
	"github.com/smartdevs17/event-ticketing/internal/ticketing"
)

const (
	ownerAddr     = "0x00000000000000000000000000000000000000aa"
	organizerAddr = "0x0000000000000000000000000000000000000001"
	buyerAddr     = "0x0000000000000000000000000000000000000002"
)

func newTestServer(t *testing.T) (*HTTPServer, *chain.ManualSource) {
	t.Helper()

	heights := chain.NewManualSource(100)
	bank := payments.NewMemoryBank(&payments.Config{
		Provider:       payments.ProviderMemory,
		InitialBalance: 100_000_000,
		AutoFund:       true,
	})
	engine := ticketing.NewEngine(&ticketing.EngineConfig{
		ContractOwner:      common.HexToAddress(ownerAddr),
		MinTicketPrice:     1_000_000,
		PlatformFeePercent: 5,
	}, heights, bank)

	srv, err := NewHTTPServer(&ServerConfig{Host: "127.0.0.1", Port: 0, EnableHealth: true}, engine, nil, bank, heights, nil)
	require.NoError(t, err)

	return srv, heights
}

func doJSON(t *testing.T, srv *HTTPServer, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func createTestEvent(t *testing.T, srv *HTTPServer) uint64 {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/events", map[string]interface{}{
		"caller":        organizerAddr,
		"name":          "Jazz Night",
		"event_height":  1_000,
		"total_tickets": 50,
		"ticket_price":  1_000_000,
		"refund_window": 500,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]uint64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp["event_id"]
}

func purchaseTestTicket(t *testing.T, srv *HTTPServer, eventID uint64) uint64 {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/tickets", eventID),
		map[string]string{"caller": buyerAddr})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]uint64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp["ticket_id"]
}

func TestCreateEventEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
	}{
		{
			name: "Success",
			body: map[string]interface{}{
				"caller":        organizerAddr,
				"name":          "Jazz Night",
				"event_height":  1_000,
				"total_tickets": 50,
				"ticket_price":  1_000_000,
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "MissingName",
			body: map[string]interface{}{
				"caller":        organizerAddr,
				"event_height":  1_000,
				"total_tickets": 50,
				"ticket_price":  1_000_000,
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "InvalidCallerAddress",
			body: map[string]interface{}{
				"caller":        "not-an-address",
				"name":          "Jazz Night",
				"event_height":  1_000,
				"total_tickets": 50,
				"ticket_price":  1_000_000,
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "PriceBelowMinimum",
			body: map[string]interface{}{
				"caller":        organizerAddr,
				"name":          "Jazz Night",
				"event_height":  1_000,
				"total_tickets": 50,
				"ticket_price":  999,
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "HeightInPast",
			body: map[string]interface{}{
				"caller":        organizerAddr,
				"name":          "Jazz Night",
				"event_height":  100,
				"total_tickets": 50,
				"ticket_price":  1_000_000,
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t)
			rec := doJSON(t, srv, http.MethodPost, "/api/v1/events", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestGetEventEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	eventID := createTestEvent(t, srv)

	rec := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/events/%d", eventID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var event map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&event))
	assert.Equal(t, "Jazz Night", event["name"])
	assert.Equal(t, float64(0), event["tickets_sold"])

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/events/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/events/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTicketLifecycleEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	eventID := createTestEvent(t, srv)
	ticketID := purchaseTestTicket(t, srv, eventID)

	// Validation by someone other than the organizer is forbidden
	rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/tickets/%d/validate", ticketID),
		map[string]string{"caller": buyerAddr})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/tickets/%d/validate", ticketID),
		map[string]string{"caller": organizerAddr})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// A used ticket can be neither validated again nor refunded
	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/tickets/%d/validate", ticketID),
		map[string]string{"caller": organizerAddr})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/tickets/%d/refund", ticketID),
		map[string]string{"caller": buyerAddr})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/v1/tickets/%d", ticketID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ticket map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ticket))
	assert.Equal(t, true, ticket["is_used"])
	assert.Equal(t, false, ticket["is_refunded"])
}

func TestRefundEndpoint(t *testing.T) {
	srv, heights := newTestServer(t)
	eventID := createTestEvent(t, srv)
	ticketID := purchaseTestTicket(t, srv, eventID)

	t.Run("WithinWindow", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/tickets/%d/refund", ticketID),
			map[string]string{"caller": buyerAddr})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("WindowClosed", func(t *testing.T) {
		secondTicket := purchaseTestTicket(t, srv, eventID)
		heights.Advance(501)

		rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/tickets/%d/refund", secondTicket),
			map[string]string{"caller": buyerAddr})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestQueryEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	eventID := createTestEvent(t, srv)
	ticketID := purchaseTestTicket(t, srv, eventID)

	t.Run("UserTickets", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/v1/users/"+buyerAddr+"/tickets", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			OwnedTickets []uint64 `json:"owned_tickets"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, []uint64{ticketID}, resp.OwnedTickets)
	})

	t.Run("UserTicketsUnknownAddress", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/v1/users/"+ownerAddr+"/tickets", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("OrganizerRevenue", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/v1/organizers/"+organizerAddr+"/revenue", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			EventsOrganized uint64 `json:"events_organized"`
			TotalRevenue    uint64 `json:"total_revenue"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, uint64(1), resp.EventsOrganized)
		assert.Equal(t, uint64(1_000_000), resp.TotalRevenue)
	})

	t.Run("PlatformFee", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/v1/platform-fee?amount=1000000", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]uint64
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, uint64(50_000), resp["fee"])
	})
}

func TestAdminEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("UpdateFeeAsOwner", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/v1/admin/platform-fee",
			map[string]interface{}{"caller": ownerAddr, "fee_percent": 10})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("UpdateFeeAsStranger", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/v1/admin/platform-fee",
			map[string]interface{}{"caller": buyerAddr, "fee_percent": 10})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("FeeAbove100", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/v1/admin/platform-fee",
			map[string]interface{}{"caller": ownerAddr, "fee_percent": 101})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UpdateMinTicketPrice", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/v1/admin/min-ticket-price",
			map[string]interface{}{"caller": ownerAddr, "min_price": 2_000_000})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("MissingFeeField", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/v1/admin/platform-fee",
			map[string]interface{}{"caller": ownerAddr})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHeightEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/height", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]uint64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, uint64(100), resp["height"])

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/height/advance", map[string]uint64{"blocks": 10})
	require.Equal(t, http.StatusOK, rec.Code)

	resp = map[string]uint64{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, uint64(110), resp["height"])
}

func TestBankEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/bank/deposit",
		map[string]interface{}{"account": buyerAddr, "amount": 5_000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]uint64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, uint64(100_005_000), resp["balance"])

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/bank/balance/"+buyerAddr, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp = map[string]uint64{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, uint64(100_005_000), resp["balance"])
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPaymentRequiredStatus(t *testing.T) {
	heights := chain.NewManualSource(100)
	emptyBank := payments.NewMemoryBank(&payments.Config{Provider: payments.ProviderMemory})
	engine := ticketing.NewEngine(&ticketing.EngineConfig{
		ContractOwner:  common.HexToAddress(ownerAddr),
		MinTicketPrice: 1_000_000,
	}, heights, emptyBank)

	srv, err := NewHTTPServer(&ServerConfig{Host: "127.0.0.1"}, engine, nil, emptyBank, heights, nil)
	require.NoError(t, err)

	eventID := createTestEvent(t, srv)

	rec := doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/tickets", eventID),
		map[string]string{"caller": buyerAddr})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}
