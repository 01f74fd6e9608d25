package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/smartdevs17/event-ticketing/internal/ticketing"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  uint64 `json:"code,omitempty"`
}

// writeJSON writes a JSON response
func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

// writeError maps contract error kinds onto HTTP statuses
func (s *HTTPServer) writeError(w http.ResponseWriter, err error) {
	var contractErr *ticketing.Error
	if errors.As(err, &contractErr) {
		s.writeJSON(w, statusForCode(contractErr.Code), errorResponse{
			Error: contractErr.Message,
			Code:  contractErr.Code,
		})
		return
	}

	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func statusForCode(code uint64) int {
	switch code {
	case ticketing.ErrNotAuthorized.Code:
		return http.StatusForbidden
	case ticketing.ErrEventNotFound.Code, ticketing.ErrTicketNotFound.Code:
		return http.StatusNotFound
	case ticketing.ErrInvalidPrice.Code:
		return http.StatusBadRequest
	case ticketing.ErrPaymentFailed.Code:
		return http.StatusPaymentRequired
	default:
		// SoldOut, EventExpired, TicketAlreadyClosed, RefundWindowClosed
		return http.StatusConflict
	}
}

// decodeAndValidate decodes a JSON body and validates the struct tags
func (s *HTTPServer) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to decode request body"})
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		var validateErr validator.ValidationErrors
		errors.As(err, &validateErr)
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: validateErr.Error()})
		return false
	}

	return true
}

// parseAddress parses a hex identity from a request field or path segment
func (s *HTTPServer) parseAddress(w http.ResponseWriter, value string) (common.Address, bool) {
	if !common.IsHexAddress(value) {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid address: " + value})
		return common.Address{}, false
	}
	return common.HexToAddress(value), true
}

// parseID parses the {id} path variable
func (s *HTTPServer) parseID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

type createEventRequest struct {
	Caller       string `json:"caller" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	Venue        string `json:"venue"`
	EventHeight  uint64 `json:"event_height" validate:"required"`
	TotalTickets uint64 `json:"total_tickets" validate:"required"`
	TicketPrice  uint64 `json:"ticket_price" validate:"required"`
	RefundWindow uint64 `json:"refund_window"`
	Category     string `json:"category"`
}

func (s *HTTPServer) createEventHandler(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	caller, ok := s.parseAddress(w, req.Caller)
	if !ok {
		return
	}

	id, err := s.engine.CreateEvent(r.Context(), &ticketing.CreateEventParams{
		Name:         req.Name,
		Description:  req.Description,
		Venue:        req.Venue,
		EventHeight:  req.EventHeight,
		TotalTickets: req.TotalTickets,
		TicketPrice:  req.TicketPrice,
		RefundWindow: req.RefundWindow,
		Category:     req.Category,
	}, caller)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]uint64{"event_id": id})
}

func (s *HTTPServer) getEventHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	event, found := s.engine.GetEvent(id)
	if !found {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "event not found"})
		return
	}

	s.writeJSON(w, http.StatusOK, event)
}

type callerRequest struct {
	Caller string `json:"caller" validate:"required"`
}

func (s *HTTPServer) purchaseTicketHandler(w http.ResponseWriter, r *http.Request) {
	eventID, ok := s.parseID(w, r)
	if !ok {
		return
	}

	var req callerRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	buyer, ok := s.parseAddress(w, req.Caller)
	if !ok {
		return
	}

	ticketID, err := s.engine.PurchaseTicket(r.Context(), eventID, buyer)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]uint64{"ticket_id": ticketID})
}

func (s *HTTPServer) getTicketHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	ticket, found := s.engine.GetTicket(id)
	if !found {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "ticket not found"})
		return
	}

	s.writeJSON(w, http.StatusOK, ticket)
}

func (s *HTTPServer) validateTicketHandler(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := s.parseID(w, r)
	if !ok {
		return
	}

	var req callerRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	caller, ok := s.parseAddress(w, req.Caller)
	if !ok {
		return
	}

	if err := s.engine.ValidateTicket(r.Context(), ticketID, caller); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"ticket_id": ticketID, "is_used": true})
}

func (s *HTTPServer) refundTicketHandler(w http.ResponseWriter, r *http.Request) {
	ticketID, ok := s.parseID(w, r)
	if !ok {
		return
	}

	var req callerRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	caller, ok := s.parseAddress(w, req.Caller)
	if !ok {
		return
	}

	if err := s.engine.RefundTicket(r.Context(), ticketID, caller); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"ticket_id": ticketID, "is_refunded": true})
}

func (s *HTTPServer) userTicketsHandler(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.parseAddress(w, mux.Vars(r)["address"])
	if !ok {
		return
	}

	tickets, found := s.engine.GetUserTickets(owner)
	if !found {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no tickets for address"})
		return
	}

	s.writeJSON(w, http.StatusOK, tickets)
}

func (s *HTTPServer) organizerRevenueHandler(w http.ResponseWriter, r *http.Request) {
	organizer, ok := s.parseAddress(w, mux.Vars(r)["address"])
	if !ok {
		return
	}

	stats, found := s.engine.GetOrganizerRevenue(organizer)
	if !found {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no statistics for address"})
		return
	}

	s.writeJSON(w, http.StatusOK, stats)
}

func (s *HTTPServer) calculateFeeHandler(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseUint(r.URL.Query().Get("amount"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid amount"})
		return
	}

	fee := s.engine.CalculatePlatformFee(amount)
	s.writeJSON(w, http.StatusOK, map[string]uint64{"amount": amount, "fee": fee})
}

type updateFeeRequest struct {
	Caller     string  `json:"caller" validate:"required"`
	FeePercent *uint64 `json:"fee_percent" validate:"required"`
}

func (s *HTTPServer) updatePlatformFeeHandler(w http.ResponseWriter, r *http.Request) {
	var req updateFeeRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	caller, ok := s.parseAddress(w, req.Caller)
	if !ok {
		return
	}

	if err := s.engine.UpdatePlatformFee(r.Context(), *req.FeePercent, caller); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]uint64{"platform_fee_percent": *req.FeePercent})
}

type updateMinPriceRequest struct {
	Caller   string  `json:"caller" validate:"required"`
	MinPrice *uint64 `json:"min_price" validate:"required"`
}

func (s *HTTPServer) updateMinTicketPriceHandler(w http.ResponseWriter, r *http.Request) {
	var req updateMinPriceRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	caller, ok := s.parseAddress(w, req.Caller)
	if !ok {
		return
	}

	if err := s.engine.UpdateMinTicketPrice(r.Context(), *req.MinPrice, caller); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]uint64{"min_ticket_price": *req.MinPrice})
}

func (s *HTTPServer) heightHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]uint64{"height": s.engine.CurrentHeight()})
}

type advanceHeightRequest struct {
	Blocks uint64 `json:"blocks" validate:"required,min=1"`
}

// advanceHeightHandler moves the manual height source forward. Only available
// when the daemon runs without a node-backed source.
func (s *HTTPServer) advanceHeightHandler(w http.ResponseWriter, r *http.Request) {
	if s.manualHeights == nil {
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: "height source is node-backed"})
		return
	}

	var req advanceHeightRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	height := s.manualHeights.Advance(req.Blocks)
	s.writeJSON(w, http.StatusOK, map[string]uint64{"height": height})
}

type depositRequest struct {
	Account string `json:"account" validate:"required"`
	Amount  uint64 `json:"amount" validate:"required,min=1"`
}

func (s *HTTPServer) depositHandler(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	account, ok := s.parseAddress(w, req.Account)
	if !ok {
		return
	}

	if err := s.bank.Deposit(r.Context(), account, req.Amount); err != nil {
		s.writeError(w, err)
		return
	}

	balance, err := s.bank.Balance(r.Context(), account)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]uint64{"balance": balance})
}

func (s *HTTPServer) balanceHandler(w http.ResponseWriter, r *http.Request) {
	account, ok := s.parseAddress(w, mux.Vars(r)["address"])
	if !ok {
		return
	}

	balance, err := s.bank.Balance(r.Context(), account)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]uint64{"balance": balance})
}
