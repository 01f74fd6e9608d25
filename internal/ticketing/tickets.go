package ticketing

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/smartdevs17/event-ticketing/internal/models"
	"github.com/smartdevs17/event-ticketing/internal/notification"
)

// PurchaseTicket sells one ticket against an event, charging the buyer the
// event's current ticket price. A failed transfer aborts the purchase with
// ErrPaymentFailed and no state change.
func (e *Engine) PurchaseTicket(ctx context.Context, eventID uint64, buyer common.Address) (uint64, error) {
	start := time.Now()

	id, err := e.purchaseTicket(ctx, eventID, buyer)
	e.recordOperation("purchase-ticket", start, err)
	return id, err
}

func (e *Engine) purchaseTicket(ctx context.Context, eventID uint64, buyer common.Address) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	event, ok := e.events[eventID]
	if !ok {
		return 0, ErrEventNotFound
	}
	if !event.IsActive || event.TicketsSold >= event.TotalTickets {
		return 0, ErrSoldOut
	}
	if e.maxTicketsPerOwner > 0 && uint64(len(e.ownership[buyer])) >= e.maxTicketsPerOwner {
		return 0, ErrSoldOut
	}

	height := e.currentHeight()

	if err := e.bank.Transfer(ctx, buyer, event.Organizer, event.TicketPrice); err != nil {
		if e.metricsManager != nil {
			e.metricsManager.GetPrometheusMetrics().PaymentFailuresTotal.Inc()
		}
		return 0, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	id := e.config.NextTicketID
	e.config.NextTicketID++

	ticket := &models.Ticket{
		ID:             id,
		EventID:        eventID,
		Owner:          buyer,
		PurchasePrice:  event.TicketPrice,
		PurchaseHeight: height,
		IsUsed:         false,
		IsRefunded:     false,
	}
	e.tickets[id] = ticket

	event.TicketsSold++
	event.Revenue += event.TicketPrice

	stats, ok := e.organizers[event.Organizer]
	if !ok {
		stats = &models.OrganizerStats{Organizer: event.Organizer}
		e.organizers[event.Organizer] = stats
	}
	stats.TotalRevenue += event.TicketPrice

	e.ownership[buyer] = append(e.ownership[buyer], id)

	e.persistTicket(ctx, ticket)
	e.persistEvent(ctx, event)
	e.persistOrganizerStats(ctx, stats)
	e.persistOwnership(ctx, buyer, id)
	e.persistConfig(ctx)

	if e.metricsManager != nil {
		e.metricsManager.GetPrometheusMetrics().TicketsSoldTotal.Inc()
	}

	e.notify(notification.TypeTicketPurchased, map[string]interface{}{
		"ticket_id": id,
		"event_id":  eventID,
		"buyer":     buyer.Hex(),
		"price":     event.TicketPrice,
	})

	return id, nil
}

// ValidateTicket marks a ticket used at the gate. Only the organizer of the
// referenced event may validate, and the transition is terminal.
func (e *Engine) ValidateTicket(ctx context.Context, ticketID uint64, caller common.Address) error {
	start := time.Now()

	err := e.validateTicket(ctx, ticketID, caller)
	e.recordOperation("validate-ticket", start, err)
	return err
}

func (e *Engine) validateTicket(ctx context.Context, ticketID uint64, caller common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ticket, ok := e.tickets[ticketID]
	if !ok {
		return ErrTicketNotFound
	}

	event, ok := e.events[ticket.EventID]
	if !ok {
		return ErrEventNotFound
	}
	if caller != event.Organizer {
		return ErrNotAuthorized
	}
	if ticket.IsUsed || ticket.IsRefunded {
		return ErrTicketClosed
	}

	ticket.IsUsed = true

	e.persistTicket(ctx, ticket)

	if e.metricsManager != nil {
		e.metricsManager.GetPrometheusMetrics().TicketsValidatedTotal.Inc()
	}

	e.notify(notification.TypeTicketValidated, map[string]interface{}{
		"ticket_id": ticketID,
		"event_id":  ticket.EventID,
		"organizer": caller.Hex(),
	})

	return nil
}

// RefundTicket refunds a ticket to its owner while the refund window is
// open. The window closes once the ledger height exceeds the purchase height
// plus the event's refund window. Capacity consumed by a refunded ticket is
// not returned to the pool.
func (e *Engine) RefundTicket(ctx context.Context, ticketID uint64, caller common.Address) error {
	start := time.Now()

	err := e.refundTicket(ctx, ticketID, caller)
	e.recordOperation("refund-ticket", start, err)
	return err
}

func (e *Engine) refundTicket(ctx context.Context, ticketID uint64, caller common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ticket, ok := e.tickets[ticketID]
	if !ok {
		return ErrTicketNotFound
	}
	if caller != ticket.Owner {
		return ErrNotAuthorized
	}
	if ticket.IsUsed || ticket.IsRefunded {
		return ErrTicketClosed
	}

	event, ok := e.events[ticket.EventID]
	if !ok {
		return ErrEventNotFound
	}

	height := e.currentHeight()
	if height > ticket.PurchaseHeight+event.RefundWindow {
		return ErrRefundWindowClosed
	}

	if err := e.bank.Transfer(ctx, event.Organizer, ticket.Owner, ticket.PurchasePrice); err != nil {
		if e.metricsManager != nil {
			e.metricsManager.GetPrometheusMetrics().PaymentFailuresTotal.Inc()
		}
		return fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	ticket.IsRefunded = true

	if event.Revenue >= ticket.PurchasePrice {
		event.Revenue -= ticket.PurchasePrice
	} else {
		event.Revenue = 0
	}

	if stats, ok := e.organizers[event.Organizer]; ok {
		if stats.TotalRevenue >= ticket.PurchasePrice {
			stats.TotalRevenue -= ticket.PurchasePrice
		} else {
			stats.TotalRevenue = 0
		}
		e.persistOrganizerStats(ctx, stats)
	}

	e.persistTicket(ctx, ticket)
	e.persistEvent(ctx, event)

	if e.metricsManager != nil {
		e.metricsManager.GetPrometheusMetrics().TicketsRefundedTotal.Inc()
	}

	e.notify(notification.TypeTicketRefunded, map[string]interface{}{
		"ticket_id": ticketID,
		"event_id":  ticket.EventID,
		"owner":     caller.Hex(),
		"amount":    ticket.PurchasePrice,
	})

	return nil
}
