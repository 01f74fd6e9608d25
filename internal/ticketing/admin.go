package ticketing

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/smartdevs17/event-ticketing/internal/notification"
)

// UpdatePlatformFee sets the platform fee percent. Owner only; the fee is a
// percentage and may not exceed 100.
func (e *Engine) UpdatePlatformFee(ctx context.Context, newFee uint64, caller common.Address) error {
	start := time.Now()

	err := e.updatePlatformFee(ctx, newFee, caller)
	e.recordOperation("update-platform-fee", start, err)
	return err
}

func (e *Engine) updatePlatformFee(ctx context.Context, newFee uint64, caller common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.config.ContractOwner {
		return ErrNotAuthorized
	}
	if newFee > 100 {
		return ErrInvalidPrice
	}

	e.config.PlatformFeePercent = newFee
	e.persistConfig(ctx)

	e.notify(notification.TypeFeeUpdated, map[string]interface{}{
		"platform_fee_percent": newFee,
	})

	return nil
}

// UpdateMinTicketPrice sets the minimum ticket price for future events.
// Owner only; no upper bound is enforced.
func (e *Engine) UpdateMinTicketPrice(ctx context.Context, newMin uint64, caller common.Address) error {
	start := time.Now()

	err := e.updateMinTicketPrice(ctx, newMin, caller)
	e.recordOperation("update-min-ticket-price", start, err)
	return err
}

func (e *Engine) updateMinTicketPrice(ctx context.Context, newMin uint64, caller common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.config.ContractOwner {
		return ErrNotAuthorized
	}

	e.config.MinTicketPrice = newMin
	e.persistConfig(ctx)

	e.notify(notification.TypeMinPriceUpdated, map[string]interface{}{
		"min_ticket_price": newMin,
	})

	return nil
}

// CalculatePlatformFee returns the platform's cut of an amount using integer
// floor division. Read-only, no authorization required.
func (e *Engine) CalculatePlatformFee(amount uint64) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return amount * e.config.PlatformFeePercent / 100
}
