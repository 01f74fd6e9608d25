package ticketing

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Operation is one contract call submitted as part of a batch
type Operation interface {
	Name() string
	Apply(ctx context.Context, e *Engine) (uint64, error)
}

// BatchResult reports the outcome of one operation in a batch
type BatchResult struct {
	Index     int    `json:"index"`
	Operation string `json:"operation"`
	Value     uint64 `json:"value,omitempty"`
	Err       error  `json:"error,omitempty"`
}

// ApplyBatch applies operations strictly in the given order. Each operation
// is individually atomic; a failure does not roll back operations already
// applied and does not stop the rest of the batch.
func (e *Engine) ApplyBatch(ctx context.Context, ops []Operation) []BatchResult {
	results := make([]BatchResult, 0, len(ops))

	for i, op := range ops {
		value, err := op.Apply(ctx, e)
		results = append(results, BatchResult{
			Index:     i,
			Operation: op.Name(),
			Value:     value,
			Err:       err,
		})
	}

	return results
}

// CreateEventOp submits a create-event call
type CreateEventOp struct {
	Params *CreateEventParams
	Caller common.Address
}

func (op *CreateEventOp) Name() string { return "create-event" }

func (op *CreateEventOp) Apply(ctx context.Context, e *Engine) (uint64, error) {
	return e.CreateEvent(ctx, op.Params, op.Caller)
}

// PurchaseTicketOp submits a purchase-ticket call
type PurchaseTicketOp struct {
	EventID uint64
	Caller  common.Address
}

func (op *PurchaseTicketOp) Name() string { return "purchase-ticket" }

func (op *PurchaseTicketOp) Apply(ctx context.Context, e *Engine) (uint64, error) {
	return e.PurchaseTicket(ctx, op.EventID, op.Caller)
}

// ValidateTicketOp submits a validate-ticket call
type ValidateTicketOp struct {
	TicketID uint64
	Caller   common.Address
}

func (op *ValidateTicketOp) Name() string { return "validate-ticket" }

func (op *ValidateTicketOp) Apply(ctx context.Context, e *Engine) (uint64, error) {
	if err := e.ValidateTicket(ctx, op.TicketID, op.Caller); err != nil {
		return 0, err
	}
	return op.TicketID, nil
}

// RefundTicketOp submits a refund-ticket call
type RefundTicketOp struct {
	TicketID uint64
	Caller   common.Address
}

func (op *RefundTicketOp) Name() string { return "refund-ticket" }

func (op *RefundTicketOp) Apply(ctx context.Context, e *Engine) (uint64, error) {
	if err := e.RefundTicket(ctx, op.TicketID, op.Caller); err != nil {
		return 0, err
	}
	return op.TicketID, nil
}

// UpdatePlatformFeeOp submits an update-platform-fee call
type UpdatePlatformFeeOp struct {
	FeePercent uint64
	Caller     common.Address
}

func (op *UpdatePlatformFeeOp) Name() string { return "update-platform-fee" }

func (op *UpdatePlatformFeeOp) Apply(ctx context.Context, e *Engine) (uint64, error) {
	if err := e.UpdatePlatformFee(ctx, op.FeePercent, op.Caller); err != nil {
		return 0, err
	}
	return op.FeePercent, nil
}

// UpdateMinTicketPriceOp submits an update-min-ticket-price call
type UpdateMinTicketPriceOp struct {
	MinPrice uint64
	Caller   common.Address
}

func (op *UpdateMinTicketPriceOp) Name() string { return "update-min-ticket-price" }

func (op *UpdateMinTicketPriceOp) Apply(ctx context.Context, e *Engine) (uint64, error) {
	if err := e.UpdateMinTicketPrice(ctx, op.MinPrice, op.Caller); err != nil {
		return 0, err
	}
	return op.MinPrice, nil
}
