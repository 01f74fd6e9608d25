package ticketing

import "fmt"

// Error is a contract-level failure with a stable numeric code. Codes mirror
// the on-chain error constants and are part of the external contract: callers
// match on the code, not the message.
type Error struct {
	Code    uint64 `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("u%d: %s", e.Code, e.Message)
}

// Is matches any Error carrying the same code, so wrapped errors still
// compare equal to the sentinels below via errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Contract error kinds. InvalidPrice covers both create-event validations
// (price below minimum and refund window above maximum); TicketClosed covers
// both terminal ticket states (used and refunded). The collapsed pairs are
// part of the observed contract and deliberately not split.
var (
	ErrNotAuthorized      = &Error{Code: 1, Message: "not authorized"}
	ErrEventNotFound      = &Error{Code: 2, Message: "event not found"}
	ErrSoldOut            = &Error{Code: 3, Message: "sold out"}
	ErrTicketNotFound     = &Error{Code: 4, Message: "ticket not found"}
	ErrInvalidPrice       = &Error{Code: 5, Message: "invalid price"}
	ErrEventExpired       = &Error{Code: 6, Message: "event expired"}
	ErrPaymentFailed      = &Error{Code: 7, Message: "payment failed"}
	ErrTicketClosed       = &Error{Code: 8, Message: "ticket already used or refunded"}
	ErrRefundWindowClosed = &Error{Code: 9, Message: "refund window closed"}
)
