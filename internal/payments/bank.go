package payments

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/smartdevs17/event-ticketing/pkg/utils"
)

// Provider represents different bank backends
type Provider string

const (
	ProviderMemory Provider = "memory"
)

// ErrInsufficientFunds is returned when the debited account cannot cover a transfer
var ErrInsufficientFunds = errors.New("insufficient funds")

// Bank defines the currency-transfer collaborator invoked by purchase and
// refund. A transfer either moves the full amount or returns an error; the
// caller treats any error as an abort of its own operation.
type Bank interface {
	// GetProvider returns the bank provider type
	GetProvider() Provider

	// Transfer moves amount (in currency micro-units) from one account to another
	Transfer(ctx context.Context, from, to common.Address, amount uint64) error

	// Balance returns the current balance of an account
	Balance(ctx context.Context, account common.Address) (uint64, error)

	// Deposit credits an account directly, bypassing transfer checks
	Deposit(ctx context.Context, account common.Address, amount uint64) error

	// Close gracefully closes any connections
	Close() error
}

// Config holds bank configuration
type Config struct {
	Provider       Provider `json:"provider"`
	InitialBalance uint64   `json:"initial_balance"`
	AutoFund       bool     `json:"auto_fund"`
}

// NewBank creates a bank instance based on provider type
func NewBank(cfg *Config) (Bank, error) {
	switch Provider(strings.ToLower(string(cfg.Provider))) {
	case ProviderMemory:
		return NewMemoryBank(cfg), nil
	default:
		return nil, utils.NewAppError(utils.ErrCodeConfiguration,
			"Unsupported bank provider", string(cfg.Provider))
	}
}
