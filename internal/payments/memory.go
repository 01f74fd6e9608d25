package payments

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/event-ticketing/pkg/utils"
)

// MemoryBank implements Bank with an in-process account ledger. Accounts seen
// for the first time are optionally auto-funded so a standalone daemon is
// usable without a faucet.
type MemoryBank struct {
	mu       sync.Mutex
	balances map[common.Address]uint64

	initialBalance uint64
	autoFund       bool
	logger         *logrus.Entry
}

// NewMemoryBank creates a new in-memory bank
func NewMemoryBank(cfg *Config) *MemoryBank {
	return &MemoryBank{
		balances:       make(map[common.Address]uint64),
		initialBalance: cfg.InitialBalance,
		autoFund:       cfg.AutoFund,
		logger:         utils.GetLogger().WithField("component", "bank"),
	}
}

// GetProvider returns the bank provider type
func (b *MemoryBank) GetProvider() Provider {
	return ProviderMemory
}

// Transfer moves amount between accounts, failing with ErrInsufficientFunds
// when the source balance cannot cover it
func (b *MemoryBank) Transfer(ctx context.Context, from, to common.Address, amount uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.ensureAccount(from)
	b.ensureAccount(to)

	if b.balances[from] < amount {
		b.logger.WithFields(logrus.Fields{
			"from":    from.Hex(),
			"amount":  amount,
			"balance": b.balances[from],
		}).Warn("Transfer rejected")
		return ErrInsufficientFunds
	}

	b.balances[from] -= amount
	b.balances[to] += amount

	b.logger.WithFields(logrus.Fields{
		"from":   from.Hex(),
		"to":     to.Hex(),
		"amount": amount,
	}).Debug("Transfer completed")

	return nil
}

// Balance returns the current balance of an account
func (b *MemoryBank) Balance(ctx context.Context, account common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ensureAccount(account)
	return b.balances[account], nil
}

// Deposit credits an account directly
func (b *MemoryBank) Deposit(ctx context.Context, account common.Address, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ensureAccount(account)
	b.balances[account] += amount
	return nil
}

// Close gracefully closes the bank
func (b *MemoryBank) Close() error {
	return nil
}

// ensureAccount seeds an unseen account. Caller must hold the lock.
func (b *MemoryBank) ensureAccount(account common.Address) {
	if _, ok := b.balances[account]; !ok {
		if b.autoFund {
			b.balances[account] = b.initialBalance
		} else {
			b.balances[account] = 0
		}
	}
}
