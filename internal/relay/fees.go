package relay

import (
	"sync"

	"github.com/TenderBeastJr/KittyConnect-FF/internal/domain"
)

// FeeAccount is the controller's fee-token balance the relay charges against.
// Balance and transfer mechanics of the fee token itself are external; the
// registry only needs to read and debit its own account.
type FeeAccount interface {
	// Token returns the fee token's address
	Token() domain.Address
	// Balance returns the current fee-token balance
	Balance() uint64
	// Debit reduces the balance by amount
	Debit(amount uint64) error
}

// memoryFeeAccount is an in-process FeeAccount
type memoryFeeAccount struct {
	mu      sync.Mutex
	token   domain.Address
	balance uint64
}

// NewFeeAccount creates a fee account holding an initial balance
func NewFeeAccount(token domain.Address, balance uint64) FeeAccount {
	return &memoryFeeAccount{token: token, balance: balance}
}

// Token returns the fee token's address
func (a *memoryFeeAccount) Token() domain.Address {
	return a.token
}

// Balance returns the current fee-token balance
func (a *memoryFeeAccount) Balance() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Debit reduces the balance by amount
func (a *memoryFeeAccount) Debit(amount uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if amount > a.balance {
		return domain.NewInsufficientFeeError(a.balance, amount)
	}
	a.balance -= amount
	return nil
}
