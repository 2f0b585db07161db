package strategy

import (
	"math/big"
	"sync"
)

// SharedBalance is an in-memory Strategy that holds one undifferentiated
// balance for every depositor. It stands in for an external yield protocol in
// local runs and tests; yield is injected explicitly via Accrue rather than
// earned.
type SharedBalance struct {
	mu      sync.Mutex
	balance *big.Int
}

// NewSharedBalance creates an empty shared-balance strategy.
func NewSharedBalance() *SharedBalance {
	return &SharedBalance{
		balance: new(big.Int),
	}
}

// Deposit adds funds to the shared balance.
func (s *SharedBalance) Deposit(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance.Add(s.balance, amount)
	return nil
}

// Withdraw removes exactly the requested amount from the shared balance.
// Fails without moving funds if the total balance cannot cover it.
func (s *SharedBalance) Withdraw(amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balance.Cmp(amount) < 0 {
		return nil, ErrInsufficientBalance
	}

	s.balance.Sub(s.balance, amount)
	return new(big.Int).Set(amount), nil
}

// Balance returns the total current holdings.
func (s *SharedBalance) Balance() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.balance)
}

// Accrue adds simulated yield on top of the held principal.
func (s *SharedBalance) Accrue(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance.Add(s.balance, amount)
	return nil
}
