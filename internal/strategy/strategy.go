package strategy

import (
	"errors"
	"math/big"
)

// Strategy is the yield-bearing escrow the pool engine places entry fees with.
// Deposited principal may grow while held; the surplus over principal is yield.
//
// Contract: Deposit accepts any non-negative amount and must not fail for one.
// Withdraw returns at least the requested amount (possibly more, if the
// implementation pays out accrued yield eagerly) or fails without moving funds.
// Balance reports total current holdings, principal plus accrued yield.
type Strategy interface {
	Deposit(amount *big.Int) error
	Withdraw(amount *big.Int) (*big.Int, error)
	Balance() *big.Int
}

var (
	ErrInvalidAmount       = errors.New("amount must be non-negative")
	ErrInsufficientBalance = errors.New("insufficient strategy balance")
)
