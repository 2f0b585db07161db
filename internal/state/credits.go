package state

import (
	"encoding/json"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Credits tracks pending-withdrawal balances owed to identities after
// settlement. Disbursement is pull-based: the settlement engine credits a
// recipient here, and the recipient claims explicitly. Settlement finality
// never depends on a recipient accepting a transfer.
type Credits struct {
	mu       sync.RWMutex
	balances map[common.Address]*big.Int
	version  uint64
}

// NewCredits creates an empty credit ledger.
func NewCredits() *Credits {
	return &Credits{
		balances: make(map[common.Address]*big.Int),
	}
}

// Credit adds amount to the pending balance of recipient.
func (c *Credits) Credit(recipient common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	bal, ok := c.balances[recipient]
	if !ok {
		bal = new(big.Int)
		c.balances[recipient] = bal
	}
	bal.Add(bal, amount)
	c.version++
}

// BalanceOf returns the pending balance for recipient, zero if none.
func (c *Credits) BalanceOf(recipient common.Address) *big.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if bal, ok := c.balances[recipient]; ok {
		return new(big.Int).Set(bal)
	}
	return new(big.Int)
}

// Claim pays out and zeroes the pending balance for recipient.
func (c *Credits) Claim(recipient common.Address) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bal, ok := c.balances[recipient]
	if !ok || bal.Sign() == 0 {
		return nil, ErrNoCredit
	}

	delete(c.balances, recipient)
	c.version++
	return bal, nil
}

// GetVersion returns the current version.
func (c *Credits) GetVersion() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// CreditSnapshot is a JSON-serializable snapshot of the credit ledger.
type CreditSnapshot struct {
	Balances map[string]string `json:"balances"`
	Version  uint64            `json:"version"`
}

func (c *Credits) Snapshot() CreditSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	balances := make(map[string]string, len(c.balances))
	for recipient, bal := range c.balances {
		balances[recipient.Hex()] = bal.String()
	}

	return CreditSnapshot{
		Balances: balances,
		Version:  c.version,
	}
}

// ToJSON returns the snapshot as JSON.
func (c *Credits) ToJSON() ([]byte, error) {
	return json.Marshal(c.Snapshot())
}

// Errors
type CreditError string

func (e CreditError) Error() string {
	return string(e)
}

const (
	ErrNoCredit CreditError = "no pending credit"
)
