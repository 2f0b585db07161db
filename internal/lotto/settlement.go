package lotto

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/Sammyalhashe/Lotto/internal/state"
	"github.com/Sammyalhashe/Lotto/internal/strategy"
)

// Engine drives pool close-out: eligibility checks, winner selection, yield
// attribution, and disbursement via the pending-credit ledger.
type Engine struct {
	ledger  *Ledger
	strat   strategy.Strategy
	credits *state.Credits
	logger  *zap.Logger
}

// NewEngine creates a settlement engine over the given ledger
func NewEngine(ledger *Ledger, strat strategy.Strategy, credits *state.Credits, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		ledger:  ledger,
		strat:   strat,
		credits: credits,
		logger:  logger,
	}
}

// Settle finalizes a pool past its close time: it flips the pool to settled,
// withdraws the pool's principal plus its attributed yield share from the
// strategy, and credits the winner (principal) and the creator (yield) in the
// pending-credit ledger. Any caller may settle; funds only ever move to the
// predetermined recipients.
//
// The settled flip happens before the strategy withdrawal so no nested call
// can re-enter the payout path. If the withdrawal fails, the flip is rolled
// back with it and the pool remains closeable, mirroring all-or-nothing call
// semantics.
func (e *Engine) Settle(poolID uint64) error {
	l := e.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	pool, ok := l.pools[poolID]
	if !ok {
		return ErrPoolNotFound
	}
	switch pool.Status {
	case StatusSettled:
		return ErrAlreadySettled
	case StatusCancelled:
		return ErrPoolCancelled
	}
	now := l.now()
	if now.Before(pool.CloseTime) {
		return ErrPoolOpen
	}

	pool.Status = StatusSettled
	settledAt := now
	pool.SettledAt = &settledAt

	n := len(pool.Participants)
	if n == 0 {
		// A pool nobody entered still settles: terminal, no winner, no
		// payout, no yield share.
		e.logger.Info("pool settled with no entries", zap.Uint64("pool_id", poolID))
		l.emit(newEvent(EventPoolSettled, PoolSettledData{
			PoolID:          poolID,
			PrincipalPaid:   "0",
			YieldAttributed: "0",
		}))
		return nil
	}

	principalDue := new(big.Int).Mul(pool.EntryFee, big.NewInt(int64(n)))
	yieldShare := attributeYield(e.strat.Balance(), l.outstanding, principalDue)

	withdrawn, err := e.strat.Withdraw(new(big.Int).Add(principalDue, yieldShare))
	if err != nil {
		// Roll the settled flip back; the pool stays closeable and can be
		// retried once the strategy can cover the principal.
		pool.Status = StatusOpen
		pool.SettledAt = nil
		return fmt.Errorf("withdraw from strategy: %w", err)
	}
	l.outstanding.Sub(l.outstanding, principalDue)

	winner := pool.Participants[winnerIndex(pool.ID, pool.CloseTime, n, now)]
	pool.Winner = &winner
	pool.PrincipalPaid = principalDue
	pool.YieldAttributed = new(big.Int).Sub(withdrawn, principalDue)

	e.credits.Credit(winner, pool.PrincipalPaid)
	e.credits.Credit(pool.Creator, pool.YieldAttributed)

	e.logger.Info("pool settled",
		zap.Uint64("pool_id", poolID),
		zap.String("winner", winner.Hex()),
		zap.Int("entries", n),
		zap.String("principal_paid", pool.PrincipalPaid.String()),
		zap.String("yield_attributed", pool.YieldAttributed.String()),
	)
	winnerHex := winner.Hex()
	l.emit(newEvent(EventPoolSettled, PoolSettledData{
		PoolID:          poolID,
		Winner:          &winnerHex,
		PrincipalPaid:   pool.PrincipalPaid.String(),
		YieldAttributed: pool.YieldAttributed.String(),
	}))

	return nil
}

// attributeYield splits the strategy's surplus over outstanding principal
// proportionally to the settling pool's principal. Floor division; dust stays
// with the strategy for pools settling later. Settling every pool against the
// same balance therefore never attributes more yield than was earned.
func attributeYield(balance, outstanding, principalDue *big.Int) *big.Int {
	if outstanding.Sign() <= 0 {
		return new(big.Int)
	}
	yield := new(big.Int).Sub(balance, outstanding)
	if yield.Sign() <= 0 {
		return new(big.Int)
	}
	share := new(big.Int).Mul(yield, principalDue)
	return share.Div(share, outstanding)
}

// winnerIndex picks the winning entry as
// keccak256(poolID || closeTime || entries || settleTime) mod entries.
// This is weak pseudo-randomness: whoever controls settlement timing can
// grind the result. It is a documented tie-break, not a fairness guarantee.
func winnerIndex(poolID uint64, closeTime time.Time, entries int, settleTime time.Time) int {
	var buf [32]byte
	binary.BigEndian.PutUint64(buf[0:8], poolID)
	binary.BigEndian.PutUint64(buf[8:16], uint64(closeTime.Unix()))
	binary.BigEndian.PutUint64(buf[16:24], uint64(entries))
	binary.BigEndian.PutUint64(buf[24:32], uint64(settleTime.UnixNano()))

	seed := new(big.Int).SetBytes(crypto.Keccak256(buf[:]))
	return int(seed.Mod(seed, big.NewInt(int64(entries))).Int64())
}
