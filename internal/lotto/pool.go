package lotto

import (
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Sammyalhashe/Lotto/internal/strategy"
)

// PoolStatus represents the lifecycle stage of a lottery pool
type PoolStatus int

const (
	StatusOpen      PoolStatus = iota // Accepting entries until close time
	StatusSettled                     // Winner picked, funds disbursed
	StatusCancelled                   // Ended by the creator before any entries
)

func (s PoolStatus) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusSettled:
		return "settled"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Pool represents one lottery round. Participants is insertion-ordered and may
// contain the same address more than once (one entry per payment). Winner,
// PrincipalPaid and YieldAttributed are written exactly once, at settlement.
type Pool struct {
	ID              uint64
	Creator         common.Address
	EntryFee        *big.Int
	CloseTime       time.Time
	Participants    []common.Address
	Status          PoolStatus
	Winner          *common.Address
	PrincipalPaid   *big.Int
	YieldAttributed *big.Int
	CreatedAt       time.Time
	SettledAt       *time.Time
}

// PoolJSON is the JSON representation of a pool snapshot
type PoolJSON struct {
	ID              uint64   `json:"id"`
	Creator         string   `json:"creator"`
	EntryFee        string   `json:"entry_fee"`
	CloseTime       string   `json:"close_time"`
	Participants    []string `json:"participants"`
	Status          string   `json:"status"`
	Winner          *string  `json:"winner,omitempty"`
	PrincipalPaid   string   `json:"principal_paid"`
	YieldAttributed string   `json:"yield_attributed"`
	CreatedAt       string   `json:"created_at"`
	SettledAt       *string  `json:"settled_at,omitempty"`
}

// ToJSON converts a Pool to its JSON representation
func (p *Pool) ToJSON() PoolJSON {
	pj := PoolJSON{
		ID:              p.ID,
		Creator:         p.Creator.Hex(),
		EntryFee:        p.EntryFee.String(),
		CloseTime:       p.CloseTime.Format(time.RFC3339),
		Participants:    make([]string, 0, len(p.Participants)),
		Status:          p.Status.String(),
		PrincipalPaid:   p.PrincipalPaid.String(),
		YieldAttributed: p.YieldAttributed.String(),
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
	}
	for _, participant := range p.Participants {
		pj.Participants = append(pj.Participants, participant.Hex())
	}
	if p.Winner != nil {
		s := p.Winner.Hex()
		pj.Winner = &s
	}
	if p.SettledAt != nil {
		s := p.SettledAt.Format(time.RFC3339)
		pj.SettledAt = &s
	}
	return pj
}

// snapshot returns a deep copy safe to hand to callers
func (p *Pool) snapshot() *Pool {
	cp := *p
	cp.EntryFee = new(big.Int).Set(p.EntryFee)
	cp.PrincipalPaid = new(big.Int).Set(p.PrincipalPaid)
	cp.YieldAttributed = new(big.Int).Set(p.YieldAttributed)
	cp.Participants = append([]common.Address(nil), p.Participants...)
	if p.Winner != nil {
		w := *p.Winner
		cp.Winner = &w
	}
	if p.SettledAt != nil {
		t := *p.SettledAt
		cp.SettledAt = &t
	}
	return &cp
}

// Ledger owns the authoritative state of every pool: records, the sequential
// id counter, the reverse indices, and the running total of principal
// escrowed with the strategy for unsettled pools.
type Ledger struct {
	mu          sync.RWMutex
	pools       map[uint64]*Pool
	nextID      uint64
	createdBy   map[common.Address][]uint64
	joinedBy    map[common.Address][]uint64
	outstanding *big.Int
	strat       strategy.Strategy
	now         func() time.Time
	onEvent     func(Event)
	logger      *zap.Logger
}

// NewLedger creates an empty pool ledger escrowing funds with strat
func NewLedger(strat strategy.Strategy, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		pools:       make(map[uint64]*Pool),
		nextID:      1,
		createdBy:   make(map[common.Address][]uint64),
		joinedBy:    make(map[common.Address][]uint64),
		outstanding: new(big.Int),
		strat:       strat,
		now:         time.Now,
		logger:      logger,
	}
}

// SetEventCallback registers a callback for ledger events
func (l *Ledger) SetEventCallback(fn func(Event)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onEvent = fn
}

// SetClock overrides the time source
func (l *Ledger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

func (l *Ledger) emit(evt Event) {
	if l.onEvent != nil {
		l.onEvent(evt)
	}
}

// Create allocates a new pool closing after duration and returns its id
func (l *Ledger) Create(creator common.Address, entryFee *big.Int, duration time.Duration) (uint64, error) {
	if entryFee == nil || entryFee.Sign() <= 0 {
		return 0, fmt.Errorf("%w: entry fee must be positive", ErrInvalidParameter)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%w: duration must be positive", ErrInvalidParameter)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	pool := &Pool{
		ID:              l.nextID,
		Creator:         creator,
		EntryFee:        new(big.Int).Set(entryFee),
		CloseTime:       now.Add(duration),
		Status:          StatusOpen,
		PrincipalPaid:   new(big.Int),
		YieldAttributed: new(big.Int),
		CreatedAt:       now,
	}
	l.nextID++

	l.pools[pool.ID] = pool
	l.createdBy[creator] = append(l.createdBy[creator], pool.ID)

	l.logger.Info("pool created",
		zap.Uint64("pool_id", pool.ID),
		zap.String("creator", creator.Hex()),
		zap.String("entry_fee", pool.EntryFee.String()),
		zap.Time("close_time", pool.CloseTime),
	)
	l.emit(newEvent(EventPoolCreated, PoolCreatedData{
		PoolID:    pool.ID,
		Creator:   creator.Hex(),
		EntryFee:  pool.EntryFee.String(),
		CloseTime: pool.CloseTime.Format(time.RFC3339),
	}))

	return pool.ID, nil
}

// Enter records payer as a participant of the pool and forwards the payment
// to the yield strategy. The payment must match the entry fee exactly; over-
// and underpayment are both rejected so no value is ever stranded.
func (l *Ledger) Enter(poolID uint64, payer common.Address, amountPaid *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pool, ok := l.pools[poolID]
	if !ok {
		return ErrPoolNotFound
	}
	if pool.Status != StatusOpen {
		return ErrPoolClosed
	}
	if !l.now().Before(pool.CloseTime) {
		return ErrPoolClosed
	}
	if amountPaid == nil || amountPaid.Cmp(pool.EntryFee) != 0 {
		return ErrInvalidPayment
	}

	// Escrow first: a deposit failure leaves no partial entry behind.
	if err := l.strat.Deposit(amountPaid); err != nil {
		return fmt.Errorf("forward entry fee to strategy: %w", err)
	}

	pool.Participants = append(pool.Participants, payer)
	l.joinedBy[payer] = append(l.joinedBy[payer], poolID)
	l.outstanding.Add(l.outstanding, amountPaid)

	l.logger.Info("pool entered",
		zap.Uint64("pool_id", poolID),
		zap.String("participant", payer.Hex()),
		zap.Int("entries", len(pool.Participants)),
	)
	l.emit(newEvent(EventPoolEntered, PoolEnteredData{
		PoolID:      poolID,
		Participant: payer.Hex(),
		Entries:     len(pool.Participants),
	}))

	return nil
}

// Cancel ends a pool with no winner. Only the creator may cancel, and only
// while the pool has no entries and has not been settled. This is a distinct
// terminal outcome, not a rollback.
func (l *Ledger) Cancel(poolID uint64, caller common.Address) error {
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
	if caller != pool.Creator {
		return ErrNotCreator
	}
	if len(pool.Participants) > 0 {
		return ErrPoolHasEntries
	}

	pool.Status = StatusCancelled

	l.logger.Info("pool cancelled", zap.Uint64("pool_id", poolID))
	l.emit(newEvent(EventPoolCancelled, PoolCancelledData{PoolID: poolID}))

	return nil
}

// Get retrieves a snapshot of a pool by id
func (l *Ledger) Get(poolID uint64) (*Pool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pool, ok := l.pools[poolID]
	if !ok {
		return nil, ErrPoolNotFound
	}
	return pool.snapshot(), nil
}

// Count returns the total number of pools ever created
func (l *Ledger) Count() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nextID - 1
}

// List returns snapshots of all pools ordered by id
func (l *Ledger) List() []*Pool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pools := make([]*Pool, 0, len(l.pools))
	for _, pool := range l.pools {
		pools = append(pools, pool.snapshot())
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].ID < pools[j].ID })
	return pools
}

// CreatedBy returns the ids of pools created by identity, in creation order
func (l *Ledger) CreatedBy(identity common.Address) []uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]uint64(nil), l.createdBy[identity]...)
}

// JoinedBy returns the ids of pools identity entered, in entry order. An
// identity that entered the same pool twice sees that id twice.
func (l *Ledger) JoinedBy(identity common.Address) []uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]uint64(nil), l.joinedBy[identity]...)
}

// Outstanding returns the principal currently escrowed for unsettled pools
func (l *Ledger) Outstanding() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.outstanding)
}
