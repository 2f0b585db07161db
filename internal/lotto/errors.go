package lotto

import "errors"

var (
	ErrPoolNotFound     = errors.New("pool not found")
	ErrPoolClosed       = errors.New("pool is closed to entries")
	ErrPoolOpen         = errors.New("pool close time has not passed")
	ErrAlreadySettled   = errors.New("pool already settled")
	ErrPoolCancelled    = errors.New("pool was cancelled")
	ErrInvalidPayment   = errors.New("payment must equal the entry fee exactly")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNotCreator       = errors.New("only the pool creator may cancel")
	ErrPoolHasEntries   = errors.New("pool already has entries")
)
