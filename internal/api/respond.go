package api

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Sammyalhashe/Lotto/internal/lotto"
	"github.com/Sammyalhashe/Lotto/internal/state"
	"github.com/Sammyalhashe/Lotto/internal/strategy"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps a domain error onto its HTTP status
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFromError(err), err.Error())
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, lotto.ErrPoolNotFound):
		return http.StatusNotFound
	case errors.Is(err, lotto.ErrInvalidParameter),
		errors.Is(err, lotto.ErrInvalidPayment):
		return http.StatusBadRequest
	case errors.Is(err, lotto.ErrPoolClosed),
		errors.Is(err, lotto.ErrPoolOpen),
		errors.Is(err, lotto.ErrAlreadySettled),
		errors.Is(err, lotto.ErrPoolCancelled),
		errors.Is(err, lotto.ErrNotCreator),
		errors.Is(err, lotto.ErrPoolHasEntries),
		errors.Is(err, state.ErrNoCredit),
		errors.Is(err, strategy.ErrInsufficientBalance):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// parsePoolID parses the {id} path segment
func parsePoolID(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// parseAddress validates a hex identity
func parseAddress(s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

// parseAmount parses a non-negative base-10 token amount
func parseAmount(s string) (*big.Int, bool) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok || amount.Sign() < 0 {
		return nil, false
	}
	return amount, true
}
