package api

import (
	"encoding/json"
	"math/big"
	"net/http"
)

// handleStrategyBalance handles GET /api/strategy
func (s *Server) handleStrategyBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"balance":     s.strat.Balance().String(),
		"outstanding": s.ledger.Outstanding().String(),
	})
}

// AccrueRequest is the request to add simulated yield to the strategy
type AccrueRequest struct {
	Amount string `json:"amount"`
}

// handleAccrue handles POST /api/strategy/accrue. Only strategies that
// support simulated accrual (local/dev) accept it.
func (s *Server) handleAccrue(w http.ResponseWriter, r *http.Request) {
	accruer, ok := s.strat.(interface{ Accrue(amount *big.Int) error })
	if !ok {
		writeError(w, http.StatusNotImplemented, "strategy does not support simulated accrual")
		return
	}

	var req AccrueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, ok := parseAmount(req.Amount)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	if err := accruer.Accrue(amount); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"balance": s.strat.Balance().String(),
	})
}
