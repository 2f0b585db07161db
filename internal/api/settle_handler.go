package api

import (
	"net/http"
)

// handleSettlePool handles POST /api/pool/{id}/settle
//
// Any caller may settle a pool past its close time: funds only move to the
// predetermined recipients (winner and creator), via the credit ledger.
func (s *Server) handleSettlePool(w http.ResponseWriter, r *http.Request) {
	poolID, ok := parsePoolID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid pool id")
		return
	}

	if err := s.engine.Settle(poolID); err != nil {
		writeDomainError(w, err)
		return
	}

	pool, err := s.ledger.Get(poolID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pool.ToJSON())
}
