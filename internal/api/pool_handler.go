package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// CreatePoolRequest is the request to create a new pool
type CreatePoolRequest struct {
	Creator         string `json:"creator"`
	EntryFee        string `json:"entry_fee"` // base-10 token amount
	DurationSeconds int64  `json:"duration_seconds"`
}

// handleCreatePool handles POST /api/pool
func (s *Server) handleCreatePool(w http.ResponseWriter, r *http.Request) {
	var req CreatePoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	creator, ok := parseAddress(req.Creator)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid creator address")
		return
	}
	entryFee, ok := parseAmount(req.EntryFee)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid entry_fee")
		return
	}

	poolID, err := s.ledger.Create(creator, entryFee, time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	pool, err := s.ledger.Get(poolID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, pool.ToJSON())
}

// handleListPools handles GET /api/pools
func (s *Server) handleListPools(w http.ResponseWriter, r *http.Request) {
	pools := s.ledger.List()

	result := make([]interface{}, 0, len(pools))
	for _, pool := range pools {
		result = append(result, pool.ToJSON())
	}

	writeJSON(w, http.StatusOK, result)
}

// handlePoolCount handles GET /api/pools/count
func (s *Server) handlePoolCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]uint64{
		"count": s.ledger.Count(),
	})
}

// handleGetPool handles GET /api/pool/{id}
func (s *Server) handleGetPool(w http.ResponseWriter, r *http.Request) {
	poolID, ok := parsePoolID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid pool id")
		return
	}

	pool, err := s.ledger.Get(poolID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pool.ToJSON())
}

// EnterPoolRequest is the request to enter a pool
type EnterPoolRequest struct {
	Payer  string `json:"payer"`
	Amount string `json:"amount"` // must equal the pool's entry fee exactly
}

// handleEnterPool handles POST /api/pool/{id}/enter
func (s *Server) handleEnterPool(w http.ResponseWriter, r *http.Request) {
	poolID, ok := parsePoolID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid pool id")
		return
	}

	var req EnterPoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payer, ok := parseAddress(req.Payer)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid payer address")
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	if err := s.ledger.Enter(poolID, payer, amount); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pool_id":     poolID,
		"participant": payer.Hex(),
	})
}

// CancelPoolRequest is the request to cancel a pool before any entries
type CancelPoolRequest struct {
	Caller string `json:"caller"`
}

// handleCancelPool handles POST /api/pool/{id}/cancel
func (s *Server) handleCancelPool(w http.ResponseWriter, r *http.Request) {
	poolID, ok := parsePoolID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid pool id")
		return
	}

	var req CancelPoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	caller, ok := parseAddress(req.Caller)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid caller address")
		return
	}

	if err := s.ledger.Cancel(poolID, caller); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pool_id": poolID,
		"status":  "cancelled",
	})
}

// handleCreatedPools handles GET /api/account/{address}/created
func (s *Server) handleCreatedPools(w http.ResponseWriter, r *http.Request) {
	addr, ok := parseAddress(r.PathValue("address"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"address":  addr.Hex(),
		"pool_ids": s.ledger.CreatedBy(addr),
	})
}

// handleJoinedPools handles GET /api/account/{address}/joined
func (s *Server) handleJoinedPools(w http.ResponseWriter, r *http.Request) {
	addr, ok := parseAddress(r.PathValue("address"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"address":  addr.Hex(),
		"pool_ids": s.ledger.JoinedBy(addr),
	})
}
