package api

import (
	"encoding/json"
	"net/http"
)

// ClaimRequest is the request to claim pending settlement credit
type ClaimRequest struct {
	Address string `json:"address"`
}

// handleClaim handles POST /api/claim
func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	addr, ok := parseAddress(req.Address)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}

	amount, err := s.credits.Claim(addr)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"address": addr.Hex(),
		"amount":  amount.String(),
	})
}

// handleCreditBalance handles GET /api/account/{address}/credit
func (s *Server) handleCreditBalance(w http.ResponseWriter, r *http.Request) {
	addr, ok := parseAddress(r.PathValue("address"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"address": addr.Hex(),
		"credit":  s.credits.BalanceOf(addr).String(),
	})
}
