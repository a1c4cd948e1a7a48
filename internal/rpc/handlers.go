package rpc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/atomic-swap-net/swapcoordd/internal/coordinator"
)

func (s *Server) handleServerInfo(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, map[string]interface{}{"message": "This server is working."})
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	token, err := s.coord.IssueToken()
	if err != nil {
		// Storage failure on issuance surfaces as 500, per the error
		// propagation rule distinguishing it from swap-update failures.
		writeEnvelope(w, http.StatusInternalServerError, map[string]interface{}{
			"status": statusFailed,
			"token":  nil,
			"error":  err.Error(),
		})
		return
	}
	writeSuccess(w, map[string]interface{}{"token": token})
}

type verifyTokenRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	var req verifyTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result := s.coord.VerifyToken(req.Token)
	body := map[string]interface{}{
		"status": statusSuccess,
		"exist":  result.Exists,
	}
	if result.Exists {
		body["create_at"] = result.CreatedAt
	} else {
		body["create_at"] = nil
	}
	writeEnvelope(w, http.StatusOK, body)
}

type registerSwapRequest struct {
	Token          string `json:"token"`
	WantCurrency   string `json:"wantCurrency"`
	WantAmount     int64  `json:"wantAmount"`
	SendCurrency   string `json:"sendCurrency"`
	SendAmount     int64  `json:"sendAmount"`
	ReceiveAddress string `json:"receiveAddress"`
}

func (s *Server) handleRegisterSwap(w http.ResponseWriter, r *http.Request) {
	var req registerSwapRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v := newValidator()
	v.require("token", req.Token, "field required")
	v.require("wantCurrency", req.WantCurrency, "field required")
	v.require("sendCurrency", req.SendCurrency, "field required")
	v.require("receiveAddress", req.ReceiveAddress, "field required")
	if !v.ok() {
		v.writeFailure(w)
		return
	}

	_, err := s.coord.RegisterSwap(coordinator.RegisterSwapParams{
		Token:          req.Token,
		WantCurrency:   req.WantCurrency,
		WantAmount:     req.WantAmount,
		SendCurrency:   req.SendCurrency,
		SendAmount:     req.SendAmount,
		ReceiveAddress: req.ReceiveAddress,
	})
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, map[string]interface{}{})
}

func (s *Server) handleGetSwapList(w http.ResponseWriter, r *http.Request) {
	swaps, err := s.coord.GetSwapList()
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, map[string]interface{}{
			"status": statusFailed,
			"data":   map[string]interface{}{},
		})
		return
	}

	data := make(map[string]interface{}, len(swaps))
	for _, sw := range swaps {
		data[hex.EncodeToString(sw.SwapKey[:])] = map[string]interface{}{
			"initiatorCurrency":         sw.InitiatorCurrency,
			"initiatorReceiveAmount":    sw.InitiatorReceiveAmount,
			"participatorCurrency":      sw.ParticipatorCurrency,
			"participatorReceiveAmount": sw.ParticipatorReceiveAmount,
			"participatorAddress":       sw.ParticipatorAddress,
		}
	}
	writeEnvelope(w, http.StatusOK, map[string]interface{}{"status": statusSuccess, "data": data})
}

type initiateSwapRequest struct {
	Token          string `json:"token"`
	SelectedSwap   string `json:"selectedSwap"`
	Contract       string `json:"contract"`
	RawTransaction string `json:"rawTransaction"`
	ReceiveAddress string `json:"receiveAddress"`
}

func (s *Server) handleInitiateSwap(w http.ResponseWriter, r *http.Request) {
	var req initiateSwapRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v := newValidator()
	v.require("token", req.Token, "field required")
	v.require("selectedSwap", req.SelectedSwap, "field required")
	v.require("contract", req.Contract, "field required")
	v.require("rawTransaction", req.RawTransaction, "field required")
	v.require("receiveAddress", req.ReceiveAddress, "field required")
	if !v.ok() {
		v.writeFailure(w)
		return
	}

	err := s.coord.InitiateSwap(coordinator.InitiateSwapParams{
		Token:          req.Token,
		SelectedSwap:   req.SelectedSwap,
		Contract:       req.Contract,
		RawTransaction: req.RawTransaction,
		ReceiveAddress: req.ReceiveAddress,
	})
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, map[string]interface{}{})
}

type tokenOnlyRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleGetInitiatorInfo(w http.ResponseWriter, r *http.Request) {
	var req tokenOnlyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	info, err := s.coord.GetInitiatorInfo(req.Token)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, map[string]interface{}{
			"status":                 statusFailed,
			"initiatorAddress":       nil,
			"tokenHash":              nil,
			"initiateContract":       nil,
			"initiateRawTransaction": nil,
			"error":                  err.Error(),
		})
		return
	}

	writeSuccess(w, map[string]interface{}{
		"initiatorAddress":       info.InitiatorAddress,
		"initiateContract":       info.InitiateContract,
		"initiateRawTransaction": info.InitiateRawTransaction,
		"tokenHash":              hex.EncodeToString(info.TokenHash[:]),
	})
}

type participateSwapRequest struct {
	Token          string `json:"token"`
	RawTransaction string `json:"rawTransaction"`
	Contract       string `json:"contract"`
}

func (s *Server) handleParticipateSwap(w http.ResponseWriter, r *http.Request) {
	var req participateSwapRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v := newValidator()
	v.require("token", req.Token, "field required")
	v.require("rawTransaction", req.RawTransaction, "field required")
	v.require("contract", req.Contract, "field required")
	if !v.ok() {
		v.writeFailure(w)
		return
	}

	err := s.coord.ParticipateSwap(coordinator.ParticipateSwapParams{
		Token:          req.Token,
		RawTransaction: req.RawTransaction,
		Contract:       req.Contract,
	})
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, map[string]interface{}{})
}

func (s *Server) handleGetParticipatorInfo(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	selectedSwap := r.URL.Query().Get("selectedSwap")

	info, err := s.coord.GetParticipatorInfo(token, selectedSwap)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, map[string]interface{}{
			"status":                    statusFailed,
			"participateContract":       nil,
			"participateRawTransaction": nil,
			"error":                     err.Error(),
		})
		return
	}

	writeSuccess(w, map[string]interface{}{
		"participateContract":       info.ParticipateContract,
		"participateRawTransaction": info.ParticipateRawTransaction,
	})
}

type redeemSwapRequest struct {
	Token          string `json:"token"`
	SelectedSwap   string `json:"selectedSwap"`
	RawTransaction string `json:"rawTransaction"`
}

func (s *Server) handleRedeemSwap(w http.ResponseWriter, r *http.Request) {
	var req redeemSwapRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v := newValidator()
	v.require("token", req.Token, "field required")
	v.require("selectedSwap", req.SelectedSwap, "field required")
	v.require("rawTransaction", req.RawTransaction, "field required")
	if !v.ok() {
		v.writeFailure(w)
		return
	}

	err := s.coord.RedeemSwap(coordinator.RedeemSwapParams{
		Token:          req.Token,
		SelectedSwap:   req.SelectedSwap,
		RawTransaction: req.RawTransaction,
	})
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, map[string]interface{}{})
}

func (s *Server) handleGetRedeemToken(w http.ResponseWriter, r *http.Request) {
	var req tokenOnlyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := s.coord.GetRedeemToken(req.Token)
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, map[string]interface{}{
			"status": statusFailed,
			"token":  nil,
			"error":  err.Error(),
		})
		return
	}
	writeSuccess(w, map[string]interface{}{"token": token})
}

type completeSwapRequest struct {
	Token          string `json:"token"`
	RawTransaction string `json:"rawTransaction"`
}

func (s *Server) handleCompleteSwap(w http.ResponseWriter, r *http.Request) {
	var req completeSwapRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v := newValidator()
	v.require("token", req.Token, "field required")
	v.require("rawTransaction", req.RawTransaction, "field required")
	if !v.ok() {
		v.writeFailure(w)
		return
	}

	err := s.coord.CompleteSwap(coordinator.CompleteSwapParams{
		Token:          req.Token,
		RawTransaction: req.RawTransaction,
	})
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, map[string]interface{}{})
}

// decodeJSON decodes the request body into v. On failure it writes a 400
// validation-style envelope and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Status: statusFailed, Error: []fieldError{{Message: "request body required"}}})
		return false
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{
			Status: statusFailed,
			Error:  []fieldError{{Message: fmt.Sprintf("invalid request body: %v", err)}},
		})
		return false
	}
	return true
}
