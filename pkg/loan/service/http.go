package service

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/shakti-network/shakti-ledger/pkg/app/errors"
	apphttp "github.com/shakti-network/shakti-ledger/pkg/app/http"
	"github.com/shakti-network/shakti-ledger/pkg/loan"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the loan ledger endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/api/vaults/{address}/loans", apphttp.HandleError(h.registerProposal))

	r.Route("/api/loans/{proposalID}", func(r chi.Router) {
		r.Get("/votes/{voterAddress}", apphttp.HandleError(h.getVoteStatus))
		r.Post("/votes", apphttp.HandleError(h.recordVote))
		r.Post("/repayments", apphttp.HandleError(h.recordRepayment))
		r.Get("/repayments", apphttp.HandleError(h.listRepayments))
		r.Get("/summary", apphttp.HandleError(h.getSummary))
	})
}

type successResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
}

// voteStatusResponse keeps hasVoted beside data, with data being the vote
// record itself or null. Callers branch on hasVoted without inspecting data.
type voteStatusResponse struct {
	Success  bool       `json:"success"`
	Data     *loan.Vote `json:"data"`
	HasVoted bool       `json:"hasVoted"`
}

func (h *HTTP) registerProposal(w http.ResponseWriter, r *http.Request) error {
	address := chi.URLParam(r, "address")

	var req loan.RegisterProposalRequest
	if err := h.readJSON(r, &req); err != nil {
		return err
	}

	p, err := h.service.RegisterProposal(r.Context(), address, &req)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusCreated, &successResponse{
		Success: true,
		Data:    p,
		Message: "Loan proposal registered successfully",
	})
	return nil
}

func (h *HTTP) getVoteStatus(w http.ResponseWriter, r *http.Request) error {
	proposalID := chi.URLParam(r, "proposalID")
	voterAddress := chi.URLParam(r, "voterAddress")

	status, err := h.service.GetVoteStatus(r.Context(), proposalID, voterAddress)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, &voteStatusResponse{
		Success:  true,
		Data:     status.Vote,
		HasVoted: status.HasVoted,
	})
	return nil
}

func (h *HTTP) recordVote(w http.ResponseWriter, r *http.Request) error {
	proposalID := chi.URLParam(r, "proposalID")

	var req loan.RecordVoteRequest
	if err := h.readJSON(r, &req); err != nil {
		return err
	}

	v, err := h.service.RecordVote(r.Context(), proposalID, &req)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusCreated, &successResponse{
		Success: true,
		Data:    v,
		Message: "Vote recorded successfully",
	})
	return nil
}

func (h *HTTP) recordRepayment(w http.ResponseWriter, r *http.Request) error {
	proposalID := chi.URLParam(r, "proposalID")

	var req loan.RecordRepaymentRequest
	if err := h.readJSON(r, &req); err != nil {
		return err
	}

	repayment, err := h.service.RecordRepayment(r.Context(), proposalID, &req)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusCreated, &successResponse{
		Success: true,
		Data:    repayment,
		Message: "Repayment recorded successfully",
	})
	return nil
}

func (h *HTTP) listRepayments(w http.ResponseWriter, r *http.Request) error {
	proposalID := chi.URLParam(r, "proposalID")

	list, err := h.service.ListRepayments(r.Context(), proposalID)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, &successResponse{
		Success: true,
		Data:    list,
		Count:   &list.Count,
	})
	return nil
}

func (h *HTTP) getSummary(w http.ResponseWriter, r *http.Request) error {
	proposalID := chi.URLParam(r, "proposalID")

	summary, err := h.service.GetSummary(r.Context(), proposalID)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, &successResponse{
		Success: true,
		Data:    summary,
	})
	return nil
}

func (h *HTTP) readJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	return nil
}

func (h *HTTP) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
