package service

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/shakti-network/shakti-ledger/pkg/app/errors"
	apphttp "github.com/shakti-network/shakti-ledger/pkg/app/http"
	"github.com/shakti-network/shakti-ledger/pkg/vault"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the vault registry endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Route("/api/vaults", func(r chi.Router) {
		r.Post("/", apphttp.HandleError(h.createVault))
		r.Get("/", apphttp.HandleError(h.listVaults))
		r.Get("/user/{walletAddress}", apphttp.HandleError(h.listUserVaults))
		r.Get("/{address}", apphttp.HandleError(h.getVault))
	})
}

// successResponse is the envelope for successful reads and writes. Count is
// only present on list responses.
type successResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
}

func (h *HTTP) createVault(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	var req vault.CreateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}

	v, err := h.service.CreateVault(r.Context(), &req)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusCreated, &successResponse{
		Success: true,
		Data:    v,
		Message: "Vault metadata saved successfully",
	})
	return nil
}

func (h *HTTP) listVaults(w http.ResponseWriter, r *http.Request) error {
	vaults, err := h.service.ListVaults(r.Context())
	if err != nil {
		return err
	}

	count := len(vaults)
	h.writeJSON(w, http.StatusOK, &successResponse{
		Success: true,
		Data:    vaults,
		Count:   &count,
	})
	return nil
}

func (h *HTTP) getVault(w http.ResponseWriter, r *http.Request) error {
	address := chi.URLParam(r, "address")

	detail, err := h.service.GetVault(r.Context(), address)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, &successResponse{
		Success: true,
		Data:    detail,
	})
	return nil
}

// userVaultsData wraps the membership list so the payload reads as
// data.vaults, with count kept on the envelope.
type userVaultsData struct {
	Vaults []*vault.UserVault `json:"vaults"`
}

func (h *HTTP) listUserVaults(w http.ResponseWriter, r *http.Request) error {
	walletAddress := chi.URLParam(r, "walletAddress")

	vaults, err := h.service.ListVaultsForUser(r.Context(), walletAddress)
	if err != nil {
		return err
	}
	if vaults == nil {
		vaults = []*vault.UserVault{}
	}

	count := len(vaults)
	h.writeJSON(w, http.StatusOK, &successResponse{
		Success: true,
		Data:    &userVaultsData{Vaults: vaults},
		Count:   &count,
	})
	return nil
}

func (h *HTTP) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}
