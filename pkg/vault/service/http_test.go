package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shakti-network/shakti-ledger/pkg/ledgerstore"
	"github.com/shakti-network/shakti-ledger/pkg/vault"
)

func newVaultTestServer(store *mockVaultStore) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewService(store, nil, zap.NewNop()), zap.NewNop())
	return r
}

func TestVaultHTTP_Create_ReturnsEnvelope(t *testing.T) {
	store := notFoundStore()
	store.createVaultFn = func(ctx context.Context, v *vault.Vault) error {
		v.ID = "vault-1"
		return nil
	}
	handler := newVaultTestServer(store)

	body, _ := json.Marshal(newCreateRequest())
	req := httptest.NewRequest(http.MethodPost, "/api/vaults", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var got struct {
		Success bool        `json:"success"`
		Message string      `json:"message"`
		Data    vault.Vault `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if !got.Success {
		t.Fatal("expected success=true")
	}
	if got.Message != "Vault metadata saved successfully" {
		t.Fatalf("message = %q", got.Message)
	}
	if got.Data.ID != "vault-1" {
		t.Fatalf("data.id = %q, want vault-1", got.Data.ID)
	}
}

func TestVaultHTTP_Create_InvalidJSON(t *testing.T) {
	handler := newVaultTestServer(&mockVaultStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/vaults", bytes.NewBufferString("{invalid"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestVaultHTTP_Create_RepeatedPostAnswersConflictWithExisting(t *testing.T) {
	existing := &vault.Vault{ID: "vault-1", Name: "Mahila Bachat Gat"}
	store := &mockVaultStore{
		getVaultFn: func(ctx context.Context, addr string) (*vault.Vault, error) {
			return existing, nil
		},
	}
	handler := newVaultTestServer(store)

	body, _ := json.Marshal(newCreateRequest())

	// The conflict answer must be stable across retries.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/vaults", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("attempt %d: expected status %d, got %d", i+1, http.StatusConflict, rec.Code)
		}

		var got struct {
			Success bool        `json:"success"`
			Error   string      `json:"error"`
			Data    vault.Vault `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to decode response JSON: %v", err)
		}
		if got.Success {
			t.Fatal("expected success=false")
		}
		if got.Data.ID != "vault-1" {
			t.Fatalf("expected existing vault in conflict data, got %+v", got.Data)
		}
	}
}

func TestVaultHTTP_List_IncludesCount(t *testing.T) {
	store := &mockVaultStore{
		listVaultsFn: func(ctx context.Context) ([]*vault.Vault, error) {
			return []*vault.Vault{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil
		},
	}
	handler := newVaultTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/vaults", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var got struct {
		Success bool          `json:"success"`
		Count   int           `json:"count"`
		Data    []vault.Vault `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.Count != 3 || len(got.Data) != 3 {
		t.Fatalf("count = %d, len(data) = %d, want 3", got.Count, len(got.Data))
	}
}

func TestVaultHTTP_Get_NotFound(t *testing.T) {
	store := &mockVaultStore{
		getVaultDetailFn: func(ctx context.Context, addr string) (*vault.Detail, error) {
			return nil, ledgerstore.ErrVaultNotFound
		},
	}
	handler := newVaultTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/vaults/"+vaultAddr, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}

	var got struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.Error != "Vault not found" {
		t.Fatalf("error = %q, want %q", got.Error, "Vault not found")
	}
}

func TestVaultHTTP_UserVaults_ReturnsRoleAndCount(t *testing.T) {
	store := &mockVaultStore{
		listVaultsForMemberFn: func(ctx context.Context, walletAddress string) ([]*vault.UserVault, error) {
			return []*vault.UserVault{
				{Vault: vault.Vault{ID: "vault-1"}, UserRole: vault.RoleCreator},
			}, nil
		},
	}
	handler := newVaultTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/vaults/user/"+aliceAddr, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	// The membership list is wrapped as data.vaults.
	var got struct {
		Count int `json:"count"`
		Data  struct {
			Vaults []struct {
				ID       string `json:"id"`
				UserRole string `json:"userRole"`
			} `json:"vaults"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.Count != 1 || len(got.Data.Vaults) != 1 {
		t.Fatalf("count = %d, len(vaults) = %d, want 1", got.Count, len(got.Data.Vaults))
	}
	if got.Data.Vaults[0].UserRole != "creator" {
		t.Fatalf("userRole = %q, want creator", got.Data.Vaults[0].UserRole)
	}
}

func TestVaultHTTP_UserVaults_NoMembershipsAnswersEmptyArray(t *testing.T) {
	store := &mockVaultStore{
		listVaultsForMemberFn: func(ctx context.Context, walletAddress string) ([]*vault.UserVault, error) {
			return nil, nil
		},
	}
	handler := newVaultTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/vaults/user/"+aliceAddr, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var got struct {
		Count int `json:"count"`
		Data  struct {
			Vaults json.RawMessage `json:"vaults"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.Count != 0 || string(got.Data.Vaults) != "[]" {
		t.Fatalf("expected empty vaults array, got %s", rec.Body.String())
	}
}
