package service

import (
	"context"

	"github.com/shakti-network/shakti-ledger/pkg/vault"
)

// mockVaultStore implements ledgerstore.VaultStore with pluggable functions.
type mockVaultStore struct {
	createVaultFn        func(ctx context.Context, v *vault.Vault) error
	getVaultFn           func(ctx context.Context, contractAddress string) (*vault.Vault, error)
	getVaultDetailFn     func(ctx context.Context, contractAddress string) (*vault.Detail, error)
	listVaultsFn         func(ctx context.Context) ([]*vault.Vault, error)
	listVaultsForMemberFn func(ctx context.Context, walletAddress string) ([]*vault.UserVault, error)
}

func (m *mockVaultStore) CreateVault(ctx context.Context, v *vault.Vault) error {
	return m.createVaultFn(ctx, v)
}

func (m *mockVaultStore) GetVault(ctx context.Context, contractAddress string) (*vault.Vault, error) {
	return m.getVaultFn(ctx, contractAddress)
}

func (m *mockVaultStore) GetVaultDetail(ctx context.Context, contractAddress string) (*vault.Detail, error) {
	return m.getVaultDetailFn(ctx, contractAddress)
}

func (m *mockVaultStore) ListVaults(ctx context.Context) ([]*vault.Vault, error) {
	return m.listVaultsFn(ctx)
}

func (m *mockVaultStore) ListVaultsForMember(ctx context.Context, walletAddress string) ([]*vault.UserVault, error) {
	return m.listVaultsForMemberFn(ctx, walletAddress)
}

type mockVerifier struct {
	deployed bool
	err      error
	calls    int
}

func (m *mockVerifier) VaultDeployed(ctx context.Context, vaultAddress string) (bool, error) {
	m.calls++
	return m.deployed, m.err
}
