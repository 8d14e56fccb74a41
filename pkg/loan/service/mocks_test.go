package service

import (
	"context"

	"github.com/shakti-network/shakti-ledger/pkg/ledgerstore"
	"github.com/shakti-network/shakti-ledger/pkg/loan"
	"github.com/shakti-network/shakti-ledger/pkg/vault"
)

// mockLoanStore implements ledgerstore.LoanStore with pluggable functions.
// Unset functions answer not-found so tests only wire what they exercise.
type mockLoanStore struct {
	createProposalFn      func(ctx context.Context, p *loan.Proposal) error
	getProposalFn         func(ctx context.Context, id string) (*loan.Proposal, error)
	getProposalByLoanIDFn func(ctx context.Context, vaultID string, loanID int64) (*loan.Proposal, error)
	getProposalDetailFn   func(ctx context.Context, id string) (*loan.Proposal, *loan.VaultRef, error)
	getVoteFn             func(ctx context.Context, proposalID, voterAddress string) (*loan.Vote, error)
	createVoteFn          func(ctx context.Context, v *loan.Vote) error
	createRepaymentFn     func(ctx context.Context, r *loan.Repayment) error
	listRepaymentsFn      func(ctx context.Context, proposalID string) ([]loan.Repayment, error)
}

func (m *mockLoanStore) CreateProposal(ctx context.Context, p *loan.Proposal) error {
	return m.createProposalFn(ctx, p)
}

func (m *mockLoanStore) GetProposal(ctx context.Context, id string) (*loan.Proposal, error) {
	if m.getProposalFn == nil {
		return nil, ledgerstore.ErrProposalNotFound
	}
	return m.getProposalFn(ctx, id)
}

func (m *mockLoanStore) GetProposalByLoanID(ctx context.Context, vaultID string, loanID int64) (*loan.Proposal, error) {
	if m.getProposalByLoanIDFn == nil {
		return nil, ledgerstore.ErrProposalNotFound
	}
	return m.getProposalByLoanIDFn(ctx, vaultID, loanID)
}

func (m *mockLoanStore) GetProposalDetail(ctx context.Context, id string) (*loan.Proposal, *loan.VaultRef, error) {
	return m.getProposalDetailFn(ctx, id)
}

func (m *mockLoanStore) GetVote(ctx context.Context, proposalID, voterAddress string) (*loan.Vote, error) {
	if m.getVoteFn == nil {
		return nil, ledgerstore.ErrVoteNotFound
	}
	return m.getVoteFn(ctx, proposalID, voterAddress)
}

func (m *mockLoanStore) CreateVote(ctx context.Context, v *loan.Vote) error {
	return m.createVoteFn(ctx, v)
}

func (m *mockLoanStore) CreateRepayment(ctx context.Context, r *loan.Repayment) error {
	return m.createRepaymentFn(ctx, r)
}

func (m *mockLoanStore) ListRepayments(ctx context.Context, proposalID string) ([]loan.Repayment, error) {
	if m.listRepaymentsFn == nil {
		return nil, nil
	}
	return m.listRepaymentsFn(ctx, proposalID)
}

// mockVaultStore implements the vault lookups the loan service needs.
type mockVaultStore struct {
	getVaultFn func(ctx context.Context, contractAddress string) (*vault.Vault, error)
}

func (m *mockVaultStore) CreateVault(ctx context.Context, v *vault.Vault) error { return nil }

func (m *mockVaultStore) GetVault(ctx context.Context, contractAddress string) (*vault.Vault, error) {
	return m.getVaultFn(ctx, contractAddress)
}

func (m *mockVaultStore) GetVaultDetail(ctx context.Context, contractAddress string) (*vault.Detail, error) {
	return nil, ledgerstore.ErrVaultNotFound
}

func (m *mockVaultStore) ListVaults(ctx context.Context) ([]*vault.Vault, error) { return nil, nil }

func (m *mockVaultStore) ListVaultsForMember(ctx context.Context, walletAddress string) ([]*vault.UserVault, error) {
	return nil, nil
}

type mockChainReader struct {
	details *loan.OnChainLoan
	err     error
	calls   int
}

func (m *mockChainReader) LoanDetails(ctx context.Context, vaultAddress string, loanID int64) (*loan.OnChainLoan, error) {
	m.calls++
	return m.details, m.err
}
