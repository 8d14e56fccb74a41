// Package ledgerstore persists the off-chain vault/loan bookkeeping in
// PostgreSQL via bun. The application performs friendly lookup-then-insert
// checks, but the unique constraints declared here are the real correctness
// backstop under concurrent duplicate requests.
package ledgerstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/shakti-network/shakti-ledger/pkg/loan"
	"github.com/shakti-network/shakti-ledger/pkg/vault"
)

var (
	// ErrVaultNotFound is returned when a vault lookup finds no matching record.
	ErrVaultNotFound = errors.New("vault not found")
	// ErrProposalNotFound is returned when a loan proposal lookup finds no matching record.
	ErrProposalNotFound = errors.New("loan proposal not found")
	// ErrVoteNotFound is returned when a vote lookup finds no matching record.
	ErrVoteNotFound = errors.New("vote not found")
)

// VaultStore defines the persistence interface for the vault registry.
type VaultStore interface {
	// CreateVault inserts the vault and all member rows atomically.
	CreateVault(ctx context.Context, v *vault.Vault) error
	// GetVault returns the vault with its members.
	GetVault(ctx context.Context, contractAddress string) (*vault.Vault, error)
	// GetVaultDetail returns the vault with members and loan proposals
	// (votes included), proposals newest-first.
	GetVaultDetail(ctx context.Context, contractAddress string) (*vault.Detail, error)
	// ListVaults returns all vaults with members and counts, newest-first.
	ListVaults(ctx context.Context) ([]*vault.Vault, error)
	// ListVaultsForMember returns the vaults the wallet belongs to,
	// ordered by join time descending.
	ListVaultsForMember(ctx context.Context, walletAddress string) ([]*vault.UserVault, error)
}

// LoanStore defines the persistence interface for the vote and repayment ledgers.
type LoanStore interface {
	CreateProposal(ctx context.Context, p *loan.Proposal) error
	GetProposal(ctx context.Context, id string) (*loan.Proposal, error)
	GetProposalByLoanID(ctx context.Context, vaultID string, loanID int64) (*loan.Proposal, error)
	// GetProposalDetail returns the proposal with votes and repayments
	// (newest-first) plus a reference to the owning vault.
	GetProposalDetail(ctx context.Context, id string) (*loan.Proposal, *loan.VaultRef, error)

	GetVote(ctx context.Context, proposalID, voterAddress string) (*loan.Vote, error)
	CreateVote(ctx context.Context, v *loan.Vote) error

	CreateRepayment(ctx context.Context, r *loan.Repayment) error
	ListRepayments(ctx context.Context, proposalID string) ([]loan.Repayment, error)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505). Services treat it as the conflict signal when
// a concurrent duplicate slips past the application-level check.
func IsUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}

// IsUnavailable reports whether err indicates the database is unreachable,
// so handlers can answer 503 instead of a generic server error.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone)
}
