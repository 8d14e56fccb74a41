// Package vault holds the domain types for SHG vault metadata. A vault row
// mirrors a deployed on-chain vault contract; the chain remains the
// authoritative source for membership and funds, this package only carries
// the display metadata the contract cannot store.
package vault

import (
	"strings"
	"time"

	"github.com/shakti-network/shakti-ledger/pkg/loan"
)

// Role describes a member's relationship to the vault, snapshotted at the
// time the metadata row is created. It is not re-derived from chain state.
type Role string

const (
	RoleCreator Role = "creator"
	RoleMember  Role = "member"
)

// Member is a vault member's display metadata.
type Member struct {
	ID            string    `json:"id"`
	VaultID       string    `json:"vaultId"`
	WalletAddress string    `json:"walletAddress"`
	DisplayName   string    `json:"displayName"`
	Role          Role      `json:"role"`
	JoinedAt      time.Time `json:"joinedAt"`
}

// Vault is the metadata record for one deployed vault contract.
type Vault struct {
	ID              string    `json:"id"`
	ContractAddress string    `json:"contractAddress"`
	Name            string    `json:"name"`
	CreatorAddress  string    `json:"creatorAddress"`
	Network         string    `json:"network"`
	TxHash          string    `json:"txHash,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	Members         []Member  `json:"members"`
	MemberCount     int       `json:"memberCount"`
	ProposalCount   int       `json:"proposalCount"`
}

// Detail is a vault joined with its loan proposals (votes included),
// as returned by the single-vault read.
type Detail struct {
	Vault
	LoanProposals []loan.Proposal `json:"loanProposals"`
}

// UserVault is a vault seen from one member's perspective.
type UserVault struct {
	Vault
	UserRole Role      `json:"userRole"`
	JoinedAt time.Time `json:"joinedAt"`
}

// MemberInput is one member entry in a create request.
type MemberInput struct {
	Address string `json:"address" validate:"required,eth_addr"`
	Name    string `json:"name" validate:"required"`
}

// CreateRequest carries the metadata the frontend pushes after the vault
// deployment transaction confirms.
//
// Members may be empty: the 3-member minimum is enforced by the factory
// contract, and the ledger must not reject metadata for a vault the chain
// already accepted.
type CreateRequest struct {
	ContractAddress string        `json:"contractAddress" validate:"required,eth_addr"`
	Name            string        `json:"name" validate:"required"`
	CreatorAddress  string        `json:"creatorAddress" validate:"required,eth_addr"`
	Network         string        `json:"network"`
	TxHash          string        `json:"txHash"`
	Members         []MemberInput `json:"members" validate:"dive"`
}

// NormalizeAddress lowercases a hex address so lookups are case-insensitive.
func NormalizeAddress(addr string) string {
	return strings.ToLower(addr)
}

// DeriveRole computes the point-in-time role for a member address.
func DeriveRole(memberAddr, creatorAddr string) Role {
	if NormalizeAddress(memberAddr) == NormalizeAddress(creatorAddr) {
		return RoleCreator
	}
	return RoleMember
}
