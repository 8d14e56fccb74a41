package ledgerstore

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/shakti-network/shakti-ledger/pkg/loan"
	"github.com/shakti-network/shakti-ledger/pkg/vault"
)

// VaultDao is a data access object that maps directly to the 'vaults' table in PostgreSQL.
type VaultDao struct {
	bun.BaseModel   `bun:"table:vaults,alias:v"`
	ID              string    `bun:"id,pk,type:uuid"`
	ContractAddress string    `bun:"contract_address,unique,notnull,type:varchar(42)"`
	Name            string    `bun:"name,notnull"`
	CreatorAddress  string    `bun:"creator_address,notnull,type:varchar(42)"`
	Network         string    `bun:"network,notnull"`
	TxHash          *string   `bun:"tx_hash,type:varchar(66)"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	Members   []*VaultMemberDao  `bun:"rel:has-many,join:id=vault_id"`
	Proposals []*LoanProposalDao `bun:"rel:has-many,join:id=vault_id"`

	MemberCount   int `bun:"member_count,scanonly"`
	ProposalCount int `bun:"proposal_count,scanonly"`
}

// VaultMemberDao maps to the 'vault_members' table.
type VaultMemberDao struct {
	bun.BaseModel `bun:"table:vault_members,alias:vm"`
	ID            string    `bun:"id,pk,type:uuid"`
	VaultID       string    `bun:"vault_id,notnull,type:uuid"`
	WalletAddress string    `bun:"wallet_address,notnull,type:varchar(42)"`
	DisplayName   string    `bun:"display_name,notnull"`
	Role          string    `bun:"role,notnull,type:varchar(16)"`
	JoinedAt      time.Time `bun:"joined_at,nullzero,notnull,default:current_timestamp"`

	Vault *VaultDao `bun:"rel:belongs-to,join:vault_id=id"`
}

// LoanProposalDao maps to the 'loan_proposals' table. (vault_id, loan_id) is
// unique: one metadata row per on-chain loan.
type LoanProposalDao struct {
	bun.BaseModel   `bun:"table:loan_proposals,alias:lp"`
	ID              string    `bun:"id,pk,type:uuid"`
	VaultID         string    `bun:"vault_id,notnull,type:uuid,unique:vault_loan"`
	LoanID          int64     `bun:"loan_id,notnull,unique:vault_loan"`
	BorrowerAddress string    `bun:"borrower_address,notnull,type:varchar(42)"`
	Amount          string    `bun:"amount,notnull,type:numeric(78,0)"`
	Purpose         *string   `bun:"purpose"`
	Status          string    `bun:"status,notnull,type:varchar(16)"`
	TxHash          *string   `bun:"tx_hash,type:varchar(66)"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	Vault      *VaultDao           `bun:"rel:belongs-to,join:vault_id=id"`
	Votes      []*LoanVoteDao      `bun:"rel:has-many,join:id=proposal_id"`
	Repayments []*LoanRepaymentDao `bun:"rel:has-many,join:id=proposal_id"`
}

// LoanVoteDao maps to the 'loan_votes' table. The compound unique group is
// the storage-level backstop for the one-vote-per-voter invariant.
type LoanVoteDao struct {
	bun.BaseModel `bun:"table:loan_votes,alias:lv"`
	ID            string    `bun:"id,pk,type:uuid"`
	ProposalID    string    `bun:"proposal_id,notnull,type:uuid,unique:proposal_voter"`
	VoterAddress  string    `bun:"voter_address,notnull,type:varchar(42),unique:proposal_voter"`
	VoteType      string    `bun:"vote_type,notnull,type:varchar(16)"`
	TxHash        *string   `bun:"tx_hash,type:varchar(66)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// LoanRepaymentDao maps to the 'loan_repayments' table. Append-only.
type LoanRepaymentDao struct {
	bun.BaseModel `bun:"table:loan_repayments,alias:lr"`
	ID            string    `bun:"id,pk,type:uuid"`
	ProposalID    string    `bun:"proposal_id,notnull,type:uuid"`
	Amount        string    `bun:"amount,notnull,type:numeric(78,0)"`
	TxHash        string    `bun:"tx_hash,notnull,type:varchar(66)"`
	RepaidAt      time.Time `bun:"repaid_at,nullzero,notnull,default:current_timestamp"`
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func toVaultDao(v *vault.Vault) *VaultDao {
	return &VaultDao{
		ID:              v.ID,
		ContractAddress: v.ContractAddress,
		Name:            v.Name,
		CreatorAddress:  v.CreatorAddress,
		Network:         v.Network,
		TxHash:          strPtr(v.TxHash),
	}
}

func toMemberDao(vaultID string, m *vault.Member) *VaultMemberDao {
	return &VaultMemberDao{
		ID:            m.ID,
		VaultID:       vaultID,
		WalletAddress: m.WalletAddress,
		DisplayName:   m.DisplayName,
		Role:          string(m.Role),
	}
}

func toVault(dao *VaultDao) *vault.Vault {
	v := &vault.Vault{
		ID:              dao.ID,
		ContractAddress: dao.ContractAddress,
		Name:            dao.Name,
		CreatorAddress:  dao.CreatorAddress,
		Network:         dao.Network,
		TxHash:          strVal(dao.TxHash),
		CreatedAt:       dao.CreatedAt,
		Members:         make([]vault.Member, 0, len(dao.Members)),
		MemberCount:     dao.MemberCount,
		ProposalCount:   dao.ProposalCount,
	}
	for _, m := range dao.Members {
		v.Members = append(v.Members, *toMember(m))
	}
	if v.MemberCount == 0 {
		v.MemberCount = len(v.Members)
	}
	return v
}

func toMember(dao *VaultMemberDao) *vault.Member {
	return &vault.Member{
		ID:            dao.ID,
		VaultID:       dao.VaultID,
		WalletAddress: dao.WalletAddress,
		DisplayName:   dao.DisplayName,
		Role:          vault.Role(dao.Role),
		JoinedAt:      dao.JoinedAt,
	}
}

func toProposalDao(p *loan.Proposal) *LoanProposalDao {
	return &LoanProposalDao{
		ID:              p.ID,
		VaultID:         p.VaultID,
		LoanID:          p.LoanID,
		BorrowerAddress: p.BorrowerAddress,
		Amount:          p.Amount.String(),
		Purpose:         strPtr(p.Purpose),
		Status:          string(p.Status),
		TxHash:          strPtr(p.TxHash),
	}
}

func toProposal(dao *LoanProposalDao) (*loan.Proposal, error) {
	amount, err := loan.ParseAmount(dao.Amount)
	if err != nil {
		return nil, fmt.Errorf("proposal %s has malformed amount: %w", dao.ID, err)
	}
	p := &loan.Proposal{
		ID:              dao.ID,
		VaultID:         dao.VaultID,
		LoanID:          dao.LoanID,
		BorrowerAddress: dao.BorrowerAddress,
		Amount:          amount,
		Purpose:         strVal(dao.Purpose),
		Status:          loan.Status(dao.Status),
		TxHash:          strVal(dao.TxHash),
		CreatedAt:       dao.CreatedAt,
	}
	for _, v := range dao.Votes {
		p.Votes = append(p.Votes, *toVote(v))
	}
	for _, r := range dao.Repayments {
		rep, err := toRepayment(r)
		if err != nil {
			return nil, err
		}
		p.Repayments = append(p.Repayments, *rep)
	}
	return p, nil
}

func toVoteDao(v *loan.Vote) *LoanVoteDao {
	return &LoanVoteDao{
		ID:           v.ID,
		ProposalID:   v.ProposalID,
		VoterAddress: v.VoterAddress,
		VoteType:     v.VoteType,
		TxHash:       strPtr(v.TxHash),
	}
}

func toVote(dao *LoanVoteDao) *loan.Vote {
	return &loan.Vote{
		ID:           dao.ID,
		ProposalID:   dao.ProposalID,
		VoterAddress: dao.VoterAddress,
		VoteType:     dao.VoteType,
		TxHash:       strVal(dao.TxHash),
		CreatedAt:    dao.CreatedAt,
	}
}

func toRepaymentDao(r *loan.Repayment) *LoanRepaymentDao {
	return &LoanRepaymentDao{
		ID:         r.ID,
		ProposalID: r.ProposalID,
		Amount:     r.Amount.String(),
		TxHash:     r.TxHash,
	}
}

func toRepayment(dao *LoanRepaymentDao) (*loan.Repayment, error) {
	amount, err := loan.ParseAmount(dao.Amount)
	if err != nil {
		return nil, fmt.Errorf("repayment %s has malformed amount: %w", dao.ID, err)
	}
	return &loan.Repayment{
		ID:         dao.ID,
		ProposalID: dao.ProposalID,
		Amount:     amount,
		TxHash:     dao.TxHash,
		RepaidAt:   dao.RepaidAt,
	}, nil
}
