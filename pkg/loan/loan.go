// Package loan holds the domain types for loan proposal bookkeeping: the
// vote and repayment ledgers mirrored off-chain, and the aggregated summary
// view. Lifecycle state (approval, disbursement) is decided on-chain; the
// ledger only records what callers report after transactions confirm.
package loan

import (
	"time"
)

// Status is the proposal lifecycle snapshot stored at registration time.
// The ledger never advances it; callers infer live state from the contract.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusDisbursed Status = "disbursed"
	StatusRepaid    Status = "repaid"
)

// Proposal is the off-chain record of an on-chain loan request.
type Proposal struct {
	ID              string       `json:"id"`
	VaultID         string       `json:"vaultId"`
	LoanID          int64        `json:"loanId,string"`
	BorrowerAddress string       `json:"borrowerAddress"`
	Amount          *Amount      `json:"amount"`
	Purpose         string       `json:"purpose,omitempty"`
	Status          Status       `json:"status"`
	TxHash          string       `json:"txHash,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	Votes           []Vote       `json:"votes,omitempty"`
	Repayments      []Repayment  `json:"repayments,omitempty"`
}

// Vote mirrors one member's on-chain approval. At most one vote may exist
// per (proposal, voter) pair; a vote is irrevocable.
type Vote struct {
	ID           string    `json:"id"`
	ProposalID   string    `json:"proposalId"`
	VoterAddress string    `json:"voterAddress"`
	VoteType     string    `json:"voteType"`
	TxHash       string    `json:"txHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Repayment mirrors one on-chain repayment transaction. Append-only.
type Repayment struct {
	ID         string    `json:"id"`
	ProposalID string    `json:"proposalId"`
	Amount     *Amount   `json:"amount"`
	TxHash     string    `json:"txHash"`
	RepaidAt   time.Time `json:"repaidAt"`
}

// RepaymentList is the repayment ledger read for one proposal.
type RepaymentList struct {
	Repayments  []Repayment `json:"repayments"`
	TotalRepaid *Amount     `json:"totalRepaid"`
	Count       int         `json:"count"`
}

// RepaymentStatus is the aggregate computed by the summary view.
// RemainingAmount is surfaced negative when repayments exceed the loan
// amount, exposing the anomaly instead of hiding it.
type RepaymentStatus struct {
	TotalRepaid     *Amount `json:"totalRepaid"`
	RemainingAmount *Amount `json:"remainingAmount"`
	IsFullyRepaid   bool    `json:"isFullyRepaid"`
	RepaymentsCount int     `json:"repaymentsCount"`
}

// VaultRef names the owning vault inside a loan summary.
type VaultRef struct {
	Name            string `json:"name"`
	ContractAddress string `json:"contractAddress"`
}

// OnChainLoan is the optional live contract snapshot attached to a summary
// when the chain client is configured.
type OnChainLoan struct {
	Borrower  string  `json:"borrower"`
	Amount    *Amount `json:"amount"`
	Repaid    *Amount `json:"repaid"`
	Approvals uint64  `json:"approvals"`
	Disbursed bool    `json:"disbursed"`
	Exists    bool    `json:"exists"`
}

// Summary is the consolidated loan + votes + repayments view.
type Summary struct {
	ID              string          `json:"id"`
	LoanID          int64           `json:"loanId,string"`
	BorrowerAddress string          `json:"borrowerAddress"`
	Amount          *Amount         `json:"amount"`
	AmountFormatted string          `json:"amountFormatted,omitempty"`
	Purpose         string          `json:"purpose,omitempty"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	Vault           VaultRef        `json:"vault"`
	RepaymentStatus RepaymentStatus `json:"repaymentStatus"`
	Repayments      []Repayment     `json:"repayments"`
	Votes           []Vote          `json:"votes"`
	OnChain         *OnChainLoan    `json:"onChain,omitempty"`
}

// RecordVoteRequest is the mirror write sent after an on-chain approval
// transaction confirms.
type RecordVoteRequest struct {
	VoterAddress string `json:"voterAddress" validate:"required,eth_addr"`
	VoteType     string `json:"voteType" validate:"required,oneof=approve reject"`
	TxHash       string `json:"txHash"`
}

// RecordRepaymentRequest is the mirror write sent after an on-chain repay
// transaction confirms. Amount is a decimal string in smallest units.
type RecordRepaymentRequest struct {
	Amount string `json:"amount" validate:"required"`
	TxHash string `json:"txHash" validate:"required"`
}

// RegisterProposalRequest registers loan proposal metadata after the
// on-chain requestLoan transaction confirms.
type RegisterProposalRequest struct {
	LoanID          int64  `json:"loanId"`
	BorrowerAddress string `json:"borrowerAddress" validate:"required,eth_addr"`
	Amount          string `json:"amount" validate:"required"`
	Purpose         string `json:"purpose"`
	TxHash          string `json:"txHash"`
}
