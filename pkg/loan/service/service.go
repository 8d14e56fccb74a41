// Package service implements the loan ledger business logic and HTTP
// endpoints: the vote ledger, the repayment ledger, proposal registration
// and the aggregated summary view.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/shakti-network/shakti-ledger/internal/metrics"
	apperrors "github.com/shakti-network/shakti-ledger/pkg/app/errors"
	"github.com/shakti-network/shakti-ledger/pkg/config"
	"github.com/shakti-network/shakti-ledger/pkg/ledgerstore"
	"github.com/shakti-network/shakti-ledger/pkg/loan"
	"github.com/shakti-network/shakti-ledger/pkg/vault"
)

var (
	ErrProposalNotFound = errors.New("loan proposal not found")
	ErrAlreadyVoted     = errors.New("member has already voted on this proposal")
	ErrLoanRegistered   = errors.New("loan already registered for this vault")
)

// VoteStatus is the result of a has-voted lookup. A missing vote is a
// normal answer, not an error. The HTTP layer flattens this into the
// response envelope, so no wire tags here.
type VoteStatus struct {
	HasVoted bool
	Vote     *loan.Vote
}

// ChainReader reads live loan state from a vault contract. Attached to
// summaries on a best-effort basis.
type ChainReader interface {
	LoanDetails(ctx context.Context, vaultAddress string, loanID int64) (*loan.OnChainLoan, error)
}

// Service defines the interface for the loan ledger business logic
type Service interface {
	RegisterProposal(ctx context.Context, vaultAddress string, req *loan.RegisterProposalRequest) (*loan.Proposal, error)
	GetVoteStatus(ctx context.Context, proposalID, voterAddress string) (*VoteStatus, error)
	RecordVote(ctx context.Context, proposalID string, req *loan.RecordVoteRequest) (*loan.Vote, error)
	RecordRepayment(ctx context.Context, proposalID string, req *loan.RecordRepaymentRequest) (*loan.Repayment, error)
	ListRepayments(ctx context.Context, proposalID string) (*loan.RepaymentList, error)
	GetSummary(ctx context.Context, proposalID string) (*loan.Summary, error)
}

type loanService struct {
	loans    ledgerstore.LoanStore
	vaults   ledgerstore.VaultStore
	chain    ChainReader
	token    config.TokenConfig
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates a new loan ledger service. chain may be nil when no
// chain client is configured.
func NewService(
	loans ledgerstore.LoanStore,
	vaults ledgerstore.VaultStore,
	chain ChainReader,
	token config.TokenConfig,
	logger *zap.Logger,
) Service {
	return &loanService{
		loans:    loans,
		vaults:   vaults,
		chain:    chain,
		token:    token,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterProposal stores metadata for a loan the borrower just requested
// on-chain. One row per (vault, loanId); a duplicate answers with a conflict
// carrying the existing record.
func (s *loanService) RegisterProposal(
	ctx context.Context,
	vaultAddress string,
	req *loan.RegisterProposalRequest,
) (*loan.Proposal, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.BadRequestError(err, "borrowerAddress and amount are required")
	}
	amount, err := loan.ParseAmount(req.Amount)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "amount must be a non-negative integer string")
	}

	v, err := s.vaults.GetVault(ctx, vaultAddress)
	if err != nil {
		if errors.Is(err, ledgerstore.ErrVaultNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "Vault not found")
		}
		return nil, s.storeError(err, "failed to look up vault")
	}

	existing, err := s.loans.GetProposalByLoanID(ctx, v.ID, req.LoanID)
	if err != nil && !errors.Is(err, ledgerstore.ErrProposalNotFound) {
		return nil, s.storeError(err, "failed to check proposal existence")
	}
	if existing != nil {
		metrics.MirrorConflicts.WithLabelValues("proposal").Inc()
		return nil, apperrors.ConflictWithDataError(ErrLoanRegistered,
			"Loan already registered for this vault", existing)
	}

	p := &loan.Proposal{
		VaultID:         v.ID,
		LoanID:          req.LoanID,
		BorrowerAddress: vault.NormalizeAddress(req.BorrowerAddress),
		Amount:          amount,
		Purpose:         req.Purpose,
		Status:          loan.StatusPending,
		TxHash:          req.TxHash,
	}
	if err := s.loans.CreateProposal(ctx, p); err != nil {
		if ledgerstore.IsUniqueViolation(err) {
			metrics.MirrorConflicts.WithLabelValues("proposal").Inc()
			if existing, getErr := s.loans.GetProposalByLoanID(ctx, v.ID, req.LoanID); getErr == nil {
				return nil, apperrors.ConflictWithDataError(ErrLoanRegistered,
					"Loan already registered for this vault", existing)
			}
			return nil, apperrors.ConflictError(ErrLoanRegistered, "Loan already registered for this vault")
		}
		return nil, s.storeError(err, "failed to save loan proposal")
	}

	metrics.ProposalsRegistered.Inc()
	s.logger.Info("loan proposal registered",
		zap.String("proposal_id", p.ID),
		zap.String("vault", vaultAddress),
		zap.Int64("loan_id", p.LoanID),
		zap.String("amount", p.Amount.String()))
	return p, nil
}

// GetVoteStatus reports whether the voter has already voted on the proposal.
func (s *loanService) GetVoteStatus(ctx context.Context, proposalID, voterAddress string) (*VoteStatus, error) {
	v, err := s.loans.GetVote(ctx, proposalID, voterAddress)
	if err != nil {
		if errors.Is(err, ledgerstore.ErrVoteNotFound) {
			return &VoteStatus{HasVoted: false}, nil
		}
		return nil, s.storeError(err, "failed to check vote status")
	}
	return &VoteStatus{HasVoted: true, Vote: v}, nil
}

// RecordVote mirrors an on-chain approval vote. Votes are irrevocable: a
// second vote by the same member answers with a conflict carrying the first.
func (s *loanService) RecordVote(ctx context.Context, proposalID string, req *loan.RecordVoteRequest) (*loan.Vote, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.BadRequestError(err, "voterAddress and voteType (approve|reject) are required")
	}

	if _, err := s.loans.GetProposal(ctx, proposalID); err != nil {
		if errors.Is(err, ledgerstore.ErrProposalNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "Loan proposal not found")
		}
		return nil, s.storeError(err, "failed to look up proposal")
	}

	voterAddress := vault.NormalizeAddress(req.VoterAddress)
	existing, err := s.loans.GetVote(ctx, proposalID, voterAddress)
	if err != nil && !errors.Is(err, ledgerstore.ErrVoteNotFound) {
		return nil, s.storeError(err, "failed to check existing vote")
	}
	if existing != nil {
		metrics.MirrorConflicts.WithLabelValues("vote").Inc()
		return nil, apperrors.ConflictWithDataError(ErrAlreadyVoted,
			"Member has already voted on this proposal", existing)
	}

	v := &loan.Vote{
		ProposalID:   proposalID,
		VoterAddress: voterAddress,
		VoteType:     req.VoteType,
		TxHash:       req.TxHash,
	}
	if err := s.loans.CreateVote(ctx, v); err != nil {
		if ledgerstore.IsUniqueViolation(err) {
			metrics.MirrorConflicts.WithLabelValues("vote").Inc()
			if existing, getErr := s.loans.GetVote(ctx, proposalID, voterAddress); getErr == nil {
				return nil, apperrors.ConflictWithDataError(ErrAlreadyVoted,
					"Member has already voted on this proposal", existing)
			}
			return nil, apperrors.ConflictError(ErrAlreadyVoted, "Member has already voted on this proposal")
		}
		return nil, s.storeError(err, "failed to save vote")
	}

	metrics.VotesRecorded.WithLabelValues(v.VoteType).Inc()
	s.logger.Info("vote recorded",
		zap.String("proposal_id", proposalID),
		zap.String("voter", voterAddress),
		zap.String("vote_type", v.VoteType))
	return v, nil
}

// RecordRepayment appends one mirrored repayment transaction to the ledger.
func (s *loanService) RecordRepayment(
	ctx context.Context,
	proposalID string,
	req *loan.RecordRepaymentRequest,
) (*loan.Repayment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.BadRequestError(err, "amount and txHash are required")
	}
	amount, err := loan.ParseAmount(req.Amount)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "amount must be a non-negative integer string")
	}

	if _, err := s.loans.GetProposal(ctx, proposalID); err != nil {
		if errors.Is(err, ledgerstore.ErrProposalNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "Loan proposal not found")
		}
		return nil, s.storeError(err, "failed to look up proposal")
	}

	r := &loan.Repayment{
		ProposalID: proposalID,
		Amount:     amount,
		TxHash:     req.TxHash,
	}
	if err := s.loans.CreateRepayment(ctx, r); err != nil {
		return nil, s.storeError(err, "failed to save repayment")
	}

	metrics.RepaymentsRecorded.Inc()
	s.logger.Info("repayment recorded",
		zap.String("proposal_id", proposalID),
		zap.String("amount", r.Amount.String()),
		zap.String("tx_hash", r.TxHash))
	return r, nil
}

// ListRepayments returns the repayment ledger with the exact total, newest
// first. An unknown proposal yields an empty ledger, not an error.
func (s *loanService) ListRepayments(ctx context.Context, proposalID string) (*loan.RepaymentList, error) {
	repayments, err := s.loans.ListRepayments(ctx, proposalID)
	if err != nil {
		return nil, s.storeError(err, "failed to list repayments")
	}
	if repayments == nil {
		repayments = []loan.Repayment{}
	}

	return &loan.RepaymentList{
		Repayments:  repayments,
		TotalRepaid: loan.SumRepayments(repayments),
		Count:       len(repayments),
	}, nil
}

// GetSummary consolidates the proposal, its votes, its repayment ledger and
// the derived repayment status into one view. When a chain client is
// configured the live contract state is attached best-effort.
func (s *loanService) GetSummary(ctx context.Context, proposalID string) (*loan.Summary, error) {
	p, vaultRef, err := s.loans.GetProposalDetail(ctx, proposalID)
	if err != nil {
		if errors.Is(err, ledgerstore.ErrProposalNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "Loan proposal not found")
		}
		return nil, s.storeError(err, "failed to get loan summary")
	}

	totalRepaid := loan.SumRepayments(p.Repayments)
	remaining := new(loan.Amount)
	remaining.Sub(&p.Amount.Int, &totalRepaid.Int)

	// Empty ledgers serialize as [] rather than null.
	if p.Repayments == nil {
		p.Repayments = []loan.Repayment{}
	}
	if p.Votes == nil {
		p.Votes = []loan.Vote{}
	}

	summary := &loan.Summary{
		ID:              p.ID,
		LoanID:          p.LoanID,
		BorrowerAddress: p.BorrowerAddress,
		Amount:          p.Amount,
		AmountFormatted: loan.FormatAmount(p.Amount, s.token.Decimals),
		Purpose:         p.Purpose,
		Status:          p.Status,
		CreatedAt:       p.CreatedAt,
		RepaymentStatus: loan.RepaymentStatus{
			TotalRepaid:     totalRepaid,
			RemainingAmount: remaining,
			IsFullyRepaid:   totalRepaid.Cmp(&p.Amount.Int) >= 0,
			RepaymentsCount: len(p.Repayments),
		},
		Repayments: p.Repayments,
		Votes:      p.Votes,
	}
	if vaultRef != nil {
		summary.Vault = *vaultRef
	}

	if s.chain != nil && vaultRef != nil {
		onChain, err := s.chain.LoanDetails(ctx, vaultRef.ContractAddress, p.LoanID)
		if err != nil {
			metrics.ChainReadErrors.WithLabelValues("getLoanDetails").Inc()
			s.logger.Warn("could not read loan from chain",
				zap.String("proposal_id", proposalID),
				zap.Error(err))
		} else {
			summary.OnChain = onChain
		}
	}

	return summary, nil
}

func (s *loanService) storeError(err error, message string) error {
	if ledgerstore.IsUnavailable(err) {
		return apperrors.UnavailableError(err, "storage temporarily unavailable")
	}
	return apperrors.GeneralError(fmt.Errorf("%s: %w", message, err))
}
