package ledgerstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/shakti-network/shakti-ledger/pkg/loan"
	"github.com/shakti-network/shakti-ledger/pkg/vault"
)

func (s *pgStore) CreateProposal(ctx context.Context, p *loan.Proposal) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	dao := toProposalDao(p)
	if _, err := s.db.NewInsert().Model(dao).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create loan proposal: %w", err)
	}
	p.CreatedAt = dao.CreatedAt
	return nil
}

func (s *pgStore) GetProposal(ctx context.Context, id string) (*loan.Proposal, error) {
	dao := new(LoanProposalDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("lp.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get loan proposal: %w", err)
	}
	return toProposal(dao)
}

func (s *pgStore) GetProposalByLoanID(ctx context.Context, vaultID string, loanID int64) (*loan.Proposal, error) {
	dao := new(LoanProposalDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("lp.vault_id = ?", vaultID).
		Where("lp.loan_id = ?", loanID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProposalNotFound
		}
		return nil, fmt.Errorf("failed to get loan proposal by loan id: %w", err)
	}
	return toProposal(dao)
}

func (s *pgStore) GetProposalDetail(ctx context.Context, id string) (*loan.Proposal, *loan.VaultRef, error) {
	dao := new(LoanProposalDao)
	err := s.db.NewSelect().
		Model(dao).
		Relation("Vault").
		Relation("Votes").
		Relation("Repayments", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("lr.repaid_at DESC")
		}).
		Where("lp.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrProposalNotFound
		}
		return nil, nil, fmt.Errorf("failed to get loan proposal detail: %w", err)
	}

	proposal, err := toProposal(dao)
	if err != nil {
		return nil, nil, err
	}

	var ref *loan.VaultRef
	if dao.Vault != nil {
		ref = &loan.VaultRef{
			Name:            dao.Vault.Name,
			ContractAddress: dao.Vault.ContractAddress,
		}
	}
	return proposal, ref, nil
}

func (s *pgStore) GetVote(ctx context.Context, proposalID, voterAddress string) (*loan.Vote, error) {
	dao := new(LoanVoteDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("lv.proposal_id = ?", proposalID).
		Where("lv.voter_address = ?", vault.NormalizeAddress(voterAddress)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return toVote(dao), nil
}

func (s *pgStore) CreateVote(ctx context.Context, v *loan.Vote) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	dao := toVoteDao(v)
	if _, err := s.db.NewInsert().Model(dao).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create vote: %w", err)
	}
	v.CreatedAt = dao.CreatedAt
	return nil
}

func (s *pgStore) CreateRepayment(ctx context.Context, r *loan.Repayment) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	dao := toRepaymentDao(r)
	if _, err := s.db.NewInsert().Model(dao).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create repayment: %w", err)
	}
	r.RepaidAt = dao.RepaidAt
	return nil
}

func (s *pgStore) ListRepayments(ctx context.Context, proposalID string) ([]loan.Repayment, error) {
	var daos []LoanRepaymentDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("lr.proposal_id = ?", proposalID).
		OrderExpr("lr.repaid_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list repayments: %w", err)
	}

	repayments := make([]loan.Repayment, 0, len(daos))
	for i := range daos {
		r, err := toRepayment(&daos[i])
		if err != nil {
			return nil, err
		}
		repayments = append(repayments, *r)
	}
	return repayments, nil
}
