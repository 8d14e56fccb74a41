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

type pgStore struct {
	db *bun.DB
}

// NewStore creates the postgres implementation of the vault and loan stores.
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateVault(ctx context.Context, v *vault.Vault) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	dao := toVaultDao(v)

	memberDaos := make([]*VaultMemberDao, 0, len(v.Members))
	for i := range v.Members {
		if v.Members[i].ID == "" {
			v.Members[i].ID = uuid.NewString()
		}
		v.Members[i].VaultID = v.ID
		memberDaos = append(memberDaos, toMemberDao(v.ID, &v.Members[i]))
	}

	// Vault and member rows must land together: a vault with a partial
	// membership list is worse than no metadata at all.
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(dao).Exec(ctx); err != nil {
			return err
		}
		if len(memberDaos) > 0 {
			if _, err := tx.NewInsert().Model(&memberDaos).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create vault: %w", err)
	}

	v.CreatedAt = dao.CreatedAt
	for i, m := range memberDaos {
		v.Members[i].JoinedAt = m.JoinedAt
	}
	v.MemberCount = len(v.Members)
	return nil
}

func (s *pgStore) GetVault(ctx context.Context, contractAddress string) (*vault.Vault, error) {
	dao := new(VaultDao)
	err := s.db.NewSelect().
		Model(dao).
		Relation("Members").
		Where("v.contract_address = ?", vault.NormalizeAddress(contractAddress)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVaultNotFound
		}
		return nil, fmt.Errorf("failed to get vault: %w", err)
	}
	return toVault(dao), nil
}

func (s *pgStore) GetVaultDetail(ctx context.Context, contractAddress string) (*vault.Detail, error) {
	dao := new(VaultDao)
	err := s.db.NewSelect().
		Model(dao).
		Relation("Members").
		Relation("Proposals", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("lp.created_at DESC")
		}).
		Relation("Proposals.Votes").
		Where("v.contract_address = ?", vault.NormalizeAddress(contractAddress)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVaultNotFound
		}
		return nil, fmt.Errorf("failed to get vault detail: %w", err)
	}

	detail := &vault.Detail{Vault: *toVault(dao)}
	detail.ProposalCount = len(dao.Proposals)
	detail.LoanProposals = make([]loan.Proposal, 0, len(dao.Proposals))
	for _, p := range dao.Proposals {
		proposal, err := toProposal(p)
		if err != nil {
			return nil, err
		}
		detail.LoanProposals = append(detail.LoanProposals, *proposal)
	}
	return detail, nil
}

func (s *pgStore) ListVaults(ctx context.Context) ([]*vault.Vault, error) {
	var daos []VaultDao
	err := s.db.NewSelect().
		Model(&daos).
		Relation("Members").
		OrderExpr("v.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vaults: %w", err)
	}

	ids := make([]string, len(daos))
	for i := range daos {
		ids[i] = daos[i].ID
	}
	counts, err := s.proposalCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	vaults := make([]*vault.Vault, len(daos))
	for i := range daos {
		daos[i].ProposalCount = counts[daos[i].ID]
		vaults[i] = toVault(&daos[i])
	}
	return vaults, nil
}

func (s *pgStore) ListVaultsForMember(ctx context.Context, walletAddress string) ([]*vault.UserVault, error) {
	var daos []VaultMemberDao
	err := s.db.NewSelect().
		Model(&daos).
		Relation("Vault").
		Relation("Vault.Members").
		Where("vm.wallet_address = ?", vault.NormalizeAddress(walletAddress)).
		OrderExpr("vm.joined_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vaults for member: %w", err)
	}

	ids := make([]string, 0, len(daos))
	for i := range daos {
		if daos[i].Vault != nil {
			ids = append(ids, daos[i].Vault.ID)
		}
	}
	counts, err := s.proposalCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*vault.UserVault, 0, len(daos))
	for i := range daos {
		if daos[i].Vault == nil {
			continue
		}
		daos[i].Vault.ProposalCount = counts[daos[i].Vault.ID]
		out = append(out, &vault.UserVault{
			Vault:    *toVault(daos[i].Vault),
			UserRole: vault.Role(daos[i].Role),
			JoinedAt: daos[i].JoinedAt,
		})
	}
	return out, nil
}

// proposalCounts returns loan proposal counts grouped by vault id.
func (s *pgStore) proposalCounts(ctx context.Context, vaultIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(vaultIDs))
	if len(vaultIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		VaultID string `bun:"vault_id"`
		Count   int    `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*LoanProposalDao)(nil)).
		Column("vault_id").
		ColumnExpr("COUNT(*) AS count").
		Where("vault_id IN (?)", bun.In(vaultIDs)).
		Group("vault_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to count proposals: %w", err)
	}
	for _, row := range rows {
		counts[row.VaultID] = row.Count
	}
	return counts, nil
}
