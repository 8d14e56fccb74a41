// Package service implements the vault registry business logic and HTTP
// endpoints. The registry mirrors deployed vault contracts: the chain decides
// what exists, this service only keeps the metadata readable.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/shakti-network/shakti-ledger/internal/metrics"
	apperrors "github.com/shakti-network/shakti-ledger/pkg/app/errors"
	"github.com/shakti-network/shakti-ledger/pkg/ledgerstore"
	"github.com/shakti-network/shakti-ledger/pkg/vault"
)

const defaultNetwork = "sepolia"

var ErrVaultAlreadyExists = errors.New("vault with this contract address already exists")

// ChainVerifier cross-checks a vault address against the factory contract.
// Verification is advisory: a chain outage must never block a mirror write.
type ChainVerifier interface {
	VaultDeployed(ctx context.Context, vaultAddress string) (bool, error)
}

// Service defines the interface for the vault registry business logic
type Service interface {
	CreateVault(ctx context.Context, req *vault.CreateRequest) (*vault.Vault, error)
	ListVaults(ctx context.Context) ([]*vault.Vault, error)
	GetVault(ctx context.Context, contractAddress string) (*vault.Detail, error)
	ListVaultsForUser(ctx context.Context, walletAddress string) ([]*vault.UserVault, error)
}

type vaultService struct {
	store    ledgerstore.VaultStore
	verifier ChainVerifier
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates a new vault registry service. verifier may be nil when
// no chain client is configured.
func NewService(store ledgerstore.VaultStore, verifier ChainVerifier, logger *zap.Logger) Service {
	return &vaultService{
		store:    store,
		verifier: verifier,
		validate: validator.New(),
		logger:   logger,
	}
}

// CreateVault registers metadata for a vault contract the frontend just
// deployed. Addresses are lowercased before storage so later lookups are
// case-insensitive. Duplicate registrations answer with a conflict carrying
// the existing record.
func (s *vaultService) CreateVault(ctx context.Context, req *vault.CreateRequest) (*vault.Vault, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.BadRequestError(err, "contractAddress, name and creatorAddress are required")
	}

	contractAddress := vault.NormalizeAddress(req.ContractAddress)
	creatorAddress := vault.NormalizeAddress(req.CreatorAddress)

	existing, err := s.store.GetVault(ctx, contractAddress)
	if err != nil && !errors.Is(err, ledgerstore.ErrVaultNotFound) {
		return nil, s.storeError(err, "failed to check vault existence")
	}
	if existing != nil {
		metrics.MirrorConflicts.WithLabelValues("vault").Inc()
		return nil, apperrors.ConflictWithDataError(ErrVaultAlreadyExists,
			"Vault with this contract address already exists", existing)
	}

	s.verifyDeployed(ctx, contractAddress)

	network := req.Network
	if network == "" {
		network = defaultNetwork
	}

	v := &vault.Vault{
		ContractAddress: contractAddress,
		Name:            req.Name,
		CreatorAddress:  creatorAddress,
		Network:         network,
		TxHash:          req.TxHash,
		Members:         make([]vault.Member, 0, len(req.Members)),
	}
	for _, m := range req.Members {
		v.Members = append(v.Members, vault.Member{
			WalletAddress: vault.NormalizeAddress(m.Address),
			DisplayName:   m.Name,
			Role:          vault.DeriveRole(m.Address, creatorAddress),
		})
	}

	if err := s.store.CreateVault(ctx, v); err != nil {
		// A concurrent duplicate can pass the existence check and hit the
		// unique constraint instead. Answer it the same way.
		if ledgerstore.IsUniqueViolation(err) {
			metrics.MirrorConflicts.WithLabelValues("vault").Inc()
			if existing, getErr := s.store.GetVault(ctx, contractAddress); getErr == nil {
				return nil, apperrors.ConflictWithDataError(ErrVaultAlreadyExists,
					"Vault with this contract address already exists", existing)
			}
			return nil, apperrors.ConflictError(ErrVaultAlreadyExists,
				"Vault with this contract address already exists")
		}
		return nil, s.storeError(err, "failed to save vault metadata")
	}

	metrics.VaultsCreated.WithLabelValues(network).Inc()
	s.logger.Info("vault metadata saved",
		zap.String("contract_address", contractAddress),
		zap.String("name", v.Name),
		zap.Int("members", len(v.Members)))
	return v, nil
}

// ListVaults returns all registered vaults, newest first.
func (s *vaultService) ListVaults(ctx context.Context) ([]*vault.Vault, error) {
	vaults, err := s.store.ListVaults(ctx)
	if err != nil {
		return nil, s.storeError(err, "failed to list vaults")
	}
	return vaults, nil
}

// GetVault returns one vault with members and its loan proposals.
func (s *vaultService) GetVault(ctx context.Context, contractAddress string) (*vault.Detail, error) {
	detail, err := s.store.GetVaultDetail(ctx, contractAddress)
	if err != nil {
		if errors.Is(err, ledgerstore.ErrVaultNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "Vault not found")
		}
		return nil, s.storeError(err, "failed to get vault")
	}
	return detail, nil
}

// ListVaultsForUser returns the vaults a wallet belongs to, most recently
// joined first.
func (s *vaultService) ListVaultsForUser(ctx context.Context, walletAddress string) ([]*vault.UserVault, error) {
	if err := s.validate.Var(walletAddress, "required,eth_addr"); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid wallet address")
	}
	vaults, err := s.store.ListVaultsForMember(ctx, walletAddress)
	if err != nil {
		return nil, s.storeError(err, "failed to list user vaults")
	}
	return vaults, nil
}

// verifyDeployed warns when the factory does not know the address. The write
// proceeds either way: rejecting metadata over a flaky RPC endpoint would
// leave a deployed vault invisible to its members.
func (s *vaultService) verifyDeployed(ctx context.Context, contractAddress string) {
	if s.verifier == nil {
		return
	}
	deployed, err := s.verifier.VaultDeployed(ctx, contractAddress)
	if err != nil {
		metrics.ChainReadErrors.WithLabelValues("getDeployedVaults").Inc()
		s.logger.Warn("could not verify vault against factory",
			zap.String("contract_address", contractAddress),
			zap.Error(err))
		return
	}
	if !deployed {
		s.logger.Warn("vault address not known to factory",
			zap.String("contract_address", contractAddress))
	}
}

func (s *vaultService) storeError(err error, message string) error {
	if ledgerstore.IsUnavailable(err) {
		return apperrors.UnavailableError(err, "storage temporarily unavailable")
	}
	return apperrors.GeneralError(fmt.Errorf("%s: %w", message, err))
}
