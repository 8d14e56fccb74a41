// Package shg provides a read-only view of the SHG vault contracts. The
// chain is the source of truth for vault and loan state; this client only
// reads, it never signs or sends transactions.
package shg

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/shakti-network/shakti-ledger/pkg/config"
	"github.com/shakti-network/shakti-ledger/pkg/loan"
)

const factoryABI = `[
  {"inputs":[],"name":"getDeployedVaults","outputs":[{"internalType":"address[]","name":"","type":"address[]"}],"stateMutability":"view","type":"function"}
]`

const vaultABI = `[
  {"inputs":[{"internalType":"uint256","name":"loanId","type":"uint256"}],"name":"getLoanDetails","outputs":[{"internalType":"address","name":"borrower","type":"address"},{"internalType":"uint256","name":"amount","type":"uint256"},{"internalType":"uint256","name":"repaid","type":"uint256"},{"internalType":"uint256","name":"approvals","type":"uint256"},{"internalType":"bool","name":"disbursed","type":"bool"},{"internalType":"bool","name":"exists","type":"bool"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"internalType":"address","name":"member","type":"address"}],"name":"isMember","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"}
]`

// Client reads vault and loan state from the chain.
type Client struct {
	config  *config.EthereumConfig
	client  *ethclient.Client
	logger  *zap.Logger
	factory *bind.BoundContract

	vaultParsed abi.ABI
}

// NewClient connects to the configured RPC endpoint and binds the vault
// factory contract.
func NewClient(cfg *config.EthereumConfig, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum RPC: %w", err)
	}

	factoryParsed, err := abi.JSON(strings.NewReader(factoryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse factory ABI: %w", err)
	}
	vaultParsed, err := abi.JSON(strings.NewReader(vaultABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse vault ABI: %w", err)
	}

	factoryAddress := common.HexToAddress(cfg.FactoryAddress)
	factory := bind.NewBoundContract(factoryAddress, factoryParsed, client, nil, nil)

	logger.Info("Connected to Ethereum",
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("factory_contract", factoryAddress.Hex()))

	return &Client{
		config:      cfg,
		client:      client,
		logger:      logger,
		factory:     factory,
		vaultParsed: vaultParsed,
	}, nil
}

// Close closes the underlying RPC connection.
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// DeployedVaults returns the vault addresses registered with the factory.
func (c *Client) DeployedVaults(ctx context.Context) ([]common.Address, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	var out []any
	err := c.factory.Call(&bind.CallOpts{Context: ctx}, &out, "getDeployedVaults")
	if err != nil {
		return nil, fmt.Errorf("failed to call getDeployedVaults: %w", err)
	}
	return decodeDeployedVaults(out)
}

func decodeDeployedVaults(out []any) ([]common.Address, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected getDeployedVaults result length %d", len(out))
	}
	addrs, ok := out[0].([]common.Address)
	if !ok {
		return nil, fmt.Errorf("unexpected getDeployedVaults result type %T", out[0])
	}
	return addrs, nil
}

// VaultDeployed reports whether the factory knows the given vault address.
func (c *Client) VaultDeployed(ctx context.Context, vaultAddress string) (bool, error) {
	addrs, err := c.DeployedVaults(ctx)
	if err != nil {
		return false, err
	}
	target := common.HexToAddress(vaultAddress)
	for _, a := range addrs {
		if a == target {
			return true, nil
		}
	}
	return false, nil
}

// LoanDetails reads the live loan record from a vault contract.
func (c *Client) LoanDetails(ctx context.Context, vaultAddress string, loanID int64) (*loan.OnChainLoan, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	contract := bind.NewBoundContract(common.HexToAddress(vaultAddress), c.vaultParsed, c.client, nil, nil)

	var out []any
	err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "getLoanDetails", big.NewInt(loanID))
	if err != nil {
		return nil, fmt.Errorf("failed to call getLoanDetails: %w", err)
	}
	return decodeLoanDetails(out)
}

func decodeLoanDetails(out []any) (*loan.OnChainLoan, error) {
	if len(out) != 6 {
		return nil, fmt.Errorf("unexpected getLoanDetails result length %d", len(out))
	}

	borrower, _ := out[0].(common.Address)
	amount, _ := out[1].(*big.Int)
	repaid, _ := out[2].(*big.Int)
	approvals, _ := out[3].(*big.Int)
	disbursed, _ := out[4].(bool)
	exists, _ := out[5].(bool)
	if amount == nil || repaid == nil || approvals == nil {
		return nil, fmt.Errorf("unexpected getLoanDetails result types")
	}

	onChain := &loan.OnChainLoan{
		Borrower:  strings.ToLower(borrower.Hex()),
		Amount:    &loan.Amount{Int: *amount},
		Repaid:    &loan.Amount{Int: *repaid},
		Approvals: approvals.Uint64(),
		Disbursed: disbursed,
		Exists:    exists,
	}
	return onChain, nil
}

func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.RequestTimeout > 0 {
		return context.WithTimeout(ctx, c.config.RequestTimeout)
	}
	return context.WithCancel(ctx)
}
