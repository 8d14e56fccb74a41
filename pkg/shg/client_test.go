package shg

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestDecodeDeployedVaults(t *testing.T) {
	want := []common.Address{
		common.HexToAddress("0xAAAA000000000000000000000000000000000001"),
		common.HexToAddress("0xBBBB000000000000000000000000000000000002"),
	}

	got, err := decodeDeployedVaults([]any{want})
	if err != nil {
		t.Fatalf("decodeDeployedVaults() failed: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected addresses %v", got)
	}
}

func TestDecodeDeployedVaults_MalformedResult(t *testing.T) {
	// A malformed RPC answer must come back as an error, never a panic.
	cases := map[string][]any{
		"empty":      {},
		"extra":      {[]common.Address{}, []common.Address{}},
		"wrong type": {"not addresses"},
	}
	for name, out := range cases {
		if _, err := decodeDeployedVaults(out); err == nil {
			t.Errorf("%s: expected error, got none", name)
		}
	}
}

func TestDecodeLoanDetails(t *testing.T) {
	borrower := common.HexToAddress("0xCCCC000000000000000000000000000000000003")
	out := []any{borrower, big.NewInt(1500000), big.NewInt(500000), big.NewInt(2), true, true}

	got, err := decodeLoanDetails(out)
	if err != nil {
		t.Fatalf("decodeLoanDetails() failed: %v", err)
	}
	if got.Borrower != strings.ToLower(borrower.Hex()) {
		t.Fatalf("borrower = %s, want lowercased hex", got.Borrower)
	}
	if got.Amount.String() != "1500000" || got.Repaid.String() != "500000" {
		t.Fatalf("unexpected amounts %s / %s", got.Amount.String(), got.Repaid.String())
	}
	if got.Approvals != 2 || !got.Disbursed || !got.Exists {
		t.Fatalf("unexpected flags %+v", got)
	}
}

func TestDecodeLoanDetails_MalformedResult(t *testing.T) {
	cases := map[string][]any{
		"short":       {common.Address{}, big.NewInt(1)},
		"nil amounts": {common.Address{}, nil, nil, nil, false, false},
	}
	for name, out := range cases {
		if _, err := decodeLoanDetails(out); err == nil {
			t.Errorf("%s: expected error, got none", name)
		}
	}
}
