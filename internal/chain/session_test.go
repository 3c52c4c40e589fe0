package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/velora/submarket-gateway/internal/config"
)

type fakeSource struct {
	accounts []common.Address
	chainID  *big.Int
	accErr   error
	chainErr error
}

func (f *fakeSource) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	return f.accounts, f.accErr
}

func (f *fakeSource) ChainID(ctx context.Context) (*big.Int, error) {
	return f.chainID, f.chainErr
}

var testNetworks = []config.NetworkProfile{
	{Name: "local", ChainID: 1337, ContractAddress: "0x8257C80494eF01eF749967dCB4ef044513c605fE"},
	{Name: "sepolia", ChainID: 11155111, ContractAddress: "0x4d40fE141649Cc8cC1a46631b8871429a9CA3Cb7"},
}

func noopBinder(profile config.NetworkProfile, account common.Address) Contract { return nil }

func TestOpenBindsResolvedProfile(t *testing.T) {
	acct := common.HexToAddress("0x1111111111111111111111111111111111111111")
	src := &fakeSource{accounts: []common.Address{acct}, chainID: big.NewInt(1337)}

	var boundProfile config.NetworkProfile
	var boundAccount common.Address
	f := NewFactory(src, testNetworks, func(p config.NetworkProfile, a common.Address) Contract {
		boundProfile, boundAccount = p, a
		return nil
	})

	sess, err := f.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if sess.Account != acct {
		t.Fatalf("session account = %s, want %s", sess.Account.Hex(), acct.Hex())
	}
	if sess.Profile.Name != "local" || boundProfile.Name != "local" {
		t.Fatalf("wrong profile bound: session=%q binder=%q", sess.Profile.Name, boundProfile.Name)
	}
	if boundAccount != acct {
		t.Fatalf("binder account = %s, want %s", boundAccount.Hex(), acct.Hex())
	}
}

func TestOpenNoProvider(t *testing.T) {
	f := NewFactory(nil, testNetworks, noopBinder)
	if _, err := f.Open(context.Background()); !errors.Is(err, ErrNoWalletProvider) {
		t.Fatalf("expected ErrNoWalletProvider, got %v", err)
	}
}

func TestOpenAuthorizationDenied(t *testing.T) {
	src := &fakeSource{accErr: ErrAuthorizationDenied}
	f := NewFactory(src, testNetworks, noopBinder)
	if _, err := f.Open(context.Background()); !errors.Is(err, ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied, got %v", err)
	}

	// A provider that answers with zero accounts is treated the same way.
	src = &fakeSource{accounts: nil, chainID: big.NewInt(1337)}
	f = NewFactory(src, testNetworks, noopBinder)
	if _, err := f.Open(context.Background()); !errors.Is(err, ErrAuthorizationDenied) {
		t.Fatalf("expected ErrAuthorizationDenied for empty account list, got %v", err)
	}
}

func TestOpenUnsupportedNetwork(t *testing.T) {
	acct := common.HexToAddress("0x2222222222222222222222222222222222222222")
	src := &fakeSource{accounts: []common.Address{acct}, chainID: big.NewInt(5)}

	bound := false
	f := NewFactory(src, testNetworks, func(config.NetworkProfile, common.Address) Contract {
		bound = true
		return nil
	})

	if _, err := f.Open(context.Background()); !errors.Is(err, config.ErrUnsupportedNetwork) {
		t.Fatalf("expected ErrUnsupportedNetwork, got %v", err)
	}
	if bound {
		t.Fatalf("binder must not run for an unsupported chain")
	}
}

func TestOpenRereadsProviderState(t *testing.T) {
	a := common.HexToAddress("0x3333333333333333333333333333333333333333")
	b := common.HexToAddress("0x4444444444444444444444444444444444444444")
	src := &fakeSource{accounts: []common.Address{a}, chainID: big.NewInt(1337)}
	f := NewFactory(src, testNetworks, noopBinder)

	s1, err := f.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// The wallet switches account and chain between calls; the next Open must
	// see the new state, not a cached session.
	src.accounts = []common.Address{b}
	src.chainID = big.NewInt(11155111)

	s2, err := f.Open(context.Background())
	if err != nil {
		t.Fatalf("Open after switch: %v", err)
	}
	if s2.Account != b || s2.Profile.Name != "sepolia" {
		t.Fatalf("stale session state: account=%s profile=%q", s2.Account.Hex(), s2.Profile.Name)
	}
	if s1.Account == s2.Account {
		t.Fatalf("expected distinct accounts across opens")
	}
}
