package config

// networks.go holds the static table of known contract deployments.  Each
// entry pairs a chain id with the marketplace contract address deployed on
// that chain.  The table is fixed for the lifetime of the process; resolution
// is exact-match on chain id and an unknown id is a hard failure.  Falling
// back to a default profile would risk sending transactions to the wrong
// contract, so Resolve never does that.

import (
    "errors"
    "os"
)

// ErrUnsupportedNetwork is returned when the wallet reports a chain id that
// has no known contract deployment.
var ErrUnsupportedNetwork = errors.New("unsupported network")

// NetworkProfile describes one known deployment of the marketplace contract.
type NetworkProfile struct {
    Name            string // human-readable network name (e.g. "local", "sepolia")
    ChainID         uint64 // numeric chain identifier reported by the node
    ContractAddress string // 0x-prefixed address of the deployed contract
}

// Default deployment addresses.  They can be overridden per environment via
// LOCAL_CONTRACT_ADDRESS and SEPOLIA_CONTRACT_ADDRESS so that a redeploy does
// not require a rebuild.
const (
    defaultLocalAddress   = "0x8257C80494eF01eF749967dCB4ef044513c605fE"
    defaultSepoliaAddress = "0x4d40fE141649Cc8cC1a46631b8871429a9CA3Cb7"
)

// DefaultNetworks returns the known deployments: a local development chain
// (Ganache, chain id 1337) and the Sepolia public testnet (11155111).
func DefaultNetworks() []NetworkProfile {
    return []NetworkProfile{
        {Name: "local", ChainID: 1337, ContractAddress: envStr("LOCAL_CONTRACT_ADDRESS", defaultLocalAddress)},
        {Name: "sepolia", ChainID: 11155111, ContractAddress: envStr("SEPOLIA_CONTRACT_ADDRESS", defaultSepoliaAddress)},
    }
}

// Resolve maps a live chain id to its NetworkProfile.  The lookup is exact;
// when no entry matches it returns ErrUnsupportedNetwork and callers must
// surface the failure rather than substituting a default.
func Resolve(profiles []NetworkProfile, chainID uint64) (NetworkProfile, error) {
    for _, p := range profiles {
        if p.ChainID == chainID {
            return p, nil
        }
    }
    return NetworkProfile{}, ErrUnsupportedNetwork
}

// envStr returns the value of an optional environment variable or a default.
func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}
