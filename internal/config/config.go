package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Strings for identifiers, secrets and URLs, ints
// for durations.  The contract deployment table is kept separately in
// networks.go because it is static data, not per-run tuning.
type Config struct {
    Env                string // application environment (e.g. "dev", "prod")
    Port               string // HTTP port to listen on
    RPCURL             string // JSON-RPC endpoint of the chain node the wallet talks to
    KeystoreDir        string // directory holding the encrypted wallet key files
    KeystorePassphrase string // passphrase used to unlock keystore accounts (empty allowed)
    JWTSecret          string // secret used to sign session tokens
    AccessTTLMin       int    // session token time-to-live in minutes
    PinningEndpoint    string // base URL of the content pinning service
    PinningAPIKey      string // pinning service API key
    PinningAPISecret   string // pinning service API secret
    GatewayURL         string // public gateway prefix for resolving content hashes
    ChainWatchSec      int    // interval in seconds between chain-id drift checks
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:                must("APP_ENV"),
        Port:               must("APP_PORT"),
        RPCURL:             must("RPC_URL"),
        KeystoreDir:        must("KEYSTORE_DIR"),
        KeystorePassphrase: os.Getenv("KEYSTORE_PASSPHRASE"), // empty means unlocked dev keystore
        JWTSecret:          must("JWT_SECRET"),
        AccessTTLMin:       mustInt("ACCESS_TOKEN_TTL_MIN"),
        PinningEndpoint:    envStr("PINNING_ENDPOINT", "https://api.pinata.cloud"),
        PinningAPIKey:      must("PINNING_API_KEY"),
        PinningAPISecret:   must("PINNING_API_SECRET"),
        GatewayURL:         envStr("IPFS_GATEWAY_URL", "https://gateway.pinata.cloud/ipfs/"),
        ChainWatchSec:      envInt("CHAIN_WATCH_INTERVAL_SEC", 15),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
