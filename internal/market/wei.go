package market

import (
    "errors"
    "math/big"
    "strings"
)

// ErrBadAmount is returned for unparseable ether amounts.
var ErrBadAmount = errors.New("invalid ether amount")

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// FormatEther converts a wei amount to a decimal ether string with trailing
// zeros trimmed ("1", "0.01", "1.5").
func FormatEther(wei *big.Int) string {
    if wei == nil {
        return "0"
    }
    r := new(big.Rat).SetFrac(wei, weiPerEther)
    s := r.FloatString(18)
    s = strings.TrimRight(s, "0")
    s = strings.TrimSuffix(s, ".")
    if s == "" || s == "-" {
        return "0"
    }
    return s
}

// ParseEther converts a decimal ether string to wei.  At most 18 fractional
// digits are accepted; anything finer has no wei representation.
func ParseEther(s string) (*big.Int, error) {
    s = strings.TrimSpace(s)
    if s == "" {
        return nil, ErrBadAmount
    }
    r, ok := new(big.Rat).SetString(s)
    if !ok || r.Sign() < 0 {
        return nil, ErrBadAmount
    }
    wei := new(big.Rat).Mul(r, new(big.Rat).SetInt(weiPerEther))
    if !wei.IsInt() {
        return nil, ErrBadAmount
    }
    return wei.Num(), nil
}
