// Package units converts between wei and decimal ether amounts.
package units

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/params"
)

// EtherDecimals is the number of decimals of the native unit
const EtherDecimals = 18

var weiPerEther = big.NewInt(params.Ether)

// ParseHexWei decodes a JSON-RPC quantity such as "0x1bc16d674ec80000"
func ParseHexWei(value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("empty quantity")
	}
	wei, err := hexutil.DecodeBig(value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode quantity %q: %w", value, err)
	}
	return wei, nil
}

// ParseHexUint64 decodes a JSON-RPC quantity into a uint64
func ParseHexUint64(value string) (uint64, error) {
	n, err := hexutil.DecodeUint64(value)
	if err != nil {
		return 0, fmt.Errorf("failed to decode quantity %q: %w", value, err)
	}
	return n, nil
}

// ParseEther converts a decimal ether string ("100", "0.5") to wei.
// Digits beyond 18 decimal places are truncated.
func ParseEther(value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("empty amount")
	}

	amount, ok := new(big.Rat).SetString(value)
	if !ok {
		return nil, fmt.Errorf("failed to parse amount: %s", value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("negative amount: %s", value)
	}

	amount.Mul(amount, new(big.Rat).SetInt(weiPerEther))
	return new(big.Int).Quo(amount.Num(), amount.Denom()), nil
}

// FormatEther converts wei to a decimal ether string without trailing zeros
func FormatEther(wei *big.Int) string {
	return ConvertToDecimalAmount(wei, EtherDecimals)
}

// ConvertToDecimalAmount converts a base-unit amount to decimal representation
func ConvertToDecimalAmount(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}

	negative := amount.Sign() < 0
	abs := new(big.Int).Abs(amount)

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	wholePart := new(big.Int).Div(abs, divisor)
	remainder := new(big.Int).Mod(abs, divisor)

	result := wholePart.String()
	if remainder.Sign() != 0 {
		// Pad remainder with leading zeros to match decimal places
		remainderStr := remainder.String()
		remainderStr = strings.Repeat("0", decimals-len(remainderStr)) + remainderStr
		remainderStr = strings.TrimRight(remainderStr, "0")
		if remainderStr != "" {
			result += "." + remainderStr
		}
	}

	if negative {
		return "-" + result
	}
	return result
}

// ToFloat returns wei as a float64 ether amount, for display and chart markers
func ToFloat(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := new(big.Rat).SetFrac(wei, weiPerEther).Float64()
	return f
}

// MeetsThreshold reports whether value >= threshold
func MeetsThreshold(value, threshold *big.Int) bool {
	if value == nil || threshold == nil {
		return false
	}
	return value.Cmp(threshold) >= 0
}
