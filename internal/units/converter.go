package units

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"lend-agent/pkg/errno"
)

// Unit 支持的换算单位: 由代币的 decimals 决定的封闭枚举
// Anything outside the enumeration is a configuration fault; scaling by a
// guessed factor would silently corrupt amounts.
type Unit int

const (
	UnitMicro Unit = iota // 6 decimals (USDC 等)
	UnitNano              // 9 decimals
	UnitFull              // 18 decimals (原生币)
)

func (u Unit) Decimals() int32 {
	switch u {
	case UnitMicro:
		return 6
	case UnitNano:
		return 9
	default:
		return 18
	}
}

func (u Unit) String() string {
	switch u {
	case UnitMicro:
		return "micro"
	case UnitNano:
		return "nano"
	default:
		return "full"
	}
}

// UnitForDecimals maps on-chain decimals onto the closed Unit enum.
func UnitForDecimals(decimals uint8) (Unit, error) {
	switch decimals {
	case 6:
		return UnitMicro, nil
	case 9:
		return UnitNano, nil
	case 18:
		return UnitFull, nil
	default:
		return 0, fmt.Errorf("%w: %d", errno.ErrUnsupportedDecimals, decimals)
	}
}

// DecimalsReader reports a token's on-chain decimals.
type DecimalsReader interface {
	Decimals(ctx context.Context, token common.Address) (uint8, error)
}

// Converter 人类可读金额与链上整数单位的互转
// Base-unit amounts are the source of truth; human values are display-only
// and always re-derived through this converter before touching the chain.
type Converter struct {
	tokens DecimalsReader
}

func NewConverter(tokens DecimalsReader) *Converter {
	return &Converter{tokens: tokens}
}

func (c *Converter) unitFor(ctx context.Context, token *common.Address) (Unit, error) {
	if token == nil {
		// 原生资产约定 18 decimals
		return UnitFull, nil
	}
	decimals, err := c.tokens.Decimals(ctx, *token)
	if err != nil {
		return 0, fmt.Errorf("read decimals of %s: %w", token.Hex(), err)
	}
	return UnitForDecimals(decimals)
}

// ToBaseUnits converts a human amount to integer base units. Fails when the
// amount carries more precision than the token can represent.
func (c *Converter) ToBaseUnits(ctx context.Context, amount decimal.Decimal, token *common.Address) (*big.Int, error) {
	unit, err := c.unitFor(ctx, token)
	if err != nil {
		return nil, err
	}

	scaled := amount.Shift(unit.Decimals())
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %s does not fit %s units", errno.ErrConfigInvalid, amount, unit)
	}
	return scaled.BigInt(), nil
}

// ToHumanUnits converts integer base units to a human decimal amount.
func (c *Converter) ToHumanUnits(ctx context.Context, amount *big.Int, token *common.Address) (decimal.Decimal, error) {
	unit, err := c.unitFor(ctx, token)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromBigInt(amount, -unit.Decimals()), nil
}
