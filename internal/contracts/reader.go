package contracts

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// TokenReader 按地址读取任意 ERC20 的 decimals
// No caching on purpose: token metadata is read from the chain on demand,
// the same as every other on-chain lookup in this agent.
type TokenReader struct {
	caller Caller
}

func NewTokenReader(caller Caller) *TokenReader {
	return &TokenReader{caller: caller}
}

func (r *TokenReader) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	return NewERC20(token, r.caller).Decimals(ctx)
}
