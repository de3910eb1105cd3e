package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Gateway satisfies Backend itself: every method below is the raw client call
// wrapped in the proxy retry of Call. Components built on Backend get the
// resilience for free.
var _ Backend = (*Gateway)(nil)

func (g *Gateway) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	var out *big.Int
	err := g.Call(ctx, func(ctx context.Context, b Backend) error {
		var err error
		out, err = b.BalanceAt(ctx, account, blockNumber)
		return err
	})
	return out, err
}

func (g *Gateway) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	var out uint64
	err := g.Call(ctx, func(ctx context.Context, b Backend) error {
		var err error
		out, err = b.PendingNonceAt(ctx, account)
		return err
	})
	return out, err
}

func (g *Gateway) ChainID(ctx context.Context) (*big.Int, error) {
	var out *big.Int
	err := g.Call(ctx, func(ctx context.Context, b Backend) error {
		var err error
		out, err = b.ChainID(ctx)
		return err
	})
	return out, err
}

func (g *Gateway) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var out *big.Int
	err := g.Call(ctx, func(ctx context.Context, b Backend) error {
		var err error
		out, err = b.SuggestGasPrice(ctx)
		return err
	})
	return out, err
}

func (g *Gateway) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	var out *big.Int
	err := g.Call(ctx, func(ctx context.Context, b Backend) error {
		var err error
		out, err = b.SuggestGasTipCap(ctx)
		return err
	})
	return out, err
}

func (g *Gateway) FeeHistory(ctx context.Context, blockCount uint64, lastBlock *big.Int, rewardPercentiles []float64) (*ethereum.FeeHistory, error) {
	var out *ethereum.FeeHistory
	err := g.Call(ctx, func(ctx context.Context, b Backend) error {
		var err error
		out, err = b.FeeHistory(ctx, blockCount, lastBlock, rewardPercentiles)
		return err
	})
	return out, err
}

func (g *Gateway) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	var out uint64
	err := g.Call(ctx, func(ctx context.Context, b Backend) error {
		var err error
		out, err = b.EstimateGas(ctx, msg)
		return err
	})
	return out, err
}

func (g *Gateway) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var out []byte
	err := g.Call(ctx, func(ctx context.Context, b Backend) error {
		var err error
		out, err = b.CallContract(ctx, msg, blockNumber)
		return err
	})
	return out, err
}

func (g *Gateway) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return g.Call(ctx, func(ctx context.Context, b Backend) error {
		return b.SendTransaction(ctx, tx)
	})
}

func (g *Gateway) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	var out *types.Receipt
	err := g.Call(ctx, func(ctx context.Context, b Backend) error {
		var err error
		out, err = b.TransactionReceipt(ctx, txHash)
		return err
	})
	return out, err
}
