package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// fakeBackend 按字段注入各 RPC 方法的行为, 未注入的方法返回零值
type fakeBackend struct {
	balanceAtFn          func(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	pendingNonceAtFn     func(ctx context.Context, account common.Address) (uint64, error)
	chainIDFn            func(ctx context.Context) (*big.Int, error)
	suggestGasPriceFn    func(ctx context.Context) (*big.Int, error)
	suggestGasTipCapFn   func(ctx context.Context) (*big.Int, error)
	feeHistoryFn         func(ctx context.Context, blockCount uint64, lastBlock *big.Int, rewardPercentiles []float64) (*ethereum.FeeHistory, error)
	estimateGasFn        func(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	callContractFn       func(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	sendTransactionFn    func(ctx context.Context, tx *types.Transaction) error
	transactionReceiptFn func(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

var _ Backend = (*fakeBackend)(nil)

func (f *fakeBackend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	if f.balanceAtFn != nil {
		return f.balanceAtFn(ctx, account, blockNumber)
	}
	return new(big.Int), nil
}

func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	if f.pendingNonceAtFn != nil {
		return f.pendingNonceAtFn(ctx, account)
	}
	return 0, nil
}

func (f *fakeBackend) ChainID(ctx context.Context) (*big.Int, error) {
	if f.chainIDFn != nil {
		return f.chainIDFn(ctx)
	}
	return big.NewInt(1), nil
}

func (f *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if f.suggestGasPriceFn != nil {
		return f.suggestGasPriceFn(ctx)
	}
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	if f.suggestGasTipCapFn != nil {
		return f.suggestGasTipCapFn(ctx)
	}
	return big.NewInt(1_000_000), nil
}

func (f *fakeBackend) FeeHistory(ctx context.Context, blockCount uint64, lastBlock *big.Int, rewardPercentiles []float64) (*ethereum.FeeHistory, error) {
	if f.feeHistoryFn != nil {
		return f.feeHistoryFn(ctx, blockCount, lastBlock, rewardPercentiles)
	}
	return &ethereum.FeeHistory{BaseFee: []*big.Int{big.NewInt(1_000_000_000)}}, nil
}

func (f *fakeBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	if f.estimateGasFn != nil {
		return f.estimateGasFn(ctx, msg)
	}
	return 21_000, nil
}

func (f *fakeBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if f.callContractFn != nil {
		return f.callContractFn(ctx, msg, blockNumber)
	}
	return nil, nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if f.sendTransactionFn != nil {
		return f.sendTransactionFn(ctx, tx)
	}
	return nil
}

func (f *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	if f.transactionReceiptFn != nil {
		return f.transactionReceiptFn(ctx, txHash)
	}
	return nil, ethereum.NotFound
}
