package service

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lend-agent/internal/network"
	"lend-agent/pkg/wallet"
)

// scriptedBackend 按方法选择器应答合约调用, 其余 RPC 方法返回固定值
type scriptedBackend struct {
	usdcBalance   *big.Int
	nativeBalance *big.Int
	allowance     *big.Int
	sent          []*types.Transaction
}

func (s *scriptedBackend) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	return s.nativeBalance, nil
}

func (s *scriptedBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return uint64(len(s.sent)), nil
}

func (s *scriptedBackend) ChainID(ctx context.Context) (*big.Int, error) {
	return big.NewInt(59144), nil
}

func (s *scriptedBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (s *scriptedBackend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000), nil
}

func (s *scriptedBackend) FeeHistory(ctx context.Context, blockCount uint64, lastBlock *big.Int, rewardPercentiles []float64) (*ethereum.FeeHistory, error) {
	return &ethereum.FeeHistory{BaseFee: []*big.Int{big.NewInt(1_000_000_000)}}, nil
}

func (s *scriptedBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return 100_000, nil
}

func (s *scriptedBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	switch hex.EncodeToString(msg.Data[:4]) {
	case "313ce567": // decimals()
		return common.LeftPadBytes(big.NewInt(6).Bytes(), 32), nil
	case "70a08231": // balanceOf(address)
		return common.LeftPadBytes(s.usdcBalance.Bytes(), 32), nil
	case "dd62ed3e": // allowance(address,address)
		return common.LeftPadBytes(s.allowance.Bytes(), 32), nil
	}
	return nil, ethereum.NotFound
}

func (s *scriptedBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	s.sent = append(s.sent, tx)
	return nil
}

func (s *scriptedBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(1)}, nil
}

func newDepositService(t *testing.T, backend *scriptedBackend, amount string) *DepositService {
	t.Helper()

	account, err := wallet.FromPrivateKey("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	require.NoError(t, err)

	net, err := network.FromName("linea")
	require.NoError(t, err)

	return NewDepositService(backend, net, account, decimal.RequireFromString(amount), zap.NewNop())
}

func TestDepositRunWithExistingAllowance(t *testing.T) {
	backend := &scriptedBackend{
		usdcBalance:   big.NewInt(100_000_000),              // 100 USDC
		nativeBalance: big.NewInt(1_000_000_000_000_000_000), // 1 ETH
		allowance:     big.NewInt(100_000_000),
	}

	svc := newDepositService(t, backend, "12.5")
	require.NoError(t, svc.Run(context.Background()))

	// 额度已足够: 只有 supply 一笔交易
	require.Len(t, backend.sent, 1)
	supply := backend.sent[0]
	require.NotNil(t, supply.To())

	net, _ := network.FromName("linea")
	assert.Equal(t, net.CoreAddress, *supply.To())
	// supply(lToken, 12_500_000) 的参数
	data := supply.Data()
	assert.Equal(t, common.LeftPadBytes(big.NewInt(12_500_000).Bytes(), 32), data[len(data)-32:])
}

func TestDepositRunApprovesFirst(t *testing.T) {
	backend := &scriptedBackend{
		usdcBalance:   big.NewInt(100_000_000),
		nativeBalance: big.NewInt(1_000_000_000_000_000_000),
		allowance:     big.NewInt(0),
	}

	svc := newDepositService(t, backend, "12.5")
	err := svc.Run(context.Background())

	// allowance 固定为 0: approve 已发送并确认, 但复核仍不足 → 流程失败
	require.Error(t, err)
	require.Len(t, backend.sent, 1)
	net, _ := network.FromName("linea")
	assert.Equal(t, net.USDCAddress, *backend.sent[0].To())
}

func TestDepositRunRejectsInsufficientBalance(t *testing.T) {
	backend := &scriptedBackend{
		usdcBalance:   big.NewInt(1_000_000), // 1 USDC
		nativeBalance: big.NewInt(1_000_000_000_000_000_000),
		allowance:     big.NewInt(0),
	}

	svc := newDepositService(t, backend, "12.5")
	err := svc.Run(context.Background())
	require.Error(t, err)
	// 预检失败, 零笔交易
	assert.Empty(t, backend.sent)
}

func TestDepositRunRejectsInsufficientGasFunds(t *testing.T) {
	backend := &scriptedBackend{
		usdcBalance:   big.NewInt(100_000_000),
		nativeBalance: big.NewInt(1), // 远低于预估 gas
		allowance:     big.NewInt(100_000_000),
	}

	svc := newDepositService(t, backend, "12.5")
	err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, backend.sent)
}
