package chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lend-agent/pkg/errno"
	"lend-agent/pkg/wallet"
)

// 测试专用私钥 (hardhat 默认账户 0)
const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func newTestSender(t *testing.T, backend Backend) *Sender {
	t.Helper()
	account, err := wallet.FromPrivateKey(testKey)
	require.NoError(t, err)
	return NewSender(backend, account, zap.NewNop())
}

func dynamicRequest() *TxRequest {
	to := common.HexToAddress("0x176211869cA2b568f2A7D4EE941E073a821EE1ff")
	return &TxRequest{
		From:      common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		Nonce:     3,
		ChainID:   big.NewInt(59144),
		GasFeeCap: big.NewInt(8_000_000_000),
		GasTipCap: big.NewInt(500_000_000),
		To:        &to,
		Data:      []byte{0x01, 0x02},
	}
}

func TestSendAppliesGasMargin(t *testing.T) {
	var sent *types.Transaction
	backend := &fakeBackend{
		estimateGasFn: func(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
			// estimateGas 调用不得携带 legacy gas price
			assert.Nil(t, msg.GasPrice)
			return 100_000, nil
		},
		sendTransactionFn: func(ctx context.Context, tx *types.Transaction) error {
			sent = tx
			return nil
		},
	}

	s := newTestSender(t, backend)
	hash, err := s.Send(context.Background(), dynamicRequest(), false)
	require.NoError(t, err)

	require.NotNil(t, sent)
	assert.Equal(t, hash, sent.Hash())
	// ceil(100_000 * 1.2)
	assert.Equal(t, uint64(120_000), sent.Gas())
	assert.Equal(t, uint8(types.DynamicFeeTxType), sent.Type())
	assert.Equal(t, uint64(3), sent.Nonce())
}

func TestSendGasMarginRoundsUp(t *testing.T) {
	var sent *types.Transaction
	backend := &fakeBackend{
		estimateGasFn: func(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
			return 21_001, nil
		},
		sendTransactionFn: func(ctx context.Context, tx *types.Transaction) error {
			sent = tx
			return nil
		},
	}

	s := newTestSender(t, backend)
	_, err := s.Send(context.Background(), dynamicRequest(), false)
	require.NoError(t, err)
	// ceil(21_001 * 1.2) = 25_202 (不是截断的 25_201)
	assert.Equal(t, uint64(25_202), sent.Gas())
}

func TestSendFallsBackToFixedGasLimit(t *testing.T) {
	var sent *types.Transaction
	backend := &fakeBackend{
		estimateGasFn: func(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
			return 0, assert.AnError
		},
		sendTransactionFn: func(ctx context.Context, tx *types.Transaction) error {
			sent = tx
			return nil
		},
	}

	s := newTestSender(t, backend)
	_, err := s.Send(context.Background(), dynamicRequest(), false)
	require.NoError(t, err)
	assert.Equal(t, uint64(fallbackGasLimit), sent.Gas())
}

func TestSendSkipsGasEstimation(t *testing.T) {
	estimated := false
	backend := &fakeBackend{
		estimateGasFn: func(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
			estimated = true
			return 100_000, nil
		},
	}

	s := newTestSender(t, backend)
	req := dynamicRequest()
	req.Gas = 80_000
	_, err := s.Send(context.Background(), req, false)
	require.NoError(t, err)
	assert.False(t, estimated, "已有 gas limit 时不应再估算")

	_, err = s.Send(context.Background(), dynamicRequest(), true)
	require.NoError(t, err)
	assert.False(t, estimated)
}

func TestSendRejectsAmbiguousFeeFields(t *testing.T) {
	s := newTestSender(t, &fakeBackend{})

	req := dynamicRequest()
	req.GasPrice = big.NewInt(1_000_000_000)

	_, err := s.Send(context.Background(), req, false)
	assert.ErrorIs(t, err, errno.ErrAmbiguousFeeFields)
}

func TestSendLegacyTransaction(t *testing.T) {
	var sent *types.Transaction
	backend := &fakeBackend{
		sendTransactionFn: func(ctx context.Context, tx *types.Transaction) error {
			sent = tx
			return nil
		},
	}

	s := newTestSender(t, backend)
	req := dynamicRequest()
	req.GasFeeCap = nil
	req.GasTipCap = nil
	req.GasPrice = big.NewInt(20_000_000_000)

	_, err := s.Send(context.Background(), req, false)
	require.NoError(t, err)
	assert.Equal(t, uint8(types.LegacyTxType), sent.Type())
}

func TestSendSurfacesBroadcastFailure(t *testing.T) {
	backend := &fakeBackend{
		sendTransactionFn: func(ctx context.Context, tx *types.Transaction) error {
			return assert.AnError
		},
	}

	s := newTestSender(t, backend)
	_, err := s.Send(context.Background(), dynamicRequest(), true)
	assert.ErrorIs(t, err, assert.AnError)
}
