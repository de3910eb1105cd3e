package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// minPriorityFee 小费下限 (wei)，防止在低费市场里给出 0 小费
var minPriorityFee = big.NewInt(1_000_000)

// Builder 组装未签名交易
// Nonce and chain id are fetched fresh on every Prepare: a cached nonce is a
// guaranteed broadcast failure once anything else lands for the account.
type Builder struct {
	backend Backend
	from    common.Address
	eip1559 bool
	log     *zap.Logger
}

func NewBuilder(backend Backend, from common.Address, log *zap.Logger) *Builder {
	return &Builder{
		backend: backend,
		from:    from,
		eip1559: true,
		log:     log,
	}
}

// Prepare 构建基础交易: nonce、chain id、金额与费率字段
// value 仅在为正时写入。RPC 失败直接上抛，重试由 Gateway 层负责。
func (b *Builder) Prepare(ctx context.Context, value *big.Int) (*TxRequest, error) {
	nonce, err := b.backend.PendingNonceAt(ctx, b.from)
	if err != nil {
		return nil, fmt.Errorf("fetch nonce: %w", err)
	}
	chainID, err := b.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}

	req := &TxRequest{
		From:    b.from,
		Nonce:   nonce,
		ChainID: chainID,
	}
	if value != nil && value.Sign() > 0 {
		req.Value = value
	}

	// 当前 gas price 作为 base fee 的近似值
	baseFee, err := b.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch gas price: %w", err)
	}

	if b.eip1559 {
		// tip = max(baseFee * 0.1, 1_000_000)
		tip := new(big.Int).Div(baseFee, big.NewInt(10))
		if tip.Cmp(minPriorityFee) < 0 {
			tip = new(big.Int).Set(minPriorityFee)
		}
		// maxFee = baseFee * 1.5 + tip
		feeCap := new(big.Int).Mul(baseFee, big.NewInt(3))
		feeCap.Div(feeCap, big.NewInt(2))
		feeCap.Add(feeCap, tip)

		req.GasTipCap = tip
		req.GasFeeCap = feeCap
	} else {
		req.GasPrice = baseFee
	}

	b.log.Debug("交易参数已准备",
		zap.Uint64("nonce", nonce),
		zap.String("chain_id", chainID.String()))
	return req, nil
}
