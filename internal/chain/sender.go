package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"lend-agent/pkg/wallet"
)

const (
	// fallbackGasLimit gas 估算失败时的固定上限
	fallbackGasLimit = 300_000

	// gasMarginNum/gasMarginDen 在估算值上加 20% 余量
	gasMarginNum = 12
	gasMarginDen = 10
)

// Sender 签名并广播交易
// It does not wait for inclusion; that is the Watcher's job.
type Sender struct {
	backend Backend
	account *wallet.Account
	log     *zap.Logger
}

func NewSender(backend Backend, account *wallet.Account, log *zap.Logger) *Sender {
	return &Sender{backend: backend, account: account, log: log}
}

// Send estimates a gas limit when the request has none (unless skipped),
// signs the transaction and submits it. Returns the transaction hash.
func (s *Sender) Send(ctx context.Context, req *TxRequest, skipGasEstimate bool) (common.Hash, error) {
	if err := req.Validate(); err != nil {
		return common.Hash{}, err
	}

	if !skipGasEstimate && req.Gas == 0 {
		estimate, err := s.backend.EstimateGas(ctx, req.callMsg())
		if err != nil {
			s.log.Warn("gas 估算失败, 使用固定上限",
				zap.Uint64("gas_limit", fallbackGasLimit),
				zap.Error(err))
			req.Gas = fallbackGasLimit
		} else {
			// ceil(estimate * 1.2)
			req.Gas = (estimate*gasMarginNum + gasMarginDen - 1) / gasMarginDen
		}
	}

	signer := types.LatestSignerForChainID(req.ChainID)
	signedTx, err := types.SignTx(req.build(), signer, s.account.Key())
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}

	if err := s.backend.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, fmt.Errorf("broadcast transaction: %w", err)
	}

	s.log.Info("🚀 交易已广播",
		zap.String("tx_hash", signedTx.Hash().Hex()),
		zap.Uint64("nonce", req.Nonce),
		zap.Uint64("gas_limit", req.Gas))
	return signedTx.Hash(), nil
}
