package chain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultMaxPolls     = 50
)

// TxStatus 确认状态机的四个状态
type TxStatus int

const (
	StatusPending TxStatus = iota
	StatusConfirmed
	StatusReverted
	StatusTimedOut
)

func (s TxStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusConfirmed:
		return "confirmed"
	case StatusReverted:
		return "reverted"
	case StatusTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Watcher 轮询交易回执直到确认、回滚或超时
// 超时是正常结果而不是错误: 链上延迟可能超过轮询上限。
type Watcher struct {
	backend      Backend
	log          *zap.Logger
	pollInterval time.Duration
	maxPolls     int
}

func NewWatcher(backend Backend, log *zap.Logger) *Watcher {
	return &Watcher{
		backend:      backend,
		log:          log,
		pollInterval: defaultPollInterval,
		maxPolls:     defaultMaxPolls,
	}
}

// Wait blocks until the transaction confirms, reverts or the poll limit
// runs out. True only for a status-1 receipt.
func (w *Watcher) Wait(ctx context.Context, txHash common.Hash, explorerURL string) bool {
	return w.Watch(ctx, txHash, explorerURL) == StatusConfirmed
}

// Watch 执行状态机: PENDING → {CONFIRMED, REVERTED, TIMED_OUT}
func (w *Watcher) Watch(ctx context.Context, txHash common.Hash, explorerURL string) TxStatus {
	txURL := txLink(explorerURL, txHash)
	w.log.Info("⏳ 等待交易确认", zap.String("tx", txURL))

	for attempt := 0; attempt < w.maxPolls; attempt++ {
		receipt, err := w.backend.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status == types.ReceiptStatusSuccessful {
				w.log.Info("✅ 交易已确认",
					zap.Uint64("block", receipt.BlockNumber.Uint64()),
					zap.String("tx", txURL))
				return StatusConfirmed
			}
			w.log.Error("❌ 交易执行失败", zap.String("tx", txURL))
			return StatusReverted
		case errors.Is(err, ethereum.NotFound):
			// 还未上链, 继续等待
		case err != nil:
			// 瞬时故障 (断线重连等) 不中断轮询
			w.log.Error("查询交易回执失败", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			w.log.Warn("等待交易确认被取消", zap.String("tx", txURL))
			return StatusTimedOut
		case <-time.After(w.pollInterval):
		}
	}

	w.log.Warn("⚠️ 等待交易确认超时", zap.String("tx", txURL))
	return StatusTimedOut
}

func txLink(explorerURL string, txHash common.Hash) string {
	if explorerURL == "" {
		return txHash.Hex()
	}
	return strings.TrimSuffix(explorerURL, "/") + "/tx/" + txHash.Hex()
}
