package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"lend-agent/internal/chain"
	"lend-agent/internal/contracts"
)

// 交易流水线的最小接口, 生产环境由 internal/chain 的组件满足
type txBuilder interface {
	Prepare(ctx context.Context, value *big.Int) (*chain.TxRequest, error)
}

type txSender interface {
	Send(ctx context.Context, req *chain.TxRequest, skipGasEstimate bool) (common.Hash, error)
}

type txWatcher interface {
	Wait(ctx context.Context, txHash common.Hash, explorerURL string) bool
}

type allowanceToken interface {
	Address() common.Address
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
}

// AllowanceManager ERC20 授权管理
// 流程: 读取当前额度 → 不足则 approve → 等待确认 → 复核。
type AllowanceManager struct {
	builder     txBuilder
	sender      txSender
	watcher     txWatcher
	owner       common.Address
	explorerURL string
	log         *zap.Logger
}

func NewAllowanceManager(builder txBuilder, sender txSender, watcher txWatcher, owner common.Address, explorerURL string, log *zap.Logger) *AllowanceManager {
	return &AllowanceManager{
		builder:     builder,
		sender:      sender,
		watcher:     watcher,
		owner:       owner,
		explorerURL: explorerURL,
		log:         log,
	}
}

// EnsureAllowance makes sure spender may move at least amount of the token.
// Returns true without sending anything when the current allowance already
// covers it. An error means the approve could not even be attempted; a plain
// false means it was attempted and did not take effect.
func (m *AllowanceManager) EnsureAllowance(ctx context.Context, token allowanceToken, spender common.Address, amount *big.Int) (bool, error) {
	current := m.readAllowance(ctx, token, spender)
	if current.Cmp(amount) >= 0 {
		m.log.Info("✅ 授权已足够, 跳过 approve",
			zap.String("allowance", current.String()),
			zap.String("required", amount.String()))
		return true, nil
	}

	m.log.Info("💸 需要 approve",
		zap.String("token", token.Address().Hex()),
		zap.String("spender", spender.Hex()),
		zap.String("amount", amount.String()))

	req, err := m.builder.Prepare(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("prepare approve: %w", err)
	}
	data, err := contracts.PackApprove(spender, amount)
	if err != nil {
		return false, fmt.Errorf("encode approve: %w", err)
	}
	to := token.Address()
	req.To = &to
	req.Data = data

	txHash, err := m.sender.Send(ctx, req, false)
	if err != nil {
		return false, fmt.Errorf("send approve: %w", err)
	}
	m.log.Info("📝 approve 交易已发送", zap.String("tx_hash", txHash.Hex()))

	if !m.watcher.Wait(ctx, txHash, m.explorerURL) {
		m.log.Error("❌ approve 交易未确认")
		return false, nil
	}

	// 复核: 确认后的额度必须覆盖请求值
	newAllowance, err := token.Allowance(ctx, m.owner, spender)
	if err != nil {
		// 写已经确认, 只是复核读取失败: 乐观地视为成功
		m.log.Warn("⚠️ approve 已确认但复核读取失败, 按成功处理", zap.Error(err))
		return true, nil
	}
	if newAllowance.Cmp(amount) < 0 {
		m.log.Warn("⚠️ approve 已确认但额度仍不足",
			zap.String("allowance", newAllowance.String()),
			zap.String("required", amount.String()))
		return false, nil
	}

	m.log.Info("✅ 授权已生效", zap.String("allowance", newAllowance.String()))
	return true, nil
}

// readAllowance 读取当前额度, 读取失败按 0 处理 (会触发一次 approve)
func (m *AllowanceManager) readAllowance(ctx context.Context, token allowanceToken, spender common.Address) *big.Int {
	allowance, err := token.Allowance(ctx, m.owner, spender)
	if err != nil {
		m.log.Error("获取 allowance 失败, 按 0 处理", zap.Error(err))
		return new(big.Int)
	}
	return allowance
}
