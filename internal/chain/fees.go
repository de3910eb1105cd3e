package chain

import (
	"context"
	"fmt"
	"math/big"

	"go.uber.org/zap"
)

const (
	// previewGasUnits 预检用的固定 gas 数量。只用来估算一笔交易大概要花多少
	// 钱，真正上链的 gas limit 由 Sender 单独估算。
	previewGasUnits = 70_000

	feeHistoryBlocks = 10
)

var feeHistoryPercentiles = []float64{50}

// FeeSuggestion EIP-1559 费率建议: 最近一个区块的 base fee 加节点建议的小费
type FeeSuggestion struct {
	BaseFee     *big.Int
	PriorityFee *big.Int
}

// FeeEstimator 费率估算
type FeeEstimator struct {
	backend Backend
	log     *zap.Logger
}

func NewFeeEstimator(backend Backend, log *zap.Logger) *FeeEstimator {
	return &FeeEstimator{backend: backend, log: log}
}

// EstimateFees 走 EIP-1559 主路径: 取最近 10 个区块的费率历史 (50 分位),
// 用最新 base fee, 小费取节点建议值。
func (e *FeeEstimator) EstimateFees(ctx context.Context) (*FeeSuggestion, error) {
	hist, err := e.backend.FeeHistory(ctx, feeHistoryBlocks, nil, feeHistoryPercentiles)
	if err != nil {
		return nil, fmt.Errorf("fetch fee history: %w", err)
	}
	if len(hist.BaseFee) == 0 {
		return nil, fmt.Errorf("fee history carries no base fees")
	}
	baseFee := hist.BaseFee[len(hist.BaseFee)-1]

	tip, err := e.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch priority fee: %w", err)
	}

	return &FeeSuggestion{BaseFee: baseFee, PriorityFee: tip}, nil
}

// EstimateLegacyGasPrice legacy 费率市场的单一 gas price
func (e *FeeEstimator) EstimateLegacyGasPrice(ctx context.Context) (*big.Int, error) {
	return e.backend.SuggestGasPrice(ctx)
}

// EstimateTxCost 预估一笔交易的总费用 (wei)，用于余额预检。
// EIP-1559 路径失败时回退到 legacy gas price。
func (e *FeeEstimator) EstimateTxCost(ctx context.Context) (*big.Int, error) {
	fees, err := e.EstimateFees(ctx)
	if err != nil {
		e.log.Warn("费率估算失败, 回退到 legacy gas price", zap.Error(err))
		gasPrice, err := e.EstimateLegacyGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch legacy gas price: %w", err)
		}
		return new(big.Int).Mul(gasPrice, big.NewInt(previewGasUnits)), nil
	}

	perGas := new(big.Int).Add(fees.BaseFee, fees.PriorityFee)
	return perGas.Mul(perGas, big.NewInt(previewGasUnits)), nil
}
