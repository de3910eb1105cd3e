package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"lend-agent/internal/chain"
	"lend-agent/internal/contracts"
	"lend-agent/internal/network"
	"lend-agent/internal/units"
	"lend-agent/pkg/errno"
	"lend-agent/pkg/wallet"
)

// DepositService 一次完整的存款流程
// 无状态: 每次运行都是对单笔存款的全新流程, 不在本地留任何痕迹。
type DepositService struct {
	backend   chain.Backend
	net       *network.Network
	account   *wallet.Account
	amount    decimal.Decimal
	fees      *chain.FeeEstimator
	builder   *chain.Builder
	sender    *chain.Sender
	watcher   *chain.Watcher
	converter *units.Converter
	allowance *AllowanceManager
	usdc      *contracts.ERC20
	ltoken    *contracts.ERC20
	core      *contracts.LendingCore
	log       *zap.Logger
}

// NewDepositService wires the transaction pipeline on top of a Backend
// (the proxy-retrying Gateway in production, a fake in tests).
func NewDepositService(backend chain.Backend, net *network.Network, account *wallet.Account, amount decimal.Decimal, log *zap.Logger) *DepositService {
	builder := chain.NewBuilder(backend, account.Address, log)
	sender := chain.NewSender(backend, account, log)
	watcher := chain.NewWatcher(backend, log)

	return &DepositService{
		backend:   backend,
		net:       net,
		account:   account,
		amount:    amount,
		fees:      chain.NewFeeEstimator(backend, log),
		builder:   builder,
		sender:    sender,
		watcher:   watcher,
		converter: units.NewConverter(contracts.NewTokenReader(backend)),
		allowance: NewAllowanceManager(builder, sender, watcher, account.Address, net.ExplorerURL, log),
		usdc:      contracts.NewERC20(net.USDCAddress, backend),
		ltoken:    contracts.NewERC20(net.LTokenAddress, backend),
		core:      contracts.NewLendingCore(net.CoreAddress),
		log:       log,
	}
}

// Run 执行存款: 余额预检 → 授权 → supply → 等待确认
func (s *DepositService) Run(ctx context.Context) error {
	usdcAddr := s.usdc.Address()

	amountIn, err := s.converter.ToBaseUnits(ctx, s.amount, &usdcAddr)
	if err != nil {
		return err
	}

	usdcBalance := s.readBalance(ctx, s.usdc)
	nativeBalance, err := s.backend.BalanceAt(ctx, s.account.Address, nil)
	if err != nil {
		return fmt.Errorf("fetch native balance: %w", err)
	}
	gasCost, err := s.fees.EstimateTxCost(ctx)
	if err != nil {
		return fmt.Errorf("estimate gas cost: %w", err)
	}

	s.logBalances(ctx, usdcBalance, nativeBalance, gasCost)

	if usdcBalance.Cmp(amountIn) < 0 {
		return fmt.Errorf("%w: need %s, have %s base units",
			errno.ErrInsufficientBalance, amountIn, usdcBalance)
	}
	if nativeBalance.Cmp(gasCost) < 0 {
		return fmt.Errorf("%w: need %s, have %s wei",
			errno.ErrInsufficientGasFunds, gasCost, nativeBalance)
	}

	// spender 是 lToken 合约: supply 时由它划转底层资产
	ok, err := s.allowance.EnsureAllowance(ctx, s.usdc, s.net.LTokenAddress, amountIn)
	if err != nil {
		return fmt.Errorf("ensure allowance: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: spender %s", errno.ErrAllowanceNotSet, s.net.LTokenAddress.Hex())
	}

	s.log.Info("⚙️ 组装并签名存款交易")
	req, err := s.builder.Prepare(ctx, nil)
	if err != nil {
		return fmt.Errorf("prepare supply: %w", err)
	}
	data, err := s.core.PackSupply(s.net.LTokenAddress, amountIn)
	if err != nil {
		return fmt.Errorf("encode supply: %w", err)
	}
	coreAddr := s.core.Address()
	req.To = &coreAddr
	req.Data = data

	txHash, err := s.sender.Send(ctx, req, false)
	if err != nil {
		return fmt.Errorf("send supply: %w", err)
	}

	if !s.watcher.Wait(ctx, txHash, s.net.ExplorerURL) {
		return fmt.Errorf("supply transaction %s did not confirm", txHash.Hex())
	}

	s.log.Info("✅ 存款成功", zap.String("amount", s.amount.String()))
	s.reportLTokenBalance(ctx)
	return nil
}

// readBalance 读取 ERC20 余额, 失败按 0 处理 (随后的余额预检会拦下来)
func (s *DepositService) readBalance(ctx context.Context, token *contracts.ERC20) *big.Int {
	balance, err := token.BalanceOf(ctx, s.account.Address)
	if err != nil {
		s.log.Error("获取 ERC20 余额失败, 按 0 处理", zap.Error(err))
		return new(big.Int)
	}
	return balance
}

func (s *DepositService) logBalances(ctx context.Context, usdcBalance, nativeBalance, gasCost *big.Int) {
	usdcAddr := s.usdc.Address()
	if human, err := s.converter.ToHumanUnits(ctx, usdcBalance, &usdcAddr); err == nil {
		s.log.Info("💰 USDC 余额", zap.String("balance", human.StringFixed(6)))
	}
	if human, err := s.converter.ToHumanUnits(ctx, gasCost, nil); err == nil {
		s.log.Info("⛽ 预估 gas 费用", zap.String("cost", human.StringFixed(8)))
	}
	if human, err := s.converter.ToHumanUnits(ctx, nativeBalance, nil); err == nil {
		s.log.Info("原生币余额", zap.String("balance", human.StringFixed(8)))
	}
}

// reportLTokenBalance 存款后的 lToken 余额, 读取失败只告警
func (s *DepositService) reportLTokenBalance(ctx context.Context) {
	balance, err := s.ltoken.BalanceOf(ctx, s.account.Address)
	if err != nil {
		s.log.Warn("获取 lToken 余额失败", zap.Error(err))
		return
	}
	ltokenAddr := s.ltoken.Address()
	human, err := s.converter.ToHumanUnits(ctx, balance, &ltokenAddr)
	if err != nil {
		s.log.Warn("换算 lToken 余额失败", zap.Error(err))
		return
	}
	s.log.Info("🏦 lToken 余额", zap.String("balance", human.StringFixed(6)))
}
