package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lend-agent/internal/chain"
	"lend-agent/internal/network"
	"lend-agent/internal/service"
	"lend-agent/pkg/config"
	"lend-agent/pkg/errno"
	"lend-agent/pkg/logger"
	"lend-agent/pkg/wallet"
)

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "执行一次存款流程",
	Long:  `加载配置, 检查余额和授权, 把配置的 USDC 金额存入借贷协议并等待确认。`,
	Run: func(cmd *cobra.Command, args []string) {
		env, err := buildEnv(cmd.Context())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer logger.Sync(env.log)

		env.log.Info("🚀 启动存款流程",
			zap.String("network", env.net.Name),
			zap.String("account", env.account.Address.Hex()))

		svc := service.NewDepositService(env.gateway, env.net, env.account, env.cfg.Amount(), env.log)
		if err := svc.Run(cmd.Context()); err != nil {
			code, msg := errno.Decode(err)
			env.log.Error("❌ 存款失败", zap.Int("code", code), zap.String("reason", msg), zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(depositCmd)
}

// runtime 一次运行所需的全部依赖
type runtime struct {
	cfg     *config.Config
	log     *zap.Logger
	net     *network.Network
	account *wallet.Account
	gateway *chain.Gateway
}

func buildEnv(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, err
	}

	net, err := network.FromName(cfg.Chain.Network)
	if err != nil {
		return nil, err
	}
	if cfg.Chain.RpcURL != "" {
		net.RpcURL = cfg.Chain.RpcURL
	}
	if net.IsPoA {
		log.Debug("PoA 网络", zap.String("network", net.Name))
	}

	account, err := wallet.FromPrivateKey(cfg.Wallet.PrivateKey)
	if err != nil {
		return nil, err
	}

	gateway, err := chain.NewGateway(ctx, chain.GatewayConfig{
		RpcURL:          net.RpcURL,
		ProxyAddr:       cfg.Chain.Proxy,
		FallbackNoProxy: true,
	}, log)
	if err != nil {
		return nil, err
	}

	return &runtime{cfg: cfg, log: log, net: net, account: account, gateway: gateway}, nil
}
