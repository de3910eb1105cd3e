package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lend-agent/internal/contracts"
	"lend-agent/internal/units"
	"lend-agent/pkg/logger"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "查询账户的 USDC / lToken / 原生币余额",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		env, err := buildEnv(ctx)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		defer logger.Sync(env.log)

		converter := units.NewConverter(contracts.NewTokenReader(env.gateway))

		usdc := contracts.NewERC20(env.net.USDCAddress, env.gateway)
		ltoken := contracts.NewERC20(env.net.LTokenAddress, env.gateway)

		if balance, err := usdc.BalanceOf(ctx, env.account.Address); err != nil {
			env.log.Error("获取 USDC 余额失败", zap.Error(err))
		} else {
			addr := env.net.USDCAddress
			if human, err := converter.ToHumanUnits(ctx, balance, &addr); err == nil {
				env.log.Info("💰 USDC", zap.String("balance", human.StringFixed(6)))
			}
		}

		if balance, err := ltoken.BalanceOf(ctx, env.account.Address); err != nil {
			env.log.Error("获取 lToken 余额失败", zap.Error(err))
		} else {
			addr := env.net.LTokenAddress
			if human, err := converter.ToHumanUnits(ctx, balance, &addr); err == nil {
				env.log.Info("🏦 lToken", zap.String("balance", human.StringFixed(6)))
			}
		}

		if balance, err := env.gateway.BalanceAt(ctx, env.account.Address, nil); err != nil {
			env.log.Error("获取原生币余额失败", zap.Error(err))
		} else if human, err := converter.ToHumanUnits(ctx, balance, nil); err == nil {
			env.log.Info("⛽ 原生币", zap.String("balance", human.StringFixed(8)))
		}
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}
