package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "lend-agent",
	Short: "稳定币借贷存款代理",
	Long: `把 USDC 存入借贷协议的自动化代理。
检查余额、按需 approve、签名并广播 supply 交易、等待链上确认。`,
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
