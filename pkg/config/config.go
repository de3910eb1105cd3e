package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"lend-agent/pkg/errno"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Chain  ChainConfig  `mapstructure:"chain"`
	Wallet WalletConfig `mapstructure:"wallet"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ChainConfig struct {
	Network string `mapstructure:"network"` // 网络名称 (linea, scroll)
	RpcURL  string `mapstructure:"rpc_url"` // 可选: 覆盖注册表里的 RPC 地址
	Proxy   string `mapstructure:"proxy"`   // 可选: host:port 格式的 HTTP 代理
}

type WalletConfig struct {
	PrivateKey string `mapstructure:"private_key"` // 十六进制私钥 (通常通过环境变量 WALLET_PRIVATE_KEY 传入)
	Amount     string `mapstructure:"amount"`      // 存入金额 (人类可读单位, 如 "12.5")
}

// Load reads the configuration file and environment variables into a Config.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name
	viper.AddConfigPath(".")      // optionally look for config in the working directory
	viper.AddConfigPath("./config")

	// 环境变量设置
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 设置默认值
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found; defaults and environment variables still apply
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("chain.network", "linea")
}

// Validate checks the loaded settings before anything touches the chain.
// A run that starts with a bad key or a bad amount can only waste gas.
func (c *Config) Validate() error {
	if c.Chain.Network == "" {
		return fmt.Errorf("%w: chain.network is empty", errno.ErrConfigInvalid)
	}

	key := strings.TrimPrefix(c.Wallet.PrivateKey, "0x")
	if len(key) != 64 {
		return fmt.Errorf("%w: wallet.private_key must be 32 bytes of hex", errno.ErrConfigInvalid)
	}
	for _, r := range key {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return fmt.Errorf("%w: wallet.private_key is not valid hex", errno.ErrConfigInvalid)
		}
	}

	amount, err := decimal.NewFromString(c.Wallet.Amount)
	if err != nil {
		return fmt.Errorf("%w: wallet.amount %q is not a number", errno.ErrConfigInvalid, c.Wallet.Amount)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: wallet.amount must be positive", errno.ErrConfigInvalid)
	}

	if c.Chain.Proxy != "" {
		if _, _, err := net.SplitHostPort(c.Chain.Proxy); err != nil {
			return fmt.Errorf("%w: chain.proxy must be host:port", errno.ErrConfigInvalid)
		}
	}

	return nil
}

// Amount returns the validated deposit amount in human units.
func (c *Config) Amount() decimal.Decimal {
	amount, _ := decimal.NewFromString(c.Wallet.Amount)
	return amount
}
