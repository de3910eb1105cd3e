package network

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"lend-agent/pkg/errno"
)

// Network 网络档案: 链参数 + 本项目用到的合约地址
// Loaded once at startup and treated as immutable afterwards.
type Network struct {
	Name        string
	ChainID     int64
	RpcURL      string
	IsPoA       bool
	ExplorerURL string

	USDCAddress   common.Address
	CoreAddress   common.Address
	LTokenAddress common.Address
}

// registry 内置网络注册表 (原始数据来自 LayerBank 部署)
var registry = []Network{
	{
		Name:          "linea",
		ChainID:       59144,
		RpcURL:        "https://rpc.linea.build",
		IsPoA:         true,
		ExplorerURL:   "https://lineascan.build",
		USDCAddress:   common.HexToAddress("0x176211869cA2b568f2A7D4EE941E073a821EE1ff"),
		CoreAddress:   common.HexToAddress("0x009a0b7C38B542208936F1179151CD08E2943833"),
		LTokenAddress: common.HexToAddress("0x2aD69A0Cf272B9941c7dDcaDa7B0273E9046C4B0"),
	},
	{
		Name:          "scroll",
		ChainID:       534352,
		RpcURL:        "https://rpc.scroll.io",
		IsPoA:         true,
		ExplorerURL:   "https://scrollscan.com",
		USDCAddress:   common.HexToAddress("0x06eFdBFf2a14a7c8E15944D1F4A48F9F95F663A4"),
		CoreAddress:   common.HexToAddress("0xEC53c830f4444a8A56455c6836b5D2aA794289Aa"),
		LTokenAddress: common.HexToAddress("0x333D8b480BDB25eA7Be4Dd87EEB359988CE1b30D"),
	},
}

// FromName looks up a network by its registry name.
func FromName(name string) (*Network, error) {
	for i := range registry {
		if registry[i].Name == name {
			n := registry[i]
			return &n, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", errno.ErrNetworkUnknown, name)
}

// FromChainID looks up a network by chain id.
func FromChainID(chainID int64) (*Network, error) {
	for i := range registry {
		if registry[i].ChainID == chainID {
			n := registry[i]
			return &n, nil
		}
	}
	return nil, fmt.Errorf("%w: chain id %d", errno.ErrNetworkUnknown, chainID)
}

// Names returns all registered network names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for i := range registry {
		names = append(names, registry[i].Name)
	}
	return names
}
