package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const lendingCoreJSON = `[
	{"inputs":[{"name":"lToken","type":"address"},{"name":"uAmount","type":"uint256"}],"name":"supply","outputs":[{"name":"","type":"uint256"}],"stateMutability":"payable","type":"function"}
]`

var lendingCoreABI = mustParseABI(lendingCoreJSON)

// LendingCore 借贷协议核心合约的入口 (supply)
type LendingCore struct {
	addr common.Address
}

func NewLendingCore(addr common.Address) *LendingCore {
	return &LendingCore{addr: addr}
}

func (c *LendingCore) Address() common.Address {
	return c.addr
}

// PackSupply encodes supply(asset, amount) calldata.
func (c *LendingCore) PackSupply(asset common.Address, amount *big.Int) ([]byte, error) {
	return lendingCoreABI.Pack("supply", asset, amount)
}
