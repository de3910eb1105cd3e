package chain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"lend-agent/pkg/errno"
)

// TxRequest 待签名的交易参数
// Mutable while the caller fills in To/Data/Gas; once signed by the Sender it
// is never touched again. Fee fields are either GasPrice (legacy) or the
// GasFeeCap/GasTipCap pair, never both.
type TxRequest struct {
	From    common.Address
	Nonce   uint64
	ChainID *big.Int
	Value   *big.Int // nil 表示不转账原生币

	GasPrice  *big.Int // legacy
	GasFeeCap *big.Int // EIP-1559 maxFeePerGas
	GasTipCap *big.Int // EIP-1559 maxPriorityFeePerGas

	Gas  uint64 // 0 表示交给 Sender 估算
	To   *common.Address
	Data []byte
}

// Validate rejects a request carrying both fee styles. Upstream behavior for
// that combination is unspecified, so we refuse to guess which wins.
func (r *TxRequest) Validate() error {
	if r.GasPrice != nil && (r.GasFeeCap != nil || r.GasTipCap != nil) {
		return fmt.Errorf("%w", errno.ErrAmbiguousFeeFields)
	}
	if r.ChainID == nil {
		return fmt.Errorf("%w: transaction missing chain id", errno.ErrConfigInvalid)
	}
	return nil
}

func (r *TxRequest) dynamicFees() bool {
	return r.GasFeeCap != nil || r.GasTipCap != nil
}

func (r *TxRequest) value() *big.Int {
	if r.Value == nil {
		return new(big.Int)
	}
	return r.Value
}

// callMsg builds the eth_estimateGas payload. The legacy gas price is left
// out: estimation rejects it when EIP-1559 fields ride along.
func (r *TxRequest) callMsg() ethereum.CallMsg {
	return ethereum.CallMsg{
		From:      r.From,
		To:        r.To,
		Value:     r.value(),
		GasFeeCap: r.GasFeeCap,
		GasTipCap: r.GasTipCap,
		Data:      r.Data,
	}
}

// build assembles the unsigned go-ethereum transaction.
func (r *TxRequest) build() *types.Transaction {
	if r.dynamicFees() {
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   r.ChainID,
			Nonce:     r.Nonce,
			GasTipCap: r.GasTipCap,
			GasFeeCap: r.GasFeeCap,
			Gas:       r.Gas,
			To:        r.To,
			Value:     r.value(),
			Data:      r.Data,
		})
	}
	return types.NewTx(&types.LegacyTx{
		Nonce:    r.Nonce,
		GasPrice: r.GasPrice,
		Gas:      r.Gas,
		To:       r.To,
		Value:    r.value(),
		Data:     r.Data,
	})
}
