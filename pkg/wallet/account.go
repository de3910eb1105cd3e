package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account 由单个 secp256k1 私钥派生的账户
// The private key stays unexported and is deliberately excluded from String,
// so it can never leak into logs.
type Account struct {
	Address common.Address

	key *ecdsa.PrivateKey
}

// FromPrivateKey 从十六进制私钥派生账户 (EIP-55 地址)
func FromPrivateKey(hexKey string) (*Account, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return &Account{
		Address: crypto.PubkeyToAddress(key.PublicKey),
		key:     key,
	}, nil
}

// Key returns the signing key. Callers must not log or serialize it.
func (a *Account) Key() *ecdsa.PrivateKey {
	return a.key
}

func (a *Account) String() string {
	return a.Address.Hex()
}
