package txbuilder

import (
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// Signer 任何能对交易 message 签名的密钥材料（本地私钥、远程签名服务等）
type Signer interface {
	PublicKey() common.PublicKey
	Sign(message []byte) []byte
}

// KeypairSigner 本地 ed25519 私钥
type KeypairSigner struct {
	account types.Account
}

func NewKeypairSigner(account types.Account) KeypairSigner {
	return KeypairSigner{account: account}
}

func (k KeypairSigner) PublicKey() common.PublicKey { return k.account.PublicKey }

func (k KeypairSigner) Sign(message []byte) []byte { return k.account.Sign(message) }
