package types

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/mr-tron/base58"
)

// TryPubkeyFromBase58 解析 base58 字符串为 PublicKey，失败时返回 error（用于配置、命令行等不信任输入）。
// common.PublicKeyFromString 会静默吞掉解码错误，因此这里单独校验长度。
func TryPubkeyFromBase58(s string) (common.PublicKey, error) {
	data, err := base58.Decode(s)
	if err != nil {
		return common.PublicKey{}, fmt.Errorf("failed to decode base58 pubkey %q: %w", s, err)
	}
	if len(data) != common.PublicKeyLength {
		return common.PublicKey{}, fmt.Errorf("invalid pubkey length: got %d, want %d, input=%q", len(data), common.PublicKeyLength, s)
	}
	var p common.PublicKey
	copy(p[:], data)
	return p, nil
}

// PubkeyFromBase58 用于常量初始化，解析失败直接 panic
func PubkeyFromBase58(s string) common.PublicKey {
	p, err := TryPubkeyFromBase58(s)
	if err != nil {
		panic(err)
	}
	return p
}

// OptionalPubkey 空字符串返回零地址
func OptionalPubkey(s string) (common.PublicKey, error) {
	if s == "" {
		return common.PublicKey{}, nil
	}
	return TryPubkeyFromBase58(s)
}

// SignatureToBase58 交易签名的 base58 表示（即 tx hash）
func SignatureToBase58(sig []byte) string {
	return base58.Encode(sig)
}
