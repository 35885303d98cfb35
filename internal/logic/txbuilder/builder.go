// Package txbuilder 把多条指令按添加顺序组装为一笔原子交易，并完成签名。
package txbuilder

import (
	"errors"
	"fmt"

	"mm-client-sol/internal/types"

	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
)

var (
	ErrNoInstructions   = errors.New("txbuilder: transaction has no instructions")
	ErrNoSigner         = errors.New("txbuilder: primary signer is required")
	ErrEmptyBlockhash   = errors.New("txbuilder: recent blockhash is empty")
	ErrMissingSignature = errors.New("txbuilder: required signer not provided")
	ErrUnexpectedSigner = errors.New("txbuilder: signer not required by message")
)

// Blockhash 交易的新鲜度凭证
type Blockhash struct {
	Hash                 string
	LastValidBlockHeight uint64 // 超过该高度后交易不可能再上链
}

// Transaction 已签名、可直接提交的交易，只用于一次提交尝试
type Transaction struct {
	Raw       sdktypes.Transaction
	Signature string // 首个签名（付费者）的 base58，即 tx hash
	Blockhash Blockhash
}

// Builder 单次提交私有的指令累加器，不在调用之间共享，不加锁
type Builder struct {
	instructions []sdktypes.Instruction
}

func New() *Builder {
	return &Builder{}
}

// Add 追加一条指令，执行顺序与添加顺序一致
func (b *Builder) Add(ix sdktypes.Instruction) *Builder {
	b.instructions = append(b.instructions, ix)
	return b
}

// Len 已累积的指令数
func (b *Builder) Len() int { return len(b.instructions) }

// Build 组装 message 并由 payer 及 additional 签名。
// message 中每个 signer 账户都必须有对应的签名者，多余的签名者同样视为错误。
func (b *Builder) Build(blockhash Blockhash, payer Signer, additional ...Signer) (*Transaction, error) {
	if len(b.instructions) == 0 {
		return nil, ErrNoInstructions
	}
	if payer == nil {
		return nil, ErrNoSigner
	}
	if blockhash.Hash == "" {
		return nil, ErrEmptyBlockhash
	}

	instructions := make([]sdktypes.Instruction, len(b.instructions))
	copy(instructions, b.instructions)

	msg := sdktypes.NewMessage(sdktypes.NewMessageParam{
		FeePayer:        payer.PublicKey(),
		Instructions:    instructions,
		RecentBlockhash: blockhash.Hash,
	})
	raw, err := msg.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize message: %w", err)
	}

	signers := make(map[common.PublicKey]Signer, len(additional)+1)
	signers[payer.PublicKey()] = payer
	for _, s := range additional {
		if s == nil {
			continue
		}
		signers[s.PublicKey()] = s
	}

	required := int(msg.Header.NumRequireSignatures)
	signatures := make([]sdktypes.Signature, required)
	used := make(map[common.PublicKey]struct{}, required)
	for i := 0; i < required; i++ {
		key := msg.Accounts[i]
		s, ok := signers[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingSignature, key.ToBase58())
		}
		signatures[i] = sdktypes.Signature(s.Sign(raw))
		used[key] = struct{}{}
	}
	for key := range signers {
		if _, ok := used[key]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnexpectedSigner, key.ToBase58())
		}
	}

	return &Transaction{
		Raw: sdktypes.Transaction{
			Signatures: signatures,
			Message:    msg,
		},
		Signature: types.SignatureToBase58(signatures[0]),
		Blockhash: blockhash,
	}, nil
}
