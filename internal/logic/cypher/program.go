// Package cypher 实现 cypher 交易程序的指令契约：Anchor discriminator + borsh 参数 + 固定账户布局。
package cypher

import (
	"crypto/sha256"
	"fmt"

	"mm-client-sol/internal/consts"
	"mm-client-sol/internal/logic/ixfactory"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"
)

// Anchor 指令名
const (
	ixInitCypherUser    = "init_cypher_user"
	ixDepositCollateral = "deposit_collateral"
	ixInitOpenOrders    = "init_open_orders"
)

var (
	initCypherUserDiscriminator    = Discriminator(ixInitCypherUser)
	depositCollateralDiscriminator = Discriminator(ixDepositCollateral)
	initOpenOrdersDiscriminator    = Discriminator(ixInitOpenOrders)
)

// Discriminator Anchor 指令前缀：sha256("global:<name>")[:8]
func Discriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

type initCypherUserArgs struct {
	Bump uint8
}

type depositCollateralArgs struct {
	Amount uint64
}

// Program cypher 程序的指令构造器，实现 ixfactory.Contract
type Program struct {
	programID    common.PublicKey
	dexProgram   common.PublicKey
	tokenProgram common.PublicKey
}

var _ ixfactory.Contract = (*Program)(nil)

func NewProgram(programID, dexProgram, tokenProgram common.PublicKey) *Program {
	return &Program{
		programID:    programID,
		dexProgram:   dexProgram,
		tokenProgram: tokenProgram,
	}
}

func (p *Program) ProgramID() common.PublicKey { return p.programID }

func encode(discriminator [8]byte, args interface{}) ([]byte, error) {
	if args == nil {
		return discriminator[:], nil
	}
	payload, err := borsh.Serialize(args)
	if err != nil {
		return nil, fmt.Errorf("borsh serialize: %w", err)
	}
	data := make([]byte, 0, len(discriminator)+len(payload))
	data = append(data, discriminator[:]...)
	return append(data, payload...), nil
}

// InitUser 账户布局：
//
// #0 - cypher group
// #1 - cypher user（PDA，待创建）        writable
// #2 - owner（签名者兼付费者）           writable, signer
// #3 - System Program
// #4 - Rent sysvar
func (p *Program) InitUser(accounts ixfactory.InitUserAccounts, bump uint8) (types.Instruction, error) {
	data, err := encode(initCypherUserDiscriminator, initCypherUserArgs{Bump: bump})
	if err != nil {
		return types.Instruction{}, err
	}
	return types.Instruction{
		ProgramID: p.programID,
		Accounts: []types.AccountMeta{
			{PubKey: accounts.Group, IsSigner: false, IsWritable: true},
			{PubKey: accounts.User, IsSigner: false, IsWritable: true},
			{PubKey: accounts.Owner, IsSigner: true, IsWritable: true},
			{PubKey: consts.SystemProgram, IsSigner: false, IsWritable: false},
			{PubKey: consts.SysVarRent, IsSigner: false, IsWritable: false},
		},
		Data: data,
	}, nil
}

// DepositCollateral 账户布局：
//
// #0 - cypher group                      writable
// #1 - cypher user                       writable
// #2 - owner                             signer（唯一签名者）
// #3 - cypher pc vault                   writable
// #4 - 资金来源 token 账户                 writable
// #5 - Token Program
func (p *Program) DepositCollateral(accounts ixfactory.DepositAccounts, amount uint64) (types.Instruction, error) {
	data, err := encode(depositCollateralDiscriminator, depositCollateralArgs{Amount: amount})
	if err != nil {
		return types.Instruction{}, err
	}
	return types.Instruction{
		ProgramID: p.programID,
		Accounts: []types.AccountMeta{
			{PubKey: accounts.Group, IsSigner: false, IsWritable: true},
			{PubKey: accounts.User, IsSigner: false, IsWritable: true},
			{PubKey: accounts.Owner, IsSigner: true, IsWritable: false},
			{PubKey: accounts.Vault, IsSigner: false, IsWritable: true},
			{PubKey: accounts.Source, IsSigner: false, IsWritable: true},
			{PubKey: p.tokenProgram, IsSigner: false, IsWritable: false},
		},
		Data: data,
	}, nil
}

// InitOpenOrders 账户布局：
//
// #0 - cypher group
// #1 - cypher user                       writable
// #2 - owner（签名者兼付费者）           writable, signer
// #3 - market
// #4 - open orders（待创建）             writable
// #5 - market authority（PDA，只读）
// #6 - DEX Program
// #7 - System Program
// #8 - Rent sysvar
func (p *Program) InitOpenOrders(accounts ixfactory.InitOpenOrdersAccounts) (types.Instruction, error) {
	data, err := encode(initOpenOrdersDiscriminator, nil)
	if err != nil {
		return types.Instruction{}, err
	}
	return types.Instruction{
		ProgramID: p.programID,
		Accounts: []types.AccountMeta{
			{PubKey: accounts.Group, IsSigner: false, IsWritable: false},
			{PubKey: accounts.User, IsSigner: false, IsWritable: true},
			{PubKey: accounts.Owner, IsSigner: true, IsWritable: true},
			{PubKey: accounts.Market, IsSigner: false, IsWritable: false},
			{PubKey: accounts.OpenOrders, IsSigner: false, IsWritable: true},
			{PubKey: accounts.MarketAuthority, IsSigner: false, IsWritable: false},
			{PubKey: p.dexProgram, IsSigner: false, IsWritable: false},
			{PubKey: consts.SystemProgram, IsSigner: false, IsWritable: false},
			{PubKey: consts.SysVarRent, IsSigner: false, IsWritable: false},
		},
		Data: data,
	}, nil
}
