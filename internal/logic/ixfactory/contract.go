package ixfactory

import (
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// InitUserAccounts init_user 指令所需账户
type InitUserAccounts struct {
	Group common.PublicKey
	User  common.PublicKey // 派生得到的协议用户账户
	Owner common.PublicKey // 钱包，签名者兼付费者
}

// DepositAccounts deposit_collateral 指令所需账户
type DepositAccounts struct {
	Group  common.PublicKey
	User   common.PublicKey
	Vault  common.PublicKey // 协议持有的保证金金库
	Source common.PublicKey // 资金来源 token 账户
	Owner  common.PublicKey // 唯一签名者
}

// InitOpenOrdersAccounts init_open_orders 指令所需账户
type InitOpenOrdersAccounts struct {
	Group           common.PublicKey
	User            common.PublicKey
	Owner           common.PublicKey
	Market          common.PublicKey
	OpenOrders      common.PublicKey
	MarketAuthority common.PublicKey // 只读引用
}

// Contract 目标程序的指令契约：账户顺序、读写/签名标记、参数编码均由实现方负责，
// 必须与链上程序逐位一致。Factory 只依赖该接口，测试时可替换为假实现。
type Contract interface {
	ProgramID() common.PublicKey
	InitUser(accounts InitUserAccounts, bump uint8) (types.Instruction, error)
	DepositCollateral(accounts DepositAccounts, amount uint64) (types.Instruction, error)
	InitOpenOrders(accounts InitOpenOrdersAccounts) (types.Instruction, error)
}
