// Package ixfactory 把协议动作（注册用户、存入保证金、初始化订单账户）映射为未签名的指令。
// 不访问网络，也不校验链上状态，指令内容由链上程序在执行时校验。
package ixfactory

import (
	"fmt"

	"mm-client-sol/internal/logic/pda"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

const (
	ActionInitUser          = "init_user"
	ActionDepositCollateral = "deposit_collateral"
	ActionInitOpenOrders    = "init_open_orders"
)

type Factory struct {
	contract Contract
	deriver  pda.Deriver
	hook     Hook
}

func NewFactory(contract Contract, deriver pda.Deriver, hook Hook) *Factory {
	if hook == nil {
		hook = NopHook{}
	}
	return &Factory{
		contract: contract,
		deriver:  deriver,
		hook:     hook,
	}
}

// Deriver 返回工厂使用的地址派生器
func (f *Factory) Deriver() pda.Deriver { return f.deriver }

// InitUser 派生 owner 在 group 下的用户账户，并构造创建该账户的指令。
// 返回的地址即指令中引用的用户账户。
func (f *Factory) InitUser(group, owner common.PublicKey) (types.Instruction, common.PublicKey, error) {
	user, bump, err := f.deriver.UserAddress(group, owner)
	if err != nil {
		return types.Instruction{}, common.PublicKey{}, fmt.Errorf("derive user address: %w", err)
	}

	ix, err := f.contract.InitUser(InitUserAccounts{
		Group: group,
		User:  user,
		Owner: owner,
	}, bump)
	if err != nil {
		return types.Instruction{}, common.PublicKey{}, fmt.Errorf("build %s: %w", ActionInitUser, err)
	}

	f.hook.OnInstruction(ActionInitUser, ix)
	return ix, user, nil
}

// DepositCollateral 从 source 转入 amount 到协议金库
func (f *Factory) DepositCollateral(accounts DepositAccounts, amount uint64) (types.Instruction, error) {
	ix, err := f.contract.DepositCollateral(accounts, amount)
	if err != nil {
		return types.Instruction{}, fmt.Errorf("build %s: %w", ActionDepositCollateral, err)
	}

	f.hook.OnInstruction(ActionDepositCollateral, ix)
	return ix, nil
}

// InitOpenOrders 创建指定市场的订单跟踪账户，market authority 由本方法派生
func (f *Factory) InitOpenOrders(group, user, owner, market, openOrders common.PublicKey) (types.Instruction, error) {
	authority, err := f.deriver.MarketAuthority(market)
	if err != nil {
		return types.Instruction{}, fmt.Errorf("derive market authority: %w", err)
	}

	ix, err := f.contract.InitOpenOrders(InitOpenOrdersAccounts{
		Group:           group,
		User:            user,
		Owner:           owner,
		Market:          market,
		OpenOrders:      openOrders,
		MarketAuthority: authority,
	})
	if err != nil {
		return types.Instruction{}, fmt.Errorf("build %s: %w", ActionInitOpenOrders, err)
	}

	f.hook.OnInstruction(ActionInitOpenOrders, ix)
	return ix, nil
}
