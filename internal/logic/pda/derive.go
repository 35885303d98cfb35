package pda

import (
	"github.com/blocto/solana-go-sdk/common"
)

// DeriveAssociatedTokenAddress 计算钱包在某 mint 下的关联代币账户（ATA）。
// seeds = (wallet, token program, mint)，owner = associated token program
func DeriveAssociatedTokenAddress(wallet, tokenProgram, mint, ataProgram common.PublicKey) (common.PublicKey, uint8, error) {
	return FindProgramAddress([][]byte{wallet[:], tokenProgram[:], mint[:]}, ataProgram)
}

// DeriveUserAddress 计算协议用户账户。seeds = (group, wallet)，owner = 交易程序
func DeriveUserAddress(group, wallet, program common.PublicKey) (common.PublicKey, uint8, error) {
	return FindProgramAddress([][]byte{group[:], wallet[:]}, program)
}

// DeriveMarketAuthority 计算订单簿市场的 authority。seeds = (market)，owner = 订单簿程序
func DeriveMarketAuthority(market, dexProgram common.PublicKey) (common.PublicKey, uint8, error) {
	return FindProgramAddress([][]byte{market[:]}, dexProgram)
}

// Programs 派生所需的程序与 mint 地址集合
type Programs struct {
	Cypher          common.PublicKey // 交易程序
	Dex             common.PublicKey // 订单簿程序
	Token           common.PublicKey // SPL Token 程序
	AssociatedToken common.PublicKey // ATA 程序
	QuoteMint       common.PublicKey // 保证金计价币
}

// Deriver 绑定一组程序地址的派生器，值类型，可在多个 goroutine 间共享
type Deriver struct {
	programs Programs
}

func NewDeriver(programs Programs) Deriver {
	return Deriver{programs: programs}
}

func (d Deriver) Programs() Programs { return d.programs }

// QuoteTokenAddress 钱包的 quote mint ATA
func (d Deriver) QuoteTokenAddress(wallet common.PublicKey) (common.PublicKey, error) {
	addr, _, err := DeriveAssociatedTokenAddress(wallet, d.programs.Token, d.programs.QuoteMint, d.programs.AssociatedToken)
	return addr, err
}

// UserAddress 协议用户账户地址及 bump（init_user 指令需要 bump）
func (d Deriver) UserAddress(group, wallet common.PublicKey) (common.PublicKey, uint8, error) {
	return DeriveUserAddress(group, wallet, d.programs.Cypher)
}

// MarketAuthority 订单簿市场 authority
func (d Deriver) MarketAuthority(market common.PublicKey) (common.PublicKey, error) {
	addr, _, err := DeriveMarketAuthority(market, d.programs.Dex)
	return addr, err
}
