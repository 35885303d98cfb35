package cypher

import (
	"encoding/binary"
	"encoding/hex"
	"testing"

	"mm-client-sol/internal/consts"
	"mm-client-sol/internal/logic/ixfactory"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey() common.PublicKey { return types.NewAccount().PublicKey }

func newTestProgram() *Program {
	return NewProgram(types.NewAccount().PublicKey, consts.SerumDexProgram, consts.TokenProgram)
}

func TestDiscriminator(t *testing.T) {
	d := Discriminator(ixInitCypherUser)
	assert.Equal(t, "e41a3ce5be4c886e", hex.EncodeToString(d[:]))
	d = Discriminator(ixDepositCollateral)
	assert.Equal(t, "9c838e7492f7a278", hex.EncodeToString(d[:]))
	d = Discriminator(ixInitOpenOrders)
	assert.Equal(t, "e6a74cb1a82c9b0d", hex.EncodeToString(d[:]))
}

func TestInitUser_Layout(t *testing.T) {
	p := newTestProgram()
	accounts := ixfactory.InitUserAccounts{Group: newKey(), User: newKey(), Owner: newKey()}

	ix, err := p.InitUser(accounts, 254)
	require.NoError(t, err)

	assert.Equal(t, p.ProgramID(), ix.ProgramID)
	require.Len(t, ix.Accounts, 5)
	assert.Equal(t, types.AccountMeta{PubKey: accounts.Group, IsWritable: true}, ix.Accounts[0])
	assert.Equal(t, types.AccountMeta{PubKey: accounts.User, IsWritable: true}, ix.Accounts[1])
	assert.Equal(t, types.AccountMeta{PubKey: accounts.Owner, IsSigner: true, IsWritable: true}, ix.Accounts[2])
	assert.Equal(t, consts.SystemProgram, ix.Accounts[3].PubKey)
	assert.Equal(t, consts.SysVarRent, ix.Accounts[4].PubKey)

	require.Len(t, ix.Data, 9)
	assert.Equal(t, "e41a3ce5be4c886e", hex.EncodeToString(ix.Data[:8]))
	assert.Equal(t, byte(254), ix.Data[8], "bump 紧随 discriminator")
}

func TestDepositCollateral_Layout(t *testing.T) {
	p := newTestProgram()
	accounts := ixfactory.DepositAccounts{
		Group: newKey(), User: newKey(), Vault: newKey(), Source: newKey(), Owner: newKey(),
	}

	ix, err := p.DepositCollateral(accounts, 1_500_000)
	require.NoError(t, err)
	require.Len(t, ix.Accounts, 6)

	signers := 0
	for _, meta := range ix.Accounts {
		if meta.IsSigner {
			signers++
			assert.Equal(t, accounts.Owner, meta.PubKey, "owner 应为唯一签名者")
		}
	}
	assert.Equal(t, 1, signers)

	assert.Equal(t, types.AccountMeta{PubKey: accounts.Group, IsWritable: true}, ix.Accounts[0])
	assert.Equal(t, types.AccountMeta{PubKey: accounts.User, IsWritable: true}, ix.Accounts[1])
	assert.Equal(t, types.AccountMeta{PubKey: accounts.Owner, IsSigner: true}, ix.Accounts[2])
	assert.Equal(t, types.AccountMeta{PubKey: accounts.Vault, IsWritable: true}, ix.Accounts[3])
	assert.Equal(t, types.AccountMeta{PubKey: accounts.Source, IsWritable: true}, ix.Accounts[4])
	assert.Equal(t, types.AccountMeta{PubKey: consts.TokenProgram}, ix.Accounts[5])

	require.Len(t, ix.Data, 16)
	assert.Equal(t, "9c838e7492f7a278", hex.EncodeToString(ix.Data[:8]))
	assert.Equal(t, uint64(1_500_000), binary.LittleEndian.Uint64(ix.Data[8:]))
}

func TestInitOpenOrders_Layout(t *testing.T) {
	p := newTestProgram()
	accounts := ixfactory.InitOpenOrdersAccounts{
		Group: newKey(), User: newKey(), Owner: newKey(),
		Market: newKey(), OpenOrders: newKey(), MarketAuthority: newKey(),
	}

	ix, err := p.InitOpenOrders(accounts)
	require.NoError(t, err)
	require.Len(t, ix.Accounts, 9)

	assert.Equal(t, types.AccountMeta{PubKey: accounts.MarketAuthority}, ix.Accounts[5], "market authority 只读")
	assert.Equal(t, types.AccountMeta{PubKey: accounts.OpenOrders, IsWritable: true}, ix.Accounts[4])
	assert.Equal(t, types.AccountMeta{PubKey: accounts.Owner, IsSigner: true, IsWritable: true}, ix.Accounts[2])
	assert.Equal(t, consts.SerumDexProgram, ix.Accounts[6].PubKey)
	assert.Equal(t, "e6a74cb1a82c9b0d", hex.EncodeToString(ix.Data))
}
