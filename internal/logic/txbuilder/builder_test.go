package txbuilder

import (
	"crypto/ed25519"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBlockhash() Blockhash {
	return Blockhash{Hash: sdktypes.NewAccount().PublicKey.ToBase58(), LastValidBlockHeight: 1000}
}

func memoIx(program common.PublicKey, signer common.PublicKey, tag byte) sdktypes.Instruction {
	return sdktypes.Instruction{
		ProgramID: program,
		Accounts:  []sdktypes.AccountMeta{{PubKey: signer, IsSigner: true, IsWritable: true}},
		Data:      []byte{tag},
	}
}

func TestBuild_PreservesOrder(t *testing.T) {
	payer := NewKeypairSigner(sdktypes.NewAccount())
	program := sdktypes.NewAccount().PublicKey

	b := New()
	for i := byte(0); i < 5; i++ {
		b.Add(memoIx(program, payer.PublicKey(), i))
	}
	assert.Equal(t, 5, b.Len())

	tx, err := b.Build(testBlockhash(), payer)
	require.NoError(t, err)

	require.Len(t, tx.Raw.Message.Instructions, 5)
	for i, ix := range tx.Raw.Message.Instructions {
		assert.Equal(t, []byte{byte(i)}, ix.Data, "指令顺序应与 Add 顺序一致")
	}
}

func TestBuild_Chaining(t *testing.T) {
	payer := NewKeypairSigner(sdktypes.NewAccount())
	program := sdktypes.NewAccount().PublicKey

	tx, err := New().
		Add(memoIx(program, payer.PublicKey(), 7)).
		Add(memoIx(program, payer.PublicKey(), 8)).
		Build(testBlockhash(), payer)
	require.NoError(t, err)
	assert.Len(t, tx.Raw.Message.Instructions, 2)
}

func TestBuild_RejectsEmpty(t *testing.T) {
	payer := NewKeypairSigner(sdktypes.NewAccount())
	_, err := New().Build(testBlockhash(), payer)
	assert.ErrorIs(t, err, ErrNoInstructions)
}

func TestBuild_InputValidation(t *testing.T) {
	payer := NewKeypairSigner(sdktypes.NewAccount())
	b := New().Add(memoIx(sdktypes.NewAccount().PublicKey, payer.PublicKey(), 1))

	_, err := b.Build(testBlockhash(), nil)
	assert.ErrorIs(t, err, ErrNoSigner)

	_, err = b.Build(Blockhash{}, payer)
	assert.ErrorIs(t, err, ErrEmptyBlockhash)
}

func TestBuild_SignaturesCoverMessage(t *testing.T) {
	payer := NewKeypairSigner(sdktypes.NewAccount())
	cosigner := NewKeypairSigner(sdktypes.NewAccount())
	program := sdktypes.NewAccount().PublicKey

	tx, err := New().
		Add(memoIx(program, payer.PublicKey(), 1)).
		Add(memoIx(program, cosigner.PublicKey(), 2)).
		Build(testBlockhash(), payer, cosigner)
	require.NoError(t, err)

	msg := tx.Raw.Message
	assert.Equal(t, payer.PublicKey(), msg.Accounts[0], "付费者排在首位")
	require.Equal(t, 2, int(msg.Header.NumRequireSignatures))
	require.Len(t, tx.Raw.Signatures, 2)

	raw, err := msg.Serialize()
	require.NoError(t, err)
	for i, sig := range tx.Raw.Signatures {
		key := msg.Accounts[i]
		assert.True(t, ed25519.Verify(key[:], raw, sig), "签名 %d 应可验证", i)
	}
	assert.Equal(t, base58.Encode(tx.Raw.Signatures[0]), tx.Signature)
}

func TestBuild_MissingCosigner(t *testing.T) {
	payer := NewKeypairSigner(sdktypes.NewAccount())
	cosigner := sdktypes.NewAccount().PublicKey

	_, err := New().
		Add(memoIx(sdktypes.NewAccount().PublicKey, cosigner, 1)).
		Build(testBlockhash(), payer)
	assert.ErrorIs(t, err, ErrMissingSignature)
}

func TestBuild_UnexpectedSigner(t *testing.T) {
	payer := NewKeypairSigner(sdktypes.NewAccount())
	stranger := NewKeypairSigner(sdktypes.NewAccount())

	_, err := New().
		Add(memoIx(sdktypes.NewAccount().PublicKey, payer.PublicKey(), 1)).
		Build(testBlockhash(), payer, stranger)
	assert.ErrorIs(t, err, ErrUnexpectedSigner)
}
