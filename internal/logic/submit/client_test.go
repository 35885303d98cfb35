package submit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mm-client-sol/internal/logic/txbuilder"
	"mm-client-sol/internal/rpcclient"

	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNetwork 模拟节点：按顺序返回预设的签名状态，最后一个状态会一直重复
type fakeNetwork struct {
	mu        sync.Mutex
	sendErr   error
	statuses  []*rpcclient.SignatureStatus
	statusErr error
	height    uint64
	sent      int
	polls     int
}

func (f *fakeNetwork) SendTransaction(ctx context.Context, tx sdktypes.Transaction) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent++
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return "sig", nil
}

func (f *fakeNetwork) GetSignatureStatus(ctx context.Context, signature string) (*rpcclient.SignatureStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if len(f.statuses) == 0 {
		return nil, nil
	}
	s := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return s, nil
}

func (f *fakeNetwork) GetBlockHeight(ctx context.Context, commitment rpcclient.Commitment) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.height, nil
}

func newTestClient(net *fakeNetwork) *Client {
	return NewClient(net, Config{
		Commitment:     rpcclient.CommitmentConfirmed,
		PollInterval:   5 * time.Millisecond,
		ConfirmTimeout: 80 * time.Millisecond,
	})
}

func testTx() *txbuilder.Transaction {
	return &txbuilder.Transaction{
		Signature: "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW",
		Blockhash: txbuilder.Blockhash{Hash: "hash", LastValidBlockHeight: 100},
	}
}

func TestSubmit_Committed(t *testing.T) {
	net := &fakeNetwork{
		height: 10,
		statuses: []*rpcclient.SignatureStatus{
			{Slot: 7, ConfirmationStatus: rpcclient.CommitmentProcessed},
			{Slot: 8, ConfirmationStatus: rpcclient.CommitmentConfirmed},
		},
	}

	res, err := newTestClient(net).Submit(context.Background(), testTx(), "")
	require.NoError(t, err)
	assert.Equal(t, StatusCommitted, res.Status)
	assert.Equal(t, uint64(8), res.Slot, "processed 不满足 confirmed，应等到下一次")
	assert.Equal(t, 1, net.sent, "只发送一次")
}

func TestSubmit_TransportFailure(t *testing.T) {
	net := &fakeNetwork{sendErr: errors.New("dial tcp 127.0.0.1:8899: connect: connection refused")}

	res, err := newTestClient(net).Submit(context.Background(), testTx(), "")
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, IsRejected(err), "传输错误不能被当作程序拒绝")
	assert.False(t, IsIndeterminate(err))
	assert.Equal(t, StatusTransportFailed, res.Status)
	assert.Equal(t, 0, net.polls, "发送失败不轮询")
}

func TestSubmit_PreflightRejected(t *testing.T) {
	net := &fakeNetwork{sendErr: &rpcclient.RPCError{
		Code:    rpcclient.CodeSendTransactionPreflightFailure,
		Message: "Transaction simulation failed: Error processing Instruction 0: custom program error: 0x1",
		Data:    map[string]interface{}{"err": map[string]interface{}{"InstructionError": []interface{}{0.0, "InsufficientFunds"}}},
	}}

	res, err := newTestClient(net).Submit(context.Background(), testTx(), "")
	assert.True(t, IsRejected(err))
	assert.False(t, IsTransport(err))
	assert.Equal(t, StatusRejected, res.Status)
}

func TestSubmit_PreflightBlockhashNotFound(t *testing.T) {
	net := &fakeNetwork{sendErr: &rpcclient.RPCError{
		Code:    rpcclient.CodeSendTransactionPreflightFailure,
		Message: "Transaction simulation failed: Blockhash not found",
		Data:    map[string]interface{}{"err": "BlockhashNotFound"},
	}}

	_, err := newTestClient(net).Submit(context.Background(), testTx(), "")
	assert.True(t, IsTransport(err), "blockhash 过期可换新重试")
	assert.ErrorIs(t, err, ErrBlockhashExpired)
}

func TestSubmit_OnChainRejected(t *testing.T) {
	net := &fakeNetwork{
		height: 10,
		statuses: []*rpcclient.SignatureStatus{
			{Slot: 9, ConfirmationStatus: rpcclient.CommitmentProcessed, Err: map[string]interface{}{"InstructionError": []interface{}{0.0, map[string]interface{}{"Custom": 6000.0}}}},
		},
	}

	res, err := newTestClient(net).Submit(context.Background(), testTx(), "")
	assert.True(t, IsRejected(err))
	assert.False(t, IsTransport(err))
	assert.False(t, IsIndeterminate(err))
	assert.Equal(t, StatusRejected, res.Status)
	assert.Equal(t, uint64(9), res.Slot)
}

func TestSubmit_NeverConfirmedIsIndeterminate(t *testing.T) {
	// 节点一直不知道该签名，blockhash 也未过期
	net := &fakeNetwork{height: 10}

	res, err := newTestClient(net).Submit(context.Background(), testTx(), "")
	assert.True(t, IsIndeterminate(err))
	assert.False(t, IsTransport(err), "超时不是确定的失败")
	assert.ErrorIs(t, err, ErrConfirmTimeout)
	assert.Equal(t, StatusIndeterminate, res.Status)
	assert.Equal(t, uint64(100), res.LastValidBlockHeight)
}

func TestSubmit_StatusErrorsKeepPolling(t *testing.T) {
	net := &fakeNetwork{height: 10, statusErr: errors.New("502 bad gateway")}

	_, err := newTestClient(net).Submit(context.Background(), testTx(), "")
	assert.True(t, IsIndeterminate(err))
	assert.Greater(t, net.polls, 1)
}

func TestSubmit_CallerAbandons(t *testing.T) {
	net := &fakeNetwork{height: 10}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewClient(net, Config{PollInterval: 5 * time.Millisecond, ConfirmTimeout: time.Minute})
	res, err := c.Submit(ctx, testTx(), rpcclient.CommitmentFinalized)
	assert.True(t, IsIndeterminate(err))
	assert.ErrorIs(t, err, ErrAbandoned)
	assert.Equal(t, StatusIndeterminate, res.Status)
}

func TestSubmit_BlockhashExpired(t *testing.T) {
	net := &fakeNetwork{height: 101}

	res, err := newTestClient(net).Submit(context.Background(), testTx(), "")
	assert.True(t, IsTransport(err), "过期且未上链是确定的失败")
	assert.ErrorIs(t, err, ErrBlockhashExpired)
	assert.Equal(t, StatusTransportFailed, res.Status)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(errors.New("x")))
	err := &SubmitError{Kind: KindRejected, Err: errors.New("x")}
	assert.Equal(t, KindRejected, KindOf(err))
	assert.Contains(t, err.Error(), "rejected")
}
