// Package journal 记录结果不确定的交易。同一钱包的下一次提交前先 Reconcile，
// 只有证明旧交易已确认、已失败或已过期后才允许继续，避免盲目重发。
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mm-client-sol/internal/logic/submit"
	"mm-client-sol/internal/pkg/logger"
	"mm-client-sol/internal/rpcclient"
)

var ErrUnresolvedPending = errors.New("journal: previous submission still unresolved")

// StatusReader 判定旧交易所需的链上查询
type StatusReader interface {
	SignatureStatus(ctx context.Context, signature string) (*rpcclient.SignatureStatus, error)
	BlockHeight(ctx context.Context, commitment rpcclient.Commitment) (uint64, error)
}

type Journal struct {
	store  Store
	reader StatusReader
	now    func() time.Time
}

func New(store Store, reader StatusReader) *Journal {
	return &Journal{store: store, reader: reader, now: time.Now}
}

// Record 只记录不确定的结果，其余结果忽略
func (j *Journal) Record(ctx context.Context, wallet, action string, res submit.Result) error {
	if res.Status != submit.StatusIndeterminate || res.Signature == "" {
		return nil
	}
	e := Entry{
		Wallet:               wallet,
		Signature:            res.Signature,
		Action:               action,
		LastValidBlockHeight: res.LastValidBlockHeight,
		RecordedAt:           j.now(),
	}
	if err := j.store.Put(ctx, e); err != nil {
		return err
	}
	logger.Warnf("[Journal] 记录不确定交易: wallet=%s action=%s sig=%s", wallet, action, res.Signature)
	return nil
}

// Reconcile 逐条判定 wallet 的待确认记录，能判定的清除；仍有未决记录时返回 ErrUnresolvedPending
func (j *Journal) Reconcile(ctx context.Context, wallet string) error {
	entries, err := j.store.List(ctx, wallet)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	var unresolved []string
	for _, e := range entries {
		res, err := j.resolve(ctx, e)
		if err != nil {
			return err
		}
		if res == ResolutionPending {
			unresolved = append(unresolved, e.Signature)
			continue
		}
		if err := j.store.Delete(ctx, wallet, e.Signature); err != nil {
			return err
		}
		logger.Infof("[Journal] 不确定交易已判定: sig=%s action=%s result=%s", e.Signature, e.Action, res)
	}

	if len(unresolved) > 0 {
		return fmt.Errorf("%w: wallet=%s signatures=%v", ErrUnresolvedPending, wallet, unresolved)
	}
	return nil
}

func (j *Journal) resolve(ctx context.Context, e Entry) (Resolution, error) {
	status, err := j.reader.SignatureStatus(ctx, e.Signature)
	if err != nil {
		return ResolutionPending, err
	}
	if status != nil {
		if status.Err != nil {
			return ResolutionFailed, nil
		}
		// processed 仍可能被回滚
		if status.ConfirmationStatus.Reached(rpcclient.CommitmentConfirmed) {
			return ResolutionCommitted, nil
		}
		return ResolutionPending, nil
	}

	height, err := j.reader.BlockHeight(ctx, rpcclient.CommitmentConfirmed)
	if err != nil {
		return ResolutionPending, err
	}
	if e.LastValidBlockHeight > 0 && height > e.LastValidBlockHeight {
		return ResolutionExpired, nil
	}
	return ResolutionPending, nil
}

// Pending 列出 wallet 当前的待确认记录
func (j *Journal) Pending(ctx context.Context, wallet string) ([]Entry, error) {
	return j.store.List(ctx, wallet)
}
