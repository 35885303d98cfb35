package ixfactory

import (
	"encoding/hex"

	"mm-client-sol/internal/pkg/logger"

	"github.com/blocto/solana-go-sdk/types"
)

// Hook 指令构造完成后的观测回调，仅用于诊断，不参与正确性
type Hook interface {
	OnInstruction(action string, ix types.Instruction)
}

// HookFunc 函数适配器
type HookFunc func(action string, ix types.Instruction)

func (f HookFunc) OnInstruction(action string, ix types.Instruction) { f(action, ix) }

// NopHook 什么都不做
type NopHook struct{}

func (NopHook) OnInstruction(string, types.Instruction) {}

// LogHook 以 debug 级别输出指令 payload
type LogHook struct{}

func (LogHook) OnInstruction(action string, ix types.Instruction) {
	logger.Debugf("[IxFactory] %s: program=%s accounts=%d data=%s",
		action, ix.ProgramID.ToBase58(), len(ix.Accounts), hex.EncodeToString(ix.Data))
}
