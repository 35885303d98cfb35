// Package pda 计算程序派生地址（Program Derived Address）。
//
// 派生公式：SHA256(seeds... || program_id || "ProgramDerivedAddress")，结果必须不在 ed25519 曲线上，
// 即不存在对应私钥。FindProgramAddress 从 bump=255 开始递减尝试，返回第一个落在曲线外的地址。
// 本包只做纯计算，无 I/O、无状态。
package pda

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/blocto/solana-go-sdk/common"
)

const (
	// MaxSeeds 单次派生允许的最大 seed 数（含 bump）
	MaxSeeds = 16
	// MaxSeedLen 单个 seed 最大长度
	MaxSeedLen = 32
	// PDAMarker 派生时追加的固定后缀
	PDAMarker = "ProgramDerivedAddress"
)

var (
	ErrMaxSeeds           = errors.New("pda: too many seeds")
	ErrMaxSeedLength      = errors.New("pda: seed too long")
	ErrInvalidSeeds       = errors.New("pda: derived address lies on the ed25519 curve")
	ErrSeedSpaceExhausted = errors.New("pda: no viable bump seed, seed space exhausted")
)

// onCurve 派生时使用的曲线检查，测试中可替换
var onCurve = IsOnCurve

// IsOnCurve 判断 32 字节是否能解压为合法的 ed25519 点（即是否可能存在私钥）
func IsOnCurve(b []byte) bool {
	if len(b) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// CreateProgramAddress 用给定 seeds（已包含 bump）计算地址，地址在曲线上时返回 ErrInvalidSeeds
func CreateProgramAddress(seeds [][]byte, programID common.PublicKey) (common.PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return common.PublicKey{}, fmt.Errorf("%w: got %d, max %d", ErrMaxSeeds, len(seeds), MaxSeeds)
	}

	h := sha256.New()
	for i, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return common.PublicKey{}, fmt.Errorf("%w: seed[%d] len=%d, max %d", ErrMaxSeedLength, i, len(seed), MaxSeedLen)
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(PDAMarker))
	sum := h.Sum(nil)

	if onCurve(sum) {
		return common.PublicKey{}, ErrInvalidSeeds
	}

	var addr common.PublicKey
	copy(addr[:], sum)
	return addr, nil
}

// FindProgramAddress 依次尝试 bump 255..1，返回第一个合法地址及其 bump。
// 所有 bump 都落在曲线上时返回 ErrSeedSpaceExhausted，调用方不应换 seeds 重试，这是配置错误。
func FindProgramAddress(seeds [][]byte, programID common.PublicKey) (common.PublicKey, uint8, error) {
	if len(seeds)+1 > MaxSeeds {
		return common.PublicKey{}, 0, fmt.Errorf("%w: got %d (+1 bump), max %d", ErrMaxSeeds, len(seeds), MaxSeeds)
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	bumpSeed := []byte{0}
	withBump[len(seeds)] = bumpSeed

	for bump := 255; bump > 0; bump-- {
		bumpSeed[0] = uint8(bump)
		addr, err := CreateProgramAddress(withBump, programID)
		switch {
		case err == nil:
			return addr, uint8(bump), nil
		case errors.Is(err, ErrInvalidSeeds):
			continue
		default:
			return common.PublicKey{}, 0, err
		}
	}
	return common.PublicKey{}, 0, ErrSeedSpaceExhausted
}
