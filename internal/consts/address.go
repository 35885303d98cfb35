package consts

import (
	"mm-client-sol/internal/types"
)

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	//  Programs
	SystemProgramStr          = "11111111111111111111111111111111"
	TokenProgramStr           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgramStr = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	SysVarRentStr             = "SysvarRent111111111111111111111111111111111"

	// 订单簿（Serum v3 DEX）
	SerumDexProgramStr = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"

	// 保证金计价币（quote mint）
	USDCMintStr = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

var (
	// Programs
	SystemProgram          = types.PubkeyFromBase58(SystemProgramStr)
	TokenProgram           = types.PubkeyFromBase58(TokenProgramStr)
	AssociatedTokenProgram = types.PubkeyFromBase58(AssociatedTokenProgramStr)
	SysVarRent             = types.PubkeyFromBase58(SysVarRentStr)

	SerumDexProgram = types.PubkeyFromBase58(SerumDexProgramStr)

	USDCMint = types.PubkeyFromBase58(USDCMintStr)
)
