package programs

import (
	solana "github.com/hewigovens/solana-primitives"
)

// compute budget instruction discriminants, as read by
// (*Transaction).ComputeUnitLimit and ComputeUnitPrice.
const (
	computeBudgetSetUnitLimit = byte(2)
	computeBudgetSetUnitPrice = byte(3)
)

// SetComputeUnitLimit builds a compute-budget instruction capping the
// transaction's total compute unit consumption at units.
func SetComputeUnitLimit(units uint32) solana.Instruction {
	data := append([]byte{computeBudgetSetUnitLimit}, le32(units)...)
	return solana.Instruction{
		ProgramID: solana.ComputeBudgetProgram(),
		Accounts:  nil,
		Data:      data,
	}
}

// SetComputeUnitPrice builds a compute-budget instruction requesting a
// priority fee of microLamports per compute unit.
func SetComputeUnitPrice(microLamports uint64) solana.Instruction {
	data := append([]byte{computeBudgetSetUnitPrice}, le64(microLamports)...)
	return solana.Instruction{
		ProgramID: solana.ComputeBudgetProgram(),
		Accounts:  nil,
		Data:      data,
	}
}
