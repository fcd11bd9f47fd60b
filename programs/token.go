package programs

import (
	solana "github.com/hewigovens/solana-primitives"
)

const tokenTransfer = byte(3)

// TokenTransfer builds an SPL token-program instruction that moves amount
// (in the token's smallest unit) from sourceATA to destATA, authorized by
// owner.
func TokenTransfer(sourceATA, destATA, owner solana.Pubkey, amount uint64) solana.Instruction {
	data := append([]byte{tokenTransfer}, le64(amount)...)
	return solana.Instruction{
		ProgramID: solana.TokenProgram(),
		Accounts: []solana.AccountMeta{
			solana.NewAccountMeta(sourceATA, false, true),
			solana.NewAccountMeta(destATA, false, true),
			solana.NewAccountMeta(owner, true, false),
		},
		Data: data,
	}
}
