package programs

import (
	solana "github.com/hewigovens/solana-primitives"
)

// CreateAssociatedTokenAccount builds an instruction that creates the
// canonical associated token account for wallet's holdings of mint, paid
// for by payer. The ATA's address itself is derived with
// solana.FindAssociatedTokenAddress; this builder takes it as an argument
// rather than deriving it again so callers can reuse one derivation.
func CreateAssociatedTokenAccount(payer, ata, wallet, mint solana.Pubkey) solana.Instruction {
	return solana.Instruction{
		ProgramID: solana.AssociatedTokenProgram(),
		Accounts: []solana.AccountMeta{
			solana.NewAccountMeta(payer, true, true),
			solana.NewAccountMeta(ata, false, true),
			solana.NewAccountMeta(wallet, false, false),
			solana.NewAccountMeta(mint, false, false),
			solana.NewAccountMeta(solana.SystemProgram(), false, false),
			solana.NewAccountMeta(solana.TokenProgram(), false, false),
			solana.NewAccountMeta(solana.SysvarRent(), false, false),
		},
		Data: nil,
	}
}
