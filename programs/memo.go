package programs

import (
	solana "github.com/hewigovens/solana-primitives"
)

// Memo builds a memo-program instruction carrying msg as its raw,
// unframed data. signer, if non-zero, is attached as a signing account so
// the memo can be attributed to a specific key; pass solana.EmptyPubkey to
// omit it.
func Memo(msg []byte, signer solana.Pubkey) solana.Instruction {
	var accounts []solana.AccountMeta
	if !signer.IsZero() {
		accounts = []solana.AccountMeta{solana.NewAccountMeta(signer, true, false)}
	}

	return solana.Instruction{
		ProgramID: solana.MemoProgram(),
		Accounts:  accounts,
		Data:      msg,
	}
}
