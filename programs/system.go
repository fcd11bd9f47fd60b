// Package programs builds Instructions for the well-known on-chain
// programs referenced throughout the wire format: the system program, the
// SPL token and associated-token-account programs, the memo program, and
// the compute budget program.
package programs

import (
	"encoding/binary"

	solana "github.com/hewigovens/solana-primitives"
)

// system instruction discriminants, a 4-byte little-endian u32 prefix.
const (
	systemCreateAccount = uint32(0)
	systemAssign        = uint32(1)
	systemTransfer      = uint32(2)
)

func le32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func le64(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// SystemTransfer builds a system-program instruction that moves lamports
// from from to to. from must sign.
func SystemTransfer(from, to solana.Pubkey, lamports uint64) solana.Instruction {
	data := append(le32(systemTransfer), le64(lamports)...)
	return solana.Instruction{
		ProgramID: solana.SystemProgram(),
		Accounts: []solana.AccountMeta{
			solana.NewAccountMeta(from, true, true),
			solana.NewAccountMeta(to, false, true),
		},
		Data: data,
	}
}

// SystemCreateAccount builds a system-program instruction that creates a
// new account funded with lamports, sized space, and owned by owner. Both
// from and newAccount must sign.
func SystemCreateAccount(from, newAccount, owner solana.Pubkey, lamports, space uint64) solana.Instruction {
	data := make([]byte, 0, 52)
	data = append(data, le32(systemCreateAccount)...)
	data = append(data, le64(lamports)...)
	data = append(data, le64(space)...)
	data = append(data, owner.Bytes()...)

	return solana.Instruction{
		ProgramID: solana.SystemProgram(),
		Accounts: []solana.AccountMeta{
			solana.NewAccountMeta(from, true, true),
			solana.NewAccountMeta(newAccount, true, true),
		},
		Data: data,
	}
}

// SystemAssign builds a system-program instruction that changes an
// account's owner program. The account must sign.
func SystemAssign(account, owner solana.Pubkey) solana.Instruction {
	data := append(le32(systemAssign), owner.Bytes()...)
	return solana.Instruction{
		ProgramID: solana.SystemProgram(),
		Accounts: []solana.AccountMeta{
			solana.NewAccountMeta(account, true, true),
		},
		Data: data,
	}
}
