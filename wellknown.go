package solana

// Well-known program and sysvar addresses referenced by instruction
// builders and by the compute budget inspectors.
const (
	SystemProgramID            = "11111111111111111111111111111111"
	TokenProgramID             = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	Token2022ProgramID         = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	AssociatedTokenProgramID   = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	MemoProgramID              = "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr"
	ComputeBudgetProgramID     = "ComputeBudget111111111111111111111111111111"
	SysvarRentID               = "SysvarRent111111111111111111111111111111111"
	SysvarRecentBlockhashesID  = "SysvarRecentB1ockHashes11111111111111111111"
)

// mustPubkey decodes a base58 address known to be well-formed, panicking
// otherwise. It is only used for the constants above.
func mustPubkey(s string) Pubkey {
	pk, err := PubkeyFromBase58(s)
	if err != nil {
		panic(err)
	}
	return pk
}

// SystemProgram returns the system program's address.
func SystemProgram() Pubkey { return mustPubkey(SystemProgramID) }

// TokenProgram returns the SPL token program's address.
func TokenProgram() Pubkey { return mustPubkey(TokenProgramID) }

// Token2022Program returns the SPL Token-2022 program's address.
func Token2022Program() Pubkey { return mustPubkey(Token2022ProgramID) }

// AssociatedTokenProgram returns the associated token account program's address.
func AssociatedTokenProgram() Pubkey { return mustPubkey(AssociatedTokenProgramID) }

// MemoProgram returns the memo program's address.
func MemoProgram() Pubkey { return mustPubkey(MemoProgramID) }

// ComputeBudgetProgram returns the compute budget program's address.
func ComputeBudgetProgram() Pubkey { return mustPubkey(ComputeBudgetProgramID) }

// SysvarRent returns the rent sysvar's address.
func SysvarRent() Pubkey { return mustPubkey(SysvarRentID) }

// SysvarRecentBlockhashes returns the recent-blockhashes sysvar's address.
func SysvarRecentBlockhashes() Pubkey { return mustPubkey(SysvarRecentBlockhashesID) }
