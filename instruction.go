package solana

// AccountMeta describes one account referenced by an instruction and the
// access it requires.
type AccountMeta struct {
	PublicKey  Pubkey
	IsSigner   bool
	IsWritable bool
}

// NewAccountMeta builds an AccountMeta for the given role.
func NewAccountMeta(pubkey Pubkey, isSigner, isWritable bool) AccountMeta {
	return AccountMeta{PublicKey: pubkey, IsSigner: isSigner, IsWritable: isWritable}
}

// Instruction is a single call into a program, expressed in terms of full
// account keys. The message compiler flattens a list of these into a
// CompiledInstruction plus a shared account key table.
type Instruction struct {
	ProgramID Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// CompiledInstruction is the wire form of an Instruction: every account
// reference has been replaced by its index into the message's account key
// table.
type CompiledInstruction struct {
	ProgramIDIndex uint8
	Accounts       []uint8
	Data           []byte
}
