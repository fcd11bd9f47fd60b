// Package test provides deterministic generators for building transaction
// fixtures in unit tests without hand-writing byte arrays.
package test

import (
	"crypto/ed25519"

	solana "github.com/hewigovens/solana-primitives"
)

// Pubkeys generates distinct, deterministic public keys on demand.
type Pubkeys struct {
	count int
}

// PubkeyGenerator returns a fresh Pubkeys generator.
func PubkeyGenerator() *Pubkeys {
	return &Pubkeys{count: 1}
}

// New returns the next public key in the sequence: 32 bytes, all set to
// the generator's counter.
func (g *Pubkeys) New() solana.Pubkey {
	defer func() { g.count++ }()
	return newPubkey(g.count)
}

func newPubkey(fill int) solana.Pubkey {
	var pk solana.Pubkey
	for i := range pk {
		pk[i] = uint8(fill)
	}
	return pk
}

// Keypairs generates distinct, deterministic Ed25519 key pairs on demand,
// seeded so the same index always reproduces the same key.
type Keypairs struct {
	count int
}

// KeypairGenerator returns a fresh Keypairs generator.
func KeypairGenerator() *Keypairs {
	return &Keypairs{count: 1}
}

// New returns the next key pair in the sequence.
func (g *Keypairs) New() (ed25519.PublicKey, ed25519.PrivateKey) {
	defer func() { g.count++ }()

	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = uint8(g.count)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return priv.Public().(ed25519.PublicKey), priv
}

// Blockhashes generates distinct, deterministic recent-blockhash values on
// demand.
type Blockhashes struct {
	count int
}

// BlockhashGenerator returns a fresh Blockhashes generator.
func BlockhashGenerator() *Blockhashes {
	return &Blockhashes{count: 1}
}

// New returns the next blockhash in the sequence.
func (g *Blockhashes) New() [32]byte {
	defer func() { g.count++ }()

	var h [32]byte
	for i := range h {
		h[i] = uint8(g.count)
	}
	return h
}

// Instructions generates simple growing-payload instructions, touching only
// the accounts the caller passes, for tests that only care about
// instruction count and account wiring, not real program semantics.
type Instructions struct {
	count     int
	programID solana.Pubkey
}

// InstructionGenerator returns a fresh Instructions generator targeting
// the given program.
func InstructionGenerator(programID solana.Pubkey) *Instructions {
	return &Instructions{count: 1, programID: programID}
}

// New returns the next instruction in the sequence, touching the given
// accounts.
func (g *Instructions) New(accounts ...solana.AccountMeta) solana.Instruction {
	defer func() { g.count++ }()

	data := make([]byte, g.count)
	for i := range data {
		data[i] = uint8(g.count)
	}

	return solana.Instruction{
		ProgramID: g.programID,
		Accounts:  accounts,
		Data:      data,
	}
}
