package solana

import (
	"github.com/mr-tron/base58"
)

// PubkeySize is the length in bytes of an account address.
const PubkeySize = 32

// SignatureSize is the length in bytes of an Ed25519 signature.
const SignatureSize = 64

// Pubkey identifies an account on chain. It doubles as a program address.
type Pubkey [PubkeySize]byte

// EmptyPubkey is the all-zero sentinel address.
var EmptyPubkey Pubkey

// NewPubkey wraps a 32-byte slice as a Pubkey, copying its contents.
func NewPubkey(b []byte) (Pubkey, error) {
	var pk Pubkey
	if len(b) != PubkeySize {
		return pk, newError(ErrInvalidPubkey, "want %d bytes, got %d", PubkeySize, len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

// PubkeyFromBase58 decodes a base58-encoded address.
func PubkeyFromBase58(s string) (Pubkey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, newError(ErrInvalidPubkey, "%s", err)
	}
	return NewPubkey(b)
}

// String returns the base58 encoding of the address.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// Bytes returns the raw 32 bytes of the address.
func (p Pubkey) Bytes() []byte {
	return p[:]
}

// IsZero reports whether p is the all-zero sentinel address.
func (p Pubkey) IsZero() bool {
	return p == EmptyPubkey
}

// Less reports whether p sorts before other under big-endian byte order,
// the ordering the message compiler uses to produce a canonical account
// key table.
func (p Pubkey) Less(other Pubkey) bool {
	for i := range p {
		if p[i] != other[i] {
			return p[i] < other[i]
		}
	}
	return false
}

// Signature is a 64-byte Ed25519 signature.
type Signature [SignatureSize]byte

// EmptySignature is the all-zero sentinel signature placed for unknown
// signers during partial signing.
var EmptySignature Signature

// SignatureFromBase58 decodes a base58-encoded signature.
func SignatureFromBase58(s string) (Signature, error) {
	var sig Signature
	b, err := base58.Decode(s)
	if err != nil {
		return sig, newError(ErrInvalidSignature, "%s", err)
	}
	if len(b) != SignatureSize {
		return sig, newError(ErrInvalidSignature, "want %d bytes, got %d", SignatureSize, len(b))
	}
	copy(sig[:], b)
	return sig, nil
}

// String returns the base58 encoding of the signature.
func (s Signature) String() string {
	return base58.Encode(s[:])
}

// Bytes returns the raw 64 bytes of the signature.
func (s Signature) Bytes() []byte {
	return s[:]
}

// IsZero reports whether s is the all-zero sentinel signature.
func (s Signature) IsZero() bool {
	return s == EmptySignature
}
