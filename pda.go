package solana

import (
	"crypto/sha256"
	"math/big"
)

// MaxSeeds is the largest number of seeds FindProgramAddress accepts.
const MaxSeeds = 16

// MaxSeedLen is the largest length, in bytes, a single seed may have.
const MaxSeedLen = 32

const pdaMarker = "ProgramDerivedAddress"

// Edwards25519 field and curve constants, used to test whether a candidate
// address happens to decode as a valid curve point. p = 2^255 - 19; d is
// the curve equation's constant term, -121665/121666 mod p.
var (
	edwards25519P = func() *big.Int {
		p := new(big.Int).Lsh(big.NewInt(1), 255)
		return p.Sub(p, big.NewInt(19))
	}()
	edwards25519D = func() *big.Int {
		num := big.NewInt(-121665)
		den := big.NewInt(121666)
		denInv := new(big.Int).ModInverse(den, edwards25519P)
		d := new(big.Int).Mul(num, denInv)
		return d.Mod(d, edwards25519P)
	}()
	bigOne = big.NewInt(1)
)

// isOnCurve reports whether key decodes as a valid compressed Edwards25519
// point. A program-derived address must NOT be on the curve, which is what
// makes it safe to use without an accompanying private key ever existing:
// nobody holds a key for a point that isn't a point.
//
// This decompresses the point for real, solving x^2 = (y^2-1)/(d*y^2+1) mod
// p and checking it has a square root, rather than testing a single bit of
// the encoding. The cheaper bit test accepts roughly half of all off-curve
// candidates as if they were on-curve, silently producing the wrong
// address.
func isOnCurve(key [PubkeySize]byte) bool {
	if key == ([PubkeySize]byte{}) {
		return true
	}

	yBytes := key
	xSign := yBytes[31] >> 7
	yBytes[31] &= 0x7f

	y := leBytesToBigInt(yBytes[:])
	if y.Cmp(edwards25519P) >= 0 {
		return false
	}

	y2 := new(big.Int).Mul(y, y)
	y2.Mod(y2, edwards25519P)

	u := new(big.Int).Sub(y2, bigOne)
	u.Mod(u, edwards25519P)

	v := new(big.Int).Mul(edwards25519D, y2)
	v.Add(v, bigOne)
	v.Mod(v, edwards25519P)

	vInv := new(big.Int).ModInverse(v, edwards25519P)
	if vInv == nil {
		return false
	}

	x2 := new(big.Int).Mul(u, vInv)
	x2.Mod(x2, edwards25519P)

	if x2.Sign() == 0 {
		return xSign == 0
	}

	exp := new(big.Int).Sub(edwards25519P, bigOne)
	exp.Rsh(exp, 1)
	residue := new(big.Int).Exp(x2, exp, edwards25519P)
	return residue.Cmp(bigOne) == 0
}

func leBytesToBigInt(b []byte) *big.Int {
	reversed := make([]byte, len(b))
	for i, v := range b {
		reversed[len(b)-1-i] = v
	}
	return new(big.Int).SetBytes(reversed)
}

func validateSeeds(seeds [][]byte) error {
	if len(seeds) > MaxSeeds {
		return newError(ErrInvalidPubkey, "too many seeds: %d (max %d)", len(seeds), MaxSeeds)
	}
	for i, s := range seeds {
		if len(s) > MaxSeedLen {
			return newError(ErrInvalidPubkey, "seed %d too long: %d bytes (max %d)", i, len(s), MaxSeedLen)
		}
	}
	return nil
}

func derivePda(seeds [][]byte, bump byte, programID Pubkey) Pubkey {
	h := sha256.New()
	for _, s := range seeds {
		h.Write(s)
	}
	h.Write([]byte{bump})
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var out Pubkey
	copy(out[:], h.Sum(nil))
	return out
}

// CreateProgramAddress derives the address for the given seeds, bump, and
// program, failing if the result happens to land on the Ed25519 curve.
// It performs no bump search; most callers want FindProgramAddress instead,
// and use CreateProgramAddress only to reproduce a previously-derived
// address from a seed list that already includes the bump.
func CreateProgramAddress(seeds [][]byte, bump byte, programID Pubkey) (Pubkey, error) {
	if err := validateSeeds(seeds); err != nil {
		return Pubkey{}, err
	}
	addr := derivePda(seeds, bump, programID)
	if isOnCurve(addr) {
		return Pubkey{}, newError(ErrOnCurve, "derived address lies on the curve")
	}
	return addr, nil
}

// FindProgramAddress derives a program-derived address for the given
// seeds and program, searching bump seeds from 255 down to 0 for the first
// candidate that does not land on the Edwards25519 curve. It returns the
// address and the bump seed that produced it.
func FindProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, byte, error) {
	if err := validateSeeds(seeds); err != nil {
		return Pubkey{}, 0, err
	}

	for bump := 255; bump >= 0; bump-- {
		candidate := derivePda(seeds, byte(bump), programID)
		if !isOnCurve(candidate) {
			return candidate, byte(bump), nil
		}
	}

	return Pubkey{}, 0, newError(ErrInvalidPubkey, "unable to find a valid program address, bump seeds exhausted")
}

// FindAssociatedTokenAddress derives the canonical associated token
// account address for a wallet and mint, under the given token program
// (TokenProgram or Token2022Program).
func FindAssociatedTokenAddress(wallet, mint, tokenProgram Pubkey) (Pubkey, byte, error) {
	associatedProgram := AssociatedTokenProgram()
	seeds := [][]byte{wallet.Bytes(), tokenProgram.Bytes(), mint.Bytes()}
	return FindProgramAddress(seeds, associatedProgram)
}
