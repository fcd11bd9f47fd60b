package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindProgramAddressIsOffCurve(t *testing.T) {
	programID := AssociatedTokenProgram()
	addr, bump, err := FindProgramAddress([][]byte{[]byte("metadata"), programID.Bytes()}, programID)
	require.NoError(t, err)
	assert.False(t, isOnCurve(addr))
	assert.LessOrEqual(t, bump, byte(255))
}

func TestFindProgramAddressDeterministic(t *testing.T) {
	programID := TokenProgram()
	seeds := [][]byte{[]byte("seed-a"), []byte("seed-b")}

	addr1, bump1, err := FindProgramAddress(seeds, programID)
	require.NoError(t, err)
	addr2, bump2, err := FindProgramAddress(seeds, programID)
	require.NoError(t, err)

	assert.Equal(t, addr1, addr2)
	assert.Equal(t, bump1, bump2)
}

func TestCreateProgramAddressMatchesFind(t *testing.T) {
	programID := TokenProgram()
	seeds := [][]byte{[]byte("x")}

	addr, bump, err := FindProgramAddress(seeds, programID)
	require.NoError(t, err)

	created, err := CreateProgramAddress(seeds, bump, programID)
	require.NoError(t, err)
	assert.Equal(t, addr, created)
}

func TestCreateProgramAddressRejectsOnCurve(t *testing.T) {
	programID := TokenProgram()
	seeds := [][]byte{[]byte("on-curve-search")}

	var onCurveBump byte
	found := false
	for b := 0; b <= 255; b++ {
		if isOnCurve(derivePda(seeds, byte(b), programID)) {
			onCurveBump = byte(b)
			found = true
			break
		}
	}
	require.True(t, found, "expected at least one on-curve bump for this seed/program pair")

	_, err := CreateProgramAddress(seeds, onCurveBump, programID)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrOnCurve))
}

func TestPdaReproducibilityKnownVector(t *testing.T) {
	addr, bump, err := FindProgramAddress([][]byte{[]byte("helloWorld")}, SystemProgram())
	require.NoError(t, err)
	assert.Equal(t, "46GZzzetjCURsdFPb7rcnspbEMnCBXe9kpjrsZAkKb6X", addr.String())
	assert.Equal(t, byte(254), bump)

	reproduced, err := CreateProgramAddress([][]byte{[]byte("helloWorld")}, bump, SystemProgram())
	require.NoError(t, err)
	assert.Equal(t, addr, reproduced)
}

func TestFindProgramAddressRejectsTooManySeeds(t *testing.T) {
	seeds := make([][]byte, MaxSeeds+1)
	for i := range seeds {
		seeds[i] = []byte{byte(i)}
	}
	_, _, err := FindProgramAddress(seeds, TokenProgram())
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrInvalidPubkey))
}

func TestFindProgramAddressRejectsOversizedSeed(t *testing.T) {
	seeds := [][]byte{make([]byte, MaxSeedLen+1)}
	_, _, err := FindProgramAddress(seeds, TokenProgram())
	require.Error(t, err)
}

func TestIsOnCurveRejectsAllZero(t *testing.T) {
	// y = 0 decompresses to a valid point, so the all-zero value is never
	// accepted as a program-derived address.
	assert.True(t, isOnCurve([PubkeySize]byte{}))
}

func TestIsOnCurveAcceptsBasePoint(t *testing.T) {
	// The Ed25519 base point's standard compressed encoding; a well-known
	// on-curve value, used to confirm the decompression check isn't
	// vacuously false for everything.
	basePoint := [32]byte{
		0x58, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66,
		0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66,
		0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66,
		0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66,
	}
	assert.True(t, isOnCurve(basePoint))
}

func TestFindAssociatedTokenAddress(t *testing.T) {
	wallet := pk(11)
	mint := pk(22)

	addr, _, err := FindAssociatedTokenAddress(wallet, mint, TokenProgram())
	require.NoError(t, err)
	assert.False(t, addr.IsZero())
}
