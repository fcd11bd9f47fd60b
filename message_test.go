package solana

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pk(fill byte) Pubkey {
	var p Pubkey
	for i := range p {
		p[i] = fill
	}
	return p
}

func TestCompileMessageOrdersAndDedupes(t *testing.T) {
	feePayer := pk(1)
	writableSigner := pk(2)
	readonlySigner := pk(3)
	writableNonSigner := pk(4)
	readonlyNonSigner := pk(5)
	programID := pk(6)

	instructions := []Instruction{
		{
			ProgramID: programID,
			Accounts: []AccountMeta{
				NewAccountMeta(readonlyNonSigner, false, false),
				NewAccountMeta(writableNonSigner, false, true),
				NewAccountMeta(readonlySigner, true, false),
				NewAccountMeta(writableSigner, true, true),
				// fee payer referenced again, read-only this time; signer/writable roles must merge by OR.
				NewAccountMeta(feePayer, false, false),
			},
		},
	}

	msg, err := CompileMessage(feePayer, [32]byte{9}, instructions)
	require.NoError(t, err)

	assert.Equal(t, []Pubkey{feePayer, writableSigner, readonlySigner, writableNonSigner, readonlyNonSigner, programID}, msg.AccountKeys)
	assert.Equal(t, uint8(3), msg.Header.NumRequiredSignatures)
	assert.Equal(t, uint8(1), msg.Header.NumReadonlySignedAccounts)
	assert.Equal(t, uint8(2), msg.Header.NumReadonlyUnsignedAccounts)

	require.Len(t, msg.Instructions, 1)
	assert.Equal(t, uint8(5), msg.Instructions[0].ProgramIDIndex)
}

func TestCompileMessageKnownVector(t *testing.T) {
	feePayer, err := PubkeyFromBase58("A21o4asMbFHYadqXdLusT9Bvx9xaC5YV9gcaidjqtdXC")
	require.NoError(t, err)
	recipient, err := PubkeyFromBase58("4fYNw3dojWmQ4dXtSGE9epjRGy9uFrCRgbvGgQBNZCQF")
	require.NoError(t, err)

	msg, err := CompileMessage(feePayer, [32]byte{1}, []Instruction{{
		ProgramID: SystemProgram(),
		Accounts: []AccountMeta{
			NewAccountMeta(feePayer, true, true),
			NewAccountMeta(recipient, false, true),
		},
		Data: []byte{1}, // stand-in for a transfer of 1,000,000 lamports
	}})
	require.NoError(t, err)

	assert.Equal(t, feePayer, msg.AccountKeys[0])
	assert.Equal(t, uint8(1), msg.Header.NumRequiredSignatures)
	assert.Equal(t, uint8(0), msg.Header.NumReadonlySignedAccounts)
	assert.Equal(t, uint8(1), msg.Header.NumReadonlyUnsignedAccounts)
}

func TestDeserializeLegacyMessageRejectsOutOfRangeProgramIDIndex(t *testing.T) {
	var buf bytes.Buffer
	serializeHeader(&buf, MessageHeader{NumRequiredSignatures: 1})
	require.NoError(t, serializeAccountKeys(&buf, []Pubkey{pk(1)}))
	buf.Write(make([]byte, 32))
	require.NoError(t, serializeInstructions(&buf, []CompiledInstruction{
		{ProgramIDIndex: 5, Accounts: nil, Data: nil},
	}))

	_, err := DeserializeLegacyMessage(buf.Bytes())
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrDeserialization))
}

func TestDeserializeLegacyMessageRejectsOutOfRangeAccountIndex(t *testing.T) {
	var buf bytes.Buffer
	serializeHeader(&buf, MessageHeader{NumRequiredSignatures: 1})
	require.NoError(t, serializeAccountKeys(&buf, []Pubkey{pk(1), pk(2)}))
	buf.Write(make([]byte, 32))
	require.NoError(t, serializeInstructions(&buf, []CompiledInstruction{
		{ProgramIDIndex: 1, Accounts: []uint8{9}, Data: nil},
	}))

	_, err := DeserializeLegacyMessage(buf.Bytes())
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrDeserialization))
}

func TestCompileMessageSortsWithinBucket(t *testing.T) {
	feePayer := pk(1)
	a := pk(10)
	b := pk(20)

	// Insert in descending order; compiled order must still be ascending.
	instructions := []Instruction{{
		ProgramID: pk(99),
		Accounts: []AccountMeta{
			NewAccountMeta(b, false, true),
			NewAccountMeta(a, false, true),
		},
	}}

	msg, err := CompileMessage(feePayer, [32]byte{}, instructions)
	require.NoError(t, err)

	assert.Equal(t, []Pubkey{feePayer, a, b, pk(99)}, msg.AccountKeys)
}

func TestLegacyMessageSerializeDeserializeRoundTrip(t *testing.T) {
	feePayer := pk(1)
	other := pk(2)
	programID := pk(3)

	msg, err := CompileMessage(feePayer, [32]byte{42}, []Instruction{{
		ProgramID: programID,
		Accounts: []AccountMeta{
			NewAccountMeta(other, false, true),
		},
		Data: []byte{1, 2, 3},
	}})
	require.NoError(t, err)

	encoded, err := msg.Serialize()
	require.NoError(t, err)

	decoded, err := DeserializeLegacyMessage(encoded)
	require.NoError(t, err)
	assert.Equal(t, msg, *decoded)

	reencoded, err := decoded.Serialize()
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded)
}

func TestV0MessageSerializeDeserializeRoundTrip(t *testing.T) {
	feePayer := pk(1)
	lookupKey := pk(9)

	legacy, err := CompileMessage(feePayer, [32]byte{1}, []Instruction{{
		ProgramID: pk(4),
		Accounts:  []AccountMeta{NewAccountMeta(pk(5), false, true)},
		Data:      []byte{7},
	}})
	require.NoError(t, err)

	v0 := V0Message{
		Header:          legacy.Header,
		AccountKeys:     legacy.AccountKeys,
		RecentBlockhash: legacy.RecentBlockhash,
		Instructions:    legacy.Instructions,
		AddressTableLookups: []MessageAddressTableLookup{
			{AccountKey: lookupKey, WritableIndexes: []uint8{0, 1}, ReadonlyIndexes: []uint8{2}},
		},
	}

	encoded, err := v0.Serialize()
	require.NoError(t, err)

	decoded, err := DeserializeV0Message(encoded)
	require.NoError(t, err)
	assert.Equal(t, v0, *decoded)
}

func TestVersionedMessageVersionTagRouting(t *testing.T) {
	legacy, err := CompileMessage(pk(1), [32]byte{}, nil)
	require.NoError(t, err)
	legacyBytes, err := legacy.Serialize()
	require.NoError(t, err)

	vm, err := DeserializeVersionedMessage(legacyBytes)
	require.NoError(t, err)
	assert.Equal(t, MessageVersionLegacy, vm.Version)

	v0 := V0Message{Header: legacy.Header, AccountKeys: legacy.AccountKeys, RecentBlockhash: legacy.RecentBlockhash}
	v0Bytes, err := (&VersionedMessage{Version: MessageVersionV0, V0: &v0}).Serialize()
	require.NoError(t, err)
	assert.True(t, v0Bytes[0]&0x80 != 0)

	vm, err = DeserializeVersionedMessage(v0Bytes)
	require.NoError(t, err)
	assert.Equal(t, MessageVersionV0, vm.Version)
}

func TestAddInstructionShiftsIndexes(t *testing.T) {
	feePayer := pk(1)
	existing := pk(2)
	programID := pk(3)

	msg, err := CompileMessage(feePayer, [32]byte{}, []Instruction{{
		ProgramID: programID,
		Accounts:  []AccountMeta{NewAccountMeta(existing, false, false)},
	}})
	require.NoError(t, err)

	originalReadonlyIdx := msg.Instructions[0].Accounts[0]

	newWritable := pk(4)
	err = msg.AddInstruction(Instruction{
		ProgramID: programID,
		Accounts:  []AccountMeta{NewAccountMeta(newWritable, false, true)},
		Data:      []byte{1},
	})
	require.NoError(t, err)

	// existing readonly-non-signer index must have shifted up by one to make room.
	assert.Equal(t, originalReadonlyIdx+1, msg.Instructions[0].Accounts[0])
	assert.Equal(t, uint8(2), msg.Header.NumReadonlyUnsignedAccounts)

	require.Len(t, msg.Instructions, 2)
	newIdx := msg.Instructions[1].Accounts[0]
	assert.Equal(t, newWritable, msg.AccountKeys[newIdx])
}
