package solana

import (
	"bytes"
	"sort"

	"github.com/pkg/errors"
)

// MessageHeader records how many of the leading account keys require a
// signature, and how many of the signing and non-signing keys are
// read-only. Together with account key order this fully determines every
// account's role without carrying a per-key flag on the wire.
type MessageHeader struct {
	NumRequiredSignatures      uint8
	NumReadonlySignedAccounts  uint8
	NumReadonlyUnsignedAccounts uint8
}

// MessageAddressTableLookup references a subset of an address lookup
// table's entries, by index, for inclusion in a V0 message's account keys.
type MessageAddressTableLookup struct {
	AccountKey      Pubkey
	WritableIndexes []uint8
	ReadonlyIndexes []uint8
}

// LegacyMessage is the pre-versioned message format: every account key is
// carried inline, in full.
type LegacyMessage struct {
	Header           MessageHeader
	AccountKeys      []Pubkey
	RecentBlockhash  [32]byte
	Instructions     []CompiledInstruction
}

// V0Message is the versioned message format. It extends LegacyMessage with
// address lookup table references, letting instructions address accounts
// that never appear directly in AccountKeys.
type V0Message struct {
	Header             MessageHeader
	AccountKeys        []Pubkey
	RecentBlockhash    [32]byte
	Instructions       []CompiledInstruction
	AddressTableLookups []MessageAddressTableLookup
}

// MessageVersion discriminates the two wire formats a VersionedMessage may
// take.
type MessageVersion int

const (
	MessageVersionLegacy MessageVersion = iota
	MessageVersionV0
)

// VersionedMessage wraps either message format behind a single type, the
// way a deserializer that hasn't yet inspected the version tag must.
type VersionedMessage struct {
	Version MessageVersion
	Legacy  *LegacyMessage
	V0      *V0Message
}

// accountEntry tracks the signer/writable role accumulated for one account
// while a message is being compiled. Roles merge by OR: if any instruction
// asks for an account to be a signer, it is a signer in the compiled
// message, even if another instruction only needed it read-only.
type accountEntry struct {
	pubkey     Pubkey
	isSigner   bool
	isWritable bool
}

// CompileMessage builds a LegacyMessage from a fee payer, a recent
// blockhash, and the instructions to include.
//
// The fee payer is always account key zero, always a signer, always
// writable. Every other account referenced by an instruction (including
// each instruction's program ID) is bucketed by (signer, writable) and the
// buckets are emitted in the fixed order: writable signers, readonly
// signers, writable non-signers, readonly non-signers. Within a bucket,
// keys are sorted so the same instruction set always compiles to the same
// account key table regardless of which order instructions were added in.
func CompileMessage(feePayer Pubkey, recentBlockhash [32]byte, instructions []Instruction) (LegacyMessage, error) {
	entries := make(map[Pubkey]*accountEntry)
	entries[feePayer] = &accountEntry{pubkey: feePayer, isSigner: true, isWritable: true}

	merge := func(pubkey Pubkey, isSigner, isWritable bool) {
		e, ok := entries[pubkey]
		if !ok {
			entries[pubkey] = &accountEntry{pubkey: pubkey, isSigner: isSigner, isWritable: isWritable}
			return
		}
		e.isSigner = e.isSigner || isSigner
		e.isWritable = e.isWritable || isWritable
	}

	for _, ix := range instructions {
		merge(ix.ProgramID, false, false)
		for _, acc := range ix.Accounts {
			merge(acc.PublicKey, acc.IsSigner, acc.IsWritable)
		}
	}

	var writableSigners, readonlySigners, writableNonSigners, readonlyNonSigners []Pubkey
	for pubkey, e := range entries {
		if pubkey == feePayer {
			continue
		}
		switch {
		case e.isSigner && e.isWritable:
			writableSigners = append(writableSigners, pubkey)
		case e.isSigner && !e.isWritable:
			readonlySigners = append(readonlySigners, pubkey)
		case !e.isSigner && e.isWritable:
			writableNonSigners = append(writableNonSigners, pubkey)
		default:
			readonlyNonSigners = append(readonlyNonSigners, pubkey)
		}
	}

	sortPubkeys(writableSigners)
	sortPubkeys(readonlySigners)
	sortPubkeys(writableNonSigners)
	sortPubkeys(readonlyNonSigners)

	accountKeys := make([]Pubkey, 0, len(entries))
	accountKeys = append(accountKeys, feePayer)
	accountKeys = append(accountKeys, writableSigners...)
	accountKeys = append(accountKeys, readonlySigners...)
	accountKeys = append(accountKeys, writableNonSigners...)
	accountKeys = append(accountKeys, readonlyNonSigners...)

	keyIndex := make(map[Pubkey]uint8, len(accountKeys))
	for i, k := range accountKeys {
		keyIndex[k] = uint8(i)
	}

	compiled := make([]CompiledInstruction, len(instructions))
	for i, ix := range instructions {
		accIdx := make([]uint8, len(ix.Accounts))
		for j, acc := range ix.Accounts {
			accIdx[j] = keyIndex[acc.PublicKey]
		}
		compiled[i] = CompiledInstruction{
			ProgramIDIndex: keyIndex[ix.ProgramID],
			Accounts:       accIdx,
			Data:           ix.Data,
		}
	}

	header := MessageHeader{
		NumRequiredSignatures:       uint8(1 + len(writableSigners) + len(readonlySigners)),
		NumReadonlySignedAccounts:   uint8(len(readonlySigners)),
		NumReadonlyUnsignedAccounts: uint8(len(readonlyNonSigners)),
	}

	return LegacyMessage{
		Header:          header,
		AccountKeys:     accountKeys,
		RecentBlockhash: recentBlockhash,
		Instructions:    compiled,
	}, nil
}

func sortPubkeys(keys []Pubkey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}

// AddInstruction appends a new instruction to an already-compiled legacy
// message, extending the account key table as needed.
//
// New writable non-signer accounts are inserted just before the existing
// readonly-non-signer region, shifting every account index at or past that
// point (and every compiled instruction that references one of them) up by
// the number of accounts inserted. New readonly non-signer accounts are
// appended at the very end. This keeps the four-bucket ordering invariant
// intact without recompiling the whole message.
func (m *LegacyMessage) AddInstruction(ix Instruction) error {
	existing := make(map[Pubkey]uint8, len(m.AccountKeys))
	for i, k := range m.AccountKeys {
		existing[k] = uint8(i)
	}

	var newWritable, newReadonly []Pubkey
	seenNew := make(map[Pubkey]bool)

	consider := func(pubkey Pubkey, isWritable bool) {
		if _, ok := existing[pubkey]; ok {
			return
		}
		if seenNew[pubkey] {
			return
		}
		seenNew[pubkey] = true
		if isWritable {
			newWritable = append(newWritable, pubkey)
		} else {
			newReadonly = append(newReadonly, pubkey)
		}
	}

	consider(ix.ProgramID, false)
	for _, acc := range ix.Accounts {
		consider(acc.PublicKey, acc.IsWritable)
	}

	insertPos := len(m.AccountKeys) - int(m.Header.NumReadonlyUnsignedAccounts)
	shift := uint8(len(newWritable))

	if shift > 0 {
		for i := range m.Instructions {
			ci := &m.Instructions[i]
			if ci.ProgramIDIndex >= uint8(insertPos) {
				ci.ProgramIDIndex += shift
			}
			for j, idx := range ci.Accounts {
				if idx >= uint8(insertPos) {
					ci.Accounts[j] = idx + shift
				}
			}
		}
	}

	head := append([]Pubkey{}, m.AccountKeys[:insertPos]...)
	tail := append([]Pubkey{}, m.AccountKeys[insertPos:]...)
	head = append(head, newWritable...)
	m.AccountKeys = append(head, tail...)
	m.AccountKeys = append(m.AccountKeys, newReadonly...)

	m.Header.NumReadonlyUnsignedAccounts += uint8(len(newReadonly))

	keyIndex := make(map[Pubkey]uint8, len(m.AccountKeys))
	for i, k := range m.AccountKeys {
		keyIndex[k] = uint8(i)
	}

	accIdx := make([]uint8, len(ix.Accounts))
	for i, acc := range ix.Accounts {
		idx, ok := keyIndex[acc.PublicKey]
		if !ok {
			return newError(ErrInvalidMessage, "account %s missing from compiled key table", acc.PublicKey)
		}
		accIdx[i] = idx
	}

	m.Instructions = append(m.Instructions, CompiledInstruction{
		ProgramIDIndex: keyIndex[ix.ProgramID],
		Accounts:       accIdx,
		Data:           ix.Data,
	})

	return nil
}

func serializeHeader(buf *bytes.Buffer, h MessageHeader) {
	buf.WriteByte(h.NumRequiredSignatures)
	buf.WriteByte(h.NumReadonlySignedAccounts)
	buf.WriteByte(h.NumReadonlyUnsignedAccounts)
}

func serializeAccountKeys(buf *bytes.Buffer, keys []Pubkey) error {
	if err := putCompactU16(buf, len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		buf.Write(k[:])
	}
	return nil
}

func serializeInstructions(buf *bytes.Buffer, instructions []CompiledInstruction) error {
	if err := putCompactU16(buf, len(instructions)); err != nil {
		return err
	}
	for _, ix := range instructions {
		buf.WriteByte(ix.ProgramIDIndex)
		if err := putCompactU16(buf, len(ix.Accounts)); err != nil {
			return err
		}
		buf.Write(ix.Accounts)
		if err := putCompactU16(buf, len(ix.Data)); err != nil {
			return err
		}
		buf.Write(ix.Data)
	}
	return nil
}

func serializeLookups(buf *bytes.Buffer, lookups []MessageAddressTableLookup) error {
	if err := putCompactU16(buf, len(lookups)); err != nil {
		return err
	}
	for _, l := range lookups {
		buf.Write(l.AccountKey[:])
		if err := putCompactU16(buf, len(l.WritableIndexes)); err != nil {
			return err
		}
		buf.Write(l.WritableIndexes)
		if err := putCompactU16(buf, len(l.ReadonlyIndexes)); err != nil {
			return err
		}
		buf.Write(l.ReadonlyIndexes)
	}
	return nil
}

// Serialize encodes the legacy message in its wire form: a 3-byte header,
// a CI-16-prefixed account key table, the 32-byte recent blockhash, and a
// CI-16-prefixed instruction list.
func (m *LegacyMessage) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	serializeHeader(&buf, m.Header)
	if err := serializeAccountKeys(&buf, m.AccountKeys); err != nil {
		return nil, err
	}
	buf.Write(m.RecentBlockhash[:])
	if err := serializeInstructions(&buf, m.Instructions); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Serialize encodes the V0 message: identical to the legacy layout, with a
// CI-16-prefixed list of address table lookups appended.
func (m *V0Message) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	serializeHeader(&buf, m.Header)
	if err := serializeAccountKeys(&buf, m.AccountKeys); err != nil {
		return nil, err
	}
	buf.Write(m.RecentBlockhash[:])
	if err := serializeInstructions(&buf, m.Instructions); err != nil {
		return nil, err
	}
	if err := serializeLookups(&buf, m.AddressTableLookups); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Serialize encodes a versioned message: for V0, a leading byte with the
// high bit set and the low 7 bits holding the version number (0), followed
// by the V0 body; for legacy, just the legacy body with no version tag.
func (m *VersionedMessage) Serialize() ([]byte, error) {
	switch m.Version {
	case MessageVersionLegacy:
		return m.Legacy.Serialize()
	case MessageVersionV0:
		body, err := m.V0.Serialize()
		if err != nil {
			return nil, err
		}
		return append([]byte{0x80}, body...), nil
	default:
		return nil, newError(ErrSerialization, "unknown message version %d", m.Version)
	}
}

func deserializeHeader(b []byte) (MessageHeader, []byte, error) {
	if len(b) < 3 {
		return MessageHeader{}, nil, newError(ErrDeserialization, "truncated message header")
	}
	return MessageHeader{
		NumRequiredSignatures:       b[0],
		NumReadonlySignedAccounts:   b[1],
		NumReadonlyUnsignedAccounts: b[2],
	}, b[3:], nil
}

func deserializeAccountKeys(b []byte) ([]Pubkey, []byte, error) {
	count, n, err := readCompactU16(b)
	if err != nil {
		return nil, nil, errors.Wrap(err, "account key count")
	}
	b = b[n:]

	if len(b) < count*PubkeySize {
		return nil, nil, newError(ErrDeserialization, "truncated account keys")
	}

	keys := make([]Pubkey, count)
	for i := 0; i < count; i++ {
		copy(keys[i][:], b[i*PubkeySize:(i+1)*PubkeySize])
	}
	return keys, b[count*PubkeySize:], nil
}

func deserializeInstructions(b []byte) ([]CompiledInstruction, []byte, error) {
	count, n, err := readCompactU16(b)
	if err != nil {
		return nil, nil, errors.Wrap(err, "instruction count")
	}
	b = b[n:]

	instructions := make([]CompiledInstruction, count)
	for i := 0; i < count; i++ {
		if len(b) < 1 {
			return nil, nil, newError(ErrDeserialization, "truncated instruction %d", i)
		}
		programIDIndex := b[0]
		b = b[1:]

		accCount, n, err := readCompactU16(b)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "instruction %d account count", i)
		}
		b = b[n:]
		if len(b) < accCount {
			return nil, nil, newError(ErrDeserialization, "truncated instruction %d accounts", i)
		}
		accounts := append([]uint8{}, b[:accCount]...)
		b = b[accCount:]

		dataLen, n, err := readCompactU16(b)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "instruction %d data length", i)
		}
		b = b[n:]
		if len(b) < dataLen {
			return nil, nil, newError(ErrDeserialization, "truncated instruction %d data", i)
		}
		data := append([]byte{}, b[:dataLen]...)
		b = b[dataLen:]

		instructions[i] = CompiledInstruction{ProgramIDIndex: programIDIndex, Accounts: accounts, Data: data}
	}

	return instructions, b, nil
}

func deserializeLookups(b []byte) ([]MessageAddressTableLookup, []byte, error) {
	if len(b) == 0 {
		return nil, b, nil
	}

	count, n, err := readCompactU16(b)
	if err != nil {
		return nil, nil, errors.Wrap(err, "lookup count")
	}
	b = b[n:]

	lookups := make([]MessageAddressTableLookup, count)
	for i := 0; i < count; i++ {
		if len(b) < PubkeySize {
			return nil, nil, newError(ErrDeserialization, "truncated lookup %d key", i)
		}
		var key Pubkey
		copy(key[:], b[:PubkeySize])
		b = b[PubkeySize:]

		wCount, n, err := readCompactU16(b)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "lookup %d writable count", i)
		}
		b = b[n:]
		if len(b) < wCount {
			return nil, nil, newError(ErrDeserialization, "truncated lookup %d writable indexes", i)
		}
		writable := append([]uint8{}, b[:wCount]...)
		b = b[wCount:]

		rCount, n, err := readCompactU16(b)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "lookup %d readonly count", i)
		}
		b = b[n:]
		if len(b) < rCount {
			return nil, nil, newError(ErrDeserialization, "truncated lookup %d readonly indexes", i)
		}
		readonly := append([]uint8{}, b[:rCount]...)
		b = b[rCount:]

		lookups[i] = MessageAddressTableLookup{AccountKey: key, WritableIndexes: writable, ReadonlyIndexes: readonly}
	}

	return lookups, b, nil
}

// validateInstructionIndices checks invariant I4: every program-id index
// and every account index an instruction carries must address a real slot
// in the enclosing message's account-key table.
func validateInstructionIndices(instructions []CompiledInstruction, numKeys int) error {
	for i, ix := range instructions {
		if int(ix.ProgramIDIndex) >= numKeys {
			return newError(ErrDeserialization, "instruction %d: program id index %d out of range (%d account keys)", i, ix.ProgramIDIndex, numKeys)
		}
		for j, idx := range ix.Accounts {
			if int(idx) >= numKeys {
				return newError(ErrDeserialization, "instruction %d: account index %d at position %d out of range (%d account keys)", i, idx, j, numKeys)
			}
		}
	}
	return nil
}

// DeserializeLegacyMessage decodes a legacy message from its wire form.
func DeserializeLegacyMessage(b []byte) (*LegacyMessage, error) {
	header, b, err := deserializeHeader(b)
	if err != nil {
		return nil, asError(err, ErrDeserialization)
	}
	keys, b, err := deserializeAccountKeys(b)
	if err != nil {
		return nil, asError(err, ErrDeserialization)
	}
	if len(b) < 32 {
		return nil, newError(ErrDeserialization, "truncated recent blockhash")
	}
	var blockhash [32]byte
	copy(blockhash[:], b[:32])
	b = b[32:]

	instructions, _, err := deserializeInstructions(b)
	if err != nil {
		return nil, asError(err, ErrDeserialization)
	}
	if err := validateInstructionIndices(instructions, len(keys)); err != nil {
		return nil, err
	}

	return &LegacyMessage{Header: header, AccountKeys: keys, RecentBlockhash: blockhash, Instructions: instructions}, nil
}

// DeserializeV0Message decodes a V0 message body (the caller has already
// stripped the leading version byte).
func DeserializeV0Message(b []byte) (*V0Message, error) {
	header, b, err := deserializeHeader(b)
	if err != nil {
		return nil, asError(err, ErrDeserialization)
	}
	keys, b, err := deserializeAccountKeys(b)
	if err != nil {
		return nil, asError(err, ErrDeserialization)
	}
	if len(b) < 32 {
		return nil, newError(ErrDeserialization, "truncated recent blockhash")
	}
	var blockhash [32]byte
	copy(blockhash[:], b[:32])
	b = b[32:]

	instructions, b, err := deserializeInstructions(b)
	if err != nil {
		return nil, asError(err, ErrDeserialization)
	}
	if err := validateInstructionIndices(instructions, len(keys)); err != nil {
		return nil, err
	}

	lookups, _, err := deserializeLookups(b)
	if err != nil {
		return nil, asError(err, ErrDeserialization)
	}

	return &V0Message{
		Header:              header,
		AccountKeys:         keys,
		RecentBlockhash:     blockhash,
		Instructions:        instructions,
		AddressTableLookups: lookups,
	}, nil
}

// DeserializeVersionedMessage decodes a versioned message, routing on the
// high bit of the first byte: set means a version tag is present (only V0
// is defined today), clear means this is a bare legacy message.
func DeserializeVersionedMessage(b []byte) (*VersionedMessage, error) {
	if len(b) == 0 {
		return nil, newError(ErrDeserialization, "empty message")
	}

	if b[0]&0x80 == 0 {
		msg, err := DeserializeLegacyMessage(b)
		if err != nil {
			return nil, err
		}
		return &VersionedMessage{Version: MessageVersionLegacy, Legacy: msg}, nil
	}

	version := b[0] & 0x7f
	if version != 0 {
		return nil, newError(ErrDeserialization, "unsupported message version %d", version)
	}

	msg, err := DeserializeV0Message(b[1:])
	if err != nil {
		return nil, err
	}
	return &VersionedMessage{Version: MessageVersionV0, V0: msg}, nil
}

// AccountKeys returns the account key table for whichever variant is set.
func (m *VersionedMessage) AccountKeys() []Pubkey {
	if m.Version == MessageVersionV0 {
		return m.V0.AccountKeys
	}
	return m.Legacy.AccountKeys
}

// Header returns the message header for whichever variant is set.
func (m *VersionedMessage) Header() MessageHeader {
	if m.Version == MessageVersionV0 {
		return m.V0.Header
	}
	return m.Legacy.Header
}

// Instructions returns the compiled instruction list for whichever variant
// is set.
func (m *VersionedMessage) Instructions() []CompiledInstruction {
	if m.Version == MessageVersionV0 {
		return m.V0.Instructions
	}
	return m.Legacy.Instructions
}
