package solana

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

// MaxTransactionSize is the largest a serialized transaction may be to fit
// in a single UDP packet on the wire.
const MaxTransactionSize = 1232

// Transaction is a legacy (unversioned) transaction: a list of signatures
// followed by a legacy message.
type Transaction struct {
	Signatures []Signature
	Message    LegacyMessage
}

// NewTransaction compiles a transaction from a fee payer, a recent
// blockhash, and the instructions to include. The returned transaction has
// one unset (zero) signature slot per required signer.
func NewTransaction(feePayer Pubkey, recentBlockhash [32]byte, instructions []Instruction) (*Transaction, error) {
	msg, err := CompileMessage(feePayer, recentBlockhash, instructions)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		Signatures: make([]Signature, msg.Header.NumRequiredSignatures),
		Message:    msg,
	}, nil
}

// AddInstruction appends an instruction to the transaction's message,
// extending its account key table as needed. Any existing signatures are
// left in place; callers that add instructions after signing must re-sign.
func (t *Transaction) AddInstruction(ix Instruction) error {
	return t.Message.AddInstruction(ix)
}

// MessageBytes returns the serialized message, the exact bytes that are
// signed and verified.
func (t *Transaction) MessageBytes() ([]byte, error) {
	return t.Message.Serialize()
}

// Serialize encodes the full transaction: a CI-16-prefixed signature list
// followed by the serialized message.
func (t *Transaction) Serialize() ([]byte, error) {
	msgBytes, err := t.Message.Serialize()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := putCompactU16(&buf, len(t.Signatures)); err != nil {
		return nil, err
	}
	for _, sig := range t.Signatures {
		buf.Write(sig[:])
	}
	buf.Write(msgBytes)

	return buf.Bytes(), nil
}

// DeserializeTransaction decodes a legacy transaction from its wire form.
func DeserializeTransaction(b []byte) (*Transaction, error) {
	count, n, err := readCompactU16(b)
	if err != nil {
		return nil, asError(errors.Wrap(err, "signature count"), ErrDeserialization)
	}
	b = b[n:]

	if len(b) < count*SignatureSize {
		return nil, newError(ErrDeserialization, "truncated signatures")
	}
	sigs := make([]Signature, count)
	for i := 0; i < count; i++ {
		copy(sigs[i][:], b[i*SignatureSize:(i+1)*SignatureSize])
	}
	b = b[count*SignatureSize:]

	msg, err := DeserializeLegacyMessage(b)
	if err != nil {
		return nil, err
	}

	return &Transaction{Signatures: sigs, Message: *msg}, nil
}

// Sign fully (re)signs the transaction: it discards any existing
// signatures and signs with exactly the private keys needed to cover every
// required signer, in account key order. privateKeys must contain at least
// NumRequiredSignatures keys and privateKeys[i] must correspond to
// AccountKeys[i] for i < NumRequiredSignatures.
func (t *Transaction) Sign(privateKeys []ed25519.PrivateKey) error {
	numRequired := int(t.Message.Header.NumRequiredSignatures)
	if len(privateKeys) < numRequired {
		return newError(ErrInvalidTransaction, "need %d signing keys, got %d", numRequired, len(privateKeys))
	}

	msgBytes, err := t.Message.Serialize()
	if err != nil {
		return err
	}

	sigs := make([]Signature, numRequired)
	for i := 0; i < numRequired; i++ {
		sig := ed25519.Sign(privateKeys[i], msgBytes)
		copy(sigs[i][:], sig)
	}

	t.Signatures = sigs
	return nil
}

// PartialSign signs with whichever of the given keys correspond to
// required signers, leaving every other signature slot untouched. Keys
// whose public key is not a required signer (or not present in the
// account key table at all) are silently skipped, the way a multisig
// transaction accumulates signatures from participants who sign out of
// order.
func (t *Transaction) PartialSign(privateKeys []ed25519.PrivateKey, publicKeys []Pubkey) error {
	if len(privateKeys) != len(publicKeys) {
		return newError(ErrInvalidTransaction, "mismatched key slices: %d private, %d public", len(privateKeys), len(publicKeys))
	}

	numRequired := int(t.Message.Header.NumRequiredSignatures)
	if len(t.Signatures) < numRequired {
		grown := make([]Signature, numRequired)
		copy(grown, t.Signatures)
		t.Signatures = grown
	}

	msgBytes, err := t.Message.Serialize()
	if err != nil {
		return err
	}

	for i, pub := range publicKeys {
		idx := -1
		for j, k := range t.Message.AccountKeys {
			if k == pub {
				idx = j
				break
			}
		}
		if idx < 0 || idx >= numRequired {
			continue
		}
		sig := ed25519.Sign(privateKeys[i], msgBytes)
		copy(t.Signatures[idx][:], sig)
	}

	return nil
}

// IsSigned reports whether every required signature slot holds a non-zero
// signature. It does not verify the signatures are valid.
func (t *Transaction) IsSigned() bool {
	numRequired := int(t.Message.Header.NumRequiredSignatures)
	if len(t.Signatures) < numRequired {
		return false
	}
	for i := 0; i < numRequired; i++ {
		if t.Signatures[i].IsZero() {
			return false
		}
	}
	return true
}

// Verify checks every required signature against the message bytes and
// the corresponding account key.
func (t *Transaction) Verify() error {
	numRequired := int(t.Message.Header.NumRequiredSignatures)
	if len(t.Signatures) < numRequired {
		return newError(ErrInvalidTransaction, "missing signatures: have %d, need %d", len(t.Signatures), numRequired)
	}

	msgBytes, err := t.Message.Serialize()
	if err != nil {
		return err
	}

	for i := 0; i < numRequired; i++ {
		pub := t.Message.AccountKeys[i]
		if !ed25519.Verify(ed25519.PublicKey(pub[:]), msgBytes, t.Signatures[i][:]) {
			return newError(ErrInvalidSignature, "signature %d does not verify for %s", i, pub)
		}
	}
	return nil
}

// ValidateSize reports an error if the serialized transaction would exceed
// MaxTransactionSize.
func (t *Transaction) ValidateSize() error {
	b, err := t.Serialize()
	if err != nil {
		return err
	}
	if len(b) > MaxTransactionSize {
		return newError(ErrInvalidTransaction, "serialized size %d exceeds maximum %d", len(b), MaxTransactionSize)
	}
	return nil
}

// VersionedTransaction is a transaction carrying either a legacy or a V0
// message, as decoded off the wire or assembled by a versioned builder.
type VersionedTransaction struct {
	Signatures []Signature
	Message    VersionedMessage
}

// Serialize encodes the versioned transaction: a CI-16-prefixed signature
// list followed by the serialized (possibly version-tagged) message.
func (t *VersionedTransaction) Serialize() ([]byte, error) {
	msgBytes, err := t.Message.Serialize()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := putCompactU16(&buf, len(t.Signatures)); err != nil {
		return nil, err
	}
	for _, sig := range t.Signatures {
		buf.Write(sig[:])
	}
	buf.Write(msgBytes)

	return buf.Bytes(), nil
}

// DeserializeVersionedTransaction decodes a transaction whose message may
// be legacy or V0, dispatching on the version tag the way a wallet does
// when it doesn't yet know what it's been handed.
func DeserializeVersionedTransaction(b []byte) (*VersionedTransaction, error) {
	count, n, err := readCompactU16(b)
	if err != nil {
		return nil, asError(errors.Wrap(err, "signature count"), ErrDeserialization)
	}
	b = b[n:]

	if len(b) < count*SignatureSize {
		return nil, newError(ErrDeserialization, "truncated signatures")
	}
	sigs := make([]Signature, count)
	for i := 0; i < count; i++ {
		copy(sigs[i][:], b[i*SignatureSize:(i+1)*SignatureSize])
	}
	b = b[count*SignatureSize:]

	msg, err := DeserializeVersionedMessage(b)
	if err != nil {
		return nil, err
	}

	return &VersionedTransaction{Signatures: sigs, Message: *msg}, nil
}

// computeBudgetProgramIndex finds the compute budget program's position in
// the account key table, if it's present at all.
func computeBudgetProgramIndex(keys []Pubkey) (uint8, bool) {
	programID, err := PubkeyFromBase58(ComputeBudgetProgramID)
	if err != nil {
		return 0, false
	}
	for i, k := range keys {
		if k == programID {
			return uint8(i), true
		}
	}
	return 0, false
}

// ComputeUnitLimit returns the value set by a SetComputeUnitLimit compute
// budget instruction, if one is present.
func (t *VersionedTransaction) ComputeUnitLimit() (uint32, bool) {
	idx, ok := computeBudgetProgramIndex(t.Message.AccountKeys())
	if !ok {
		return 0, false
	}
	for _, ix := range t.Message.Instructions() {
		if ix.ProgramIDIndex == idx && len(ix.Data) == 5 && ix.Data[0] == 2 {
			return leUint32(ix.Data[1:5]), true
		}
	}
	return 0, false
}

// ComputeUnitPrice returns the value set by a SetComputeUnitPrice compute
// budget instruction, if one is present.
func (t *VersionedTransaction) ComputeUnitPrice() (uint64, bool) {
	idx, ok := computeBudgetProgramIndex(t.Message.AccountKeys())
	if !ok {
		return 0, false
	}
	for _, ix := range t.Message.Instructions() {
		if ix.ProgramIDIndex == idx && len(ix.Data) == 9 && ix.Data[0] == 3 {
			return leUint64(ix.Data[1:9]), true
		}
	}
	return 0, false
}

// ComputeUnitLimit returns the value set by a SetComputeUnitLimit compute
// budget instruction in a legacy transaction, if one is present.
func (t *Transaction) ComputeUnitLimit() (uint32, bool) {
	idx, ok := computeBudgetProgramIndex(t.Message.AccountKeys)
	if !ok {
		return 0, false
	}
	for _, ix := range t.Message.Instructions {
		if ix.ProgramIDIndex == idx && len(ix.Data) == 5 && ix.Data[0] == 2 {
			return leUint32(ix.Data[1:5]), true
		}
	}
	return 0, false
}

// ComputeUnitPrice returns the value set by a SetComputeUnitPrice compute
// budget instruction in a legacy transaction, if one is present.
func (t *Transaction) ComputeUnitPrice() (uint64, bool) {
	idx, ok := computeBudgetProgramIndex(t.Message.AccountKeys)
	if !ok {
		return 0, false
	}
	for _, ix := range t.Message.Instructions {
		if ix.ProgramIDIndex == idx && len(ix.Data) == 9 && ix.Data[0] == 3 {
			return leUint64(ix.Data[1:9]), true
		}
	}
	return 0, false
}

// SetComputeUnitLimit overwrites the numeric field of an existing
// SetComputeUnitLimit compute budget instruction in place, returning false
// if no such instruction is present.
func (t *Transaction) SetComputeUnitLimit(units uint32) bool {
	return setComputeUnitLimit(t.Message.AccountKeys, t.Message.Instructions, units)
}

// SetComputeUnitPrice overwrites the numeric field of an existing
// SetComputeUnitPrice compute budget instruction in place, returning false
// if no such instruction is present.
func (t *Transaction) SetComputeUnitPrice(microLamports uint64) bool {
	return setComputeUnitPrice(t.Message.AccountKeys, t.Message.Instructions, microLamports)
}

// SetComputeUnitLimit overwrites the numeric field of an existing
// SetComputeUnitLimit compute budget instruction in place, returning false
// if no such instruction is present.
func (t *VersionedTransaction) SetComputeUnitLimit(units uint32) bool {
	return setComputeUnitLimit(t.Message.AccountKeys(), t.Message.Instructions(), units)
}

// SetComputeUnitPrice overwrites the numeric field of an existing
// SetComputeUnitPrice compute budget instruction in place, returning false
// if no such instruction is present.
func (t *VersionedTransaction) SetComputeUnitPrice(microLamports uint64) bool {
	return setComputeUnitPrice(t.Message.AccountKeys(), t.Message.Instructions(), microLamports)
}

func setComputeUnitLimit(keys []Pubkey, instructions []CompiledInstruction, units uint32) bool {
	idx, ok := computeBudgetProgramIndex(keys)
	if !ok {
		return false
	}
	for i := range instructions {
		ix := &instructions[i]
		if ix.ProgramIDIndex == idx && len(ix.Data) == 5 && ix.Data[0] == 2 {
			putLeUint32(ix.Data[1:5], units)
			return true
		}
	}
	return false
}

func setComputeUnitPrice(keys []Pubkey, instructions []CompiledInstruction, microLamports uint64) bool {
	idx, ok := computeBudgetProgramIndex(keys)
	if !ok {
		return false
	}
	for i := range instructions {
		ix := &instructions[i]
		if ix.ProgramIDIndex == idx && len(ix.Data) == 9 && ix.Data[0] == 3 {
			putLeUint64(ix.Data[1:9], microLamports)
			return true
		}
	}
	return false
}

func putLeUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func putLeUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
