package solana

import "fmt"

// ErrorKind classifies the failure modes a caller can usefully branch on.
type ErrorKind int

const (
	// ErrInvalidPubkey covers malformed base58 strings and wrong-length keys.
	ErrInvalidPubkey ErrorKind = iota
	// ErrInvalidSignature covers malformed signature bytes.
	ErrInvalidSignature
	// ErrInvalidInstructionData covers instruction payloads that cannot be interpreted.
	ErrInvalidInstructionData
	// ErrInvalidMessage covers structurally invalid messages.
	ErrInvalidMessage
	// ErrInvalidTransaction covers structurally invalid transactions.
	ErrInvalidTransaction
	// ErrSerialization covers failures while encoding a value to wire bytes.
	ErrSerialization
	// ErrDeserialization covers failures while decoding wire bytes.
	ErrDeserialization
	// ErrOnCurve covers a derived address that lies on the Ed25519 curve
	// and so cannot serve as a program-derived address.
	ErrOnCurve
	// ErrGeneric is used for conditions that don't fit the other kinds.
	ErrGeneric
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidPubkey:
		return "invalid public key"
	case ErrInvalidSignature:
		return "invalid signature"
	case ErrInvalidInstructionData:
		return "invalid instruction data"
	case ErrInvalidMessage:
		return "invalid message"
	case ErrInvalidTransaction:
		return "invalid transaction"
	case ErrSerialization:
		return "serialization error"
	case ErrDeserialization:
		return "deserialization error"
	case ErrOnCurve:
		return "address lies on curve"
	default:
		return "error"
	}
}

// Error is the error type returned by every fallible operation in this package.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

// asError normalizes err into an *Error, preserving it unchanged if it
// already is one. Internal decode helpers wrap failures with
// github.com/pkg/errors for context before they cross back into a
// public-facing function; this is where that context is folded into the
// single typed error every public operation returns.
func asError(err error, kind ErrorKind) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return newError(kind, "%s", err)
}
