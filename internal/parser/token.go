package parser

import "fmt"

// Kind discriminates token variants in a parsed stream.
type Kind string

const (
	// KindString is a run of two or more printable bytes, decoded to text.
	KindString Kind = "String"
	// KindByte is a single non-printable byte, rendered as "0x%02x".
	KindByte Kind = "Byte"
	// KindError only appears as the single token of an errored outcome.
	KindError Kind = "Error"
)

// Token is an immutable (Kind, Value) pair produced in input-byte order.
type Token struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// StringToken wraps decoded printable-run text.
func StringToken(text string) Token {
	return Token{Kind: KindString, Value: text}
}

// ByteToken renders b in its canonical two-digit lowercase hex form.
func ByteToken(b byte) Token {
	return Token{Kind: KindByte, Value: fmt.Sprintf("0x%02x", b)}
}

// ErrorToken carries a descriptive message for errored outcomes.
func ErrorToken(msg string) Token {
	return Token{Kind: KindError, Value: msg}
}

// ByteLen is the number of input bytes this token accounts for.
// Error tokens account for none.
func (t Token) ByteLen() int {
	switch t.Kind {
	case KindString:
		return len(t.Value)
	case KindByte:
		return 1
	default:
		return 0
	}
}
