package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultMaxBytes is the byte cap: content past this prefix is never
// inspected. Truncation is silent, not an error.
const DefaultMaxBytes = 1024 * 100

// minRunLen is the shortest printable run emitted as a String token.
// Shorter runs fall through to per-byte tokens.
const minRunLen = 2

// printable reports whether b belongs to a printable run:
// ASCII 0x20..0x7e plus tab, newline and carriage return.
func printable(b byte) bool {
	return (b >= 0x20 && b <= 0x7e) || b == '\t' || b == '\n' || b == '\r'
}

// ParseFile reads at most maxBytes from path and scans the prefix into
// a token stream. Cancellation is cooperative: the scan polls ctx at
// least once per emitted token and returns an interrupted Outcome with
// the partial stream when ctx is done. I/O failures are folded into an
// errored Outcome; nothing escapes as an error.
func ParseFile(ctx context.Context, path string, maxBytes int) Outcome {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	f, err := os.Open(path)
	if err != nil {
		return errored(fmt.Sprintf("Error parsing: %v", err))
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(maxBytes)))
	if err != nil {
		return errored(fmt.Sprintf("Error parsing: %v", err))
	}
	return Scan(ctx, data)
}

// Scan tokenizes data with a two-state automaton (outside-run /
// inside-run). Maximal runs of minRunLen or more printable bytes
// become String tokens; every other byte becomes one Byte token, in
// strict positional order.
func Scan(ctx context.Context, data []byte) Outcome {
	var tokens []Token

	emit := func(t Token) bool {
		if ctx != nil && ctx.Err() != nil {
			return false
		}
		tokens = append(tokens, t)
		return true
	}

	i := 0
	for i < len(data) {
		if !printable(data[i]) {
			if !emit(ByteToken(data[i])) {
				return Outcome{Tokens: tokens, Flag: FlagInterrupted, Status: "Interrupted"}
			}
			i++
			continue
		}

		// inside-run: extend to the maximal printable run
		j := i + 1
		for j < len(data) && printable(data[j]) {
			j++
		}
		if j-i >= minRunLen {
			if !emit(StringToken(decode(data[i:j]))) {
				return Outcome{Tokens: tokens, Flag: FlagInterrupted, Status: "Interrupted"}
			}
		} else {
			// an isolated printable byte does not qualify as a run
			if !emit(ByteToken(data[i])) {
				return Outcome{Tokens: tokens, Flag: FlagInterrupted, Status: "Interrupted"}
			}
		}
		i = j
	}

	if ctx != nil && ctx.Err() != nil {
		return Outcome{Tokens: tokens, Flag: FlagInterrupted, Status: "Interrupted"}
	}
	return Outcome{Tokens: tokens, Flag: FlagComplete, Status: "Complete"}
}

// decode converts run bytes to text, substituting malformed sequences
// instead of failing the scan. Runs are ASCII by construction, so the
// replacement path is a safety net, not the common case.
func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
