package parser

// Flag reports how a tokenizer invocation ended.
type Flag string

const (
	FlagComplete    Flag = "complete"
	FlagInterrupted Flag = "interrupted"
	FlagTimedOut    Flag = "timedOut"
	FlagErrored     Flag = "errored"
)

// Outcome is the result of one tokenizer invocation: the ordered token
// stream, how the scan ended, and a human-readable status line. Callers
// treat it as read-only; a new selection produces a fresh Outcome.
type Outcome struct {
	Tokens []Token `json:"tokens"`
	Flag   Flag    `json:"flag"`
	Status string  `json:"status"`
}

// Complete reports whether every byte of the (possibly truncated)
// input prefix was accounted for.
func (o Outcome) Complete() bool {
	return o.Flag == FlagComplete
}

// TokenBytes sums the input bytes represented by the token stream.
func (o Outcome) TokenBytes() int {
	n := 0
	for _, t := range o.Tokens {
		n += t.ByteLen()
	}
	return n
}

func errored(msg string) Outcome {
	return Outcome{
		Tokens: []Token{ErrorToken(msg)},
		Flag:   FlagErrored,
		Status: "Error",
	}
}
