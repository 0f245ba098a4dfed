package extract

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/soltools/sol-viewer/internal/parser"
)

var leadingNonWord = regexp.MustCompile(`^\W+`)

// Extractor scans a finished token stream for label/marker/value
// motifs. It is a single linear pass; per rule, the last
// structurally-valid accepted match wins and non-matching later label
// occurrences are no-ops.
type Extractor struct {
	rules RuleSet
	log   *slog.Logger
}

func NewExtractor(rules RuleSet, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	if len(rules.Fields) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules, log: log}
}

// Extract returns one entry per rule, NotFound when no accepted match
// exists. The input stream is read-only and never mutated.
func (e *Extractor) Extract(tokens []parser.Token) Fields {
	out := make(Fields, len(e.rules.Fields))
	for _, r := range e.rules.Fields {
		out[r.Name] = NotFound
	}

	for i, t := range tokens {
		if t.Kind != parser.KindString {
			continue
		}
		for _, r := range e.rules.Fields {
			if t.Value != r.Label {
				continue
			}
			raw, ok := matchMotif(tokens, i)
			if !ok {
				continue
			}
			cleaned := CleanValue(raw)
			if !r.accepts(cleaned) {
				// candidate rejected: keep the prior value, keep scanning
				continue
			}
			out[r.Name] = cleaned
		}
	}
	return out
}

// matchMotif tries both fixed motifs at the position after a label:
//
//	3-token: 0x06, String(value), 0x00
//	4-token: 0x06, Byte(any), String(value), 0x00
func matchMotif(tokens []parser.Token, i int) (string, bool) {
	if i+3 < len(tokens) &&
		tokens[i+1] == parser.ByteToken(0x06) &&
		tokens[i+2].Kind == parser.KindString &&
		tokens[i+3] == parser.ByteToken(0x00) {
		return tokens[i+2].Value, true
	}
	if i+4 < len(tokens) &&
		tokens[i+1] == parser.ByteToken(0x06) &&
		tokens[i+2].Kind == parser.KindByte &&
		tokens[i+3].Kind == parser.KindString &&
		tokens[i+4] == parser.ByteToken(0x00) {
		return tokens[i+3].Value, true
	}
	return "", false
}

// CleanValue strips embedded nulls, surrounding whitespace and any
// leading run of non-word characters from a captured value.
func CleanValue(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.TrimSpace(s)
	return leadingNonWord.ReplaceAllString(s, "")
}

// ExtractCredentials runs the built-in Email/Password rules over a
// token stream.
func ExtractCredentials(tokens []parser.Token) Credentials {
	return NewExtractor(DefaultRules(), nil).Extract(tokens).Credentials()
}
