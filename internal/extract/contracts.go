package extract

import "github.com/soltools/sol-viewer/internal/parser"

// NotFound is the sentinel for a field with no valid extraction.
const NotFound = "Not found"

// FieldExtractor is stage 2: finished token stream -> named fields.
type FieldExtractor interface {
	Extract(tokens []parser.Token) Fields
}

// Fields maps rule name -> cleaned value (or NotFound).
type Fields map[string]string

// Credentials is the pair of fields the viewer surfaces.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials projects the two well-known fields out of a result set.
func (f Fields) Credentials() Credentials {
	c := Credentials{Email: NotFound, Password: NotFound}
	if v, ok := f[FieldEmail]; ok {
		c.Email = v
	}
	if v, ok := f[FieldPassword]; ok {
		c.Password = v
	}
	return c
}

// Found reports whether v is a real extraction, not the sentinel.
func Found(v string) bool {
	return v != "" && v != NotFound
}
