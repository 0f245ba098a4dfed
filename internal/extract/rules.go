package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Built-in rule names.
const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

// Rule locates one field: a String token equal to Label followed by a
// marker/value motif. RequireAll lists substrings the cleaned value
// must contain before it is accepted; an empty list accepts any
// structural match.
type Rule struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	RequireAll []string `json:"require_all,omitempty"`
}

func (r Rule) accepts(value string) bool {
	for _, sub := range r.RequireAll {
		if !strings.Contains(value, sub) {
			return false
		}
	}
	return true
}

// RuleSet is the full extraction configuration.
type RuleSet struct {
	Fields []Rule `json:"fields"`
}

// DefaultRules matches the viewer's two credential motifs: Email is
// only accepted when it looks address-shaped, Password is accepted on
// any structural match.
func DefaultRules() RuleSet {
	return RuleSet{Fields: []Rule{
		{Name: FieldEmail, Label: "Email", RequireAll: []string{"@", "."}},
		{Name: FieldPassword, Label: "Password"},
	}}
}

// rulesSchema constrains user-supplied rule files (draft 2020-12 subset).
const rulesSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["fields"],
  "properties": {
    "fields": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["name", "label"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "label": {"type": "string", "minLength": 1},
          "require_all": {
            "type": "array",
            "items": {"type": "string", "minLength": 1}
          }
        }
      }
    }
  }
}`

// LoadRules reads a rule file and validates it against rulesSchema
// before decoding. Path "" means the built-in rules.
func LoadRules(path string) (RuleSet, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read rules: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("rules.json", strings.NewReader(rulesSchema)); err != nil {
		return RuleSet{}, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("rules.json")
	if err != nil {
		return RuleSet{}, fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return RuleSet{}, fmt.Errorf("unmarshal rules: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return RuleSet{}, fmt.Errorf("rules do not match schema: %w", err)
	}

	var rs RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("decode rules: %w", err)
	}
	return rs, nil
}
