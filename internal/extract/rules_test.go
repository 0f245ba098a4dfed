package extract

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRulesDefaults(t *testing.T) {
	t.Parallel()

	rs, err := LoadRules("")
	if err != nil {
		t.Fatal(err)
	}
	if len(rs.Fields) != 2 {
		t.Fatalf("default rule count = %d, want 2", len(rs.Fields))
	}
	if rs.Fields[0].Name != FieldEmail || rs.Fields[1].Name != FieldPassword {
		t.Fatalf("unexpected default rules: %+v", rs.Fields)
	}
}

func TestLoadRulesValidFile(t *testing.T) {
	t.Parallel()

	path := writeRules(t, `{
	  "fields": [
	    {"name": "email", "label": "Email", "require_all": ["@", "."]},
	    {"name": "pin", "label": "PIN"}
	  ]
	}`)
	rs, err := LoadRules(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rs.Fields) != 2 || rs.Fields[1].Label != "PIN" {
		t.Fatalf("unexpected rules: %+v", rs.Fields)
	}
}

func TestLoadRulesRejectsInvalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{"missing fields key", `{}`},
		{"empty fields", `{"fields": []}`},
		{"rule without label", `{"fields": [{"name": "email"}]}`},
		{"unknown property", `{"fields": [{"name": "a", "label": "A", "extra": 1}]}`},
		{"not json", `{"fields": [`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			if _, err := LoadRules(writeRules(t, c.body)); err == nil {
				t.Fatalf("expected error for %s", c.name)
			}
		})
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
