package useragents

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	nperrors "github.com/maksimkurb/netpolicy/src/internal/errors"
	"github.com/maksimkurb/netpolicy/src/internal/log"
)

func init() {
	log.DisableLogs()
}

func TestParse_SkipsMalformedRecord(t *testing.T) {
	content := `
[[user_agent]]
identifier = "firefox"
title = "Firefox 128"
value = "Mozilla/5.0 ({{platform}}; rv:128.0) Gecko/20100101 Firefox/128.0"

[[user_agent]]
identifier = "broken"
title = "Missing value"

[[user_agent]]
identifier = "chrome"
title = "Chrome 126"
value = "Mozilla/5.0 ({{platform}}) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
`
	table, skipped, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	expected := []string{DefaultIdentifier, "firefox", "chrome"}
	got := table.Identifiers()
	if len(got) != len(expected) {
		t.Fatalf("expected identifiers %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("position %d: expected %s, got %s", i, expected[i], got[i])
		}
	}

	if len(skipped) != 1 {
		t.Fatalf("expected 1 skipped record, got %d", len(skipped))
	}
	if !errors.Is(skipped[0], nperrors.ErrMalformedUserAgent) {
		t.Errorf("expected MALFORMED_USER_AGENT error, got %v", skipped[0])
	}
}

func TestParse_RecordErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing identifier", `
[[user_agent]]
value = "x"`},
		{"invalid identifier", `
[[user_agent]]
identifier = "Not Valid"
value = "x"`},
		{"non-string value", `
[[user_agent]]
identifier = "numeric"
value = 42`},
		{"unknown field", `
[[user_agent]]
identifier = "extra"
value = "x"
priority = "high"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, skipped, err := Parse([]byte(tt.content))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(skipped) != 1 {
				t.Errorf("expected 1 skipped record, got %d", len(skipped))
			}
			if table.Len() != 1 {
				t.Errorf("expected only the default entry, got %v", table.Identifiers())
			}
		})
	}
}

func TestParse_DuplicateFirstWins(t *testing.T) {
	content := `
[[user_agent]]
identifier = "firefox"
value = "first"

[[user_agent]]
identifier = "firefox"
value = "second"
`
	table, skipped, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(skipped) != 1 {
		t.Errorf("expected duplicate to be skipped, got %d skipped", len(skipped))
	}
	info, ok := table.Get("firefox")
	if !ok || info.Value != "first" {
		t.Errorf("expected first record to win, got %+v", info)
	}
	if info.Title != "firefox" {
		t.Errorf("expected empty title to fall back to identifier, got %q", info.Title)
	}
}

func TestParse_DefaultOverride(t *testing.T) {
	content := `
[[user_agent]]
identifier = "opera"
value = "Opera"

[[user_agent]]
identifier = "default"
title = "Custom default"
value = "Custom/1.0"
`
	table, _, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	ids := table.Identifiers()
	if len(ids) != 2 || ids[0] != DefaultIdentifier || ids[1] != "opera" {
		t.Fatalf("expected [default opera], got %v", ids)
	}
	if got := table.Resolve(DefaultIdentifier).Value; got != "Custom/1.0" {
		t.Errorf("expected overridden default, got %q", got)
	}
}

func TestParse_InvalidDocument(t *testing.T) {
	table, _, err := Parse([]byte(`[[user_agent]`))
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
	if table == nil || table.Len() != 1 {
		t.Errorf("expected default-only table on error")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "useragents.toml")
	content := `
[[user_agent]]
identifier = "safari"
value = "Safari"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	table, skipped, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(skipped) != 0 {
		t.Errorf("expected no skipped records, got %v", skipped)
	}
	if _, ok := table.Get("safari"); !ok {
		t.Error("expected safari entry")
	}

	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTable_ResolveUnknown(t *testing.T) {
	table := NewTable()
	for _, id := range []string{"", "unknown", "FIREFOX", "default "} {
		if got := table.Resolve(id); got.Identifier != DefaultIdentifier {
			t.Errorf("Resolve(%q) = %q, want default", id, got.Identifier)
		}
	}
}
