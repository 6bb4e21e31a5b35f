package ciphers

import (
	"crypto/tls"
	"testing"
)

func TestDefaultIsNotEmpty(t *testing.T) {
	suites := Default()
	if len(suites) == 0 {
		t.Fatal("expected platform default cipher list to be non-empty")
	}

	// Callers get a copy
	suites[0] = nil
	if Default()[0] == nil {
		t.Error("modifying the returned slice must not affect the default list")
	}
}

func TestLookup(t *testing.T) {
	name := tls.CipherSuiteName(tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256)
	suite, ok := Lookup(name)
	if !ok {
		t.Fatalf("expected %s to be known", name)
	}
	if suite.ID != tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256 {
		t.Errorf("unexpected suite id %x", suite.ID)
	}

	if _, ok := Lookup("TLS_NOT_A_CIPHER"); ok {
		t.Error("expected unknown cipher lookup to fail")
	}
}

func TestResolve(t *testing.T) {
	first := tls.CipherSuiteName(tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384)
	second := tls.CipherSuiteName(tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256)

	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"explicit order kept", []string{first, second}, []string{first, second}},
		{"unknown and duplicate dropped", []string{second, "bogus", second}, []string{second}},
		{"empty falls back to default", nil, Names(Default())},
		{"only unknown falls back to default", []string{"bogus"}, Names(Default())},
		{"default expands", []string{"default"}, Names(Default())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Names(Resolve(tt.input))
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("position %d: expected %s, got %s", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestIDs(t *testing.T) {
	suites := Default()
	ids := IDs(suites)
	if len(ids) != len(suites) {
		t.Fatalf("expected %d ids, got %d", len(suites), len(ids))
	}
	for i := range suites {
		if ids[i] != suites[i].ID {
			t.Errorf("position %d: id mismatch", i)
		}
	}
}
