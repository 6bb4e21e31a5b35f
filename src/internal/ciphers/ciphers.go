// Package ciphers exposes the TLS cipher suites offered by new sessions.
//
// The platform TLS provider is crypto/tls: Default returns its secure suite
// list in preference order. Names follow the IANA names used by crypto/tls
// (for example "TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256").
package ciphers

import (
	"crypto/tls"
	"sync"
)

var (
	loadOnce sync.Once
	defaults []*tls.CipherSuite
	byName   map[string]*tls.CipherSuite
)

func load() {
	loadOnce.Do(func() {
		defaults = tls.CipherSuites()
		byName = make(map[string]*tls.CipherSuite, len(defaults))
		for _, suite := range defaults {
			byName[suite.Name] = suite
		}
	})
}

// Default returns the platform default cipher suites. The returned slice is a
// copy; the suites themselves must not be modified.
func Default() []*tls.CipherSuite {
	load()
	return append([]*tls.CipherSuite(nil), defaults...)
}

// Lookup finds a default suite by name.
func Lookup(name string) (*tls.CipherSuite, bool) {
	load()
	suite, ok := byName[name]
	return suite, ok
}

// Resolve turns configured names into suites. The name "default" expands to
// the whole default list; unknown names and duplicates are dropped. An empty
// result falls back to the default list.
func Resolve(names []string) []*tls.CipherSuite {
	load()
	seen := make(map[uint16]bool)
	var out []*tls.CipherSuite

	add := func(suite *tls.CipherSuite) {
		if !seen[suite.ID] {
			seen[suite.ID] = true
			out = append(out, suite)
		}
	}

	for _, name := range names {
		if name == "default" {
			for _, suite := range defaults {
				add(suite)
			}
			continue
		}
		if suite, ok := byName[name]; ok {
			add(suite)
		}
	}

	if len(out) == 0 {
		return Default()
	}
	return out
}

// IDs returns the suite identifiers in order, as used by tls.Config.CipherSuites.
func IDs(suites []*tls.CipherSuite) []uint16 {
	ids := make([]uint16, 0, len(suites))
	for _, suite := range suites {
		ids = append(ids, suite.ID)
	}
	return ids
}

// Names returns the suite names in order.
func Names(suites []*tls.CipherSuite) []string {
	names := make([]string, 0, len(suites))
	for _, suite := range suites {
		names = append(names, suite.Name)
	}
	return names
}
