// Package registry implements the network policy registry: the single
// source of truth for networking policy and for the networking resources
// shared by browsing sessions.
//
// Scalar policy lives in an immutable State published through an atomic
// pointer. Every option change builds a new State with one field replaced
// and swaps it in, so readers never observe a partial update and never take
// a lock. The persistent cookie jar and the disk cache are created lazily on
// first use and owned by the Registry; sessions only borrow them.
//
// Typical wiring:
//
//	reg := registry.New(registry.Options{
//	    Source:         store,
//	    UserAgentsPath: cfg.GetAbsUserAgentsPath(),
//	    ProfileDir:     cfg.GetAbsProfileDir(),
//	})
//	if err := reg.Initialize(); err != nil {
//	    log.Warnf("Using built-in network policy: %v", err)
//	}
//	defer reg.Close()
//
//	s, err := reg.CreateSession(false, false, nil)
package registry
