// Package log provides simple leveled logging for netpolicy.
//
// Messages are written with colored level prefixes: DEBUG (verbose mode
// only), INFO and WARN go to stdout, ERROR goes to stderr.
//
// # Example Usage
//
//	log.Infof("Loaded %d user agents from %s", n, path)
//	log.Warnf("Skipping user agent record %d: %v", i, err)
//
//	log.SetVerbose(true)
//	log.Debugf("Option %s changed: %v -> %v", key, old, new)
//
// Output control:
//
//	log.SetForceStdErr(true)        // send all logs to stderr
//	log.SetOutput(&outBuf, &errBuf) // capture logs in tests
//
// The package keeps global state guarded by a mutex, so it can be used
// from any goroutine.
package log
