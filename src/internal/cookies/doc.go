// Package cookies implements the cookie jar used by netpolicy sessions.
//
// Jar wraps net/http/cookiejar (with the public suffix list from
// golang.org/x/net/publicsuffix) and keeps its own record of every stored
// cookie together with the time it was first created. The record is what
// makes age-based purging possible: Clear rebuilds a fresh inner jar from the
// surviving records and swaps it in, so a concurrent reader sees either the
// jar before the purge or the jar after it.
//
// A persistent jar saves non-session cookies as JSON into the profile
// directory. Ephemeral jars never touch disk.
package cookies
