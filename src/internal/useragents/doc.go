// Package useragents loads the user-agent resource offered to browsing
// sessions.
//
// The resource is an ordered TOML array of tables with identifier, title
// and value fields. Loading never fails because of a single bad record:
// malformed records are logged and skipped, duplicates keep the first
// occurrence, and the built-in "default" entry is always present.
//
// Values may reference {{platform}}, {{engineVersion}} and
// {{applicationVersion}}, which Expand fills in via fasttemplate.
package useragents
