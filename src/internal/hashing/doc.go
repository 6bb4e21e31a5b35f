// Package hashing provides MD5 helpers used for change detection and for
// deriving file names.
//
// The config watcher compares FileChecksum results between polls to detect
// edits of the configuration file; the disk cache names entries by the
// StringChecksum of their URL.
package hashing
