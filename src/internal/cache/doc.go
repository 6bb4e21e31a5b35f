// Package cache implements the disk cache shared by non-private sessions.
//
// Every entry is stored as two files named after the MD5 checksum of its URL:
// a zstd-compressed body (<key>.zst) and a JSON metadata sidecar
// (<key>.meta). The index is rebuilt from the sidecars when the cache is
// opened. The cache enforces a size limit by evicting the oldest entries and
// supports purging entries created within a time window.
package cache
