package hashing

import (
	"crypto/md5"
	"encoding/hex"
	"hash"
	"io"
	"os"
)

type ChecksumProvider interface {
	GetChecksum() (string, error)
}

// ChecksumReaderProxy is a proxy that calculates the MD5 checksum of data as it's read.
type ChecksumReaderProxy struct {
	reader   io.Reader
	checksum hash.Hash
}

// NewMD5ReaderProxy creates a new instance of ChecksumReaderProxy.
func NewMD5ReaderProxy(reader io.Reader) *ChecksumReaderProxy {
	return &ChecksumReaderProxy{
		reader:   reader,
		checksum: md5.New(),
	}
}

// Read reads data from the underlying reader and feeds it to the checksum.
func (p *ChecksumReaderProxy) Read(buf []byte) (int, error) {
	n, err := p.reader.Read(buf)
	if n > 0 {
		if _, checksumErr := p.checksum.Write(buf[:n]); checksumErr != nil {
			return n, checksumErr
		}
	}
	return n, err
}

// GetChecksum returns the calculated MD5 checksum as a hex string.
func (p *ChecksumReaderProxy) GetChecksum() (string, error) {
	return hex.EncodeToString(p.checksum.Sum(nil)), nil
}

// FileChecksum returns the MD5 checksum of a file's content.
func FileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	proxy := NewMD5ReaderProxy(f)
	if _, err := io.Copy(io.Discard, proxy); err != nil {
		return "", err
	}
	return proxy.GetChecksum()
}

// StringChecksum returns the MD5 checksum of s. Used to derive stable file names.
func StringChecksum(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
