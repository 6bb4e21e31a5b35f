package hashing

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMD5ReaderProxy(t *testing.T) {
	proxy := NewMD5ReaderProxy(strings.NewReader("hello world"))

	data, err := io.ReadAll(proxy)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("expected data to pass through unchanged, got %q", data)
	}

	sum, err := proxy.GetChecksum()
	if err != nil {
		t.Fatalf("GetChecksum failed: %v", err)
	}
	if sum != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
		t.Errorf("unexpected checksum: %s", sum)
	}
}

func TestFileChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("hello world"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	sum, err := FileChecksum(path)
	if err != nil {
		t.Fatalf("FileChecksum failed: %v", err)
	}
	if sum != StringChecksum("hello world") {
		t.Errorf("file checksum %s does not match string checksum", sum)
	}

	if _, err := FileChecksum(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
