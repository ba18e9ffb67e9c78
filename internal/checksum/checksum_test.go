package checksum

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStreamingHashMatchesFileHash(t *testing.T) {
	gen := NewGenerator()

	payload := []byte("%PDF-1.7 issue payload")
	path := filepath.Join(t.TempDir(), "issue.pdf")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatal(err)
	}

	h := gen.New()
	_, _ = h.Write(payload[:5])
	_, _ = h.Write(payload[5:])
	streamed := gen.Sum(h)

	fromFile, err := gen.FileHash(path)
	if err != nil {
		t.Fatalf("FileHash failed: %v", err)
	}

	if streamed != fromFile {
		t.Errorf("Hash mismatch: %s != %s", streamed, fromFile)
	}

	// SHA-256 hex
	if len(streamed) != 64 {
		t.Errorf("Hash wrong length: %d, expected 64", len(streamed))
	}
}

func TestVerifyFile(t *testing.T) {
	gen := NewGenerator()

	path := filepath.Join(t.TempDir(), "issue.epub")
	if err := os.WriteFile(path, []byte("epub"), 0o600); err != nil {
		t.Fatal(err)
	}

	hash, err := gen.FileHash(path)
	if err != nil {
		t.Fatal(err)
	}

	ok, err := gen.VerifyFile(path, hash)
	if err != nil || !ok {
		t.Errorf("VerifyFile failed for correct hash: ok=%v err=%v", ok, err)
	}

	if err := os.WriteFile(path, []byte("changed"), 0o600); err != nil {
		t.Fatal(err)
	}
	ok, _ = gen.VerifyFile(path, hash)
	if ok {
		t.Errorf("VerifyFile should fail for changed content")
	}

	if _, err := gen.FileHash(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Errorf("FileHash should fail for a missing file")
	}
}
