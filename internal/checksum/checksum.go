package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// New returns a running SHA-256 to feed while a payload streams to disk.
func (g *Generator) New() hash.Hash {
	return sha256.New()
}

// Sum renders h as lowercase hex.
func (g *Generator) Sum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// FileHash returns the SHA-256 of the file at path.
func (g *Generator) FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := g.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return g.Sum(h), nil
}

// VerifyFile reports whether the file at path has the expected hash.
func (g *Generator) VerifyFile(path, expectedHash string) (bool, error) {
	computed, err := g.FileHash(path)
	if err != nil {
		return false, err
	}
	return computed == expectedHash, nil
}
