package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// Sum returns the hex SHA-256 of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// File returns the hex SHA-256 of the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// ChecksumMatcher remembers the last known checksum of a file and tells
// whether its content has changed since.
type ChecksumMatcher struct {
	expectedChecksum string
}

// NewChecksumMatcher creates a new ChecksumMatcher with the expected checksum.
func NewChecksumMatcher(expectedChecksum string) *ChecksumMatcher {
	return &ChecksumMatcher{expectedChecksum: expectedChecksum}
}

func (cm *ChecksumMatcher) Expected() string { return cm.expectedChecksum }

// Match checks if the provided data's checksum matches the expected checksum.
func (cm *ChecksumMatcher) Match(data []byte) (bool, error) {
	if cm.expectedChecksum == "" {
		return false, errors.New("expected checksum is not set")
	}
	return Sum(data) == cm.expectedChecksum, nil
}

// Update hashes path and reports whether it differs from the expected
// checksum; the new checksum becomes the expected one.
func (cm *ChecksumMatcher) Update(path string) (bool, error) {
	sum, err := File(path)
	if err != nil {
		return false, err
	}
	changed := sum != cm.expectedChecksum
	cm.expectedChecksum = sum
	return changed, nil
}
