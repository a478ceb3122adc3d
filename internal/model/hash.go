package model

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainSnapshot prefixes snapshot fingerprints.
// Version suffix enables future algorithm migration.
const DomainSnapshot = "watchtower/snapshot/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns a stable hash of a whole collection snapshot.
func Fingerprint(snapshot any) (string, error) {
	canonical, err := MarshalCanonical(snapshot)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}

// FingerprintJSON fingerprints an already-encoded snapshot.
func FingerprintJSON(data []byte) (string, error) {
	var tree any
	if err := unmarshalNumbers(data, &tree); err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return Fingerprint(tree)
}

// Equal reports deep value equality of a and b over canonical JSON.
// Values that cannot be canonicalized are never equal.
func Equal(a, b any) bool {
	ca, err := MarshalCanonical(a)
	if err != nil {
		return false
	}
	cb, err := MarshalCanonical(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ca, cb)
}
