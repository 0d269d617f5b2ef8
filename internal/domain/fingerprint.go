package domain

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ErrInvalidFingerprint is returned when a hex string does not decode to a
// 256-bit digest.
var ErrInvalidFingerprint = errors.New("invalid fingerprint")

// Fingerprint is the content-addressed identity of a card: a BLAKE2b-256
// digest over a tag plus the card's semantic fields. Two cards have the same
// fingerprint iff they have the same semantic content. Collisions are treated
// as impossible and not defended against.
type Fingerprint [blake2b.Size256]byte

// ParseFingerprint decodes the lowercase hex form used in storage.
func ParseFingerprint(s string) (Fingerprint, error) {
	var fp Fingerprint
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fp, fmt.Errorf("%w: %q", ErrInvalidFingerprint, s)
	}
	if len(raw) != len(fp) {
		return fp, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidFingerprint, len(fp), len(raw))
	}
	copy(fp[:], raw)
	return fp, nil
}

// String returns the lowercase hex form.
func (fp Fingerprint) String() string {
	return hex.EncodeToString(fp[:])
}

// Compare orders fingerprints bytewise, like bytes.Compare. This is the
// ordering used for the deterministic session shuffle.
func (fp Fingerprint) Compare(other Fingerprint) int {
	return bytes.Compare(fp[:], other[:])
}

// fingerprintOf hashes the given byte fields in order. blake2b.New256 only
// errors when given a key, so the error is impossible here.
func fingerprintOf(fields ...[]byte) Fingerprint {
	h, err := blake2b.New256(nil)
	if err != nil {
		// ALLOW-PANIC: unkeyed blake2b construction cannot fail
		panic(err)
	}
	for _, f := range fields {
		h.Write(f)
	}
	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp
}
