// Package commitment implements the opening side of the transcript
// commitment scheme: hashing a disclosed range into its committed leaf
// value and checking that leaf against the merkle root attested in the
// session header.
package commitment

import (
	"encoding/binary"
	"errors"

	"golang.org/x/crypto/blake2b"
)

const (
	// NodeSize is the size of every tree node and leaf digest.
	NodeSize = 32
	// BlinderSize is the size of the random blinder bound into each leaf.
	BlinderSize = 32

	leafPrefix = 0x00
)

var (
	ErrOpeningMismatch = errors.New("opening does not match commitment")
	ErrMalformedPath   = errors.New("malformed authentication path")
)

// Opener verifies that an opened leaf is included in a commitment root.
// The default implementation is a merkle tree with SHA-256 parent nodes;
// alternative schemes can be plugged in without touching the verification
// orchestration.
type Opener interface {
	VerifyOpening(root []byte, leafIndex uint64, leaf []byte, path [][]byte) error
}

// LeafDigest deterministically maps one disclosed range and its blinder to
// the leaf value committed at notarization time. The direction, offsets and
// length are bound into the digest so an opening cannot be replayed for a
// different span of the transcript.
func LeafDigest(direction uint8, start, length uint32, blinder, data []byte) []byte {
	buf := make([]byte, 0, 10+len(blinder)+len(data))
	buf = append(buf, leafPrefix, direction)
	buf = binary.BigEndian.AppendUint32(buf, start)
	buf = binary.BigEndian.AppendUint32(buf, length)
	buf = append(buf, blinder...)
	buf = append(buf, data...)
	sum := blake2b.Sum256(buf)
	return sum[:]
}

// MerkleOpener verifies openings against a merkle root using SHA-256
// parent hashing.
type MerkleOpener struct{}

// VerifyOpening recomputes the root from the leaf and its authentication
// path and compares it to the committed root. The error carries no detail
// about which node differed.
func (MerkleOpener) VerifyOpening(root []byte, leafIndex uint64, leaf []byte, path [][]byte) error {
	if len(root) != NodeSize || len(leaf) != NodeSize {
		return ErrMalformedPath
	}
	if len(path) > 63 || leafIndex>>uint(len(path)) != 0 {
		return ErrMalformedPath
	}
	hash := leaf
	idx := leafIndex
	for _, sibling := range path {
		if len(sibling) != NodeSize {
			return ErrMalformedPath
		}
		if idx%2 == 0 {
			hash = parentSum(hash, sibling)
		} else {
			hash = parentSum(sibling, hash)
		}
		idx /= 2
	}
	if !constantTimeEqual(hash, root) {
		return ErrOpeningMismatch
	}
	return nil
}
