package commitment

import (
	"crypto/subtle"
	"fmt"

	"github.com/spacemeshos/sha256-simd"
)

// parentSum hashes two child nodes into their parent.
func parentSum(left, right []byte) []byte {
	res := sha256.Sum256(append(append(make([]byte, 0, 2*NodeSize), left...), right...))
	return res[:]
}

func constantTimeEqual(a, b []byte) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare(a, b) == 1
}

// Tree is a full in-memory merkle tree over leaf digests, padded with zero
// nodes to the next power of two. It exists for the commit side of the
// scheme (notaries and test fixtures); the verifier itself only ever walks
// authentication paths.
type Tree struct {
	layers [][][]byte // layers[0] is the padded leaf layer
	width  uint64     // unpadded leaf count
}

// NewTree builds a tree over the given leaves. Every leaf must be
// NodeSize bytes.
func NewTree(leaves [][]byte) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("at least one leaf is required")
	}
	for i, leaf := range leaves {
		if len(leaf) != NodeSize {
			return nil, fmt.Errorf("leaf %d: expected %d bytes, got %d", i, NodeSize, len(leaf))
		}
	}

	padded := uint64(1)
	for padded < uint64(len(leaves)) {
		padded *= 2
	}
	layer := make([][]byte, padded)
	copy(layer, leaves)
	for i := uint64(len(leaves)); i < padded; i++ {
		layer[i] = make([]byte, NodeSize)
	}

	t := &Tree{width: uint64(len(leaves))}
	t.layers = append(t.layers, layer)
	for len(layer) > 1 {
		next := make([][]byte, len(layer)/2)
		for i := range next {
			next[i] = parentSum(layer[2*i], layer[2*i+1])
		}
		t.layers = append(t.layers, next)
		layer = next
	}
	return t, nil
}

// Root returns the tree root.
func (t *Tree) Root() []byte {
	return t.layers[len(t.layers)-1][0]
}

// AuthPath returns the authentication path for the given leaf index,
// ordered leaf to root.
func (t *Tree) AuthPath(leafIndex uint64) ([][]byte, error) {
	if leafIndex >= t.width {
		return nil, fmt.Errorf("leaf index %d out of range (%d leaves)", leafIndex, t.width)
	}
	path := make([][]byte, 0, len(t.layers)-1)
	idx := leafIndex
	for _, layer := range t.layers[:len(t.layers)-1] {
		path = append(path, layer[idx^1])
		idx /= 2
	}
	return path, nil
}
