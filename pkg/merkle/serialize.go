package merkle

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Binary tree format:
//
//	uint32(depth)
//	For each level 0..depth, all 2^(depth-level) node values in index
//	order, each as a canonical 32-byte big-endian fr.Element.

// Save writes the tree to w in a deterministic binary format.
func (t *Tree) Save(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, uint32(t.Depth)); err != nil {
		return fmt.Errorf("write depth: %w", err)
	}

	for lvl := 0; lvl <= t.Depth; lvl++ {
		for idx, node := range t.Levels[lvl] {
			var elem fr.Element
			elem.SetBigInt(node)
			b := elem.Bytes()
			if _, err := w.Write(b[:]); err != nil {
				return fmt.Errorf("write level %d node %d: %w", lvl, idx, err)
			}
		}
	}

	return nil
}

// LoadTree reads a tree written by Save.
func LoadTree(r io.Reader) (*Tree, error) {
	var depth uint32
	if err := binary.Read(r, binary.BigEndian, &depth); err != nil {
		return nil, fmt.Errorf("read depth: %w", err)
	}
	if depth > 63 {
		return nil, fmt.Errorf("unreasonable tree depth %d", depth)
	}

	levels := make([][]*big.Int, depth+1)
	var buf [32]byte
	for lvl := 0; lvl <= int(depth); lvl++ {
		count := 1 << (int(depth) - lvl)
		nodes := make([]*big.Int, count)
		for idx := 0; idx < count; idx++ {
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, fmt.Errorf("read level %d node %d: %w", lvl, idx, err)
			}
			var elem fr.Element
			elem.SetBytes(buf[:])
			nodes[idx] = new(big.Int)
			elem.BigInt(nodes[idx])
		}
		levels[lvl] = nodes
	}

	return &Tree{Depth: int(depth), Levels: levels}, nil
}
