package crypto

import (
	"crypto/rand"
	"math/big"

	"github.com/MuriData/porc-zkproof/pkg/field"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
)

// HashNodes hashes two child node values into their parent, mixing the tree
// level into the preimage. The level tag separates hash domains across
// levels, so a (left, right) collision at one depth cannot be replayed at
// another. Inputs are fed as canonical 32-byte fr.Element encodings to match
// the in-circuit hasher exactly.
func HashNodes(level int, left, right *big.Int) *big.Int {
	h := poseidon2.NewMerkleDamgardHasher()

	var lvlFr, lFr, rFr fr.Element
	lvlFr.SetUint64(uint64(level))
	lFr.SetBigInt(left)
	rFr.SetBigInt(right)

	lvlBytes := lvlFr.Bytes()
	lBytes := lFr.Bytes()
	rBytes := rFr.Bytes()
	h.Write(lvlBytes[:])
	h.Write(lBytes[:])
	h.Write(rBytes[:])

	return new(big.Int).SetBytes(h.Sum(nil))
}

// HashLeaf hashes a raw data chunk into a leaf value. The chunk is split
// into 31-byte field elements and absorbed in order.
func HashLeaf(chunk []byte) *big.Int {
	h := poseidon2.NewMerkleDamgardHasher()

	for _, elem := range field.Bytes2Elements(chunk) {
		var e fr.Element
		e.SetBigInt(elem)
		b := e.Bytes()
		h.Write(b[:])
	}

	return new(big.Int).SetBytes(h.Sum(nil))
}

// RandomChallenge draws a uniform BN254 scalar.
func RandomChallenge() (*big.Int, error) {
	return rand.Int(rand.Reader, ecc.BN254.ScalarField())
}
