// Package porc implements the vanilla (non-circuit) Proof of Retrievable
// Commitments scheme: pseudo-random challenges are mapped to leaf positions
// in committed Merkle trees, and a proof exposes the challenged leaf values
// together with their authentication paths.
package porc

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/MuriData/porc-zkproof/pkg/merkle"
	"golang.org/x/sync/errgroup"
)

// ErrStructuralMismatch reports parallel input sequences whose lengths
// disagree. It is raised before any proving work starts.
var ErrStructuralMismatch = errors.New("porc: structural mismatch")

// PublicParams are the instance-wide parameters shared by prover and
// verifier.
type PublicParams struct {
	// Leaves is the per-sector leaf count. Must be a power of two.
	Leaves uint64
	// Sectors is the number of committed trees.
	Sectors int
}

// Depth returns the tree depth implied by the leaf count.
func (p PublicParams) Depth() int {
	if p.Leaves == 0 {
		return 0
	}
	return bits.Len64(p.Leaves) - 1
}

// PublicInputs are the per-proof public values. Challenges[i] probes the
// tree committed to by Commitments[i]; the two sequences are parallel.
type PublicInputs struct {
	Challenges  []*big.Int
	Commitments []*big.Int
}

// PrivateInputs hold the prover-only data: the actual trees. Challenge i
// is answered from Trees[i % len(Trees)].
type PrivateInputs struct {
	Trees []*merkle.Tree
}

// Proof is the vanilla proof: one challenged leaf value and one
// authentication path per challenge, in challenge order.
type Proof struct {
	Leaves []*big.Int
	Paths  [][]merkle.PathStep
}

// LeafIndex maps a challenge field element to a leaf position by reducing
// it modulo the leaf count.
func LeafIndex(challenge *big.Int, leaves uint64) uint64 {
	return new(big.Int).Mod(challenge, new(big.Int).SetUint64(leaves)).Uint64()
}

// AuthPathBits expands a leaf index into its per-level direction bits,
// ordered leaf level first. Bit j is true when the node ascended through at
// level j is a right child. The length equals the tree depth.
func AuthPathBits(index, leaves uint64) []bool {
	depth := PublicParams{Leaves: leaves}.Depth()
	dirs := make([]bool, depth)
	for j := 0; j < depth; j++ {
		dirs[j] = (index>>j)&1 == 1
	}
	return dirs
}

// Prove answers every challenge with the leaf value and authentication path
// from the corresponding tree. Challenges are independent, so they are
// resolved concurrently; the result keeps the original challenge order.
func Prove(params PublicParams, pub PublicInputs, priv PrivateInputs) (*Proof, error) {
	if len(pub.Challenges) != len(pub.Commitments) {
		return nil, fmt.Errorf("%w: %d challenges vs %d commitments",
			ErrStructuralMismatch, len(pub.Challenges), len(pub.Commitments))
	}
	if len(priv.Trees) == 0 && len(pub.Challenges) > 0 {
		return nil, fmt.Errorf("%w: no trees for %d challenges", ErrStructuralMismatch, len(pub.Challenges))
	}

	proof := &Proof{
		Leaves: make([]*big.Int, len(pub.Challenges)),
		Paths:  make([][]merkle.PathStep, len(pub.Challenges)),
	}

	var g errgroup.Group
	for i, challenge := range pub.Challenges {
		g.Go(func() error {
			tree := priv.Trees[i%len(priv.Trees)]
			if tree.LeafCount() != params.Leaves {
				return fmt.Errorf("challenge %d: tree has %d leaves, params say %d",
					i, tree.LeafCount(), params.Leaves)
			}

			index := LeafIndex(challenge, params.Leaves)
			leaf, err := tree.Leaf(index)
			if err != nil {
				return fmt.Errorf("challenge %d: %w", i, err)
			}
			path, err := tree.ProofPath(index)
			if err != nil {
				return fmt.Errorf("challenge %d: %w", i, err)
			}

			proof.Leaves[i] = leaf
			proof.Paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return proof, nil
}

// Verify re-walks every authentication path natively and checks it against
// the committed root, including that the path's direction bits match the
// positions the challenge dictates.
func Verify(params PublicParams, pub PublicInputs, proof *Proof) (bool, error) {
	if len(pub.Challenges) != len(pub.Commitments) {
		return false, fmt.Errorf("%w: %d challenges vs %d commitments",
			ErrStructuralMismatch, len(pub.Challenges), len(pub.Commitments))
	}
	if len(proof.Leaves) != len(pub.Challenges) || len(proof.Paths) != len(pub.Challenges) {
		return false, fmt.Errorf("%w: proof covers %d leaves / %d paths for %d challenges",
			ErrStructuralMismatch, len(proof.Leaves), len(proof.Paths), len(pub.Challenges))
	}

	depth := params.Depth()
	for i, challenge := range pub.Challenges {
		path := proof.Paths[i]
		if len(path) != depth {
			return false, nil
		}

		index := LeafIndex(challenge, params.Leaves)
		for j, want := range AuthPathBits(index, params.Leaves) {
			if path[j].Right != want {
				return false, nil
			}
		}

		if !merkle.VerifyProofPath(proof.Leaves[i], path, pub.Commitments[i]) {
			return false, nil
		}
	}

	return true, nil
}
