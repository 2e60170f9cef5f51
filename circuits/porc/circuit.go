// Package porc contains the Proof of Retrievable Commitments circuit: for
// each pseudo-random challenge, the prover shows knowledge of a leaf value
// and an authentication path connecting it to a published Merkle
// commitment, without revealing either.
package porc

import (
	"errors"
	"fmt"

	"github.com/MuriData/porc-zkproof/pkg/field"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"
)

var (
	// ErrStructuralMismatch reports parallel sequences (leaves, paths,
	// commitments, public inputs) whose lengths disagree. Raised before any
	// constraint is emitted.
	ErrStructuralMismatch = errors.New("porc circuit: structural mismatch")

	// ErrAssignmentMissing reports a witness value that is absent on the
	// proving path. Setup-only invocations never populate witnesses and
	// never hit it.
	ErrAssignmentMissing = errors.New("porc circuit: assignment missing")
)

// ChallengeInputs groups the public values one challenge contributes, in
// verification order: the packed direction-bit chunks, then the commitment.
// GeneratePublicInputs recomputes this exact sequence from public data;
// the two must never diverge.
type ChallengeInputs struct {
	PackedPathBits []frontend.Variable `gnark:",public"`
	Commitment     frontend.Variable   `gnark:",public"`
}

// PoRCCircuit verifies one authenticated Merkle opening per challenge. The
// three private sequences are parallel to Publics; all four must have the
// same length, and every path the same depth the instance was shaped with.
type PoRCCircuit struct {
	Publics []ChallengeInputs

	// Private witness.
	Leaves     []frontend.Variable
	Siblings   [][]frontend.Variable
	Directions [][]frontend.Variable
}

// NewPoRCCircuit returns a witness-free circuit of the given shape, for
// compilation and key setup.
func NewPoRCCircuit(challenges, depth int) *PoRCCircuit {
	circuit := &PoRCCircuit{
		Publics:    make([]ChallengeInputs, challenges),
		Leaves:     make([]frontend.Variable, challenges),
		Siblings:   make([][]frontend.Variable, challenges),
		Directions: make([][]frontend.Variable, challenges),
	}
	for i := range circuit.Publics {
		circuit.Publics[i].PackedPathBits = make([]frontend.Variable, field.PackedLen(depth))
		circuit.Siblings[i] = make([]frontend.Variable, depth)
		circuit.Directions[i] = make([]frontend.Variable, depth)
	}
	return circuit
}

// Define emits the constraints for every challenge in instance order. Each
// challenge is self-contained: it reads only its own leaf, path and public
// inputs, so constraint identifiers (derived from the per-challenge struct
// indices) never collide across challenges.
func (circuit *PoRCCircuit) Define(api frontend.API) error {
	if len(circuit.Leaves) != len(circuit.Publics) ||
		len(circuit.Siblings) != len(circuit.Publics) ||
		len(circuit.Directions) != len(circuit.Publics) {
		return fmt.Errorf("%w: publics=%d leaves=%d siblings=%d directions=%d",
			ErrStructuralMismatch,
			len(circuit.Publics), len(circuit.Leaves), len(circuit.Siblings), len(circuit.Directions))
	}

	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return err
	}

	for i := range circuit.Publics {
		depth := len(circuit.Siblings[i])
		if len(circuit.Directions[i]) != depth {
			return fmt.Errorf("%w: challenge %d: %d siblings vs %d direction bits",
				ErrStructuralMismatch, i, depth, len(circuit.Directions[i]))
		}
		if len(circuit.Publics[i].PackedPathBits) != field.PackedLen(depth) {
			return fmt.Errorf("%w: challenge %d: %d packed path inputs, want %d for depth %d",
				ErrStructuralMismatch, i, len(circuit.Publics[i].PackedPathBits), field.PackedLen(depth), depth)
		}

		cur := circuit.Leaves[i]

		// Ascend the tree. A depth-0 instance skips straight to the
		// commitment equality below.
		for j := 0; j < depth; j++ {
			dir := circuit.Directions[i][j]
			api.AssertIsBoolean(dir)

			// dir == 1 means the current subtree is the right child, so the
			// sibling goes on the left. The swap is expressed as constraints
			// over dir; it is witness data the verifier never sees, so a
			// host-language branch would be unsound.
			sibling := circuit.Siblings[i][j]
			left := api.Select(dir, sibling, cur)
			right := api.Select(dir, cur, sibling)

			// Level-personalized compression: the level index is absorbed
			// first, separating hash domains across tree levels.
			hasher := hash.NewMerkleDamgardHasher(api, p, 0)
			hasher.Write(j, left, right)
			cur = hasher.Sum()
		}

		// Bind the direction bits to the public inputs with the same
		// little-endian, field.Capacity-bits-per-element packing that
		// GeneratePublicInputs uses.
		for c := range circuit.Publics[i].PackedPathBits {
			start := c * field.Capacity
			end := start + field.Capacity
			if end > depth {
				end = depth
			}
			packed := api.FromBinary(circuit.Directions[i][start:end]...)
			api.AssertIsEqual(packed, circuit.Publics[i].PackedPathBits[c])
		}

		// The ascended value must equal the public commitment.
		api.AssertIsEqual(cur, circuit.Publics[i].Commitment)
	}

	return nil
}
