package porc

import (
	"fmt"
	"math/big"

	"github.com/MuriData/porc-zkproof/pkg/field"
	vanilla "github.com/MuriData/porc-zkproof/pkg/porc"
)

// Scalar is an optionally-present witness value. Proving requires every
// scalar present; the setup path runs with all of them omitted. Reading an
// omitted scalar is a distinguished failure (ErrAssignmentMissing), never a
// silent zero: defaulting would make the circuit falsely satisfiable.
type Scalar struct {
	value   *big.Int
	present bool
}

// Some wraps a concrete witness value.
func Some(v *big.Int) Scalar { return Scalar{value: v, present: true} }

// None is an omitted witness value.
func None() Scalar { return Scalar{} }

func (s Scalar) get(challenge int, what string) (*big.Int, error) {
	if !s.present || s.value == nil {
		return nil, fmt.Errorf("%w: challenge %d: %s", ErrAssignmentMissing, challenge, what)
	}
	return s.value, nil
}

// PathElem is one optionally-witnessed authentication path step: the
// sibling value and whether the current subtree is the right child at that
// level.
type PathElem struct {
	sibling Scalar
	right   bool
}

// SomeElem wraps a concrete path step.
func SomeElem(sibling *big.Int, right bool) PathElem {
	return PathElem{sibling: Some(sibling), right: right}
}

// NoneElem is an omitted path step; it carries shape only.
func NoneElem() PathElem { return PathElem{sibling: None()} }

// Instance is one PoRC proving instance: parallel sequences of challenged
// leaf values, commitments and authentication paths, one entry per
// challenge. It is built fresh per proof attempt and consumed once.
type Instance struct {
	Leaves      []Scalar
	Commitments []Scalar
	Paths       [][]PathElem
}

// NewInstance lifts a vanilla proof plus public data into witnessed form.
// Only shapes are validated here; whether the values actually authenticate
// is decided by constraint satisfaction, not by the adapter.
func NewInstance(pub vanilla.PublicInputs, proof *vanilla.Proof) (*Instance, error) {
	n := len(pub.Commitments)
	if len(proof.Leaves) != n || len(proof.Paths) != n {
		return nil, fmt.Errorf("%w: proof covers %d leaves / %d paths for %d commitments",
			ErrStructuralMismatch, len(proof.Leaves), len(proof.Paths), n)
	}

	inst := &Instance{
		Leaves:      make([]Scalar, n),
		Commitments: make([]Scalar, n),
		Paths:       make([][]PathElem, n),
	}
	for i := 0; i < n; i++ {
		inst.Leaves[i] = Some(proof.Leaves[i])
		inst.Commitments[i] = Some(pub.Commitments[i])
		inst.Paths[i] = make([]PathElem, len(proof.Paths[i]))
		for j, step := range proof.Paths[i] {
			inst.Paths[i][j] = SomeElem(step.Sibling, step.Right)
		}
	}

	return inst, nil
}

// EmptyInstance returns a witness-free instance of the given shape, for the
// setup path where no proof exists yet.
func EmptyInstance(challenges, depth int) *Instance {
	inst := &Instance{
		Leaves:      make([]Scalar, challenges),
		Commitments: make([]Scalar, challenges),
		Paths:       make([][]PathElem, challenges),
	}
	for i := range inst.Paths {
		inst.Leaves[i] = None()
		inst.Commitments[i] = None()
		inst.Paths[i] = make([]PathElem, depth)
		for j := range inst.Paths[i] {
			inst.Paths[i][j] = NoneElem()
		}
	}
	return inst
}

// Circuit returns the witness-free circuit matching the instance shape.
// It is always available, with or without witness values.
func (inst *Instance) Circuit() *PoRCCircuit {
	depth := 0
	if len(inst.Paths) > 0 {
		depth = len(inst.Paths[0])
	}
	return NewPoRCCircuit(len(inst.Paths), depth)
}

// Assignment returns the fully populated circuit assignment, including the
// public values (packed direction bits and commitment per challenge). Any
// omitted witness value fails with ErrAssignmentMissing naming the
// challenge it belongs to.
func (inst *Instance) Assignment() (*PoRCCircuit, error) {
	circuit := inst.Circuit()

	for i := range inst.Paths {
		leaf, err := inst.Leaves[i].get(i, "leaf")
		if err != nil {
			return nil, err
		}
		commitment, err := inst.Commitments[i].get(i, "commitment")
		if err != nil {
			return nil, err
		}

		circuit.Leaves[i] = leaf
		circuit.Publics[i].Commitment = commitment

		dirBits := make([]bool, len(inst.Paths[i]))
		for j, elem := range inst.Paths[i] {
			sibling, err := elem.sibling.get(i, fmt.Sprintf("path element %d", j))
			if err != nil {
				return nil, err
			}
			circuit.Siblings[i][j] = sibling
			if elem.right {
				circuit.Directions[i][j] = 1
			} else {
				circuit.Directions[i][j] = 0
			}
			dirBits[j] = elem.right
		}

		// Mirror of the in-circuit packing, and of GeneratePublicInputs.
		for c, packed := range field.PackBits(dirBits) {
			circuit.Publics[i].PackedPathBits[c] = packed
		}
	}

	return circuit, nil
}

// PrepareWitness is the vanilla-to-circuit adapter in one step: it lifts a
// vanilla proof into an instance and returns the populated assignment.
func PrepareWitness(pub vanilla.PublicInputs, proof *vanilla.Proof) (*PoRCCircuit, error) {
	inst, err := NewInstance(pub, proof)
	if err != nil {
		return nil, err
	}
	return inst.Assignment()
}
