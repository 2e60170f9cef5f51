package porc

import (
	"fmt"
	"math/big"

	vanilla "github.com/MuriData/porc-zkproof/pkg/porc"
	"github.com/MuriData/porc-zkproof/pkg/setup"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
)

// Compound wires the circuit and the vanilla scheme into a complete
// setup/prove/verify flow over Groth16. It holds no state beyond the
// instance shape; both of its transformations (vanilla proof to circuit,
// public data to input vector) are pure.
type Compound struct {
	Params     vanilla.PublicParams
	Challenges int
}

// Circuit returns the witness-free circuit for this shape.
func (c Compound) Circuit() *PoRCCircuit {
	return NewPoRCCircuit(c.Challenges, c.Params.Depth())
}

// Compile compiles the circuit into an R1CS constraint system.
func (c Compound) Compile() (constraint.ConstraintSystem, error) {
	return setup.CompileCircuit(c.Circuit())
}

// Prove runs the vanilla prover, lifts its proof into a witness assignment
// and produces a Groth16 proof.
func (c Compound) Prove(ccs constraint.ConstraintSystem, pk groth16.ProvingKey,
	pub vanilla.PublicInputs, priv vanilla.PrivateInputs) (groth16.Proof, error) {

	if len(pub.Challenges) != c.Challenges {
		return nil, fmt.Errorf("%w: %d challenges, instance shaped for %d",
			ErrStructuralMismatch, len(pub.Challenges), c.Challenges)
	}

	vproof, err := vanilla.Prove(c.Params, pub, priv)
	if err != nil {
		return nil, fmt.Errorf("vanilla prove: %w", err)
	}

	assignment, err := PrepareWitness(pub, vproof)
	if err != nil {
		return nil, err
	}

	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("create witness: %w", err)
	}

	return groth16.Prove(ccs, pk, w)
}

// Verify checks a Groth16 proof against the public input vector recomputed
// from public data alone.
func (c Compound) Verify(proof groth16.Proof, vk groth16.VerifyingKey, pub vanilla.PublicInputs) error {
	w, err := c.PublicWitness(pub)
	if err != nil {
		return err
	}
	return groth16.Verify(proof, vk, w)
}

// PublicWitness builds the verifier-side witness from public data only, in
// the exact order the circuit declares its public inputs.
func (c Compound) PublicWitness(pub vanilla.PublicInputs) (witness.Witness, error) {
	inputs, err := GeneratePublicInputs(pub, c.Params)
	if err != nil {
		return nil, err
	}

	assignment, err := c.publicAssignment(inputs)
	if err != nil {
		return nil, err
	}

	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return nil, fmt.Errorf("create public witness: %w", err)
	}
	return w, nil
}

// publicAssignment distributes the flat input vector back over the
// circuit's public fields. The walk order here matches the circuit schema;
// a leftover or missing element means the shapes disagree.
func (c Compound) publicAssignment(inputs []*big.Int) (*PoRCCircuit, error) {
	circuit := c.Circuit()

	k := 0
	for i := range circuit.Publics {
		for j := range circuit.Publics[i].PackedPathBits {
			if k >= len(inputs) {
				return nil, fmt.Errorf("%w: input vector too short (%d elements)", ErrStructuralMismatch, len(inputs))
			}
			circuit.Publics[i].PackedPathBits[j] = inputs[k]
			k++
		}
		if k >= len(inputs) {
			return nil, fmt.Errorf("%w: input vector too short (%d elements)", ErrStructuralMismatch, len(inputs))
		}
		circuit.Publics[i].Commitment = inputs[k]
		k++
	}
	if k != len(inputs) {
		return nil, fmt.Errorf("%w: %d leftover public input elements", ErrStructuralMismatch, len(inputs)-k)
	}

	return circuit, nil
}
