package porc_test

import (
	"errors"
	"math/big"
	"math/rand"
	"testing"

	porccircuit "github.com/MuriData/porc-zkproof/circuits/porc"
	"github.com/MuriData/porc-zkproof/config"
	"github.com/MuriData/porc-zkproof/pkg/field"
	"github.com/MuriData/porc-zkproof/pkg/merkle"
	vanilla "github.com/MuriData/porc-zkproof/pkg/porc"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/test"
)

// buildFixture builds `sectors` trees of `leaves` leaves each from fixed
// pseudo-random data and draws `challenges` deterministic challenges.
func buildFixture(t *testing.T, sectors int, leaves uint64, challenges int) (porccircuit.Compound, vanilla.PublicInputs, vanilla.PrivateInputs) {
	t.Helper()

	rng := rand.New(rand.NewSource(0x5eed))

	trees := make([]*merkle.Tree, sectors)
	for s := range trees {
		data := make([]byte, int(leaves)*config.ChunkSize)
		rng.Read(data)
		tree, err := merkle.BuildTreeFromChunks(merkle.SplitIntoChunks(data, config.ChunkSize))
		if err != nil {
			t.Fatalf("build sector %d tree: %v", s, err)
		}
		trees[s] = tree
	}

	challengeVals := make([]*big.Int, challenges)
	commitments := make([]*big.Int, challenges)
	for i := range challengeVals {
		var c fr.Element
		c.SetUint64(rng.Uint64())
		challengeVals[i] = new(big.Int)
		c.BigInt(challengeVals[i])
		commitments[i] = trees[i%sectors].Root()
	}

	compound := porccircuit.Compound{
		Params:     vanilla.PublicParams{Leaves: leaves, Sectors: sectors},
		Challenges: challenges,
	}
	pub := vanilla.PublicInputs{Challenges: challengeVals, Commitments: commitments}
	priv := vanilla.PrivateInputs{Trees: trees}
	return compound, pub, priv
}

func mustProve(t *testing.T, compound porccircuit.Compound, pub vanilla.PublicInputs, priv vanilla.PrivateInputs) *vanilla.Proof {
	t.Helper()
	proof, err := vanilla.Prove(compound.Params, pub, priv)
	if err != nil {
		t.Fatalf("vanilla prove: %v", err)
	}
	ok, err := vanilla.Verify(compound.Params, pub, proof)
	if err != nil {
		t.Fatalf("vanilla verify: %v", err)
	}
	if !ok {
		t.Fatal("vanilla proof does not verify")
	}
	return proof
}

func TestPoRCCircuitSatisfied(t *testing.T) {
	compound, pub, priv := buildFixture(t, 2, 32, 2)
	proof := mustProve(t, compound, pub, priv)

	assignment, err := porccircuit.PrepareWitness(pub, proof)
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}

	if err := test.IsSolved(compound.Circuit(), assignment, ecc.BN254.ScalarField()); err != nil {
		t.Fatalf("circuit not satisfied with a valid witness: %v", err)
	}
}

// TestPublicInputsMatchWitness is the symmetry property: the public values
// a correct witness carries must equal, element for element and in order,
// what GeneratePublicInputs derives from public data alone.
func TestPublicInputsMatchWitness(t *testing.T) {
	cases := []struct {
		name       string
		sectors    int
		leaves     uint64
		challenges int
	}{
		{"no_challenges", 1, 32, 0},
		{"single_challenge", 1, 32, 1},
		{"two_sectors_depth5", 2, 32, 2},
		{"many_challenges", 2, 32, 6},
		{"depth1", 2, 2, 2},
		{"depth0_single_leaf", 1, 1, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			compound, pub, priv := buildFixture(t, tc.sectors, tc.leaves, tc.challenges)
			proof := mustProve(t, compound, pub, priv)

			assignment, err := porccircuit.PrepareWitness(pub, proof)
			if err != nil {
				t.Fatalf("prepare witness: %v", err)
			}

			inputs, err := porccircuit.GeneratePublicInputs(pub, compound.Params)
			if err != nil {
				t.Fatalf("generate public inputs: %v", err)
			}

			perChallenge := field.PackedLen(compound.Params.Depth()) + 1
			if len(inputs) != tc.challenges*perChallenge {
				t.Fatalf("got %d public inputs, want %d", len(inputs), tc.challenges*perChallenge)
			}

			// Walk the assignment's public fields in schema order and compare.
			k := 0
			for i := range assignment.Publics {
				for _, packed := range assignment.Publics[i].PackedPathBits {
					if inputs[k].Cmp(packed.(*big.Int)) != 0 {
						t.Fatalf("challenge %d: packed path input %d mismatch: generator %v vs witness %v",
							i, k, inputs[k], packed)
					}
					k++
				}
				if inputs[k].Cmp(assignment.Publics[i].Commitment.(*big.Int)) != 0 {
					t.Fatalf("challenge %d: commitment mismatch", i)
				}
				k++
			}
			if k != len(inputs) {
				t.Fatalf("generator produced %d extra elements", len(inputs)-k)
			}
		})
	}
}

func TestCorruptedSiblingUnsatisfied(t *testing.T) {
	compound, pub, priv := buildFixture(t, 2, 32, 2)
	proof := mustProve(t, compound, pub, priv)

	proof.Paths[1][2].Sibling = big.NewInt(0xbad)

	assignment, err := porccircuit.PrepareWitness(pub, proof)
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}
	if err := test.IsSolved(compound.Circuit(), assignment, ecc.BN254.ScalarField()); err == nil {
		t.Fatal("circuit satisfied despite corrupted sibling")
	}
}

func TestCorruptedDirectionUnsatisfied(t *testing.T) {
	compound, pub, priv := buildFixture(t, 2, 32, 2)
	proof := mustProve(t, compound, pub, priv)

	proof.Paths[0][0].Right = !proof.Paths[0][0].Right

	assignment, err := porccircuit.PrepareWitness(pub, proof)
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}
	if err := test.IsSolved(compound.Circuit(), assignment, ecc.BN254.ScalarField()); err == nil {
		t.Fatal("circuit satisfied despite flipped direction bit")
	}
}

func TestSwappedCommitmentUnsatisfied(t *testing.T) {
	compound, pub, priv := buildFixture(t, 2, 32, 2)
	proof := mustProve(t, compound, pub, priv)

	// Internally consistent path, wrong root.
	pub.Commitments[0], pub.Commitments[1] = pub.Commitments[1], pub.Commitments[0]

	assignment, err := porccircuit.PrepareWitness(pub, proof)
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}
	if err := test.IsSolved(compound.Circuit(), assignment, ecc.BN254.ScalarField()); err == nil {
		t.Fatal("circuit satisfied despite swapped commitments")
	}
}

func TestMissingWitness(t *testing.T) {
	inst := porccircuit.EmptyInstance(2, 5)

	// The witness-free template is always available for setup.
	circuit := inst.Circuit()
	if len(circuit.Leaves) != 2 || len(circuit.Siblings[0]) != 5 {
		t.Fatalf("template has wrong shape: %d challenges, depth %d", len(circuit.Leaves), len(circuit.Siblings[0]))
	}

	_, err := inst.Assignment()
	if !errors.Is(err, porccircuit.ErrAssignmentMissing) {
		t.Fatalf("got %v, want ErrAssignmentMissing", err)
	}
}

func TestStructuralMismatch(t *testing.T) {
	compound, pub, priv := buildFixture(t, 2, 32, 2)
	proof := mustProve(t, compound, pub, priv)

	proof.Leaves = proof.Leaves[:1]
	if _, err := porccircuit.NewInstance(pub, proof); !errors.Is(err, porccircuit.ErrStructuralMismatch) {
		t.Fatalf("got %v, want ErrStructuralMismatch", err)
	}

	_, err := porccircuit.GeneratePublicInputs(vanilla.PublicInputs{
		Challenges:  pub.Challenges,
		Commitments: pub.Commitments[:1],
	}, compound.Params)
	if !errors.Is(err, porccircuit.ErrStructuralMismatch) {
		t.Fatalf("got %v, want ErrStructuralMismatch", err)
	}

	// A malformed template must fail at circuit construction, not panic.
	bad := porccircuit.NewPoRCCircuit(2, 5)
	bad.Leaves = bad.Leaves[:1]
	if _, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, bad); err == nil {
		t.Fatal("compile succeeded despite mismatched sequence lengths")
	}
}

// TestCompileDeterminism checks that identical inputs produce identical
// constraint systems, and pins the public input count of the reference
// 2-challenge depth-5 instance: 1 packed element + 1 commitment per
// challenge, plus the constant wire.
func TestCompileDeterminism(t *testing.T) {
	compound := porccircuit.Compound{
		Params:     vanilla.PublicParams{Leaves: 32, Sectors: 2},
		Challenges: 2,
	}

	ccs1, err := compound.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ccs2, err := compound.Compile()
	if err != nil {
		t.Fatalf("recompile: %v", err)
	}

	if ccs1.GetNbConstraints() != ccs2.GetNbConstraints() {
		t.Fatalf("constraint counts differ: %d vs %d", ccs1.GetNbConstraints(), ccs2.GetNbConstraints())
	}
	if ccs1.GetNbPublicVariables() != ccs2.GetNbPublicVariables() {
		t.Fatalf("public variable counts differ: %d vs %d", ccs1.GetNbPublicVariables(), ccs2.GetNbPublicVariables())
	}
	if got, want := ccs1.GetNbPublicVariables(), 5; got != want {
		t.Fatalf("got %d public variables, want %d", got, want)
	}
}

func TestDepthZero(t *testing.T) {
	compound, pub, priv := buildFixture(t, 1, 1, 1)
	proof := mustProve(t, compound, pub, priv)

	assignment, err := porccircuit.PrepareWitness(pub, proof)
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}
	if err := test.IsSolved(compound.Circuit(), assignment, ecc.BN254.ScalarField()); err != nil {
		t.Fatalf("depth-0 circuit not satisfied: %v", err)
	}

	inputs, err := porccircuit.GeneratePublicInputs(pub, compound.Params)
	if err != nil {
		t.Fatalf("generate public inputs: %v", err)
	}
	// No direction bits to pack at depth 0; only the commitment remains.
	if len(inputs) != 1 {
		t.Fatalf("got %d public inputs, want 1", len(inputs))
	}
	if inputs[0].Cmp(pub.Commitments[0]) != 0 {
		t.Fatal("depth-0 public input is not the commitment")
	}

	// A leaf that differs from the commitment must not satisfy.
	proof.Leaves[0] = big.NewInt(7)
	assignment, err = porccircuit.PrepareWitness(pub, proof)
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}
	if err := test.IsSolved(compound.Circuit(), assignment, ecc.BN254.ScalarField()); err == nil {
		t.Fatal("depth-0 circuit satisfied with wrong leaf")
	}
}

// TestPoRCEndToEnd runs the full compound flow: compile, Groth16 setup,
// vanilla prove, circuit prove, verify against independently generated
// public inputs.
func TestPoRCEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Groth16 end-to-end in short mode")
	}

	compound, pub, priv := buildFixture(t, 2, 32, 2)

	ccs, err := compound.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup: %v", err)
	}

	proof, err := compound.Prove(ccs, pk, pub, priv)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	if err := compound.Verify(proof, vk, pub); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// Tampered public data must not verify.
	tampered := vanilla.PublicInputs{
		Challenges:  pub.Challenges,
		Commitments: append([]*big.Int{}, pub.Commitments...),
	}
	tampered.Commitments[0] = new(big.Int).Add(tampered.Commitments[0], big.NewInt(1))
	if err := compound.Verify(proof, vk, tampered); err == nil {
		t.Fatal("verification succeeded against tampered commitments")
	}
}
