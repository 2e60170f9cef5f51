package porc

import (
	"encoding/json"
	"fmt"
	"math/big"
	"math/rand"

	"github.com/MuriData/porc-zkproof/config"
	"github.com/MuriData/porc-zkproof/pkg/merkle"
	vanilla "github.com/MuriData/porc-zkproof/pkg/porc"
	"github.com/MuriData/porc-zkproof/pkg/setup"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
)

// ProofFixture holds all values a Solidity verifier test needs.
type ProofFixture struct {
	SolidityProof [8]string `json:"solidity_proof"`
	Challenges    []string  `json:"challenges"`
	Commitments   []string  `json:"commitments"`
	PublicInputs  []string  `json:"public_inputs"`
}

// ExportProofFixture generates a deterministic proof fixture: two sectors of
// fixed pseudo-random data, one challenge per sector. keysDir must contain
// keys previously written by the setup tooling.
func ExportProofFixture(keysDir string) ([]byte, error) {
	compound := Compound{
		Params: vanilla.PublicParams{
			Leaves:  config.DefaultLeaves,
			Sectors: config.DefaultSectors,
		},
		Challenges: config.DefaultChallenges,
	}

	fmt.Println("Compiling circuit...")
	ccs, err := compound.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}

	fmt.Println("Loading keys...")
	pk, vk, err := setup.LoadKeys(keysDir, "porc")
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}

	// Deterministic sector data and challenges.
	rng := rand.New(rand.NewSource(42))
	trees := make([]*merkle.Tree, config.DefaultSectors)
	commitments := make([]*big.Int, config.DefaultSectors)
	for s := range trees {
		data := make([]byte, config.DefaultLeaves*config.ChunkSize)
		rng.Read(data)
		tree, err := merkle.BuildTreeFromChunks(merkle.SplitIntoChunks(data, config.ChunkSize))
		if err != nil {
			return nil, fmt.Errorf("build sector %d tree: %w", s, err)
		}
		trees[s] = tree
		commitments[s] = tree.Root()
		fmt.Printf("Sector %d root: 0x%064x\n", s, tree.Root())
	}

	challenges := make([]*big.Int, config.DefaultChallenges)
	for i := range challenges {
		var c fr.Element
		c.SetUint64(rng.Uint64())
		challenges[i] = new(big.Int)
		c.BigInt(challenges[i])
	}

	pub := vanilla.PublicInputs{Challenges: challenges, Commitments: commitments}
	priv := vanilla.PrivateInputs{Trees: trees}

	fmt.Println("Generating proof...")
	proof, err := compound.Prove(ccs, pk, pub, priv)
	if err != nil {
		return nil, fmt.Errorf("prove: %w", err)
	}

	if err := compound.Verify(proof, vk, pub); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	fmt.Println("Proof verified successfully in Go!")

	// Extract proof points in the Solidity calldata layout:
	// [A.x, A.y, B.x1, B.x0, B.y1, B.y0, C.x, C.y]
	bn254Proof := proof.(*groth16bn254.Proof)

	aX := new(big.Int)
	aY := new(big.Int)
	bn254Proof.Ar.X.BigInt(aX)
	bn254Proof.Ar.Y.BigInt(aY)

	bX0 := new(big.Int)
	bX1 := new(big.Int)
	bY0 := new(big.Int)
	bY1 := new(big.Int)
	bn254Proof.Bs.X.A0.BigInt(bX0)
	bn254Proof.Bs.X.A1.BigInt(bX1)
	bn254Proof.Bs.Y.A0.BigInt(bY0)
	bn254Proof.Bs.Y.A1.BigInt(bY1)

	cX := new(big.Int)
	cY := new(big.Int)
	bn254Proof.Krs.X.BigInt(cX)
	bn254Proof.Krs.Y.BigInt(cY)

	solidityProof := [8]*big.Int{aX, aY, bX1, bX0, bY1, bY0, cX, cY}

	inputs, err := GeneratePublicInputs(pub, compound.Params)
	if err != nil {
		return nil, err
	}

	fixture := ProofFixture{
		Challenges:   make([]string, len(challenges)),
		Commitments:  make([]string, len(commitments)),
		PublicInputs: make([]string, len(inputs)),
	}
	for i := range fixture.SolidityProof {
		fixture.SolidityProof[i] = fmt.Sprintf("0x%064x", solidityProof[i])
	}
	for i, c := range challenges {
		fixture.Challenges[i] = fmt.Sprintf("0x%064x", c)
	}
	for i, c := range commitments {
		fixture.Commitments[i] = fmt.Sprintf("0x%064x", c)
	}
	for i, in := range inputs {
		fixture.PublicInputs[i] = fmt.Sprintf("0x%064x", in)
	}

	jsonOut, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal fixture: %w", err)
	}

	fmt.Println("\n=== PROOF FIXTURE (JSON) ===")
	fmt.Println(string(jsonOut))

	fmt.Println("\n=== PUBLIC INPUT ORDER ===")
	fmt.Println("Per challenge: packed direction-bit chunks, then commitment.")
	fmt.Println("Make sure the on-chain publicInputs array uses this order!")

	return jsonOut, nil
}
