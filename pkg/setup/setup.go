// Package setup covers circuit compilation, key generation and key
// persistence: single-party dev setups for Groth16 and PLONK, plus the
// multi-party Groth16 ceremony in ceremony.go.
package setup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test/unsafekzg"
	"github.com/schollz/progressbar/v3"
)

// Backend selects which proof system a circuit compiles for.
type Backend int

const (
	Groth16Backend Backend = iota
	PlonkBackend
)

// CompileCircuit compiles a gnark circuit into an R1CS constraint system
// over BN254.
func CompileCircuit(circuit frontend.Circuit) (constraint.ConstraintSystem, error) {
	return CompileCircuitForBackend(circuit, Groth16Backend)
}

// CompileCircuitForBackend compiles a circuit with the builder matching the
// given backend.
func CompileCircuitForBackend(circuit frontend.Circuit, b Backend) (constraint.ConstraintSystem, error) {
	var builder frontend.NewBuilder
	switch b {
	case Groth16Backend:
		builder = r1cs.NewBuilder
	case PlonkBackend:
		builder = scs.NewBuilder
	default:
		return nil, fmt.Errorf("unknown backend: %d", b)
	}

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), builder, circuit)
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}
	return ccs, nil
}

// DevSetup performs a single-party Groth16 setup (NOT for production) and
// writes the keys and Solidity verifier to outputDir.
func DevSetup(circuit frontend.Circuit, outputDir, circuitName string) error {
	fmt.Println("================================================================")
	fmt.Println("  WARNING: Single-party setup (1-of-1 trust assumption)")
	fmt.Println("  DO NOT use these keys in production.")
	fmt.Printf("  For production, run: go run ./cmd/compile %s ceremony --help\n", circuitName)
	fmt.Println("================================================================")

	ccs, err := CompileCircuit(circuit)
	if err != nil {
		return err
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return fmt.Errorf("groth16 setup: %w", err)
	}

	return ExportKeys(pk, vk, outputDir, circuitName)
}

// PlonkDevSetup performs a single-party PLONK setup with an unsafe KZG SRS
// (NOT for production).
func PlonkDevSetup(circuit frontend.Circuit, outputDir, circuitName string) error {
	fmt.Println("================================================================")
	fmt.Println("  WARNING: Unsafe KZG SRS (1-of-1 trust assumption)")
	fmt.Println("  DO NOT use these keys in production.")
	fmt.Println("  PLONK uses a universal SRS; no circuit-specific ceremony needed.")
	fmt.Println("================================================================")

	ccs, err := CompileCircuitForBackend(circuit, PlonkBackend)
	if err != nil {
		return err
	}

	srs, srsLagrange, err := unsafekzg.NewSRS(ccs)
	if err != nil {
		return fmt.Errorf("generate unsafe KZG SRS: %w", err)
	}

	pk, vk, err := plonk.Setup(ccs, srs, srsLagrange)
	if err != nil {
		return fmt.Errorf("plonk setup: %w", err)
	}

	return exportKeyPair(pk, vk, outputDir, circuitName, func(w io.Writer) error {
		return vk.ExportSolidity(w)
	})
}

// ExportKeys writes the Groth16 proving key, verifying key and Solidity
// verifier to outputDir as <circuitName>_prover.key, _verifier.key and
// _verifier.sol.
func ExportKeys(pk groth16.ProvingKey, vk groth16.VerifyingKey, outputDir, circuitName string) error {
	return exportKeyPair(pk, vk, outputDir, circuitName, func(w io.Writer) error {
		return vk.ExportSolidity(w)
	})
}

func exportKeyPair(pk, vk io.WriterTo, outputDir, circuitName string, exportSolidity func(io.Writer) error) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	solPath := filepath.Join(outputDir, circuitName+"_verifier.sol")
	f, err := os.Create(solPath)
	if err != nil {
		return fmt.Errorf("create solidity verifier: %w", err)
	}
	if err := exportSolidity(f); err != nil {
		f.Close()
		return fmt.Errorf("export solidity verifier: %w", err)
	}
	f.Close()

	vkPath := filepath.Join(outputDir, circuitName+"_verifier.key")
	if err := saveObject(vkPath, vk); err != nil {
		return err
	}

	// Proving keys can run into gigabytes; show write progress.
	pkPath := filepath.Join(outputDir, circuitName+"_prover.key")
	pkFile, err := os.Create(pkPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", pkPath, err)
	}
	bar := progressbar.DefaultBytes(-1, "writing proving key")
	if _, err := pk.WriteTo(io.MultiWriter(pkFile, bar)); err != nil {
		pkFile.Close()
		return fmt.Errorf("write %s: %w", pkPath, err)
	}
	if err := pkFile.Close(); err != nil {
		return fmt.Errorf("close %s: %w", pkPath, err)
	}

	fmt.Printf("Exported: %s, %s, %s\n", pkPath, vkPath, solPath)
	return nil
}

// LoadKeys loads Groth16 proving and verifying keys written by ExportKeys.
func LoadKeys(dir, circuitName string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk := groth16.NewProvingKey(ecc.BN254)
	if err := loadObject(filepath.Join(dir, circuitName+"_prover.key"), pk); err != nil {
		return nil, nil, err
	}

	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := loadObject(filepath.Join(dir, circuitName+"_verifier.key"), vk); err != nil {
		return nil, nil, err
	}

	return pk, vk, nil
}

// LoadPlonkKeys loads PLONK proving and verifying keys written by
// PlonkDevSetup.
func LoadPlonkKeys(dir, circuitName string) (plonk.ProvingKey, plonk.VerifyingKey, error) {
	pk := plonk.NewProvingKey(ecc.BN254)
	if err := loadObject(filepath.Join(dir, circuitName+"_prover.key"), pk); err != nil {
		return nil, nil, err
	}

	vk := plonk.NewVerifyingKey(ecc.BN254)
	if err := loadObject(filepath.Join(dir, circuitName+"_verifier.key"), vk); err != nil {
		return nil, nil, err
	}

	return pk, vk, nil
}

func saveObject(path string, obj io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := obj.WriteTo(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func loadObject(path string, obj io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := obj.ReadFrom(f); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
