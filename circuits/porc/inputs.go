package porc

import (
	"fmt"
	"math/big"

	"github.com/MuriData/porc-zkproof/pkg/field"
	vanilla "github.com/MuriData/porc-zkproof/pkg/porc"
)

// GeneratePublicInputs computes, from public data alone, the flat sequence
// of public values the circuit exposes: for each challenge in instance
// order, the packed direction-bit chunks derived from the challenge,
// followed by the commitment. It never touches leaf or path data.
//
// The result must be element-for-element identical to the public part of a
// correct witness assignment; the packing width, the bits-then-commitment
// order and the challenge order are all load-bearing.
func GeneratePublicInputs(pub vanilla.PublicInputs, params vanilla.PublicParams) ([]*big.Int, error) {
	if len(pub.Challenges) != len(pub.Commitments) {
		return nil, fmt.Errorf("%w: %d challenges vs %d commitments",
			ErrStructuralMismatch, len(pub.Challenges), len(pub.Commitments))
	}

	perChallenge := field.PackedLen(params.Depth()) + 1
	inputs := make([]*big.Int, 0, len(pub.Challenges)*perChallenge)

	for i, challenge := range pub.Challenges {
		index := vanilla.LeafIndex(challenge, params.Leaves)
		dirBits := vanilla.AuthPathBits(index, params.Leaves)

		inputs = append(inputs, field.PackBits(dirBits)...)
		inputs = append(inputs, pub.Commitments[i])
	}

	return inputs, nil
}
