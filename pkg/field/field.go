package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ElementSize is the number of data bytes packed into one field element.
// 31 bytes always fit below the BN254 scalar modulus.
const ElementSize = 31

// Capacity is the number of booleans that can be packed into a single
// field element without overflowing the modulus. One bit below the field
// bit length, so every packed value is strictly smaller than the modulus.
const Capacity = fr.Bits - 1

// Bytes2Elements converts raw bytes into field elements, ElementSize bytes
// per element (big-endian), zero-padding the final element.
func Bytes2Elements(data []byte) []*big.Int {
	n := (len(data) + ElementSize - 1) / ElementSize
	if n == 0 {
		n = 1
	}
	elements := make([]*big.Int, n)

	buf := make([]byte, ElementSize)
	for i := 0; i < n; i++ {
		for j := range buf {
			buf[j] = 0
		}
		start := i * ElementSize
		if start < len(data) {
			end := start + ElementSize
			if end > len(data) {
				end = len(data)
			}
			copy(buf, data[start:end])
		}
		elements[i] = new(big.Int).SetBytes(buf)
	}

	return elements
}

// Elements2Bytes is the inverse of Bytes2Elements. originalSize trims the
// zero padding added on the way in; pass a negative value to keep it.
func Elements2Bytes(elements []*big.Int, originalSize int) []byte {
	result := make([]byte, 0, len(elements)*ElementSize)

	tmp := make([]byte, ElementSize)
	for _, elem := range elements {
		for i := range tmp {
			tmp[i] = 0
		}
		valueBytes := elem.Bytes()
		if len(valueBytes) > ElementSize {
			valueBytes = valueBytes[len(valueBytes)-ElementSize:]
		}
		copy(tmp[ElementSize-len(valueBytes):], valueBytes)
		result = append(result, tmp...)
	}

	if originalSize >= 0 && originalSize < len(result) {
		result = result[:originalSize]
	}
	return result
}

// PackBits packs booleans little-endian into field elements, Capacity bits
// per element. PackBits(nil) returns an empty slice. The in-circuit packing
// of direction bits must produce element-for-element identical values, so
// any change here has to be mirrored there.
func PackBits(bits []bool) []*big.Int {
	packed := make([]*big.Int, 0, (len(bits)+Capacity-1)/Capacity)

	for start := 0; start < len(bits); start += Capacity {
		end := start + Capacity
		if end > len(bits) {
			end = len(bits)
		}

		chunk := new(big.Int)
		for j := start; j < end; j++ {
			if bits[j] {
				chunk.SetBit(chunk, j-start, 1)
			}
		}
		packed = append(packed, chunk)
	}

	return packed
}

// PackedLen returns the number of field elements PackBits produces for
// nbBits booleans.
func PackedLen(nbBits int) int {
	return (nbBits + Capacity - 1) / Capacity
}
