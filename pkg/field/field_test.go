package field

import (
	"bytes"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytesRoundTrip(t *testing.T) {
	data := make([]byte, 1000)
	rand.New(rand.NewSource(1)).Read(data)

	elements := Bytes2Elements(data)
	require.Len(t, elements, (len(data)+ElementSize-1)/ElementSize)

	back := Elements2Bytes(elements, len(data))
	require.True(t, bytes.Equal(data, back))
}

func TestBytes2ElementsEmpty(t *testing.T) {
	elements := Bytes2Elements(nil)
	require.Len(t, elements, 1)
	require.Zero(t, elements[0].Sign())
}

func TestPackBitsEmpty(t *testing.T) {
	require.Empty(t, PackBits(nil))
	require.Equal(t, 0, PackedLen(0))
}

func TestPackBitsLittleEndian(t *testing.T) {
	// bits 0 and 2 set -> 0b101 = 5
	packed := PackBits([]bool{true, false, true})
	require.Len(t, packed, 1)
	require.Zero(t, packed[0].Cmp(big.NewInt(5)))
}

func TestPackBitsChunking(t *testing.T) {
	// One bit more than fits into a single element spills into a second.
	bits := make([]bool, Capacity+1)
	bits[0] = true
	bits[Capacity] = true

	packed := PackBits(bits)
	require.Len(t, packed, 2)
	require.Equal(t, 2, PackedLen(len(bits)))
	require.Zero(t, packed[0].Cmp(big.NewInt(1)))
	require.Zero(t, packed[1].Cmp(big.NewInt(1)))
}

func TestPackBitsHighBit(t *testing.T) {
	bits := make([]bool, Capacity)
	bits[Capacity-1] = true

	packed := PackBits(bits)
	require.Len(t, packed, 1)

	want := new(big.Int).Lsh(big.NewInt(1), uint(Capacity-1))
	require.Zero(t, packed[0].Cmp(want))
}

func TestPackedLen(t *testing.T) {
	require.Equal(t, 1, PackedLen(1))
	require.Equal(t, 1, PackedLen(Capacity))
	require.Equal(t, 2, PackedLen(Capacity+1))
	require.Equal(t, 1, PackedLen(5))
}
