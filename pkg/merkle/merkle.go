package merkle

import (
	"fmt"
	"math/big"
	"math/bits"
	"runtime"
	"sync"

	"github.com/MuriData/porc-zkproof/pkg/crypto"
)

// PathStep is one level of an authentication path: the sibling value and
// whether the current node is the right child at that level (sibling on
// the left).
type PathStep struct {
	Sibling *big.Int
	Right   bool
}

// Tree is a dense, fixed-depth Merkle tree over a power-of-two number of
// leaves. Levels[0] is the leaf level; Levels[Depth] holds the single root.
// Node hashing is level-personalized (see crypto.HashNodes), so the tree
// shape is bound into every internal value.
type Tree struct {
	Depth  int
	Levels [][]*big.Int
}

// BuildTree builds a tree from pre-hashed leaf values. The leaf count must
// be a power of two (a single leaf yields a depth-0 tree whose root is the
// leaf itself).
func BuildTree(leaves []*big.Int) (*Tree, error) {
	n := len(leaves)
	if n == 0 {
		return nil, fmt.Errorf("merkle: no leaves")
	}
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("merkle: leaf count %d is not a power of two", n)
	}

	depth := bits.Len(uint(n)) - 1
	levels := make([][]*big.Int, depth+1)
	levels[0] = make([]*big.Int, n)
	copy(levels[0], leaves)

	for lvl := 0; lvl < depth; lvl++ {
		below := levels[lvl]
		above := make([]*big.Int, len(below)/2)
		for i := range above {
			above[i] = crypto.HashNodes(lvl, below[2*i], below[2*i+1])
		}
		levels[lvl+1] = above
	}

	return &Tree{Depth: depth, Levels: levels}, nil
}

// BuildTreeFromChunks hashes raw data chunks into leaves in parallel and
// builds the tree over them.
func BuildTreeFromChunks(chunks [][]byte) (*Tree, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("merkle: no chunks")
	}

	leaves := make([]*big.Int, len(chunks))

	numWorkers := runtime.NumCPU()
	if numWorkers > len(chunks) {
		numWorkers = len(chunks)
	}

	var wg sync.WaitGroup
	work := make(chan int, len(chunks))
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				leaves[i] = crypto.HashLeaf(chunks[i])
			}
		}()
	}
	for i := range chunks {
		work <- i
	}
	close(work)
	wg.Wait()

	return BuildTree(leaves)
}

// SplitIntoChunks splits data into chunkSize-sized chunks, zero-padding the
// last one. An empty input produces a single zero chunk.
func SplitIntoChunks(data []byte, chunkSize int) [][]byte {
	var chunks [][]byte

	for i := 0; i < len(data); i += chunkSize {
		end := i + chunkSize
		if end > len(data) {
			chunk := make([]byte, chunkSize)
			copy(chunk, data[i:])
			chunks = append(chunks, chunk)
		} else {
			chunks = append(chunks, data[i:end])
		}
	}

	if len(chunks) == 0 {
		chunks = append(chunks, make([]byte, chunkSize))
	}

	return chunks
}

// Root returns the root value of the tree.
func (t *Tree) Root() *big.Int {
	return t.Levels[t.Depth][0]
}

// LeafCount returns the number of leaves.
func (t *Tree) LeafCount() uint64 {
	return uint64(len(t.Levels[0]))
}

// Leaf returns the leaf value at the given index.
func (t *Tree) Leaf(index uint64) (*big.Int, error) {
	if index >= t.LeafCount() {
		return nil, fmt.Errorf("merkle: leaf index %d out of range (%d leaves)", index, t.LeafCount())
	}
	return t.Levels[0][index], nil
}

// ProofPath returns the authentication path for the leaf at index, ordered
// leaf level first. The path has exactly Depth steps; step j's Right flag
// equals bit j of the leaf index.
func (t *Tree) ProofPath(index uint64) ([]PathStep, error) {
	if index >= t.LeafCount() {
		return nil, fmt.Errorf("merkle: leaf index %d out of range (%d leaves)", index, t.LeafCount())
	}

	path := make([]PathStep, t.Depth)
	idx := index
	for lvl := 0; lvl < t.Depth; lvl++ {
		right := idx&1 == 1
		var siblingIdx uint64
		if right {
			siblingIdx = idx - 1
		} else {
			siblingIdx = idx + 1
		}
		path[lvl] = PathStep{
			Sibling: t.Levels[lvl][siblingIdx],
			Right:   right,
		}
		idx >>= 1
	}

	return path, nil
}

// VerifyProofPath re-walks an authentication path natively and reports
// whether it connects the leaf to the root.
func VerifyProofPath(leaf *big.Int, path []PathStep, root *big.Int) bool {
	cur := leaf
	for lvl, step := range path {
		if step.Right {
			cur = crypto.HashNodes(lvl, step.Sibling, cur)
		} else {
			cur = crypto.HashNodes(lvl, cur, step.Sibling)
		}
	}
	return cur.Cmp(root) == 0
}
