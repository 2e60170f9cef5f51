package config

const (
	// ChunkSize is the number of raw bytes behind each Merkle leaf.
	ChunkSize = 1024

	// DefaultLeaves is the per-sector leaf count used by the CLI tooling.
	// Must be a power of two; the tree depth is log2 of this.
	DefaultLeaves = 32

	// DefaultDepth = log2(DefaultLeaves).
	DefaultDepth = 5

	// DefaultSectors is the number of independently committed trees.
	DefaultSectors = 2

	// DefaultChallenges is the number of Merkle openings per proof.
	DefaultChallenges = 2
)
