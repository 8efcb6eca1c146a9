package utils

// TreeStats describes the shape of an ordered index.
type TreeStats struct {
	Nodes  int
	Leaves int
	Height int
	// MaxImbalance is the largest |height(left) - height(right)| over all nodes.
	MaxImbalance int
	AvgDepth     float64
}

// Balanced reports whether every node satisfies the AVL height invariant.
func (s TreeStats) Balanced() bool {
	return s.MaxImbalance <= 1
}
