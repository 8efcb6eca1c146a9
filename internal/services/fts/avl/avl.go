package avl

import (
	"strings"

	"fts-articles/internal/lib/collation"
	"fts-articles/internal/utils"
)

// Node holds one vocabulary key. Each node is owned by its parent, the root
// by the Tree.
type Node struct {
	key    string
	left   *Node
	right  *Node
	height int
}

// Tree is a set of strings kept in collation order and height-balanced.
// Keys that collate equal are one entry; the first spelling inserted is kept.
type Tree struct {
	root    *Node
	compare collation.Compare
	size    int
}

func New(compare collation.Compare) *Tree {
	return &Tree{compare: compare}
}

func height(n *Node) int {
	if n == nil {
		return 0
	}
	return n.height
}

func balanceFactor(n *Node) int {
	if n == nil {
		return 0
	}
	return height(n.left) - height(n.right)
}

func (n *Node) fix() {
	n.height = 1 + max(height(n.left), height(n.right))
}

func rotateRight(y *Node) *Node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	y.fix()
	x.fix()
	return x
}

func rotateLeft(x *Node) *Node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	x.fix()
	y.fix()
	return y
}

// Insert adds key unless it is blank or a collation-equal key exists.
// It returns the spelling stored in the tree and whether a node was created.
func (t *Tree) Insert(key string) (string, bool) {
	if strings.TrimSpace(key) == "" {
		return "", false
	}
	stored := key
	inserted := false
	t.root = t.insert(t.root, key, &stored, &inserted)
	if inserted {
		t.size++
	}
	return stored, inserted
}

func (t *Tree) insert(n *Node, key string, stored *string, inserted *bool) *Node {
	if n == nil {
		*inserted = true
		return &Node{key: key, height: 1}
	}

	c := t.compare(key, n.key)
	switch {
	case c < 0:
		n.left = t.insert(n.left, key, stored, inserted)
	case c > 0:
		n.right = t.insert(n.right, key, stored, inserted)
	default:
		*stored = n.key
		return n
	}

	if !*inserted {
		return n
	}
	n.fix()
	return rebalance(n)
}

func rebalance(n *Node) *Node {
	bf := balanceFactor(n)
	switch {
	case bf > 1 && balanceFactor(n.left) >= 0:
		// left-left
		return rotateRight(n)
	case bf > 1:
		// left-right
		n.left = rotateLeft(n.left)
		return rotateRight(n)
	case bf < -1 && balanceFactor(n.right) <= 0:
		// right-right
		return rotateLeft(n)
	case bf < -1:
		// right-left
		n.right = rotateRight(n.right)
		return rotateLeft(n)
	}
	return n
}

// Find returns the stored spelling of the key that collates equal to key.
func (t *Tree) Find(key string) (string, bool) {
	if strings.TrimSpace(key) == "" {
		return "", false
	}
	n := t.root
	for n != nil {
		c := t.compare(key, n.key)
		if c == 0 {
			return n.key, true
		}
		if c < 0 {
			n = n.left
		} else {
			n = n.right
		}
	}
	return "", false
}

func (t *Tree) Contains(key string) bool {
	_, ok := t.Find(key)
	return ok
}

// Keys returns every key in ascending collation order.
func (t *Tree) Keys() []string {
	out := make([]string, 0, t.size)
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		walk(n.left)
		out = append(out, n.key)
		walk(n.right)
	}
	walk(t.root)
	return out
}

func (t *Tree) Len() int {
	return t.size
}

// Stats walks the tree and recomputes heights from scratch instead of trusting
// the cached ones.
func (t *Tree) Stats() utils.TreeStats {
	var s utils.TreeStats
	var totalDepth int

	var dfs func(n *Node, depth int) int
	dfs = func(n *Node, depth int) int {
		if n == nil {
			return 0
		}
		s.Nodes++
		totalDepth += depth
		if n.left == nil && n.right == nil {
			s.Leaves++
		}

		lh := dfs(n.left, depth+1)
		rh := dfs(n.right, depth+1)
		diff := lh - rh
		if diff < 0 {
			diff = -diff
		}
		if diff > s.MaxImbalance {
			s.MaxImbalance = diff
		}
		return 1 + max(lh, rh)
	}

	s.Height = dfs(t.root, 0)
	if s.Nodes > 0 {
		s.AvgDepth = float64(totalDepth) / float64(s.Nodes)
	}
	return s
}
