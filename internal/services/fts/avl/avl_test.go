package avl

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"fts-articles/internal/lib/collation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree() *Tree {
	return New(collation.MustNew("es"))
}

// checkNode verifies cached heights and the balance invariant, returning the
// real height of n.
func checkNode(t *testing.T, n *Node) int {
	t.Helper()
	if n == nil {
		return 0
	}
	lh := checkNode(t, n.left)
	rh := checkNode(t, n.right)
	require.LessOrEqual(t, int(math.Abs(float64(lh-rh))), 1, "unbalanced at %q", n.key)
	h := 1 + max(lh, rh)
	require.Equal(t, h, n.height, "stale height at %q", n.key)
	return h
}

func TestInsertAndContains(t *testing.T) {
	tree := newTree()
	for _, k := range []string{"datos", "análisis", "Z", "efecto", "X", "Y"} {
		_, inserted := tree.Insert(k)
		assert.True(t, inserted, k)
	}

	tests := []struct {
		key  string
		want bool
	}{
		{"datos", true},
		{"DATOS", true},
		{"analisis", true},
		{"Análisis", true},
		{"z", true},
		{"realidad", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, tree.Contains(tt.key))
		})
	}
}

func TestInsertIdempotent(t *testing.T) {
	tree := newTree()
	tree.Insert("realidad virtual")
	before := tree.Keys()

	stored, inserted := tree.Insert("Realidad Virtual")

	assert.False(t, inserted)
	assert.Equal(t, "realidad virtual", stored, "first spelling wins")
	assert.Equal(t, before, tree.Keys())
	assert.Equal(t, 1, tree.Len())
}

func TestInsertBlankIsNoop(t *testing.T) {
	tree := newTree()
	for _, k := range []string{"", "   ", "\t\n"} {
		_, inserted := tree.Insert(k)
		assert.False(t, inserted)
	}
	assert.Zero(t, tree.Len())
	assert.Empty(t, tree.Keys())
}

func TestFindReturnsStoredSpelling(t *testing.T) {
	tree := newTree()
	tree.Insert("María Pérez")

	got, ok := tree.Find("maria perez")

	require.True(t, ok)
	assert.Equal(t, "María Pérez", got)
}

func TestRotations(t *testing.T) {
	tests := []struct {
		name  string
		order []string
	}{
		{"left-left", []string{"c", "b", "a"}},
		{"right-right", []string{"a", "b", "c"}},
		{"left-right", []string{"c", "a", "b"}},
		{"right-left", []string{"a", "c", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := newTree()
			for _, k := range tt.order {
				tree.Insert(k)
			}
			require.NotNil(t, tree.root)
			assert.Equal(t, "b", tree.root.key)
			assert.Equal(t, 2, tree.root.height)
			assert.Equal(t, []string{"a", "b", "c"}, tree.Keys())
		})
	}
}

func TestBalanceInvariantSequential(t *testing.T) {
	tree := newTree()
	for i := 0; i < 1000; i++ {
		tree.Insert(fmt.Sprintf("term%05d", i))
	}

	checkNode(t, tree.root)
	stats := tree.Stats()
	assert.True(t, stats.Balanced())
	assert.Equal(t, 1000, stats.Nodes)
	// AVL height bound: 1.44 * log2(n + 2)
	assert.LessOrEqual(t, float64(stats.Height), 1.44*math.Log2(1002))
}

func TestBalanceInvariantRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tree := newTree()
	for i := 0; i < 2000; i++ {
		tree.Insert(fmt.Sprintf("w%d", rng.Intn(5000)))
		if i%250 == 0 {
			checkNode(t, tree.root)
		}
	}
	checkNode(t, tree.root)
	assert.Equal(t, tree.Len(), tree.Stats().Nodes)
}

func TestKeysSortedForAnyPermutation(t *testing.T) {
	cmp := collation.MustNew("es")
	keys := []string{"Zeta", "análisis", "datos", "Efecto", "beta", "Ómnibus", "realidad virtual", "X", "y"}
	rng := rand.New(rand.NewSource(7))

	var first []string
	for round := 0; round < 20; round++ {
		perm := rng.Perm(len(keys))
		tree := New(cmp)
		for _, i := range perm {
			tree.Insert(keys[i])
		}
		got := tree.Keys()
		require.Len(t, got, len(keys))
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, cmp(got[i-1], got[i]), 0, "%q before %q", got[i-1], got[i])
		}
		if first == nil {
			first = got
		}
		assert.Equal(t, first, got)
	}
}

func TestStatsEmpty(t *testing.T) {
	s := newTree().Stats()
	assert.Zero(t, s.Nodes)
	assert.Zero(t, s.Height)
	assert.True(t, s.Balanced())
}
