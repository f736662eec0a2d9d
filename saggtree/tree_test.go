package saggtree_test

import (
	"math"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/gordian-engine/gsegtree/saggtree"
	"github.com/gordian-engine/gsegtree/sgeom"
	"github.com/stretchr/testify/require"
)

var allOps = []saggtree.Op[int64]{saggtree.Min, saggtree.Max, saggtree.Sum}

func TestTree_example(t *testing.T) {
	t.Parallel()

	input := []int64{2, 5, 1, 4, 9, 3}

	minTree := buildTree(t, saggtree.Min, input)
	maxTree := buildTree(t, saggtree.Max, input)
	sumTree := buildTree(t, saggtree.Sum, input)

	requireQuery(t, minTree, 1, 4, 1)
	requireQuery(t, maxTree, 1, 4, 5)
	requireQuery(t, sumTree, 1, 4, 10)

	for _, tree := range []*saggtree.Tree[int64]{minTree, maxTree, sumTree} {
		require.NoError(t, tree.Update(2, 100))
	}

	requireQuery(t, minTree, 1, 4, 4)
	requireQuery(t, maxTree, 1, 4, 100)
	requireQuery(t, sumTree, 1, 4, 109)
	requireQuery(t, sumTree, 0, 6, 123)
}

func TestTree_container(t *testing.T) {
	t.Parallel()

	tree := buildTree(t, saggtree.Sum, []int64{2, 5, 1, 4, 9, 3})

	// Tree layout:
	//      0
	//   1     2
	//  3 4   5 (6)
	// 7 8 9 10 11 12 (13) (14)
	// Nodes in parentheses are padding.
	c, err := tree.Container()
	require.NoError(t, err)
	require.Len(t, c, 15)

	want := map[int]int64{
		0: 24,
		1: 12, 2: 12,
		3: 7, 4: 5, 5: 12,
		7: 2, 8: 5, 9: 1, 10: 4, 11: 9, 12: 3,
	}
	for node, slot := range c {
		v, ok := want[node]
		require.Equal(t, ok, slot.Present, "node %d", node)
		require.Equal(t, v, slot.Value, "node %d", node)
	}
}

func TestTree_minContainerHidesIdentity(t *testing.T) {
	t.Parallel()

	tree := buildTree(t, saggtree.Min, []int64{3, 1, 2})

	c, err := tree.Container()
	require.NoError(t, err)

	// Node 6 is the padding leaf; it must not leak MaxInt64.
	require.False(t, c[6].Present)
	require.Zero(t, c[6].Value)

	// Node 2 aggregates the single real leaf beneath it.
	require.True(t, c[2].Present)
	require.Equal(t, int64(2), c[2].Value)
}

func TestTree_matchesLinearScan(t *testing.T) {
	t.Parallel()

	f := fuzz.NewWithSeed(42).NilChance(0).NumElements(1, 40).Funcs(
		func(v *int64, c fuzz.Continue) {
			*v = c.Int63n(2001) - 1000
		},
	)

	for range 25 {
		var input []int64
		f.Fuzz(&input)

		for _, op := range allOps {
			tree := buildTree(t, op, input)

			for lo := range len(input) {
				for hi := lo + 1; hi <= len(input); hi++ {
					got, err := tree.Query(lo, hi)
					require.NoError(t, err)
					require.Equal(t, linearScan(op, input[lo:hi]), got,
						"%s over [%d, %d) of %v", op.Name, lo, hi, input)
				}
			}
		}
	}
}

func TestTree_updateProperties(t *testing.T) {
	t.Parallel()

	f := fuzz.NewWithSeed(7).NilChance(0).NumElements(1, 33).Funcs(
		func(v *int64, c fuzz.Continue) {
			*v = c.Int63n(201) - 100
		},
	)

	for range 20 {
		var input []int64
		f.Fuzz(&input)

		var pos int
		f.Funcs(func(p *int, c fuzz.Continue) { *p = c.Intn(len(input)) }).Fuzz(&pos)
		var v int64
		f.Fuzz(&v)

		for _, op := range allOps {
			tree := buildTree(t, op, input)

			before := make(map[[2]int]int64)
			for lo := range len(input) {
				for hi := lo + 1; hi <= len(input); hi++ {
					before[[2]int{lo, hi}], _ = tree.Query(lo, hi)
				}
			}

			require.NoError(t, tree.Update(pos, v))
			requireQuery(t, tree, pos, pos+1, v)

			// Ranges not touching pos are unchanged.
			for r, want := range before {
				if pos >= r[0] && pos < r[1] {
					continue
				}
				requireQuery(t, tree, r[0], r[1], want)
			}

			// Updating again with the same value changes nothing.
			once, err := tree.Container()
			require.NoError(t, err)
			require.NoError(t, tree.Update(pos, v))
			twice, err := tree.Container()
			require.NoError(t, err)
			require.Equal(t, once, twice)

			// And the tree still matches a fresh build of the modified input.
			modified := append([]int64(nil), input...)
			modified[pos] = v
			fresh, err := buildTree(t, op, modified).Container()
			require.NoError(t, err)
			require.Equal(t, fresh, twice)
		}
	}
}

func TestTree_errors(t *testing.T) {
	t.Parallel()

	t.Run("not built", func(t *testing.T) {
		t.Parallel()

		tree := saggtree.New(saggtree.Sum)
		require.False(t, tree.Built())

		_, err := tree.Query(0, 1)
		require.ErrorIs(t, err, sgeom.ErrNotBuilt)
		require.ErrorIs(t, tree.Update(0, 1), sgeom.ErrNotBuilt)
		_, err = tree.Container()
		require.ErrorIs(t, err, sgeom.ErrNotBuilt)
		_, err = tree.Values()
		require.ErrorIs(t, err, sgeom.ErrNotBuilt)
		_, err = tree.Value(0)
		require.ErrorIs(t, err, sgeom.ErrNotBuilt)
	})

	t.Run("empty build", func(t *testing.T) {
		t.Parallel()

		tree := saggtree.New(saggtree.Sum)
		require.ErrorIs(t, tree.Build(nil), sgeom.ErrEmptyInput)
		require.False(t, tree.Built())
	})

	t.Run("failed build keeps prior state", func(t *testing.T) {
		t.Parallel()

		tree := buildTree(t, saggtree.Sum, []int64{1, 2, 3})
		require.ErrorIs(t, tree.Build([]int64{}), sgeom.ErrEmptyInput)
		requireQuery(t, tree, 0, 3, 6)
	})

	t.Run("layout mismatch", func(t *testing.T) {
		t.Parallel()

		l, err := sgeom.NewLayout(4)
		require.NoError(t, err)

		tree := saggtree.New(saggtree.Max)
		require.Error(t, tree.BuildLayout(l, []int64{1, 2, 3}))
		require.False(t, tree.Built())
	})

	t.Run("bad query", func(t *testing.T) {
		t.Parallel()

		tree := buildTree(t, saggtree.Min, []int64{2, 5, 1, 4, 9, 3})

		_, err := tree.Query(-1, 3)
		var rangeErr *sgeom.RangeError
		require.ErrorAs(t, err, &rangeErr)

		_, err = tree.Query(2, 2)
		require.ErrorAs(t, err, &rangeErr)

		_, err = tree.Query(0, 7)
		require.ErrorAs(t, err, &rangeErr)
	})

	t.Run("bad update", func(t *testing.T) {
		t.Parallel()

		tree := buildTree(t, saggtree.Max, []int64{2, 5, 1, 4, 9, 3})
		before, err := tree.Container()
		require.NoError(t, err)

		err = tree.Update(6, 10)
		var idxErr *sgeom.IndexError
		require.ErrorAs(t, err, &idxErr)
		require.Equal(t, 6, idxErr.Pos)

		after, err := tree.Container()
		require.NoError(t, err)
		require.Equal(t, before, after)
	})
}

func TestTree_values(t *testing.T) {
	t.Parallel()

	tree := buildTree(t, saggtree.Sum, []int64{4, 8, 15})
	require.NoError(t, tree.Update(1, 16))

	vals, err := tree.Values()
	require.NoError(t, err)
	require.Equal(t, []int64{4, 16, 15}, vals)

	// Returned slice is a copy.
	vals[0] = 99
	v, err := tree.Value(0)
	require.NoError(t, err)
	require.Equal(t, int64(4), v)
}

func TestTree_singleElement(t *testing.T) {
	t.Parallel()

	for _, op := range allOps {
		tree := buildTree(t, op, []int64{-7})
		requireQuery(t, tree, 0, 1, -7)
		require.NoError(t, tree.Update(0, 12))
		requireQuery(t, tree, 0, 1, 12)
	}
}

func TestOp_identity(t *testing.T) {
	t.Parallel()

	for _, x := range []int64{math.MinInt64, -1, 0, 1, math.MaxInt64} {
		for _, op := range allOps {
			require.Equal(t, x, op.Combine(op.Identity, x), op.Name)
			require.Equal(t, x, op.Combine(x, op.Identity), op.Name)
		}
	}
}

func buildTree(t *testing.T, op saggtree.Op[int64], input []int64) *saggtree.Tree[int64] {
	t.Helper()

	tree := saggtree.New(op)
	require.NoError(t, tree.Build(input))
	require.True(t, tree.Built())
	require.Equal(t, len(input), tree.Len())
	return tree
}

func requireQuery(t *testing.T, tree *saggtree.Tree[int64], lo, hi int, want int64) {
	t.Helper()

	got, err := tree.Query(lo, hi)
	require.NoError(t, err)
	require.Equal(t, want, got, "%s over [%d, %d)", tree.Op().Name, lo, hi)
}

func linearScan(op saggtree.Op[int64], xs []int64) int64 {
	acc := op.Identity
	for _, x := range xs {
		acc = op.Combine(acc, x)
	}
	return acc
}
