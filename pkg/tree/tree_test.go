package tree_test

import (
	"sync"
	"testing"

	"github.com/leapstack-labs/symtree/pkg/core"
	"github.com/leapstack-labs/symtree/pkg/tree"
	"github.com/leapstack-labs/symtree/pkg/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// build assembles an operator node with the given children.
func build(t *testing.T, kind variant.Kind, children ...*tree.Node) *tree.Node {
	t.Helper()
	n, err := tree.New(kind)
	require.NoError(t, err)
	for _, c := range children {
		require.NoError(t, n.AppendChild(c))
	}
	return n
}

func x(i int) *tree.Node { return tree.NewFeature(i) }

func c(v float64) *tree.Node { return tree.NewConstantValue(v) }

func TestNew(t *testing.T) {
	n, err := tree.New(variant.Add)
	require.NoError(t, err)
	assert.Equal(t, variant.Add, n.Kind())
	assert.Equal(t, 2, n.Arity())
	assert.True(t, n.IsRoot())
	assert.Equal(t, 1.0, n.Scaling.Multiplicative)
	assert.Equal(t, 0.0, n.Scaling.Additive)

	_, err = tree.New(variant.KindInvalid)
	assert.ErrorIs(t, err, core.ErrUnimplementedVariant)

	_, err = tree.New(variant.Feature)
	assert.ErrorIs(t, err, core.ErrUnimplementedVariant)

	assert.Panics(t, func() { tree.MustNew(variant.Constant) })
}

func TestAppendChild(t *testing.T) {
	add := tree.MustNew(variant.Add)
	a, b := x(0), x(1)

	require.NoError(t, add.AppendChild(a))
	require.NoError(t, add.AppendChild(b))

	assert.Equal(t, []*tree.Node{a, b}, add.Children())
	assert.Same(t, add, a.Parent())
	assert.Same(t, add, b.Parent())
	assert.True(t, add.IsComplete())

	t.Run("beyond arity", func(t *testing.T) {
		err := add.AppendChild(x(2))
		assert.ErrorIs(t, err, core.ErrArityMismatch)
		assert.Equal(t, 2, add.NumChildren())
	})

	t.Run("leaf takes no children", func(t *testing.T) {
		err := x(0).AppendChild(x(1))
		assert.ErrorIs(t, err, core.ErrArityMismatch)
	})

	t.Run("already parented", func(t *testing.T) {
		other := tree.MustNew(variant.Sin)
		err := other.AppendChild(a)
		assert.ErrorIs(t, err, core.ErrStructuralPrecondition)
		assert.Same(t, add, a.Parent())
		assert.Zero(t, other.NumChildren())
	})

	t.Run("self", func(t *testing.T) {
		sin := tree.MustNew(variant.Sin)
		assert.ErrorIs(t, sin.AppendChild(sin), core.ErrStructuralPrecondition)
	})

	t.Run("ancestor", func(t *testing.T) {
		outer := tree.MustNew(variant.Sin)
		inner := tree.MustNew(variant.Cos)
		require.NoError(t, outer.AppendChild(inner))
		assert.ErrorIs(t, inner.AppendChild(outer), core.ErrStructuralPrecondition)
		assert.Zero(t, inner.NumChildren())
	})

	t.Run("nil", func(t *testing.T) {
		assert.ErrorIs(t, tree.MustNew(variant.Sin).AppendChild(nil), core.ErrStructuralPrecondition)
	})
}

func TestDetachChild(t *testing.T) {
	a, b := x(0), x(1)
	add := build(t, variant.Add, a, b)

	i, err := add.DetachChild(b)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Nil(t, b.Parent())
	assert.Equal(t, []*tree.Node{a}, add.Children())
	assert.False(t, add.IsComplete())

	_, err = add.DetachChild(b)
	assert.ErrorIs(t, err, core.ErrStructuralPrecondition)

	// grandchildren are not direct children
	sin := build(t, variant.Sin, build(t, variant.Cos, x(3)))
	grandchild := sin.Child(0).Child(0)
	_, err = sin.DetachChild(grandchild)
	assert.ErrorIs(t, err, core.ErrStructuralPrecondition)
}

func TestDetachMatchesIdentity(t *testing.T) {
	// two structurally equal children; only the exact node is removed
	first, second := x(0), x(0)
	add := build(t, variant.Add, first, second)

	i, err := add.DetachChild(second)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Same(t, first, add.Child(0))
	assert.Same(t, add, first.Parent())
}

func TestDetachInsertRoundTrip(t *testing.T) {
	a, b := x(0), x(1)
	sub := build(t, variant.Sub, a, b)
	before := sub.String()

	i, err := sub.DetachChild(a)
	require.NoError(t, err)
	require.Equal(t, 0, i)

	require.NoError(t, sub.InsertChildAtPosition(i, a))
	assert.Equal(t, before, sub.String())
	assert.Equal(t, "( x0 - x1 )", sub.String())
	assert.Same(t, sub, a.Parent())
}

func TestInsertChildAtPosition(t *testing.T) {
	sub := tree.MustNew(variant.Sub)
	a, b := x(0), x(1)
	require.NoError(t, sub.InsertChildAtPosition(0, b))
	require.NoError(t, sub.InsertChildAtPosition(0, a))
	assert.Equal(t, []*tree.Node{a, b}, sub.Children())

	mul := tree.MustNew(variant.Mul)
	require.NoError(t, mul.AppendChild(x(5)))
	assert.ErrorIs(t, mul.InsertChildAtPosition(2, x(6)), core.ErrStructuralPrecondition)
	assert.ErrorIs(t, mul.InsertChildAtPosition(-1, x(6)), core.ErrStructuralPrecondition)
	require.NoError(t, mul.InsertChildAtPosition(1, x(6)))
	assert.Equal(t, "( x5 * x6 )", mul.String())

	assert.ErrorIs(t, mul.InsertChildAtPosition(0, x(7)), core.ErrArityMismatch)
}

func TestReplace(t *testing.T) {
	a, b := x(0), x(1)
	add := build(t, variant.Add, a, b)
	r := c(2)

	require.NoError(t, add.Replace(a, r))
	assert.Equal(t, "( 2.0 + x1 )", add.String())
	assert.Nil(t, a.Parent())
	assert.Same(t, add, r.Parent())

	assert.ErrorIs(t, add.Replace(a, x(3)), core.ErrStructuralPrecondition)
	assert.ErrorIs(t, add.Replace(b, r), core.ErrStructuralPrecondition)
}

func TestSubtree(t *testing.T) {
	// ( sin( x0 ) + ( x1 * 3.0 ) )
	x0, x1, three := x(0), x(1), c(3)
	sin := build(t, variant.Sin, x0)
	mul := build(t, variant.Mul, x1, three)
	add := build(t, variant.Add, sin, mul)

	assert.Equal(t, []*tree.Node{add, sin, x0, mul, x1, three}, add.Subtree())
	assert.Equal(t, []*tree.Node{mul, x1, three}, mul.Subtree())
	assert.Equal(t, []*tree.Node{x0}, x0.Subtree())
	assert.Equal(t, 6, add.Size())

	// restartable and independent of later mutation
	snapshot := add.Subtree()
	_, err := add.DetachChild(mul)
	require.NoError(t, err)
	assert.Len(t, snapshot, 6)
	assert.Len(t, add.Subtree(), 3)
}

func TestSubtreeOfSum(t *testing.T) {
	x0, x1, k := x(0), x(1), c(2.5)
	mul := build(t, variant.Mul, x1, k)
	add := build(t, variant.Add, x0, mul)

	assert.Equal(t, []*tree.Node{add, x0, mul, x1, k}, add.Subtree())

	got, err := add.Render()
	require.NoError(t, err)
	assert.Equal(t, "( x0 + ( x1 * 2.5 ) )", got)
}

func TestWalkStops(t *testing.T) {
	root := build(t, variant.Add, build(t, variant.Sin, x(0)), x(1))
	var seen []variant.Kind
	root.Walk(func(n *tree.Node) bool {
		seen = append(seen, n.Kind())
		return n.Kind() != variant.Sin
	})
	assert.Equal(t, []variant.Kind{variant.Add, variant.Sin}, seen)
}

func TestDepthAndHeight(t *testing.T) {
	// Add( Sin( Mul(x0, x1) ), x2 )
	x0, x1, x2 := x(0), x(1), x(2)
	mul := build(t, variant.Mul, x0, x1)
	sin := build(t, variant.Sin, mul)
	add := build(t, variant.Add, sin, x2)

	tests := []struct {
		name   string
		node   *tree.Node
		depth  int
		height int
	}{
		{"root", add, 0, 3},
		{"sin", sin, 1, 2},
		{"mul", mul, 2, 1},
		{"deep leaf", x0, 3, 0},
		{"shallow leaf", x2, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.depth, tt.node.Depth())
			assert.Equal(t, tt.height, tt.node.Height())
			assert.Same(t, add, tt.node.Root())
		})
	}

	// no leaves yet
	assert.Equal(t, 0, tree.MustNew(variant.Add).Height())
	assert.Equal(t, 0, build(t, variant.Sin, tree.MustNew(variant.Cos)).Height())
}

func TestNonArithmeticDepth(t *testing.T) {
	tests := []struct {
		name string
		node func(t *testing.T) *tree.Node
		want int
	}{
		{"leaf", func(*testing.T) *tree.Node { return x(0) }, 0},
		{"arithmetic only", func(t *testing.T) *tree.Node {
			return build(t, variant.Add, x(0), build(t, variant.Div, x(1), c(2)))
		}, 0},
		{"single function", func(t *testing.T) *tree.Node {
			return build(t, variant.Sin, x(0))
		}, 1},
		{"nested functions", func(t *testing.T) *tree.Node {
			return build(t, variant.Log, build(t, variant.Sin, x(0)))
		}, 2},
		{"siblings take the max", func(t *testing.T) *tree.Node {
			return build(t, variant.Add, build(t, variant.Log, x(0)), build(t, variant.Sin, x(1)))
		}, 1},
		{"pow is flagged", func(t *testing.T) *tree.Node {
			return build(t, variant.Mul, build(t, variant.Pow, x(0), build(t, variant.Exp, x(1))), x(2))
		}, 2},
		{"function without children", func(*testing.T) *tree.Node {
			return tree.MustNew(variant.Cos)
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node(t).NonArithmeticDepth())
		})
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		node func(t *testing.T) *tree.Node
		want string
	}{
		{"feature", func(*testing.T) *tree.Node { return x(3) }, "x3"},
		{"constant", func(*testing.T) *tree.Node { return c(2.5) }, "2.5"},
		{"integral constant", func(*testing.T) *tree.Node { return c(-3) }, "-3.0"},
		{"add", func(t *testing.T) *tree.Node {
			return build(t, variant.Add, x(0), c(2.5))
		}, "( x0 + 2.5 )"},
		{"nested", func(t *testing.T) *tree.Node {
			return build(t, variant.Div, build(t, variant.Sin, x(0)), build(t, variant.Log, x(1)))
		}, "( sin( x0 ) / log( x1 ) )"},
		{"pow repeats base", func(t *testing.T) *tree.Node {
			return build(t, variant.Pow, x(0), x(1))
		}, "( x0**( x0 ))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.node(t).Render()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderIncomplete(t *testing.T) {
	add := build(t, variant.Add, x(0))
	_, err := add.Render()
	assert.ErrorIs(t, err, core.ErrArityMismatch)
	assert.Contains(t, add.String(), "<invalid expression")

	root := build(t, variant.Sin, tree.MustNew(variant.Cos))
	_, err = root.Render()
	assert.ErrorIs(t, err, core.ErrArityMismatch)
}

func TestValidate(t *testing.T) {
	ok := build(t, variant.Add, x(0), build(t, variant.Exp, c(1)))
	assert.NoError(t, ok.Validate())

	incomplete := build(t, variant.Add, x(0))
	assert.ErrorIs(t, incomplete.Validate(), core.ErrArityMismatch)
}

func TestConstantFreezesOnce(t *testing.T) {
	n := tree.NewConstant(tree.NewSource(42))
	assert.False(t, n.Frozen())

	first, ok := n.Value()
	require.True(t, ok)
	assert.True(t, n.Frozen())
	assert.GreaterOrEqual(t, first, -5.0)
	assert.LessOrEqual(t, first, 5.0)

	for range 10 {
		v, _ := n.Value()
		assert.Equal(t, first, v)
	}
	assert.Equal(t, variant.FormatConstant(first), n.String())

	_, ok = x(0).Value()
	assert.False(t, ok)
}

type fixedSource []float64

func (f *fixedSource) Float64() float64 {
	v := (*f)[0]
	*f = (*f)[1:]
	return v
}

func TestDrawConstant(t *testing.T) {
	tests := []struct {
		u    float64
		want float64
	}{
		{0, -5},
		{0.5, 0},
		{0.75, 2.5},
		{0.99999, 5},
	}
	for _, tt := range tests {
		src := fixedSource{tt.u}
		assert.InDelta(t, tt.want, tree.DrawConstant(&src), 1e-12, "u=%v", tt.u)
	}
}

func TestNewSourceDeterministic(t *testing.T) {
	a := tree.NewConstant(tree.NewSource(7))
	b := tree.NewConstant(tree.NewSource(7))
	va, _ := a.Value()
	vb, _ := b.Value()
	assert.Equal(t, va, vb)

	// nil source falls back to the global generator
	g := tree.NewConstant(nil)
	v, ok := g.Value()
	require.True(t, ok)
	assert.GreaterOrEqual(t, v, -5.0)
}

func TestFreeze(t *testing.T) {
	src := tree.NewSource(1)
	root := build(t, variant.Add, tree.NewConstant(src), build(t, variant.Sin, tree.NewConstant(src)))
	consts := root.Constants()
	require.Len(t, consts, 2)
	for _, k := range consts {
		assert.False(t, k.Frozen())
	}

	root.Freeze()
	for _, k := range consts {
		assert.True(t, k.Frozen())
	}
}

func TestClone(t *testing.T) {
	frozen := c(1.5)
	unfrozen := tree.NewConstant(tree.NewSource(3))
	root := build(t, variant.Add, frozen, build(t, variant.Cos, unfrozen))
	root.Fitness.Objectives = []float64{1, 2}
	root.Scaling.Additive = 0.25

	cp := root.Clone()
	require.NoError(t, cp.Validate())
	assert.NotSame(t, root, cp)
	assert.Nil(t, cp.Parent())
	assert.Equal(t, root.Size(), cp.Size())
	assert.Equal(t, 0.25, cp.Scaling.Additive)

	cp.Fitness.Objectives[0] = 99
	assert.Equal(t, 1.0, root.Fitness.Objectives[0])

	cpConsts := cp.Constants()
	require.Len(t, cpConsts, 2)
	assert.True(t, cpConsts[0].Frozen())
	assert.False(t, cpConsts[1].Frozen())

	// freezing the copy leaves the original unfrozen
	cp.Freeze()
	assert.False(t, unfrozen.Frozen())

	// cloning an inner node yields a detached root
	inner := root.Child(1).Clone()
	assert.True(t, inner.IsRoot())
	assert.Equal(t, 0, inner.Depth())
}

func TestNodeDominates(t *testing.T) {
	a, b := x(0), x(1)
	a.Fitness.Objectives = []float64{1, 1}
	b.Fitness.Objectives = []float64{1, 2}
	assert.True(t, a.Dominates(b))
	assert.False(t, b.Dominates(a))

	b.Fitness.Objectives = []float64{1}
	assert.Panics(t, func() { a.Dominates(b) })
}

func TestCloneDrawsConcurrently(t *testing.T) {
	orig := tree.NewConstant(tree.NewSource(1))
	clone := orig.Clone()
	other := tree.NewConstant(tree.NewSource(2))
	sibling := other.Clone()

	var wg sync.WaitGroup
	for _, n := range []*tree.Node{orig, clone, other, sibling} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, ok := n.Value()
			assert.True(t, ok)
			assert.GreaterOrEqual(t, v, -5.0)
			assert.LessOrEqual(t, v, 5.0)
		}()
	}
	wg.Wait()

	assert.True(t, orig.Frozen())
	assert.True(t, clone.Frozen())
}
