package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/svlang/elaborate/pkg/elaborate/symbols"
	"github.com/svlang/elaborate/pkg/elaborate/types"
	"github.com/svlang/elaborate/pkg/util"
	"github.com/svlang/elaborate/pkg/util/file"
)

type def struct {
	path    file.Path
	name    string
	arity   util.Option[uint]
	binding symbols.Binding
}

func (d *def) Path() *file.Path         { return &d.path }
func (d *def) Arity() util.Option[uint] { return d.arity }
func (d *def) Name() string             { return d.name }
func (d *def) Binding() symbols.Binding { return d.binding }

func TestResolveFindsScopeLocalSymbol(t *testing.T) {
	root := symbols.NewDesignScope()
	vb := symbols.NewValueBinding(symbols.ValueVariable, file.NewAbsolutePath("clk"), 0, types.LogicType)
	assert.True(t, root.Define(&def{file.NewAbsolutePath("clk"), "clk", util.None[uint](), vb}))
	//
	res := Resolve("clk", Location{Scope: root, Index: 10}, util.None[uint](), 0, nil)
	assert.True(t, res.Found)
	assert.Same(t, symbols.Binding(vb), res.Binding)
}

func TestResolveWalksOutwardToParentScope(t *testing.T) {
	root := symbols.NewDesignScope()
	child, ok := root.Declare("gen_block")
	assert.True(t, ok)
	//
	vb := symbols.NewValueBinding(symbols.ValueParameter, file.NewAbsolutePath("WIDTH"), 0, types.IntType)
	assert.True(t, root.Define(&def{file.NewAbsolutePath("WIDTH"), "WIDTH", util.None[uint](), vb}))
	//
	res := Resolve("WIDTH", Location{Scope: child, Index: 0}, util.None[uint](), 0, nil)
	assert.True(t, res.Found)
}

func TestResolveMissingReturnsNotFound(t *testing.T) {
	root := symbols.NewDesignScope()
	res := Resolve("nope", Location{Scope: root, Index: 0}, util.None[uint](), 0, nil)
	assert.False(t, res.Found)
}

func TestTypoCorrectionRespectsBudget(t *testing.T) {
	root := symbols.NewDesignScope()
	vb := symbols.NewValueBinding(symbols.ValueVariable, file.NewAbsolutePath("counter"), 0, types.IntType)
	assert.True(t, root.Define(&def{file.NewAbsolutePath("counter"), "counter", util.None[uint](), vb}))
	//
	budget := NewBudget(0)
	res := Resolve("countr", Location{Scope: root, Index: 0}, util.None[uint](), 0, budget)
	assert.False(t, res.Found)
	assert.Empty(t, res.Suggestion, "an exhausted typo-correction budget must not produce a suggestion")
}

func TestEditDistance(t *testing.T) {
	assert.Equal(t, 0, editDistance("foo", "foo"))
	assert.Equal(t, 1, editDistance("foo", "fo"))
	assert.Equal(t, 1, editDistance("foo", "goo"))
}
