package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svlang/elaborate/pkg/elaborate/diag"
	"github.com/svlang/elaborate/pkg/elaborate/lookup"
	"github.com/svlang/elaborate/pkg/elaborate/symbols"
	"github.com/svlang/elaborate/pkg/elaborate/syntax"
	"github.com/svlang/elaborate/pkg/elaborate/types"
	"github.com/svlang/elaborate/pkg/util"
	"github.com/svlang/elaborate/pkg/util/file"
)

type def struct {
	path    file.Path
	name    string
	binding symbols.Binding
}

func (d *def) Path() *file.Path         { return &d.path }
func (d *def) Arity() util.Option[uint] { return util.None[uint]() }
func (d *def) Name() string             { return d.name }
func (d *def) Binding() symbols.Binding { return d.binding }

func TestBindNameResolvesDeclaredVariable(t *testing.T) {
	root := symbols.NewDesignScope()
	vb := symbols.NewValueBinding(symbols.ValueVariable, file.NewAbsolutePath("a"), 0, types.IntType)
	assert.True(t, root.Define(&def{file.NewAbsolutePath("a"), "a", vb}))
	//
	b := New(diag.NewStore(0), lookup.NewBudget(8), SelectMax)
	expr := b.BindName("a", lookup.Location{Scope: root, Index: 1}, root, diag.Location{}, 0)
	//
	assert.False(t, expr.Bad())
	assert.Equal(t, types.IntType, expr.Type())
}

func TestBindNameUnknownProducesInvalidAndDiagnostic(t *testing.T) {
	root := symbols.NewDesignScope()
	store := diag.NewStore(0)
	b := New(store, lookup.NewBudget(8), SelectMax)
	//
	expr := b.BindName("ghost", lookup.Location{Scope: root, Index: 0}, root, diag.Location{}, 0)
	assert.True(t, expr.Bad())
	assert.Equal(t, KindInvalid, expr.Kind())
	assert.Len(t, store.Sorted(), 1)
	assert.Equal(t, diag.ErrUnknownIdentifier, store.Sorted()[0].Code)
}

func TestBindNameConstVarAsLValueIsRejected(t *testing.T) {
	root := symbols.NewDesignScope()
	vb := symbols.NewValueBinding(symbols.ValueVariable, file.NewAbsolutePath("x"), 0, types.IntType)
	vb.Const = true
	assert.True(t, root.Define(&def{file.NewAbsolutePath("x"), "x", vb}))
	//
	store := diag.NewStore(0)
	b := New(store, lookup.NewBudget(8), SelectMax)
	expr := b.BindName("x", lookup.Location{Scope: root, Index: 1}, root, diag.Location{}, LValue)
	//
	assert.True(t, expr.Bad())
	assert.Equal(t, diag.ErrAssignmentToConstVar, store.Sorted()[0].Code)
}

func TestBindMinTypMaxSelectsConfiguredBranch(t *testing.T) {
	min := NewConstant(types.IntType, int64(1))
	typ := NewConstant(types.IntType, int64(2))
	max := NewConstant(types.IntType, int64(3))
	//
	bMax := New(diag.NewStore(0), lookup.NewBudget(0), SelectMax)
	resMax := bMax.BindMinTypMax(min, typ, max, diag.Location{})
	assert.Equal(t, max, resMax.(*Conditional).Selected)
	//
	bMin := New(diag.NewStore(0), lookup.NewBudget(0), SelectMin)
	resMin := bMin.BindMinTypMax(min, typ, max, diag.Location{})
	assert.Equal(t, min, resMin.(*Conditional).Selected)
}

func TestBindBinaryOpWidensIntegralOperands(t *testing.T) {
	b := New(diag.NewStore(0), lookup.NewBudget(0), SelectMax)
	left := NewConstant(types.ByteType, int64(1))
	right := NewConstant(types.IntType, int64(2))
	//
	result := b.BindBinaryOp("+", left, right, diag.Location{})
	assert.False(t, result.Bad())
	assert.Equal(t, uint(32), result.Type().Width())
}

func TestBindBinaryOpPropagatesBadFromOperand(t *testing.T) {
	b := New(diag.NewStore(0), lookup.NewBudget(0), SelectMax)
	result := b.BindBinaryOp("+", NewInvalid(), NewConstant(types.IntType, int64(1)), diag.Location{})
	assert.True(t, result.Bad())
}

func TestBindTaggedUnionRequiresInitializerForNonVoidMember(t *testing.T) {
	union := types.NewUnionType(false, true, []types.Field{
		{Name: "valid", Type: types.IntType},
		{Name: "invalid", Type: types.VoidType},
	}, 1)
	//
	store := diag.NewStore(0)
	b := New(store, lookup.NewBudget(0), SelectMax)
	//
	missing := b.BindTaggedUnion(union, "valid", nil, diag.Location{})
	assert.True(t, missing.Bad())
	//
	ok := b.BindTaggedUnion(union, "invalid", nil, diag.Location{})
	assert.False(t, ok.Bad())
}

func TestBindNameSuppressesDiagnosticsOnUnevaluatedBranch(t *testing.T) {
	root := symbols.NewDesignScope()
	store := diag.NewStore(0)
	b := New(store, lookup.NewBudget(8), SelectMax)
	//
	expr := b.BindName("ghost", lookup.Location{Scope: root, Index: 0}, root, diag.Location{}, UnevaluatedBranch)
	assert.True(t, expr.Bad())
	assert.Empty(t, store.Sorted())
}

func TestBindNameStillDiagnosesConstLValueOnUnevaluatedBranch(t *testing.T) {
	root := symbols.NewDesignScope()
	vb := symbols.NewValueBinding(symbols.ValueVariable, file.NewAbsolutePath("x"), 0, types.IntType)
	vb.Const = true
	require.True(t, root.Define(&def{file.NewAbsolutePath("x"), "x", vb}))
	//
	store := diag.NewStore(0)
	b := New(store, lookup.NewBudget(8), SelectMax)
	expr := b.BindName("x", lookup.Location{Scope: root, Index: 1}, root, diag.Location{}, LValue|UnevaluatedBranch)
	//
	assert.True(t, expr.Bad())
	require.Len(t, store.Sorted(), 1)
	assert.Equal(t, diag.ErrAssignmentToConstVar, store.Sorted()[0].Code)
}

func TestBindUnaryOpReductionYieldsLogicType(t *testing.T) {
	b := New(diag.NewStore(0), lookup.NewBudget(0), SelectMax)
	result := b.BindUnaryOp("&", NewConstant(types.IntType, int64(7)), diag.Location{})
	assert.False(t, result.Bad())
	assert.Equal(t, types.LogicType, result.Type())
}

func TestBindUnaryOpPropagatesBadFromChild(t *testing.T) {
	b := New(diag.NewStore(0), lookup.NewBudget(0), SelectMax)
	result := b.BindUnaryOp("-", NewInvalid(), diag.Location{})
	assert.True(t, result.Bad())
}

func TestBindConcatSumsOperandWidths(t *testing.T) {
	b := New(diag.NewStore(0), lookup.NewBudget(0), SelectMax)
	result := b.BindConcat([]Expr{
		NewConstant(types.ByteType, int64(1)),
		NewConstant(types.ShortIntType, int64(2)),
	}, diag.Location{})
	//
	assert.False(t, result.Bad())
	assert.Equal(t, uint(24), result.Type().Width())
}

func TestBindConcatPropagatesBadFromAnyChild(t *testing.T) {
	b := New(diag.NewStore(0), lookup.NewBudget(0), SelectMax)
	result := b.BindConcat([]Expr{NewConstant(types.ByteType, int64(1)), NewInvalid()}, diag.Location{})
	assert.True(t, result.Bad())
}

func TestBindConversionImplicitRejectsUnassignableType(t *testing.T) {
	store := diag.NewStore(0)
	b := New(store, lookup.NewBudget(0), SelectMax)
	//
	result := b.BindConversion(NewConstant(types.IntType, int64(1)), types.VoidType, false, diag.Location{})
	assert.True(t, result.Bad())
	assert.Equal(t, diag.ErrTypeMismatch, store.Sorted()[0].Code)
}

func TestBindConversionExplicitAllowsCast(t *testing.T) {
	b := New(diag.NewStore(0), lookup.NewBudget(0), SelectMax)
	result := b.BindConversion(NewConstant(types.ByteType, int64(1)), types.IntType, true, diag.Location{})
	assert.False(t, result.Bad())
	assert.Equal(t, types.IntType, result.Type())
}

func TestBindCallRejectsArityMismatchWithoutDefaults(t *testing.T) {
	store := diag.NewStore(0)
	b := New(store, lookup.NewBudget(0), SelectMax)
	sig := symbols.NewSignature(true, []symbols.Parameter{{Name: "a", Type: types.IntType}}, types.IntType)
	//
	result := b.BindCall("f", nil, sig, diag.Location{})
	assert.True(t, result.Bad())
	assert.Equal(t, diag.ErrTypeMismatch, store.Sorted()[0].Code)
}

func TestBindCallAllowsDefaultedTrailingArguments(t *testing.T) {
	b := New(diag.NewStore(0), lookup.NewBudget(0), SelectMax)
	sig := symbols.NewSignature(true, []symbols.Parameter{
		{Name: "a", Type: types.IntType},
		{Name: "b", Type: types.IntType, Default: "0"},
	}, types.IntType)
	//
	result := b.BindCall("f", []Expr{NewConstant(types.IntType, int64(1))}, sig, diag.Location{})
	assert.False(t, result.Bad())
	assert.Equal(t, types.IntType, result.Type())
}

func TestBindHierarchicalValueResolvesThroughInstanceTree(t *testing.T) {
	root := symbols.NewDesignScope()
	child, ok := root.Declare("top")
	require.True(t, ok)
	//
	vb := symbols.NewValueBinding(symbols.ValueVariable, file.NewAbsolutePath("top", "sig"), 0, types.IntType)
	require.True(t, child.Define(&def{file.NewAbsolutePath("top", "sig"), "sig", vb}))
	//
	b := New(diag.NewStore(0), lookup.NewBudget(0), SelectMax)
	result := b.BindHierarchicalValue([]string{"top", "sig"}, root, diag.Location{})
	//
	assert.False(t, result.Bad())
	assert.Equal(t, types.IntType, result.Type())
}

func TestBindHierarchicalValueUnknownPathDiagnoses(t *testing.T) {
	root := symbols.NewDesignScope()
	store := diag.NewStore(0)
	b := New(store, lookup.NewBudget(0), SelectMax)
	//
	result := b.BindHierarchicalValue([]string{"nope", "sig"}, root, diag.Location{})
	assert.True(t, result.Bad())
	assert.Equal(t, diag.ErrUnknownIdentifier, store.Sorted()[0].Code)
}

func TestBindAssertionInstanceMapsFormalsToActuals(t *testing.T) {
	b := New(diag.NewStore(0), lookup.NewBudget(0), SelectMax)
	actual := NewConstant(types.IntType, int64(1))
	//
	result := b.BindAssertionInstance("p", []string{"a"}, map[string]Expr{"a": actual}, map[string]bool{}, diag.Location{})
	assert.False(t, result.Bad())
	inst := result.(*AssertionInstance)
	assert.False(t, inst.IsRecursiveProperty)
	assert.Equal(t, actual, inst.Actuals["a"])
}

func TestBindAssertionInstanceReturnsPlaceholderWhenAlreadyInProgress(t *testing.T) {
	b := New(diag.NewStore(0), lookup.NewBudget(0), SelectMax)
	//
	result := b.BindAssertionInstance("p", []string{"a"}, nil, map[string]bool{"p": true}, diag.Location{})
	assert.False(t, result.Bad())
	inst := result.(*AssertionInstance)
	assert.True(t, inst.IsRecursiveProperty)
	assert.Nil(t, inst.Actuals)
}

func TestBindAssertionInstanceDiagnosesMissingActual(t *testing.T) {
	store := diag.NewStore(0)
	b := New(store, lookup.NewBudget(0), SelectMax)
	//
	result := b.BindAssertionInstance("p", []string{"a"}, map[string]Expr{}, map[string]bool{}, diag.Location{})
	assert.True(t, result.Bad())
	assert.Equal(t, diag.ErrTypeMismatch, store.Sorted()[0].Code)
}

func TestBindDistPropagatesBadFromRange(t *testing.T) {
	b := New(diag.NewStore(0), lookup.NewBudget(0), SelectMax)
	left := NewConstant(types.IntType, int64(1))
	//
	result := b.BindDist(left, []DistRange{{Lo: NewInvalid(), Hi: NewInvalid(), Weight: NewConstant(types.IntType, int64(1))}}, diag.Location{})
	assert.True(t, result.Bad())
}

func TestBindExpressionDispatchesBinaryAndIdentifierNodes(t *testing.T) {
	root := symbols.NewDesignScope()
	vb := symbols.NewValueBinding(symbols.ValueVariable, file.NewAbsolutePath("a"), 0, types.IntType)
	require.True(t, root.Define(&def{file.NewAbsolutePath("a"), "a", vb}))
	//
	node := syntax.NewNode(syntax.KindBinaryExpr,
		syntax.NewLeaf(syntax.KindIdentifierExpr, "a"),
		syntax.NewLeaf("", "+"),
		syntax.NewLeaf(syntax.KindIdentifierExpr, "a"))
	//
	b := New(diag.NewStore(0), lookup.NewBudget(8), SelectMax)
	result := b.BindExpression(node, lookup.Location{Scope: root, Index: 1}, root, diag.Location{}, 0)
	//
	assert.False(t, result.Bad())
	assert.Equal(t, types.IntType, result.Type())
}

func TestBindExpressionMinTypMaxMarksUnselectedBranchesUnevaluated(t *testing.T) {
	root := symbols.NewDesignScope()
	//
	node := syntax.NewNode(syntax.KindMinTypMaxExpr,
		syntax.NewLeaf(syntax.KindIdentifierExpr, "ghost_min"),
		syntax.NewLeaf(syntax.KindIdentifierExpr, "ghost_typ"),
		syntax.NewLeaf(syntax.KindIdentifierExpr, "ghost_max"))
	//
	store := diag.NewStore(0)
	b := New(store, lookup.NewBudget(8), SelectMax)
	result := b.BindExpression(node, lookup.Location{Scope: root, Index: 0}, root, diag.Location{}, 0)
	//
	// All three names are unresolved, but only the selected (max) branch is
	// bound with diagnostics live; min and typ are unevaluated.
	assert.True(t, result.Bad())
	require.Len(t, store.Sorted(), 1)
	assert.Equal(t, diag.ErrUnknownIdentifier, store.Sorted()[0].Code)
}
