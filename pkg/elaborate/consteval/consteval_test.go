package consteval

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svlang/elaborate/pkg/elaborate/binder"
	"github.com/svlang/elaborate/pkg/elaborate/diag"
	"github.com/svlang/elaborate/pkg/elaborate/types"
)

func TestEvalConstantLiteral(t *testing.T) {
	ev := New(diag.NewStore(0), 0, 0, 0, false)
	v, err := ev.Eval(binder.NewConstant(types.IntType, int64(42)), 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), v.Int)
}

func TestEvalBinaryArithmetic(t *testing.T) {
	ev := New(diag.NewStore(0), 0, 0, 0, false)
	expr := binder.NewBinaryOp("+", binder.NewConstant(types.IntType, int64(3)),
		binder.NewConstant(types.IntType, int64(4)), types.IntType)
	v, err := ev.Eval(expr, 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), v.Int)
}

func TestEvalDivisionByZeroFails(t *testing.T) {
	ev := New(diag.NewStore(0), 0, 0, 0, false)
	expr := binder.NewBinaryOp("/", binder.NewConstant(types.IntType, int64(1)),
		binder.NewConstant(types.IntType, int64(0)), types.IntType)
	_, err := ev.Eval(expr, 0)
	assert.Error(t, err)
}

func TestEvalStepBudgetExceeded(t *testing.T) {
	ev := New(diag.NewStore(0), 0, 1, 4, false)
	one := binder.NewConstant(types.IntType, int64(1))
	sum := binder.NewBinaryOp("+", one, one, types.IntType)
	//
	_, err := ev.Eval(one, 0)
	require.NoError(t, err)
	_, err = ev.Eval(sum, 0)
	require.Error(t, err)
	var evalErr *EvalError
	assert.ErrorAs(t, err, &evalErr)
}

func TestEvalHierarchicalNameRejectedByDefault(t *testing.T) {
	store := diag.NewStore(0)
	ev := New(store, 0, 0, 0, false)
	h := binder.NewHierarchicalValue([]string{"top", "clk"}, nil, types.LogicType)
	//
	_, err := ev.Eval(h, 0)
	assert.Error(t, err)
	assert.NotEmpty(t, store.Sorted())
	assert.Equal(t, diag.ErrConstEvalHierarchicalName, store.Sorted()[0].Code)
}

func TestEvalHierarchicalNameAllowedInScript(t *testing.T) {
	ev := New(diag.NewStore(0), 0, 0, 0, false)
	h := binder.NewHierarchicalValue([]string{"top", "clk"}, nil, types.LogicType)
	//
	_, err := ev.Eval(h, IsScript)
	assert.Error(t, err) // no constant-value provider attached, but not the hierarchical-rejection error
	var evalErr *EvalError
	assert.ErrorAs(t, err, &evalErr)
	assert.NotContains(t, evalErr.Message, "not a constant in this context")
}

func TestEvalConditionalSelectsBranchByGuard(t *testing.T) {
	ev := New(diag.NewStore(0), 0, 0, 0, false)
	guard := binder.NewConstant(types.LogicType, int64(1))
	thenExpr := binder.NewConstant(types.IntType, int64(10))
	elseExpr := binder.NewConstant(types.IntType, int64(20))
	cond := binder.NewTernary(guard, thenExpr, elseExpr, types.IntType, true)
	//
	v, err := ev.Eval(cond, 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), v.Int)
}

func TestEvalMinTypMaxUsesSelectedBranchNotGuard(t *testing.T) {
	ev := New(diag.NewStore(0), 0, 0, 0, false)
	min := binder.NewConstant(types.IntType, int64(1))
	typ := binder.NewConstant(types.IntType, int64(2))
	max := binder.NewConstant(types.IntType, int64(3))
	cond := binder.NewConditional(nil, min, typ, max, max, types.IntType)
	//
	v, err := ev.Eval(cond, 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), v.Int)
}

func TestEvalConcatPacksOperandsMSBFirst(t *testing.T) {
	ev := New(diag.NewStore(0), 0, 0, 0, false)
	nibble := types.NewIntegralType(4, false, false, false)
	a := binder.NewConstant(nibble, int64(0xA))
	b := binder.NewConstant(nibble, int64(0xB))
	concatType := types.NewIntegralType(8, false, false, false)
	expr := binder.NewConcat([]binder.Expr{a, b}, concatType)
	//
	v, err := ev.Eval(expr, 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0xAB), v.Int)
}
