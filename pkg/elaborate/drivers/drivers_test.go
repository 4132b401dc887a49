package drivers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/svlang/elaborate/pkg/elaborate/binder"
	"github.com/svlang/elaborate/pkg/elaborate/diag"
	"github.com/svlang/elaborate/pkg/elaborate/symbols"
	"github.com/svlang/elaborate/pkg/elaborate/types"
	"github.com/svlang/elaborate/pkg/util/file"
)

func namedTarget(name string, t types.Type) binder.Expr {
	return binder.NewNamedValue(name, nil, t)
}

func TestRecordAssignmentAppendsDriverInOrder(t *testing.T) {
	store := diag.NewStore(0)
	tr := New(store, false, false)
	vb := symbols.NewValueBinding(symbols.ValueVariable, file.NewAbsolutePath("x"), 0, types.IntType)
	//
	tr.RecordAssignment(vb, namedTarget("x", types.IntType), KindContinuous, 0, ContextNone, false, diag.Location{})
	tr.RecordAssignment(vb, namedTarget("x", types.IntType), KindContinuous, 0, ContextNone, false, diag.Location{})
	//
	all := tr.Drivers(vb)
	assert.Len(t, all, 2)
	assert.Equal(t, uint(0), all[0].SeqIndex)
	assert.Equal(t, uint(1), all[1].SeqIndex)
}

func TestConstVariableWriteOutsideConstructorIsRejected(t *testing.T) {
	store := diag.NewStore(0)
	tr := New(store, false, false)
	vb := symbols.NewValueBinding(symbols.ValueVariable, file.NewAbsolutePath("x"), 0, types.IntType)
	vb.Const = true
	//
	tr.RecordAssignment(vb, namedTarget("x", types.IntType), KindProcedural, 0, ContextInitial, false, diag.Location{})
	//
	assert.Len(t, store.Sorted(), 1)
	assert.Equal(t, diag.ErrAssignmentToConstVar, store.Sorted()[0].Code)
}

func TestConstVariableWriteInConstructorIsAllowed(t *testing.T) {
	store := diag.NewStore(0)
	tr := New(store, false, false)
	vb := symbols.NewValueBinding(symbols.ValueVariable, file.NewAbsolutePath("x"), 0, types.IntType)
	vb.Const = true
	//
	tr.RecordAssignment(vb, namedTarget("x", types.IntType), KindProcedural, 0, ContextInitial, true, diag.Location{})
	//
	assert.Empty(t, store.Sorted())
}

func TestNetAssignedProcedurallyIsRejected(t *testing.T) {
	store := diag.NewStore(0)
	tr := New(store, false, false)
	vb := symbols.NewValueBinding(symbols.ValueNet, file.NewAbsolutePath("n"), 0, types.LogicType)
	//
	tr.RecordAssignment(vb, namedTarget("n", types.LogicType), KindProcedural, 0, ContextAlways, false, diag.Location{})
	//
	assert.Equal(t, diag.ErrProceduralNetAssignment, store.Sorted()[0].Code)
}

func TestMultipleContinuousDriversAreRejected(t *testing.T) {
	store := diag.NewStore(0)
	tr := New(store, false, false)
	vb := symbols.NewValueBinding(symbols.ValueNet, file.NewAbsolutePath("n"), 0, types.LogicType)
	//
	tr.RecordAssignment(vb, namedTarget("n", types.LogicType), KindContinuous, 0, ContextNone, false, diag.Location{})
	tr.RecordAssignment(vb, namedTarget("n", types.LogicType), KindContinuous, 0, ContextNone, false, diag.Location{})
	//
	found := false
	for _, d := range store.Sorted() {
		if d.Code == diag.ErrMultiDrivenNet {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDuplicateInitialDriversRespectAllowFlag(t *testing.T) {
	vb := symbols.NewValueBinding(symbols.ValueVariable, file.NewAbsolutePath("x"), 0, types.IntType)
	//
	strict := diag.NewStore(0)
	trStrict := New(strict, false, false)
	trStrict.RecordAssignment(vb, namedTarget("x", types.IntType), KindProcedural, 0, ContextInitial, false, diag.Location{})
	trStrict.RecordAssignment(vb, namedTarget("x", types.IntType), KindProcedural, 0, ContextInitial, false, diag.Location{})
	assert.NotEmpty(t, strict.Sorted())
	//
	relaxed := diag.NewStore(0)
	trRelaxed := New(relaxed, true, false)
	vb2 := symbols.NewValueBinding(symbols.ValueVariable, file.NewAbsolutePath("y"), 0, types.IntType)
	trRelaxed.RecordAssignment(vb2, namedTarget("y", types.IntType), KindProcedural, 0, ContextInitial, false, diag.Location{})
	trRelaxed.RecordAssignment(vb2, namedTarget("y", types.IntType), KindProcedural, 0, ContextInitial, false, diag.Location{})
	assert.Empty(t, relaxed.Sorted())
}

func TestLongestStaticPrefixReturnsNamedValueForSimpleTarget(t *testing.T) {
	target := namedTarget("x", types.IntType)
	assert.Same(t, target, LongestStaticPrefix(target))
}
