package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svlang/elaborate/pkg/elaborate/binder"
	"github.com/svlang/elaborate/pkg/elaborate/diag"
	"github.com/svlang/elaborate/pkg/elaborate/types"
)

func TestNewBinStartsUnresolved(t *testing.T) {
	b := NewBin("lo", KindValue, nil, nil, nil, nil, nil)
	assert.False(t, b.IsResolved())
}

func TestResolveRunsOnceAndCaches(t *testing.T) {
	iff := binder.NewConstant(types.LogicType, int64(1))
	b := NewBin("lo", KindValue, iff, nil, []ValueRange{{
		Lo: binder.NewConstant(types.IntType, int64(0)),
		Hi: binder.NewConstant(types.IntType, int64(0)),
	}}, nil, nil)
	store := diag.NewStore(0)
	//
	body := b.Resolve(store, diag.Location{})
	require.True(t, b.IsResolved())
	assert.Same(t, iff, body.Iff)
	assert.Len(t, body.Values, 1)
	assert.Equal(t, 0, store.ErrorCount())
	//
	second := b.Resolve(store, diag.Location{})
	assert.Same(t, iff, second.Iff)
}

func TestResolveReentrantCallDuringResolutionIsCycle(t *testing.T) {
	store := diag.NewStore(0)
	var b *Bin
	b = NewBin("cyclic", KindValue, nil, nil, nil, nil, nil)
	//
	// Force the cell straight to Resolving and re-enter, the way a bin
	// whose own iff-expression transitively reads its own resolved body
	// would re-enter mid-resolution.
	b.cell.Resolve(func() Body {
		inner := b.Resolve(store, diag.Location{})
		assert.Nil(t, inner.Iff)
		return Body{}
	})
	//
	assert.Equal(t, 1, store.ErrorCount())
}

func TestTransitionSetCarriesOrderedSteps(t *testing.T) {
	lo := binder.NewConstant(types.IntType, int64(1))
	hi := binder.NewConstant(types.IntType, int64(2))
	b := NewBin("seq", KindTransition, nil, nil, nil, []TransitionSet{
		{Steps: []ValueRange{{Lo: lo, Hi: lo}, {Lo: hi, Hi: hi}}},
	}, nil)
	//
	body := b.Resolve(diag.NewStore(0), diag.Location{})
	require.Len(t, body.Transitions, 1)
	assert.Len(t, body.Transitions[0].Steps, 2)
}
