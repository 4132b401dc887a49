package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/svlang/elaborate/pkg/util/source"
)

func TestStoreDedupSameCodeLocation(t *testing.T) {
	file := source.NewSourceFile("top.sv", []byte("module top; endmodule"))
	loc := Location{File: file, Span: source.NewSpan(5, 8)}
	//
	store := NewStore(0)
	//
	for i := 0; i < 100; i++ {
		store.Add(ErrTypeMismatch, loc)
	}
	//
	all := store.Sorted()
	assert.Len(t, all, 1, "repeated emissions at the same (code, location) must collapse to one entry")
	assert.Equal(t, 100, all[0].Count)
}

func TestStoreSortsByLocationThenCode(t *testing.T) {
	file := source.NewSourceFile("top.sv", []byte("0123456789"))
	//
	store := NewStore(0)
	store.Add(ErrTypeMismatch, Location{File: file, Span: source.NewSpan(5, 6)})
	store.Add(ErrUnknownIdentifier, Location{File: file, Span: source.NewSpan(1, 2)})
	store.Add(ErrInvalidCast, Location{File: file, Span: source.NewSpan(1, 2)})
	//
	sorted := store.Sorted()
	assert.Len(t, sorted, 3)
	assert.Equal(t, ErrInvalidCast, sorted[0].Code)
	assert.Equal(t, ErrUnknownIdentifier, sorted[1].Code)
	assert.Equal(t, ErrTypeMismatch, sorted[2].Code)
}

func TestErrorLimitShortCircuits(t *testing.T) {
	file := source.NewSourceFile("top.sv", []byte("0123456789"))
	store := NewStore(2)
	//
	store.Add(ErrTypeMismatch, Location{File: file, Span: source.NewSpan(0, 1)})
	assert.False(t, store.ShortCircuited())
	store.Add(ErrInvalidCast, Location{File: file, Span: source.NewSpan(1, 2)})
	assert.True(t, store.ShortCircuited())
}

func TestSeverityDefaultsToErrorForUnknownCode(t *testing.T) {
	assert.Equal(t, SeverityError, severityOf(Code("SomeCodeNeverRegistered")))
}
