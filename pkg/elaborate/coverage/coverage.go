// Package coverage implements the coverage-bin resolution state machine:
// a coverpoint's bins (value bins, transition bins, and the implicit
// default/wildcard bins) are built lazily from their iff-expression,
// count-expression, value list, transition list, and with-filter syntax
// the first time anything needs them, rather than eagerly at declaration
// time, since most of that syntax needs the enclosing coverpoint's own
// binder context to be fully formed first.
package coverage

import (
	"github.com/svlang/elaborate/pkg/elaborate/binder"
	"github.com/svlang/elaborate/pkg/elaborate/diag"
	"github.com/svlang/elaborate/pkg/util/lazy"
)

// Kind discriminates the shape of a coverage bin.
type Kind uint8

// Recognised bin kinds.
const (
	KindValue Kind = iota
	KindTransition
	KindDefault
	KindWildcard
	KindIgnore
	KindIllegal
)

// ValueRange is one `value` or `[lo:hi]` entry of a value-bin's value list.
type ValueRange struct {
	Lo, Hi binder.Expr // Hi == Lo for a single-value entry
}

// TransitionSet is one `a => b => c` entry of a transition-bin's
// transition list: an ordered sequence of value ranges that must be
// observed back-to-back for the bin to hit.
type TransitionSet struct {
	Steps []ValueRange
}

// syntax holds the already-bound expressions and lists a bin was registered
// with; Resolve's thunk copies them into the bin's Body.
type syntax struct {
	iffExpr     binder.Expr
	countExpr   binder.Expr
	values      []ValueRange
	transitions []TransitionSet
	withFilter  binder.Expr
}

// Bin is one coverage bin belonging to a coverpoint or cross. Its body is
// resolved at most once, lazily, via the embedded Cell: a read while the
// cell is already Resolving (i.e. the bin's own resolution, directly or
// transitively, depends on resolving itself) is a cycle and is reported
// through the diagnostic store rather than recursing forever.
type Bin struct {
	Name string
	Kind Kind

	cell *lazy.Cell[Body]
	raw  syntax
}

// Body is a bin's resolved contents: its guard, iteration count, value or
// transition list, and with-filter, all bound and ready for sampling.
type Body struct {
	Iff         binder.Expr // nil if the bin has no iff guard
	Count       binder.Expr // nil if the bin has no repeat count
	Values      []ValueRange
	Transitions []TransitionSet
	WithFilter  binder.Expr // nil if the bin has no with-filter
}

// NewBin constructs an unresolved bin from its iffExpr, countExpr, values,
// transitions and withFilter, which the caller has already bound; Resolve
// copies them into Body and binds nothing itself.
func NewBin(name string, kind Kind, iffExpr, countExpr binder.Expr, values []ValueRange,
	transitions []TransitionSet, withFilter binder.Expr) *Bin {
	return &Bin{
		Name: name,
		Kind: kind,
		cell: lazy.NewCell[Body](),
		raw: syntax{
			iffExpr:     iffExpr,
			countExpr:   countExpr,
			values:      values,
			transitions: transitions,
			withFilter:  withFilter,
		},
	}
}

// State returns the bin's current resolution lifecycle state.
func (b *Bin) State() lazy.State { return b.cell.State() }

// IsResolved reports whether this bin has already completed resolution.
func (b *Bin) IsResolved() bool { return b.cell.IsResolved() }

// Resolve builds the bin's Body exactly once and caches it: the first call
// copies the iff-expression, count expression, value list, transition list
// and with-filter given to NewBin, without binding them. A re-entrant call
// made while that resolution is in progress is diagnosed as a cycle at loc
// rather than recursing.
func (b *Bin) Resolve(store *diag.Store, loc diag.Location) Body {
	body, ok := b.cell.Resolve(func() Body {
		return Body{
			Iff:         b.raw.iffExpr,
			Count:       b.raw.countExpr,
			Values:      b.raw.values,
			Transitions: b.raw.transitions,
			WithFilter:  b.raw.withFilter,
		}
	})
	if !ok {
		store.Add(diag.ErrCyclicResolution, loc).AddArg(b.Name)
		return Body{}
	}
	return body
}
