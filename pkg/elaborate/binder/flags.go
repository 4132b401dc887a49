// Package binder implements the expression binder: construction of typed
// expression trees from syntax via a three-phase create/check/finalize
// pattern, using a contextual flag bag to thread per-call-site legality
// rules through every level of the tree.
package binder

// Flags is the contextual binding flag bag threaded through every bind
// call.
type Flags uint32

// Recognised contextual binding flags.
const (
	NonProcedural Flags = 1 << iota
	StaticInitializer
	LValue
	AssertionExpr
	EventExpression
	AllowClockingBlock
	AllowCoverpoint
	AllowUnboundedLiteral
	AllowTypeReferences
	AllowDataType
	RecursivePropertyArg
	PropertyTimeAdvance
	PropertyNegation
	AssertionDelayOrRepetition
	UnevaluatedBranch
)

// Has reports whether flag f is set.
func (fl Flags) Has(f Flags) bool { return fl&f != 0 }

// With returns this flag set with f additionally set.
func (fl Flags) With(f Flags) Flags { return fl | f }

// Without returns this flag set with f cleared.
func (fl Flags) Without(f Flags) Flags { return fl &^ f }
