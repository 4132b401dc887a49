package binder

import "github.com/svlang/elaborate/pkg/elaborate/types"

// Kind discriminates the expression tagged variant: named/hierarchical
// value, conversion, assertion instance, dist, tagged union, min:typ:max,
// copy-class, type reference, clocking event, lvalue reference, invalid,
// plus ordinary operators.
type Kind uint8

// Recognised expression kinds.
const (
	KindInvalid Kind = iota
	KindConstant
	KindNamedValue
	KindHierarchicalValue
	KindUnaryOp
	KindBinaryOp
	KindConditional // ternary and min:typ:max share this kind
	KindConcat
	KindReplication
	KindSelect
	KindConversion
	KindCall
	KindAssertionInstance
	KindTaggedUnion
	KindDist
	KindTypeReference
	KindClockingEvent
	KindLValueReference
	KindCopyClass
)

// Expr is the tagged variant every bound expression satisfies. Expressions
// are immutable after binding; rebinding an already-bound expression is a
// no-op.
type Expr interface {
	Kind() Kind
	Type() types.Type
	// Bad reports whether this expression (or any descendant) failed to
	// bind or type-check. Invalid markers propagate: any expression whose
	// child is invalid is itself considered invalid.
	Bad() bool
}

// header is the common fields every concrete Expr embeds.
type header struct {
	kind Kind
	typ  types.Type
	bad  bool
}

func (h header) Kind() Kind        { return h.kind }
func (h header) Type() types.Type  { return h.typ }
func (h header) Bad() bool         { return h.bad }

// Invalid is the singleton-shaped marker substituted for any expression
// that fails to bind or type-check, letting the binder continue past the
// failure rather than aborting the whole tree.
type Invalid struct{ header }

// NewInvalid constructs an Invalid expression, always of the error type.
func NewInvalid() *Invalid {
	return &Invalid{header{KindInvalid, types.ErrorType, true}}
}

// Constant is a literal or already-folded constant value appearing directly
// in an expression tree (not to be confused with the ConstantValue runtime
// representation the evaluator produces — this node carries the syntactic
// literal prior to evaluation).
type Constant struct {
	header
	Value any
}

// NewConstant constructs a bound constant-literal expression.
func NewConstant(t types.Type, value any) *Constant {
	return &Constant{header{KindConstant, t, false}, value}
}

// NamedValue is a simple (non-hierarchical) reference to a ValueSymbol,
// distinguished from HierarchicalValue (a dotted reference).
type NamedValue struct {
	header
	Name    string
	Binding any // *symbols.ValueBinding, kept as `any` to avoid an import cycle
}

// NewNamedValue constructs a bound simple-name reference.
func NewNamedValue(name string, binding any, t types.Type) *NamedValue {
	return &NamedValue{header{KindNamedValue, t, t == types.ErrorType}, name, binding}
}

// HierarchicalValue is a dotted reference that walked the instance tree to
// reach its target.
type HierarchicalValue struct {
	header
	Path    []string
	Binding any
}

// NewHierarchicalValue constructs a bound hierarchical reference.
func NewHierarchicalValue(path []string, binding any, t types.Type) *HierarchicalValue {
	return &HierarchicalValue{header{KindHierarchicalValue, t, t == types.ErrorType}, path, binding}
}

// UnaryOp is a unary operator expression (`-`, `!`, `~`, reduction
// operators, `++`/`--`).
type UnaryOp struct {
	header
	Op    string
	Child Expr
}

// NewUnaryOp constructs a bound unary-operator expression, propagating
// Bad from its child.
func NewUnaryOp(op string, child Expr, t types.Type) *UnaryOp {
	return &UnaryOp{header{KindUnaryOp, t, child.Bad()}, op, child}
}

// BinaryOp is a binary operator expression (arithmetic, relational,
// logical, bitwise, shift).
type BinaryOp struct {
	header
	Op          string
	Left, Right Expr
}

// NewBinaryOp constructs a bound binary-operator expression, propagating
// Bad from either child.
func NewBinaryOp(op string, left, right Expr, t types.Type) *BinaryOp {
	return &BinaryOp{header{KindBinaryOp, t, left.Bad() || right.Bad()}, op, left, right}
}

// MinTypMaxBranch selects which branch of `min:typ:max` is evaluated,
// mirroring the `minTypMax` configuration option.
type MinTypMaxBranch uint8

// Recognised min:typ:max selections.
const (
	BranchMin MinTypMaxBranch = iota
	BranchTyp
	BranchMax
)

// Conditional covers both `cond ? a : b` and `min:typ:max`: the selected
// branch participates in type propagation while unselected branches are
// bound but not evaluated (UnevaluatedBranch).
type Conditional struct {
	header
	Guard            Expr // nil for a bare min:typ:max (no governing condition)
	Min, Typ, Max    Expr
	Selected         Expr
}

// NewConditional constructs a bound ternary/min:typ:max expression. For an
// ordinary `cond ? a : b`, pass the same Expr for both Typ and Max slots is
// not required — callers of a plain ternary should use NewTernary instead.
func NewConditional(guard, min, typ, max, selected Expr, t types.Type) *Conditional {
	bad := selected.Bad()
	return &Conditional{header{KindConditional, t, bad}, guard, min, typ, max, selected}
}

// NewTernary constructs the common two-branch `cond ? a : b` case as a
// Conditional with Min and Typ set to thenExpr, Max set to elseExpr, and
// Selected set to whichever branch selectThen picks.
func NewTernary(guard, thenExpr, elseExpr Expr, t types.Type, selectThen bool) *Conditional {
	selected := elseExpr
	if selectThen {
		selected = thenExpr
	}
	bad := guard.Bad() || thenExpr.Bad() || elseExpr.Bad()
	return &Conditional{header{KindConditional, t, bad}, guard, thenExpr, thenExpr, elseExpr, selected}
}

// Concat is a `{a, b, c}` concatenation expression.
type Concat struct {
	header
	Children []Expr
}

// NewConcat constructs a bound concatenation expression.
func NewConcat(children []Expr, t types.Type) *Concat {
	bad := false
	for _, c := range children {
		bad = bad || c.Bad()
	}
	return &Concat{header{KindConcat, t, bad}, children}
}

// Conversion is an implicit or explicit type conversion inserted around an
// operand as an explicit node, so driver/consteval logic can see exactly
// where a conversion occurs.
type Conversion struct {
	header
	Operand  Expr
	Explicit bool
}

// NewConversion constructs a bound conversion expression.
func NewConversion(operand Expr, target types.Type, explicit bool) *Conversion {
	return &Conversion{header{KindConversion, target, operand.Bad()}, operand, explicit}
}

// Call is a function/task/system-subroutine invocation.
type Call struct {
	header
	Name      string
	Args      []Expr
	Signature any // *symbols.Signature
}

// NewCall constructs a bound call expression.
func NewCall(name string, args []Expr, sig any, t types.Type) *Call {
	bad := false
	for _, a := range args {
		bad = bad || a.Bad()
	}
	return &Call{header{KindCall, t, bad}, name, args, sig}
}

// AssertionInstance unifies sequences, properties, and let-declarations:
// formal-to-actual argument mapping, with recursion permitted only for
// properties.
type AssertionInstance struct {
	header
	Name               string
	Actuals            map[string]any // name -> actual Expr as bound by the caller; not rebound per reference
	IsRecursiveProperty bool
}

// NewAssertionInstance constructs a bound assertion-instance expression. A
// recursive property occurrence should pass isRecursiveProperty=true and an
// empty Actuals map, yielding a placeholder marker that does not re-expand
// the body.
func NewAssertionInstance(name string, actuals map[string]any, isRecursiveProperty bool) *AssertionInstance {
	return &AssertionInstance{header{KindAssertionInstance, types.VoidType, false}, name, actuals, isRecursiveProperty}
}

// TaggedUnion is a `tagged` union construction expression, requiring an
// assignment target to know which member's type applies.
type TaggedUnion struct {
	header
	Member      string
	Initializer Expr // nil iff the member's type is void
}

// NewTaggedUnion constructs a bound tagged-union expression. An absent
// initializer is only legal when the member type is void; callers must
// check that invariant before calling this constructor and substitute
// NewInvalid() with a diagnostic otherwise.
func NewTaggedUnion(member string, init Expr, t types.Type) *TaggedUnion {
	bad := init != nil && init.Bad()
	return &TaggedUnion{header{KindTaggedUnion, t, bad}, member, init}
}

// DistRange is one `value := weight` or `[lo:hi] :/ weight` entry of a dist
// expression.
type DistRange struct {
	Lo, Hi Expr // Hi == Lo for a single-value entry
	Weight Expr
	PerRange bool // true for `:/` (weight divided across the range)
}

// Dist is a `expr dist { ranges }` expression.
type Dist struct {
	header
	Left   Expr
	Ranges []DistRange
}

// NewDist constructs a bound dist expression.
func NewDist(left Expr, ranges []DistRange) *Dist {
	bad := left.Bad()
	for _, r := range ranges {
		bad = bad || r.Lo.Bad() || r.Hi.Bad() || r.Weight.Bad()
	}
	return &Dist{header{KindDist, types.BitType, bad}, left, ranges}
}
