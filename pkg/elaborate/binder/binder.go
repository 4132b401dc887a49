package binder

import (
	"strings"

	"github.com/svlang/elaborate/pkg/elaborate/diag"
	"github.com/svlang/elaborate/pkg/elaborate/lookup"
	"github.com/svlang/elaborate/pkg/elaborate/symbols"
	"github.com/svlang/elaborate/pkg/elaborate/syntax"
	"github.com/svlang/elaborate/pkg/elaborate/types"
	"github.com/svlang/elaborate/pkg/util"
	"github.com/svlang/elaborate/pkg/util/file"
)

// MinTypMax selects which branch of a `a:b:c` expression is live, matching
// the `minTypMax` configuration option.
type MinTypMax uint8

// Recognised minTypMax settings.
const (
	SelectMin MinTypMax = iota
	SelectTyp
	SelectMax
)

// Binder binds syntax into typed Expr trees via a three-phase
// create/check/finalize pipeline.
type Binder struct {
	Diagnostics *diag.Store
	Budget      *lookup.Budget
	MinTypMax   MinTypMax
}

// New constructs a Binder over the given diagnostic store and typo-budget.
func New(store *diag.Store, budget *lookup.Budget, minTypMax MinTypMax) *Binder {
	return &Binder{store, budget, minTypMax}
}

// BindName performs the create/check/finalize sequence for a simple-name
// value expression: (a) create an unresolved reference, (b) check it
// resolves and is visible at this location, substituting Invalid and
// emitting ErrUnknownIdentifier on failure, (c) finalize with the
// resolved binding's type.
func (b *Binder) BindName(name string, loc lookup.Location, scope symbols.Scope, at diag.Location,
	flags Flags) Expr {
	res := lookup.Resolve(name, loc, util.None[uint](), toLookupFlags(flags), b.Budget)
	if !res.Found {
		if !flags.Has(UnevaluatedBranch) {
			d := b.Diagnostics.Add(diag.ErrUnknownIdentifier, at).AddArg(name)
			if res.Suggestion != "" {
				d.AddArg(res.Suggestion)
			}
		}
		return NewInvalid()
	}
	//
	vb, ok := res.Binding.(*symbols.ValueBinding)
	if !ok {
		// Non-value bindings (definitions, packages, subroutines) are
		// bound by their own dedicated call sites; reaching here means the
		// syntax used a value position for a non-value name.
		if !flags.Has(UnevaluatedBranch) {
			b.Diagnostics.Add(diag.ErrTypeMismatch, at).AddArg(name)
		}
		return NewInvalid()
	}
	//
	if !scope.IsVisible(bindingSymbol(vb)) {
		if !flags.Has(UnevaluatedBranch) {
			b.Diagnostics.Add(diag.ErrRecursiveDefinition, at).AddArg(name)
		}
		return NewInvalid()
	}
	//
	if flags.Has(LValue) && vb.Const {
		// Assigning to a const is illegal whether or not this branch is
		// actually taken at runtime — min:typ:max doesn't excuse it.
		b.Diagnostics.Add(diag.ErrAssignmentToConstVar, at).AddArg(name)
		return NewInvalid()
	}
	//
	return NewNamedValue(name, vb, vb.DataType)
}

// symbolAdapter gives a *ValueBinding's own path the minimal Symbol shape
// IsVisible needs, since ValueBinding itself doesn't implement
// symbols.Symbol (it is the Binding, not the reference site).
type symbolAdapter struct {
	path file.Path
}

func (s symbolAdapter) Path() *file.Path         { return &s.path }
func (s symbolAdapter) Arity() util.Option[uint] { return util.None[uint]() }

// bindingSymbol constructs the Symbol view of a resolved ValueBinding's own
// path, used purely to ask the scope whether that path is currently open.
func bindingSymbol(vb *symbols.ValueBinding) symbols.Symbol {
	return symbolAdapter{vb.Path}
}

// BindBinaryOp performs create/check/finalize for a binary operator,
// computing the result type via SV's integral-widening least-upper-bound
// lattice.
func (b *Binder) BindBinaryOp(op string, left, right Expr, at diag.Location) Expr {
	if left.Bad() || right.Bad() {
		return NewInvalid()
	}
	//
	resultType := resultTypeOf(op, left.Type(), right.Type())
	if resultType == types.ErrorType {
		b.Diagnostics.Add(diag.ErrTypeMismatch, at).AddArg(op)
		return NewInvalid()
	}
	//
	return NewBinaryOp(op, left, right, resultType)
}

func resultTypeOf(op string, l, r types.Type) types.Type {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return types.LogicType
	default:
		return types.LeastUpperBound(l, r)
	}
}

// BindConditional performs create/check/finalize for `cond ? a : b`,
// binding both branches unconditionally (UnevaluatedBranch is for
// min:typ:max, not the ternary operator, which always evaluates exactly
// one branch at runtime but must type-check both at bind time).
func (b *Binder) BindConditional(guard, thenExpr, elseExpr Expr, at diag.Location) Expr {
	if guard.Bad() {
		return NewInvalid()
	}
	//
	resultType := types.LeastUpperBound(thenExpr.Type(), elseExpr.Type())
	selectThen := true // runtime selection; bind-time always prefers `then` as the static type driver
	//
	return NewTernary(guard, thenExpr, elseExpr, resultType, selectThen)
}

// BindMinTypMax performs create/check/finalize for `min:typ:max` over three
// already-bound branches, and the branch selected by b.MinTypMax
// participates in type propagation. The two unselected branches were bound
// with UnevaluatedBranch set (by BindExpression, which knows the selection
// up front since b.MinTypMax is static) so their own non-const diagnostics
// were already suppressed at bind time; this method itself never emits a
// diagnostic.
func (b *Binder) BindMinTypMax(min, typ, max Expr, at diag.Location) Expr {
	var selected Expr
	switch b.MinTypMax {
	case SelectMin:
		selected = min
	case SelectTyp:
		selected = typ
	default:
		selected = max
	}
	//
	return NewConditional(nil, min, typ, max, selected, selected.Type())
}

// BindTaggedUnion performs create/check/finalize for a tagged-union
// construction, requiring the initializer be present unless the member's
// type is void.
func (b *Binder) BindTaggedUnion(unionType *types.Aggregate, member string, init Expr, at diag.Location) Expr {
	var fieldType types.Type = types.ErrorType
	found := false
	for _, f := range unionType.Fields {
		if f.Name == member {
			fieldType, found = f.Type, true
			break
		}
	}
	if !found {
		b.Diagnostics.Add(diag.ErrTypeMismatch, at).AddArg(member)
		return NewInvalid()
	}
	//
	if init == nil && fieldType != types.VoidType {
		b.Diagnostics.Add(diag.ErrTypeMismatch, at).AddArg("missing initializer for non-void tagged union member")
		return NewInvalid()
	}
	//
	if init != nil && !fieldType.AssignableFrom(init.Type()) {
		b.Diagnostics.Add(diag.ErrTypeMismatch, at).AddArg(member)
		return NewInvalid()
	}
	//
	return NewTaggedUnion(member, init, unionType)
}

func toLookupFlags(f Flags) lookup.Flag {
	var out lookup.Flag
	if f.Has(AllowTypeReferences) {
		out |= lookup.TypeReference
	}
	return out
}

// BindUnaryOp performs create/check/finalize for a unary operator. Reduction
// and logical-negation operators always yield a 1-bit logic result; every
// other unary operator (arithmetic negation, bitwise complement, pre/post
// increment) preserves the operand's type.
func (b *Binder) BindUnaryOp(op string, child Expr, at diag.Location) Expr {
	if child.Bad() {
		return NewInvalid()
	}
	//
	resultType := child.Type()
	switch op {
	case "!", "&", "~&", "|", "~|", "^", "~^", "^~":
		resultType = types.LogicType
	}
	//
	return NewUnaryOp(op, child, resultType)
}

// BindConcat performs create/check/finalize for a `{a, b, c}`
// concatenation: the result is an unsigned packed integral whose width is
// the sum of its operands' widths.
func (b *Binder) BindConcat(children []Expr, at diag.Location) Expr {
	bad := false
	total := uint(0)
	//
	for _, c := range children {
		if c.Bad() {
			bad = true
			continue
		}
		total += c.Type().Width()
	}
	if bad {
		return NewInvalid()
	}
	//
	return NewConcat(children, types.NewIntegralType(total, false, false, false))
}

// BindConversion performs create/check/finalize for an implicit or explicit
// type conversion. An implicit conversion that target cannot assign from is
// ErrTypeMismatch; an explicit cast that target cannot even cast from is
// ErrInvalidCast.
func (b *Binder) BindConversion(operand Expr, target types.Type, explicit bool, at diag.Location) Expr {
	if operand.Bad() {
		return NewInvalid()
	}
	//
	if explicit {
		if !target.CastableFrom(operand.Type()) {
			b.Diagnostics.Add(diag.ErrInvalidCast, at).AddArg(target.String())
			return NewInvalid()
		}
	} else if !target.AssignableFrom(operand.Type()) {
		b.Diagnostics.Add(diag.ErrTypeMismatch, at).AddArg(target.String())
		return NewInvalid()
	}
	//
	return NewConversion(operand, target, explicit)
}

// BindCall performs create/check/finalize for a function/task/system-
// subroutine call: argument count must either match sig's arity exactly or
// fall within the defaultable tail, and each provided argument's type must
// be assignable to the matching parameter.
func (b *Binder) BindCall(name string, args []Expr, sig *symbols.Signature, at diag.Location) Expr {
	if sig == nil {
		b.Diagnostics.Add(diag.ErrUnknownIdentifier, at).AddArg(name)
		return NewInvalid()
	}
	//
	if uint(len(args)) > sig.Arity() || (uint(len(args)) < sig.Arity() && !hasDefaults(sig, uint(len(args)))) {
		b.Diagnostics.Add(diag.ErrTypeMismatch, at).AddArg(name)
		return NewInvalid()
	}
	//
	bad := false
	for i, a := range args {
		if a.Bad() {
			bad = true
			continue
		}
		if param := sig.Parameter(uint(i)); !param.Type.AssignableFrom(a.Type()) {
			b.Diagnostics.Add(diag.ErrTypeMismatch, at).AddArg(name)
			bad = true
		}
	}
	if bad {
		return NewInvalid()
	}
	//
	return NewCall(name, args, sig, sig.Return())
}

// hasDefaults reports whether every parameter of sig past the provided
// count carries a default value, allowing a shorter argument list.
func hasDefaults(sig *symbols.Signature, provided uint) bool {
	for i := provided; i < sig.Arity(); i++ {
		if sig.Parameter(i).Default == nil {
			return false
		}
	}
	return true
}

// BindHierarchicalValue performs create/check/finalize for a dotted
// hierarchical reference, walking the instance tree from root rather than
// resolving against a lexical scope.
func (b *Binder) BindHierarchicalValue(path []string, root *symbols.DesignScope, at diag.Location) Expr {
	res := lookup.ResolveHierarchical(file.NewAbsolutePath(path...), root)
	if !res.Found {
		b.Diagnostics.Add(diag.ErrUnknownIdentifier, at).AddArg(strings.Join(path, "."))
		return NewInvalid()
	}
	//
	vb, ok := res.Binding.(*symbols.ValueBinding)
	if !ok {
		b.Diagnostics.Add(diag.ErrTypeMismatch, at).AddArg(strings.Join(path, "."))
		return NewInvalid()
	}
	//
	return NewHierarchicalValue(path, vb, vb.DataType)
}

// BindAssertionInstance performs create/check/finalize for a sequence/
// property/let-declaration instantiation, mapping formals to actuals. A
// property that is already being expanded (inProgress[name] is true, as
// tracked by the caller across one expansion chain) returns the recursive
// placeholder marker instead of rebinding its body, breaking the recursion.
func (b *Binder) BindAssertionInstance(name string, formals []string, actuals map[string]Expr,
	inProgress map[string]bool, at diag.Location) Expr {
	if inProgress[name] {
		return NewAssertionInstance(name, nil, true)
	}
	//
	mapped := make(map[string]any, len(formals))
	bad := false
	for _, f := range formals {
		a, ok := actuals[f]
		if !ok {
			b.Diagnostics.Add(diag.ErrTypeMismatch, at).AddArg(f)
			bad = true
			continue
		}
		mapped[f] = a
	}
	if bad {
		return NewInvalid()
	}
	//
	return NewAssertionInstance(name, mapped, false)
}

// BindDist performs create/check/finalize for a `expr dist { ranges }`
// expression; every range bound and weight must itself bind cleanly.
func (b *Binder) BindDist(left Expr, ranges []DistRange, at diag.Location) Expr {
	if left.Bad() {
		return NewInvalid()
	}
	//
	for _, r := range ranges {
		if r.Lo.Bad() || r.Hi.Bad() || r.Weight.Bad() {
			b.Diagnostics.Add(diag.ErrTypeMismatch, at).AddArg("dist")
			return NewInvalid()
		}
	}
	//
	return NewDist(left, ranges)
}

// rootOf walks up to the outermost enclosing scope, the root a
// hierarchical reference resolves against.
func rootOf(scope *symbols.DesignScope) *symbols.DesignScope {
	for scope.Parent() != nil {
		scope = scope.Parent()
	}
	return scope
}

// BindExpression binds a syntax.Node into an Expr tree, recursing into
// children before constructing each node — the entry point the core uses
// to turn a parsed expression into a bound one, rather than calling the
// individual Bind* methods by hand from outside this package.
func (b *Binder) BindExpression(node syntax.Node, loc lookup.Location, scope *symbols.DesignScope,
	at diag.Location, flags Flags) Expr {
	switch node.Kind() {
	case syntax.KindIdentifierExpr:
		return b.BindName(node.Text(), loc, scope, at, flags)
	case syntax.KindHierarchicalNameExpr:
		children := node.Children()
		path := make([]string, len(children))
		for i, c := range children {
			path[i] = c.Text()
		}
		return b.BindHierarchicalValue(path, rootOf(scope), at)
	case syntax.KindUnaryExpr:
		children := node.Children()
		if len(children) < 2 {
			return NewInvalid()
		}
		child := b.BindExpression(children[1], loc, scope, at, flags)
		return b.BindUnaryOp(children[0].Text(), child, at)
	case syntax.KindBinaryExpr:
		children := node.Children()
		if len(children) < 3 {
			return NewInvalid()
		}
		left := b.BindExpression(children[0], loc, scope, at, flags)
		right := b.BindExpression(children[2], loc, scope, at, flags)
		return b.BindBinaryOp(children[1].Text(), left, right, at)
	case syntax.KindConditionalExpr:
		children := node.Children()
		if len(children) < 3 {
			return NewInvalid()
		}
		guard := b.BindExpression(children[0], loc, scope, at, flags)
		thenExpr := b.BindExpression(children[1], loc, scope, at, flags)
		elseExpr := b.BindExpression(children[2], loc, scope, at, flags)
		return b.BindConditional(guard, thenExpr, elseExpr, at)
	case syntax.KindMinTypMaxExpr:
		children := node.Children()
		if len(children) < 3 {
			return NewInvalid()
		}
		// The selected branch is knowable up front: b.MinTypMax is a static
		// per-Binder setting, not data-dependent, so the other two branches
		// can be bound with UnevaluatedBranch set before BindMinTypMax ever
		// sees them.
		unselected := flags.With(UnevaluatedBranch)
		minFlags, typFlags, maxFlags := unselected, unselected, unselected
		switch b.MinTypMax {
		case SelectMin:
			minFlags = flags
		case SelectTyp:
			typFlags = flags
		default:
			maxFlags = flags
		}
		minExpr := b.BindExpression(children[0], loc, scope, at, minFlags)
		typExpr := b.BindExpression(children[1], loc, scope, at, typFlags)
		maxExpr := b.BindExpression(children[2], loc, scope, at, maxFlags)
		return b.BindMinTypMax(minExpr, typExpr, maxExpr, at)
	case syntax.KindConcatExpr:
		children := node.Children()
		bound := make([]Expr, len(children))
		for i, c := range children {
			bound[i] = b.BindExpression(c, loc, scope, at, flags)
		}
		return b.BindConcat(bound, at)
	case syntax.KindCallExpr:
		children := node.Children()
		if len(children) == 0 {
			return NewInvalid()
		}
		args := make([]Expr, len(children)-1)
		for i, c := range children[1:] {
			args[i] = b.BindExpression(c, loc, scope, at, flags)
		}
		sig, _ := signatureOf(scope, children[0].Text())
		return b.BindCall(children[0].Text(), args, sig, at)
	default:
		b.Diagnostics.Add(diag.ErrTypeMismatch, at).AddArg(node.Kind())
		return NewInvalid()
	}
}

// signatureOf looks up a callable's signature by simple name in scope,
// returning ok=false if the name doesn't resolve to a subroutine.
func signatureOf(scope *symbols.DesignScope, name string) (*symbols.Signature, bool) {
	b := scope.Binding(name, util.None[uint]())
	sub, ok := b.(symbols.SubroutineBinding)
	if !ok {
		return nil, false
	}
	return sub.Signature(), true
}
