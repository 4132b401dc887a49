// Package consteval implements the constant evaluator: a tree-walking
// interpreter over bound expressions, budgeted by
// maxConstexprDepth/maxConstexprSteps and reporting a backtrace bounded by
// maxConstexprBacktrace on failure.
package consteval

import (
	"fmt"
	"math/big"

	"github.com/svlang/elaborate/pkg/elaborate/binder"
	"github.com/svlang/elaborate/pkg/elaborate/diag"
	"github.com/svlang/elaborate/pkg/elaborate/types"
)

// Value is a constant value produced by evaluation: an integral (arbitrary
// width, via math/big so widths beyond 64 bits evaluate exactly), a real, a
// string, or the active-member marker for a tagged union.
type Value struct {
	Type    types.Type
	Int     *big.Int // valid when Type.Canonical().Kind() == KindIntegral or KindEnum
	Real    float64  // valid when Type.Canonical().Kind() is KindReal/KindShortReal
	Str     string   // valid when Type.Canonical().Kind() == KindString
	Member  string   // active tagged-union member, valid when Type.Canonical().Kind() == KindUnion
	Unknown bool     // true if any bit of Int is 'x' or 'z' (four-state unknown)
}

// IntValue constructs an integral constant value.
func IntValue(t types.Type, v int64) Value { return Value{Type: t, Int: big.NewInt(v)} }

// Frame is one activation record on the evaluator's call stack: the
// function/task being evaluated (nil at the top-level frame) plus its local
// variable bindings, mirroring a real call stack closely enough that a
// backtrace can be rendered from it directly.
type Frame struct {
	Name    string
	Locals  map[string]Value
	AtDepth int
}

// Flags capture the evaluation mode: whether hierarchical names may be read
// (script/specparam contexts), whether $sampled/covergroup sampling
// expressions are legal here, and whether specparams specifically are
// permitted as operands.
type Flags uint8

// Recognised evaluation flags.
const (
	IsScript Flags = 1 << iota
	CovergroupExpr
	SpecparamsAllowed
	AllowUnboundedLiteral
)

// Has reports whether flag f is set.
func (fl Flags) Has(f Flags) bool { return fl&f != 0 }

// Evaluator walks bound expression trees to a constant Value, enforcing the
// step/depth budgets and producing a bounded backtrace on failure via the
// `maxConstexprDepth`/`maxConstexprSteps`/`maxConstexprBacktrace`
// configuration options.
type Evaluator struct {
	Diagnostics    *diag.Store
	MaxDepth       int
	MaxSteps       int
	MaxBacktrace   int
	AllowHierConst bool

	steps int
	stack []Frame
}

// New constructs an Evaluator against the given diagnostic store and
// budgets.
func New(store *diag.Store, maxDepth, maxSteps, maxBacktrace int, allowHierConst bool) *Evaluator {
	return &Evaluator{Diagnostics: store, MaxDepth: maxDepth, MaxSteps: maxSteps,
		MaxBacktrace: maxBacktrace, AllowHierConst: allowHierConst}
}

// EvalError is returned when evaluation fails part-way through, carrying a
// call-stack backtrace bounded to maxConstexprBacktrace frames.
type EvalError struct {
	Message   string
	Backtrace []Frame
}

func (e *EvalError) Error() string { return e.Message }

func (ev *Evaluator) backtrace() []Frame {
	n := len(ev.stack)
	if ev.MaxBacktrace > 0 && n > ev.MaxBacktrace {
		n = ev.MaxBacktrace
	}
	out := make([]Frame, n)
	copy(out, ev.stack[len(ev.stack)-n:])
	return out
}

func (ev *Evaluator) fail(format string, args ...any) (Value, error) {
	return Value{}, &EvalError{Message: fmt.Sprintf(format, args...), Backtrace: ev.backtrace()}
}

// Eval evaluates a bound expression to a constant Value, at the given
// evaluation flags. It is the entry point used by parameter/localparam
// default evaluation, generate-if/case/for guard evaluation, and constant
// function bodies alike.
func (ev *Evaluator) Eval(expr binder.Expr, flags Flags) (Value, error) {
	ev.steps++
	if ev.MaxSteps > 0 && ev.steps > ev.MaxSteps {
		return ev.fail("constant evaluation exceeded step budget (%d)", ev.MaxSteps)
	}
	if ev.MaxDepth > 0 && len(ev.stack) > ev.MaxDepth {
		return ev.fail("constant evaluation exceeded depth budget (%d)", ev.MaxDepth)
	}
	//
	if expr == nil || expr.Bad() {
		return Value{}, &EvalError{Message: "cannot evaluate an invalid expression"}
	}
	//
	switch e := expr.(type) {
	case *binder.Constant:
		return ev.evalConstant(e)
	case *binder.NamedValue:
		return ev.evalNamedValue(e, flags)
	case *binder.HierarchicalValue:
		if !flags.Has(IsScript) && !ev.AllowHierConst {
			ev.Diagnostics.Add(diag.ErrConstEvalHierarchicalName, diag.Location{}).AddArg(e.Path)
			return ev.fail("hierarchical name %v is not a constant in this context", e.Path)
		}
		return ev.evalHierarchicalValue(e, flags)
	case *binder.UnaryOp:
		return ev.evalUnary(e, flags)
	case *binder.BinaryOp:
		return ev.evalBinary(e, flags)
	case *binder.Conditional:
		return ev.evalConditional(e, flags)
	case *binder.Concat:
		return ev.evalConcat(e, flags)
	case *binder.Conversion:
		return ev.evalConversion(e, flags)
	case *binder.Call:
		return ev.evalCall(e, flags)
	default:
		return ev.fail("expression kind %v is not constant-evaluable", expr.Kind())
	}
}

func (ev *Evaluator) evalConstant(c *binder.Constant) (Value, error) {
	switch v := c.Value.(type) {
	case int64:
		return Value{Type: c.Type(), Int: big.NewInt(v)}, nil
	case *big.Int:
		return Value{Type: c.Type(), Int: new(big.Int).Set(v)}, nil
	case float64:
		return Value{Type: c.Type(), Real: v}, nil
	case string:
		return Value{Type: c.Type(), Str: v}, nil
	default:
		return ev.fail("unsupported literal value %#v", c.Value)
	}
}

func (ev *Evaluator) evalNamedValue(n *binder.NamedValue, flags Flags) (Value, error) {
	if len(ev.stack) > 0 {
		top := &ev.stack[len(ev.stack)-1]
		if v, ok := top.Locals[n.Name]; ok {
			return v, nil
		}
	}
	// Non-local named values (parameters, localparams, enum members) resolve
	// through their binding's already-finalised constant, attached by the
	// elaboration driver at the time the ValueBinding itself was finalised;
	// consteval's job here is purely to surface that value, not compute it.
	if pb, ok := n.Binding.(interface{ ConstantValue() (Value, bool) }); ok {
		if v, ok := pb.ConstantValue(); ok {
			return v, nil
		}
	}
	return ev.fail("%s does not have a known constant value", n.Name)
}

func (ev *Evaluator) evalHierarchicalValue(h *binder.HierarchicalValue, flags Flags) (Value, error) {
	if pb, ok := h.Binding.(interface{ ConstantValue() (Value, bool) }); ok {
		if v, ok := pb.ConstantValue(); ok {
			return v, nil
		}
	}
	return ev.fail("hierarchical reference does not have a known constant value")
}

func (ev *Evaluator) evalUnary(u *binder.UnaryOp, flags Flags) (Value, error) {
	v, err := ev.Eval(u.Child, flags)
	if err != nil {
		return Value{}, err
	}
	if v.Int == nil {
		return ev.fail("unary %q requires an integral operand", u.Op)
	}
	//
	result := new(big.Int)
	switch u.Op {
	case "-":
		result.Neg(v.Int)
	case "~":
		result.Not(v.Int)
	case "!":
		if v.Int.Sign() == 0 {
			result.SetInt64(1)
		}
	case "&":
		result.SetInt64(int64(reduceAnd(v.Int, u.Type().Width())))
	case "|":
		result.SetInt64(int64(reduceOr(v.Int)))
	case "^":
		result.SetInt64(int64(reduceXor(v.Int, u.Type().Width())))
	default:
		return ev.fail("unsupported unary operator %q", u.Op)
	}
	//
	return Value{Type: u.Type(), Int: mask(result, u.Type().Width())}, nil
}

func reduceAnd(v *big.Int, width uint) int {
	for i := uint(0); i < width; i++ {
		if v.Bit(int(i)) == 0 {
			return 0
		}
	}
	return 1
}

func reduceOr(v *big.Int) int {
	if v.Sign() == 0 {
		return 0
	}
	return 1
}

func reduceXor(v *big.Int, width uint) int {
	parity := 0
	for i := uint(0); i < width; i++ {
		parity ^= int(v.Bit(int(i)))
	}
	return parity
}

func mask(v *big.Int, width uint) *big.Int {
	if width == 0 {
		return v
	}
	m := new(big.Int).Lsh(big.NewInt(1), width)
	m.Sub(m, big.NewInt(1))
	return v.And(v, m)
}

func (ev *Evaluator) evalBinary(b *binder.BinaryOp, flags Flags) (Value, error) {
	l, err := ev.Eval(b.Left, flags)
	if err != nil {
		return Value{}, err
	}
	r, err := ev.Eval(b.Right, flags)
	if err != nil {
		return Value{}, err
	}
	if l.Int == nil || r.Int == nil {
		return ev.fail("binary %q requires integral operands", b.Op)
	}
	//
	result := new(big.Int)
	switch b.Op {
	case "+":
		result.Add(l.Int, r.Int)
	case "-":
		result.Sub(l.Int, r.Int)
	case "*":
		result.Mul(l.Int, r.Int)
	case "/":
		if r.Int.Sign() == 0 {
			return ev.fail("division by zero in constant expression")
		}
		result.Quo(l.Int, r.Int)
	case "%":
		if r.Int.Sign() == 0 {
			return ev.fail("modulo by zero in constant expression")
		}
		result.Rem(l.Int, r.Int)
	case "&":
		result.And(l.Int, r.Int)
	case "|":
		result.Or(l.Int, r.Int)
	case "^":
		result.Xor(l.Int, r.Int)
	case "<<":
		result.Lsh(l.Int, uint(r.Int.Int64()))
	case ">>":
		result.Rsh(l.Int, uint(r.Int.Int64()))
	case "==":
		return boolValue(l.Int.Cmp(r.Int) == 0), nil
	case "!=":
		return boolValue(l.Int.Cmp(r.Int) != 0), nil
	case "<":
		return boolValue(l.Int.Cmp(r.Int) < 0), nil
	case "<=":
		return boolValue(l.Int.Cmp(r.Int) <= 0), nil
	case ">":
		return boolValue(l.Int.Cmp(r.Int) > 0), nil
	case ">=":
		return boolValue(l.Int.Cmp(r.Int) >= 0), nil
	case "&&":
		return boolValue(l.Int.Sign() != 0 && r.Int.Sign() != 0), nil
	case "||":
		return boolValue(l.Int.Sign() != 0 || r.Int.Sign() != 0), nil
	case "**":
		result.Exp(l.Int, r.Int, nil)
	default:
		return ev.fail("unsupported binary operator %q", b.Op)
	}
	//
	return Value{Type: b.Type(), Int: mask(result, b.Type().Width())}, nil
}

func boolValue(b bool) Value {
	v := int64(0)
	if b {
		v = 1
	}
	return Value{Type: types.LogicType, Int: big.NewInt(v)}
}

func (ev *Evaluator) evalConditional(c *binder.Conditional, flags Flags) (Value, error) {
	if c.Guard == nil {
		// min:typ:max: the selected branch was fixed at bind time by the
		// configured minTypMax setting.
		return ev.Eval(c.Selected, flags)
	}
	guard, err := ev.Eval(c.Guard, flags)
	if err != nil {
		return Value{}, err
	}
	if guard.Int == nil {
		return ev.fail("conditional guard must be integral")
	}
	if guard.Int.Sign() != 0 {
		return ev.Eval(c.Min, flags) // Min aliases the "then" branch for a plain ternary
	}
	return ev.Eval(c.Max, flags) // Max aliases the "else" branch for a plain ternary
}

func (ev *Evaluator) evalConcat(c *binder.Concat, flags Flags) (Value, error) {
	result := new(big.Int)
	var width uint
	for _, child := range c.Children {
		v, err := ev.Eval(child, flags)
		if err != nil {
			return Value{}, err
		}
		if v.Int == nil {
			return ev.fail("concatenation operand must be integral")
		}
		cw := child.Type().Width()
		result.Lsh(result, cw)
		result.Or(result, v.Int)
		width += cw
	}
	return Value{Type: c.Type(), Int: mask(result, width)}, nil
}

func (ev *Evaluator) evalConversion(c *binder.Conversion, flags Flags) (Value, error) {
	v, err := ev.Eval(c.Operand, flags)
	if err != nil {
		return Value{}, err
	}
	if v.Int != nil {
		return Value{Type: c.Type(), Int: mask(new(big.Int).Set(v.Int), c.Type().Width())}, nil
	}
	return Value{Type: c.Type(), Real: v.Real, Str: v.Str}, nil
}

// evalCall evaluates a call to a constant function: recursion depth is
// charged against MaxDepth via the frame stack, and the function's own
// locals live in a fresh Frame.
func (ev *Evaluator) evalCall(c *binder.Call, flags Flags) (Value, error) {
	fn, ok := c.Signature.(interface {
		Body() []Statement
		ParamNames() []string
	})
	if !ok {
		return ev.fail("%s is not a constant function", c.Name)
	}
	//
	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		v, err := ev.Eval(a, flags)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	//
	locals := make(map[string]Value, len(args))
	names := fn.ParamNames()
	for i, v := range args {
		if i < len(names) {
			locals[names[i]] = v
		}
	}
	//
	ev.stack = append(ev.stack, Frame{Name: c.Name, Locals: locals, AtDepth: len(ev.stack)})
	defer func() { ev.stack = ev.stack[:len(ev.stack)-1] }()
	//
	if ev.MaxDepth > 0 && len(ev.stack) > ev.MaxDepth {
		return ev.fail("constant function call depth exceeded (%d)", ev.MaxDepth)
	}
	//
	return ev.runBody(fn.Body(), flags)
}

// Statement is the minimal shape of a constant-function statement this
// evaluator can execute: assignment, if/else, for/while loop, or return.
// The real statement syntax is attached opaquely elsewhere; this interface
// is the boundary consteval needs, mirroring the way binder.Expr keeps the
// evaluator decoupled from concrete syntax representations.
type Statement interface {
	Exec(ev *Evaluator, flags Flags) (returned bool, value Value, err error)
}

func (ev *Evaluator) runBody(body []Statement, flags Flags) (Value, error) {
	for _, stmt := range body {
		returned, value, err := stmt.Exec(ev, flags)
		if err != nil {
			return Value{}, err
		}
		if returned {
			return value, nil
		}
	}
	return Value{}, &EvalError{Message: "constant function fell off the end without a return", Backtrace: ev.backtrace()}
}

// SetLocal assigns a value to a name in the current top-of-stack frame,
// used by Statement.Exec implementations for assignment/loop-variable
// updates.
func (ev *Evaluator) SetLocal(name string, v Value) {
	if len(ev.stack) == 0 {
		return
	}
	ev.stack[len(ev.stack)-1].Locals[name] = v
}

// Local reads a name from the current top-of-stack frame.
func (ev *Evaluator) Local(name string) (Value, bool) {
	if len(ev.stack) == 0 {
		return Value{}, false
	}
	v, ok := ev.stack[len(ev.stack)-1].Locals[name]
	return v, ok
}
