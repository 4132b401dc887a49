// Package symbols implements the symbol graph and scopes of the elaboration
// engine: named entities, their parent/child links, deferred member lists,
// and wildcard imports. Every concrete binding shares the same
// not-yet-finalised / finalised-once lifecycle, generalized across
// value/type/subroutine/package/definition bindings in a hardware design.
package symbols

import (
	"math"

	"github.com/svlang/elaborate/pkg/elaborate/types"
	"github.com/svlang/elaborate/pkg/util/file"
)

// Binding is the association between a name, as found in syntax, and the
// concrete semantic entity it refers to. A Binding starts life unfinalised
// (its type or value is not yet known) and becomes finalised exactly once.
type Binding interface {
	// IsFinalised reports whether this binding's type/value information has
	// been resolved.
	IsFinalised() bool
	// IsRecursive reports whether this binding may legally be referenced
	// from within its own definition (true only for recursive properties
	// and forward/backward computed values; SV constants and variables
	// are never recursive).
	IsRecursive() bool
}

// SubroutineBinding is the specialisation of Binding for anything callable:
// a user-defined function/task or a built-in system subroutine.
type SubroutineBinding interface {
	Binding
	IsFunction() bool
	IsNative() bool
	Signature() *Signature
}

// Signature describes one overload of a subroutine: SV functions and tasks,
// which may have void return type and ref/output formal arguments.
type Signature struct {
	isFunction bool
	params     []Parameter
	ret        types.Type
}

// Direction of a formal argument.
type Direction uint8

// Recognised argument directions.
const (
	DirIn Direction = iota
	DirOut
	DirInOut
	DirRef
)

// Parameter is one formal argument of a subroutine signature.
type Parameter struct {
	Name      string
	Type      types.Type
	Direction Direction
	// Default is the syntax for this argument's default value, or nil if
	// the argument is required. Defaults are stored as syntax, not a bound
	// Expr; BindCall only checks whether one is present.
	Default any
}

// NewSignature constructs a subroutine signature.
func NewSignature(isFunction bool, params []Parameter, ret types.Type) *Signature {
	return &Signature{isFunction, params, ret}
}

// IsFunction reports whether this signature is a function (true) or task
// (false). Return reports the type given to NewSignature for either kind.
func (s *Signature) IsFunction() bool { return s.isFunction }

// Return returns this signature's return type.
func (s *Signature) Return() types.Type { return s.ret }

// Arity returns the number of formal arguments.
func (s *Signature) Arity() uint { return uint(len(s.params)) }

// Parameter returns the nth formal argument.
func (s *Signature) Parameter(nth uint) Parameter { return s.params[nth] }

// ============================================================================
// ValueBinding — parameters, nets, variables, formal args, fields, genvars
// ============================================================================

// ValueKind discriminates the different declaration forms a ValueBinding
// may arise from; all of them share the same "has a type, may be driven,
// may be finalised" shape.
type ValueKind uint8

// Recognised value kinds.
const (
	ValueParameter ValueKind = iota
	ValueLocalParameter
	ValueSpecparam
	ValueNet
	ValueVariable
	ValueFormalArgument
	ValueField
	ValueEnumMember
	ValueGenvar
	ValueClockVar
	ValueLocalAssertionVar
)

// ValueBinding is a named entity with a (possibly lazily-resolved) type.
// index doubles as the "am I finalised yet?" sentinel: math.MaxUint until
// an allocation index is assigned.
type ValueBinding struct {
	Kind ValueKind
	// Path is the fully-qualified hierarchical path of this value from the
	// compilation root.
	Path file.Path
	// DeclIndex is this value's declaration-order index within its declaring
	// scope; lookup compares it against a lookup location's Index for the
	// "no forward reference within the same scope" rule.
	DeclIndex uint
	DataType  types.Type
	Const     bool
	Static    bool
	Automatic bool
	Direction Direction // meaningful only for ValueFormalArgument / ValueClockVar
	index     uint      // allocation index; math.MaxUint until finalised
}

// NewValueBinding constructs an unfinalised value binding.
func NewValueBinding(kind ValueKind, path file.Path, declIndex uint, datatype types.Type) *ValueBinding {
	return &ValueBinding{kind, path, declIndex, datatype, false, false, false, DirIn, math.MaxUint}
}

// IsFinalised implements Binding.
func (v *ValueBinding) IsFinalised() bool { return v.index != math.MaxUint }

// IsRecursive implements Binding; SV values are never self-referential.
func (v *ValueBinding) IsRecursive() bool { return false }

// Finalise assigns this value its allocation index and (if not already
// known) its resolved type.
func (v *ValueBinding) Finalise(index uint, datatype types.Type) {
	v.index = index
	v.DataType = datatype
}

// Index returns this value's allocation index; only valid once finalised.
func (v *ValueBinding) Index() uint { return v.index }

// ============================================================================
// ParamBinding — module/interface parameters, which additionally carry a
// possibly-overridden default expression (defparam / instance # (...) list)
// ============================================================================

// ParamBinding specializes ValueBinding for `parameter`/`localparam`
// declarations, which need to remember whether their value came from the
// declaration's default or from an override, for defparam fixed-point
// convergence.
type ParamBinding struct {
	ValueBinding
	// Overridden is true once a defparam or instance parameter list has
	// replaced the declared default value.
	Overridden bool
	// Value holds the resolved constant, set once IsFinalised.
	Value any
}

// NewParamBinding constructs an unfinalised parameter binding.
func NewParamBinding(path file.Path, declIndex uint, datatype types.Type, local bool) *ParamBinding {
	kind := ValueParameter
	if local {
		kind = ValueLocalParameter
	}
	return &ParamBinding{*NewValueBinding(kind, path, declIndex, datatype), false, nil}
}

// ============================================================================
// TypeBinding — typedef'd names
// ============================================================================

// TypeBinding associates a name with a (possibly forward-declared) type.
type TypeBinding struct {
	Path      file.Path
	Type      types.Type
	finalised bool
}

// NewTypeBinding constructs an unfinalised type binding, used for forward
// `typedef class C;`-style declarations whose real type follows later.
func NewTypeBinding(path file.Path) *TypeBinding {
	return &TypeBinding{path, nil, false}
}

// IsFinalised implements Binding.
func (t *TypeBinding) IsFinalised() bool { return t.finalised }

// IsRecursive implements Binding; class typedefs may be self-referential
// via handles, which is legal because a handle's width does not depend on
// the pointee's layout.
func (t *TypeBinding) IsRecursive() bool { return true }

// Finalise resolves this type binding to a concrete type.
func (t *TypeBinding) Finalise(resolved types.Type) {
	t.Type = resolved
	t.finalised = true
}

// ============================================================================
// SubroutineDefBinding — user-defined functions and tasks
// ============================================================================

// SubroutineDefBinding is a user-defined function/task binding.
type SubroutineDefBinding struct {
	Path      file.Path
	sig       *Signature
	Body      any // opaque statement-list handle from the (external) syntax
	finalised bool
}

var _ SubroutineBinding = &SubroutineDefBinding{}

// NewSubroutineDefBinding constructs an unfinalised subroutine binding.
func NewSubroutineDefBinding(path file.Path, body any) *SubroutineDefBinding {
	return &SubroutineDefBinding{path, nil, body, false}
}

// IsFinalised implements Binding.
func (s *SubroutineDefBinding) IsFinalised() bool { return s.finalised }

// IsRecursive implements Binding; SV functions/tasks may call themselves.
func (s *SubroutineDefBinding) IsRecursive() bool { return true }

// IsFunction implements SubroutineBinding.
func (s *SubroutineDefBinding) IsFunction() bool { return s.sig == nil || s.sig.IsFunction() }

// IsNative implements SubroutineBinding; user-defined subroutines are never
// native.
func (s *SubroutineDefBinding) IsNative() bool { return false }

// Signature implements SubroutineBinding.
func (s *SubroutineDefBinding) Signature() *Signature { return s.sig }

// Finalise assigns this subroutine its resolved signature.
func (s *SubroutineDefBinding) Finalise(sig *Signature) {
	s.sig = sig
	s.finalised = true
}

// ============================================================================
// DefinitionBinding — modules, interfaces, programs, UDPs
// ============================================================================

// DefinitionKind discriminates the four kinds of top-level definition a
// hardware design may declare.
type DefinitionKind uint8

// Recognised definition kinds.
const (
	DefModule DefinitionKind = iota
	DefInterface
	DefProgram
	DefPrimitive
)

// DefinitionBinding is the declarative blueprint of a module, interface,
// program, or UDP: name, kind, default net type, time scale, and
// unconnected-drive policy, keyed by (name, defining scope).
type DefinitionBinding struct {
	Name             string
	Kind             DefinitionKind
	DefaultNetType   any // syntax.NetType, kept as `any` to avoid an import cycle with syntax
	TimeScale        string
	UnconnectedDrive any
	// Body is the opaque syntax handle for this definition's port list and
	// member declarations, materialized lazily by the elaboration driver.
	Body      any
	finalised bool
}

// NewDefinitionBinding constructs a definition binding. Definitions are
// always finalised at registration time (their shape is fully known from
// syntax without any binding); IsFinalised exists so DefinitionBinding
// satisfies Binding uniformly with every other bound name in a scope.
func NewDefinitionBinding(name string, kind DefinitionKind, body any) *DefinitionBinding {
	return &DefinitionBinding{name, kind, nil, "", nil, body, true}
}

// IsFinalised implements Binding.
func (d *DefinitionBinding) IsFinalised() bool { return d.finalised }

// IsRecursive implements Binding; module definitions may instantiate
// themselves (recursive instantiation), guarded instead by
// maxInstanceDepth.
func (d *DefinitionBinding) IsRecursive() bool { return true }

// ============================================================================
// PackageBinding
// ============================================================================

// PackageBinding is a `package` declaration, living in its own flat
// namespace separate from module/interface definitions.
type PackageBinding struct {
	Name      string
	Body      any
	Exports   []string // names re-exported via `export *::*` or explicit export
	finalised bool
}

// NewPackageBinding constructs a package binding.
func NewPackageBinding(name string, body any) *PackageBinding {
	return &PackageBinding{name, body, nil, true}
}

// IsFinalised implements Binding.
func (p *PackageBinding) IsFinalised() bool { return p.finalised }

// IsRecursive implements Binding; packages cannot import themselves
// recursively in a meaningful sense, but self-reference is harmless.
func (p *PackageBinding) IsRecursive() bool { return false }
