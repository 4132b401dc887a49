// Package types implements the built-in type registry and the
// integral/vector/array/aggregate type construction, canonicalization, and
// compatibility relations of the elaboration engine: the full SystemVerilog
// type lattice of scalar, integral, real, string, aggregate, class and
// built-in singleton types.
package types

import "fmt"

// Kind discriminates the tagged Type variant, the same kind-tag-plus-
// common-header pattern every polymorphic hierarchy in this engine uses
// (symbols, expressions, types alike).
type Kind uint8

// Recognised type kinds.
const (
	KindError Kind = iota
	KindVoid
	KindScalar
	KindIntegral
	KindReal
	KindShortReal
	KindString
	KindCHandle
	KindEvent
	KindEnum
	KindStruct
	KindUnion
	KindArray
	KindClass
	KindCovergroup
	KindSequence
	KindProperty
	KindUntyped
	KindTypeRef
	KindNull
	KindUnbounded
)

// ArrayShape distinguishes the four SystemVerilog array flavours a Type of
// KindArray may take.
type ArrayShape uint8

// Recognised array shapes.
const (
	ArrayFixed ArrayShape = iota
	ArrayDynamic
	ArrayAssociative
	ArrayQueue
)

// Type is the tagged variant over every type an elaborated design can
// contain. Canonicalization strips aliases (typedefs) but preserves enum
// identity: two typedefs of the same underlying integral type canonicalize
// to the same Type, but two distinct enums with identical member sets do
// not.
type Type interface {
	// Kind returns this type's discriminator.
	Kind() Kind
	// Width returns the packed bit width of this type, or 0 if it has none
	// (e.g. real, string, class handle).
	Width() uint
	// String renders this type the way it would appear in a diagnostic.
	String() string
	// Canonical strips alias wrapping (but never enum/struct/union identity).
	Canonical() Type
	// AssignableFrom reports whether a value of type `other` may be
	// assigned to a variable of this type.
	AssignableFrom(other Type) bool
	// CastableFrom reports whether an explicit cast from `other` to this
	// type is legal.
	CastableFrom(other Type) bool
	// Equivalent reports structural equivalence (not identity) with other.
	Equivalent(other Type) bool
}

// header is the common fields every Type implementation embeds, mirroring
// the "kind, name, location, parent" common-header pattern used for symbols.
type header struct {
	kind  Kind
	alias Type // non-nil iff this Type is a typedef alias of another
}

func (h header) Kind() Kind { return h.kind }

// ============================================================================
// Singleton / built-in types
// ============================================================================

// Singleton is a built-in type with no parameters: void, string, chandle,
// event, real, shortreal, error, null, unbounded, untyped, typeref.
type Singleton struct {
	header
	name string
}

var (
	// ErrorType is substituted for any expression or declaration whose type
	// could not be determined; it is assignable to and from everything so
	// that a single domain error never cascades into unrelated diagnostics.
	ErrorType Type = &Singleton{header{KindError, nil}, "<error>"}
	VoidType  Type = &Singleton{header{KindVoid, nil}, "void"}
	RealType  Type = &Singleton{header{KindReal, nil}, "real"}
	ShortRealType Type = &Singleton{header{KindShortReal, nil}, "shortreal"}
	StringType Type = &Singleton{header{KindString, nil}, "string"}
	CHandleType Type = &Singleton{header{KindCHandle, nil}, "chandle"}
	EventType  Type = &Singleton{header{KindEvent, nil}, "event"}
	UntypedType Type = &Singleton{header{KindUntyped, nil}, "<untyped>"}
	TypeRefType Type = &Singleton{header{KindTypeRef, nil}, "type"}
	NullType   Type = &Singleton{header{KindNull, nil}, "null"}
	UnboundedType Type = &Singleton{header{KindUnbounded, nil}, "$"}
)

func (s *Singleton) Width() uint     { return 0 }
func (s *Singleton) String() string  { return s.name }
func (s *Singleton) Canonical() Type { return s }

func (s *Singleton) AssignableFrom(other Type) bool {
	if s.kind == KindError || other.Kind() == KindError {
		return true
	}
	// real/shortreal freely interconvert and accept integral operands.
	if (s.kind == KindReal || s.kind == KindShortReal) &&
		(other.Kind() == KindReal || other.Kind() == KindShortReal || other.Kind() == KindIntegral) {
		return true
	}
	return s.Equivalent(other)
}

func (s *Singleton) CastableFrom(other Type) bool {
	return s.AssignableFrom(other) || other.Kind() == KindIntegral
}

func (s *Singleton) Equivalent(other Type) bool {
	return other.Canonical().Kind() == s.kind
}

// ============================================================================
// Integral / vector types
// ============================================================================

// Integral represents `bit`/`logic`/`reg`/`int`/`byte`/... and any packed
// vector built from them. Instances are cached (interned) by
// (signed, fourState, reg, width) so structurally identical integral types
// compare equal by pointer.
type Integral struct {
	header
	width     uint
	signed    bool
	fourState bool
	reg       bool
}

var integralCache = map[[4]int]*Integral{}

// NewIntegralType returns the canonical Integral type for the given shape,
// constructing and caching it on first request. The combination
// (!fourState, reg) is invalid per the two-state/four-state/reg table and
// panics — a `reg` type is always four-state.
func NewIntegralType(width uint, signed, fourState, reg bool) *Integral {
	if reg && !fourState {
		panic("invalid integral type: reg implies four-state")
	}
	//
	key := [4]int{int(width), b2i(signed), b2i(fourState), b2i(reg)}
	if t, ok := integralCache[key]; ok {
		return t
	}
	//
	t := &Integral{header{KindIntegral, nil}, width, signed, fourState, reg}
	integralCache[key] = t
	//
	return t
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Common built-in integral types: `bit`, `logic`, `int`, `byte`, `integer`,
// `unsigned int` and their siblings.
var (
	BitType     = NewIntegralType(1, false, false, false)
	LogicType   = NewIntegralType(1, false, true, true)
	ByteType    = NewIntegralType(8, true, false, false)
	ShortIntType = NewIntegralType(16, true, false, false)
	IntType     = NewIntegralType(32, true, false, false)
	UnsignedIntType = NewIntegralType(32, false, false, false)
	LongIntType = NewIntegralType(64, true, false, false)
	IntegerType = NewIntegralType(32, true, true, true)
	TimeType    = NewIntegralType(64, false, true, true)
)

func (i *Integral) Width() uint  { return i.width }
func (i *Integral) Signed() bool { return i.signed }
func (i *Integral) FourState() bool { return i.fourState }

func (i *Integral) String() string {
	sign := ""
	if i.signed {
		sign = " signed"
	}
	base := "bit"
	if i.fourState {
		base = "logic"
	}
	if i.width == 1 {
		return base + sign
	}
	return fmt.Sprintf("%s%s[%d:0]", base, sign, i.width-1)
}

func (i *Integral) Canonical() Type { return i }

func (i *Integral) AssignableFrom(other Type) bool {
	if other.Kind() == KindError {
		return true
	}
	c := other.Canonical()
	switch c.Kind() {
	case KindIntegral, KindReal, KindShortReal, KindEnum, KindUnbounded:
		return true
	default:
		return false
	}
}

func (i *Integral) CastableFrom(other Type) bool {
	if i.AssignableFrom(other) {
		return true
	}
	return other.Canonical().Kind() == KindString
}

func (i *Integral) Equivalent(other Type) bool {
	oc := other.Canonical()
	oi, ok := oc.(*Integral)
	if !ok {
		return false
	}
	return i.width == oi.width && i.signed == oi.signed && i.fourState == oi.fourState
}

// ============================================================================
// Enum / struct / union (aggregate, identity-bearing) types
// ============================================================================

// EnumMember is one `name = value` pair of an enum declaration, in
// declaration order.
type EnumMember struct {
	Name  string
	Value int64
}

// Enum is a user-declared enumeration. Two Enum types are never Equivalent
// merely because they share member sets: canonicalization strips typedef
// aliasing but preserves enum identity, so identity is by pointer.
type Enum struct {
	header
	Base     Type
	Members  []EnumMember
	SystemID uint64
}

// NewEnumType constructs a new, uniquely-identified enum type over the
// given base integral type and members, in declaration order. systemID
// should come from a Compilation's monotone enum-id counter.
func NewEnumType(base Type, members []EnumMember, systemID uint64) *Enum {
	return &Enum{header{KindEnum, nil}, base, members, systemID}
}

func (e *Enum) Width() uint     { return e.Base.Width() }
func (e *Enum) Canonical() Type { return e }

func (e *Enum) String() string {
	return fmt.Sprintf("enum{%d members}", len(e.Members))
}

func (e *Enum) AssignableFrom(other Type) bool {
	if other.Kind() == KindError {
		return true
	}
	return other.Canonical() == Type(e)
}

// CastableFrom additionally allows any integral value to be cast into the
// enum, per `relaxEnumConversions`-independent explicit-cast rules (the
// option only relaxes implicit conversion, not explicit casts).
func (e *Enum) CastableFrom(other Type) bool {
	if e.AssignableFrom(other) {
		return true
	}
	return other.Canonical().Kind() == KindIntegral
}

func (e *Enum) Equivalent(other Type) bool { return other.Canonical() == Type(e) }

// Field is one member of a struct or union, in declaration order.
type Field struct {
	Name string
	Type Type
}

// Aggregate is a packed or unpacked struct/union. Tagged unions (SV `union
// tagged`) set Tagged; which member of a tagged union is active is tracked
// by the constant value that carries it, not by this type.
type Aggregate struct {
	header
	Packed   bool
	Tagged   bool
	Fields   []Field
	SystemID uint64
}

// NewStructType constructs a new, uniquely-identified struct type.
func NewStructType(packed bool, fields []Field, systemID uint64) *Aggregate {
	return &Aggregate{header{KindStruct, nil}, packed, false, fields, systemID}
}

// NewUnionType constructs a new, uniquely-identified union type.
func NewUnionType(packed, tagged bool, fields []Field, systemID uint64) *Aggregate {
	return &Aggregate{header{KindUnion, nil}, packed, tagged, fields, systemID}
}

func (a *Aggregate) Canonical() Type { return a }

func (a *Aggregate) Width() uint {
	if !a.Packed {
		return 0
	}
	var w uint
	for _, f := range a.Fields {
		w += f.Type.Width()
	}
	return w
}

func (a *Aggregate) String() string {
	name := "struct"
	if a.kind == KindUnion {
		name = "union"
	}
	if a.Packed {
		name = "packed " + name
	}
	return fmt.Sprintf("%s{%d fields}", name, len(a.Fields))
}

func (a *Aggregate) AssignableFrom(other Type) bool {
	if other.Kind() == KindError {
		return true
	}
	oc := other.Canonical()
	oa, ok := oc.(*Aggregate)
	if !ok || oa.kind != a.kind || len(oa.Fields) != len(a.Fields) {
		return false
	}
	for i := range a.Fields {
		if !a.Fields[i].Type.AssignableFrom(oa.Fields[i].Type) {
			return false
		}
	}
	return true
}

func (a *Aggregate) CastableFrom(other Type) bool { return a.AssignableFrom(other) }

func (a *Aggregate) Equivalent(other Type) bool {
	oc := other.Canonical()
	oa, ok := oc.(*Aggregate)
	if !ok || oa.kind != a.kind || oa.Packed != a.Packed || len(oa.Fields) != len(a.Fields) {
		return false
	}
	for i := range a.Fields {
		if a.Fields[i].Name != oa.Fields[i].Name || !a.Fields[i].Type.Equivalent(oa.Fields[i].Type) {
			return false
		}
	}
	return true
}

// ============================================================================
// Arrays
// ============================================================================

// Array represents fixed, dynamic, associative and queue arrays uniformly
// under a single Shape discriminator rather than one type per array flavor.
type Array struct {
	header
	Element  Type
	Shape    ArrayShape
	Min, Max int64 // meaningful only when Shape == ArrayFixed
	IndexType Type // meaningful only when Shape == ArrayAssociative
	Bound    int64 // meaningful only when Shape == ArrayQueue; <0 = unbounded
}

// NewFixedArrayType constructs a fixed-size packed-or-unpacked array type
// over the inclusive [min:max] range.
func NewFixedArrayType(element Type, min, max int64) *Array {
	return &Array{header{KindArray, nil}, element, ArrayFixed, min, max, nil, 0}
}

// NewDynamicArrayType constructs a dynamic array type.
func NewDynamicArrayType(element Type) *Array {
	return &Array{header{KindArray, nil}, element, ArrayDynamic, 0, 0, nil, 0}
}

// NewAssociativeArrayType constructs an associative array type indexed by
// indexType, or by `*` (wildcard index, indexType == nil) when the SV source
// wrote `element name[*]`.
func NewAssociativeArrayType(element, indexType Type) *Array {
	return &Array{header{KindArray, nil}, element, ArrayAssociative, 0, 0, indexType, 0}
}

// NewQueueType constructs a queue type with an optional bound; bound < 0
// means unbounded.
func NewQueueType(element Type, bound int64) *Array {
	return &Array{header{KindArray, nil}, element, ArrayQueue, 0, 0, nil, bound}
}

func (a *Array) Canonical() Type { return a }

func (a *Array) Width() uint {
	if a.Shape != ArrayFixed {
		return 0
	}
	ew := a.Element.Width()
	if ew == 0 {
		return 0 // unpacked
	}
	return ew * (elementCount(a.Min, a.Max))
}

func elementCount(min, max int64) uint {
	if max >= min {
		return uint(max-min) + 1
	}
	return uint(min-max) + 1
}

func (a *Array) String() string {
	switch a.Shape {
	case ArrayFixed:
		return fmt.Sprintf("%s[%d:%d]", a.Element.String(), a.Min, a.Max)
	case ArrayDynamic:
		return fmt.Sprintf("%s[]", a.Element.String())
	case ArrayAssociative:
		if a.IndexType == nil {
			return fmt.Sprintf("%s[*]", a.Element.String())
		}
		return fmt.Sprintf("%s[%s]", a.Element.String(), a.IndexType.String())
	default: // ArrayQueue
		if a.Bound < 0 {
			return fmt.Sprintf("%s[$]", a.Element.String())
		}
		return fmt.Sprintf("%s[$:%d]", a.Element.String(), a.Bound)
	}
}

func (a *Array) AssignableFrom(other Type) bool {
	if other.Kind() == KindError {
		return true
	}
	oc := other.Canonical()
	oa, ok := oc.(*Array)
	if !ok || oa.Shape != a.Shape {
		return false
	}
	return a.Element.AssignableFrom(oa.Element)
}

func (a *Array) CastableFrom(other Type) bool { return a.AssignableFrom(other) }

func (a *Array) Equivalent(other Type) bool {
	oc := other.Canonical()
	oa, ok := oc.(*Array)
	if !ok {
		return false
	}
	return a.Shape == oa.Shape && a.Min == oa.Min && a.Max == oa.Max && a.Bound == oa.Bound &&
		a.Element.Equivalent(oa.Element)
}

// ============================================================================
// Alias (typedef) wrapping
// ============================================================================

// Alias represents a `typedef` name bound to an underlying type.
// Canonicalization strips Alias wrappers but never strips Enum/Aggregate
// identity: two typedefs of the same integral type canonicalize together,
// but two distinct enums never do.
type Alias struct {
	header
	Name string
}

// NewAliasType constructs a named alias of an underlying type.
func NewAliasType(name string, underlying Type) *Alias {
	return &Alias{header{underlying.Kind(), underlying}, name}
}

func (a *Alias) Width() uint     { return a.alias.Width() }
func (a *Alias) String() string  { return a.Name }
func (a *Alias) Canonical() Type { return a.alias.Canonical() }

func (a *Alias) AssignableFrom(other Type) bool { return a.Canonical().AssignableFrom(other) }
func (a *Alias) CastableFrom(other Type) bool   { return a.Canonical().CastableFrom(other) }
func (a *Alias) Equivalent(other Type) bool     { return a.Canonical().Equivalent(other) }

// ============================================================================
// Least/greatest bound helpers over SV's integral-widening lattice.
// ============================================================================

// LeastUpperBound computes the smallest type both l and r are assignable to,
// used for context-determined operators (`+`, ternary, concatenation
// operands, etc). Falls back to ErrorType when no common type exists.
func LeastUpperBound(l, r Type) Type {
	if l == nil || r == nil {
		return ErrorType
	}
	if l.Equivalent(r) {
		return l
	}
	lc, rc := l.Canonical(), r.Canonical()
	li, lok := lc.(*Integral)
	ri, rok := rc.(*Integral)
	if lok && rok {
		width := li.width
		if ri.width > width {
			width = ri.width
		}
		return NewIntegralType(width, li.signed && ri.signed, li.fourState || ri.fourState,
			li.reg || ri.reg)
	}
	if lc.Kind() == KindReal || rc.Kind() == KindReal {
		return RealType
	}
	if lc.Kind() == KindError || rc.Kind() == KindError {
		return ErrorType
	}
	return ErrorType
}

// LeastUpperBoundAll folds LeastUpperBound over a non-empty slice of types.
func LeastUpperBoundAll(types []Type) Type {
	if len(types) == 0 {
		return ErrorType
	}
	acc := types[0]
	for _, t := range types[1:] {
		acc = LeastUpperBound(acc, t)
	}
	return acc
}
