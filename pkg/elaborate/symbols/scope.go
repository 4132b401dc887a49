package symbols

import (
	"fmt"

	"github.com/svlang/elaborate/pkg/util"
	"github.com/svlang/elaborate/pkg/util/file"
)

// Symbol is anything a Scope can hold: a name, an arity (non-empty only for
// subroutines, which may be overloaded by arity), and a path locating it.
// SymbolDefinition and Resolvable split Symbol into "a definition being
// registered" and "a reference being resolved" roles.
type Symbol interface {
	Path() *file.Path
	Arity() util.Option[uint]
}

// SymbolDefinition is a Symbol being registered into a Scope for the first
// time, additionally exposing the Binding it should resolve to.
type SymbolDefinition interface {
	Symbol
	Name() string
	Binding() Binding
}

// Resolvable is a reference-site Symbol capable of accepting its resolved
// Binding once lookup succeeds.
type Resolvable interface {
	Symbol
	Resolve(Binding) bool
}

// Scope represents one region of the design hierarchy in which a name can
// be declared and later looked up: a compilation unit, a module/interface
// definition body, a generate block, a package, a class. The deferred
// member and wildcard-import machinery supports any scope member whose
// construction requires binding an expression that might reference other
// members of the same scope.
type Scope interface {
	// Bind attempts to resolve sym against this scope, walking outward
	// (and, for hierarchical names, downward into submodules/instances) as
	// needed. Returns whether resolution succeeded.
	Bind(Resolvable) bool
	// IsWithin reports whether the given path names something local to (at
	// or below) this scope.
	IsWithin(path file.Path) bool
	// IsVisible reports whether sym, if it resolves to a binding in this
	// scope tree, is visible at the point of reference — false while the
	// symbol's own definition is still "open" (mid-construction) unless
	// that binding permits recursive self-reference.
	IsVisible(sym Symbol) bool
}

// BindingID distinguishes overloaded names (subroutines, by arity) from
// ordinary single-arity names within one scope's namespace.
type BindingID struct {
	name  string
	arity util.Option[uint]
}

// IsSubroutine reports whether this id names a (possibly overloaded)
// subroutine.
func (b BindingID) IsSubroutine() bool { return b.arity.HasValue() }

func (b BindingID) String() string {
	if b.arity.HasValue() {
		return fmt.Sprintf("%s/%d", b.name, b.arity.Unwrap())
	}
	return b.name
}

// DeferredMember records a scope member whose construction requires
// binding an expression that might itself need to look up other members of
// the same scope — deferred to break that cycle. Materialization happens
// lazily, on first lookup that needs it or at the end of member iteration,
// whichever comes first.
type DeferredMember struct {
	// Index is this member's declaration-order position, preserved so
	// ordering invariants hold once materialized.
	Index uint
	// Kind identifies the syntactic form (e.g. "GenerateBlock",
	// "ContinuousAssign", "Property") so the elaboration driver knows which
	// materializer to invoke.
	Kind string
	// Syntax is the opaque node this deferred member was recorded from.
	Syntax any
	// materialized becomes true once this deferred entry has produced a
	// real scope member.
	materialized bool
}

// IsMaterialized reports whether this deferred member has already been
// turned into a real scope member.
func (d *DeferredMember) IsMaterialized() bool { return d.materialized }

// MarkMaterialized records that this deferred member has now been
// constructed.
func (d *DeferredMember) MarkMaterialized() { d.materialized = true }

// WildcardImport is a `import pkg::*;` sideband entry consulted by lookup
// only after scope-local resolution fails.
type WildcardImport struct {
	Package *PackageBinding
	// DeclIndex bounds visibility: an import is only consulted for lookups
	// occurring at or after its own declaration.
	DeclIndex uint
}

// boxedBinding wraps a binding with an "open" flag used to detect recursive
// symbol access during its own definition.
type boxedBinding struct {
	open    bool
	binding Binding
}

// DesignScope is the concrete Scope implementation for the design
// hierarchy: compilation units, module/interface/program definition
// bodies, generate blocks, classes and packages all share this one scope
// kind, usable at every nesting level of an SV design.
type DesignScope struct {
	path       file.Path
	ids        map[BindingID]uint
	bindings   []boxedBinding
	parent     *DesignScope
	children   map[string]*DesignScope
	childOrder []*DesignScope
	deferred   []*DeferredMember
	imports    []WildcardImport
}

// NewDesignScope constructs an initially empty root scope (the compilation
// unit / `$unit` scope).
func NewDesignScope() *DesignScope {
	return &DesignScope{
		path:     file.NewAbsolutePath(),
		ids:      make(map[BindingID]uint),
		children: make(map[string]*DesignScope),
	}
}

// Path returns this scope's absolute path.
func (s *DesignScope) Path() *file.Path { return &s.path }

// IsRoot reports whether this is the top-level compilation-unit scope.
func (s *DesignScope) IsRoot() bool { return s.parent == nil }

// Parent returns the enclosing scope, or nil at the root.
func (s *DesignScope) Parent() *DesignScope { return s.parent }

// Children returns the nested scopes declared directly within this one, in
// declaration order.
func (s *DesignScope) Children() []*DesignScope { return s.childOrder }

// IsWithin implements Scope.
func (s *DesignScope) IsWithin(path file.Path) bool {
	return s.path.PrefixOf(path)
}

// IsVisible implements Scope, walking upward through enclosing scopes and
// downward into submodules as needed to locate sym's declaring scope.
func (s *DesignScope) IsVisible(sym Symbol) bool {
	path := *sym.Path()
	//
	if !s.IsWithin(path) && s.parent != nil {
		return s.parent.IsVisible(sym)
	} else if child, ok := s.children[path.Head()]; ok && path.Depth() > 1 {
		return child.IsVisible(sym)
	}
	//
	id := BindingID{path.Tail(), sym.Arity()}
	if index, ok := s.ids[id]; ok {
		box := s.bindings[index]
		return !box.open || box.binding.IsRecursive()
	}
	return false
}

// Declare registers a new nested scope (module instance body, generate
// block, class, package) directly beneath this one. Returns false if a
// child with that name already exists.
func (s *DesignScope) Declare(name string) (*DesignScope, bool) {
	if _, ok := s.children[name]; ok {
		return nil, false
	}
	//
	child := &DesignScope{
		path:     *s.path.Extend(name),
		ids:      make(map[BindingID]uint),
		parent:   s,
		children: make(map[string]*DesignScope),
	}
	s.children[name] = child
	s.childOrder = append(s.childOrder, child)
	//
	return child, true
}

// Enter returns the named child scope, panicking if it doesn't exist —
// callers are expected to have already validated the name via lookup.
func (s *DesignScope) Enter(name string) *DesignScope {
	if child, ok := s.children[name]; ok {
		return child
	}
	panic(fmt.Sprintf("unknown nested scope %q", name))
}

// Define registers a new symbol directly in this scope (not a nested one).
// An absolute path whose parent isn't this scope's path is routed down into
// the appropriate child, and any structural mismatch is a programming
// error (panic), since by the time Define is called the caller has already
// validated the declaration against the syntax tree.
func (s *DesignScope) Define(def SymbolDefinition) bool {
	path := *def.Path()
	//
	if !path.IsAbsolute() {
		panic("symbol definition must have an absolute path")
	} else if !s.path.PrefixOf(path) {
		panic(fmt.Sprintf("invalid symbol definition (%s not prefix of %s)", s.path.String(), path.String()))
	} else if !path.Parent().Equals(s.path) {
		name := path.Get(s.path.Depth())
		if child, ok := s.children[name]; ok {
			return child.Define(def)
		}
		return false
	}
	//
	id := BindingID{def.Name(), def.Arity()}
	if _, ok := s.ids[id]; ok {
		return false
	}
	//
	bid := uint(len(s.bindings))
	s.bindings = append(s.bindings, boxedBinding{false, def.Binding()})
	s.ids[id] = bid
	//
	return true
}

// Binding returns the binding registered for (name, arity) directly in
// this scope, or nil if none exists.
func (s *DesignScope) Binding(name string, arity util.Option[uint]) Binding {
	if bid, ok := s.ids[BindingID{name, arity}]; ok {
		return s.bindings[bid].binding
	}
	return nil
}

// Bind implements Scope, resolving relative names against this scope
// before delegating outward, and absolute names by routing to the root
// first.
func (s *DesignScope) Bind(sym Resolvable) bool {
	if sym.Path().IsAbsolute() && s.parent != nil {
		return s.parent.Bind(sym)
	}
	//
	found := s.innerBind(sym.Path(), sym)
	if !found && s.parent != nil {
		return s.parent.Bind(sym)
	}
	//
	return found
}

func (s *DesignScope) innerBind(path *file.Path, sym Resolvable) bool {
	if path.Depth() == 1 {
		id := BindingID{path.Tail(), sym.Arity()}
		if bid, ok := s.ids[id]; ok {
			return sym.Resolve(s.bindings[bid].binding)
		}
		return false
	} else if child, ok := s.children[path.Head()]; ok {
		return child.innerBind(path.Dehead(), sym)
	}
	return false
}

// OpenDefinition marks a symbol as "being defined" so that recursive
// self-references made while binding its own initializer can be detected.
func (s *DesignScope) OpenDefinition(def SymbolDefinition) { s.setDefinitionOpen(true, def) }

// CloseDefinition marks a symbol's definition as complete.
func (s *DesignScope) CloseDefinition(def SymbolDefinition) { s.setDefinitionOpen(false, def) }

func (s *DesignScope) setDefinitionOpen(open bool, def SymbolDefinition) {
	id := BindingID{def.Name(), def.Arity()}
	if index, ok := s.ids[id]; ok {
		s.bindings[index].open = open
		return
	}
	panic(fmt.Sprintf("unknown symbol definition %q", def.Path().String()))
}

// AddDeferredMember records a member whose construction is postponed.
func (s *DesignScope) AddDeferredMember(m *DeferredMember) { s.deferred = append(s.deferred, m) }

// DeferredMembers returns this scope's deferred-member sideband list, in
// declaration order.
func (s *DesignScope) DeferredMembers() []*DeferredMember { return s.deferred }

// AddWildcardImport records a `import pkg::*;` at this scope, at the given
// declaration index.
func (s *DesignScope) AddWildcardImport(pkg *PackageBinding, declIndex uint) {
	s.imports = append(s.imports, WildcardImport{pkg, declIndex})
}

// WildcardImports returns this scope's wildcard imports, in declaration
// order.
func (s *DesignScope) WildcardImports() []WildcardImport { return s.imports }

// Flatten returns this scope and every descendant, pre-order: a scope
// always precedes its own children, the traversal order instance
// visitation requires.
func (s *DesignScope) Flatten() []*DesignScope {
	scopes := []*DesignScope{s}
	for _, c := range s.childOrder {
		scopes = append(scopes, c.Flatten()...)
	}
	return scopes
}

// AllBindings returns every binding declared directly in this scope, in
// declaration order.
func (s *DesignScope) AllBindings() []Binding {
	out := make([]Binding, len(s.bindings))
	for i, b := range s.bindings {
		out[i] = b.binding
	}
	return out
}

// ============================================================================
// LocalScope — procedural blocks, function/task bodies, generate loops
// ============================================================================

// LocalScope represents a procedural nesting level (a begin/end block,
// function or task body, or generate `for` iteration) in which local
// variables and formal arguments can be declared.
type LocalScope struct {
	enclosing Scope
	automatic bool // true inside a function/task body or fork/join block
	locals    map[string]uint
	bindings  []*ValueBinding
}

// NewLocalScope constructs a local scope nested directly within enclosing.
func NewLocalScope(enclosing Scope, automatic bool) *LocalScope {
	return &LocalScope{enclosing, automatic, make(map[string]uint), nil}
}

// Nested constructs a child local scope (e.g. entering a nested begin/end
// block) which inherits all currently-visible locals but can shadow them.
func (l *LocalScope) Nested() *LocalScope {
	locals := make(map[string]uint, len(l.locals))
	for k, v := range l.locals {
		locals[k] = v
	}
	bindings := make([]*ValueBinding, len(l.bindings))
	copy(bindings, l.bindings)
	//
	return &LocalScope{l.enclosing, l.automatic, locals, bindings}
}

// IsAutomatic reports whether variables declared in this scope default to
// automatic (function/task-local) rather than static lifetime.
func (l *LocalScope) IsAutomatic() bool { return l.automatic }

// IsWithin implements Scope by delegating to the enclosing scope.
func (l *LocalScope) IsWithin(path file.Path) bool { return l.enclosing.IsWithin(path) }

// IsVisible implements Scope: locals declared in this scope are always
// visible (SV forbids referencing a not-yet-declared local by construction
// of the grammar), everything else defers to the enclosing scope.
func (l *LocalScope) IsVisible(sym Symbol) bool {
	path := *sym.Path()
	if sym.Arity().IsEmpty() && !path.IsAbsolute() && path.Depth() == 1 {
		if _, ok := l.locals[path.Head()]; ok {
			return true
		}
	}
	return l.enclosing.IsVisible(sym)
}

// Bind implements Scope, checking locals before delegating outward.
func (l *LocalScope) Bind(sym Resolvable) bool {
	path := sym.Path()
	if sym.Arity().IsEmpty() && !path.IsAbsolute() && path.Depth() == 1 {
		if idx, ok := l.locals[path.Head()]; ok {
			return sym.Resolve(l.bindings[idx])
		}
	}
	return l.enclosing.Bind(sym)
}

// DeclareLocal registers a new local variable/formal argument in this
// scope, returning its allocation index.
func (l *LocalScope) DeclareLocal(name string, binding *ValueBinding) uint {
	index := uint(len(l.bindings))
	binding.Finalise(index, binding.DataType)
	l.locals[name] = index
	l.bindings = append(l.bindings, binding)
	//
	return index
}
