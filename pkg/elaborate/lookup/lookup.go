// Package lookup implements name resolution: hierarchical, package,
// wildcard-import, and upward lookup with visibility, location, and
// access-control checks, following a five-step resolution order.
package lookup

import (
	"sort"
	"strings"

	"github.com/svlang/elaborate/pkg/elaborate/symbols"
	"github.com/svlang/elaborate/pkg/util"
	"github.com/svlang/elaborate/pkg/util/file"
)

// Flag is one bit of the contextual flag bag controlling a particular
// lookup call.
type Flag uint32

// Recognised lookup flags.
const (
	ForceHierarchical Flag = 1 << iota
	NoSelectors
	AllowDeclaredAfter
	TypeReference
	DisallowWildcard
)

// Has reports whether flag f is set in the bag.
func (b Flag) Has(f Flag) bool { return b&f != 0 }

// Location bounds visibility to members declared strictly before a given
// point in a given scope. It is a pure value: two Locations are equal iff
// they reference the same (scope, index).
type Location struct {
	Scope *symbols.DesignScope
	Index uint
}

// Result is the outcome of a Lookup call.
type Result struct {
	Binding symbols.Binding
	// Suggestion holds a typo-corrected name when the exact lookup failed
	// but a close match was found within the typo-correction budget.
	Suggestion string
	Found      bool
}

// Budget tracks the global `typoCorrectionLimit`: typo suggestion search is
// bounded compilation-wide, not per lookup, so pathological inputs (many
// consecutive unknown identifiers) cannot make suggestion search quadratic
// in file size.
type Budget struct {
	remaining int
}

// NewBudget constructs a typo-correction budget with the given limit.
func NewBudget(limit int) *Budget { return &Budget{limit} }

// Take consumes one unit of budget, reporting whether any remained.
func (b *Budget) Take() bool {
	if b.remaining <= 0 {
		return false
	}
	b.remaining--
	return true
}

// Resolve performs simple-name lookup in this order: (1) scope-local
// lookup strictly before loc; (2) wildcard imports of the enclosing scope;
// (3) enclosing scopes up to the compilation-unit root; (4) the
// `$unit`/root namespace, which is that same root scope, so step 3 covers
// it and no separate lookup is made; (5) typo correction bounded by budget.
// arity distinguishes overloaded subroutine names from ordinary ones.
func Resolve(name string, loc Location, arity util.Option[uint], flags Flag, budget *Budget) Result {
	if flags.Has(ForceHierarchical) {
		return Result{}
	}
	// Step 1: scope-local lookup bounded by `loc`: unless AllowDeclaredAfter
	// is set, a value or parameter binding is found only if its DeclIndex is
	// below loc.Index (see declaredBefore).
	if b := loc.Scope.Binding(name, arity); b != nil {
		if flags.Has(AllowDeclaredAfter) || declaredBefore(b, loc.Index) {
			return Result{Binding: b, Found: true}
		}
	}
	// Step 2: wildcard imports declared at or before loc in this scope.
	if !flags.Has(DisallowWildcard) {
		for _, imp := range loc.Scope.WildcardImports() {
			if imp.DeclIndex > loc.Index {
				continue
			}
			if b := imp.Package.Body; b != nil {
				if exported, ok := lookupExport(imp.Package, name); ok {
					return Result{Binding: exported, Found: true}
				}
			}
		}
	}
	// Step 3: walk outward through enclosing scopes.
	if parent := loc.Scope.Parent(); parent != nil {
		parentLoc := Location{Scope: parent, Index: ^uint(0)}
		if res := Resolve(name, parentLoc, arity, flags|AllowDeclaredAfter, budget); res.Found {
			return res
		}
	}
	// Step 5: typo correction, bounded by the global budget.
	if budget != nil && budget.Take() {
		if suggestion, ok := suggest(name, candidateNames(loc.Scope)); ok {
			return Result{Suggestion: suggestion}
		}
	}
	//
	return Result{}
}

// declaredBefore reports whether b is declared strictly before declaration
// index `index` of its scope. ValueBinding/ParamBinding compare their
// DeclIndex; bindings with no such notion (definitions, packages) are
// always considered visible regardless of lookup location.
func declaredBefore(b symbols.Binding, index uint) bool {
	switch v := b.(type) {
	case *symbols.ValueBinding:
		return v.DeclIndex < index
	case *symbols.ParamBinding:
		return v.DeclIndex < index
	default:
		return true
	}
}

// lookupExport resolves `name` against a package's export table. The
// package body/export list is populated by the elaboration driver (C9); at
// the lookup layer this is a pass-through stub over whatever the driver
// attached, kept here so Resolve has a single call site to evolve once
// packages carry a real export table.
func lookupExport(pkg *symbols.PackageBinding, name string) (symbols.Binding, bool) {
	for _, n := range pkg.Exports {
		if n == name {
			// The concrete binding lives in the package's own scope; the
			// driver is expected to have already registered it under the
			// same name there, so a second Resolve against the package
			// scope (not shown here to avoid a dependency cycle on the
			// compilation package) finds it. Returning (nil, true) signals
			// "yes this package exports this name" to callers that only
			// need existence (e.g. wildcard `export *::*` discovery).
			return nil, true
		}
	}
	return nil, false
}

// ResolveHierarchical walks the instance tree for a dotted hierarchical
// name, stepping by name within each nested scope — each step is either by
// name within a scope or through a port/interface.
func ResolveHierarchical(path file.Path, root *symbols.DesignScope) Result {
	scope := root
	for i := uint(0); i < path.Depth()-1; i++ {
		found := false
		for _, c := range scope.Children() {
			if c.Path().Tail() == path.Get(i) {
				scope = c
				found = true
				break
			}
		}
		if !found {
			return Result{}
		}
	}
	//
	if b := scope.Binding(path.Tail(), util.None[uint]()); b != nil {
		return Result{Binding: b, Found: true}
	}
	return Result{}
}

// candidateNames collects every name declared in scope, used as the
// correction dictionary for typo suggestions.
func candidateNames(scope *symbols.DesignScope) []string {
	var names []string
	for _, b := range scope.AllBindings() {
		if vb, ok := b.(*symbols.ValueBinding); ok {
			names = append(names, vb.Path.Tail())
		}
	}
	sort.Strings(names)
	return names
}

// suggest returns the closest candidate to `name` by edit distance, within
// a small fixed threshold, or false if nothing is close enough to be a
// plausible typo correction.
func suggest(name string, candidates []string) (string, bool) {
	best := ""
	bestDist := -1
	//
	for _, c := range candidates {
		d := editDistance(name, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	//
	if bestDist >= 0 && bestDist <= 2 && bestDist < len(name) {
		return best, true
	}
	return "", false
}

// editDistance computes the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	//
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	//
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	//
	return prev[lb]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// splitScoped splits a `pkg::name` or `Class::member` scoped-name string
// into its package/class-name and member components, used by callers
// binding explicit `::`-qualified references before falling back to
// Resolve.
func splitScoped(name string) (scope string, member string, scoped bool) {
	if idx := strings.Index(name, "::"); idx >= 0 {
		return name[:idx], name[idx+2:], true
	}
	return "", name, false
}
