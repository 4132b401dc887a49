// Package compilation implements the elaboration driver: the top-level
// Compilation type that owns arenas, the symbol graph, the diagnostic
// store, and orchestrates definition registration, top-module discovery,
// defparam fixed-point iteration, instance-tree construction, bind-
// directive discovery, and default clocking/disable resolution. It
// accumulates syntax trees and configuration freely until the root scope
// is first requested, then freezes.
package compilation

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"

	"github.com/svlang/elaborate/pkg/elaborate/arena"
	"github.com/svlang/elaborate/pkg/elaborate/diag"
	"github.com/svlang/elaborate/pkg/elaborate/drivers"
	"github.com/svlang/elaborate/pkg/elaborate/symbols"
	"github.com/svlang/elaborate/pkg/elaborate/syntax"
	"github.com/svlang/elaborate/pkg/elaborate/types"
	"github.com/svlang/elaborate/pkg/util"
	"github.com/svlang/elaborate/pkg/util/file"
)

// Options is every knob that changes elaboration behaviour without
// changing correctness of a well-formed design.
type Options struct {
	MaxInstanceDepth      int
	MaxGenerateSteps       int
	MaxConstexprDepth      int
	MaxConstexprSteps      int
	MaxConstexprBacktrace  int
	MaxDefParamSteps       int
	ErrorLimit             int
	TypoCorrectionLimit    int
	MinTypMax              string // "min" | "typ" | "max"
	AllowHierarchicalConst bool
	RelaxEnumConversions   bool
	AllowDupInitialDrivers bool
	StrictDriverChecking   bool
	LintMode               bool
	SuppressUnused         bool
	TopModules             []string
	ParamOverrides         map[string]string // "path.param" -> literal value text
}

// DefaultOptions returns a conservative, strict-by-default option set.
func DefaultOptions() Options {
	return Options{
		MaxInstanceDepth:     128,
		MaxGenerateSteps:      131072,
		MaxConstexprDepth:     128,
		MaxConstexprSteps:     100000,
		MaxConstexprBacktrace: 10,
		MaxDefParamSteps:      128,
		ErrorLimit:            64,
		TypoCorrectionLimit:   32,
		MinTypMax:             "max",
		ParamOverrides:        map[string]string{},
	}
}

// ParamOverrideNode is one entry of the collected defparam/`-D` override
// list: a hierarchical path plus the literal override text, resolved
// against a concrete parameter binding once the instance owning that path
// has been created.
type ParamOverrideNode struct {
	Path  file.Path
	Value string
	// Applied becomes true once this override has been matched against a
	// real ParamBinding and applied; used by the defparam fixed-point loop
	// to detect newly-unblocked overrides each round.
	Applied bool
}

// ExportTable records wildcard-exported names from packages as they are
// declared, so a later `export *::*;` directive can be resolved without a
// second full pass.
type ExportTable struct {
	candidates map[string][]string // package name -> exported member names
}

func newExportTable() *ExportTable { return &ExportTable{candidates: map[string][]string{}} }

// NoteCandidate records that pkg exports member, returning false if this
// exact (pkg, member) pair was already recorded.
func (t *ExportTable) NoteCandidate(pkg, member string) bool {
	for _, m := range t.candidates[pkg] {
		if m == member {
			return false
		}
	}
	t.candidates[pkg] = append(t.candidates[pkg], member)
	return true
}

// Find returns every member recorded as exported by pkg.
func (t *ExportTable) Find(pkg string) []string { return t.candidates[pkg] }

// DPIExportTable tracks `export "DPI-C"` directives so duplicate or
// conflicting exports of the same C-linkage name can be diagnosed.
type DPIExportTable struct {
	seen map[string]file.Path // C name -> SV subroutine path that exported it first
}

func newDPIExportTable() *DPIExportTable { return &DPIExportTable{seen: map[string]file.Path{}} }

// Note records a DPI export of cName from subroutine svPath, returning
// false (and the conflicting path) if cName was already exported by a
// different subroutine.
func (t *DPIExportTable) Note(cName string, svPath file.Path) (ok bool, conflict file.Path) {
	if existing, seen := t.seen[cName]; seen {
		return existing.Equals(svPath), existing
	}
	t.seen[cName] = svPath
	return true, file.Path{}
}

// OutOfBlockEntry is one out-of-class-body method/extern declaration
// ledger entry; Used is set once the finalization pass sees a matching
// reference, and unused entries are diagnosed at the end of elaboration.
type OutOfBlockEntry struct {
	Path file.Path
	Used bool
}

// BindDirectiveTable tracks which source locations have already produced a
// `bind` instantiation, returning true only the first time a location is
// seen.
type BindDirectiveTable struct {
	seen map[string]bool
}

func newBindDirectiveTable() *BindDirectiveTable { return &BindDirectiveTable{seen: map[string]bool{}} }

// NoteBindDirective records loc, returning true exactly the first time this
// location is passed.
func (t *BindDirectiveTable) NoteBindDirective(loc string) bool {
	if t.seen[loc] {
		return false
	}
	t.seen[loc] = true
	return true
}

// ClockingInfo records a single default/global clocking or default-disable
// declaration resolved for one scope.
type ClockingInfo struct {
	Path file.Path
	At   diag.Location
}

// Instance is one node of the elaborated instance tree: a definition
// instantiated under a concrete hierarchical path with its own scope.
type Instance struct {
	Path       file.Path
	Definition *symbols.DefinitionBinding
	Scope      *symbols.DesignScope
	Children   []*Instance
	Depth      int
}

// Compilation is the process-wide state for one elaboration: owns arenas,
// all symbols, the diagnostic store, caches, and the root. It is
// constructed with options, accepts syntax trees until the root is first
// requested, and is thereafter frozen.
type Compilation struct {
	Options     Options
	Diagnostics *diag.Store
	Drivers     *drivers.Tracker
	Exports     *ExportTable
	DPIExports  *DPIExportTable
	Binds       *BindDirectiveTable

	symbolArena *arena.Arena[symbols.ValueBinding]
	constArena  *arena.Arena[types.Type]
	strings     *arena.StringInterner

	root *symbols.DesignScope

	trees        []*syntax.Tree
	definitions  map[string]*symbols.DefinitionBinding
	packages     map[string]*symbols.PackageBinding
	instances    []*Instance
	overrides    []*ParamOverrideNode
	outOfBlock   []*OutOfBlockEntry

	defaultClocking map[*symbols.DesignScope]ClockingInfo
	globalClocking  map[*symbols.DesignScope]ClockingInfo
	defaultDisable  map[*symbols.DesignScope]ClockingInfo

	enumSystemID   uint64
	structSystemID uint64
	unionSystemID  uint64

	finalized  bool
	finalizing bool
}

// New constructs an empty Compilation over the given options.
func New(opts Options) *Compilation {
	store := diag.NewStore(opts.ErrorLimit)
	return &Compilation{
		Options:         opts,
		Diagnostics:     store,
		Drivers:         drivers.New(store, opts.AllowDupInitialDrivers, opts.StrictDriverChecking),
		Exports:         newExportTable(),
		DPIExports:      newDPIExportTable(),
		Binds:           newBindDirectiveTable(),
		symbolArena:     arena.New[symbols.ValueBinding](),
		constArena:      arena.New[types.Type](),
		strings:         arena.NewStringInterner(),
		root:            symbols.NewDesignScope(),
		definitions:     map[string]*symbols.DefinitionBinding{},
		packages:        map[string]*symbols.PackageBinding{},
		defaultClocking: map[*symbols.DesignScope]ClockingInfo{},
		globalClocking:  map[*symbols.DesignScope]ClockingInfo{},
		defaultDisable:  map[*symbols.DesignScope]ClockingInfo{},
	}
}

// AddSyntaxTree registers a parsed syntax tree with this compilation,
// contributing zero or more compilation units. Panics if the compilation
// has already been finalized.
func (c *Compilation) AddSyntaxTree(t *syntax.Tree) {
	if c.finalized {
		panic("cannot add a syntax tree to a finalized compilation")
	}
	c.trees = append(c.trees, t)
	log.WithFields(log.Fields{"source": string(t.Source)}).Debug("registered syntax tree")
}

// registerTrees walks every syntax tree added via AddSyntaxTree, registering
// every top-level module/interface/program/primitive definition and package
// declaration it finds, plus any compilation-unit-level bind directive or
// DPI export (one declared outside any module body).
func (c *Compilation) registerTrees() {
	for _, t := range c.trees {
		if t.Root == nil {
			continue
		}
		c.registerNode(t.Root)
	}
}

func (c *Compilation) registerNode(node syntax.Node) {
	switch node.Kind() {
	case syntax.KindModuleDeclaration, syntax.KindInterfaceDeclaration,
		syntax.KindProgramDeclaration, syntax.KindPrimitiveDeclaration:
		children := node.Children()
		if len(children) == 0 {
			return
		}
		def := symbols.NewDefinitionBinding(children[0].Text(), definitionKindOf(node.Kind()), node)
		c.RegisterDefinition(def)
		// The definition's own member list is walked later, once per
		// instantiation, via instantiateChildren — not here.
		return
	case syntax.KindPackageDeclaration:
		children := node.Children()
		if len(children) == 0 {
			return
		}
		c.RegisterPackage(symbols.NewPackageBinding(children[0].Text(), node))
		return
	case syntax.KindBindDirective:
		if child := c.noteBindDirective(node, file.NewAbsolutePath(), 0); child != nil {
			c.instantiateChildren(child)
		}
		return
	case syntax.KindDPIExport:
		c.noteDPIExport(node, file.NewAbsolutePath())
		return
	}
	for _, child := range node.Children() {
		c.registerNode(child)
	}
}

func definitionKindOf(kind string) symbols.DefinitionKind {
	switch kind {
	case syntax.KindInterfaceDeclaration:
		return symbols.DefInterface
	case syntax.KindProgramDeclaration:
		return symbols.DefProgram
	case syntax.KindPrimitiveDeclaration:
		return symbols.DefPrimitive
	default:
		return symbols.DefModule
	}
}

// buildStdPackage registers the implicit `std` package every compilation
// carries regardless of what the user's sources declare, exporting the
// built-in classes `process`/`semaphore`/`mailbox` as wildcard-export
// candidates the way any other package's `export` list would be recorded.
func (c *Compilation) buildStdPackage() {
	if _, exists := c.packages["std"]; exists {
		return
	}
	pkg := symbols.NewPackageBinding("std", nil)
	pkg.Exports = []string{"process", "semaphore", "mailbox"}
	c.RegisterPackage(pkg)
	for _, name := range pkg.Exports {
		c.Exports.NoteCandidate("std", name)
	}
}

// RegisterDefinition registers a module/interface/program/primitive
// definition by (name, defining-scope) — here the compilation-unit root,
// since definitions are keyed globally within a compilation rather than
// per enclosing scope.
func (c *Compilation) RegisterDefinition(def *symbols.DefinitionBinding) bool {
	if _, exists := c.definitions[def.Name]; exists {
		return false
	}
	c.definitions[def.Name] = def
	log.WithFields(log.Fields{"definition": def.Name}).Debug("registered definition")
	return true
}

// RegisterPackage registers a package declaration in the flat package
// namespace.
func (c *Compilation) RegisterPackage(pkg *symbols.PackageBinding) bool {
	if _, exists := c.packages[pkg.Name]; exists {
		return false
	}
	c.packages[pkg.Name] = pkg
	return true
}

// nextEnumSystemID / nextStructSystemID / nextUnionSystemID are three
// independent monotone counters, one per aggregate kind, rather than one
// shared counter across all of them.
func (c *Compilation) nextEnumSystemID() uint64 {
	c.enumSystemID++
	return c.enumSystemID
}

func (c *Compilation) nextStructSystemID() uint64 {
	c.structSystemID++
	return c.structSystemID
}

func (c *Compilation) nextUnionSystemID() uint64 {
	c.unionSystemID++
	return c.unionSystemID
}

// NewEnumType constructs a fresh enum type stamped with this compilation's
// enum system id counter.
func (c *Compilation) NewEnumType(base types.Type, members []types.EnumMember) *types.Enum {
	return types.NewEnumType(base, members, c.nextEnumSystemID())
}

// NewStructType constructs a fresh struct type stamped with this
// compilation's struct system id counter.
func (c *Compilation) NewStructType(packed bool, fields []types.Field) *types.Aggregate {
	return types.NewStructType(packed, fields, c.nextStructSystemID())
}

// NewUnionType constructs a fresh union type stamped with this
// compilation's union system id counter.
func (c *Compilation) NewUnionType(packed, tagged bool, fields []types.Field) *types.Aggregate {
	return types.NewUnionType(packed, tagged, fields, c.nextUnionSystemID())
}

// AddParamOverride records a `-D path.param=value`-style override,
// consumed during the defparam fixed-point pass.
func (c *Compilation) AddParamOverride(path file.Path, value string) {
	c.overrides = append(c.overrides, &ParamOverrideNode{Path: path, Value: value})
}

// AddOutOfBlockDecl records an out-of-class-body method/extern declaration
// so its "used" flag can be checked at finalization.
func (c *Compilation) AddOutOfBlockDecl(path file.Path) *OutOfBlockEntry {
	e := &OutOfBlockEntry{Path: path}
	c.outOfBlock = append(c.outOfBlock, e)
	return e
}

// FindOutOfBlockDecl looks up a previously-registered out-of-block
// declaration by path.
func (c *Compilation) FindOutOfBlockDecl(path file.Path) *OutOfBlockEntry {
	for _, e := range c.outOfBlock {
		if e.Path.Equals(path) {
			return e
		}
	}
	return nil
}

// NoteDefaultClocking / NoteGlobalClocking / NoteDefaultDisable register a
// per-scope clocking or disable declaration, diagnosing a conflict if the
// scope already has one.
func (c *Compilation) NoteDefaultClocking(scope *symbols.DesignScope, path file.Path, at diag.Location) {
	c.noteClockingInto(c.defaultClocking, scope, path, at, diag.ErrMultipleDefaultClocking)
}

func (c *Compilation) NoteGlobalClocking(scope *symbols.DesignScope, path file.Path, at diag.Location) {
	c.noteClockingInto(c.globalClocking, scope, path, at, diag.ErrMultipleGlobalClocking)
}

func (c *Compilation) NoteDefaultDisable(scope *symbols.DesignScope, path file.Path, at diag.Location) {
	c.noteClockingInto(c.defaultDisable, scope, path, at, diag.ErrMultipleDefaultDisable)
}

func (c *Compilation) noteClockingInto(table map[*symbols.DesignScope]ClockingInfo, scope *symbols.DesignScope,
	path file.Path, at diag.Location, code diag.Code) {
	if _, exists := table[scope]; exists {
		c.Diagnostics.Add(code, at).AddArg(path.String())
		return
	}
	table[scope] = ClockingInfo{Path: path, At: at}
}

// DefaultClocking / GlobalClocking / DefaultDisable return the resolved
// clocking info for scope, walking outward through enclosing scopes the
// way any other SV scoped lookup does, since a nested scope with no
// declaration of its own inherits its enclosing scope's default.
func (c *Compilation) DefaultClocking(scope *symbols.DesignScope) (ClockingInfo, bool) {
	return lookupClockingInfo(c.defaultClocking, scope)
}

func (c *Compilation) GlobalClocking(scope *symbols.DesignScope) (ClockingInfo, bool) {
	return lookupClockingInfo(c.globalClocking, scope)
}

func (c *Compilation) DefaultDisable(scope *symbols.DesignScope) (ClockingInfo, bool) {
	return lookupClockingInfo(c.defaultDisable, scope)
}

func lookupClockingInfo(table map[*symbols.DesignScope]ClockingInfo, scope *symbols.DesignScope) (ClockingInfo, bool) {
	for s := scope; s != nil; s = s.Parent() {
		if info, ok := table[s]; ok {
			return info, true
		}
	}
	return ClockingInfo{}, false
}

// CreateScriptScope returns a scope with no parent definition, usable for
// one-off constant-expression evaluation outside any real design, relaxing
// the checks that only make sense inside an elaborated hierarchy.
func (c *Compilation) CreateScriptScope() *symbols.DesignScope {
	return symbols.NewDesignScope()
}

// topModules computes the top-module set: either the configured list, or
// every module definition never instantiated anywhere in the design when
// TopModules is empty.
func (c *Compilation) topModules() []*symbols.DefinitionBinding {
	if len(c.Options.TopModules) > 0 {
		out := make([]*symbols.DefinitionBinding, 0, len(c.Options.TopModules))
		for _, name := range c.Options.TopModules {
			if def, ok := c.definitions[name]; ok {
				out = append(out, def)
			}
		}
		return out
	}
	//
	instantiated := map[string]bool{}
	for _, inst := range c.instances {
		if inst.Depth > 0 || !inst.Path.Equals(file.NewAbsolutePath(inst.Definition.Name)) {
			instantiated[inst.Definition.Name] = true // top-level instances made by Elaborate don't count
		}
	}
	var scan func(n syntax.Node)
	scan = func(n syntax.Node) {
		for i, ch := range n.Children() {
			if i == 0 && n.Kind() == syntax.KindInstanceDeclaration {
				instantiated[ch.Text()] = true
			}
			scan(ch)
		}
	}
	for _, def := range c.definitions {
		if body, ok := def.Body.(syntax.Node); ok && body != nil {
			scan(body)
		}
	}
	//
	names := maps.Keys(c.definitions)
	sort.Strings(names) // deterministic elaboration order regardless of map iteration
	//
	var out []*symbols.DefinitionBinding
	for _, name := range names {
		def := c.definitions[name]
		if def.Kind != symbols.DefModule {
			continue
		}
		if !instantiated[name] {
			out = append(out, def)
		}
	}
	return out
}

// instantiate builds one instance node for def at path, declares its scope
// and records it in c.instances, enforcing maxInstanceDepth. It does not
// visit the definition's body; instantiateChildren does that.
func (c *Compilation) instantiate(def *symbols.DefinitionBinding, path file.Path, depth int) *Instance {
	if c.Options.MaxInstanceDepth > 0 && depth > c.Options.MaxInstanceDepth {
		c.Diagnostics.Add(diag.ErrInstanceDepthExceeded, diag.Location{}).AddArg(path.String())
		return nil
	}
	//
	scope, _ := c.root.Declare(path.Tail())
	inst := &Instance{Path: path, Definition: def, Scope: scope, Depth: depth}
	c.instances = append(c.instances, inst)
	//
	return inst
}

// Elaborate runs the full elaboration sequence: register every definition
// and package found in the added syntax trees, build the implicit `std`
// package, select top modules, apply defparam overrides to fixed point,
// instantiate the hierarchy (discovering nested instantiations, bind
// directives and DPI exports along the way), resolve default/global
// clocking and default-disable, check out-of-block usage, and
// force-elaborate every deferred scope member. Panics if called more than
// once, matching the "finalization sets a flag; subsequent modifications
// are a contract violation" rule.
func (c *Compilation) Elaborate() error {
	if c.finalized {
		panic("compilation has already been finalized")
	}
	if c.finalizing {
		panic("reentrant elaboration of the same compilation")
	}
	c.finalizing = true
	defer func() { c.finalizing = false }()
	//
	c.registerTrees()
	c.buildStdPackage()
	//
	tops := c.topModules()
	log.WithFields(log.Fields{"count": len(tops)}).Info("selected top modules")
	//
	if err := c.runDefParamFixedPoint(); err != nil {
		return err
	}
	//
	for _, def := range tops {
		root := file.NewAbsolutePath(def.Name)
		if inst := c.instantiate(def, root, 0); inst != nil {
			c.instantiateChildren(inst)
		}
	}
	//
	c.checkOutOfBlockUsage()
	c.forceElaborateAll()
	//
	c.finalized = true
	return nil
}

// instantiateChildren walks inst.Definition.Body (its member-declaration
// list, handed to the driver opaquely at registration time) to discover
// nested instantiations, bind directives and DPI exports, recursing into
// each newly created child in pre-order and stepping default/global
// clocking resolution for inst's own scope along the way. A Body that isn't
// a syntax.Node (the zero value used by tests that only exercise the
// instance-tree shape directly) is a no-op.
func (c *Compilation) instantiateChildren(inst *Instance) {
	body, ok := inst.Definition.Body.(syntax.Node)
	if !ok || body == nil {
		return
	}
	steps := 0
	c.elaborateInstanceBody(inst, body, &steps)
}

// elaborateInstanceBody is the pre-order, generate-step-budgeted walk over
// one instance's member declarations.
func (c *Compilation) elaborateInstanceBody(inst *Instance, node syntax.Node, steps *int) {
	switch node.Kind() {
	case syntax.KindInstanceDeclaration:
		c.elaborateInstanceDeclaration(inst, node)
		return
	case syntax.KindGenerateBlock, syntax.KindGenerateIf, syntax.KindGenerateFor, syntax.KindGenerateCase:
		*steps++
		if c.Options.MaxGenerateSteps > 0 && *steps > c.Options.MaxGenerateSteps {
			c.Diagnostics.Add(diag.ErrGenerateStepsExceeded, diag.Location{}).AddArg(inst.Path.String())
			return
		}
	case syntax.KindBindDirective:
		if child := c.noteBindDirective(node, inst.Path, inst.Depth+1); child != nil {
			inst.Children = append(inst.Children, child)
			c.instantiateChildren(child)
		}
		return
	case syntax.KindDPIExport:
		c.noteDPIExport(node, inst.Path)
		return
	case syntax.KindDefaultClocking:
		c.noteClockingDirective(node.Kind(), inst.Scope, inst.Path, node)
		return
	case syntax.KindGlobalClocking:
		c.noteClockingDirective(node.Kind(), inst.Scope, inst.Path, node)
		return
	case syntax.KindDefaultDisable:
		c.noteClockingDirective(node.Kind(), inst.Scope, inst.Path, node)
		return
	}
	//
	for _, child := range node.Children() {
		c.elaborateInstanceBody(inst, child, steps)
	}
}

// elaborateInstanceDeclaration instantiates every hierarchical instance
// named under one `InstanceDeclaration` node, recursing into each child's
// own body in turn.
func (c *Compilation) elaborateInstanceDeclaration(inst *Instance, node syntax.Node) {
	children := node.Children()
	if len(children) == 0 {
		return
	}
	def, ok := c.definitions[children[0].Text()]
	if !ok {
		return
	}
	for _, h := range children[1:] {
		if h.Kind() != syntax.KindHierarchicalInstance {
			continue
		}
		childPath := *inst.Path.Extend(h.Text())
		if child := c.instantiate(def, childPath, inst.Depth+1); child != nil {
			inst.Children = append(inst.Children, child)
			c.instantiateChildren(child)
		}
	}
}

// noteBindDirective records a `bind` directive's first-seen occurrence
// (keyed by the directive node's own identity, which is shared across every
// instantiation of the module that contains it — a module instantiated a
// hundred times walks the same node a hundred times, and only the first
// walk instantiates the bound target) and, the first time, instantiates the
// bound definition into basePath at the given depth.
func (c *Compilation) noteBindDirective(node syntax.Node, basePath file.Path, depth int) *Instance {
	loc := fmt.Sprintf("%p", node)
	if !c.Binds.NoteBindDirective(loc) {
		return nil
	}
	children := node.Children()
	if len(children) < 2 {
		return nil
	}
	def, ok := c.definitions[children[0].Text()]
	if !ok {
		return nil
	}
	return c.instantiate(def, *basePath.Extend(children[1].Text()), depth)
}

// noteDPIExport records a `export "DPI-C"` directive's C-linkage name
// against the exporting subroutine's hierarchical path, diagnosing a
// conflict if a different subroutine already exported that C name.
func (c *Compilation) noteDPIExport(node syntax.Node, basePath file.Path) {
	children := node.Children()
	if len(children) < 2 {
		return
	}
	cName, svName := children[0].Text(), children[1].Text()
	svPath := *basePath.Extend(svName)
	if ok, conflict := c.DPIExports.Note(cName, svPath); !ok {
		c.Diagnostics.Add(diag.ErrDPIExportConflict, diag.Location{}).AddArg(cName).AddArg(conflict.String())
	}
}

// noteClockingDirective resolves one default/global clocking or
// default-disable declaration against scope, routing to whichever of the
// three Note* setters matches kind.
func (c *Compilation) noteClockingDirective(kind string, scope *symbols.DesignScope, basePath file.Path, node syntax.Node) {
	children := node.Children()
	if len(children) == 0 {
		return
	}
	path := *basePath.Extend(children[0].Text())
	switch kind {
	case syntax.KindDefaultClocking:
		c.NoteDefaultClocking(scope, path, diag.Location{})
	case syntax.KindGlobalClocking:
		c.NoteGlobalClocking(scope, path, diag.Location{})
	case syntax.KindDefaultDisable:
		c.NoteDefaultDisable(scope, path, diag.Location{})
	}
}

// forceElaborateAll materializes every deferred scope member reachable from
// the root, the way end-of-elaboration "make sure everything the design
// declared has actually been bound" passes do: a member already
// materialized (by an earlier on-demand lookup) is left untouched, so this
// pass is idempotent regardless of how many deferred members lookups have
// already forced.
func (c *Compilation) forceElaborateAll() {
	for _, scope := range c.root.Flatten() {
		for _, m := range scope.DeferredMembers() {
			c.materializeDeferredMember(m)
		}
	}
}

// materializeDeferredMember marks m as constructed, idempotently. The
// concrete per-kind construction (binding a generate block's guard
// expression, a continuous assign's right-hand side, a property's body) is
// owned by the binder/consteval packages that lookup already drives on
// demand; this pass only guarantees every deferred member gets visited
// exactly once by end of elaboration, even the ones no lookup ever forced.
func (c *Compilation) materializeDeferredMember(m *symbols.DeferredMember) {
	if m.IsMaterialized() {
		return
	}
	m.MarkMaterialized()
}

// runDefParamFixedPoint iterates applying collected ParamOverrideNode
// entries up to maxDefParamSteps times, re-checking on each round whether
// any override newly became applicable, until no more progress is made
// (fixed point) or the step budget is exhausted.
func (c *Compilation) runDefParamFixedPoint() error {
	for step := 0; step < c.Options.MaxDefParamSteps; step++ {
		progressed := false
		for _, o := range c.overrides {
			if o.Applied {
				continue
			}
			if c.tryApplyOverride(o) {
				o.Applied = true
				progressed = true
			}
		}
		if !progressed {
			return nil
		}
		log.WithFields(log.Fields{"step": step}).Debug("defparam fixed-point round")
	}
	//
	for _, o := range c.overrides {
		if !o.Applied {
			c.Diagnostics.Add(diag.ErrDefParamStepsExceeded, diag.Location{}).AddArg(o.Path.String())
		}
	}
	return fmt.Errorf("defparam fixed-point did not converge within %d steps", c.Options.MaxDefParamSteps)
}

// tryApplyOverride attempts to resolve o against a concrete ParamBinding.
// Actual parameter resolution depends on the instance tree already having
// created the target scope, which is why this returns false (not yet
// applicable) rather than an error when the path doesn't resolve.
func (c *Compilation) tryApplyOverride(o *ParamOverrideNode) bool {
	res := c.root.Binding(o.Path.Tail(), util.None[uint]())
	pb, ok := res.(*symbols.ParamBinding)
	if !ok {
		return false
	}
	pb.Overridden = true
	pb.Value = o.Value
	return true
}

func (c *Compilation) checkOutOfBlockUsage() {
	if c.Options.SuppressUnused {
		return
	}
	for _, e := range c.outOfBlock {
		if !e.Used {
			c.Diagnostics.Add(diag.WarnUnusedOutOfBlockDecl, diag.Location{}).AddArg(e.Path.String())
		}
	}
}

// Root returns the compilation-unit root scope, freezing the compilation
// on first call: syntax trees may be added up until the root is first
// requested, and the compilation is thereafter frozen.
func (c *Compilation) Root() *symbols.DesignScope {
	if !c.finalized && !c.finalizing {
		if err := c.Elaborate(); err != nil {
			log.WithError(err).Error("elaboration did not converge")
		}
	}
	return c.root
}

// Instances returns every instance created during elaboration, in
// traversal (pre-order) order.
func (c *Compilation) Instances() []*Instance { return c.instances }
