package compilation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svlang/elaborate/pkg/elaborate/diag"
	"github.com/svlang/elaborate/pkg/elaborate/symbols"
	"github.com/svlang/elaborate/pkg/elaborate/syntax"
	"github.com/svlang/elaborate/pkg/util/file"
)

func TestDefaultOptionsMatchConfiguredDefaults(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 128, opts.MaxInstanceDepth)
	assert.Equal(t, 131072, opts.MaxGenerateSteps)
	assert.Equal(t, 100000, opts.MaxConstexprSteps)
	assert.Equal(t, 64, opts.ErrorLimit)
}

func TestRegisterDefinitionRejectsDuplicateName(t *testing.T) {
	c := New(DefaultOptions())
	def := symbols.NewDefinitionBinding("top", symbols.DefModule, nil)
	assert.True(t, c.RegisterDefinition(def))
	assert.False(t, c.RegisterDefinition(def))
}

func TestTopModulesDefaultsToNeverInstantiatedDefinitions(t *testing.T) {
	c := New(DefaultOptions())
	top := symbols.NewDefinitionBinding("top", symbols.DefModule, nil)
	sub := symbols.NewDefinitionBinding("sub", symbols.DefModule, nil)
	c.RegisterDefinition(top)
	c.RegisterDefinition(sub)
	//
	c.instances = append(c.instances, &Instance{Definition: sub})
	//
	tops := c.topModules()
	assert.Len(t, tops, 1)
	assert.Equal(t, "top", tops[0].Name)
}

func TestElaborateFreezesCompilation(t *testing.T) {
	c := New(DefaultOptions())
	require.NoError(t, c.Elaborate())
	assert.Panics(t, func() { _ = c.Elaborate() })
}

func TestBindDirectiveFirstSeenSemantics(t *testing.T) {
	c := New(DefaultOptions())
	assert.True(t, c.Binds.NoteBindDirective("file.sv:10:2"))
	assert.False(t, c.Binds.NoteBindDirective("file.sv:10:2"))
	assert.True(t, c.Binds.NoteBindDirective("file.sv:11:2"))
}

func TestDPIExportConflictDetected(t *testing.T) {
	c := New(DefaultOptions())
	ok, _ := c.DPIExports.Note("c_func", file.NewAbsolutePath("svFuncA"))
	assert.True(t, ok)
	//
	ok, conflict := c.DPIExports.Note("c_func", file.NewAbsolutePath("svFuncB"))
	assert.False(t, ok)
	assert.Equal(t, "svFuncA", conflict.Tail())
}

func TestMultipleDefaultClockingInSameScopeIsDiagnosed(t *testing.T) {
	store := diag.NewStore(0)
	c := New(DefaultOptions())
	c.Diagnostics = store
	scope := symbols.NewDesignScope()
	//
	c.NoteDefaultClocking(scope, file.NewAbsolutePath("cb1"), diag.Location{})
	c.NoteDefaultClocking(scope, file.NewAbsolutePath("cb2"), diag.Location{})
	//
	assert.Len(t, store.Sorted(), 1)
	assert.Equal(t, diag.ErrMultipleDefaultClocking, store.Sorted()[0].Code)
}

func TestDefaultClockingInheritsFromEnclosingScope(t *testing.T) {
	c := New(DefaultOptions())
	root := symbols.NewDesignScope()
	child, ok := root.Declare("gen_block")
	require.True(t, ok)
	//
	c.NoteDefaultClocking(root, file.NewAbsolutePath("cb"), diag.Location{})
	//
	info, found := c.DefaultClocking(child)
	assert.True(t, found)
	assert.Equal(t, "cb", info.Path.Tail())
}

func TestOutOfBlockDeclUnusedIsWarned(t *testing.T) {
	store := diag.NewStore(0)
	c := New(DefaultOptions())
	c.Diagnostics = store
	c.AddOutOfBlockDecl(file.NewAbsolutePath("Class", "method"))
	//
	c.checkOutOfBlockUsage()
	//
	assert.Len(t, store.Sorted(), 1)
	assert.Equal(t, diag.WarnUnusedOutOfBlockDecl, store.Sorted()[0].Code)
}

func TestEnumStructUnionSystemIDsAreIndependentCounters(t *testing.T) {
	c := New(DefaultOptions())
	e1 := c.nextEnumSystemID()
	s1 := c.nextStructSystemID()
	e2 := c.nextEnumSystemID()
	assert.Equal(t, uint64(1), e1)
	assert.Equal(t, uint64(1), s1)
	assert.Equal(t, uint64(2), e2)
}

// leafAndTopTree builds a two-module design: `leaf` with no members, and
// `top` instantiating `leaf` twice as `u1`/`u2`, wrapped in a single
// CompilationUnit-shaped root node.
func leafAndTopTree() *syntax.Tree {
	leafDef := syntax.NewNode(syntax.KindModuleDeclaration, syntax.NewLeaf("Name", "leaf"))
	instanceDecl := syntax.NewNode(syntax.KindInstanceDeclaration,
		syntax.NewLeaf("Name", "leaf"),
		syntax.NewLeaf(syntax.KindHierarchicalInstance, "u1"),
		syntax.NewLeaf(syntax.KindHierarchicalInstance, "u2"))
	topDef := syntax.NewNode(syntax.KindModuleDeclaration, syntax.NewLeaf("Name", "top"), instanceDecl)
	root := syntax.NewNode("CompilationUnit", leafDef, topDef)
	return &syntax.Tree{Root: root}
}

func TestElaborateRegistersDefinitionsAndInstantiatesNestedModules(t *testing.T) {
	c := New(DefaultOptions())
	c.AddSyntaxTree(leafAndTopTree())
	require.NoError(t, c.Elaborate())
	//
	require.Contains(t, c.definitions, "top")
	require.Contains(t, c.definitions, "leaf")
	//
	instances := c.Instances()
	assert.Len(t, instances, 3) // top, leaf/u1, leaf/u2
	//
	var topInst *Instance
	for _, inst := range instances {
		if inst.Definition.Name == "top" {
			topInst = inst
		}
	}
	require.NotNil(t, topInst)
	assert.Len(t, topInst.Children, 2)
}

func TestElaborateSelectsOnlyNeverInstantiatedTopModules(t *testing.T) {
	c := New(DefaultOptions())
	c.AddSyntaxTree(leafAndTopTree())
	require.NoError(t, c.Elaborate())
	//
	tops := c.topModules()
	require.Len(t, tops, 1)
	assert.Equal(t, "top", tops[0].Name)
}

func TestBuildStdPackageRegistersWildcardExportCandidates(t *testing.T) {
	c := New(DefaultOptions())
	c.buildStdPackage()
	//
	require.Contains(t, c.packages, "std")
	assert.ElementsMatch(t, []string{"process", "semaphore", "mailbox"}, c.Exports.Find("std"))
	//
	// Idempotent: calling again must not duplicate the package or exports.
	c.buildStdPackage()
	assert.Len(t, c.Exports.Find("std"), 3)
}

func TestNoteBindDirectiveFiresExactlyOnceAcrossRepeatedInstantiation(t *testing.T) {
	c := New(DefaultOptions())
	target := symbols.NewDefinitionBinding("bound_mod", symbols.DefModule, nil)
	c.RegisterDefinition(target)
	//
	bindNode := syntax.NewNode(syntax.KindBindDirective, syntax.NewLeaf("Name", "bound_mod"), syntax.NewLeaf("Name", "bi"))
	//
	first := c.noteBindDirective(bindNode, file.NewAbsolutePath("top"), 1)
	second := c.noteBindDirective(bindNode, file.NewAbsolutePath("top"), 1)
	//
	assert.NotNil(t, first)
	assert.Nil(t, second)
	assert.Len(t, c.instances, 1)
}

func TestNoteDPIExportViaSyntaxDiagnosesConflict(t *testing.T) {
	store := diag.NewStore(0)
	c := New(DefaultOptions())
	c.Diagnostics = store
	//
	exportA := syntax.NewNode(syntax.KindDPIExport, syntax.NewLeaf("Name", "c_func"), syntax.NewLeaf("Name", "svFuncA"))
	exportB := syntax.NewNode(syntax.KindDPIExport, syntax.NewLeaf("Name", "c_func"), syntax.NewLeaf("Name", "svFuncB"))
	//
	c.noteDPIExport(exportA, file.NewAbsolutePath())
	c.noteDPIExport(exportB, file.NewAbsolutePath())
	//
	assert.Len(t, store.Sorted(), 1)
	assert.Equal(t, diag.ErrDPIExportConflict, store.Sorted()[0].Code)
}

func TestForceElaborateAllMaterializesEveryDeferredMemberIdempotently(t *testing.T) {
	c := New(DefaultOptions())
	m := &symbols.DeferredMember{Index: 0, Kind: "ContinuousAssign"}
	c.root.AddDeferredMember(m)
	//
	c.forceElaborateAll()
	assert.True(t, m.IsMaterialized())
	//
	// Running again must not panic or otherwise misbehave on an
	// already-materialized member.
	c.forceElaborateAll()
	assert.True(t, m.IsMaterialized())
}
