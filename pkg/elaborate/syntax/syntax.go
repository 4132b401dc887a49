// Package syntax defines the narrow interface the elaboration core requires
// from its external collaborator, the parser. Lexing, preprocessing and
// syntax-tree construction are out of scope for this module; this package
// exists only so the core has stable, named types to consume rather than
// reaching into a parser package directly.
package syntax

import (
	"go.lsp.dev/uri"

	"github.com/svlang/elaborate/pkg/util/source"
)

// NetType enumerates the default net kind a compilation unit or module
// declares for otherwise-undeclared identifiers used as nets.
type NetType uint8

// Recognised default net types. None disables implicit net declaration
// entirely (SystemVerilog's `` `default_nettype none ``).
const (
	NetTypeWire NetType = iota
	NetTypeTri
	NetTypeTri0
	NetTypeTri1
	NetTypeWand
	NetTypeWor
	NetTypeNone
)

// UnconnectedDrive enumerates the `` `unconnected_drive `` compiler directive
// state in effect when a tree was parsed.
type UnconnectedDrive uint8

// Recognised unconnected-drive policies.
const (
	UnconnectedDriveNone UnconnectedDrive = iota
	UnconnectedDrivePull0
	UnconnectedDrivePull1
)

// Node is a syntax-tree node as produced by the (external) parser. Node
// identity is by pointer; the core never copies syntax nodes and only ever
// compares them by identity or asks the source map for their location.
type Node interface {
	// Kind identifies the syntactic category of this node, e.g.
	// "ModuleDeclaration", "ContinuousAssign", "ParameterDeclaration".
	Kind() string
	// Children returns this node's direct syntactic children, in source
	// order. Leaf nodes (identifiers, literals, operators) return nil.
	Children() []Node
	// Text returns the literal source text of a leaf node (an identifier,
	// a numeric/string literal, an operator token); "" for a non-leaf node.
	Text() string
}

// Recognised Kind values the elaboration core dispatches on while walking a
// tree it was handed. The external parser is expected to tag the relevant
// nodes with these strings; any other Kind value is walked generically
// (descend into Children) without the core attaching special meaning to it.
const (
	KindModuleDeclaration    = "ModuleDeclaration"
	KindInterfaceDeclaration = "InterfaceDeclaration"
	KindProgramDeclaration   = "ProgramDeclaration"
	KindPrimitiveDeclaration = "PrimitiveDeclaration"
	KindPackageDeclaration   = "PackageDeclaration"

	// KindInstanceDeclaration's first child is a leaf naming the
	// instantiated definition; every remaining child is a
	// KindHierarchicalInstance leaf naming one instance of it.
	KindInstanceDeclaration  = "InstanceDeclaration"
	KindHierarchicalInstance = "HierarchicalInstance"

	KindGenerateBlock = "GenerateBlock"
	KindGenerateIf    = "GenerateIf"
	KindGenerateFor   = "GenerateFor"
	KindGenerateCase  = "GenerateCase"

	// KindBindDirective's first two children name the bound definition and
	// the instance name injected into the enclosing scope.
	KindBindDirective = "BindDirective"
	// KindDPIExport's first two children are the C-linkage name and the
	// exported SystemVerilog subroutine name.
	KindDPIExport = "DPIExport"

	// KindDefaultClocking/KindGlobalClocking/KindDefaultDisable's only
	// child names the clocking block or expression being declared default.
	KindDefaultClocking = "DefaultClocking"
	KindGlobalClocking  = "GlobalClocking"
	KindDefaultDisable  = "DefaultDisable"

	// Expression kinds consumed by pkg/elaborate/binder.BindExpression.
	KindIdentifierExpr      = "Identifier"
	KindHierarchicalNameExpr = "HierarchicalName"
	KindUnaryExpr            = "UnaryExpression"
	KindBinaryExpr           = "BinaryExpression"
	KindConditionalExpr      = "ConditionalExpression"
	KindMinTypMaxExpr        = "MinTypMaxExpression"
	KindConcatExpr           = "ConcatenationExpression"
	KindCallExpr             = "CallExpression"
)

// BasicNode is a minimal, dependency-free Node implementation for callers
// that construct syntax trees programmatically rather than through a real
// parser: tests, and any synthesized tree (e.g. a script-scope one-liner)
// the driver builds itself.
type BasicNode struct {
	kind     string
	text     string
	children []Node
}

// NewNode constructs a non-leaf BasicNode of the given kind with the given
// children, in order.
func NewNode(kind string, children ...Node) *BasicNode {
	return &BasicNode{kind: kind, children: children}
}

// NewLeaf constructs a leaf BasicNode carrying literal text and no
// children.
func NewLeaf(kind, text string) *BasicNode {
	return &BasicNode{kind: kind, text: text}
}

// Kind implements Node.
func (n *BasicNode) Kind() string { return n.kind }

// Children implements Node.
func (n *BasicNode) Children() []Node { return n.children }

// Text implements Node.
func (n *BasicNode) Text() string { return n.text }

// Tree is one immutable, parsed compilation unit as handed to the core by
// the external parser: a stable identity, a source manager reference, and
// the `` ` ``-directive state active at parse time.
type Tree struct {
	// Root is the outermost node of this syntax tree (a CompilationUnit node
	// in parser terms).
	Root Node
	// Source identifies where this tree came from. go.lsp.dev/uri gives a
	// stable, comparable identity independent of the physical source.File
	// (which may not exist for script-scope or synthesized trees).
	Source uri.URI
	// SourceFile backs Source with line/column information when available.
	SourceFile *source.File
	// DefaultNetType is the `` `default_nettype `` in effect for the whole
	// tree unless overridden by a nested compiler directive.
	DefaultNetType NetType
	// UnconnectedDrive is the `` `unconnected_drive `` policy in effect.
	UnconnectedDrive UnconnectedDrive
	// TimeScale is the `` `timescale `` directive text, if any was seen.
	TimeScale string
}

// Maps is the source map type instantiated over syntax.Node, giving every
// node in every Tree handed to a Compilation a source span for diagnostics.
type Maps = source.Maps[Node]

// NewMaps constructs an empty node-to-location map set.
func NewMaps() *Maps {
	return source.NewSourceMaps[Node]()
}
