package symbols

import "github.com/svlang/elaborate/pkg/elaborate/types"

// AttributeHost is anything a `(* ... *)` attribute list can be attached
// to: a Symbol, Statement, Expression, or PortConnection. Represented as
// one interface implemented by each of the four marker types below, rather
// than four separate maps, since the lookup logic (by host identity) is
// identical across all four.
type AttributeHost interface {
	attributeHostTag()
}

// SymbolHost wraps a symbol identity for attribute attachment.
type SymbolHost struct{ ID Binding }

func (SymbolHost) attributeHostTag() {}

// StatementHost wraps a statement syntax node identity for attribute
// attachment.
type StatementHost struct{ ID any }

func (StatementHost) attributeHostTag() {}

// ExpressionHost wraps a bound expression identity for attribute
// attachment.
type ExpressionHost struct{ ID any }

func (ExpressionHost) attributeHostTag() {}

// PortConnectionHost wraps a port-connection identity for attribute
// attachment.
type PortConnectionHost struct{ ID any }

func (PortConnectionHost) attributeHostTag() {}

// Attribute is a `(* name = value *)` pair attached to a host. Value may be
// a lazy (unbound) expression handle until the attribute is first read, at
// which point it is bound/evaluated like any other constant expression.
type Attribute struct {
	Name  string
	Type  types.Type
	Value any
}

// AttributeTable is a compilation-wide table of attributes keyed by host
// identity across the four host kinds attributes may attach to.
type AttributeTable struct {
	byHost map[AttributeHost][]Attribute
}

// NewAttributeTable constructs an empty attribute table.
func NewAttributeTable() *AttributeTable {
	return &AttributeTable{byHost: make(map[AttributeHost][]Attribute)}
}

// Set records the attribute list for a host, overwriting any list
// previously set for the same host — matching setAttributes, which is a
// last-write-wins call site.
func (t *AttributeTable) Set(host AttributeHost, attrs []Attribute) {
	t.byHost[host] = attrs
}

// Get returns the attribute list recorded for a host, or nil if none was
// ever set.
func (t *AttributeTable) Get(host AttributeHost) []Attribute {
	return t.byHost[host]
}
