// Package drivers implements the driver and assignability tracker:
// recording every procedural or continuous assignment against the longest
// static prefix of its target, and enforcing single-driver, lvalue, and
// lifetime rules across the whole design.
package drivers

import (
	"github.com/svlang/elaborate/pkg/elaborate/binder"
	"github.com/svlang/elaborate/pkg/elaborate/diag"
	"github.com/svlang/elaborate/pkg/elaborate/symbols"
)

// Kind discriminates the three sources of a driver record.
type Kind uint8

// Recognised driver kinds.
const (
	KindProcedural Kind = iota
	KindContinuous
	KindOther
)

// ProcContext identifies the kind of procedural block a Procedural driver
// originated in, needed to check the always_comb mixed-process rule.
type ProcContext uint8

// Recognised procedural contexts.
const (
	ContextNone ProcContext = iota
	ContextInitial
	ContextAlways
	ContextAlwaysComb
	ContextAlwaysFF
	ContextAlwaysLatch
)

// Flags records assignment-form bits a driver needs to remember to check
// clock-var and non-blocking rules after the fact.
type Flags uint8

// Recognised driver flags.
const (
	NonBlocking Flags = 1 << iota
	Concatenated
)

// Has reports whether flag f is set.
func (fl Flags) Has(f Flags) bool { return fl&f != 0 }

// Driver is one recorded assignment against a ValueSymbol: its kind, the
// longest static prefix of the assigned expression, assignment-form flags,
// and the procedural context it occurred in.
type Driver struct {
	Kind    Kind
	Prefix  binder.Expr
	Flags   Flags
	Context ProcContext
	// SeqIndex fixes this driver's position in the deterministic append
	// order: elaboration order matches declaration order within scopes,
	// then traversal order of instances.
	SeqIndex uint
}

// LongestStaticPrefix returns the expression a driver records as the driven
// part of an lvalue. The binder defines no select expression node type, so
// nothing is stripped: a named or hierarchical value, a concatenation, or
// any other target is returned unchanged, and no bit-, part-, index- or
// field-select is examined.
func LongestStaticPrefix(target binder.Expr) binder.Expr {
	switch t := target.(type) {
	case *binder.NamedValue, *binder.HierarchicalValue:
		return t
	case *binder.Concat:
		// A concatenation lvalue (`{a, b} = ...`) drives each child
		// independently; callers should decompose before calling this and
		// invoke LongestStaticPrefix per child, so reaching here just
		// returns the whole concat as its own (degenerate) prefix.
		return t
	default:
		return target
	}
}

// Set is the ordered, per-ValueSymbol collection of drivers attached over
// its lifetime, plus the running sequence counter that gives new drivers
// their deterministic SeqIndex.
type Set struct {
	drivers []*Driver
	seq     uint
}

// NewSet constructs an empty driver set.
func NewSet() *Set { return &Set{} }

// Add appends a new driver record, assigning it the next sequence index.
func (s *Set) Add(kind Kind, prefix binder.Expr, flags Flags, ctx ProcContext) *Driver {
	d := &Driver{Kind: kind, Prefix: prefix, Flags: flags, Context: ctx, SeqIndex: s.seq}
	s.seq++
	s.drivers = append(s.drivers, d)
	return d
}

// All returns every recorded driver, in deterministic append order.
func (s *Set) All() []*Driver { return s.drivers }

// Tracker is the whole-design driver ledger: one Set per ValueSymbol,
// keyed by the symbol's own identity (its ValueBinding pointer, which is
// stable for the ValueSymbol's lifetime), plus the configuration flags
// that gate which multi-driver situations are diagnosed.
type Tracker struct {
	Diagnostics          *diag.Store
	AllowDupInitialDrivers bool
	StrictDriverChecking   bool

	sets map[*symbols.ValueBinding]*Set
}

// New constructs an empty Tracker.
func New(store *diag.Store, allowDupInitialDrivers, strictDriverChecking bool) *Tracker {
	return &Tracker{Diagnostics: store, AllowDupInitialDrivers: allowDupInitialDrivers,
		StrictDriverChecking: strictDriverChecking, sets: make(map[*symbols.ValueBinding]*Set)}
}

func (t *Tracker) setFor(vb *symbols.ValueBinding) *Set {
	s, ok := t.sets[vb]
	if !ok {
		s = NewSet()
		t.sets[vb] = s
	}
	return s
}

// Drivers returns the driver set recorded so far for vb, or nil if none.
func (t *Tracker) Drivers(vb *symbols.ValueBinding) []*Driver {
	if s, ok := t.sets[vb]; ok {
		return s.All()
	}
	return nil
}

// RecordAssignment computes the longest static prefix of target, appends a
// driver record to its owning ValueSymbol, and runs the finalizer checks,
// emitting diagnostics for any violation. at is the diagnostic location to
// attribute violations to.
func (t *Tracker) RecordAssignment(vb *symbols.ValueBinding, target binder.Expr, kind Kind, flags Flags,
	ctx ProcContext, inConstructor bool, at diag.Location) *Driver {
	prefix := LongestStaticPrefix(target)
	d := t.setFor(vb).Add(kind, prefix, flags, ctx)
	//
	t.checkConstVariable(vb, inConstructor, at)
	t.checkAutomaticNonBlocking(vb, flags, at)
	t.checkNetInProceduralContext(vb, kind, at)
	t.checkClockVar(vb, flags, ctx, at)
	t.checkMultiDriver(vb, at)
	//
	return d
}

// checkConstVariable diagnoses a write to a const variable unless the write
// happens inside a class constructor (inConstructor). Whether the variable
// has an initializer is not checked: a constructor write to an initialized
// const is accepted as well.
func (t *Tracker) checkConstVariable(vb *symbols.ValueBinding, inConstructor bool, at diag.Location) {
	if !vb.Const {
		return
	}
	if inConstructor {
		return
	}
	t.Diagnostics.Add(diag.ErrAssignmentToConstVar, at).AddArg(vb.Path.String())
}

// checkAutomaticNonBlocking enforces "automatic variables: not targets of
// non-blocking assignment (except class properties)".
func (t *Tracker) checkAutomaticNonBlocking(vb *symbols.ValueBinding, flags Flags, at diag.Location) {
	if vb.Kind == symbols.ValueField {
		return // class properties are exempt
	}
	if vb.Automatic && flags.Has(NonBlocking) {
		t.Diagnostics.Add(diag.ErrAutomaticNonBlocking, at).AddArg(vb.Path.String())
	}
}

// checkNetInProceduralContext enforces "nets: not assigned in procedural
// contexts".
func (t *Tracker) checkNetInProceduralContext(vb *symbols.ValueBinding, kind Kind, at diag.Location) {
	if vb.Kind == symbols.ValueNet && kind == KindProcedural {
		t.Diagnostics.Add(diag.ErrProceduralNetAssignment, at).AddArg(vb.Path.String())
	}
}

// checkClockVar enforces "clock vars: respect declared direction; input
// side not writable; concat assignment rejected; non-blocking required".
func (t *Tracker) checkClockVar(vb *symbols.ValueBinding, flags Flags, ctx ProcContext, at diag.Location) {
	if vb.Kind != symbols.ValueClockVar {
		return
	}
	if vb.Direction == symbols.DirIn {
		t.Diagnostics.Add(diag.ErrAssignmentToConstVar, at).AddArg(vb.Path.String())
	}
	if flags.Has(Concatenated) {
		t.Diagnostics.Add(diag.ErrTypeMismatch, at).AddArg("clocking variable may not appear in a concatenation lvalue")
	}
	if !flags.Has(NonBlocking) {
		t.Diagnostics.Add(diag.ErrTypeMismatch, at).AddArg("clocking variable assignment must be non-blocking")
	}
}

// checkMultiDriver enforces that multiple continuous drivers, mixed-process
// drivers on always_comb signals, and initial-driver interactions are
// checked against configuration flags, treating a second write to the same
// net as a conflict unless explicitly permitted.
func (t *Tracker) checkMultiDriver(vb *symbols.ValueBinding, at diag.Location) {
	all := t.setFor(vb).All()
	if len(all) < 2 {
		return
	}
	//
	continuous := 0
	sawComb, sawOther := false, false
	initialCount := 0
	for _, d := range all {
		if d.Kind == KindContinuous {
			continuous++
		}
		if d.Context == ContextAlwaysComb {
			sawComb = true
		} else if !(d.Context == ContextInitial && t.AllowDupInitialDrivers) {
			sawOther = true
		}
		if d.Context == ContextInitial {
			initialCount++
		}
	}
	mixedComb := sawComb && sawOther
	//
	if continuous > 1 {
		t.Diagnostics.Add(diag.ErrMultiDrivenNet, at).AddArg(vb.Path.String())
	}
	if mixedComb {
		t.Diagnostics.Add(diag.ErrMultiDrivenNet, at).AddArg("mixed-process driver of an always_comb signal")
	}
	if initialCount > 1 && !t.AllowDupInitialDrivers {
		t.Diagnostics.Add(diag.ErrMultiDrivenNet, at).AddArg("duplicate initial driver")
	}
}
