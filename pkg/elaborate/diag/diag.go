// Package diag implements the diagnostic store: a deduplicated,
// location-sorted collection of structured diagnostics. Diagnostics sort
// by fully-expanded location then by code, and repeated emissions at the
// same (code, location) key collapse into one entry with a running count —
// essential so errors inside a module instantiated a hundred times don't
// appear a hundred times.
package diag

import (
	"sort"

	"github.com/svlang/elaborate/pkg/util/source"
)

// Code identifies a diagnostic's kind, independent of where it occurred.
// PascalCase with no "Error"/"Warning" suffix baked in, since severity is a
// separate axis.
type Code string

// Severity is a pure function of a Code, set once in the severity table
// below rather than carried per-diagnostic.
type Severity uint8

// Recognised severities, ordered least to most severe.
const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

// severityTable maps every Code this engine emits to its severity. Unknown
// codes default to SeverityError (fail safe) via severityOf.
var severityTable = map[Code]Severity{}

// RegisterSeverity sets the severity for a Code. Called once per code at
// package init by each component that defines diagnostics.
func RegisterSeverity(code Code, sev Severity) { severityTable[code] = sev }

func severityOf(code Code) Severity {
	if sev, ok := severityTable[code]; ok {
		return sev
	}
	return SeverityError
}

// Kind distinguishes parser-forwarded diagnostics from diagnostics produced
// by this engine: requesting semantic diagnostics forces elaboration,
// requesting parse diagnostics does not.
type Kind uint8

// Recognised diagnostic kinds.
const (
	KindSemantic Kind = iota
	KindParse
)

// Note is a sub-diagnostic with its own code and location, attached to a
// parent diagnostic via Diagnostic.AddNote.
type Note struct {
	Code     Code
	Location Location
	Args     []any
}

// Location is a fully-expanded source location: the span plus the file it
// is within. Two diagnostics dedup against each other iff their Code, File
// and span start offset are all equal.
type Location struct {
	File *source.File
	Span source.Span
}

// Less orders two locations by file name (the empty string when File is
// nil) then by starting offset.
func (l Location) Less(o Location) bool {
	if l.File != o.File {
		return fileKey(l.File) < fileKey(o.File)
	}
	return l.Span.Start() < o.Span.Start()
}

func fileKey(f *source.File) string {
	if f == nil {
		return ""
	}
	return f.Filename()
}

// Diagnostic is one structured diagnostic entry: a code, a location, and a
// stream of arguments (strings, types, constants, ranges) plus notes. Call
// sites stream arguments onto a handle rather than formatting a message
// string up front.
type Diagnostic struct {
	Code     Code
	Kind     Kind
	Location Location
	Args     []any
	Notes    []Note
	// Count tracks how many times this (code, location) was emitted; the
	// first occurrence is kept with this running count rather than storing
	// every duplicate.
	Count int
}

// Severity returns this diagnostic's severity, derived purely from its
// Code.
func (d *Diagnostic) Severity() Severity { return severityOf(d.Code) }

// AddArg streams one more argument onto this diagnostic and returns it for
// chaining.
func (d *Diagnostic) AddArg(arg any) *Diagnostic {
	d.Args = append(d.Args, arg)
	return d
}

// AddNote attaches a sub-diagnostic to this one.
func (d *Diagnostic) AddNote(code Code, loc Location, args ...any) *Diagnostic {
	d.Notes = append(d.Notes, Note{code, loc, args})
	return d
}

// Store is the append-only, dedup-on-append diagnostic collection owned by a
// Compilation. Add folds a repeat of the same code at the same file and
// start offset into the first entry; Sorted performs the sort pass.
type Store struct {
	diagnostics []*Diagnostic
	byKey       map[key]*Diagnostic
	errorLimit  int
	errorCount  int
	shortCircuited bool
}

type key struct {
	code Code
	file *source.File
	pos  int
}

// NewStore constructs an empty store. errorLimit mirrors the `errorLimit`
// configuration option; 0 means unlimited.
func NewStore(errorLimit int) *Store {
	return &Store{byKey: make(map[key]*Diagnostic), errorLimit: errorLimit}
}

// Add appends (or, if a duplicate, folds into) a diagnostic at the given
// code and location, returning a handle the caller can stream further
// arguments/notes onto. Returns the existing entry's handle (with Count
// incremented) if this (code, location) pair was already stored.
func (s *Store) Add(code Code, loc Location) *Diagnostic {
	k := key{code, loc.File, loc.Span.Start()}
	if existing, ok := s.byKey[k]; ok {
		existing.Count++
		return existing
	}
	//
	d := &Diagnostic{Code: code, Kind: KindSemantic, Location: loc, Count: 1}
	s.byKey[k] = d
	s.diagnostics = append(s.diagnostics, d)
	//
	if d.Severity() == SeverityError {
		s.errorCount++
		if s.errorLimit > 0 && s.errorCount >= s.errorLimit {
			s.shortCircuited = true
		}
	}
	//
	return d
}

// ShortCircuited reports whether the error-count budget (`errorLimit`) has
// been exhausted; callers should stop issuing further elaboration work, but
// the store itself remains in a well-defined, queryable state.
func (s *Store) ShortCircuited() bool { return s.shortCircuited }

// ErrorCount returns the number of distinct error-severity diagnostics
// recorded so far.
func (s *Store) ErrorCount() int { return s.errorCount }

// Sorted returns every stored diagnostic, stable-sorted by fully-expanded
// location then by code.
func (s *Store) Sorted() []*Diagnostic {
	out := make([]*Diagnostic, len(s.diagnostics))
	copy(out, s.diagnostics)
	//
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Location.Less(out[j].Location) {
			return true
		}
		if out[j].Location.Less(out[i].Location) {
			return false
		}
		return out[i].Code < out[j].Code
	})
	//
	return out
}

// Semantic returns only the diagnostics produced by this engine (excluding
// ones merely forwarded from the parser).
func (s *Store) Semantic() []*Diagnostic {
	var out []*Diagnostic
	for _, d := range s.Sorted() {
		if d.Kind == KindSemantic {
			out = append(out, d)
		}
	}
	return out
}

// All is an alias for Sorted kept for call sites that want "every
// diagnostic regardless of kind" to read more clearly than Sorted().
func (s *Store) All() []*Diagnostic { return s.Sorted() }
