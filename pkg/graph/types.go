package graph

import (
	"context"
	"fmt"
	"strings"
)

// TermKind identifies what a Term denotes.
type TermKind string

const (
	TermIRI     TermKind = "iri"
	TermLiteral TermKind = "literal"
	TermBlank   TermKind = "blank"
)

// Term is a node or value in the graph.
type Term struct {
	Kind  TermKind `json:"kind" yaml:"kind"`
	Value string   `json:"value" yaml:"value"`
}

// IRI returns an IRI term.
func IRI(v string) Term { return Term{Kind: TermIRI, Value: v} }

// Literal returns a plain literal term.
func Literal(v string) Term { return Term{Kind: TermLiteral, Value: v} }

// Blank returns a blank node term.
func Blank(id string) Term { return Term{Kind: TermBlank, Value: id} }

// IsIRI reports whether t is a non-empty IRI.
func (t Term) IsIRI() bool {
	return t.Kind == TermIRI && t.Value != ""
}

// IsZero reports whether t is unset.
func (t Term) IsZero() bool {
	return t.Kind == "" && t.Value == ""
}

// String renders the term the way it would appear in a query.
func (t Term) String() string {
	switch t.Kind {
	case TermIRI:
		return "<" + t.Value + ">"
	case TermBlank:
		return "_:" + t.Value
	default:
		return fmt.Sprintf("%q", t.Value)
	}
}

// Triple is a single subject-predicate-object statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTriple builds a triple whose subject and predicate are IRIs.
func NewTriple(subject, predicate string, object Term) Triple {
	return Triple{Subject: IRI(subject), Predicate: IRI(predicate), Object: object}
}

// Node is one position of a triple pattern: either a variable or a fixed term.
type Node struct {
	Var  string
	Term Term
}

// Var returns a variable node.
func Var(name string) Node { return Node{Var: name} }

// Fixed returns a node bound to a term.
func Fixed(t Term) Node { return Node{Term: t} }

// IsVar reports whether the node is a variable.
func (n Node) IsVar() bool { return n.Var != "" }

func (n Node) String() string {
	if n.IsVar() {
		return "?" + n.Var
	}
	return n.Term.String()
}

// Pattern is a triple pattern.
type Pattern struct {
	Subject   Node
	Predicate Node
	Object    Node
}

// Query selects variable bindings that satisfy every pattern in Where.
// An empty Select projects every variable.
type Query struct {
	Select []string
	Where  []Pattern
}

// Vars returns the projected variables in order.
func (q Query) Vars() []string {
	if len(q.Select) > 0 {
		return q.Select
	}
	var vars []string
	seen := make(map[string]bool)
	for _, p := range q.Where {
		for _, n := range []Node{p.Subject, p.Predicate, p.Object} {
			if n.IsVar() && !seen[n.Var] {
				seen[n.Var] = true
				vars = append(vars, n.Var)
			}
		}
	}
	return vars
}

// Validate checks that the query is well formed.
func (q Query) Validate() error {
	if len(q.Where) == 0 {
		return fmt.Errorf("query has no patterns")
	}
	bound := make(map[string]bool)
	for i, p := range q.Where {
		for _, n := range []Node{p.Subject, p.Predicate, p.Object} {
			if n.IsVar() {
				bound[n.Var] = true
				continue
			}
			if n.Term.IsZero() {
				return fmt.Errorf("pattern %d has an empty position", i)
			}
		}
	}
	for _, v := range q.Select {
		if !bound[v] {
			return fmt.Errorf("selected variable ?%s does not appear in any pattern", v)
		}
	}
	return nil
}

// String renders the query in a SPARQL-like form for logs.
func (q Query) String() string {
	var b strings.Builder
	b.WriteString("SELECT")
	for _, v := range q.Vars() {
		b.WriteString(" ?")
		b.WriteString(v)
	}
	b.WriteString(" WHERE {")
	for _, p := range q.Where {
		fmt.Fprintf(&b, " %s %s %s .", p.Subject, p.Predicate, p.Object)
	}
	b.WriteString(" }")
	return b.String()
}

// Bindings pre-binds query variables before execution.
type Bindings map[string]Term

// Solution is one row of a query result, keyed by variable name.
type Solution map[string]Term

// Resource returns the IRI bound to name, or "" when the binding is
// missing or is not an IRI.
func (s Solution) Resource(name string) string {
	t, ok := s[name]
	if !ok || !t.IsIRI() {
		return ""
	}
	return t.Value
}

// ResultSet iterates over query solutions. Close must always be called.
type ResultSet interface {
	Next() bool
	Solution() Solution
	Err() error
	Close() error
}

// Store is the read contract of the metadata graph.
type Store interface {
	// EnterReadSection acquires shared read access. The returned release
	// function must be called exactly once, on every path.
	EnterReadSection(ctx context.Context) (release func(), err error)

	// Select runs a pattern query with the given initial bindings.
	Select(ctx context.Context, q Query, initial Bindings) (ResultSet, error)
}

// Writer adds statements to a store.
type Writer interface {
	Add(ctx context.Context, triples ...Triple) error
}

// ReadSelect runs q inside a read section and calls fn for each solution.
// The read section and the result set are released on every path.
func ReadSelect(ctx context.Context, store Store, q Query, initial Bindings, fn func(Solution) error) (err error) {
	release, err := store.EnterReadSection(ctx)
	if err != nil {
		return fmt.Errorf("failed to enter read section: %w", err)
	}
	defer release()

	rs, err := store.Select(ctx, q, initial)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() {
		if cerr := rs.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close result set: %w", cerr)
		}
	}()

	for rs.Next() {
		if err := fn(rs.Solution()); err != nil {
			return err
		}
	}
	if err := rs.Err(); err != nil {
		return fmt.Errorf("error iterating results: %w", err)
	}
	return nil
}

// sliceResultSet is a ResultSet over precomputed solutions.
type sliceResultSet struct {
	rows []Solution
	pos  int
}

func newSliceResultSet(rows []Solution) *sliceResultSet {
	return &sliceResultSet{rows: rows, pos: -1}
}

func (r *sliceResultSet) Next() bool {
	if r.pos+1 >= len(r.rows) {
		r.pos = len(r.rows)
		return false
	}
	r.pos++
	return true
}

func (r *sliceResultSet) Solution() Solution {
	if r.pos < 0 || r.pos >= len(r.rows) {
		return nil
	}
	return r.rows[r.pos]
}

func (r *sliceResultSet) Err() error   { return nil }
func (r *sliceResultSet) Close() error { return nil }
