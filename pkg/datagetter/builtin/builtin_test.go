package builtin

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/openfroyo/pagedata/pkg/datagetter"
	"github.com/openfroyo/pagedata/pkg/graph"
	"github.com/openfroyo/pagedata/pkg/vocab"
)

const testModel = `
prefixes:
  ex: http://example.org/
  ns: http://example.org/ns#
statements:
  - subject: ex:page1
    properties:
      display:hasDataGetter: [ex:dg1, ex:dg2]
  - subject: ex:dg1
    properties:
      rdf:type: owl:Thing
  - subject: ex:dg2
    properties:
      rdf:type: ns:ClassPropertyListDataGetter
      display:forClass: ex:Person
      display:withProperty: ex:email
      display:saveToVar: {literal: people}
  - subject: ex:html
    properties:
      rdf:type: <java:edu.example.FixedHTMLDataGetter>
      display:saveToVar: {literal: banner}
      display:htmlValue: {literal: "<b>hi</b>"}
  - subject: ex:nohtmlvar
    properties:
      rdf:type: <java:edu.example.FixedHTMLDataGetter>
  - subject: ex:noclass
    properties:
      rdf:type: ns:ClassPropertyListDataGetter
  - subject: ex:alice
    properties:
      rdf:type: ex:Person
      rdfs:label: {literal: Alice}
      ex:email: [{literal: alice@example.org}, {literal: a@example.org}]
  - subject: ex:bob
    properties:
      rdf:type: ex:Person
`

const ex = "http://example.org/"

func testStore(t *testing.T) graph.Store {
	t.Helper()
	triples, err := graph.LoadModel(strings.NewReader(testModel))
	if err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}
	return graph.NewMemoryStore(triples...)
}

func TestRegisteredInDefaultRegistry(t *testing.T) {
	tests := []struct {
		name         string
		isDataGetter bool
		graph        bool
		empty        bool
	}{
		{FixedHTMLName, true, true, false},
		{ClassPropertyListName, true, true, true},
		{ClassGroupPageName, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := datagetter.DefaultRegistry().Lookup(tt.name)
			if !ok {
				t.Fatalf("%s not registered", tt.name)
			}
			if f.IsDataGetter != tt.isDataGetter {
				t.Errorf("IsDataGetter = %v, want %v", f.IsDataGetter, tt.isDataGetter)
			}
			if f.HasGraphConstructor() != tt.graph || f.HasEmptyConstructor() != tt.empty {
				t.Errorf("constructors graph=%v empty=%v", f.HasGraphConstructor(), f.HasEmptyConstructor())
			}
		})
	}
}

func TestPage1Scenario(t *testing.T) {
	getters, err := datagetter.DataGettersForPage(context.Background(), testStore(t), ex+"page1")
	if err != nil {
		t.Fatalf("DataGettersForPage failed: %v", err)
	}
	if len(getters) != 1 {
		t.Fatalf("expected 1 getter, got %d", len(getters))
	}

	g, ok := getters[0].(*ClassPropertyListDataGetter)
	if !ok {
		t.Fatalf("unexpected type %T", getters[0])
	}
	// Only the graph constructor sets URI and ForClass.
	if g.URI != ex+"dg2" || g.ForClass != ex+"Person" {
		t.Errorf("not built from the graph: %+v", g)
	}
}

func TestClassPropertyListGetData(t *testing.T) {
	store := testStore(t)
	g, err := NewClassPropertyListDataGetter(context.Background(), store, ex+"dg2")
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}

	data, err := g.GetData(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}

	want := []Individual{
		{URI: ex + "alice", Label: "Alice", Values: []string{"alice@example.org", "a@example.org"}},
		{URI: ex + "bob"},
	}
	if got := data["people"]; !reflect.DeepEqual(got, want) {
		t.Errorf("people = %#v, want %#v", got, want)
	}
}

func TestClassPropertyListDefaults(t *testing.T) {
	store := graph.NewMemoryStore(
		graph.NewTriple(ex+"dg", vocab.ForClass, graph.IRI(ex+"Person")),
	)
	g, err := NewClassPropertyListDataGetter(context.Background(), store, ex+"dg")
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}
	if g.SaveToVar != DefaultClassListVar {
		t.Errorf("SaveToVar = %q", g.SaveToVar)
	}

	if _, err := NewClassPropertyListDataGetter(context.Background(), testStore(t), ex+"noclass"); err == nil {
		t.Error("expected error without forClass")
	}
}

func TestClassPropertyListEmpty(t *testing.T) {
	g := NewEmptyClassPropertyListDataGetter()
	data, err := g.GetData(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}
	if list, ok := data[DefaultClassListVar].([]Individual); !ok || len(list) != 0 {
		t.Errorf("expected empty list, got %#v", data)
	}

	g.ForClass = ex + "Person"
	data, err = g.WithStore(testStore(t)).GetData(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}
	if list := data[DefaultClassListVar].([]Individual); len(list) != 2 {
		t.Errorf("expected 2 individuals, got %d", len(list))
	}
}

func TestFixedHTML(t *testing.T) {
	store := testStore(t)

	g, err := NewFixedHTMLDataGetter(context.Background(), store, ex+"html")
	if err != nil {
		t.Fatalf("constructor failed: %v", err)
	}
	data, err := g.GetData(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}
	if data["banner"] != "<b>hi</b>" {
		t.Errorf("data = %v", data)
	}

	if _, err := NewFixedHTMLDataGetter(context.Background(), store, ex+"nohtmlvar"); err == nil {
		t.Error("expected error without saveToVar")
	}
}

func TestClassGroupPageDataOmitted(t *testing.T) {
	store := graph.NewMemoryStore(
		graph.NewTriple(ex+"page", vocab.HasDataGetter, graph.IRI(ex+"cg")),
		graph.NewTriple(ex+"cg", vocab.RDFType, graph.IRI("java:edu.example.ClassGroupPageData")),
	)
	getters, err := datagetter.DataGettersForPage(context.Background(), store, ex+"page")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(getters) != 0 {
		t.Errorf("expected ClassGroupPageData to be omitted, got %d getters", len(getters))
	}
}

func TestBuiltinsOnSQLite(t *testing.T) {
	ctx := context.Background()
	store, err := graph.NewSQLiteStore(graph.SQLiteConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	triples, err := graph.LoadModel(strings.NewReader(testModel))
	if err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}
	if err := store.Add(ctx, triples...); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	s := datagetter.NewService(store)
	data, err := s.PageData(ctx, ex+"page1", nil)
	if err != nil {
		t.Fatalf("PageData failed: %v", err)
	}
	people, ok := data["people"].([]Individual)
	if !ok || len(people) != 2 || people[0].Label != "Alice" {
		t.Errorf("unexpected page data: %#v", data)
	}
}
