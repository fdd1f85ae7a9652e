package datagetter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openfroyo/pagedata/pkg/graph"
	"github.com/openfroyo/pagedata/pkg/telemetry"
	"github.com/openfroyo/pagedata/pkg/vocab"
)

// page1Store is the page:1 scenario: dg:1 is only an owl:Thing, dg:2 is a
// ClassPropertyListDataGetter.
func page1Store() *graph.MemoryStore {
	return graph.NewMemoryStore(
		link(page1, dg1),
		link(page1, dg2),
		typed(dg1, vocab.OWLThing),
		typed(dg2, ns+"ClassPropertyListDataGetter"),
	)
}

func newTestService(store graph.Store, rec *recorder, opts ...Option) *Service {
	opts = append([]Option{WithRegistry(newTestRegistry(rec))}, opts...)
	return NewService(store, opts...)
}

func TestDataGettersForPageScenario(t *testing.T) {
	rec := &recorder{}
	s := newTestService(page1Store(), rec)

	getters, err := s.DataGettersForPage(context.Background(), page1)
	if err != nil {
		t.Fatalf("DataGettersForPage failed: %v", err)
	}
	if len(getters) != 1 {
		t.Fatalf("expected 1 data getter, got %d", len(getters))
	}

	lg, ok := getters[0].(*listGetter)
	if !ok {
		t.Fatalf("unexpected type %T", getters[0])
	}
	if lg.uri != dg2 {
		t.Errorf("data getter built for %q, want %q", lg.uri, dg2)
	}
	if rec.fromGraph.Load() != 1 || rec.empty.Load() != 0 {
		t.Errorf("expected the graph constructor only, got graph=%d empty=%d",
			rec.fromGraph.Load(), rec.empty.Load())
	}
}

func TestDataGettersForPageNoLinks(t *testing.T) {
	s := newTestService(page1Store(), &recorder{})

	getters, err := s.DataGettersForPage(context.Background(), noLink)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if getters == nil || len(getters) != 0 {
		t.Errorf("expected empty result, got %#v", getters)
	}
}

func TestDataGettersForPageSkipsLinkErrors(t *testing.T) {
	store := graph.NewMemoryStore(
		link(page1, "http://example.org/dg/thing"),
		link(page1, "http://example.org/dg/missing"),
		link(page1, "http://example.org/dg/legacy"),
		link(page1, "http://example.org/dg/broken"),
		link(page1, "http://example.org/dg/noctor"),
		link(page1, dg2),
		link(page1, dg3),
		typed("http://example.org/dg/thing", vocab.OWLThing),
		typed("http://example.org/dg/missing", ns+"Unregistered"),
		typed("http://example.org/dg/legacy", ns+"Legacy"),
		typed("http://example.org/dg/broken", ns+"Broken"),
		typed("http://example.org/dg/noctor", ns+"NoConstructor"),
		typed(dg2, ns+"ClassPropertyListDataGetter"),
		typed(dg3, ns+"EmptyOnly"),
	)
	s := newTestService(store, &recorder{})

	res, err := s.Resolve(context.Background(), page1)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	wantReasons := []string{
		string(KindNoUsableType),
		string(KindImplementationNotFound),
		telemetry.SkipCapabilityMismatch,
		string(KindConstruction),
		string(KindConstruction),
		"",
		"",
	}
	if len(res.Links) != len(wantReasons) {
		t.Fatalf("expected %d links, got %d", len(wantReasons), len(res.Links))
	}
	for i, want := range wantReasons {
		l := res.Links[i]
		if l.Reason != want {
			t.Errorf("link %d (%s): reason %q, want %q", i, l.URI, l.Reason, want)
		}
		if l.Skipped != (want != "") {
			t.Errorf("link %d (%s): skipped = %v", i, l.URI, l.Skipped)
		}
	}

	getters := res.Getters()
	if len(getters) != 2 {
		t.Fatalf("expected 2 getters, got %d", len(getters))
	}
	if getters[0].(*listGetter).viaPath != "graph" || getters[1].(*listGetter).viaPath != "empty" {
		t.Error("getters out of link order")
	}
}

func TestDataGettersForPageStoreErrorAborts(t *testing.T) {
	tests := []struct {
		name      string
		predicate string
	}{
		{"link query fails", vocab.HasDataGetter},
		{"type query fails", vocab.RDFType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &faultyStore{
				MemoryStore:   page1Store(),
				failPredicate: tt.predicate,
				err:           errors.New("store offline"),
			}
			s := newTestService(store, &recorder{})

			getters, err := s.DataGettersForPage(context.Background(), page1)
			if !IsStoreAccess(err) {
				t.Fatalf("expected store access error, got %v", err)
			}
			if getters != nil {
				t.Errorf("expected no getters, got %v", getters)
			}
			if store.entered.Load() != store.released.Load() {
				t.Errorf("read section leaked: entered %d released %d",
					store.entered.Load(), store.released.Load())
			}
		})
	}
}

func TestDataGettersForPageInvalidInput(t *testing.T) {
	s := newTestService(page1Store(), &recorder{})
	if _, err := s.DataGettersForPage(context.Background(), ""); !IsInvalidInput(err) {
		t.Errorf("expected invalid input error, got %v", err)
	}
}

func TestDataGettersForPageIdempotent(t *testing.T) {
	store := graph.NewMemoryStore(
		link(page1, dg1),
		link(page1, dg2),
		link(page1, dg3),
		typed(dg1, ns+"EmptyOnly"),
		typed(dg2, vocab.OWLThing),
		typed(dg3, ns+"ClassPropertyListDataGetter"),
	)
	rec := &recorder{}
	s := newTestService(store, rec)
	ctx := context.Background()

	first, err := s.DataGettersForPage(ctx, page1)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	second, err := s.DataGettersForPage(ctx, page1)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("length changed: %d then %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i].(*listGetter), second[i].(*listGetter)
		if a.viaPath != b.viaPath || a.uri != b.uri {
			t.Errorf("position %d differs: %+v vs %+v", i, a, b)
		}
		if a == b {
			t.Errorf("position %d: instance reused across calls", i)
		}
	}
}

func TestPageData(t *testing.T) {
	store := graph.NewMemoryStore(
		link(page1, dg1),
		link(page1, dg2),
		typed(dg1, ns+"Failing"),
		typed(dg2, ns+"ClassPropertyListDataGetter"),
	)
	var buf bytes.Buffer
	tel := telemetry.NewNopTelemetry()
	tel.Logger = telemetry.NewLoggerWithWriter(&buf, "debug")
	s := newTestService(store, &recorder{}, WithTelemetry(tel))

	data, err := s.PageData(context.Background(), page1, map[string]any{"pageUri": page1})
	if err != nil {
		t.Fatalf("PageData failed: %v", err)
	}
	if data["list"] != dg2 {
		t.Errorf("merged data = %v", data)
	}
	if len(data) != 1 {
		t.Errorf("failing getter contributed data: %v", data)
	}
	if !strings.Contains(buf.String(), "data getter failed") {
		t.Errorf("expected the failure to be logged, got:\n%s", buf.String())
	}
}

func TestResolveLogsSkippedLinks(t *testing.T) {
	var buf bytes.Buffer
	tel := telemetry.NewNopTelemetry()
	tel.Logger = telemetry.NewLoggerWithWriter(&buf, "debug")
	s := newTestService(page1Store(), &recorder{}, WithTelemetry(tel))

	res, err := s.Resolve(context.Background(), page1)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		if entry["message"] == "skipping data getter" {
			found = true
			if entry["data_getter_uri"] != dg1 || entry["page_uri"] != page1 || entry["resolution_id"] != res.ID {
				t.Errorf("skip log missing fields: %v", entry)
			}
			if entry["level"] != "warn" {
				t.Errorf("skip logged at %v", entry["level"])
			}
		}
	}
	if !found {
		t.Errorf("no skip log line in:\n%s", buf.String())
	}
}

func TestResolveMetrics(t *testing.T) {
	metrics, err := telemetry.NewMetrics(telemetry.DefaultConfig().Metrics)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	tel := telemetry.NewNopTelemetry()
	tel.Metrics = metrics
	s := newTestService(page1Store(), &recorder{}, WithTelemetry(tel))

	if _, err := s.DataGettersForPage(context.Background(), page1); err != nil {
		t.Fatalf("DataGettersForPage failed: %v", err)
	}

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`pagedata_links_enumerated_total 2`,
		`pagedata_links_skipped_total{reason="no_usable_type"} 1`,
		`pagedata_getters_resolved_total{implementation="ClassPropertyListDataGetter"} 1`,
		`pagedata_page_resolutions_total{status="ok"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestPackageDataGettersForPage(t *testing.T) {
	// dg:1 has no usable type and dg:2 carries none of the configuration a
	// real ClassPropertyListDataGetter needs, so both links are skipped.
	getters, err := DataGettersForPage(context.Background(), page1Store(), page1)
	if err != nil {
		t.Fatalf("DataGettersForPage failed: %v", err)
	}
	if len(getters) != 0 {
		t.Errorf("expected no getters, got %d", len(getters))
	}
}

func TestDataGettersForPageSkipsMisbehavingConstructors(t *testing.T) {
	store := graph.NewMemoryStore(
		link(page1, "http://example.org/dg/boom"),
		link(page1, "http://example.org/dg/nil"),
		link(page1, dg2),
		typed("http://example.org/dg/boom", ns+"Panicking"),
		typed("http://example.org/dg/nil", ns+"NilFromGraph"),
		typed(dg2, ns+"ClassPropertyListDataGetter"),
	)
	s := newTestService(store, &recorder{})
	ctx := context.Background()

	getters, err := s.DataGettersForPage(ctx, page1)
	if err != nil {
		t.Fatalf("DataGettersForPage failed: %v", err)
	}
	if len(getters) != 1 || getters[0].(*listGetter).uri != dg2 {
		t.Fatalf("expected only the dg2 getter, got %#v", getters)
	}

	data, err := s.PageData(ctx, page1, nil)
	if err != nil {
		t.Fatalf("PageData failed: %v", err)
	}
	if data["list"] != dg2 {
		t.Errorf("data = %v", data)
	}
}
