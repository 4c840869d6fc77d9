package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister_Idempotent(t *testing.T) {
	RegisterRecognizerMetrics()
	RegisterRecognizerMetrics()
	RegisterCatalogMetrics()
	RegisterCatalogMetrics()
	RegisterHTTPMetrics()
	RegisterHTTPMetrics()
}

func TestCatalogMetrics_Observe(t *testing.T) {
	before := testutil.ToFloat64(IngestDocumentsTotal.WithLabelValues("created"))
	IngestDocumentsTotal.WithLabelValues("created").Inc()
	if got := testutil.ToFloat64(IngestDocumentsTotal.WithLabelValues("created")); got != before+1 {
		t.Errorf("ingest_documents_total = %f, want %f", got, before+1)
	}

	PredicateConstraints.WithLabelValues("query").Observe(2)
	if n := testutil.CollectAndCount(PredicateConstraints); n == 0 {
		t.Error("expected search_predicate_constraints observations")
	}
}
