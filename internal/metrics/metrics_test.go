package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"cartograph/internal/service/explorer"
)

func TestExplorerObserver(t *testing.T) {
	obs := ExplorerObserver{}
	rebuilds := testutil.ToFloat64(HierarchyRebuildsTotal)
	entered := testutil.ToFloat64(TransitionsTotal.WithLabelValues("node", "enter"))
	exited := testutil.ToFloat64(TransitionsTotal.WithLabelValues("link", "exit"))

	obs.ObservePass(explorer.PassStats{
		Duration: 2 * time.Millisecond,
		Rebuilt:  true,
		Visible:  3,
		Diff: explorer.SceneDiff{
			Nodes: explorer.Diff{Entering: []string{"a", "b"}},
			Links: explorer.Diff{Exiting: []string{"c"}},
		},
	})

	assert.Equal(t, rebuilds+1, testutil.ToFloat64(HierarchyRebuildsTotal))
	assert.Equal(t, entered+2, testutil.ToFloat64(TransitionsTotal.WithLabelValues("node", "enter")))
	assert.Equal(t, exited+1, testutil.ToFloat64(TransitionsTotal.WithLabelValues("link", "exit")))

	obs.SetOpenViews(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(OpenViews))
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/views/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := Middleware(Routes(mux))

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "GET /api/views/{id}", "404")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/views/"+id, nil))
	}
	assert.Equal(t, before+2, testutil.ToFloat64(counter), "path values don't explode cardinality")

	unmatched := httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	before = testutil.ToFloat64(unmatched)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(unmatched))
}

func TestStatusWriter_DefaultsTo200(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}
	_, _ = sw.Write([]byte("ok"))
	sw.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusOK, sw.status, "status is fixed by the first write")
	sw.Flush()
	assert.True(t, rec.Flushed)
}
