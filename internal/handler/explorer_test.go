package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartograph/internal/config"
	"cartograph/internal/domain"
	"cartograph/internal/domain/models/docsystem"
	explorerSvc "cartograph/internal/domain/services/explorer"
	"cartograph/internal/handler/sse"
	"cartograph/internal/httputil"
	serviceExplorer "cartograph/internal/service/explorer"
)

const testUser = "00000000-0000-0000-0000-000000000001"

type stubNodeRepo struct {
	nodes []docsystem.DocumentNode
}

func (r *stubNodeRepo) ListByProject(ctx context.Context, userID, projectID string) ([]docsystem.DocumentNode, error) {
	if projectID != "p1" || userID != testUser {
		return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}
	return r.nodes, nil
}

func strPtr(s string) *string { return &s }

func testNodes() []docsystem.DocumentNode {
	return []docsystem.DocumentNode{
		{ID: "root", Name: "Research", Kind: docsystem.NodeKindFolder},
		{ID: "notes", Name: "Notes", Kind: docsystem.NodeKindFolder, ParentID: strPtr("root")},
		{ID: "d1", Name: "intro.md", Kind: docsystem.NodeKindDocument, ParentID: strPtr("notes")},
	}
}

type testServer struct {
	mux *http.ServeMux
	svc *serviceExplorer.ViewService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := serviceExplorer.NewViewService(&stubNodeRepo{nodes: testNodes()}, config.DefaultExplorerConfig(), logger)

	mux := http.NewServeMux()
	stream := NewStreamHandler(svc, &sse.Config{
		KeepAliveInterval: time.Minute,
		FrameInterval:     5 * time.Millisecond,
		IdleInterval:      10 * time.Millisecond,
	}, logger)
	RegisterExplorerRoutes(mux, NewExplorerHandler(svc, logger), stream)
	return &testServer{mux: mux, svc: svc}
}

func (s *testServer) do(t *testing.T, user, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req = httputil.WithCaller(req, httputil.Caller{UserID: user})
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) open(t *testing.T) explorerSvc.ViewState {
	t.Helper()
	rec := s.do(t, testUser, http.MethodPost, "/api/projects/p1/views", `{"viewport_width":800,"viewport_height":600}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var state explorerSvc.ViewState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "/api/views/"+state.ViewID, rec.Header().Get("Location"))
	return state
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestExplorerHandler_OpenAndGet(t *testing.T) {
	s := newTestServer(t)
	state := s.open(t)

	assert.Equal(t, "p1", state.ProjectID)
	assert.Equal(t, 3, state.Stats.Nodes)
	require.Len(t, state.Pass.Nodes, 2, "root expanded, notes collapsed")

	rec := s.do(t, testUser, http.MethodGet, "/api/views/"+state.ViewID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExplorerHandler_OpenErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, testUser, http.MethodPost, "/api/projects/p1/views", `{"viewport_width":800,"viewport_height":600,"zoom":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown fields are rejected")

	rec = s.do(t, testUser, http.MethodPost, "/api/projects/p1/views", `{"viewport_width":0,"viewport_height":600}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, testUser, http.MethodPost, "/api/projects/other/views", `{"viewport_width":800,"viewport_height":600}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExplorerHandler_UnknownViewCarriesID(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, testUser, http.MethodGet, "/api/views/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	problem := decodeProblem(t, rec)
	assert.Equal(t, "missing", problem["view_id"])
	assert.EqualValues(t, 404, problem["status"])
}

func TestExplorerHandler_ForeignViewIsForbidden(t *testing.T) {
	s := newTestServer(t)
	state := s.open(t)

	rec := s.do(t, "someone-else", http.MethodPost, "/api/views/"+state.ViewID+"/nodes/root/click", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExplorerHandler_Interactions(t *testing.T) {
	s := newTestServer(t)
	id := s.open(t).ViewID

	rec := s.do(t, testUser, http.MethodPost, "/api/views/"+id+"/nodes/notes/click", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var state explorerSvc.ViewState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.Expanded.Has("notes"))
	assert.Len(t, state.Pass.Nodes, 3)

	rec = s.do(t, testUser, http.MethodPost, "/api/views/"+id+"/nodes/d1/click", `{"multi":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.Selection.Selected.Has("notes"))
	assert.True(t, state.Selection.Selected.Has("d1"))

	rec = s.do(t, testUser, http.MethodPost, "/api/views/"+id+"/nodes/d1/context", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.True(t, state.Context.Included.Has("d1"))

	rec = s.do(t, testUser, http.MethodPost, "/api/views/"+id+"/expansion", `{"action":"collapse_all"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, testUser, http.MethodPost, "/api/views/"+id+"/gesture", `{"type":"wheel","delta_y":-500,"x":400,"y":300}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.InDelta(t, 2, state.Pass.Transform.Scale, 1e-6)

	rec = s.do(t, testUser, http.MethodPost, "/api/views/"+id+"/minimap", `{"x":75,"y":50}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, testUser, http.MethodPost, "/api/views/"+id+"/resize", `{"width":1024,"height":768}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, testUser, http.MethodPost, "/api/views/"+id+"/reload", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, testUser, http.MethodPost, "/api/views/"+id+"/nodes/root/center", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, testUser, http.MethodPost, "/api/views/"+id+"/expansion", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExplorerHandler_Close(t *testing.T) {
	s := newTestServer(t)
	id := s.open(t).ViewID

	rec := s.do(t, testUser, http.MethodDelete, "/api/views/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, s.svc.OpenViews())

	rec = s.do(t, testUser, http.MethodDelete, "/api/views/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: bad", domain.ErrValidation), http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("view x: %w", domain.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("project: %w", domain.ErrNotFound), http.StatusNotFound},
		{&domain.ViewNotFoundError{ViewID: "v"}, http.StatusNotFound},
		{fmt.Errorf("%w: full", domain.ErrCapacity), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		handleError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
	}

	rec := httptest.NewRecorder()
	handleError(rec, errors.New("secret detail"))
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestStreamHandler_SendsFramesUntilCancelled(t *testing.T) {
	s := newTestServer(t)
	id := s.open(t).ViewID

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/views/"+id+"/stream", nil).WithContext(ctx)
	req = httputil.WithCaller(req, httputil.Caller{UserID: testUser})
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "id: 1\nevent: frame\ndata: {")
	assert.NotContains(t, body, "event: closed")
}

func TestStreamHandler_UnknownViewIsPlainError(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, testUser, http.MethodGet, "/api/views/missing/stream", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestStreamHandler_ClosedEventWhenViewGoes(t *testing.T) {
	s := newTestServer(t)
	id := s.open(t).ViewID

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/views/"+id+"/stream", nil).WithContext(ctx)
	req = httputil.WithCaller(req, httputil.Caller{UserID: testUser})
	rec := httptest.NewRecorder()

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = s.svc.CloseView(context.Background(), testUser, id)
	}()
	s.mux.ServeHTTP(rec, req)

	require.NoError(t, ctx.Err(), "stream should end on its own")
	assert.Contains(t, rec.Body.String(), "event: closed")
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)
	s.open(t)

	rec := httptest.NewRecorder()
	NewHealthHandler(s.svc, "file").HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 1, body["open_views"])
	assert.Equal(t, "file", body["node_source"])
}
