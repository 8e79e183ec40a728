package handler

import (
	"log/slog"
	"net/http"

	explorerSvc "cartograph/internal/domain/services/explorer"
	"cartograph/internal/httputil"
)

// ExplorerHandler handles HTTP requests for explorer views
type ExplorerHandler struct {
	viewService explorerSvc.ViewService
	logger      *slog.Logger
}

// NewExplorerHandler creates a new explorer handler
func NewExplorerHandler(viewService explorerSvc.ViewService, logger *slog.Logger) *ExplorerHandler {
	return &ExplorerHandler{
		viewService: viewService,
		logger:      logger,
	}
}

// OpenView mounts an explorer on a project
// POST /api/projects/{id}/views
func (h *ExplorerHandler) OpenView(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var req explorerSvc.OpenViewRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ProjectID = projectID

	state, err := h.viewService.OpenView(r.Context(), httputil.GetUserID(r), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondCreated(w, "/api/views/"+state.ViewID, state)
}

// GetView runs a render pass and returns it
// GET /api/views/{id}
func (h *ExplorerHandler) GetView(w http.ResponseWriter, r *http.Request) {
	viewID, ok := PathParam(w, r, "id", "View ID")
	if !ok {
		return
	}

	state, err := h.viewService.GetView(r.Context(), httputil.GetUserID(r), viewID)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, state)
}

// CloseView discards a view
// DELETE /api/views/{id}
func (h *ExplorerHandler) CloseView(w http.ResponseWriter, r *http.Request) {
	viewID, ok := PathParam(w, r, "id", "View ID")
	if !ok {
		return
	}

	if err := h.viewService.CloseView(r.Context(), httputil.GetUserID(r), viewID); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClickNode handles a left click
// POST /api/views/{id}/nodes/{nodeId}/click
func (h *ExplorerHandler) ClickNode(w http.ResponseWriter, r *http.Request) {
	viewID, nodeID, ok := viewAndNode(w, r)
	if !ok {
		return
	}

	var req explorerSvc.ClickRequest
	if err := httputil.ParseOptionalJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.viewService.ClickNode(r.Context(), httputil.GetUserID(r), viewID, nodeID, &req)
	h.respond(w, state, err)
}

// CycleContext handles a right click
// POST /api/views/{id}/nodes/{nodeId}/context
func (h *ExplorerHandler) CycleContext(w http.ResponseWriter, r *http.Request) {
	viewID, nodeID, ok := viewAndNode(w, r)
	if !ok {
		return
	}

	state, err := h.viewService.CycleContext(r.Context(), httputil.GetUserID(r), viewID, nodeID)
	h.respond(w, state, err)
}

// CenterOnNode animates the viewport onto a node
// POST /api/views/{id}/nodes/{nodeId}/center
func (h *ExplorerHandler) CenterOnNode(w http.ResponseWriter, r *http.Request) {
	viewID, nodeID, ok := viewAndNode(w, r)
	if !ok {
		return
	}

	state, err := h.viewService.CenterOnNode(r.Context(), httputil.GetUserID(r), viewID, nodeID)
	h.respond(w, state, err)
}

// SetExpansion applies a bulk expansion change
// POST /api/views/{id}/expansion
func (h *ExplorerHandler) SetExpansion(w http.ResponseWriter, r *http.Request) {
	viewID, ok := PathParam(w, r, "id", "View ID")
	if !ok {
		return
	}

	var req explorerSvc.ExpansionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.viewService.SetExpansion(r.Context(), httputil.GetUserID(r), viewID, &req)
	h.respond(w, state, err)
}

// Gesture feeds a pan/zoom event
// POST /api/views/{id}/gesture
func (h *ExplorerHandler) Gesture(w http.ResponseWriter, r *http.Request) {
	viewID, ok := PathParam(w, r, "id", "View ID")
	if !ok {
		return
	}

	var req explorerSvc.GestureRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.viewService.Gesture(r.Context(), httputil.GetUserID(r), viewID, &req)
	h.respond(w, state, err)
}

// MinimapClick recenters on an overview position
// POST /api/views/{id}/minimap
func (h *ExplorerHandler) MinimapClick(w http.ResponseWriter, r *http.Request) {
	viewID, ok := PathParam(w, r, "id", "View ID")
	if !ok {
		return
	}

	var req explorerSvc.PointRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.viewService.MinimapClick(r.Context(), httputil.GetUserID(r), viewID, &req)
	h.respond(w, state, err)
}

// Resize reports new viewport dimensions
// POST /api/views/{id}/resize
func (h *ExplorerHandler) Resize(w http.ResponseWriter, r *http.Request) {
	viewID, ok := PathParam(w, r, "id", "View ID")
	if !ok {
		return
	}

	var req explorerSvc.ResizeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := h.viewService.Resize(r.Context(), httputil.GetUserID(r), viewID, &req)
	h.respond(w, state, err)
}

// Reload re-reads the project's nodes
// POST /api/views/{id}/reload
func (h *ExplorerHandler) Reload(w http.ResponseWriter, r *http.Request) {
	viewID, ok := PathParam(w, r, "id", "View ID")
	if !ok {
		return
	}

	state, err := h.viewService.Reload(r.Context(), httputil.GetUserID(r), viewID)
	h.respond(w, state, err)
}

func (h *ExplorerHandler) respond(w http.ResponseWriter, state *explorerSvc.ViewState, err error) {
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, state)
}

func viewAndNode(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	viewID, ok := PathParam(w, r, "id", "View ID")
	if !ok {
		return "", "", false
	}
	nodeID, ok := PathParam(w, r, "nodeId", "Node ID")
	if !ok {
		return "", "", false
	}
	return viewID, nodeID, true
}
