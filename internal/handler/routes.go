package handler

import "net/http"

// RegisterExplorerRoutes mounts the explorer API (Go 1.22+ method patterns)
func RegisterExplorerRoutes(mux *http.ServeMux, explorer *ExplorerHandler, stream *StreamHandler) {
	mux.HandleFunc("POST /api/projects/{id}/views", explorer.OpenView)

	mux.HandleFunc("GET /api/views/{id}", explorer.GetView)
	mux.HandleFunc("DELETE /api/views/{id}", explorer.CloseView)
	mux.HandleFunc("GET /api/views/{id}/stream", stream.Stream)

	mux.HandleFunc("POST /api/views/{id}/nodes/{nodeId}/click", explorer.ClickNode)
	mux.HandleFunc("POST /api/views/{id}/nodes/{nodeId}/context", explorer.CycleContext)
	mux.HandleFunc("POST /api/views/{id}/nodes/{nodeId}/center", explorer.CenterOnNode)

	mux.HandleFunc("POST /api/views/{id}/expansion", explorer.SetExpansion)
	mux.HandleFunc("POST /api/views/{id}/gesture", explorer.Gesture)
	mux.HandleFunc("POST /api/views/{id}/minimap", explorer.MinimapClick)
	mux.HandleFunc("POST /api/views/{id}/resize", explorer.Resize)
	mux.HandleFunc("POST /api/views/{id}/reload", explorer.Reload)
}
