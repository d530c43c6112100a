package handler

import (
	"net/http"

	"horao/internal/metrics"
)

// NewRouter wires the API, the SSE stream and the metrics endpoint
func NewRouter(h *NetworkHandler, events http.Handler, reg *metrics.Registry) http.Handler {
	mux := http.NewServeMux()

	// Networks
	mux.HandleFunc("GET /api/networks", h.ListNetworks)
	mux.HandleFunc("GET /api/networks/{name}", h.GetNetwork)
	mux.HandleFunc("GET /api/networks/{name}/topology", h.GetTopology)
	mux.HandleFunc("GET /api/networks/{name}/graph", h.GetGraph)
	mux.HandleFunc("GET /api/networks/{name}/history", h.GetHistory)

	// Actions
	mux.HandleFunc("POST /api/classify", h.Classify)
	mux.HandleFunc("POST /api/reload", h.Reload)

	// Export
	mux.HandleFunc("GET /api/export/{format}", h.Export)

	// SSE events endpoint
	if events != nil {
		mux.Handle("GET /events", events)
	}

	mux.Handle("GET /metrics", reg.Handler())

	return Chain(mux,
		Recover,
		Logger,
		Metrics(reg),
	)
}
