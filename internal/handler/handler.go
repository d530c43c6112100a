package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"horao/internal/domain"
	"horao/internal/service"
)

// NetworkHandler handles the network API
type NetworkHandler struct {
	svc           *service.NetworkService
	inventoryPath string
}

// NewNetworkHandler creates a new network handler
func NewNetworkHandler(svc *service.NetworkService) *NetworkHandler {
	return &NetworkHandler{svc: svc}
}

// SetInventoryPath sets the file reloaded by POST /api/reload
func (h *NetworkHandler) SetInventoryPath(path string) {
	h.inventoryPath = path
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// NetworkSummary is one entry of the network list
type NetworkSummary struct {
	Name     string                 `json:"name"`
	Type     domain.NetworkType     `json:"type"`
	Topology domain.NetworkTopology `json:"topology"`
	Devices  int                    `json:"devices"`
	Links    int                    `json:"links"`
}

// PartialResponse carries the classifications that succeeded when others
// failed; it is sent with 207 Multi-Status
type PartialResponse struct {
	Results []domain.Classification `json:"results"`
	Error   string                  `json:"error"`
	Details string                  `json:"details"`
}

// ClassifyRequest selects the network to classify; empty means all
type ClassifyRequest struct {
	Network string `json:"network"`
}

// ListNetworks returns a summary of every network
func (h *NetworkHandler) ListNetworks(w http.ResponseWriter, r *http.Request) {
	networks := h.svc.List()
	out := make([]NetworkSummary, 0, len(networks))
	for _, n := range networks {
		inv := n.Snapshot()
		out = append(out, NetworkSummary{
			Name:     n.Name(),
			Type:     n.Type(),
			Topology: n.Topology(),
			Devices:  len(inv.Devices()),
			Links:    len(inv.Links),
		})
	}

	h.writeJSON(w, out, http.StatusOK)
}

// GetNetwork returns the full inventory of a network
func (h *NetworkHandler) GetNetwork(w http.ResponseWriter, r *http.Request) {
	n, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, n, http.StatusOK)
}

// GetTopology classifies the current snapshot without recording it
func (h *NetworkHandler) GetTopology(w http.ResponseWriter, r *http.Request) {
	n, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, n.Classification(), http.StatusOK)
}

// GetGraph returns the connectivity graph and any build anomalies
func (h *NetworkHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	n, ok := h.lookup(w, r)
	if !ok {
		return
	}

	graph, err := n.Graph()
	resp := struct {
		Graph     *domain.Graph `json:"graph"`
		Anomalies []string      `json:"anomalies"`
	}{Graph: graph, Anomalies: []string{}}

	var buildErr *domain.BuildError
	if errors.As(err, &buildErr) {
		for _, a := range buildErr.Anomalies {
			resp.Anomalies = append(resp.Anomalies, a.Error())
		}
	}

	h.writeJSON(w, resp, http.StatusOK)
}

// GetHistory returns stored classifications, newest first
func (h *NetworkHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, "Invalid limit", "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	history, err := h.svc.History(r.Context(), r.PathValue("name"), limit)
	if err != nil {
		h.serviceError(w, "Failed to get history", err)
		return
	}

	h.writeJSON(w, history, http.StatusOK)
}

// Classify classifies one network, or all of them, and records the results
func (h *NetworkHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if req.Network != "" {
		c, err := h.svc.Classify(r.Context(), req.Network)
		if err != nil {
			h.serviceError(w, "Failed to classify network", err)
			return
		}
		h.writeJSON(w, []domain.Classification{c}, http.StatusOK)
		return
	}

	results, err := h.svc.ClassifyAll(r.Context())
	if err != nil && len(results) > 0 {
		h.writePartial(w, "Failed to classify some networks", results, err)
		return
	}
	if err != nil {
		h.serviceError(w, "Failed to classify networks", err)
		return
	}
	if results == nil {
		results = []domain.Classification{}
	}
	h.writeJSON(w, results, http.StatusOK)
}

// Reload reloads the inventory file and classifies every network
func (h *NetworkHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.inventoryPath == "" {
		h.writeError(w, "No inventory configured", "start the server with an inventory path", http.StatusConflict)
		return
	}

	results, err := h.svc.Reload(r.Context(), h.inventoryPath)
	if err != nil && len(results) > 0 {
		h.writePartial(w, "Failed to classify some networks", results, err)
		return
	}
	if err != nil {
		log.Printf("Failed to reload: %v", err)
		h.writeError(w, "Failed to reload inventory", err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if results == nil {
		results = []domain.Classification{}
	}
	h.writeJSON(w, results, http.StatusOK)
}

// Export writes every network in the requested format
func (h *NetworkHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
	case "yaml", "yml":
		w.Header().Set("Content-Type", "application/x-yaml")
	case "snappy", "binary":
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", `attachment; filename="networks.snappy"`)
	default:
		h.writeError(w, "Unsupported format", format, http.StatusBadRequest)
		return
	}

	if err := h.svc.Export(format, w); err != nil {
		log.Printf("Failed to export %s: %v", format, err)
	}
}

func (h *NetworkHandler) lookup(w http.ResponseWriter, r *http.Request) (*domain.DataCenterNetwork, bool) {
	n, err := h.svc.Get(r.PathValue("name"))
	if err != nil {
		h.serviceError(w, "Failed to get network", err)
		return nil, false
	}
	return n, true
}

func (h *NetworkHandler) serviceError(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, service.ErrNetworkNotFound) {
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
		return
	}
	log.Printf("%s: %v", msg, err)
	h.writeError(w, msg, err.Error(), http.StatusInternalServerError)
}

// Helper methods

// writePartial reports classifications that were recorded despite err
func (h *NetworkHandler) writePartial(w http.ResponseWriter, msg string, results []domain.Classification, err error) {
	log.Printf("%s: %v", msg, err)
	h.writeJSON(w, PartialResponse{
		Results: results,
		Error:   msg,
		Details: err.Error(),
	}, http.StatusMultiStatus)
}

func (h *NetworkHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *NetworkHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
