package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/quality"
)

// QualityHandler reports and resets the adaptive quality state.
type QualityHandler struct {
	controller *quality.Controller
	monitor    *quality.Monitor
}

// NewQualityHandler creates a QualityHandler. monitor may be nil.
func NewQualityHandler(c *quality.Controller, m *quality.Monitor) *QualityHandler {
	return &QualityHandler{controller: c, monitor: m}
}

type qualityResponse struct {
	Settings    quality.Settings `json:"settings"`
	Performance *quality.Report  `json:"performance,omitempty"`
	Samples     []quality.Sample `json:"samples"`
}

// ServeHTTP handles GET /api/quality and POST /api/quality/reset.
func (h *QualityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch subpath(r, "/api/quality") {
	case "":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.snapshot())
	case "reset":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.controller.Reset()
		writeJSON(w, http.StatusOK, h.snapshot())
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *QualityHandler) snapshot() qualityResponse {
	resp := qualityResponse{
		Settings: h.controller.Current(),
		Samples:  h.controller.Samples(),
	}
	if resp.Samples == nil {
		resp.Samples = []quality.Sample{}
	}
	if h.monitor != nil {
		report := h.monitor.Report()
		resp.Performance = &report
	}
	return resp
}
