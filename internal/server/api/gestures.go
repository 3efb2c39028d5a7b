package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/store"
)

// GestureHandler lists the gesture labels actions can be bound to.
type GestureHandler struct {
	store *store.Store
}

// NewGestureHandler creates a new GestureHandler with the given store.
func NewGestureHandler(s *store.Store) *GestureHandler {
	return &GestureHandler{store: s}
}

type gestureResponse struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

type listGesturesResponse struct {
	Gestures []gestureResponse `json:"gestures"`
}

// ServeHTTP handles GET /api/gestures.
func (h *GestureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if subpath(r, "/api/gestures") != "" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	gestures, err := h.store.Gestures().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list gestures")
		return
	}

	resp := listGesturesResponse{Gestures: make([]gestureResponse, 0, len(gestures))}
	for _, g := range gestures {
		resp.Gestures = append(resp.Gestures, gestureResponse{Label: g.Label, Description: g.Description})
	}
	writeJSON(w, http.StatusOK, resp)
}
