package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
)

// ActionHandler handles HTTP requests for gesture action bindings.
type ActionHandler struct {
	store    *store.Store
	resolver plugin.Resolver
}

// NewActionHandler creates a new ActionHandler. When resolver is non-nil,
// bindings must name a discovered plugin and one of its declared actions.
func NewActionHandler(s *store.Store, resolver plugin.Resolver) *ActionHandler {
	return &ActionHandler{store: s, resolver: resolver}
}

// ServeHTTP routes /api/actions and /api/actions/{id}.
func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := subpath(r, "/api/actions")

	if id == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createActionRequest struct {
	Gesture    string          `json:"gesture"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type updateActionRequest struct {
	Gesture    string          `json:"gesture"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type actionResponse struct {
	ID         string          `json:"id"`
	Gesture    string          `json:"gesture"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listActionsResponse struct {
	Actions []actionResponse `json:"actions"`
}

func toActionResponse(a *store.Action) actionResponse {
	config := a.Config
	if config == nil {
		config = json.RawMessage("{}")
	}
	return actionResponse{
		ID:         a.ID,
		Gesture:    a.Gesture,
		PluginName: a.PluginName,
		ActionName: a.ActionName,
		Config:     config,
		Enabled:    a.Enabled,
		CreatedAt:  a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// errBadRequest marks validation failures reported with status 400.
var errBadRequest = errors.New("bad request")

// resolveGesture maps a user-supplied name to a stored gesture label.
func (h *ActionHandler) resolveGesture(name string) (string, error) {
	label := gesture.NormalizeLabel(name)
	if label == gesture.None {
		return "", fmt.Errorf("%w: unknown gesture %q", errBadRequest, name)
	}
	ok, err := h.store.Gestures().Exists(string(label))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: gesture %q is not bindable", errBadRequest, label)
	}
	return string(label), nil
}

// checkPlugin verifies the plugin and action exist when a resolver is set.
func (h *ActionHandler) checkPlugin(pluginName, action string) error {
	if h.resolver == nil {
		return nil
	}
	p, err := h.resolver.Get(pluginName)
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			return fmt.Errorf("%w: plugin %q not found", errBadRequest, pluginName)
		}
		return err
	}
	if !p.Manifest.HasAction(action) {
		return fmt.Errorf("%w: plugin %q has no action %q", errBadRequest, pluginName, action)
	}
	return nil
}

func writeValidation(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, errBadRequest) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, fallback)
}

// list handles GET /api/actions.
func (h *ActionHandler) list(w http.ResponseWriter, r *http.Request) {
	actions, err := h.store.Actions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list actions")
		return
	}

	resp := listActionsResponse{Actions: make([]actionResponse, 0, len(actions))}
	for _, a := range actions {
		resp.Actions = append(resp.Actions, toActionResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

// get handles GET /api/actions/{id}.
func (h *ActionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	action, err := h.store.Actions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Action not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get action")
		return
	}
	writeJSON(w, http.StatusOK, toActionResponse(action))
}

// create handles POST /api/actions.
func (h *ActionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	switch {
	case req.Gesture == "":
		writeError(w, http.StatusBadRequest, "gesture is required")
		return
	case req.PluginName == "":
		writeError(w, http.StatusBadRequest, "plugin_name is required")
		return
	case req.ActionName == "":
		writeError(w, http.StatusBadRequest, "action_name is required")
		return
	}

	label, err := h.resolveGesture(req.Gesture)
	if err != nil {
		writeValidation(w, err, "Failed to verify gesture")
		return
	}
	if err := h.checkPlugin(req.PluginName, req.ActionName); err != nil {
		writeValidation(w, err, "Failed to verify plugin")
		return
	}

	action := &store.Action{
		Gesture:    label,
		PluginName: req.PluginName,
		ActionName: req.ActionName,
		Config:     req.Config,
		Enabled:    req.Enabled == nil || *req.Enabled,
	}
	if err := h.store.Actions().Create(action); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create action")
		return
	}

	writeJSON(w, http.StatusCreated, toActionResponse(action))
}

// update handles PUT /api/actions/{id}. Omitted fields keep their value.
func (h *ActionHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	action, err := h.store.Actions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Action not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get action")
		return
	}

	var req updateActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Gesture != "" {
		label, err := h.resolveGesture(req.Gesture)
		if err != nil {
			writeValidation(w, err, "Failed to verify gesture")
			return
		}
		action.Gesture = label
	}
	if req.PluginName != "" {
		action.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		action.ActionName = req.ActionName
	}
	if req.PluginName != "" || req.ActionName != "" {
		if err := h.checkPlugin(action.PluginName, action.ActionName); err != nil {
			writeValidation(w, err, "Failed to verify plugin")
			return
		}
	}
	if req.Config != nil {
		action.Config = req.Config
	}
	if req.Enabled != nil {
		action.Enabled = *req.Enabled
	}

	if err := h.store.Actions().Update(action); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update action")
		return
	}
	writeJSON(w, http.StatusOK, toActionResponse(action))
}

// delete handles DELETE /api/actions/{id}.
func (h *ActionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Actions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Action not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete action")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
