package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/plugin"
)

// PluginHandler lists in-process plugins and toggles them.
type PluginHandler struct {
	registry  *plugin.Registry
	externals *plugin.Manager
}

// NewPluginHandler creates a PluginHandler. externals may be nil.
func NewPluginHandler(reg *plugin.Registry, externals *plugin.Manager) *PluginHandler {
	return &PluginHandler{registry: reg, externals: externals}
}

type externalResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

type listPluginsResponse struct {
	Plugins   []plugin.Info      `json:"plugins"`
	Externals []externalResponse `json:"externals"`
}

// ServeHTTP handles GET /api/plugins and
// POST /api/plugins/{name}/enable|disable.
func (h *PluginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := subpath(r, "/api/plugins")
	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w)
		return
	}

	name, op, ok := strings.Cut(path, "/")
	if !ok || name == "" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var err error
	switch op {
	case "enable":
		err = h.registry.Enable(name)
	case "disable":
		err = h.registry.Disable(name)
	default:
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			writeError(w, http.StatusNotFound, "Plugin not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update plugin")
		return
	}

	for _, info := range h.registry.Plugins() {
		if info.Name == name {
			writeJSON(w, http.StatusOK, info)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Plugin not found")
}

func (h *PluginHandler) list(w http.ResponseWriter) {
	resp := listPluginsResponse{
		Plugins:   h.registry.Plugins(),
		Externals: []externalResponse{},
	}
	if resp.Plugins == nil {
		resp.Plugins = []plugin.Info{}
	}
	if h.externals != nil {
		for _, ext := range h.externals.List() {
			actions := ext.Manifest.Actions
			if actions == nil {
				actions = []string{}
			}
			resp.Externals = append(resp.Externals, externalResponse{
				Name:        ext.Manifest.Name,
				Version:     ext.Manifest.Version,
				Description: ext.Manifest.Description,
				Actions:     actions,
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
