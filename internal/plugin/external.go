package plugin

import "encoding/json"

// Manifest describes an external plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// HasAction reports whether the manifest declares action.
func (m Manifest) HasAction(action string) bool {
	for _, a := range m.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Request is sent to an external plugin on stdin.
type Request struct {
	Action     string          `json:"action"`
	Gesture    string          `json:"gesture"`
	HandIndex  int             `json:"handIndex"`
	Handedness string          `json:"handedness,omitempty"`
	Params     json.RawMessage `json:"params"`
}

// Response is read from an external plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// External is a discovered executable plugin with its manifest and location.
type External struct {
	Manifest   Manifest
	Path       string
	Executable string
}
