// Package testdata embeds recorded detector sessions used by end-to-end
// tests.
package testdata

import (
	"embed"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

//go:embed sessions/*.jsonl
var sessionsFS embed.FS

// Session opens the named recorded session, e.g. "thumbs_up".
func Session(name string) (io.ReadCloser, error) {
	f, err := sessionsFS.Open(path.Join("sessions", name+".jsonl"))
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", name, err)
	}
	return f, nil
}

// Sessions lists the embedded session names in sorted order.
func Sessions() ([]string, error) {
	entries, err := sessionsFS.ReadDir("sessions")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".jsonl"))
	}
	sort.Strings(names)
	return names, nil
}
