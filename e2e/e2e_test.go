package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/clock"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/replay"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/testdata"
)

type harness struct {
	app      *app.App
	clock    *clock.Mock
	recorder *input.Recorder
	store    *store.Store
	events   []event.Kind
}

func newHarness(t *testing.T, pluginDir string) *harness {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cfg := config.Default()
	cfg.Input.Backend = "none"
	cfg.Storage.PluginDir = pluginDir
	if pluginDir == "" {
		cfg.Storage.PluginDir = filepath.Join(t.TempDir(), "plugins")
	}

	h := &harness{
		clock:    clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		recorder: &input.Recorder{},
		store:    s,
	}
	a, err := app.New(&cfg, app.Deps{
		Detector: detector.NewMockDetector(),
		Store:    s,
		Target:   h.recorder,
		Clock:    h.clock,
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	h.app = a

	a.Bus().Subscribe(func(e event.Event) {
		if e.Kind() != event.KindPointerMove {
			h.events = append(h.events, e.Kind())
		}
	})
	return h
}

func (h *harness) play(t *testing.T, session string) {
	t.Helper()
	f, err := testdata.Session(session)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	defer f.Close()

	if _, err := replay.Play(context.Background(), replay.NewReader(f), h.clock, h.app.ProcessFrame); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	h.clock.Advance(time.Second)
}

func contains[T comparable](items []T, want T) bool {
	for _, it := range items {
		if it == want {
			return true
		}
	}
	return false
}

func TestE2E_SessionsSynthesizeInput(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tests := []struct {
		session string
		event   event.Kind
		action  input.ActionType
	}{
		{"thumbs_up", event.KindClick, input.ActionClick},
		{"double_thumbs_up", event.KindDoubleClick, input.ActionDoubleClick},
		{"pinch", event.KindPinchStart, input.ActionDown},
		{"victory_scroll", event.KindScrolling, input.ActionWheel},
	}

	for _, tt := range tests {
		t.Run(tt.session, func(t *testing.T) {
			h := newHarness(t, "")
			h.play(t, tt.session)

			if !contains(h.events, tt.event) {
				t.Errorf("events %v missing %s", h.events, tt.event)
			}
			if types := h.recorder.Types(); !contains(types, tt.action) {
				t.Errorf("actions %v missing %s", types, tt.action)
			}
		})
	}
}

func TestE2E_PinchReleasesButton(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	h := newHarness(t, "")
	h.play(t, "pinch")

	var buttons []input.ActionType
	for _, typ := range h.recorder.Types() {
		if typ == input.ActionDown || typ == input.ActionUp {
			buttons = append(buttons, typ)
		}
	}
	if len(buttons) != 2 || buttons[0] != input.ActionDown || buttons[1] != input.ActionUp {
		t.Errorf("button actions = %v, want [down up]", buttons)
	}
}

// writeCapturePlugin installs a plugin that saves its request next to itself.
func writeCapturePlugin(t *testing.T, dir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	pluginDir := filepath.Join(dir, "capture")
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	script := "#!/bin/sh\ncat > \"$(dirname \"$0\")/request.json\"\necho '{\"success\":true}'\n"
	if err := os.WriteFile(filepath.Join(pluginDir, "capture.sh"), []byte(script), 0755); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	manifest := `{"name":"capture","version":"1.0.0","executable":"capture.sh","actions":["record"]}`
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), []byte(manifest), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return filepath.Join(pluginDir, "request.json")
}

func TestE2E_APIBoundActionRuns(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	pluginDir := t.TempDir()
	requestPath := writeCapturePlugin(t, pluginDir)
	h := newHarness(t, pluginDir)

	srv := server.New(server.Config{
		Store:     h.store,
		Registry:  h.app.Registry(),
		Externals: h.app.Externals(),
		Quality:   h.app.Quality(),
		Bus:       h.app.Bus(),
		Clock:     h.clock,
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Close()

	resp, err := ts.Client().Post(ts.URL+"/api/actions", "application/json",
		strings.NewReader(`{"gesture":"Thumb_Up","plugin_name":"capture","action_name":"record","config":{"note":"hi"}}`))
	if err != nil {
		t.Fatalf("POST /api/actions error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create action status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events?types=gesturestart"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.Clients() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("event client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.play(t, "thumbs_up")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env struct {
		Type string `json:"type"`
		Data struct {
			Gesture string `json:"gesture"`
		} `json:"data"`
	}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if env.Type != "gesturestart" || env.Data.Gesture != "Thumb_Up" {
		t.Errorf("streamed %+v", env)
	}

	// The action plugin runs on its own worker; wait for the script output.
	var data []byte
	deadline = time.Now().Add(5 * time.Second)
	for {
		data, err = os.ReadFile(requestPath)
		if err == nil && len(data) > 0 && json.Valid(data) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("plugin was not executed: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	var req struct {
		Action  string          `json:"action"`
		Gesture string          `json:"gesture"`
		Params  json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if req.Action != "record" || req.Gesture != "Thumb_Up" || string(req.Params) != `{"note":"hi"}` {
		t.Errorf("plugin received %+v", req)
	}
}

func TestE2E_HealthAndQuality(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	h := newHarness(t, "")
	srv := server.New(server.Config{
		Quality: h.app.Quality(),
		Monitor: h.app.Monitor(),
		Status: func() server.Status {
			return server.Status{Enabled: h.app.IsEnabled(), Frames: h.app.Frames(), Hands: len(h.app.Hands())}
		},
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	h.play(t, "thumbs_up")

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	var health struct {
		Status   string        `json:"status"`
		Pipeline server.Status `json:"pipeline"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if health.Status != "ok" || !health.Pipeline.Enabled {
		t.Errorf("health = %+v", health)
	}
	if health.Pipeline.Frames != 20 {
		t.Errorf("frames = %d, want 20", health.Pipeline.Frames)
	}
}
