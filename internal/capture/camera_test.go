package capture

import (
	"errors"
	"testing"
)

func TestNewCamera_Defaults(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		wantFPS    int
		wantWidth  int
		wantHeight int
	}{
		{
			name:       "zero options",
			opts:       Options{},
			wantFPS:    DefaultFPS,
			wantWidth:  DefaultWidth,
			wantHeight: DefaultHeight,
		},
		{
			name:       "explicit settings",
			opts:       Options{DeviceID: 1, Width: 640, Height: 480, FPS: 20},
			wantFPS:    20,
			wantWidth:  640,
			wantHeight: 480,
		},
		{
			name:       "half a resolution falls back",
			opts:       Options{Width: 640, FPS: 15},
			wantFPS:    15,
			wantWidth:  DefaultWidth,
			wantHeight: DefaultHeight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.opts)

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
			w, h := cam.Resolution()
			if w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("Resolution() = %dx%d, want %dx%d", w, h, tt.wantWidth, tt.wantHeight)
			}
			if cam.IsOpen() {
				t.Error("camera should not be open initially")
			}
		})
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(DefaultOptions())

	tests := []struct {
		name    string
		fps     int
		wantFPS int
	}{
		{name: "set to 20", fps: 20, wantFPS: 20},
		{name: "set to 1", fps: 1, wantFPS: 1},
		{name: "zero keeps previous", fps: 0, wantFPS: 1},
		{name: "negative keeps previous", fps: -5, wantFPS: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.SetFPS(tt.fps)
			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
		})
	}
}

func TestCamera_SetResolution(t *testing.T) {
	cam := NewCamera(DefaultOptions())

	cam.SetResolution(640, 480)
	if w, h := cam.Resolution(); w != 640 || h != 480 {
		t.Errorf("Resolution() = %dx%d, want 640x480", w, h)
	}

	cam.SetResolution(0, 720)
	cam.SetResolution(960, -1)
	if w, h := cam.Resolution(); w != 640 || h != 480 {
		t.Errorf("invalid sizes changed resolution to %dx%d", w, h)
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultOptions())

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultOptions())

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera = %v, want nil", err)
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(Options{Width: 640, Height: 480, FPS: 15})
	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat.Cols() != 640 || mat.Rows() != 480 {
			t.Logf("frame is %dx%d, camera may not support 640x480", mat.Cols(), mat.Rows())
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}
