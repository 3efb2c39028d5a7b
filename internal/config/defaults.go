package config

const (
	defaultConfigPath = "~/.config/mudra/config.toml"
	defaultDBPath     = "~/.local/share/mudra/mudra.db"
	defaultPluginDir  = "~/.local/share/mudra/plugins"
	defaultListenAddr = "127.0.0.1:7070"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Gesture: Gesture{
			WindowSize: 8,
			MinCount:   5,
			MinScore:   0.7,
			Hysteresis: 0.1,
			DebounceMs: 100,
		},
		Pinch: Pinch{
			StartThreshold: 0.045,
			EndThreshold:   0.065,
			Padding:        24,
			SurfaceWidth:   1280,
			SurfaceHeight:  720,
			Mirror:         true,
		},
		Click: Click{
			ClickDurationMs: 300,
			DoubleClickMs:   500,
			PrimaryGesture:  "Thumb_Up",
			ContextGesture:  "OK",
		},
		Scroll: Scroll{
			Sensitivity: 6,
			Deadband:    3,
			Gesture:     "Victory",
		},
		Quality: Quality{
			Adaptive:        true,
			CooldownMs:      5000,
			HistorySeconds:  30,
			MinSamples:      10,
			Width:           960,
			Height:          720,
			MaxHands:        2,
			ModelComplexity: 1,
			MaxFrameRate:    30,
			Smoothing:       true,
			Restore:         true,
		},
		Performance: Performance{
			TargetFPS:      30,
			MainBudgetMs:   5,
			WorkerBudgetMs: 25,
			Window:         60,
		},
		Tracking: Tracking{
			Enabled:           false,
			MaxJump:           0.25,
			HandednessPenalty: 0.15,
			Patience:          5,
		},
		Detector: Detector{
			CameraID:              0,
			MinConfidence:         0.5,
			MinTrackingConfidence: 0.5,
			StillThreshold:        0.5,
		},
		Input: Input{
			Backend: "desktop",
			Slot:    0,
		},
		Plugins: Plugins{
			CompensateOnDisable: true,
		},
		Server: Server{
			Enabled:    true,
			ListenAddr: defaultListenAddr,
		},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
		Storage: Storage{
			DBPath:          defaultDBPath,
			PluginDir:       defaultPluginDir,
			ActionTimeoutMs: 5000,
			ActionQueueSize: 16,
		},
	}
}
