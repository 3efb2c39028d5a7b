package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/input/desktop"
	"github.com/ayusman/mudra/internal/quality"
	"github.com/ayusman/mudra/internal/replay"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/tray"
)

type runOptions struct {
	noTray    bool
	noServer  bool
	staticDir string
	record    string
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the camera pipeline, control API and tray",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noTray, "no-tray", false, "Run without the system tray")
	cmd.Flags().BoolVar(&opts.noServer, "no-server", false, "Disable the HTTP control API")
	cmd.Flags().StringVar(&opts.staticDir, "static", "", "Serve a settings UI from this directory")
	cmd.Flags().StringVar(&opts.record, "record", "", "Record detector output to a JSON lines session file")
	return cmd
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, opts runOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	st, err := ctx.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	det, err := detector.NewMediaPipeDetector(cfg.DetectorConfig(cfg.Quality.Settings()))
	if err != nil {
		return fmt.Errorf("start detector: %w", err)
	}
	var pipelineDetector detector.Detector = det
	if opts.record != "" {
		f, err := os.Create(opts.record)
		if err != nil {
			det.Close()
			return fmt.Errorf("create session file: %w", err)
		}
		defer f.Close()
		pipelineDetector = replay.Record(det, replay.NewWriter(f, nil), logger.With("component", "replay"))
		logger.Info("recording session", "path", opts.record)
	}

	target, err := buildTarget(cfg)
	if err != nil {
		det.Close()
		return err
	}

	camera := capture.NewCamera(capture.Options{
		DeviceID: cfg.Detector.CameraID,
		Width:    cfg.Quality.Width,
		Height:   cfg.Quality.Height,
		FPS:      cfg.Quality.MaxFrameRate,
		Logger:   logger.With("component", "camera"),
	})

	a, err := app.New(cfg, app.Deps{
		Camera:   camera,
		Detector: pipelineDetector,
		Store:    st,
		Target:   target,
		Logger:   logger,
	})
	if err != nil {
		det.Close()
		return err
	}
	defer a.Close()

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(runCtx); err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	if cfg.Server.Enabled && !opts.noServer {
		srv := server.New(server.Config{
			StaticDir: opts.staticDir,
			Store:     st,
			Registry:  a.Registry(),
			Externals: a.Externals(),
			Quality:   a.Quality(),
			Monitor:   a.Monitor(),
			Bus:       a.Bus(),
			Status: func() server.Status {
				return server.Status{
					Enabled: a.IsEnabled(),
					Running: a.Running(),
					Frames:  a.Frames(),
					Hands:   len(a.Hands()),
				}
			},
			Logger: logger.With("component", "server"),
		})
		go func() {
			if err := srv.ListenAndServe(runCtx, cfg.Server.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	if opts.noTray {
		select {
		case <-runCtx.Done():
			return nil
		case err := <-serverErr:
			return fmt.Errorf("http server: %w", err)
		}
	}

	t := tray.New(cfg.Pinch.Mirror)
	t.OnToggle(a.SetEnabled)
	t.OnMirror(a.Pointer().SetMirror)
	t.OnResetQuality(a.Quality().Reset)
	t.OnSettings(func() {
		logger.Info("settings API", "url", "http://"+cfg.Server.ListenAddr+"/api/quality")
	})
	t.OnQuit(stop)
	t.SetQuality(a.Quality().Current().String())
	a.Quality().OnChange(func(s quality.Settings) { t.SetQuality(s.String()) })
	event.On(a.Bus(), func(e event.GestureStart) { t.SetLastGesture(e.Gesture) })

	go func() {
		select {
		case <-runCtx.Done():
		case err := <-serverErr:
			logger.Error("http server failed", "error", err)
			stop()
		}
		t.Quit()
	}()

	// systray owns the main thread until Quit.
	t.Run()
	return nil
}

// buildTarget returns the pointer backend selected in the configuration.
func buildTarget(cfg *config.Config) (input.Target, error) {
	switch cfg.Input.Backend {
	case "none":
		return nil, nil
	case "desktop":
		target, err := desktop.New(cfg.Pinch.SurfaceWidth, cfg.Pinch.SurfaceHeight)
		if err != nil {
			return nil, fmt.Errorf("desktop input: %w", err)
		}
		return target, nil
	default:
		return nil, fmt.Errorf("unsupported input backend %q", cfg.Input.Backend)
	}
}
