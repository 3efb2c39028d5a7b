package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/clock"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/replay"
)

type replayOptions struct {
	format string
	moves  bool
	flush  time.Duration
}

func newReplayCommand(ctx *commandContext) *cobra.Command {
	var opts replayOptions

	cmd := &cobra.Command{
		Use:   "replay <session.jsonl>",
		Short: "Feed a recorded session through the gesture pipeline and print its events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, ctx, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "json", "Output format: json or table")
	cmd.Flags().BoolVar(&opts.moves, "moves", false, "Include pointer move events")
	cmd.Flags().DurationVar(&opts.flush, "flush", time.Second, "Clock time to run after the last frame so pending timers fire")
	return cmd
}

type replayedEvent struct {
	at       time.Duration
	envelope event.Envelope
}

func runReplay(cmd *cobra.Command, ctx *commandContext, path string, opts replayOptions) error {
	if opts.format != "json" && opts.format != "table" {
		return fmt.Errorf("unsupported format %q", opts.format)
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer f.Close()

	start := time.Unix(0, 0).UTC()
	clk := clock.NewMock(start)
	recorder := &input.Recorder{}

	// Replays never touch the store, so bound actions are not executed.
	a, err := app.New(cfg, app.Deps{
		Detector: detector.NewMockDetector(),
		Target:   recorder,
		Clock:    clk,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	var events []replayedEvent
	a.Bus().Subscribe(func(e event.Event) {
		if e.Kind() == event.KindPointerMove && !opts.moves {
			return
		}
		now := clk.Now()
		events = append(events, replayedEvent{at: now.Sub(start), envelope: event.Wrap(e, now)})
	})

	frames, err := replay.Play(cmd.Context(), replay.NewReader(f), clk, a.ProcessFrame)
	if err != nil {
		return fmt.Errorf("replay %s: %w", path, err)
	}
	if opts.flush > 0 {
		clk.Advance(opts.flush)
	}

	out := cmd.OutOrStdout()
	switch opts.format {
	case "table":
		rows := make([][]string, 0, len(events))
		for _, ev := range events {
			data, err := json.Marshal(ev.envelope.Data)
			if err != nil {
				return err
			}
			rows = append(rows, []string{fmt.Sprintf("%.0f", float64(ev.at)/float64(time.Millisecond)), string(ev.envelope.Type), string(data)})
		}
		fmt.Fprintln(out, renderTable([]string{"ms", "Event", "Data"}, rows, []columnAlignment{alignRight}))
	default:
		enc := json.NewEncoder(out)
		for _, ev := range events {
			if err := enc.Encode(ev.envelope); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "replayed %d frames, %d events, %d synthesized actions (%s)\n",
		frames, len(events), len(recorder.Actions()), summarizeActions(recorder.Types()))
	return nil
}

func summarizeActions(types []input.ActionType) string {
	counts := make(map[input.ActionType]int)
	var order []input.ActionType
	for _, t := range types {
		if t == input.ActionMove {
			continue
		}
		if counts[t] == 0 {
			order = append(order, t)
		}
		counts[t]++
	}
	if len(order) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(order))
	for _, t := range order {
		parts = append(parts, fmt.Sprintf("%s=%d", t, counts[t]))
	}
	return strings.Join(parts, " ")
}
