// Command system-control is an external mudra plugin for volume, display
// brightness and media playback keys.
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/go-vgo/robotgo"

	"github.com/ayusman/mudra/internal/plugin"
)

// mediaKeys maps each action to the robotgo key it taps.
var mediaKeys = map[string]string{
	"volume_up":        "audio_vol_up",
	"volume_down":      "audio_vol_down",
	"volume_mute":      "audio_mute",
	"brightness_up":    "lights_mon_up",
	"brightness_down":  "lights_mon_down",
	"media_play_pause": "audio_play",
	"media_next":       "audio_next",
	"media_prev":       "audio_prev",
}

type tapParams struct {
	Repeat int `json:"repeat"`
}

func main() {
	handlers := make(map[string]plugin.Handler, len(mediaKeys))
	for action, key := range mediaKeys {
		handlers[action] = tap(key)
	}
	if err := plugin.Serve(context.Background(), os.Stdin, os.Stdout, handlers); err != nil {
		os.Exit(1)
	}
}

// tap presses key once, or params.repeat times.
func tap(key string) plugin.Handler {
	return func(_ context.Context, req *plugin.Request) (json.RawMessage, error) {
		p := tapParams{Repeat: 1}
		if err := req.DecodeParams(&p); err != nil {
			return nil, err
		}
		for range max(p.Repeat, 1) {
			if err := robotgo.KeyTap(key); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}
