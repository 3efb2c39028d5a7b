// Command keyboard is an external mudra plugin that sends keystrokes,
// shortcuts and typed text through robotgo.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/go-vgo/robotgo"

	"github.com/ayusman/mudra/internal/plugin"
)

type keyParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"`
	Text      string   `json:"text"`
}

// modifiers maps accepted modifier spellings to robotgo key names.
var modifiers = map[string]string{
	"command": "cmd",
	"cmd":     "cmd",
	"option":  "alt",
	"alt":     "alt",
	"control": "ctrl",
	"ctrl":    "ctrl",
	"shift":   "shift",
}

func main() {
	handlers := map[string]plugin.Handler{
		"keystroke": keystroke,
		"shortcut":  keystroke,
		"type":      typeText,
	}
	if err := plugin.Serve(context.Background(), os.Stdin, os.Stdout, handlers); err != nil {
		os.Exit(1)
	}
}

func keystroke(_ context.Context, req *plugin.Request) (json.RawMessage, error) {
	var p keyParams
	if err := req.DecodeParams(&p); err != nil {
		return nil, err
	}
	if p.Key == "" {
		return nil, errors.New("key is required")
	}

	var mods []string
	for _, m := range p.Modifiers {
		if name, ok := modifiers[strings.ToLower(m)]; ok {
			mods = append(mods, name)
		}
	}
	if len(mods) == 0 {
		return nil, robotgo.KeyTap(p.Key)
	}
	return nil, robotgo.KeyTap(p.Key, mods)
}

func typeText(_ context.Context, req *plugin.Request) (json.RawMessage, error) {
	var p keyParams
	if err := req.DecodeParams(&p); err != nil {
		return nil, err
	}
	if p.Text == "" {
		return nil, errors.New("text is required")
	}
	robotgo.TypeStr(p.Text)
	return nil, nil
}
