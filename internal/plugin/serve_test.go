package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func serveString(t *testing.T, input string, handlers map[string]Handler) Response {
	t.Helper()
	var out bytes.Buffer
	if err := Serve(context.Background(), strings.NewReader(input), &out, handlers); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %q", out.String())
	}
	return resp
}

func TestServe_Dispatch(t *testing.T) {
	var got struct {
		Key string `json:"key"`
	}
	handlers := map[string]Handler{
		"keystroke": func(_ context.Context, req *Request) (json.RawMessage, error) {
			if err := req.DecodeParams(&got); err != nil {
				return nil, err
			}
			return json.RawMessage(`{"sent":true}`), nil
		},
		"broken": func(context.Context, *Request) (json.RawMessage, error) {
			return nil, errors.New("no display")
		},
	}

	tests := []struct {
		name  string
		input string
		want  Response
	}{
		{"success", `{"action":"keystroke","gesture":"OK","params":{"key":"a"}}`, Response{Success: true, Data: json.RawMessage(`{"sent":true}`)}},
		{"handler error", `{"action":"broken"}`, Response{Error: "action broken failed: no display"}},
		{"unknown action", `{"action":"dance"}`, Response{Error: "unknown action: dance"}},
		{"bad params", `{"action":"keystroke","params":{"key":1}}`, Response{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := serveString(t, tt.input, handlers)
			if tt.name == "bad params" {
				if resp.Success || !strings.Contains(resp.Error, "failed to parse params") {
					t.Errorf("unexpected response %+v", resp)
				}
				return
			}
			if diff := cmp.Diff(tt.want, resp); diff != "" {
				t.Errorf("response mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if got.Key != "a" {
		t.Errorf("params key = %q, want a", got.Key)
	}
}

func TestServe_InvalidRequest(t *testing.T) {
	resp := serveString(t, "not json", nil)
	if resp.Success || !strings.HasPrefix(resp.Error, "failed to decode request") {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestRequest_DecodeParamsEmpty(t *testing.T) {
	v := struct{ Key string }{Key: "keep"}
	for _, raw := range []json.RawMessage{nil, json.RawMessage("null")} {
		req := &Request{Params: raw}
		if err := req.DecodeParams(&v); err != nil {
			t.Errorf("DecodeParams(%q) error = %v", raw, err)
		}
	}
	if v.Key != "keep" {
		t.Errorf("empty params overwrote value: %+v", v)
	}
}
