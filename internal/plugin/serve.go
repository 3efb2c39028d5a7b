package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Handler runs one action inside an external plugin process. The returned
// data, if any, is sent back in the response.
type Handler func(ctx context.Context, req *Request) (json.RawMessage, error)

// Serve is the plugin side of the executor protocol: it decodes one Request
// from r, dispatches it by action name and writes a single Response to w.
// Handler failures are reported in the response, not as an error; Serve only
// fails when the response cannot be written.
func Serve(ctx context.Context, r io.Reader, w io.Writer, handlers map[string]Handler) error {
	resp := handle(ctx, r, handlers)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

func handle(ctx context.Context, r io.Reader, handlers map[string]Handler) Response {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return Response{Error: fmt.Sprintf("failed to decode request: %v", err)}
	}
	h, ok := handlers[req.Action]
	if !ok {
		return Response{Error: fmt.Sprintf("unknown action: %s", req.Action)}
	}
	data, err := h(ctx, &req)
	if err != nil {
		return Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)}
	}
	return Response{Success: true, Data: data}
}

// DecodeParams unmarshals the request params into v. Missing params decode
// as an empty object.
func (r *Request) DecodeParams(v any) error {
	if len(r.Params) == 0 || string(r.Params) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Params, v); err != nil {
		return fmt.Errorf("failed to parse params: %w", err)
	}
	return nil
}
