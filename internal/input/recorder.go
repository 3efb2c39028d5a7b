package input

import "sync"

// Recorder is a Target that keeps every action it receives.
type Recorder struct {
	Layout Layout

	mu      sync.Mutex
	actions []Action
}

// Dispatch implements Target.
func (r *Recorder) Dispatch(a Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
	return nil
}

// ElementAt implements HitTester when a Layout is set.
func (r *Recorder) ElementAt(x, y float64) string {
	if r.Layout == nil {
		return ""
	}
	return r.Layout.ElementAt(x, y)
}

// Actions returns a copy of the recorded actions.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Types returns the recorded action types in order.
func (r *Recorder) Types() []ActionType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ActionType, len(r.actions))
	for i, a := range r.actions {
		out[i] = a.Type
	}
	return out
}

// Reset discards recorded actions.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = nil
}
