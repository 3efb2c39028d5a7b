package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// ActionLookup returns the enabled action bindings for a gesture label.
// It is satisfied by *store.ActionRepository.
type ActionLookup interface {
	ListEnabledByGesture(gesture string) ([]*store.Action, error)
}

// Resolver finds an external plugin by name. It is satisfied by *Manager.
type Resolver interface {
	Get(name string) (*External, error)
}

// Runner executes an external plugin request. It is satisfied by *Executor.
type Runner interface {
	Execute(ctx context.Context, plugin *External, req *Request) (*Response, error)
}

// ActionResult reports the outcome of one bound action.
type ActionResult struct {
	ActionID string
	Plugin   string
	Action   string
	Gesture  gesture.Label
	Slot     int
	Response *Response
	Err      error
}

// ActionOptions configures an ActionPlugin.
type ActionOptions struct {
	QueueSize int
	Logger    *slog.Logger
	// OnResult, when set, is called on the worker goroutine after each action.
	OnResult func(ActionResult)
}

type actionJob struct {
	label gesture.Label
	data  HandData
	slot  int
}

// ActionPlugin runs the external actions bound to a gesture when it starts.
// Lookups and executions happen on a single worker goroutine fed by a
// bounded queue; when the queue is full the gesture is dropped.
type ActionPlugin struct {
	lookup   ActionLookup
	resolver Resolver
	runner   Runner
	logger   *slog.Logger
	onResult func(ActionResult)

	jobs   chan actionJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewActionPlugin creates an ActionPlugin and starts its worker.
func NewActionPlugin(lookup ActionLookup, resolver Resolver, runner Runner, opts ActionOptions) *ActionPlugin {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &ActionPlugin{
		lookup:   lookup,
		resolver: resolver,
		runner:   runner,
		logger:   logger,
		onResult: opts.OnResult,
		jobs:     make(chan actionJob, opts.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	p.wg.Add(1)
	go p.work()
	return p
}

// Name implements Plugin.
func (p *ActionPlugin) Name() string {
	return "actions"
}

// OnGestureStart queues the gesture for the worker without blocking.
func (p *ActionPlugin) OnGestureStart(label gesture.Label, data HandData, slot int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	select {
	case p.jobs <- actionJob{label: label, data: data, slot: slot}:
	default:
		p.logger.Warn("action queue full, dropping gesture", "label", label, "slot", slot)
	}
}

// Close stops the worker, cancels any running execution and waits for the
// worker to exit. Queued gestures are discarded.
func (p *ActionPlugin) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.cancel()
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *ActionPlugin) work() {
	defer p.wg.Done()
	for job := range p.jobs {
		if p.ctx.Err() != nil {
			continue
		}
		p.run(job)
	}
}

func (p *ActionPlugin) run(job actionJob) {
	actions, err := p.lookup.ListEnabledByGesture(string(job.label))
	if err != nil {
		p.logger.Error("action lookup failed", "label", job.label, "error", err)
		return
	}

	for _, a := range actions {
		result := ActionResult{
			ActionID: a.ID,
			Plugin:   a.PluginName,
			Action:   a.ActionName,
			Gesture:  job.label,
			Slot:     job.slot,
		}
		result.Response, result.Err = p.execute(a, job)

		switch {
		case result.Err != nil:
			p.logger.Error("action failed", "action_id", a.ID, "plugin", a.PluginName, "action", a.ActionName, "error", result.Err)
		case !result.Response.Success:
			p.logger.Warn("action reported failure", "action_id", a.ID, "plugin", a.PluginName, "action", a.ActionName, "error", result.Response.Error)
		default:
			p.logger.Info("action executed", "action_id", a.ID, "plugin", a.PluginName, "action", a.ActionName, "label", job.label, "slot", job.slot)
		}

		if p.onResult != nil {
			p.onResult(result)
		}
		if p.ctx.Err() != nil {
			return
		}
	}
}

func (p *ActionPlugin) execute(a *store.Action, job actionJob) (*Response, error) {
	ext, err := p.resolver.Get(a.PluginName)
	if err != nil {
		return nil, fmt.Errorf("resolve plugin %s: %w", a.PluginName, err)
	}
	if len(ext.Manifest.Actions) > 0 && !ext.Manifest.HasAction(a.ActionName) {
		return nil, fmt.Errorf("plugin %s does not declare action %s", a.PluginName, a.ActionName)
	}

	req := &Request{
		Action:     a.ActionName,
		Gesture:    string(job.label),
		HandIndex:  job.slot,
		Handedness: job.data.Handedness,
		Params:     a.Config,
	}
	return p.runner.Execute(p.ctx, ext, req)
}
