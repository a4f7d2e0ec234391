package plugin

import (
	"fmt"
	"sync"

	"github.com/felixgeelhaar/statekit"
)

// Phase is the position of a request in its lifecycle.
type Phase string

const (
	// PhasePending means the request was accepted but nothing ran yet.
	PhasePending Phase = "pending"
	// PhaseTransferring means the transport is fetching or removing files.
	PhaseTransferring Phase = "transferring"
	// PhaseRecording means the registry cache is being updated.
	PhaseRecording Phase = "recording"
	// PhaseReloading means the host is re-registering its plugins.
	PhaseReloading Phase = "reloading"
	// PhaseCompleted means every step succeeded.
	PhaseCompleted Phase = "completed"
	// PhaseFailed means a step failed and the request stopped.
	PhaseFailed Phase = "failed"
)

// Lifecycle events.
const (
	EventBegin       = "BEGIN"
	EventTransferred = "TRANSFERRED"
	EventRecorded    = "RECORDED"
	EventReloaded    = "RELOADED"
	EventFail        = "FAIL"
	EventReset       = "RESET"
)

// LifecycleContext is the statekit context of a request machine.
type LifecycleContext struct {
	Operation string
	Plugin    string
	Err       error
}

// Lifecycle tracks one install or remove request through its phases.
type Lifecycle struct {
	mu      sync.Mutex
	interp  *statekit.Interpreter[LifecycleContext]
	runtime *LifecycleContext
	history []Phase
}

// NewLifecycle builds and starts the request machine for operation on the
// named plugin.
func NewLifecycle(operation, plugin string) (*Lifecycle, error) {
	runtime := &LifecycleContext{Operation: operation, Plugin: plugin}
	interp, err := buildLifecycleMachine(runtime)
	if err != nil {
		return nil, fmt.Errorf("failed to build lifecycle machine: %w", err)
	}

	l := &Lifecycle{interp: interp, runtime: runtime}
	l.interp.Start()
	l.history = append(l.history, l.current())
	return l, nil
}

// buildLifecycleMachine constructs the request machine. Actions write to the
// captured runtime pointer so the Lifecycle sees their effects.
func buildLifecycleMachine(runtime *LifecycleContext) (*statekit.Interpreter[LifecycleContext], error) {
	machine, err := statekit.NewMachine[LifecycleContext]("extmgr-request").
		WithInitial("pending").
		WithContext(*runtime).
		WithAction("recordError", func(_ *LifecycleContext, event statekit.Event) {
			if payload, ok := event.Payload.(map[string]interface{}); ok {
				if err, ok := payload["error"].(error); ok {
					runtime.Err = err
				}
			}
		}).
		WithAction("clearError", func(_ *LifecycleContext, _ statekit.Event) {
			runtime.Err = nil
		}).
		State("pending").
		OnEntry("clearError").
		On(EventBegin).Target("transferring").
		On(EventFail).Target("failed").Done().
		State("transferring").
		On(EventTransferred).Target("recording").
		On(EventFail).Target("failed").Done().
		State("recording").
		On(EventRecorded).Target("reloading").
		On(EventFail).Target("failed").Done().
		State("reloading").
		On(EventReloaded).Target("completed").
		On(EventFail).Target("failed").Done().
		State("completed").
		On(EventReset).Target("pending").Done().
		State("failed").
		OnEntry("recordError").
		On(EventReset).Target("pending").Done().
		Build()
	if err != nil {
		return nil, err
	}

	return statekit.NewInterpreter(machine), nil
}

func (l *Lifecycle) current() Phase {
	return Phase(l.interp.State().Value)
}

func (l *Lifecycle) send(event statekit.Event) Phase {
	l.mu.Lock()
	defer l.mu.Unlock()

	before := l.current()
	l.interp.Send(event)
	after := l.current()
	if after != before {
		l.history = append(l.history, after)
	}
	return after
}

// Advance sends a success event and returns the resulting phase. Events
// that do not apply to the current phase are ignored.
func (l *Lifecycle) Advance(event string) Phase {
	return l.send(statekit.Event{Type: statekit.EventType(event)})
}

// Fail moves the request to the failed phase and records err.
func (l *Lifecycle) Fail(err error) Phase {
	return l.send(statekit.Event{
		Type:    EventFail,
		Payload: map[string]interface{}{"error": err},
	})
}

// Phase returns the current phase.
func (l *Lifecycle) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current()
}

// Err returns the error recorded by Fail.
func (l *Lifecycle) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.runtime.Err
}

// History returns every phase the request entered, in order.
func (l *Lifecycle) History() []Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Phase, len(l.history))
	copy(out, l.history)
	return out
}

// Done reports whether the request reached a terminal phase.
func (l *Lifecycle) Done() bool {
	p := l.Phase()
	return p == PhaseCompleted || p == PhaseFailed
}

// Stop releases the interpreter.
func (l *Lifecycle) Stop() {
	l.interp.Stop()
}
