package virnet

// runner.go drives a model through its steps.  Each step is an event on an
// evt event manager, scheduled one virtual second after the step before it,
// so virtual time in seconds equals the model tick.  After every completed
// step the runner appends the counts to its log and hands a snapshot to
// each observer, in the order the observers were added.

import (
	"fmt"
	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
	"iter"
)

// Snapshot is the read-only view of a model offered to collaborators
type Snapshot interface {
	Counts() Counts
	Nodes() iter.Seq[NodeView]
}

// Observer consumes a snapshot after setup and after every completed step.
// An error from an observer stops the run.
type Observer interface {
	Observe(Snapshot) error
}

// ObserverFunc lets an ordinary function serve as an Observer
type ObserverFunc func(Snapshot) error

func (f ObserverFunc) Observe(snap Snapshot) error {
	return f(snap)
}

// RunResult summarizes a run
type RunResult struct {
	Seed int64 `json:"seed" yaml:"seed"`

	// Steps is the number of steps that completed
	Steps int `json:"steps" yaml:"steps"`

	// Extinct is true when the run ended with no infected node
	Extinct bool `json:"extinct" yaml:"extinct"`

	// Log holds the counts after setup (tick 0) and after every step, indexed by tick
	Log []Counts `json:"log" yaml:"log"`

	PeakInfected int `json:"peakinfected" yaml:"peakinfected"`
	PeakTick     int `json:"peaktick" yaml:"peaktick"`
}

// Final returns the last counts logged
func (rr *RunResult) Final() Counts {
	if len(rr.Log) == 0 {
		return Counts{}
	}
	return rr.Log[len(rr.Log)-1]
}

// Runner executes a bounded run of a model that has been set up
type Runner struct {
	model     *Model
	maxSteps  int
	observers []Observer
	result    *RunResult
	err       error
	ran       bool
}

// CreateRunner is a constructor.  maxSteps bounds the number of steps executed.
func CreateRunner(m *Model, maxSteps int) *Runner {
	r := new(Runner)
	r.model = m
	r.maxSteps = maxSteps
	r.observers = make([]Observer, 0)
	return r
}

// AddObserver appends observers that will see every snapshot of the run
func (r *Runner) AddObserver(obs ...Observer) {
	r.observers = append(r.observers, obs...)
}

// Run steps the model until no node is infected or maxSteps steps have
// completed.  The result holds whatever was logged even when an error is returned.
func (r *Runner) Run() (*RunResult, error) {
	if r.ran {
		return nil, fmt.Errorf("runner has already run")
	}
	if !r.model.ready {
		return nil, ErrNotSetup
	}
	if r.maxSteps < 0 {
		return nil, &InvalidParameterError{Name: "maxsteps", Value: r.maxSteps, Reason: "must be non-negative"}
	}
	r.ran = true
	r.result = &RunResult{Seed: r.model.seed, Log: make([]Counts, 0, r.maxSteps+1)}

	if err := r.record(); err != nil {
		return r.result, err
	}

	evtMgr := evtm.New()
	evtMgr.Schedule(r, nil, stepEvent, vrtime.SecondsToTime(0.0))
	evtMgr.Run(float64(r.maxSteps) + 1.0)

	r.result.Extinct = r.model.byState[Infected] == 0
	r.model.logger.Info("run complete", "seed", r.model.seed, "steps", r.result.Steps,
		"extinct", r.result.Extinct, "peak", r.result.PeakInfected, "peaktick", r.result.PeakTick)
	return r.result, r.err
}

// stepEvent is the event handler that executes one step and, if the run
// should go on, schedules the next
func stepEvent(evtMgr *evtm.EventManager, context any, data any) any {
	r := context.(*Runner)
	if r.result.Steps >= r.maxSteps {
		return nil
	}

	more, err := r.model.Step()
	if err != nil {
		r.err = err
		return nil
	}
	if !more {
		return nil
	}
	r.result.Steps += 1

	if err := r.record(); err != nil {
		r.err = err
		return nil
	}

	evtMgr.Schedule(r, nil, stepEvent, vrtime.SecondsToTime(1.0))
	return nil
}

// record appends the model's counts to the log and notifies the observers
func (r *Runner) record() error {
	counts := r.model.Counts()
	r.result.Log = append(r.result.Log, counts)
	if counts.Infected > r.result.PeakInfected {
		r.result.PeakInfected = counts.Infected
		r.result.PeakTick = counts.Tick
	}

	for _, obs := range r.observers {
		if err := obs.Observe(r.model); err != nil {
			return fmt.Errorf("observer at tick %d: %w", counts.Tick, err)
		}
	}
	return nil
}

// Simulate builds a model from params, sets it up and runs it for at most
// maxSteps steps.  A saturated network is treated as an error here; callers
// that accept partial networks use NewModel, Setup and CreateRunner directly.
func Simulate(params Params, maxSteps int, observers ...Observer) (*Model, *RunResult, error) {
	m, err := NewModel(params)
	if err != nil {
		return nil, nil, err
	}
	if err := m.Setup(); err != nil {
		return m, nil, err
	}

	r := CreateRunner(m, maxSteps)
	r.AddObserver(observers...)
	rr, err := r.Run()
	return m, rr, err
}
