package engine

// Worker states reported by Stats.
const (
	WorkerDisabled    = "disabled"
	WorkerStopped     = "stopped"
	WorkerRunning     = "running"
	WorkerUnavailable = "unavailable"
)

// Stats is a point-in-time snapshot of engine activity.
type Stats struct {
	WorkerState string `json:"worker_state"`
	Pending     int    `json:"pending"`
	Completed   uint64 `json:"completed"`
	Fallbacks   uint64 `json:"fallbacks"`
	Timeouts    uint64 `json:"timeouts"`
}

// Stats reports the worker state and request counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	state := WorkerStopped
	switch {
	case e.cfg.Factory == nil:
		state = WorkerDisabled
	case e.transport != nil:
		state = WorkerRunning
	case e.spawnErr != nil:
		state = WorkerUnavailable
	}
	pending := len(e.pending)
	e.mu.Unlock()

	return Stats{
		WorkerState: state,
		Pending:     pending,
		Completed:   e.completed.Load(),
		Fallbacks:   e.fallbacks.Load(),
		Timeouts:    e.timeouts.Load(),
	}
}
