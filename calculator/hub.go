package calculator

import "sync"

// CalcHub coordinates a running simulation with the push side of the
// websocket layer: the runner hands each period's marshaled snapshot over
// PeriodCalcResult, the client's stop request closes the stop channel.
type CalcHub struct {
	PeriodCalcResult chan []byte

	mu      sync.Mutex
	stop    chan struct{}
	stopped bool
}

func NewCalcHub() *CalcHub {
	return &CalcHub{
		PeriodCalcResult: make(chan []byte),
	}
}

func (ch *CalcHub) StartSignal() {
	ch.mu.Lock()
	ch.stop = make(chan struct{})
	ch.stopped = false
	ch.mu.Unlock()
}

// StopSignal ends the current run. Idempotent; a stop with no run started is
// a no-op.
func (ch *CalcHub) StopSignal() {
	ch.mu.Lock()
	if ch.stop != nil && !ch.stopped {
		close(ch.stop)
		ch.stopped = true
	}
	ch.mu.Unlock()
}

// Done returns the stop channel of the current run, nil when no run was
// started. Callers capture it once; it stays valid after StopSignal.
func (ch *CalcHub) Done() <-chan struct{} {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.stop
}
