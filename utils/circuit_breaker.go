package utils

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned when the breaker refuses a request because
// the backend has been failing.
var ErrBreakerOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

type Counts struct {
	Requests            uint32
	TotalSuccesses      uint32
	TotalFailures       uint32
	ConsecutiveFailures uint32
}

// CircuitBreaker guards outbound requests to the storefront backend.
// It trips open after a run of consecutive transport failures, rejects
// requests while open, and lets a single probe through once the cooldown
// elapses.
type CircuitBreaker struct {
	name        string
	maxFailures uint32
	cooldown    time.Duration
	halfOpenMax uint32

	mutex  sync.Mutex
	state  State
	counts Counts
	expiry time.Time
}

func NewCircuitBreaker(name string) *CircuitBreaker {
	return &CircuitBreaker{
		name:        name,
		maxFailures: 5,
		cooldown:    30 * time.Second,
		halfOpenMax: 1,
		state:       StateClosed,
	}
}

// Execute runs req if the breaker allows it and records the outcome.
func (cb *CircuitBreaker) Execute(req func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := req()
	cb.afterRequest(err == nil)
	return err
}

// State returns the breaker's current state, advancing open → half-open
// when the cooldown has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.currentState(time.Now())
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.currentState(time.Now()) {
	case StateOpen:
		return ErrBreakerOpen
	case StateHalfOpen:
		if cb.counts.Requests >= cb.halfOpenMax {
			return ErrBreakerOpen
		}
	}

	cb.counts.Requests++
	return nil
}

func (cb *CircuitBreaker) afterRequest(success bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	state := cb.currentState(time.Now())
	if success {
		cb.onSuccess(state)
	} else {
		cb.onFailure(state)
	}
}

func (cb *CircuitBreaker) onSuccess(state State) {
	cb.counts.TotalSuccesses++
	cb.counts.ConsecutiveFailures = 0

	if state == StateHalfOpen {
		cb.state = StateClosed
		cb.counts = Counts{}
	}
}

func (cb *CircuitBreaker) onFailure(state State) {
	cb.counts.TotalFailures++
	cb.counts.ConsecutiveFailures++

	if state == StateHalfOpen || cb.counts.ConsecutiveFailures >= cb.maxFailures {
		cb.state = StateOpen
		cb.expiry = time.Now().Add(cb.cooldown)
	}
}

func (cb *CircuitBreaker) currentState(now time.Time) State {
	if cb.state == StateOpen && cb.expiry.Before(now) {
		cb.state = StateHalfOpen
		cb.counts = Counts{}
	}
	return cb.state
}
