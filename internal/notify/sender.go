package notify

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrBusy              = errors.New("notification already in progress")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// SendState is the state of a single "notify" action.
type SendState string

const (
	StateIdle    SendState = "idle"
	StatePending SendState = "pending"
	StateDone    SendState = "done"
)

// Sender gates repeated notify presses per key.
//
//	idle --Begin--> pending --Finish--> done --(delay)--> idle
//	                pending --Abort---> idle
//
// The done -> idle transition is the only timed one. Its timer is owned by
// the Sender and cancelled by Stop.
type Sender struct {
	mu      sync.Mutex
	delay   time.Duration
	states  map[string]SendState
	timers  map[string]*time.Timer
	stopped bool
}

func NewSender(delay time.Duration) *Sender {
	return &Sender{
		delay:  delay,
		states: make(map[string]SendState),
		timers: make(map[string]*time.Timer),
	}
}

// State returns the current state of key; unknown keys are idle.
func (s *Sender) State(key string) SendState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(key)
}

func (s *Sender) stateLocked(key string) SendState {
	if st, ok := s.states[key]; ok {
		return st
	}
	return StateIdle
}

func (s *Sender) Begin(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stateLocked(key) != StateIdle {
		return ErrBusy
	}
	s.states[key] = StatePending
	return nil
}

// Finish marks key done and schedules its return to idle.
func (s *Sender) Finish(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stateLocked(key) != StatePending {
		return ErrInvalidTransition
	}
	s.states[key] = StateDone
	if s.stopped {
		return nil
	}

	var t *time.Timer
	t = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// A newer timer may have replaced this one.
		if s.timers[key] != t {
			return
		}
		delete(s.timers, key)
		delete(s.states, key)
	})
	s.timers[key] = t
	return nil
}

// Abort returns a pending key to idle.
func (s *Sender) Abort(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stateLocked(key) != StatePending {
		return ErrInvalidTransition
	}
	delete(s.states, key)
	return nil
}

// Stop cancels every scheduled reset. Keys already done stay done.
func (s *Sender) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}
