package task

import (
	"github.com/amonks/cadence/events"
)

// Start runs a task's timer. Only one timer may run at a time.
func (s *Store) Start(id string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	i, err := s.lookupLocked(id, now)
	if err != nil {
		return nil, err
	}

	t := &s.tasks[i]
	switch {
	case s.runningID != "" && s.runningID != t.ID:
		return nil, ErrTimerBusy
	case t.Completed:
		return nil, ErrTaskCompleted
	case t.Failed:
		return nil, ErrTaskFailed
	case t.TimerState == TimerRunning:
		return nil, ErrTimerRunning
	}

	startedAt := now
	t.TimerState = TimerRunning
	t.TimerStartedAt = &startedAt
	s.runningID = t.ID

	s.persistLocked()
	s.publish(events.TimerStarted, *t, now)
	return s.view(*t, now), nil
}

// Pause stops a running timer and banks the time it accrued.
func (s *Store) Pause(id string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	i, err := s.lookupLocked(id, now)
	if err != nil {
		return nil, err
	}

	t := &s.tasks[i]
	if t.TimerState != TimerRunning {
		return nil, ErrTimerNotRunning
	}

	t.ActualTimeSpent += t.accrued(now)
	t.TimerState = TimerPaused
	t.TimerStartedAt = nil
	s.runningID = ""

	s.persistLocked()
	s.publish(events.TimerPaused, *t, now)
	return s.view(*t, now), nil
}

// Reset clears a stopped timer's tracked time.
func (s *Store) Reset(id string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	i, err := s.lookupLocked(id, now)
	if err != nil {
		return nil, err
	}

	t := &s.tasks[i]
	if t.TimerState == TimerRunning {
		return nil, ErrTimerRunning
	}

	t.ActualTimeSpent = 0
	t.TimerState = TimerIdle
	t.TimerStartedAt = nil

	s.persistLocked()
	s.publish(events.TimerReset, *t, now)
	return s.view(*t, now), nil
}

// Running returns the task whose timer is running, if any.
func (s *Store) Running() (*Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.refreshLocked(now)
	if s.runningID == "" {
		return nil, false
	}
	i := s.indexLocked(s.runningID)
	if i < 0 {
		return nil, false
	}
	return s.view(s.tasks[i], now), true
}
