// Package task owns ad-hoc tasks and the single active timer.
package task

import (
	"time"

	"github.com/amonks/cadence/internal/dates"
)

// Bounds on task fields.
const (
	MinDescriptionLength = 3
	MaxDescriptionLength = 200
	MinEstimatedMinutes  = 1
	MaxEstimatedMinutes  = 1440
)

// SnapshotKey is the snapshot key tasks persist under.
const SnapshotKey = "tasks"

// TimerState is the time-tracking state of a task.
type TimerState string

// Timer states.
const (
	TimerIdle    TimerState = "idle"
	TimerRunning TimerState = "running"
	TimerPaused  TimerState = "paused"
)

// IsValid reports whether s is a known timer state.
func (s TimerState) IsValid() bool {
	switch s {
	case TimerIdle, TimerRunning, TimerPaused:
		return true
	default:
		return false
	}
}

// Task is a unit of work with an estimate and tracked time.
type Task struct {
	ID            string      `json:"id"`
	Description   string      `json:"description"`
	EstimatedTime int         `json:"estimated_time"`
	Category      string      `json:"category,omitempty"`
	ScheduledDate *dates.Date `json:"scheduled_date,omitempty"`

	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Failed      bool       `json:"failed"`

	// ActualTimeSpent is in seconds. Values returned by the store include
	// time accrued by a running timer up to the read.
	ActualTimeSpent int64      `json:"actual_time_spent"`
	TimerState      TimerState `json:"timer_state"`
	TimerStartedAt  *time.Time `json:"timer_started_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// CreateOptions holds the optional fields of Create.
type CreateOptions struct {
	Category      string
	ScheduledDate *dates.Date
}

// IsRunning reports whether the task's timer is running.
func (t Task) IsRunning() bool {
	return t.TimerState == TimerRunning
}

// overdue reports whether an incomplete task's scheduled date has passed.
func (t Task) overdue(today dates.Date) bool {
	return !t.Completed && t.ScheduledDate != nil && t.ScheduledDate.Before(today)
}

// accrued returns the whole seconds a running timer has accrued by now.
// A clock that moved backwards accrues nothing.
func (t Task) accrued(now time.Time) int64 {
	if t.TimerState != TimerRunning || t.TimerStartedAt == nil {
		return 0
	}
	elapsed := now.Sub(*t.TimerStartedAt)
	if elapsed < 0 {
		return 0
	}
	return int64(elapsed / time.Second)
}

func (t Task) clone() Task {
	out := t
	if t.ScheduledDate != nil {
		out.ScheduledDate = dates.Ptr(*t.ScheduledDate)
	}
	if t.CompletedAt != nil {
		completedAt := *t.CompletedAt
		out.CompletedAt = &completedAt
	}
	if t.TimerStartedAt != nil {
		startedAt := *t.TimerStartedAt
		out.TimerStartedAt = &startedAt
	}
	return out
}
