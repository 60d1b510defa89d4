package common

import (
	"time"
)

// This stopwatch keeps track of time. You can set a timeout for it,
// make it start counting time, and ask it if the timeout has been reached
type Stopwatch struct {
	Timeout   time.Duration
	startTime time.Time
	running   bool
}

func NewStopwatch(timeout time.Duration) Stopwatch {
	return Stopwatch{Timeout: timeout}
}

func (s *Stopwatch) Start() {
	s.running = true
	s.startTime = time.Now()
}

// Report if the timeout has been reached. A stopwatch that has never
// been started counts as stopped, so the first check always succeeds
func (s *Stopwatch) Stopped() bool {
	if !s.running {
		return true
	}
	return time.Since(s.startTime) >= s.Timeout
}
