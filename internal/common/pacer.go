package common

import (
	"time"
)

// Pacer spaces out requests so that none of the configured restrictions
// is ever exceeded. It is meant for a single caller issuing requests
// sequentially: Wait blocks until the next request is allowed and then
// records it in the history
type Pacer struct {
	restrictions []Restriction
	history      []time.Time
	window       time.Duration // Max window of all restrictions
}

func NewPacer(restrictions ...Restriction) *Pacer {
	var window time.Duration
	for _, rest := range restrictions {
		if rest.Window > window {
			window = rest.Window
		}
	}
	return &Pacer{restrictions: restrictions, window: window}
}

// Block until all the restrictions allow one more request
func (pacer *Pacer) Wait() {
	pacer.trim()
	if delay := pacer.delay(); delay > 0 {
		time.Sleep(delay)
	}
	pacer.history = append(pacer.history, time.Now())
}

// Trim the current history, leaving only the requests that are young
// enough to be affected by at least one restriction.
// I assume times are stored in chronological order
func (pacer *Pacer) trim() {
	currentTime := time.Now()
	index := 0
	for i := len(pacer.history) - 1; i >= 0; i-- {
		if currentTime.Sub(pacer.history[i]) > pacer.window {
			index = i + 1
			break
		}
	}
	pacer.history = pacer.history[index:]
}

// The longest delay any of the restrictions demands
func (pacer *Pacer) delay() time.Duration {
	var delay time.Duration
	for _, rest := range pacer.restrictions {
		if d := rest.Delay(pacer.history); d > delay {
			delay = d
		}
	}
	return delay
}
