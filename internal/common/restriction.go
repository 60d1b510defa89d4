package common

import "time"

// A restriction means that only the specified number of requests
// are allowed within the specified time window
type Restriction struct {
	Requests int
	Window   time.Duration
}

// Compute how long a request issued right now would have to wait for
// this restriction to allow it. Zero means the request is allowed already
func (rest *Restriction) Delay(history []time.Time) time.Duration {

	// Count the requests still inside my window.
	// Start counting from the end.
	// If one request is too old, the rest will be too
	currentTime := time.Now()
	count := 0
	for i := len(history) - 1; i >= 0; i-- {
		if currentTime.Sub(history[i]) > rest.Window {
			break
		}
		count++
	}
	if count < rest.Requests {
		return 0
	}

	// The request has to wait until the oldest one
	// inside the window falls out of it
	oldest := history[len(history)-count]
	return rest.Window - currentTime.Sub(oldest)
}
