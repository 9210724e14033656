// Package outcome classifies exchange results and measures their duration.
package outcome

import "time"

// Class is the visual severity of an HTTP status code.
type Class string

// Outcome classes.
const (
	Success     Class = "success"
	Redirect    Class = "redirect"
	ClientError Class = "client-error"
	ServerError Class = "server-error"
	Unknown     Class = "unknown"
)

var colours = map[Class]string{
	Success:     "green",
	Redirect:    "purple",
	ClientError: "orange",
	ServerError: "red",
	Unknown:     "black",
}

// Colour returns the arrow colour used for the class.
func (c Class) Colour() string {
	if col, ok := colours[c]; ok {
		return col
	}
	return colours[Unknown]
}

// statusRange maps an inclusive status range to a class.
type statusRange struct {
	lo, hi int
	class  Class
}

// classes is evaluated top to bottom; the first matching range wins.
var classes = []statusRange{
	{200, 299, Success},
	{300, 399, Redirect},
	{400, 499, ClientError},
	{500, 599, ServerError},
}

// Classify maps any status code to a Class. Codes outside the table,
// including informational 1xx responses, are Unknown.
func Classify(status int) Class {
	for _, r := range classes {
		if status >= r.lo && status <= r.hi {
			return r.class
		}
	}
	return Unknown
}

// Clock returns the current time.
type Clock func() time.Time

// Timer measures one exchange.
type Timer struct {
	clock Clock
	start time.Time
}

// StartTimer records the start instant. A nil clock uses time.Now.
func StartTimer(clock Clock) Timer {
	if clock == nil {
		clock = time.Now
	}
	return Timer{clock: clock, start: clock()}
}

// Start returns the instant the timer was started.
func (t Timer) Start() time.Time { return t.start }

// Elapsed returns the time since Start truncated to whole milliseconds.
// A clock that steps backwards yields zero.
func (t Timer) Elapsed() time.Duration {
	clock := t.clock
	if clock == nil {
		clock = time.Now
	}
	d := clock().Sub(t.start).Truncate(time.Millisecond)
	if d < 0 {
		return 0
	}
	return d
}
