package runtime

import "github.com/tagspeak/tagspeak/internal/value"

// SignalKind distinguishes the three early-exit markers a block or loop
// body can set.
type SignalKind int

const (
	SignalNone SignalKind = iota
	SignalBreak
	SignalReturn
	SignalInterrupt
)

// Signal is the early-exit marker threaded out of block evaluation.
// Break and Interrupt are caught by the nearest loop; Return is caught by
// the nearest function call (or loop, per the chain semantics) and
// Interrupt continues propagating past whatever catches it first.
type Signal struct {
	Kind  SignalKind
	Value value.Value
}

func (s Signal) Active() bool { return s.Kind != SignalNone }
