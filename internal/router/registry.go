package router

import (
	"context"

	"github.com/tagspeak/tagspeak/internal/lang"
	"github.com/tagspeak/tagspeak/internal/runtime"
	"github.com/tagspeak/tagspeak/internal/value"
)

// Handler evaluates one non-control packet against rt's current last
// value, returning the packet's result and whether it is a pass-through
// (the prior last value is re-emitted unchanged rather than replaced).
// Control-flow ops (if/loop/funct/call/break/return/interrupt) are
// dispatched by the router itself, not through this registry, since
// they need to recurse back into block evaluation.
type Handler func(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (result value.Value, passthrough bool, err error)

var registry = make(map[string]Handler)

// Register binds op to h. Called from internal/packets init()s so the
// reference handler set self-registers on import, the way the router
// package stays agnostic of any particular handler implementation.
func Register(op string, h Handler) {
	registry[op] = h
}

// Lookup returns the handler bound to op, if any.
func Lookup(op string) (Handler, bool) {
	h, ok := registry[op]
	return h, ok
}
