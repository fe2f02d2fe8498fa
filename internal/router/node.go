package router

import (
	"context"
	"fmt"

	"github.com/tagspeak/tagspeak/internal/lang"
	"github.com/tagspeak/tagspeak/internal/runtime"
	"github.com/tagspeak/tagspeak/internal/value"
)

// Eval walks n, threading rt.Last as the single mutable "current value"
// register and returning the node's resulting value. A Program and a
// Block are the same shape (a sequence of Chains) and share
// evalStatements; newlines between top-level statements are not a
// value-threading operator the way '>' is, but the resulting value at
// the end of the sequence is still whatever the final statement left in
// rt.Last.
func Eval(ctx context.Context, rt *runtime.Runtime, n lang.Node) (value.Value, error) {
	select {
	case <-ctx.Done():
		return value.Unit(), ctx.Err()
	default:
	}

	switch x := n.(type) {
	case *lang.Program:
		return evalStatements(ctx, rt, x.Chains)
	case *lang.Block:
		return evalStatements(ctx, rt, x.Chains)
	case *lang.Chain:
		return evalChain(ctx, rt, x)
	case *lang.Packet:
		return evalPacket(ctx, rt, x)
	case *lang.IfChain:
		return evalIfChain(ctx, rt, x)
	default:
		return value.Unit(), fmt.Errorf("internal error: unknown AST node %T", n)
	}
}

// evalStatements evaluates each top-level chain in order, stopping early
// if a signal becomes active (the chain that raised it is still the
// last one to run; the caller — a loop, a function call, or the program
// driver — decides whether it catches the signal).
func evalStatements(ctx context.Context, rt *runtime.Runtime, chains []*lang.Chain) (value.Value, error) {
	if len(chains) == 0 {
		return value.Unit(), nil
	}
	for _, c := range chains {
		if _, err := evalChain(ctx, rt, c); err != nil {
			return value.Unit(), err
		}
		if rt.Signal.Active() {
			break
		}
	}
	return rt.Last, nil
}

// evalChain evaluates a '>'-joined sequence of atoms, each one reading
// and then replacing rt.Last in turn.
func evalChain(ctx context.Context, rt *runtime.Runtime, c *lang.Chain) (value.Value, error) {
	for _, atom := range c.Atoms {
		if _, err := Eval(ctx, rt, atom); err != nil {
			return value.Unit(), err
		}
		if rt.Signal.Active() {
			break
		}
	}
	return rt.Last, nil
}

// evalPacket dispatches control-flow ops inline (they need to recurse
// back into Eval for their body blocks) and everything else through the
// registry populated by internal/packets.
func evalPacket(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, error) {
	switch pkt.Op {
	case "loop":
		return evalLoop(ctx, rt, pkt)
	case "funct":
		return evalFunct(ctx, rt, pkt)
	case "call":
		return evalCall(ctx, rt, pkt)
	case "mod":
		return evalMod(ctx, rt, pkt)
	case "sect":
		return evalSect(ctx, rt, pkt)
	case "log":
		if pkt.Body != nil {
			return evalStructuredLog(ctx, rt, pkt)
		}
	case "break":
		rt.Signal = runtime.Signal{Kind: runtime.SignalBreak, Value: rt.Last}
		return rt.Last, nil
	case "return":
		v, err := packetArgValue(ctx, rt, pkt)
		if err != nil {
			return value.Unit(), err
		}
		rt.Signal = runtime.Signal{Kind: runtime.SignalReturn, Value: v}
		rt.Last = v
		return v, nil
	case "interrupt":
		v, err := packetArgValue(ctx, rt, pkt)
		if err != nil {
			return value.Unit(), err
		}
		rt.Signal = runtime.Signal{Kind: runtime.SignalInterrupt, Value: v}
		rt.Last = v
		return v, nil
	}

	h, ok := Lookup(pkt.Op)
	if !ok {
		return value.Unit(), unknownPacketErr(pkt.Op)
	}
	result, passthrough, err := h(ctx, rt, pkt)
	if err != nil {
		return value.Unit(), err
	}
	if !passthrough {
		rt.Last = result
	}
	return rt.Last, nil
}

// packetArgValue evaluates a packet's @arg, or returns the current last
// value if the packet carries none (bare [return]/[interrupt] re-emit
// whatever is already in flight).
func packetArgValue(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, error) {
	if !pkt.HasArg {
		return rt.Last, nil
	}
	return EvalExpr(ctx, rt, pkt.Arg)
}

// evalIfChain evaluates branch conditions in order and runs the first
// whose condition is truthy, falling back to an else block if present.
// If nothing matches and there is no else, the if-chain's value is the
// unchanged current last value.
func evalIfChain(ctx context.Context, rt *runtime.Runtime, ic *lang.IfChain) (value.Value, error) {
	for _, br := range ic.Branches {
		v, err := EvalExpr(ctx, rt, br.Cond)
		if err != nil {
			return value.Unit(), err
		}
		if v.Truthy() {
			return evalStatements(ctx, rt, br.Body.Chains)
		}
	}
	if ic.Else != nil {
		return evalStatements(ctx, rt, ic.Else.Chains)
	}
	return rt.Last, nil
}
