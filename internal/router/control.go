package router

import (
	"context"

	"github.com/tagspeak/tagspeak/internal/document"
	"github.com/tagspeak/tagspeak/internal/lang"
	"github.com/tagspeak/tagspeak/internal/runtime"
	"github.com/tagspeak/tagspeak/internal/value"
)

// evalLoop dispatches on the loop label: "" (bare [loop@N]), "forever",
// "until", or "each".
func evalLoop(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, error) {
	if pkt.Body == nil {
		return value.Unit(), typeErr("loop requires a body block")
	}
	rt.ResetLoopCounter()

	switch pkt.Label {
	case "":
		return evalLoopN(ctx, rt, pkt)
	case "forever":
		return evalLoopForever(ctx, rt, pkt)
	case "until":
		return evalLoopUntil(ctx, rt, pkt)
	case "each":
		return evalLoopEach(ctx, rt, pkt)
	default:
		return value.Unit(), typeErr("unknown loop label " + pkt.Label)
	}
}

// runLoopBody evaluates the body once, consuming Break (stop, clear
// signal, continue normally past the loop) and leaving Return/Interrupt
// active for the caller. The second return value reports whether the
// loop should stop iterating.
func runLoopBody(ctx context.Context, rt *runtime.Runtime, body *lang.Block) (stop bool, err error) {
	if err := rt.CheckLoopIteration(); err != nil {
		return true, err
	}
	if _, err := Eval(ctx, rt, body); err != nil {
		return true, err
	}
	switch rt.Signal.Kind {
	case runtime.SignalBreak:
		rt.Signal = runtime.Signal{}
		return true, nil
	case runtime.SignalReturn, runtime.SignalInterrupt:
		return true, nil
	default:
		return false, nil
	}
}

func evalLoopN(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, error) {
	if !pkt.HasArg {
		return value.Unit(), typeErr("loop requires a count in @arg")
	}
	nv, err := EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), err
	}
	n, err := nv.Int()
	if err != nil {
		return value.Unit(), err
	}
	if n < 0 || n > runtime.DefaultLoopLimit {
		return value.Unit(), loopOverflow(float64(n))
	}
	for i := int64(0); i < n; i++ {
		stop, err := runLoopBody(ctx, rt, pkt.Body)
		if err != nil {
			return value.Unit(), err
		}
		if stop {
			break
		}
	}
	return rt.Last, nil
}

func evalLoopForever(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, error) {
	for {
		stop, err := runLoopBody(ctx, rt, pkt.Body)
		if err != nil {
			return value.Unit(), err
		}
		if stop {
			break
		}
	}
	return rt.Last, nil
}

func evalLoopUntil(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, error) {
	if !pkt.HasArg {
		return value.Unit(), typeErr("loop:until requires a condition in @arg")
	}
	for {
		cond, err := EvalExpr(ctx, rt, pkt.Arg)
		if err != nil {
			return value.Unit(), err
		}
		if cond.Truthy() {
			break
		}
		stop, err := runLoopBody(ctx, rt, pkt.Body)
		if err != nil {
			return value.Unit(), err
		}
		if stop {
			break
		}
	}
	return rt.Last, nil
}

// evalLoopEach iterates a Doc array handle or a Num range, binding item
// (and optional idx) as fluid variables for the duration of the body and
// restoring whatever was bound to those names beforehand.
func evalLoopEach(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, error) {
	if len(pkt.Flags) == 0 {
		return value.Unit(), typeErr("loop:each requires an item name")
	}
	itemName := pkt.Flags[0].Key
	idxName := ""
	if len(pkt.Flags) > 1 {
		idxName = pkt.Flags[1].Key
	}
	if !pkt.HasArg {
		return value.Unit(), typeErr("loop:each requires a handle in @arg")
	}
	handle, err := EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), err
	}

	items, err := eachItems(handle)
	if err != nil {
		return value.Unit(), err
	}

	prevItem, prevItemDisc, hadItem := rt.Vars.Get(itemName)
	_ = prevItemDisc
	var prevIdx value.Value
	var hadIdx bool
	if idxName != "" {
		prevIdx, _, hadIdx = rt.Vars.Get(idxName)
	}
	defer func() {
		if hadItem {
			rt.Vars.StoreFluid(itemName, prevItem)
		}
		if idxName != "" && hadIdx {
			rt.Vars.StoreFluid(idxName, prevIdx)
		}
	}()

	for i, item := range items {
		rt.Vars.StoreFluid(itemName, item)
		if idxName != "" {
			rt.Vars.StoreFluid(idxName, value.Num(float64(i)))
		}
		stop, err := runLoopBody(ctx, rt, pkt.Body)
		if err != nil {
			return value.Unit(), err
		}
		if stop {
			break
		}
	}
	return rt.Last, nil
}

// eachItems expands a loop:each handle into its element values: a Doc
// whose root is an array yields its elements converted to Value, and a
// Num n yields the integer range [0, n).
func eachItems(handle value.Value) ([]value.Value, error) {
	switch handle.Kind {
	case value.KindDoc:
		if handle.Doc == nil || handle.Doc.Root.Kind != document.Array {
			return nil, typeErr("loop:each requires a Doc array handle")
		}
		arr := handle.Doc.Root.Array()
		out := make([]value.Value, len(arr))
		for i, n := range arr {
			out[i] = NodeToValue(n)
		}
		return out, nil
	case value.KindNum:
		n, err := handle.Int()
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, typeErr("loop:each range must be non-negative")
		}
		out := make([]value.Value, n)
		for i := int64(0); i < n; i++ {
			out[i] = value.Num(float64(i))
		}
		return out, nil
	default:
		return nil, typeErr("loop:each requires a Doc array or Num handle")
	}
}

// NodeToValue converts a document tree node into a runtime Value.
// Object/Array nodes are wrapped as a Doc sharing the underlying node, so
// mutating the bound item mutates the source document in place.
func NodeToValue(n *document.Node) value.Value {
	switch n.Kind {
	case document.Num:
		return value.Num(n.NumValue())
	case document.Str:
		return value.Str(n.StrValue())
	case document.Bool:
		return value.Bool(n.BoolValue())
	case document.Null:
		return value.Unit()
	default:
		return value.Doc(&document.Document{Root: n})
	}
}

// evalFunct registers pkt's body under its label in the function table.
func evalFunct(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, error) {
	if pkt.Body == nil {
		return value.Unit(), typeErr("funct requires a body block")
	}
	if !pkt.HasLabel {
		return value.Unit(), typeErr("funct requires a :tag label")
	}
	rt.DefineFunc(pkt.Label, pkt.Body)
	return rt.Last, nil
}

// evalCall looks up the function named by pkt's @arg and evaluates its
// body with the current last value as the body's initial last value. The
// call's result is Return(v) if the body raised one, else the last value
// at body end. [call] is the only packet that invokes a function: there
// is no [loopN@tag] form, and [loop]'s @arg is always evaluated as a count.
func evalCall(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, error) {
	tag, err := callTarget(pkt)
	if err != nil {
		return value.Unit(), err
	}
	body, ok := rt.Func(tag)
	if !ok {
		return value.Unit(), unknownFunctionErr(tag)
	}

	if err := rt.EnterCall(); err != nil {
		return value.Unit(), err
	}
	defer rt.ExitCall()

	if _, err := Eval(ctx, rt, body); err != nil {
		return value.Unit(), err
	}

	if rt.Signal.Kind == runtime.SignalReturn {
		result := rt.Signal.Value
		rt.Signal = runtime.Signal{}
		rt.Last = result
		return result, nil
	}
	return rt.Last, nil
}

// callTarget reads the function tag out of @arg. A bare identifier is
// the tag's literal text (the same token [funct:tag] registered it
// under), not a variable reference; a quoted string also names a tag
// directly, letting a computed/quoted tag share the same slot.
func callTarget(pkt *lang.Packet) (string, error) {
	if !pkt.HasArg {
		return "", typeErr("call requires a function tag in @arg")
	}
	switch a := pkt.Arg.(type) {
	case *lang.IdentRef:
		return a.Name, nil
	case *lang.StringLit:
		return a.Value, nil
	default:
		return "", typeErr("call target must be a bare tag or a string literal")
	}
}
