// Package packets is the reference handler set: literal/arithmetic
// packets, variable access, document I/O, document mutation leaves, and
// gated side effects. Each handler self-registers with internal/router
// via an init(), so importing this package for its side effects is what
// wires a Runtime's dispatch table together; control-flow ops
// (loop/funct/call/mod/sect and the signal packets) live in router
// itself since they need to recurse back into block evaluation.
package packets

import (
	"context"

	"github.com/tagspeak/tagspeak/internal/lang"
	"github.com/tagspeak/tagspeak/internal/router"
	"github.com/tagspeak/tagspeak/internal/runtime"
	"github.com/tagspeak/tagspeak/internal/value"
)

func init() {
	router.Register("math", mathHandler)
	router.Register("int", intHandler)
	router.Register("str", strHandler)
	router.Register("bool", boolHandler)
	router.Register("var", varHandler)
	router.Register("print", printHandler)
	router.Register("dump", printHandler)
	router.Register("cmp", cmpHandler)
}

// mathHandler evaluates @arg as an arithmetic/condition expression and
// replaces the last value with its result.
func mathHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	if !pkt.HasArg {
		return value.Unit(), false, typeErr("math requires an expression in @arg")
	}
	v, err := router.EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), false, err
	}
	return v, false, nil
}

// intHandler evaluates @arg and coerces it to an integral Num literal.
func intHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	if !pkt.HasArg {
		return value.Unit(), false, typeErr("int requires a value in @arg")
	}
	v, err := router.EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), false, err
	}
	n, err := v.Int()
	if err != nil {
		return value.Unit(), false, err
	}
	return value.Num(float64(n)), false, nil
}

// strHandler evaluates @arg and renders it as a Str literal.
func strHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	if !pkt.HasArg {
		return value.Unit(), false, typeErr("str requires a value in @arg")
	}
	v, err := router.EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), false, err
	}
	return value.Str(v.String()), false, nil
}

// boolHandler evaluates @arg and coerces it to a Bool via Truthy.
func boolHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	if !pkt.HasArg {
		return value.Unit(), false, typeErr("bool requires a value in @arg")
	}
	v, err := router.EvalExpr(ctx, rt, pkt.Arg)
	if err != nil {
		return value.Unit(), false, err
	}
	return value.Bool(v.Truthy()), false, nil
}

// varHandler is the explicit spelling of the implicit variable-reference
// resolution conditionals perform on a bare identifier: [var@name] reads
// name out of the variable table.
func varHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	if !pkt.HasArg {
		return value.Unit(), false, typeErr("var requires a name in @arg")
	}
	ident, ok := pkt.Arg.(*lang.IdentRef)
	if !ok {
		return value.Unit(), false, typeErr("var requires a bare name in @arg")
	}
	v, err := router.EvalExpr(ctx, rt, ident)
	if err != nil {
		return value.Unit(), false, err
	}
	return v, false, nil
}

// cmpHandler is the bare comparator packet (§3.1/§9): [cmp@eq] (and the
// symbol spellings [cmp@"=="], etc.) yields a first-class Comparator
// value, storable by [store@name] and later applied by [if] when a
// condition's operator slot names a variable holding one.
func cmpHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	if !pkt.HasArg {
		return value.Unit(), false, typeErr("cmp requires a comparator name in @arg")
	}
	var name string
	switch a := pkt.Arg.(type) {
	case *lang.IdentRef:
		name = a.Name
	case *lang.StringLit:
		name = a.Value
	default:
		v, err := router.EvalExpr(ctx, rt, pkt.Arg)
		if err != nil {
			return value.Unit(), false, err
		}
		if v.Kind != value.KindStr {
			return value.Unit(), false, typeErr("cmp requires a comparator name in @arg")
		}
		name = v.Str
	}
	c, ok := value.ParseComparator(name)
	if !ok {
		return value.Unit(), false, typeErr("unknown comparator " + name)
	}
	return value.Cmp(c), false, nil
}

// printHandler (and its [dump] alias) is the identity handler: it
// prints @arg's value, or the current last value when there is no @arg,
// to stdout, and leaves the last value unchanged either way.
func printHandler(ctx context.Context, rt *runtime.Runtime, pkt *lang.Packet) (value.Value, bool, error) {
	v := rt.Last
	if pkt.HasArg {
		ev, err := router.EvalExpr(ctx, rt, pkt.Arg)
		if err != nil {
			return value.Unit(), false, err
		}
		v = ev
	}
	printLine(v.String())
	return v, true, nil
}
