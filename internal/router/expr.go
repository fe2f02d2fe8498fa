package router

import (
	"context"
	"fmt"

	"github.com/tagspeak/tagspeak/internal/lang"
	"github.com/tagspeak/tagspeak/internal/runtime"
	"github.com/tagspeak/tagspeak/internal/value"
)

// EvalExpr evaluates an expression node against rt's current variable
// bindings. Nested packets (comparators, arithmetic packets used as
// operands) are dispatched back through Eval, so an operand like
// `[math@n*2]` nested inside a larger expression goes through the same path
// as a top-level packet.
func EvalExpr(ctx context.Context, rt *runtime.Runtime, e lang.Expr) (value.Value, error) {
	select {
	case <-ctx.Done():
		return value.Unit(), ctx.Err()
	default:
	}

	switch n := e.(type) {
	case *lang.NumberLit:
		return value.Num(n.Value), nil
	case *lang.StringLit:
		return value.Str(n.Value), nil
	case *lang.BoolLit:
		return value.Bool(n.Value), nil
	case *lang.IdentRef:
		return resolveIdent(rt, n.Name)
	case *lang.ParenGroup:
		return EvalExpr(ctx, rt, n.X)
	case *lang.NestedPacket:
		return Eval(ctx, rt, n.Packet)
	case *lang.Unary:
		return evalUnary(ctx, rt, n)
	case *lang.Binary:
		return evalBinary(ctx, rt, n)
	default:
		return value.Unit(), fmt.Errorf("internal error: unknown expression node %T", e)
	}
}

// resolveIdent looks up a bare identifier as a variable; an identifier
// bound to a Context-discipline variable resolves against rt's current
// environment via VarTable.ResolveContext, using EvalExpr recursively as
// the predicate evaluator.
func resolveIdent(rt *runtime.Runtime, name string) (value.Value, error) {
	disc, contexts, ok := rt.Vars.Slot(name)
	if !ok {
		return value.Unit(), unknownVarErr(name)
	}
	if disc != runtime.Context {
		v, _, _ := rt.Vars.Get(name)
		return v, nil
	}
	_ = contexts
	return rt.Vars.ResolveContext(name, func(pred lang.Expr) (bool, error) {
		v, err := EvalExpr(context.Background(), rt, pred)
		if err != nil {
			return false, err
		}
		return v.Truthy(), nil
	})
}

func evalUnary(ctx context.Context, rt *runtime.Runtime, n *lang.Unary) (value.Value, error) {
	x, err := EvalExpr(ctx, rt, n.X)
	if err != nil {
		return value.Unit(), err
	}
	switch n.Op {
	case "!":
		return value.Bool(!x.Truthy()), nil
	default:
		return value.Unit(), fmt.Errorf("internal error: unknown unary operator %q", n.Op)
	}
}

func evalBinary(ctx context.Context, rt *runtime.Runtime, n *lang.Binary) (value.Value, error) {
	l, err := EvalExpr(ctx, rt, n.L)
	if err != nil {
		return value.Unit(), err
	}

	if n.Op == "&&" {
		if !l.Truthy() {
			return value.Bool(false), nil
		}
		r, err := EvalExpr(ctx, rt, n.R)
		if err != nil {
			return value.Unit(), err
		}
		return value.Bool(r.Truthy()), nil
	}
	if n.Op == "||" {
		if l.Truthy() {
			return value.Bool(true), nil
		}
		r, err := EvalExpr(ctx, rt, n.R)
		if err != nil {
			return value.Unit(), err
		}
		return value.Bool(r.Truthy()), nil
	}

	r, err := EvalExpr(ctx, rt, n.R)
	if err != nil {
		return value.Unit(), err
	}

	if cmp, ok := value.ParseComparator(n.Op); ok {
		result, err := cmp.Apply(l, r)
		if err != nil {
			return value.Unit(), err
		}
		return value.Bool(result), nil
	}

	// n.Op was a bare word the parser couldn't resolve to a literal
	// comparator spelling (eq/ne/lt/le/gt/ge): it names a variable, which
	// must hold a first-class Comparator value stored by a prior
	// [cmp]/[store] (§9, "Comparator as value").
	if isIdentOp(n.Op) {
		v, err := resolveIdent(rt, n.Op)
		if err != nil {
			return value.Unit(), err
		}
		if v.Kind != value.KindComparator {
			return value.Unit(), typeErr(fmt.Sprintf("%q is not a stored comparator", n.Op))
		}
		result, err := v.Comparator.Apply(l, r)
		if err != nil {
			return value.Unit(), err
		}
		return value.Bool(result), nil
	}

	return evalArith(n.Op, l, r)
}

// isIdentOp reports whether op is spelled like a bare identifier (as
// opposed to a symbolic arithmetic operator), the precondition for
// treating it as a variable reference rather than an arithmetic op.
func isIdentOp(op string) bool {
	if op == "" {
		return false
	}
	c := op[0]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func evalArith(op string, l, r value.Value) (value.Value, error) {
	if l.Kind != value.KindNum || r.Kind != value.KindNum {
		if op == "+" && l.Kind == value.KindStr && r.Kind == value.KindStr {
			return value.Str(l.Str + r.Str), nil
		}
		return value.Unit(), typeErr(fmt.Sprintf("operator %q requires numeric operands, got %s and %s", op, l.Kind, r.Kind))
	}
	switch op {
	case "+":
		return value.Num(l.Num + r.Num), nil
	case "-":
		return value.Num(l.Num - r.Num), nil
	case "*":
		return value.Num(l.Num * r.Num), nil
	case "/":
		if r.Num == 0 {
			return value.Unit(), typeErr("division by zero")
		}
		return value.Num(l.Num / r.Num), nil
	case "%":
		if r.Num == 0 {
			return value.Unit(), typeErr("modulo by zero")
		}
		return value.Num(float64(int64(l.Num) % int64(r.Num))), nil
	default:
		return value.Unit(), fmt.Errorf("internal error: unknown binary operator %q", op)
	}
}
