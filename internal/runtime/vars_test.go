package runtime

import (
	"testing"

	"github.com/tagspeak/tagspeak/internal/lang"
	"github.com/tagspeak/tagspeak/internal/value"
)

func TestStoreFluidRebinds(t *testing.T) {
	vt := NewVarTable()
	vt.StoreFluid("x", value.Num(1))
	vt.StoreFluid("x", value.Num(2))

	got, disc, ok := vt.Get("x")
	if !ok {
		t.Fatalf("expected x to be bound")
	}
	if disc != Fluid {
		t.Fatalf("expected Fluid discipline, got %v", disc)
	}
	if got.Num != 2 {
		t.Fatalf("expected 2, got %v", got.Num)
	}
}

func TestStoreRigidRejectsSecondWrite(t *testing.T) {
	vt := NewVarTable()
	if err := vt.StoreRigid("x", value.Num(1)); err != nil {
		t.Fatalf("first bind failed: %v", err)
	}
	err := vt.StoreRigid("x", value.Num(2))
	if err == nil {
		t.Fatalf("expected rigid rebind to fail")
	}
	rerr, ok := err.(Error)
	if !ok || rerr.Kind != "E_RIGID_REBIND" {
		t.Fatalf("expected E_RIGID_REBIND, got %v", err)
	}
}

func TestResolveContextFirstMatchWins(t *testing.T) {
	vt := NewVarTable()
	vt.PushContext("mode", &lang.BoolLit{Value: false}, value.Str("a"), false)
	vt.PushContext("mode", &lang.BoolLit{Value: true}, value.Str("b"), false)
	vt.PushContext("mode", &lang.BoolLit{Value: true}, value.Str("c"), false)

	got, err := vt.ResolveContext("mode", func(e lang.Expr) (bool, error) {
		return e.(*lang.BoolLit).Value, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Str != "b" {
		t.Fatalf("expected first matching entry \"b\", got %q", got.Str)
	}
}

func TestResolveContextFallsBackToDefault(t *testing.T) {
	vt := NewVarTable()
	vt.PushContext("mode", &lang.BoolLit{Value: false}, value.Str("a"), false)
	vt.PushContext("mode", nil, value.Str("fallback"), true)

	got, err := vt.ResolveContext("mode", func(e lang.Expr) (bool, error) {
		return e.(*lang.BoolLit).Value, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Str != "fallback" {
		t.Fatalf("expected fallback value, got %q", got.Str)
	}
}

func TestResolveContextNoMatchNoDefaultFails(t *testing.T) {
	vt := NewVarTable()
	vt.PushContext("mode", &lang.BoolLit{Value: false}, value.Str("a"), false)

	_, err := vt.ResolveContext("mode", func(e lang.Expr) (bool, error) {
		return e.(*lang.BoolLit).Value, nil
	})
	if err == nil {
		t.Fatalf("expected E_NO_CONTEXT_MATCH")
	}
	rerr, ok := err.(Error)
	if !ok || rerr.Kind != "E_NO_CONTEXT_MATCH" {
		t.Fatalf("expected E_NO_CONTEXT_MATCH, got %v", err)
	}
}
