package runtime

import (
	"testing"

	"github.com/tagspeak/tagspeak/internal/box"
	"github.com/tagspeak/tagspeak/internal/config"
)

func TestNewAppliesConfigToConsent(t *testing.T) {
	cfg := config.Default()
	cfg.Security.AllowExec = true
	cfg.Run.RequireYellow = true

	rt := New(box.NoBox(), cfg, nil)
	if !rt.Consent.AllowExec {
		t.Fatalf("expected AllowExec from config")
	}
	if rt.Consent.AllowRun {
		t.Fatalf("expected AllowRun false when RequireYellow is set")
	}
}

func TestEnterCallRespectsDefaultDepthCap(t *testing.T) {
	rt := New(box.NoBox(), config.Default(), nil)
	for i := 0; i < DefaultCallDepth; i++ {
		if err := rt.EnterCall(); err != nil {
			t.Fatalf("unexpected error at call depth %d: %v", i, err)
		}
	}
	if err := rt.EnterCall(); err == nil {
		t.Fatalf("expected E_CALL_DEPTH_EXCEEDED")
	}
	rt.ExitCall()
	if err := rt.EnterCall(); err != nil {
		t.Fatalf("expected room after ExitCall, got %v", err)
	}
}

func TestEnterRunRespectsNestingCap(t *testing.T) {
	rt := New(box.NoBox(), config.Default(), nil)
	for i := 0; i < DefaultRunNesting; i++ {
		if err := rt.EnterRun(); err != nil {
			t.Fatalf("unexpected error at run depth %d: %v", i, err)
		}
	}
	if err := rt.EnterRun(); err == nil {
		t.Fatalf("expected E_RUN_DEPTH_EXCEEDED")
	}
}

func TestEnterRunHonorsConfiguredMaxDepth(t *testing.T) {
	cfg := config.Default()
	cfg.Run.MaxDepth = 2
	rt := New(box.NoBox(), cfg, nil)

	if err := rt.EnterRun(); err != nil {
		t.Fatalf("unexpected error at run depth 1: %v", err)
	}
	if err := rt.EnterRun(); err != nil {
		t.Fatalf("unexpected error at run depth 2: %v", err)
	}
	if err := rt.EnterRun(); err == nil {
		t.Fatalf("expected E_RUN_DEPTH_EXCEEDED at run depth 3")
	}
}

func TestWithYellowRestoresPriorConsent(t *testing.T) {
	rt := New(box.NoBox(), config.Default(), nil)
	var sawYellow bool
	err := rt.WithYellow(func() error {
		sawYellow = rt.Consent.AllowYellowAll
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sawYellow {
		t.Fatalf("expected AllowYellowAll raised inside WithYellow")
	}
	if rt.Consent.AllowYellowAll {
		t.Fatalf("expected AllowYellowAll restored after WithYellow")
	}
}

func TestDefineFuncAndLookup(t *testing.T) {
	rt := New(box.NoBox(), config.Default(), nil)
	if _, ok := rt.Func("tick"); ok {
		t.Fatalf("expected no function defined yet")
	}
	rt.DefineFunc("tick", nil)
	if _, ok := rt.Func("tick"); !ok {
		t.Fatalf("expected tick to be defined")
	}
}
