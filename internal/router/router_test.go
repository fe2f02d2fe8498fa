package router_test

import (
	"context"
	"testing"

	"github.com/tagspeak/tagspeak/internal/box"
	"github.com/tagspeak/tagspeak/internal/config"
	"github.com/tagspeak/tagspeak/internal/document"
	"github.com/tagspeak/tagspeak/internal/lang"
	_ "github.com/tagspeak/tagspeak/internal/packets"
	"github.com/tagspeak/tagspeak/internal/router"
	"github.com/tagspeak/tagspeak/internal/runtime"
	"github.com/tagspeak/tagspeak/internal/value"
)

func newRuntime(t *testing.T) *runtime.Runtime {
	t.Helper()
	return runtime.New(box.NoBox(), config.Default(), nil)
}

func mustEval(t *testing.T, rt *runtime.Runtime, src string) value.Value {
	t.Helper()
	prog, err := lang.Parse("test.tgsk", src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	v, err := router.Eval(context.Background(), rt, prog)
	if err != nil {
		t.Fatalf("Eval(%q) failed: %v", src, err)
	}
	return v
}

func TestEvalChainThreadsLastValue(t *testing.T) {
	rt := newRuntime(t)
	v := mustEval(t, rt, `[math@1+1]>[math@2*3]`)
	if v.Kind != value.KindNum || v.Num != 6 {
		t.Fatalf("got %#v, want Num(6)", v)
	}
}

func TestEvalIfChainPicksFirstTrueBranch(t *testing.T) {
	rt := newRuntime(t)
	mustEval(t, rt, `[math@2]>[store@x]`)
	v := mustEval(t, rt, `[if(x==1)]{[str@"one"]}>[or(x==2)]{[str@"two"]}>[else]{[str@"other"]}`)
	if v.Kind != value.KindStr || v.Str != "two" {
		t.Fatalf("got %#v, want Str(two)", v)
	}
}

func TestEvalIfChainFallsBackToElse(t *testing.T) {
	rt := newRuntime(t)
	v := mustEval(t, rt, `[if(1==2)]{[str@"a"]}>[else]{[str@"b"]}`)
	if v.Str != "b" {
		t.Fatalf("got %#v, want Str(b)", v)
	}
}

func TestEvalLoopNRepeatsBody(t *testing.T) {
	rt := newRuntime(t)
	mustEval(t, rt, `[math@0]>[store@count]`)
	mustEval(t, rt, `[loop@3]{[var@count]>[math@count+1]>[store@count]}`)
	v, _, ok := rt.Vars.Get("count")
	if !ok || v.Num != 3 {
		t.Fatalf("got %#v, want Num(3)", v)
	}
}

func TestEvalLoopNOverCapReportsLoopOverflow(t *testing.T) {
	rt := newRuntime(t)
	prog, err := lang.Parse("test.tgsk", `[loop@100000000]{[break]}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	_, err = router.Eval(context.Background(), rt, prog)
	if err == nil {
		t.Fatal("expected an error for a loop count over the configured cap")
	}
	if rerr, ok := err.(router.Error); !ok || rerr.Kind != "E_LOOP_OVERFLOW" {
		t.Fatalf("got %#v, want router.Error{Kind: E_LOOP_OVERFLOW}", err)
	}
}

func TestEvalLoopBreakStopsEarly(t *testing.T) {
	rt := newRuntime(t)
	mustEval(t, rt, `[math@0]>[store@count]`)
	mustEval(t, rt, `[loop@10]{[var@count]>[math@count+1]>[store@count]>[if(count==3)]{[break]}}`)
	v, _, _ := rt.Vars.Get("count")
	if v.Num != 3 {
		t.Fatalf("got %#v, want Num(3) after break", v)
	}
}

func TestEvalLoopUntilStopsWhenConditionTrue(t *testing.T) {
	rt := newRuntime(t)
	mustEval(t, rt, `[math@0]>[store@count]`)
	mustEval(t, rt, `[loop:until@(count==3)]{[var@count]>[math@count+1]>[store@count]}`)
	v, _, _ := rt.Vars.Get("count")
	if v.Num != 3 {
		t.Fatalf("got %#v, want Num(3)", v)
	}
}

func TestEvalLoopEachOverRange(t *testing.T) {
	rt := newRuntime(t)
	mustEval(t, rt, `[math@0]>[store@sum]`)
	mustEval(t, rt, `[loop:each(item)@3]{[var@sum]>[math@sum+item]>[store@sum]}`)
	v, _, _ := rt.Vars.Get("sum")
	if v.Num != 3 {
		t.Fatalf("got %#v, want Num(3) (0+1+2)", v)
	}
}

func TestEvalFunctAndCallReturn(t *testing.T) {
	rt := newRuntime(t)
	v := mustEval(t, rt, `[funct:double]{[var@n]>[math@n*2]>[return]}>[math@5]>[store@n]>[call@double]`)
	if v.Num != 10 {
		t.Fatalf("got %#v, want Num(10)", v)
	}
}

func TestEvalStoreRigidRebindFails(t *testing.T) {
	rt := newRuntime(t)
	mustEval(t, rt, `[math@1]>[store:rigid@x]`)
	prog, err := lang.Parse("test.tgsk", `[math@2]>[store:rigid@x]`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := router.Eval(context.Background(), rt, prog); err == nil {
		t.Fatal("expected E_RIGID_REBIND on second store:rigid to the same name")
	}
}

func TestEvalStoreContextResolvesFirstMatch(t *testing.T) {
	rt := newRuntime(t)
	mustEval(t, rt, `[math@1]>[store@level]`)
	mustEval(t, rt, `[str@"low"]>[store:context(level==1)@tier]`)
	mustEval(t, rt, `[str@"high"]>[store:context(default)@tier]`)
	v := mustEval(t, rt, `[var@tier]`)
	if v.Str != "low" {
		t.Fatalf("got %#v, want Str(low)", v)
	}
}

func TestEvalStoreContextFallsBackToDefault(t *testing.T) {
	rt := newRuntime(t)
	mustEval(t, rt, `[math@9]>[store@level]`)
	mustEval(t, rt, `[str@"low"]>[store:context(level==1)@tier]`)
	mustEval(t, rt, `[str@"high"]>[store:context(default)@tier]`)
	v := mustEval(t, rt, `[var@tier]`)
	if v.Str != "high" {
		t.Fatalf("got %#v, want Str(high)", v)
	}
}

func TestEvalStoreContextLiteralDefaultSpellingFallsBack(t *testing.T) {
	rt := newRuntime(t)
	mustEval(t, rt, `[math@9]>[store@level]`)
	mustEval(t, rt, `[str@"low"]>[store:context(level==1)@tier]`)
	mustEval(t, rt, `[str@"high"]>[store:context(default==true)@tier]`)
	v := mustEval(t, rt, `[var@tier]`)
	if v.Str != "high" {
		t.Fatalf("got %#v, want Str(high)", v)
	}
}

func TestEvalLogFormatFlagMismatchWithExtensionErrors(t *testing.T) {
	rt := newRuntime(t)
	prog, err := lang.Parse("test.tgsk", `[log(yaml)@"out.json"]{[key(a)@1]}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	_, err = router.Eval(context.Background(), rt, prog)
	if err == nil {
		t.Fatal("expected E_FORMAT for a (yaml) flag against a .json path")
	}
	if derr, ok := err.(document.DocError); !ok || derr.Kind != "E_FORMAT" {
		t.Fatalf("got %#v, want document.DocError{Kind: E_FORMAT}", err)
	}
}

func TestEvalUnknownPacketErrors(t *testing.T) {
	rt := newRuntime(t)
	prog, err := lang.Parse("test.tgsk", `[frobnicate@1]`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if _, err := router.Eval(context.Background(), rt, prog); err == nil {
		t.Fatal("expected an error for an unregistered op")
	}
}

func TestEvalCmpProducesStoredComparatorAppliedByIf(t *testing.T) {
	rt := newRuntime(t)
	mustEval(t, rt, `[cmp@gt]>[store@rel]`)
	v := mustEval(t, rt, `[if(5 rel 3)]{[str@"yes"]}>[else]{[str@"no"]}`)
	if v.Kind != value.KindStr || v.Str != "yes" {
		t.Fatalf("got %#v, want Str(yes)", v)
	}

	v2 := mustEval(t, rt, `[if(2 rel 3)]{[str@"yes"]}>[else]{[str@"no"]}`)
	if v2.Str != "no" {
		t.Fatalf("got %#v, want Str(no)", v2)
	}
}

func TestEvalModWritesDocumentFields(t *testing.T) {
	rt := newRuntime(t)
	mustEval(t, rt, `[parse(json)@"{}"]>[store@d]`)
	v := mustEval(t, rt, `[mod(overwrite)@d]{[set(name)@"Saryn"]>[set(level)@40]}`)
	if v.Kind != value.KindDoc || v.Doc == nil {
		t.Fatalf("got %#v, want a Doc", v)
	}
	node, ok := v.Doc.Root.Object().Get("name")
	if !ok || node.StrValue() != "Saryn" {
		t.Fatalf("expected name field Saryn, got %#v ok=%v", node, ok)
	}
}
