package packets

import (
	"bufio"
	"net/url"
	"strings"
	"testing"

	"github.com/tagspeak/tagspeak/internal/box"
	"github.com/tagspeak/tagspeak/internal/config"
	"github.com/tagspeak/tagspeak/internal/lang"
	"github.com/tagspeak/tagspeak/internal/runtime"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) failed: %v", raw, err)
	}
	return u
}

func withStdin(t *testing.T, input string) {
	t.Helper()
	prev := stdinReader
	stdinReader = bufio.NewReader(strings.NewReader(input))
	t.Cleanup(func() { stdinReader = prev })
}

func TestConfirmPromptAllowYellowAllSkipsStdin(t *testing.T) {
	rt := runtime.New(box.NoBox(), config.Default(), nil)
	rt.Consent.AllowYellowAll = true
	proceed, latch := confirmPrompt(rt, "do it")
	if !proceed || latch {
		t.Fatalf("got proceed=%v latch=%v, want true/false", proceed, latch)
	}
}

func TestConfirmPromptNoninteractiveDenies(t *testing.T) {
	rt := runtime.New(box.NoBox(), config.Default(), nil)
	rt.Consent.Noninteractive = true
	proceed, latch := confirmPrompt(rt, "do it")
	if proceed || latch {
		t.Fatalf("got proceed=%v latch=%v, want false/false", proceed, latch)
	}
}

func TestConfirmPromptYAnswerProceedsWithoutLatch(t *testing.T) {
	rt := runtime.New(box.NoBox(), config.Default(), nil)
	withStdin(t, "y\n")
	proceed, latch := confirmPrompt(rt, "do it")
	if !proceed || latch {
		t.Fatalf("got proceed=%v latch=%v, want true/false", proceed, latch)
	}
}

func TestConfirmPromptAAnswerLatches(t *testing.T) {
	rt := runtime.New(box.NoBox(), config.Default(), nil)
	withStdin(t, "a\n")
	proceed, latch := confirmPrompt(rt, "do it")
	if !proceed || !latch {
		t.Fatalf("got proceed=%v latch=%v, want true/true", proceed, latch)
	}
}

func TestConfirmPromptOtherAnswerDenies(t *testing.T) {
	rt := runtime.New(box.NoBox(), config.Default(), nil)
	withStdin(t, "n\n")
	proceed, latch := confirmPrompt(rt, "do it")
	if proceed || latch {
		t.Fatalf("got proceed=%v latch=%v, want false/false", proceed, latch)
	}
}

func TestExecAdmittedByAllowlist(t *testing.T) {
	rt := runtime.New(box.NoBox(), config.Default(), nil)
	rt.Config.Security.ExecAllowlist = []string{"ls"}
	if !execAdmitted(rt, "ls -la") {
		t.Fatal("expected ls to be admitted by allowlist")
	}
	if execAdmitted(rt, "rm -rf /") {
		t.Fatal("expected rm to be denied by allowlist")
	}
}

func TestExecAdmittedByYellowDepth(t *testing.T) {
	rt := runtime.New(box.NoBox(), config.Default(), nil)
	rt.Consent.YellowDepth = 1
	if !execAdmitted(rt, "anything") {
		t.Fatal("expected admission while inside a yellow scope")
	}
}

func TestExecResultFlagShapes(t *testing.T) {
	codePkt := &lang.Packet{Flags: []lang.Flag{{Key: "code"}}}
	if v := execResult(codePkt, 7, "out", "err"); v.Num != 7 {
		t.Fatalf("got %#v, want Num(7)", v)
	}

	stderrPkt := &lang.Packet{Flags: []lang.Flag{{Key: "stderr"}}}
	if v := execResult(stderrPkt, 0, "out", "boom"); v.Str != "boom" {
		t.Fatalf("got %#v, want Str(boom)", v)
	}

	defaultPkt := &lang.Packet{}
	if v := execResult(defaultPkt, 0, "out\n", "err"); v.Str != "out" {
		t.Fatalf("got %#v, want Str(out) trimmed", v)
	}

	jsonPkt := &lang.Packet{Flags: []lang.Flag{{Key: "json"}}}
	v := execResult(jsonPkt, 1, "out", "err")
	if !strings.Contains(v.Str, `"code"`) {
		t.Fatalf("expected json-shaped output, got %q", v.Str)
	}
}

func TestMatchAllowEntry(t *testing.T) {
	u := mustParseURL(t, "https://api.example.com/v1/widgets")
	cases := []struct {
		entry string
		want  bool
	}{
		{"api.example.com", true},
		{"https://api.example.com", true},
		{"http://api.example.com", false},
		{"api.example.com/v1", true},
		{"api.example.com/v2", false},
		{"other.example.com", false},
	}
	for _, c := range cases {
		if got := matchAllowEntry(c.entry, u); got != c.want {
			t.Errorf("matchAllowEntry(%q) = %v, want %v", c.entry, got, c.want)
		}
	}
}
