package lang

import "testing"

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := Parse("test.tgsk", src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return prog
}

func TestParseSimplePacket(t *testing.T) {
	prog := mustParse(t, `[math@1+1]`)
	if len(prog.Chains) != 1 || len(prog.Chains[0].Atoms) != 1 {
		t.Fatalf("expected one chain of one atom, got %+v", prog)
	}
	pkt, ok := prog.Chains[0].Atoms[0].(*Packet)
	if !ok {
		t.Fatalf("expected *Packet, got %T", prog.Chains[0].Atoms[0])
	}
	if pkt.Op != "math" {
		t.Errorf("Op = %q, want math", pkt.Op)
	}
	bin, ok := pkt.Arg.(*Binary)
	if !ok || bin.Op != "+" {
		t.Fatalf("Arg = %#v, want Binary(+)", pkt.Arg)
	}
}

func TestParseChainConnector(t *testing.T) {
	prog := mustParse(t, `[math@1+1]>[log@out.json]`)
	c := prog.Chains[0]
	if len(c.Atoms) != 2 {
		t.Fatalf("expected 2 chained atoms, got %d", len(c.Atoms))
	}
	second := c.Atoms[1].(*Packet)
	if second.Op != "log" {
		t.Errorf("second op = %q, want log", second.Op)
	}
	arg, ok := second.Arg.(*StringLit)
	if !ok || arg.Value != "out.json" {
		t.Fatalf("expected path literal out.json, got %#v", second.Arg)
	}
}

func TestParseLabelAndFlags(t *testing.T) {
	prog := mustParse(t, `[store:context(predicate)@name]`)
	pkt := prog.Chains[0].Atoms[0].(*Packet)
	if pkt.Label != "context" || !pkt.HasLabel {
		t.Errorf("Label = %q, want context", pkt.Label)
	}
	if len(pkt.Flags) != 1 || pkt.Flags[0].Key != "predicate" {
		t.Fatalf("Flags = %+v, want [predicate]", pkt.Flags)
	}
}

func TestParseLoopUntilArgForm(t *testing.T) {
	prog := mustParse(t, `[loop:until@(count==3)]{ [print@count] }`)
	pkt := prog.Chains[0].Atoms[0].(*Packet)
	if pkt.Op != "loop" || pkt.Label != "until" {
		t.Fatalf("got op=%q label=%q", pkt.Op, pkt.Label)
	}
	bin, ok := pkt.Arg.(*ParenGroup).X.(*Binary)
	if !ok || bin.Op != "==" {
		t.Fatalf("expected (count==3) binary, got %#v", pkt.Arg)
	}
	if pkt.Body == nil || len(pkt.Body.Chains) != 1 {
		t.Fatalf("expected a one-chain body, got %#v", pkt.Body)
	}
}

func TestParseDocumentPathFlag(t *testing.T) {
	prog := mustParse(t, `[set(items[0].name)@"Saryn"]`)
	pkt := prog.Chains[0].Atoms[0].(*Packet)
	if pkt.FlagsRaw != "items[0].name" {
		t.Errorf("FlagsRaw = %q, want items[0].name", pkt.FlagsRaw)
	}
}

func TestParseIfOrElseChain(t *testing.T) {
	prog := mustParse(t, `[if(a==1)]{[log@"one"]}>[or(a==2)]{[log@"two"]}>[else]{[log@"other"]}`)
	ic, ok := prog.Chains[0].Atoms[0].(*IfChain)
	if !ok {
		t.Fatalf("expected *IfChain, got %T", prog.Chains[0].Atoms[0])
	}
	if len(ic.Branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(ic.Branches))
	}
	if ic.Else == nil {
		t.Fatal("expected an else block")
	}
}

func TestParseLegacyThenForm(t *testing.T) {
	prog := mustParse(t, `[if(a==1)]>[then]{[log@"one"]}`)
	ic := prog.Chains[0].Atoms[0].(*IfChain)
	if len(ic.Branches) != 1 || ic.Branches[0].Body == nil {
		t.Fatalf("expected one branch with a body, got %+v", ic.Branches)
	}
}

func TestParseBareWordLogic(t *testing.T) {
	prog := mustParse(t, `[if(not a and b or c)]{[log@"x"]}`)
	ic := prog.Chains[0].Atoms[0].(*IfChain)
	_, ok := ic.Branches[0].Cond.(*Binary)
	if !ok {
		t.Fatalf("expected top-level Binary(||), got %#v", ic.Branches[0].Cond)
	}
}

func TestParseFunctAndCall(t *testing.T) {
	prog := mustParse(t, `[funct:tick]{[print@"tick"]}>[loop@3]{[call@tick]}`)
	c := prog.Chains[0]
	funct := c.Atoms[0].(*Packet)
	if funct.Op != "funct" || funct.Label != "tick" {
		t.Fatalf("got op=%q label=%q", funct.Op, funct.Label)
	}
	loop := c.Atoms[1].(*Packet)
	if loop.Op != "loop" {
		t.Fatalf("got op=%q", loop.Op)
	}
}

func TestParseEmptyOpFails(t *testing.T) {
	_, err := Parse("t.tgsk", `[]`)
	if err == nil {
		t.Fatal("expected an error for empty packet op")
	}
	d := err.(Diagnostic)
	if d.Kind != ErrEmptyOp {
		t.Errorf("Kind = %q, want %q", d.Kind, ErrEmptyOp)
	}
}

func TestParseUnbalancedBracketFails(t *testing.T) {
	_, err := Parse("t.tgsk", `[math@1`)
	if err == nil {
		t.Fatal("expected an error for an unterminated '['")
	}
	d := err.(Diagnostic)
	if d.Kind != ErrUnbalancedBracket {
		t.Errorf("Kind = %q, want %q", d.Kind, ErrUnbalancedBracket)
	}
	if d.Line != 1 || d.Col != 1 {
		t.Errorf("position = %d:%d, want 1:1 (the opening '[')", d.Line, d.Col)
	}
}

func TestParseUnbalancedBraceFails(t *testing.T) {
	_, err := Parse("t.tgsk", `[funct:tick]{[print@"tick"]`)
	if err == nil {
		t.Fatal("expected an error for an unterminated block")
	}
}

func TestParseIfWithoutConditionFails(t *testing.T) {
	_, err := Parse("t.tgsk", `[if]{[log@"x"]}`)
	if err == nil {
		t.Fatal("expected an error for [if] without a condition")
	}
	d := err.(Diagnostic)
	if d.Kind != ErrIfNoCond {
		t.Errorf("Kind = %q, want %q", d.Kind, ErrIfNoCond)
	}
}

func TestParseMissingLeadingBracketReportsUnexpectedChar(t *testing.T) {
	_, err := Parse("t.tgsk", `print@"hello"]`)
	if err == nil {
		t.Fatal("expected an error for a chain not starting with '[' or '{'")
	}
	d := err.(Diagnostic)
	if d.Kind != ErrUnexpectedChar {
		t.Errorf("Kind = %q, want %q", d.Kind, ErrUnexpectedChar)
	}
	if d.Line != 1 || d.Col != 1 {
		t.Errorf("position = %d:%d, want 1:1", d.Line, d.Col)
	}
}

func TestFindUnmatchedPosition(t *testing.T) {
	if _, _, _, ok := findUnmatchedPosition(`print@"hello"]`); ok {
		t.Fatal("expected this source to be fully lexable")
	}
	if _, _, _, ok := findUnmatchedPosition("~not valid"); !ok {
		t.Fatal("expected ~ to be an unmatched character")
	}
}
