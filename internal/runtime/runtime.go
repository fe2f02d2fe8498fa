// Package runtime holds the interpreter's mutable state across a program
// run: variables, functions, the threaded last value and signal, depth
// counters, consent flags, and the box/config the packet handlers read
// from. The router (package router) owns evaluation; Runtime is the
// state it evaluates against.
package runtime

import (
	"github.com/tagspeak/tagspeak/internal/box"
	"github.com/tagspeak/tagspeak/internal/config"
	"github.com/tagspeak/tagspeak/internal/document"
	"github.com/tagspeak/tagspeak/internal/lang"
	"github.com/tagspeak/tagspeak/internal/value"
	"go.uber.org/zap"
)

// Default depth caps, per the run configuration's defaults.
const (
	DefaultCallDepth  = 256
	DefaultLoopLimit  = 1_000_000
	DefaultRunNesting = 8
)

// Consent tracks the gated side-effect permissions a program has
// accumulated. A yellow packet raises YellowDepth for its body's
// duration, and answering 'a' at its prompt latches AllowYellowAll for
// the rest of the process; AllowExec/AllowRun are set from config when
// the Runtime is built.
type Consent struct {
	AllowYellowAll bool
	AllowExec      bool
	AllowRun       bool
	Noninteractive bool
	RedEnabled     bool
	YellowDepth    int
}

// Runtime is the full mutable state threaded through one program
// evaluation: variables, user-defined functions, the last value, the
// pending signal, depth counters, consent, and the filesystem box.
type Runtime struct {
	Vars  *VarTable
	Funcs map[string]*lang.Block

	Last   value.Value
	Signal Signal

	callDepth  int
	loopCount  int
	runDepth   int

	Consent Consent
	Box     *box.Resolver
	Config  *config.Config
	Log     *zap.Logger

	docStack []*DocFrame
}

// DocFrame is the node a [mod]/[log(fmt)]/[sect] body writes into: a
// document mutation packet resolves its path against Root, honoring
// Overwrite/Debug; a structured-emit packet ([key]/[sect]) just sets
// fields on Root directly.
type DocFrame struct {
	Root      *document.Node
	Overwrite bool
	Debug     bool
}

// PushDoc enters a new document-writing context; handlers look it up
// again as CurrentDoc without re-threading it through every
// intermediate call.
func (r *Runtime) PushDoc(f *DocFrame) { r.docStack = append(r.docStack, f) }

// PopDoc exits the innermost document-writing context.
func (r *Runtime) PopDoc() { r.docStack = r.docStack[:len(r.docStack)-1] }

// CurrentDoc returns the innermost active document-writing context, or
// nil if none is open (a [set]/[key] packet outside any [mod]/[log(fmt)]
// body).
func (r *Runtime) CurrentDoc() *DocFrame {
	if len(r.docStack) == 0 {
		return nil
	}
	return r.docStack[len(r.docStack)-1]
}

// New builds a Runtime over the given box and config, with an empty
// variable and function table and Last set to unit.
func New(b *box.Resolver, cfg *config.Config, log *zap.Logger) *Runtime {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runtime{
		Vars:   NewVarTable(),
		Funcs:  make(map[string]*lang.Block),
		Last:   value.Unit(),
		Box:    b,
		Config: cfg,
		Log:    log,
		Consent: Consent{
			AllowExec:      cfg.Security.AllowExec,
			AllowRun:       !cfg.Run.RequireYellow,
			AllowYellowAll: cfg.Security.AllowYellowAll,
			Noninteractive: cfg.Prompts.Noninteractive,
		},
	}
}

// DefineFunc registers body under tag, overwriting any prior definition.
func (r *Runtime) DefineFunc(tag string, body *lang.Block) {
	r.Funcs[tag] = body
}

// Func looks up a function definition by tag.
func (r *Runtime) Func(tag string) (*lang.Block, bool) {
	b, ok := r.Funcs[tag]
	return b, ok
}

// EnterCall increments the call-depth counter, failing with
// E_CALL_DEPTH_EXCEEDED once the configured cap is passed. Callers must
// pair a successful EnterCall with a deferred ExitCall.
func (r *Runtime) EnterCall() error {
	if r.callDepth >= r.callDepthCap() {
		return callDepthExceeded()
	}
	r.callDepth++
	return nil
}

func (r *Runtime) ExitCall() { r.callDepth-- }

func (r *Runtime) callDepthCap() int { return DefaultCallDepth }

// ResetLoopCounter zeroes the iteration counter for a fresh loop
// invocation. The router calls this once per [loop]/[loop:forever]/
// [loop:until]/[loop:each] evaluation, so the cap bounds one loop's
// iterations rather than accumulating across unrelated loops.
func (r *Runtime) ResetLoopCounter() { r.loopCount = 0 }

// CheckLoopIteration increments the current loop's iteration counter,
// failing with E_LOOP_OVERFLOW past the cap. Called once per body pass.
func (r *Runtime) CheckLoopIteration() error {
	r.loopCount++
	if r.loopCount > DefaultLoopLimit {
		return loopOverflow(float64(r.loopCount))
	}
	return nil
}

// EnterRun increments the run-nesting counter for [run] evaluating a
// sub-script, failing with E_RUN_DEPTH_EXCEEDED past the cap. Callers
// must pair a successful EnterRun with a deferred ExitRun.
func (r *Runtime) EnterRun() error {
	if r.runDepth >= r.runNestingCap() {
		return runDepthExceeded()
	}
	r.runDepth++
	return nil
}

func (r *Runtime) ExitRun() { r.runDepth-- }

func (r *Runtime) runNestingCap() int {
	if r.Config != nil && r.Config.Run.MaxDepth > 0 {
		return r.Config.Run.MaxDepth
	}
	return DefaultRunNesting
}

// WithYellow runs fn with AllowYellowAll raised and YellowDepth
// incremented, restoring both afterward, so packets evaluated inside fn
// skip what would otherwise be an interactive confirmation. The [yellow]
// packet does not go through it.
func (r *Runtime) WithYellow(fn func() error) error {
	prev := r.Consent.AllowYellowAll
	r.Consent.AllowYellowAll = true
	r.Consent.YellowDepth++
	defer func() {
		r.Consent.AllowYellowAll = prev
		r.Consent.YellowDepth--
	}()
	return fn()
}
