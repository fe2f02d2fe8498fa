// Package tagspeak is the embeddable entry point: Run evaluates a script
// file against a fresh interpreter, Build parses a script without running
// it, and Lint parses a list of scripts and reports the first syntax
// error of each broken one instead of stopping at the first broken script.
package tagspeak

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tagspeak/tagspeak/internal/box"
	"github.com/tagspeak/tagspeak/internal/config"
	"github.com/tagspeak/tagspeak/internal/lang"
	_ "github.com/tagspeak/tagspeak/internal/packets"
	"github.com/tagspeak/tagspeak/internal/router"
	"github.com/tagspeak/tagspeak/internal/runtime"
	"github.com/tagspeak/tagspeak/internal/tslog"
	"github.com/tagspeak/tagspeak/internal/value"
)

// Options controls a Run call's interpreter setup. A zero Options loads
// .tagspeak.toml relative to the script's directory, finds the box root
// by walking up from there, and logs at info level.
type Options struct {
	ConfigPath     string // defaults to "<script dir>/.tagspeak.toml"
	Verbose        bool
	Noninteractive bool
}

// Run parses and evaluates the script at path, returning the final last
// value of the program.
func Run(ctx context.Context, path string, opts Options) (value.Value, error) {
	rt, prog, err := prepare(path, opts)
	if err != nil {
		return value.Unit(), err
	}
	return router.Eval(ctx, rt, prog)
}

// Build parses path and reports a syntax error without evaluating
// anything, the way a compiler's build step validates a source tree.
func Build(path string) (*lang.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return lang.Parse(path, string(data))
}

// LintResult is one diagnostic produced by Lint.
type LintResult struct {
	Path string
	Err  error
}

// Lint parses every path given and collects the ones that fail, so a
// caller can report every broken script in one pass rather than stopping
// at the first.
func Lint(paths []string) []LintResult {
	var results []LintResult
	for _, p := range paths {
		if _, err := Build(p); err != nil {
			results = append(results, LintResult{Path: p, Err: err})
		}
	}
	return results
}

// prepare builds the Runtime and parses the script, doing the setup
// Run needs: box discovery rooted at the script's
// directory, config loaded from beside it, and a logger at the
// requested verbosity.
func prepare(path string, opts Options) (*runtime.Runtime, *lang.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	prog, err := lang.Parse(path, string(data))
	if err != nil {
		return nil, nil, err
	}

	dir := filepath.Dir(path)
	resolver, err := box.FindRoot(dir)
	if err != nil {
		resolver = box.NoBox()
	}

	cfgPath := opts.ConfigPath
	if cfgPath == "" {
		cfgPath = filepath.Join(dir, ".tagspeak.toml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if opts.Noninteractive {
		cfg.Prompts.Noninteractive = true
	}

	log, err := tslog.New(opts.Verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}

	rt := runtime.New(resolver, cfg, log)
	return rt, prog, nil
}
