// Command tagspeak is the reference CLI: run, build, help, lint, and an
// interactive repl subcommand, grounded on the one-process-per-script
// model §6.1 of the reference describes.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tagspeak/tagspeak/internal/box"
	"github.com/tagspeak/tagspeak/internal/config"
	"github.com/tagspeak/tagspeak/internal/lang"
	_ "github.com/tagspeak/tagspeak/internal/packets"
	"github.com/tagspeak/tagspeak/internal/router"
	"github.com/tagspeak/tagspeak/internal/runtime"

	"github.com/tagspeak/tagspeak"
)

var (
	verbose        bool
	noninteractive bool
	configPath     string
)

var rootCmd = &cobra.Command{
	Use:   "tagspeak",
	Short: "TagSpeak — a bracketed-packet dataflow interpreter",
}

var runCmd = &cobra.Command{
	Use:   "run <file.tgsk>",
	Short: "Execute a script",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := tagspeak.Options{ConfigPath: configPath, Verbose: verbose, Noninteractive: noninteractive}
		v, err := tagspeak.Run(cmd.Context(), args[0], opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorCode(err))
			os.Exit(1)
		}
		if verbose {
			fmt.Println(v.String())
		}
		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build <file.tgsk>",
	Short: "Parse a script without evaluating it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rel := args[0]
		if _, err := tagspeak.Build(rel); err != nil {
			fmt.Fprintln(os.Stderr, errorCode(err))
			os.Exit(1)
		}
		fmt.Println("build_ok " + rel)
		return nil
	},
}

var lintCmd = &cobra.Command{
	Use:   "lint <file.tgsk> [more.tgsk ...]",
	Short: "Run parse-level heuristics over one or more scripts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results := tagspeak.Lint(args)
		for _, r := range results {
			fmt.Fprintf(os.Stderr, "%s: %s\n", r.Path, errorCode(r.Err))
		}
		if len(results) > 0 {
			os.Exit(1)
		}
		return nil
	},
}

var helpPacketCmd = &cobra.Command{
	Use:   "help [packet]",
	Short: "Print the canonical packet reference",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Print(packetReference)
			return nil
		}
		entry, ok := packetHelp[args[0]]
		if !ok {
			return fmt.Errorf("no help entry for packet %q", args[0])
		}
		fmt.Println(entry)
		return nil
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Evaluate chains interactively against one Runtime",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print the final value and enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noninteractive, "noninteractive", false, "auto-deny every yellow/exec/run confirmation prompt")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to .tagspeak.toml (default: beside the script)")
	rootCmd.AddCommand(runCmd, buildCmd, lintCmd, helpPacketCmd, replCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// errorCode renders an error the way stdout/stderr diagnostics are
// expected to read: the error's own message, which already carries an
// E_* code when it originates from one of the interpreter's sentinel
// error types.
func errorCode(err error) string {
	return err.Error()
}

// runRepl reads chains from stdin line by line, evaluating each against
// a single long-lived Runtime so [store]/[funct] bindings persist across
// lines, the way a script's top-level chains would.
func runRepl(ctx context.Context) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	resolver, err := box.FindRoot(dir)
	if err != nil {
		resolver = box.NoBox()
	}
	cfg, err := config.Load(filepath.Join(dir, ".tagspeak.toml"))
	if err != nil {
		return err
	}
	if noninteractive {
		cfg.Prompts.Noninteractive = true
	}
	rt := runtime.New(resolver, cfg, nil)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("tagspeak repl — one Runtime, one line at a time. Ctrl-D to exit.")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		prog, err := lang.Parse("<repl>", line)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorCode(err))
			continue
		}
		v, err := router.Eval(ctx, rt, prog)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorCode(err))
			continue
		}
		fmt.Println(v.String())
	}
}
