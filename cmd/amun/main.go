// Package main implements the Amun compiler CLI.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/amunlang/amun/pkg/compiler"
	"github.com/amunlang/amun/pkg/config"
	"github.com/amunlang/amun/pkg/diag"
	"github.com/amunlang/amun/pkg/symbolmap"
	"github.com/amunlang/amun/pkg/ui"
)

var version = "0.1.0-alpha"

// knownCommands backs §6's "subcommands are dispatched from a
// registered map keyed by the first positional argument"; checked
// before cobra's own dispatch so an unrecognized subcommand produces
// exactly the wording §6 specifies rather than cobra's own phrasing.
var knownCommands = map[string]bool{
	"build":     true,
	"check":     true,
	"emit-llvm": true,
	"resolve":   true,
	"version":   true,
	"help":      true,
}

// linkerFlags holds whatever `-l` collected (§6: "consumes the rest of
// the command line"), split out of os.Args before cobra/pflag ever
// sees the remainder — pflag has no notion of a flag that swallows
// every argument after it, so this can't be a registered flag.
var linkerFlags []string

func main() {
	args := os.Args[1:]

	if len(args) > 0 {
		first := args[0]
		if !strings.HasPrefix(first, "-") && !knownCommands[first] {
			fmt.Fprintf(os.Stderr, "Can't find command with name %s\n", first)
			os.Exit(1)
		}
	}

	rest, lflags, err := splitLinkerArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	linkerFlags = lflags

	rootCmd := &cobra.Command{
		Use:          "amun",
		Short:        "Amun - a statically-typed, ahead-of-time compiled systems language",
		Version:      version,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintHelp(version)
		},
	}
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		ui.PrintHelp(version)
	})
	// -o/-w/-werr are spelled with one dash; pflag reads a single dash
	// as a shorthand cluster, so map them onto the long flag names.
	for i, a := range rest {
		if a == "-o" || a == "-w" || a == "-werr" {
			rest[i] = "-" + a
		}
	}
	rootCmd.SetArgs(rest)

	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(emitLLVMCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// driverFlags holds the `-o`/`-w`/`-werr` options shared by
// build/check/emit-llvm (§6). Each is enforced at most once via
// onceString/onceBool, whose Set errors on a second call — pflag
// itself is happy to silently accept a flag twice.
type driverFlags struct {
	output           onceString
	emitWarnings     onceBool
	warningsAsErrors onceBool
	watch            bool
}

func registerDriverFlags(cmd *cobra.Command, f *driverFlags) {
	f.output.value = "output"
	cmd.Flags().Var(&f.output, "o", "output file base (default \"output\")")
	cmd.Flags().Var(&f.emitWarnings, "w", "emit warnings (default: suppressed)")
	cmd.Flags().Var(&f.warningsAsErrors, "werr", "treat warnings as errors (implies -w)")
	cmd.Flags().Lookup("w").NoOptDefVal = "true"
	cmd.Flags().Lookup("werr").NoOptDefVal = "true"
	cmd.Flags().BoolVar(&f.watch, "watch", false, "rebuild on every source change")
}

func buildCmd() *cobra.Command {
	f := &driverFlags{}
	cmd := &cobra.Command{
		Use:   "build [file.amun]",
		Short: "Compile an Amun source file and run the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDriver(args[0], f, func(path string, opts compiler.Options) (*diag.Engine, error) {
				return compiler.CompileSourceCode(path, opts)
			})
		},
	}
	registerDriverFlags(cmd, f)
	return cmd
}

func checkCmd() *cobra.Command {
	f := &driverFlags{}
	cmd := &cobra.Command{
		Use:   "check [file.amun]",
		Short: "Type-check an Amun source file, reporting diagnostics only",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDriver(args[0], f, func(path string, opts compiler.Options) (*diag.Engine, error) {
				return compiler.CheckSourceCode(path, opts)
			})
		},
	}
	registerDriverFlags(cmd, f)
	return cmd
}

func emitLLVMCmd() *cobra.Command {
	f := &driverFlags{}
	cmd := &cobra.Command{
		Use:   "emit-llvm [file.amun]",
		Short: "Type-check and hand the checked AST to the LLVM backend slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDriver(args[0], f, func(path string, opts compiler.Options) (*diag.Engine, error) {
				_, diags, err := compiler.EmitLLVMIRFromSourceCode(path, opts)
				return diags, err
			})
		},
	}
	registerDriverFlags(cmd, f)
	return cmd
}

// resolveCmd backs `amun resolve`: given a symbol map produced by a
// prior `amun build` and a mangled backend symbol name, it prints the
// source span that symbol was generated from.
func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [symbolmap.json] [mangled-name]",
		Short: "Resolve a mangled backend symbol name back to its source span",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mapPath, mangled := args[0], args[1]
			data, err := os.ReadFile(mapPath)
			if err != nil {
				return fmt.Errorf("reading symbol map: %w", err)
			}
			consumer, err := symbolmap.NewConsumer(data)
			if err != nil {
				return fmt.Errorf("parsing symbol map: %w", err)
			}
			pos, err := consumer.ResolveName(mangled)
			if err != nil {
				return err
			}
			fmt.Printf("%s:%d:%d\n", pos.File, pos.Line, pos.Column)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of Amun",
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintVersionInfo(version)
		},
	}
}

// driverFunc is the shape every compiler.*SourceCode entry point
// shares once its return value is narrowed to (*diag.Engine, error).
type driverFunc func(path string, opts compiler.Options) (*diag.Engine, error)

func runDriver(path string, f *driverFlags, drive driverFunc) error {
	cfg, err := config.Load(&config.Config{
		Build: config.BuildConfig{
			OutputName:  f.output.value,
			LinkerFlags: linkerFlags,
			Warnings:    warningPolicy(f),
		},
	})
	if err != nil {
		return err
	}

	opts := compiler.FromConfig(cfg)
	opts.Logger = zap.NewNop()

	out := ui.NewBuildOutput()
	out.PrintHeader(version)
	out.PrintFileStart(path, cfg.Build.OutputName)

	if !f.watch {
		return driveAndRender(path, opts, drive, out)
	}
	return runWatch(path, opts, drive, out)
}

func warningPolicy(f *driverFlags) config.WarningPolicy {
	switch {
	case f.warningsAsErrors.value:
		return config.WarningsAsErrors
	case f.emitWarnings.value:
		return config.WarningsShow
	default:
		return config.WarningsSuppress
	}
}

// driveAndRender runs the caller-selected driver entry point and
// renders its diagnostics and pass/fail summary through out.
func driveAndRender(path string, opts compiler.Options, drive driverFunc, out *ui.BuildOutput) error {
	start := time.Now()
	diags, err := drive(path, opts)
	duration := time.Since(start)

	status := ui.StepSuccess
	if err != nil {
		status = ui.StepError
	} else if diags.LevelCount(diag.Warning) > 0 {
		status = ui.StepWarning
	}
	out.PrintStep(ui.Step{Name: "compile", Status: status, Duration: duration})

	diags.Render(os.Stderr)

	if err != nil {
		out.PrintSummary(false, err.Error())
		return err
	}
	out.PrintSummary(true, "")
	return nil
}

// runWatch re-invokes the full driver on every source change, per
// SPEC_FULL §C: a whole-process rebuild loop, not incremental
// compilation (explicitly out of scope, §1).
func runWatch(path string, opts compiler.Options, drive driverFunc, out *ui.BuildOutput) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	if err := driveAndRender(path, opts, drive, out); err != nil {
		out.PrintInfo("watching for changes; fix the error above and save to rebuild")
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			out.PrintInfo("change detected, rebuilding")
			driveAndRender(path, opts, drive, out)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			out.PrintError(watchErr.Error())
		}
	}
}

// splitLinkerArgs implements §6's `-l <flag...>`: remaining arguments
// are forwarded to the external linker, consuming the rest of the
// command line. Returns the arguments up to (not including) `-l` for
// cobra/pflag to parse normally, plus everything after `-l` as linker
// flags. `-l` appearing more than once is a fatal CLI error, same as
// any other repeated option.
func splitLinkerArgs(args []string) (rest []string, flags []string, err error) {
	for i, a := range args {
		if a != "-l" {
			continue
		}
		for _, after := range args[i+1:] {
			if after == "-l" {
				return nil, nil, fmt.Errorf("-l must appear at most once")
			}
		}
		return args[:i], args[i+1:], nil
	}
	return args, nil, nil
}
