// Package ui provides styled CLI output using lipgloss, the same
// dependency pkg/diag uses to render diagnostics.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary   = lipgloss.Color("#7D56F4")
	colorSecondary = lipgloss.Color("#56C3F4")
	colorSuccess   = lipgloss.Color("#5AF78E")
	colorWarning   = lipgloss.Color("#F7DC6F")
	colorError     = lipgloss.Color("#FF6B9D")
	colorMuted     = lipgloss.Color("#6C7086")

	colorText      = lipgloss.Color("#CDD6F4")
	colorHighlight = lipgloss.Color("#F5E0DC")
	colorNormal    = lipgloss.Color("#FFFFFF")
)

var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 2).
			MarginBottom(1)

	styleVersion = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)

	styleSection = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSecondary).
			MarginTop(1)

	styleFileInput = lipgloss.NewStyle().
			Foreground(colorText)

	styleFileOutput = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	styleError   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

	styleStepLabel = lipgloss.NewStyle().Foreground(colorText).Width(12).Align(lipgloss.Left)
	styleStepTime  = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)

	styleSummary = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(colorMuted).
			MarginTop(1).
			PaddingTop(1)

	styleIndent = lipgloss.NewStyle().PaddingLeft(2)

	styleNormalText = lipgloss.NewStyle().Foreground(colorNormal)
)

// BuildOutput renders a single driver invocation's progress: a file
// header, a step-by-step status line per compiler phase, and a
// closing summary.
type BuildOutput struct {
	startTime time.Time
}

// NewBuildOutput starts timing a build.
func NewBuildOutput() *BuildOutput {
	return &BuildOutput{startTime: time.Now()}
}

// PrintHeader prints the Amun banner.
func (b *BuildOutput) PrintHeader(version string) {
	fmt.Println(styleHeader.Render("Amun") + " " + styleVersion.Render("v"+version))
}

// PrintFileStart prints the input/output file pair a driver invocation
// is about to process.
func (b *BuildOutput) PrintFileStart(inputPath, outputPath string) {
	input := styleFileInput.Render(inputPath)
	arrow := styleMuted.Render("->")
	output := styleFileOutput.Render(outputPath)
	fmt.Printf("  %s %s %s\n\n", input, arrow, output)
}

// Step represents one driver phase's outcome (parse, check, backend).
type Step struct {
	Name     string
	Status   StepStatus
	Duration time.Duration
	Message  string
}

// StepStatus is a Step's outcome.
type StepStatus int

const (
	StepSuccess StepStatus = iota
	StepWarning
	StepError
)

// PrintStep prints one driver phase's status line.
func (b *BuildOutput) PrintStep(step Step) {
	var icon, status string
	switch step.Status {
	case StepSuccess:
		icon, status = "+", styleSuccess.Render("done")
	case StepWarning:
		icon, status = "!", styleWarning.Render("warnings")
	case StepError:
		icon, status = "x", styleError.Render("failed")
	}

	line := fmt.Sprintf("  %s %s %s", icon, styleStepLabel.Render(step.Name), status)
	if step.Duration > 0 {
		line += " " + styleStepTime.Render("("+formatDuration(step.Duration)+")")
	}
	fmt.Println(line)

	if step.Message != "" {
		fmt.Println(styleMuted.Render("    " + step.Message))
	}
}

// PrintSummary prints the closing line for a driver invocation.
func (b *BuildOutput) PrintSummary(success bool, errorMsg string) {
	elapsed := time.Since(b.startTime)
	fmt.Println()

	var summary string
	if success {
		summary = fmt.Sprintf("%s built in %s", styleSuccess.Render("success"), styleStepTime.Render(formatDuration(elapsed)))
	} else {
		summary = styleError.Render("build failed")
		if errorMsg != "" {
			summary += "\n" + styleError.Render("  error: ") + errorMsg
		}
	}
	fmt.Println(styleSummary.Render(summary))
}

// PrintError prints a single error line.
func (b *BuildOutput) PrintError(msg string) {
	fmt.Println(styleIndent.Render(styleError.Render("error: ") + msg))
}

// PrintInfo prints a single informational line.
func (b *BuildOutput) PrintInfo(msg string) {
	fmt.Println(styleIndent.Render(styleMuted.Render(msg)))
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dus", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// PrintVersionInfo prints the `amun version` output.
func PrintVersionInfo(version string) {
	fmt.Println(styleHeader.Render("Amun"))
	fmt.Println()
	fmt.Printf("  %s %s\n", styleMuted.Render("Version:"), styleSuccess.Render(version))
	fmt.Printf("  %s %s\n", styleMuted.Render("Runtime:"), styleNormalText.Render("Go"))
	fmt.Println()
}

// PrintHelp prints the colorized help banner shown when amun is invoked
// with no subcommand.
func PrintHelp(version string) {
	header := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	muted := styleMuted
	desc := lipgloss.NewStyle().Foreground(colorText)
	section := styleSection
	command := lipgloss.NewStyle().Foreground(colorSuccess)
	flag := lipgloss.NewStyle().Foreground(colorHighlight)

	fmt.Println()
	fmt.Println(header.Render("Amun") + " " + muted.Render("- a statically-typed, ahead-of-time compiled systems language"))
	fmt.Println(muted.Render("  v" + version))
	fmt.Println()

	fmt.Println(desc.Render("Amun parses, type-checks, and hands a checked AST to a pluggable"))
	fmt.Println(desc.Render("backend. This build ships the diagnostics-only reference path."))
	fmt.Println()

	fmt.Println(section.Render("Usage:"))
	fmt.Println("  amun [command] [flags]")
	fmt.Println()

	fmt.Println(section.Render("Available Commands:"))
	commands := []struct{ name, desc string }{
		{"build", "Compile an Amun source file and run the backend"},
		{"check", "Type-check an Amun source file, reporting diagnostics only"},
		{"emit-llvm", "Type-check and hand the checked AST to the LLVM backend slot"},
		{"resolve", "Resolve a mangled backend symbol name back to its source span"},
		{"version", "Print the version number of Amun"},
	}
	for _, cmd := range commands {
		fmt.Printf("  %s  %s\n", command.Render(fmt.Sprintf("%-12s", cmd.name)), cmd.desc)
	}
	fmt.Println()

	fmt.Println(section.Render("Flags:"))
	fmt.Printf("  %s           output file base (default \"output\")\n", flag.Render("-o <name>"))
	fmt.Printf("  %s                   emit warnings (default: suppressed)\n", flag.Render("-w"))
	fmt.Printf("  %s                treat warnings as errors (implies -w)\n", flag.Render("-werr"))
	fmt.Printf("  %s        forward remaining args to the linker\n", flag.Render("-l <flag...>"))
	fmt.Println()

	fmt.Println(muted.Render("Use \"amun [command] --help\" for more information about a command."))
	fmt.Println()
}
