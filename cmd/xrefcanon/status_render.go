package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"xrefcanon/internal/preflight"
)

// checkState grades one line of the status report.
type checkState int

const (
	stateNote checkState = iota
	statePass
	stateWarn
	stateFail
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const statusLabelWidth = 24

var stateTags = [...]struct {
	tag   string
	color string
}{
	stateNote: {"NOTE", ""},
	statePass: {"PASS", ansiGreen},
	stateWarn: {"WARN", ansiYellow},
	stateFail: {"FAIL", ansiRed},
}

// preflightState maps a check result to its grade. Optional checks never fail
// the report.
func preflightState(r preflight.Result) checkState {
	switch {
	case r.Passed:
		return statePass
	case r.Optional:
		return stateWarn
	default:
		return stateFail
	}
}

// statusReport accumulates sections of graded lines.
type statusReport struct {
	colorize bool
	lines    []string
}

func (r *statusReport) section(title string) {
	if len(r.lines) > 0 {
		r.lines = append(r.lines, "")
	}
	if r.colorize {
		title = ansiBold + title + ansiReset
	}
	r.lines = append(r.lines, title)
}

func (r *statusReport) item(label string, state checkState, detail string) {
	r.lines = append(r.lines, formatStatusItem(label, state, detail, r.colorize))
}

func (r *statusReport) String() string {
	return strings.Join(r.lines, "\n")
}

// formatStatusItem renders "  TAG  label  detail" with only the tag coloured.
func formatStatusItem(label string, state checkState, detail string, colorize bool) string {
	style := stateTags[state]
	tag := fmt.Sprintf("%-4s", style.tag)
	if colorize && style.color != "" {
		tag = style.color + tag + ansiReset
	}
	return strings.TrimRight(fmt.Sprintf("  %s  %-*s %s", tag, statusLabelWidth, label, detail), " ")
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
