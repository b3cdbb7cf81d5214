package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// verdict grades one readiness check.
type verdict int

const (
	verdictReady verdict = iota
	verdictDegraded
	verdictMissing
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBold   = "\x1b[1m"
)

func (v verdict) label() string {
	switch v {
	case verdictReady:
		return "OK"
	case verdictDegraded:
		return "LIMITED"
	default:
		return "MISSING"
	}
}

func (v verdict) color() string {
	switch v {
	case verdictReady:
		return ansiGreen
	case verdictDegraded:
		return ansiYellow
	default:
		return ansiRed
	}
}

type readinessCheck struct {
	name    string
	verdict verdict
	detail  string
}

type readinessSection struct {
	title  string
	checks []readinessCheck
}

// readinessReport collects what automix needs before it can render, grouped
// by section in insertion order.
type readinessReport struct {
	sections []*readinessSection
}

func (r *readinessReport) section(title string) *readinessSection {
	s := &readinessSection{title: title}
	r.sections = append(r.sections, s)
	return s
}

func (s *readinessSection) add(name string, v verdict, detail string) {
	s.checks = append(s.checks, readinessCheck{name: name, verdict: v, detail: detail})
}

// missing counts checks that block rendering.
func (r *readinessReport) missing() int {
	var n int
	for _, s := range r.sections {
		for _, c := range s.checks {
			if c.verdict == verdictMissing {
				n++
			}
		}
	}
	return n
}

// write prints every section with names padded to a shared column.
func (r *readinessReport) write(w io.Writer, colorize bool) {
	width := 0
	for _, s := range r.sections {
		for _, c := range s.checks {
			width = max(width, len(c.name)+1)
		}
	}

	var b strings.Builder
	for i, s := range r.sections {
		if i > 0 {
			b.WriteByte('\n')
		}
		title := s.title
		if colorize {
			title = ansiBold + title + ansiReset
		}
		b.WriteString(title + "\n")
		for _, c := range s.checks {
			line := fmt.Sprintf("  %-*s [%s]", width, c.name+":", c.verdict.label())
			if c.detail != "" {
				line += " " + c.detail
			}
			if colorize {
				line = c.verdict.color() + line + ansiReset
			}
			b.WriteString(line + "\n")
		}
	}
	fmt.Fprint(w, b.String())
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
