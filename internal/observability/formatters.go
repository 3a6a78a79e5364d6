// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cover-letter-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content. Long lines are
// word-wrapped to the box width.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		for _, wrapped := range wrap(line, inner) {
			fmt.Fprintf(p.out, "│ %s │\n", pad(wrapped, inner))
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStep prints a one-line progress message.
//
//nolint:errcheck
func (p *Printer) PrintStep(step, message string) {
	fmt.Fprintf(p.out, "[%s] %s\n", step, message)
}

// PrintResumeRecord outputs a human-readable summary of an extracted résumé.
func (p *Printer) PrintResumeRecord(record *types.ResumeRecord) {
	if record == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", orDash(record.FullName)))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", orDash(record.Email)))
	sb.WriteString(fmt.Sprintf("Phone:    %s\n", orDash(record.Phone)))
	if record.Summary != nil {
		sb.WriteString(fmt.Sprintf("Summary:  %s\n", *record.Summary))
	}

	writeList(&sb, "Skills", record.Skills)
	writeList(&sb, "Education", record.Education)
	writeList(&sb, "Certifications", record.Certifications)

	if len(record.WorkExperience) > 0 {
		sb.WriteString("\nWork Experience:\n")
		for _, job := range record.WorkExperience {
			sb.WriteString(fmt.Sprintf("  • %s @ %s", orDash(job.JobTitle), orDash(job.Company)))
			if job.StartDate != nil || job.EndDate != nil {
				sb.WriteString(fmt.Sprintf(" (%s – %s)", orDash(job.StartDate), orDash(job.EndDate)))
			}
			sb.WriteString(fmt.Sprintf(", %d responsibilities\n", len(job.Responsibilities)))
		}
	}

	if record.IsEmpty() {
		sb.WriteString("\n(no fields extracted)\n")
	}

	p.printBox("EXTRACTED RÉSUMÉ", sb.String())
}

// PrintMatchPoints outputs the ranked match points.
func (p *Printer) PrintMatchPoints(points []string) {
	if points == nil {
		return
	}

	var sb strings.Builder
	if len(points) == 0 {
		sb.WriteString("(no match points)\n")
	}
	for i, point := range points {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, point))
	}

	p.printBox("TOP MATCH POINTS", sb.String())
}

// PrintLetter outputs the Stage-A analysis (when present) and the letter body.
func (p *Printer) PrintLetter(analysis, letter string) {
	if analysis != "" {
		p.printBox("QUALIFICATION ANALYSIS", analysis)
	}
	if letter == "" {
		letter = "(no letter generated)"
	}
	p.printBox("COVER LETTER", letter)
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n%s:\n", label))
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// pad right-pads s with spaces to width runes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// wrap splits line into chunks of at most width runes, breaking on spaces when possible.
func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	var out []string
	var current []rune
	for _, word := range strings.Fields(line) {
		w := []rune(word)
		for len(w) > width {
			if len(current) > 0 {
				out = append(out, string(current))
				current = nil
			}
			out = append(out, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(current) == 0:
			current = w
		case len(current)+1+len(w) <= width:
			current = append(append(current, ' '), w...)
		default:
			out = append(out, string(current))
			current = w
		}
	}
	if len(current) > 0 {
		out = append(out, string(current))
	}
	return out
}
