package ui

import (
	"fmt"
	"strings"
)

// FileReport is the check outcome for one template file.
type FileReport struct {
	Path     string
	Warnings []string
	Cached   bool
	Err      error
}

// Summary aggregates a set of file reports.
type Summary struct {
	Files        int
	WithWarnings int
	Warnings     int
	Errors       int
	Cached       int
}

// Clean reports whether no file had a warning or an error.
func (s Summary) Clean() bool {
	return s.Warnings == 0 && s.Errors == 0
}

// Summarize counts the reports.
func Summarize(reports []FileReport) Summary {
	var s Summary
	for _, r := range reports {
		s.Files++
		if r.Err != nil {
			s.Errors++
			continue
		}
		if len(r.Warnings) > 0 {
			s.WithWarnings++
			s.Warnings += len(r.Warnings)
		}
		if r.Cached {
			s.Cached++
		}
	}
	return s
}

// RenderReport formats reports for the terminal. Clean files are listed
// only when verbose is set.
func RenderReport(reports []FileReport, verbose bool) string {
	var b strings.Builder
	for _, r := range reports {
		switch {
		case r.Err != nil:
			fmt.Fprintf(&b, "%s %s\n", errorStyle.Render("✗"), r.Path)
			fmt.Fprintf(&b, "    %s\n", errorStyle.Render(r.Err.Error()))
		case len(r.Warnings) > 0:
			fmt.Fprintf(&b, "%s %s %s\n", warningStyle.Render("⚠"), r.Path,
				mutedStyle.Render(fmt.Sprintf("(%s)", plural(len(r.Warnings), "warning"))))
			for _, w := range r.Warnings {
				fmt.Fprintf(&b, "    • %s\n", w)
			}
		case verbose:
			line := fmt.Sprintf("%s %s", successStyle.Render("✓"), r.Path)
			if r.Cached {
				line += " " + mutedStyle.Render("(cached)")
			}
			b.WriteString(line + "\n")
		}
	}

	s := Summarize(reports)
	parts := []string{plural(s.Files, "file")}
	if s.Warnings > 0 {
		parts = append(parts, warningStyle.Render(plural(s.Warnings, "warning")))
	}
	if s.Errors > 0 {
		parts = append(parts, errorStyle.Render(plural(s.Errors, "error")))
	}
	if s.Cached > 0 {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("%d cached", s.Cached)))
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(titleStyle.Render("Checked") + " " + strings.Join(parts, ", ") + "\n")
	return b.String()
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
