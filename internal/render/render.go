// Package render formats scored answers for the terminal and for HTML.
package render

import (
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/drill/internal/evaluate"
)

// Format selects the markup used for wrong words.
type Format int

const (
	// Plain wraps wrong words in brackets.
	Plain Format = iota
	// ANSI colours words with terminal escape codes.
	ANSI
	// HTML wraps wrong words in a red span.
	HTML
)

const terminalWidthBackup = 80

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Underline(true)
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	infoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// ParseFormat maps a flag value to a Format. "auto" picks ANSI when w is a
// terminal and NO_COLOR is unset.
func ParseFormat(s string, w io.Writer) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return AutoFormat(w), nil
	case "plain":
		return Plain, nil
	case "ansi", "color":
		return ANSI, nil
	case "html":
		return HTML, nil
	default:
		return Plain, fmt.Errorf("unknown format %q", s)
	}
}

// AutoFormat returns ANSI for colour-capable terminals and Plain otherwise.
func AutoFormat(w io.Writer) Format {
	if os.Getenv("NO_COLOR") != "" {
		return Plain
	}
	file, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return Plain
	}
	return ANSI
}

// TerminalWidth returns the width of w if it is a terminal, or 80.
func TerminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func styleFor(f Format, correct bool) func(string) string {
	switch f {
	case ANSI:
		if correct {
			return func(s string) string { return correctStyle.Render(s) }
		}
		return func(s string) string { return incorrectStyle.Render(s) }
	case HTML:
		if correct {
			return html.EscapeString
		}
		return func(s string) string {
			return "<span style='background-color: #FF0000'>" + html.EscapeString(s) + "</span>"
		}
	default:
		if correct {
			return func(s string) string { return s }
		}
		return func(s string) string { return "[" + s + "]" }
	}
}

// Sentence renders the reference words with wrong words highlighted,
// wrapped to width display columns. HTML output is never wrapped.
func Sentence(m evaluate.MarkedSentence, f Format, width int) string {
	cells := make([]cell, 0, 2*len(m))
	for i, w := range m {
		if i > 0 {
			cells = append(cells, cell{s: " ", width: 1, isSpace: true})
		}
		c := wordCells([]string{w.Word}, styleFor(f, w.Correct))[0]
		if f == Plain && !w.Correct {
			c.width += 2
		}
		cells = append(cells, c)
	}
	if f == HTML {
		width = 0
	}
	return wrapCells(cells, width)
}

// Hints lists wrong words together with the closest word heard.
func Hints(m evaluate.MarkedSentence, f Format) []string {
	var out []string
	for _, w := range m {
		if w.Correct || w.Closest == "" {
			continue
		}
		line := fmt.Sprintf("%s -> %s (%.2f)", w.Word, w.Closest, w.Similarity)
		switch f {
		case ANSI:
			line = hintStyle.Render(line)
		case HTML:
			line = html.EscapeString(line)
		}
		out = append(out, line)
	}
	return out
}

// Outcome renders the feedback for one answer. prompt is the text the
// learner was shown.
func Outcome(out evaluate.Outcome, prompt string, f Format, width int) string {
	var b strings.Builder
	if out.Marked != nil {
		b.WriteString(Sentence(out.Marked, f, width))
		b.WriteString("\n")
		for _, h := range Hints(out.Marked, f) {
			b.WriteString("  ")
			b.WriteString(h)
			b.WriteString("\n")
		}
	} else {
		var verdict string
		switch {
		case out.Correct:
			verdict = "correct"
		case out.Answer == out.Expected:
			verdict = "correct but too slow"
		default:
			verdict = fmt.Sprintf("wrong: %s = %s", prompt, out.Expected)
		}
		b.WriteString(styleFor(f, out.Correct)(verdict))
		b.WriteString("\n")
	}
	info := fmt.Sprintf("accuracy %.0f%% (%d/%d)  %s %.1fs/%.1fs  reward %.2f",
		out.Accuracy*100,
		out.CorrectWords,
		out.TotalWords,
		out.Tier,
		out.Elapsed.Seconds(),
		out.Budget.Seconds(),
		out.Reward,
	)
	if f == ANSI {
		info = infoStyle.Render(info)
	}
	b.WriteString(info)
	return b.String()
}
