// Package report renders game run reports for the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/reglet-dev/guessgame/domain/entities"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	numberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithStyle forces styled or plain output.
func WithStyle(styled bool) Option {
	return func(r *Renderer) {
		r.styled = styled
	}
}

// WithGuesses lists every guess under its game.
func WithGuesses(enabled bool) Option {
	return func(r *Renderer) {
		r.guesses = enabled
	}
}

// Renderer formats run reports. Styling is on by default only when the
// destination is a terminal.
type Renderer struct {
	styled  bool
	guesses bool
}

// NewRenderer returns a renderer for output written to w.
func NewRenderer(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{styled: IsTerminal(w)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

// Render formats reports followed by a summary line.
func (r *Renderer) Render(reports []entities.RunReport) string {
	var b strings.Builder
	b.WriteString(r.style(titleStyle, "guessgame"))
	b.WriteString("\n\n")

	done, turns := 0, 0
	for i, rep := range reports {
		r.writeReport(&b, i+1, rep)
		if rep.IsDone() {
			done++
			turns += rep.Turns
		}
	}

	b.WriteString("\n")
	summary := fmt.Sprintf("%d/%d games done", done, len(reports))
	if done > 0 {
		summary += fmt.Sprintf(", %.1f turns on average", float64(turns)/float64(done))
	}
	if done == len(reports) {
		b.WriteString(r.style(doneStyle, summary))
	} else {
		b.WriteString(r.style(errorStyle, summary))
	}
	b.WriteString("\n")
	return b.String()
}

func (r *Renderer) writeReport(b *strings.Builder, n int, rep entities.RunReport) {
	player := rep.Player
	if player == "" {
		player = "guest"
	}
	fmt.Fprintf(b, "game %d %s secret=%s: ", n, r.style(dimStyle, "["+player+"]"), r.style(numberStyle, fmt.Sprint(rep.Secret)))

	if rep.IsDone() {
		b.WriteString(r.style(doneStyle, fmt.Sprintf("found in %d %s", rep.Turns, plural(rep.Turns, "turn"))))
	} else {
		msg := fmt.Sprintf("aborted after %d %s", rep.Turns, plural(rep.Turns, "turn"))
		if rep.Error != nil {
			msg += ": " + rep.Error.Message
		}
		b.WriteString(r.style(errorStyle, msg))
	}
	fmt.Fprintf(b, " %s\n", r.style(dimStyle, "("+rep.Duration.String()+")"))

	if !r.guesses {
		return
	}
	for _, g := range rep.Guesses {
		fmt.Fprintf(b, "  turn %3d  %10d  %s\n", g.Turn, g.Guess, g.Result)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
