package scaffold

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type (
	// Console writes the generator's human-facing output to a single stream.
	// Colors are dropped when the stream is not a terminal.
	Console struct {
		w      io.Writer
		info   lipgloss.Style
		warn   lipgloss.Style
		fail   lipgloss.Style
		banner lipgloss.Style
	}
)

var palette = struct {
	black  lipgloss.Color
	red    lipgloss.Color
	yellow lipgloss.Color
}{
	black:  lipgloss.Color("0"),
	red:    lipgloss.Color("1"),
	yellow: lipgloss.Color("3"),
}

func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)

	return &Console{
		w:      w,
		info:   r.NewStyle().Foreground(palette.yellow),
		warn:   r.NewStyle().Foreground(palette.red),
		fail:   r.NewStyle().Background(palette.red),
		banner: r.NewStyle().Foreground(palette.black).Background(palette.yellow),
	}
}

func (c *Console) line(style lipgloss.Style, s string) {
	_, _ = fmt.Fprintln(c.w, style.Render(s))
}

func (c *Console) Printf(format string, v ...any) {
	c.line(c.info, fmt.Sprintf(format, v...))
}

func (c *Console) Println(v ...any) {
	c.line(c.info, fmt.Sprint(v...))
}

func (c *Console) Warnf(format string, v ...any) {
	c.line(c.warn, fmt.Sprintf(format, v...))
}

func (c *Console) Failf(format string, v ...any) {
	c.line(c.fail, fmt.Sprintf(format, v...))
}

func (c *Console) Banner(lines ...string) {
	for _, l := range lines {
		c.line(c.banner, l)
	}
}

// Ask writes question without a trailing newline so the answer is typed on the same line.
func (c *Console) Ask(question string) error {
	text := strings.TrimRight(question, " ")

	_, err := io.WriteString(c.w, c.info.Render(text)+question[len(text):])

	return err
}
