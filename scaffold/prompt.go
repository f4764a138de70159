package scaffold

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

type (
	Prompter interface {
		Ask(question string) (answer string, err error)
	}

	// LinePrompter reads one line of input per question. It blocks until a newline or end of input.
	LinePrompter struct {
		console *Console
		in      *bufio.Reader
	}

	// FixedAnswer answers every question the same way without reading input.
	FixedAnswer string
)

func NewLinePrompter(console *Console, in io.Reader) *LinePrompter {
	return &LinePrompter{console: console, in: bufio.NewReader(in)}
}

// Ask returns the trimmed line. End of input yields an empty answer.
func (p *LinePrompter) Ask(question string) (string, error) {
	if err := p.console.Ask(question); err != nil {
		return "", err
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func (a FixedAnswer) Ask(string) (string, error) {
	return string(a), nil
}
