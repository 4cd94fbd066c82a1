package tui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// LinePrompter asks questions line by line. It is used when the input is
// not a terminal, so answers can be piped in.
type LinePrompter struct {
	r   *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter reading answers from in.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{r: bufio.NewReader(in), out: out}
}

// Ask prints message and defaultValue, then reads one line. An empty line
// keeps defaultValue. End of input before any answer aborts.
func (p *LinePrompter) Ask(defaultValue, message string) (string, error) {
	fmt.Fprintf(p.out, "%s\n[%s]: ", message, defaultValue)

	line, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", ErrAborted
		}
		return "", err
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		return defaultValue, nil
	}
	return answer, nil
}
