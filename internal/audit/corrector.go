package audit

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/musiccheck/internal/io"
)

// ErrCorrectionDeclined is returned by Correct when the user gives no new
// path.
var ErrCorrectionDeclined = errors.New("correction declined")

// Prompter asks the user for a line of text.
type Prompter interface {
	// Ask shows message and returns the user's answer. defaultValue is
	// offered as the editable starting answer.
	Ask(defaultValue, message string) (string, error)
}

// Corrector asks for replacement paths and moves files to them.
type Corrector struct {
	base     string
	prompter Prompter
	log      Logger
}

// NewCorrector creates a Corrector for files below base.
func NewCorrector(base string, prompter Prompter, log Logger) *Corrector {
	return &Corrector{base: base, prompter: prompter, log: log}
}

// Correct asks for a new relative path for rel and moves the file there.
//
// The answer is sanitized level by level. An empty answer, or one equal to
// rel, returns ErrCorrectionDeclined; a prompter failure is returned as is.
// A failed move is only logged: the new path is returned either way and the
// caller treats it as the file's path from then on.
func (c *Corrector) Correct(rel, message string) (string, error) {
	c.log.Request(fmt.Sprintf("%s: %s", message, rel))

	answer, err := c.prompter.Ask(rel, message)
	if err != nil {
		return "", err
	}

	next := ioutils.SanitizePath(strings.TrimSpace(answer))
	if next == "" || next == rel {
		return "", ErrCorrectionDeclined
	}

	src := filepath.Join(c.base, filepath.FromSlash(rel))
	dst := filepath.Join(c.base, filepath.FromSlash(next))
	if err := ioutils.MoveFile(src, dst); err != nil {
		c.log.Warning(fmt.Sprintf("Move failed, continuing with %s: %v", next, err))
		return next, nil
	}

	c.log.Move(fmt.Sprintf("%s -> %s", rel, next))
	return next, nil
}
