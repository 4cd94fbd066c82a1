// Package logger provides the console log sink used during an audit.
//
// Every line is prefixed with a timestamp and a category. ERROR lines go to
// the error writer, everything else to the output writer. An optional log
// file receives an uncoloured copy of every line that passes the filter.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Log categories.
const (
	CategoryDebug   = "DEBUG"
	CategoryWarning = "WARNING"
	CategoryReport  = "REPORT"
	CategoryRequest = "REQUEST"
	CategoryMove    = "MOVE"
	CategoryError   = "ERROR"
)

// Mode controls which categories are written.
type Mode int

const (
	// ModeQuiet writes ERROR only.
	ModeQuiet Mode = iota
	// ModeNormal writes everything but DEBUG.
	ModeNormal
	// ModeVerbose writes everything, with millisecond timestamps.
	ModeVerbose
)

// ParseMode converts "quiet", "normal" or "verbose" (case-insensitive) to a
// Mode. Unknown values give ModeNormal.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiet":
		return ModeQuiet
	case "verbose":
		return ModeVerbose
	default:
		return ModeNormal
	}
}

// Console writes categorized log lines with timestamps. It is safe for
// concurrent use.
type Console struct {
	out  io.Writer
	err  io.Writer
	tee  io.WriteCloser
	mode Mode
	now  func() time.Time

	colorOut bool
	colorErr bool
	mu       sync.Mutex
}

// NewConsole creates a Console writing to out and errOut. A nil writer
// discards its lines. Colour is used only for os.Stdout and os.Stderr when
// the terminal supports it.
func NewConsole(out, errOut io.Writer, mode Mode) *Console {
	return &Console{
		out:      out,
		err:      errOut,
		mode:     mode,
		now:      time.Now,
		colorOut: isTerminal(out),
		colorErr: isTerminal(errOut),
	}
}

// isTerminal reports whether w is a standard stream that accepts colour.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// NO_COLOR and non-TTY output both set color.NoColor
		return !color.NoColor
	}
	return false
}

// TeeFile appends a copy of every written line to path.
func (c *Console) TeeFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tee != nil {
		c.tee.Close()
	}
	c.tee = f
	return nil
}

// Close closes the log file, if any.
func (c *Console) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tee == nil {
		return nil
	}
	err := c.tee.Close()
	c.tee = nil
	return err
}

// Debug logs internal progress. Written in verbose mode only.
func (c *Console) Debug(message string) { c.log(CategoryDebug, message) }

// Warning logs a problem that does not stop the walk.
func (c *Console) Warning(message string) { c.log(CategoryWarning, message) }

// Report logs a finding that also goes into the report.
func (c *Console) Report(message string) { c.log(CategoryReport, message) }

// Request logs a question put to the user.
func (c *Console) Request(message string) { c.log(CategoryRequest, message) }

// Move logs a file relocation.
func (c *Console) Move(message string) { c.log(CategoryMove, message) }

// Error logs a failure. Written in every mode.
func (c *Console) Error(message string) { c.log(CategoryError, message) }

func (c *Console) shouldLog(category string) bool {
	switch c.mode {
	case ModeQuiet:
		return category == CategoryError
	case ModeNormal:
		return category != CategoryDebug
	default:
		return true
	}
}

func (c *Console) log(category, message string) {
	if !c.shouldLog(category) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.timestamp()

	w, useColor := c.out, c.colorOut
	if category == CategoryError {
		w, useColor = c.err, c.colorErr
	}

	plain := fmt.Sprintf("[%s %s]: %s\n", ts, category, message)
	if w != nil {
		if useColor {
			fmt.Fprintf(w, "[%s %s]: %s\n", ts, colorize(category), message)
		} else {
			io.WriteString(w, plain)
		}
	}
	if c.tee != nil {
		io.WriteString(c.tee, plain)
	}
}

func (c *Console) timestamp() string {
	if c.mode == ModeVerbose {
		return c.now().Format("15:04:05.000")
	}
	return c.now().Format("15:04:05")
}

func colorize(category string) string {
	switch category {
	case CategoryDebug:
		return color.New(color.FgHiBlack).Sprint(category)
	case CategoryWarning:
		return color.New(color.FgYellow).Sprint(category)
	case CategoryReport:
		return color.New(color.FgCyan).Sprint(category)
	case CategoryRequest:
		return color.New(color.FgMagenta).Sprint(category)
	case CategoryMove:
		return color.New(color.FgGreen).Sprint(category)
	case CategoryError:
		return color.New(color.FgRed, color.Bold).Sprint(category)
	default:
		return category
	}
}
