// Package desktop reaches outside the process: the system clipboard, the
// controlling terminal and the default web browser.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// ErrClipboardUnavailable is returned when no clipboard mechanism could
// accept the text.
var ErrClipboardUnavailable = errors.New("desktop: clipboard unavailable")

// Clipboard writes text to some clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// ClipboardFunc adapts a function to the Clipboard interface.
type ClipboardFunc func(ctx context.Context, text string) error

// WriteText calls f(ctx, text).
func (f ClipboardFunc) WriteText(ctx context.Context, text string) error {
	return f(ctx, text)
}

// SystemClipboard writes through the platform clipboard utilities
// (pbcopy, xclip, xsel, wl-copy, the Windows API).
type SystemClipboard struct {
	unsupported bool
	write       func(string) error
}

// NewSystemClipboard returns the platform clipboard.
func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{
		unsupported: clipboard.Unsupported,
		write:       clipboard.WriteAll,
	}
}

// WriteText copies text to the platform clipboard. It fails with
// ErrClipboardUnavailable when no clipboard utility is installed.
func (c *SystemClipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.unsupported {
		return fmt.Errorf("system clipboard: %w", ErrClipboardUnavailable)
	}
	if err := c.write(text); err != nil {
		return fmt.Errorf("system clipboard: %w", err)
	}
	return nil
}

// OSC52Clipboard writes an OSC 52 escape sequence to the controlling
// terminal, which asks the terminal emulator to set its clipboard. Inside
// tmux or screen the sequence is wrapped in the multiplexer's passthrough.
type OSC52Clipboard struct {
	open   func() (io.WriteCloser, error)
	getenv func(string) string
}

// NewOSC52Clipboard returns a clipboard writing to /dev/tty.
func NewOSC52Clipboard() *OSC52Clipboard {
	return &OSC52Clipboard{
		open: func() (io.WriteCloser, error) {
			return os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		},
		getenv: os.Getenv,
	}
}

// WriteText sends text to the terminal as an OSC 52 sequence. A nil error
// only means the sequence was written; terminals may ignore it.
func (c *OSC52Clipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tty, err := c.open()
	if err != nil {
		return fmt.Errorf("osc52 clipboard: open terminal: %w", err)
	}
	defer tty.Close()

	seq := osc52.New(text)
	switch term := c.getenv("TERM"); {
	case c.getenv("TMUX") != "" || strings.HasPrefix(term, "tmux"):
		seq = seq.Tmux()
	case strings.HasPrefix(term, "screen"):
		seq = seq.Screen()
	}

	if _, err := seq.WriteTo(tty); err != nil {
		return fmt.Errorf("osc52 clipboard: %w", err)
	}
	return nil
}

// FallbackClipboard tries Primary and, when it fails, Fallback.
type FallbackClipboard struct {
	Primary  Clipboard
	Fallback Clipboard
}

// WriteText returns nil when either clipboard accepted the text. When both
// fail the error wraps ErrClipboardUnavailable and both causes.
func (c FallbackClipboard) WriteText(ctx context.Context, text string) error {
	var errs []error
	for _, cb := range []Clipboard{c.Primary, c.Fallback} {
		if cb == nil {
			continue
		}
		err := cb.WriteText(ctx, text)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(append([]error{ErrClipboardUnavailable}, errs...)...)
}

// DefaultClipboard is the system clipboard backed by the terminal OSC 52
// sequence.
func DefaultClipboard() Clipboard {
	return FallbackClipboard{Primary: NewSystemClipboard(), Fallback: NewOSC52Clipboard()}
}
