package desktop

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pkg/browser"
)

// LinkOpener opens a URL outside the process.
type LinkOpener interface {
	Open(ctx context.Context, url string) error
}

// LinkOpenerFunc adapts a function to the LinkOpener interface.
type LinkOpenerFunc func(ctx context.Context, url string) error

// Open calls f(ctx, url).
func (f LinkOpenerFunc) Open(ctx context.Context, url string) error {
	return f(ctx, url)
}

// BrowserOpener opens URLs in the user's default browser.
type BrowserOpener struct {
	open func(string) error
}

var silenceLauncher sync.Once

// NewBrowserOpener returns an opener that keeps the launcher's output off
// the terminal, which a full-screen UI may own. The launcher output is a
// package global of pkg/browser and is redirected on the first call only.
func NewBrowserOpener() *BrowserOpener {
	silenceLauncher.Do(func() {
		browser.Stdout = io.Discard
		browser.Stderr = io.Discard
	})
	return &BrowserOpener{open: browser.OpenURL}
}

// Open launches url unless ctx is already done.
func (o *BrowserOpener) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.open(url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}
