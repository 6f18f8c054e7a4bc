package desktop

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/pkg/browser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserOpener_Open(t *testing.T) {
	var opened string
	o := &BrowserOpener{open: func(u string) error { opened = u; return nil }}

	require.NoError(t, o.Open(context.Background(), "https://youtube.com/@Sshady1545"))
	assert.Equal(t, "https://youtube.com/@Sshady1545", opened)
}

func TestBrowserOpener_Error(t *testing.T) {
	o := &BrowserOpener{open: func(string) error { return errors.New("no browser") }}

	err := o.Open(context.Background(), "https://example.com")
	assert.ErrorContains(t, err, "no browser")
	assert.ErrorContains(t, err, "https://example.com")
}

func TestBrowserOpener_CancelledContext(t *testing.T) {
	o := &BrowserOpener{open: func(string) error {
		t.Fatal("open must not be called")
		return nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, o.Open(ctx, "https://example.com"), context.Canceled)
}

func TestNewBrowserOpener_SilencesLauncherOnce(t *testing.T) {
	silenceLauncher = sync.Once{}
	t.Cleanup(func() {
		browser.Stdout = os.Stdout
		browser.Stderr = os.Stderr
	})

	require.NotNil(t, NewBrowserOpener())
	assert.Equal(t, io.Discard, browser.Stdout)
	assert.Equal(t, io.Discard, browser.Stderr)

	// later calls leave the globals alone
	browser.Stdout = os.Stdout
	require.NotNil(t, NewBrowserOpener())
	assert.Equal(t, os.Stdout, browser.Stdout)
}
