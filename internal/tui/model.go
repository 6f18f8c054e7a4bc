// Package tui is the terminal front end of the DragonSMP controller.
//
// The model forwards keystrokes and mouse clicks to a
// [dragonsmp.Controller] and renders the snapshots it publishes. Controller
// transitions are synchronous, so the model re-reads the snapshot after every
// event it forwards; timer driven changes (toast dismissal, status polls)
// arrive through a subscription.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/dragonsmp/dragonsmp"
	"github.com/dragonsmp/dragonsmp/internal/desktop"
)

// Clickable zones.
const (
	zoneCopy    = "copy"
	zoneStore   = "store"
	zoneApply   = "apply"
	zoneDiscord = "discord"
	zoneModal   = "modal"
)

// StoreTitle and StoreDesc are the toast shown for the store card.
const (
	StoreTitle = "HAYIRLI RAMAZANLAR!"
	StoreDesc  = "Market yakında özel indirimlerle açılacak"
)

// snapshotMsg carries a snapshot published by the controller.
type snapshotMsg dragonsmp.Snapshot

// closedMsg reports that the controller closed the subscription.
type closedMsg struct{}

// copiedMsg reports the outcome of a clipboard write.
type copiedMsg struct{ err error }

// linkMsg reports the outcome of opening a link.
type linkMsg struct {
	url string
	err error
}

// Model is the bubbletea model of the terminal UI.
type Model struct {
	ctx    context.Context
	ctrl   *dragonsmp.Controller
	opener desktop.LinkOpener
	sub    <-chan dragonsmp.Snapshot

	snap  dragonsmp.Snapshot
	input textinput.Model
	zones *zone.Manager

	// hit reports whether a mouse event landed in a zone.
	hit func(id string, msg tea.MouseMsg) bool

	width, height int
	lastErr       error
	quitting      bool
}

// New creates a model driving ctrl. Links are launched with opener.
//
// The model subscribes to ctrl immediately; the subscription ends when the
// model quits or the controller shuts down.
func New(ctx context.Context, ctrl *dragonsmp.Controller, opener desktop.LinkOpener) Model {
	input := textinput.New()
	input.Placeholder = "..."
	input.CharLimit = 32
	input.Width = 24

	m := Model{
		ctx:    ctx,
		ctrl:   ctrl,
		opener: opener,
		sub:    ctrl.Subscribe(),
		snap:   ctrl.Snapshot(),
		input:  input,
		zones:  zone.New(),
	}
	m.hit = m.zoneHit
	return m
}

// Snapshot returns the last snapshot the model rendered from.
func (m Model) Snapshot() dragonsmp.Snapshot {
	return m.snap
}

// Init starts listening for controller snapshots.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.sub), textinput.Blink)
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case snapshotMsg:
		// A queued snapshot can be older than what refresh already read.
		return m.refresh(), waitForSnapshot(m.sub)

	case closedMsg:
		m.quitting = true
		return m, tea.Quit

	case copiedMsg:
		m.lastErr = msg.err
		return m.refresh(), nil

	case linkMsg:
		m.lastErr = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		m.ctrl.Unsubscribe(m.sub)
		return m, tea.Quit

	case "ctrl+y":
		return m, m.copyCmd()

	case "ctrl+f":
		if m.snap.FormOpen {
			m.ctrl.CloseForm()
		} else {
			m.ctrl.OpenForm()
		}
		return m.refresh(), nil

	case "ctrl+o":
		if !m.snap.FormOpen {
			return m, nil
		}
		return m, m.openCmd(m.ctrl.FormURL())

	case "esc":
		m.ctrl.KeyPress(dragonsmp.KeyEscape)
		return m.refresh(), nil
	}

	if m.snap.Secret.Visible {
		if m.snap.Secret.Resolved {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.ctrl.SetSecretInput(m.input.Value())
		return m.refresh(), cmd
	}

	switch msg.Type {
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.ctrl.KeyPress(string(r))
		}
	case tea.KeySpace:
		m.ctrl.KeyPress(" ")
	default:
		m.ctrl.KeyPress(msg.String())
	}
	return m.refresh(), nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	if m.snap.Secret.Visible || m.snap.FormOpen {
		target := dragonsmp.TargetOverlay
		if m.hit(zoneModal, msg) {
			target = dragonsmp.TargetBody
		}
		m.ctrl.ClickOverlay(target)
		return m.refresh(), nil
	}

	switch {
	case m.hit(zoneCopy, msg):
		return m, m.copyCmd()
	case m.hit(zoneStore, msg):
		m.ctrl.Notify(StoreTitle, StoreDesc)
		return m.refresh(), nil
	case m.hit(zoneApply, msg):
		m.ctrl.OpenForm()
		return m.refresh(), nil
	case m.hit(zoneDiscord, msg):
		return m, m.openCmd(dragonsmp.DiscordURL)
	}
	return m, nil
}

// refresh re-reads the controller state after a forwarded event.
func (m Model) refresh() Model {
	return m.sync(m.ctrl.Snapshot())
}

// sync adopts snap and keeps the secret input field in step with the panel.
func (m Model) sync(snap dragonsmp.Snapshot) Model {
	prev := m.snap.Secret
	m.snap = snap

	switch {
	case !prev.Visible && snap.Secret.Visible:
		m.input.Reset()
		m.input.Focus()
	case prev.Visible && !snap.Secret.Visible:
		m.input.Reset()
		m.input.Blur()
	case snap.Secret.Visible && m.input.Value() != snap.Secret.Input:
		m.input.SetValue(snap.Secret.Input)
	}
	return m
}

func (m Model) zoneHit(id string, msg tea.MouseMsg) bool {
	z := m.zones.Get(id)
	return z != nil && z.InBounds(msg)
}

func (m Model) copyCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return copiedMsg{err: ctrl.Copy(ctx, ctrl.ServerAddress())}
	}
}

func (m Model) openCmd(url string) tea.Cmd {
	ctx, opener := m.ctx, m.opener
	return func() tea.Msg {
		return linkMsg{url: url, err: opener.Open(ctx, url)}
	}
}

// waitForSnapshot blocks until the controller publishes a snapshot.
func waitForSnapshot(ch <-chan dragonsmp.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// Run runs the terminal UI until the user quits or ctx is cancelled.
func Run(ctx context.Context, ctrl *dragonsmp.Controller, opener desktop.LinkOpener) error {
	m := New(ctx, ctrl, opener)
	defer m.zones.Close()

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
