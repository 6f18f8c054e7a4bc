package tui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/dragonsmp/dragonsmp"
	"github.com/dragonsmp/dragonsmp/internal/desktop"
)

type recorder struct {
	mu     sync.Mutex
	copied []string
	opened []string
}

func (r *recorder) clipboard() desktop.ClipboardFunc {
	return func(_ context.Context, text string) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.copied = append(r.copied, text)
		return nil
	}
}

func (r *recorder) opener() desktop.LinkOpenerFunc {
	return func(_ context.Context, url string) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.opened = append(r.opened, url)
		return nil
	}
}

// newTestModel returns a model over a controller that is never run, so
// only synchronous transitions take place.
func newTestModel(t *testing.T) (Model, *dragonsmp.Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	ctrl, err := dragonsmp.NewController(
		dragonsmp.WithClock(clockwork.NewFakeClock()),
		dragonsmp.WithClipboard(rec.clipboard()),
		dragonsmp.WithLinkOpener(rec.opener()),
		dragonsmp.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	m := New(context.Background(), ctrl, rec.opener())
	t.Cleanup(m.zones.Close)
	return m, ctrl, rec
}

// helper to send a message through Update and return the updated model.
func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func typeRunes(m Model, s string) Model {
	for _, r := range s {
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func click() tea.MouseMsg {
	return tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

// hitOnly makes id the only zone under the pointer.
func hitOnly(id string) func(string, tea.MouseMsg) bool {
	return func(z string, _ tea.MouseMsg) bool { return z == id }
}

func TestInitReturnsCmd(t *testing.T) {
	m, _, _ := newTestModel(t)
	if m.Init() == nil {
		t.Fatal("Init() returned nil, expected a command")
	}
}

func TestWindowSizeMsgUpdatesDimensions(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})

	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", m.width, m.height)
	}
}

func TestTypingSecretOpensPanel(t *testing.T) {
	m, ctrl, _ := newTestModel(t)

	m = typeRunes(m, "secret")

	if !m.Snapshot().Secret.Visible {
		t.Fatal("secret panel should be visible")
	}
	if !ctrl.Snapshot().Secret.Visible {
		t.Fatal("controller secret panel should be visible")
	}
	if !m.input.Focused() {
		t.Error("secret input should be focused")
	}
	if !strings.Contains(m.View(), "GİZLİ PANEL") {
		t.Error("view should render the secret panel")
	}
}

func TestSecretInputResolves(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = typeRunes(m, "secret")

	m = typeRunes(m, "GoFret")

	secret := m.Snapshot().Secret
	if !secret.Resolved {
		t.Fatal("panel should be resolved")
	}
	if secret.Input != "gofret" {
		t.Errorf("Input = %q, want %q", secret.Input, "gofret")
	}
	if m.input.Value() != "gofret" {
		t.Errorf("input field = %q, want %q", m.input.Value(), "gofret")
	}

	// resolved panels ignore further typing
	m = typeRunes(m, "x")
	if m.Snapshot().Secret.Input != "gofret" {
		t.Errorf("Input changed after resolution: %q", m.Snapshot().Secret.Input)
	}
}

func TestEscapeClosesSecretPanel(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = typeRunes(m, "secret")
	m = typeRunes(m, "abc")

	m, _ = update(m, key(tea.KeyEscape))

	if m.Snapshot().Secret.Visible {
		t.Fatal("panel should be closed")
	}
	if m.input.Value() != "" || m.input.Focused() {
		t.Error("input should be reset and blurred")
	}
}

func TestInterruptedSequenceDoesNotOpen(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = typeRunes(m, "secr")
	m, _ = update(m, key(tea.KeyUp))
	m = typeRunes(m, "et")

	if m.Snapshot().Secret.Visible {
		t.Error("interrupted sequence should not open the panel")
	}
}

func TestCtrlFTogglesForm(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = update(m, key(tea.KeyCtrlF))
	if !m.Snapshot().FormOpen {
		t.Fatal("form should be open")
	}
	if !strings.Contains(m.View(), "BAŞVURU FORMU") {
		t.Error("view should render the form modal")
	}

	m, _ = update(m, key(tea.KeyCtrlF))
	if m.Snapshot().FormOpen {
		t.Fatal("form should be closed")
	}
}

func TestCtrlOOpensFormURL(t *testing.T) {
	m, ctrl, rec := newTestModel(t)

	_, cmd := update(m, key(tea.KeyCtrlO))
	if cmd != nil {
		t.Fatal("ctrl+o without the form open should do nothing")
	}

	m, _ = update(m, key(tea.KeyCtrlF))
	_, cmd = update(m, key(tea.KeyCtrlO))
	if cmd == nil {
		t.Fatal("ctrl+o with the form open should return a command")
	}
	msg := cmd()
	if lm, ok := msg.(linkMsg); !ok || lm.err != nil {
		t.Fatalf("cmd() = %#v, want successful linkMsg", msg)
	}
	if len(rec.opened) != 1 || rec.opened[0] != ctrl.FormURL() {
		t.Errorf("opened = %v, want [%s]", rec.opened, ctrl.FormURL())
	}
}

func TestCtrlYCopiesAddress(t *testing.T) {
	m, ctrl, rec := newTestModel(t)

	_, cmd := update(m, key(tea.KeyCtrlY))
	if cmd == nil {
		t.Fatal("ctrl+y should return a command")
	}
	m, _ = update(m, cmd())

	if len(rec.copied) != 1 || rec.copied[0] != ctrl.ServerAddress() {
		t.Errorf("copied = %v, want [%s]", rec.copied, ctrl.ServerAddress())
	}
	toast := m.Snapshot().Toast
	if !toast.Show || toast.Title != dragonsmp.CopyTitle {
		t.Errorf("toast = %+v, want copy confirmation", toast)
	}
	if !strings.Contains(m.View(), dragonsmp.CopyTitle) {
		t.Error("view should render the toast")
	}
}

func TestCopyFailureIsShown(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, _ = update(m, copiedMsg{err: errors.New("no clipboard")})

	if m.Snapshot().Toast.Show {
		t.Error("failed copy should not show a toast")
	}
	if !strings.Contains(m.View(), "no clipboard") {
		t.Error("view should render the error")
	}
}

func TestClickOverlayClosesForm(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(m, key(tea.KeyCtrlF))

	m.hit = hitOnly(zoneModal)
	m, _ = update(m, click())
	if !m.Snapshot().FormOpen {
		t.Fatal("click on the modal body should keep the form open")
	}

	m.hit = hitOnly("")
	m, _ = update(m, click())
	if m.Snapshot().FormOpen {
		t.Fatal("click on the overlay should close the form")
	}
}

func TestClickOverlayClosesSecretFirst(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(m, key(tea.KeyCtrlF))
	m = typeRunes(m, "secret")
	if !m.Snapshot().Secret.Visible {
		t.Fatal("secret panel should open over the form")
	}

	m.hit = hitOnly("")
	m, _ = update(m, click())

	if m.Snapshot().Secret.Visible {
		t.Error("secret panel should be closed")
	}
	if !m.Snapshot().FormOpen {
		t.Error("form should stay open")
	}
}

func TestClickCards(t *testing.T) {
	m, _, rec := newTestModel(t)

	m.hit = hitOnly(zoneStore)
	m, _ = update(m, click())
	if toast := m.Snapshot().Toast; toast.Title != StoreTitle || toast.Desc != StoreDesc {
		t.Errorf("toast = %+v, want store announcement", toast)
	}

	m.hit = hitOnly(zoneDiscord)
	_, cmd := update(m, click())
	if cmd == nil {
		t.Fatal("discord click should return a command")
	}
	cmd()
	if len(rec.opened) != 1 || rec.opened[0] != dragonsmp.DiscordURL {
		t.Errorf("opened = %v, want [%s]", rec.opened, dragonsmp.DiscordURL)
	}

	m.hit = hitOnly(zoneApply)
	m, _ = update(m, click())
	if !m.Snapshot().FormOpen {
		t.Error("apply click should open the form")
	}
}

func TestMouseIgnoresOtherButtons(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(m, key(tea.KeyCtrlF))
	m.hit = hitOnly("")

	m, _ = update(m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonRight})

	if !m.Snapshot().FormOpen {
		t.Error("right click should be ignored")
	}
}

func TestSnapshotMsgRendersStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"online":true,"players":{"online":12,"max":200}}`)
	}))
	defer ts.Close()

	ctrl, err := dragonsmp.NewController(
		dragonsmp.WithClock(clockwork.NewFakeClock()),
		dragonsmp.WithStatusAPI(ts.URL),
		dragonsmp.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	m := New(context.Background(), ctrl, (&recorder{}).opener())
	t.Cleanup(m.zones.Close)

	if !strings.Contains(m.View(), "BAĞLANIYOR") {
		t.Error("view should show connecting before the first status")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = ctrl.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.Now().Add(2 * time.Second)
	for ctrl.Snapshot().Status == nil {
		if time.Now().After(deadline) {
			t.Fatal("controller never applied a status")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// the delivered value is stale; the model reads the controller instead
	m, cmd := update(m, snapshotMsg(dragonsmp.Snapshot{}))
	if cmd == nil {
		t.Error("snapshotMsg should re-arm the subscription")
	}

	view := m.View()
	if !strings.Contains(view, "SUNUCU AKTİF") || !strings.Contains(view, "12/200") {
		t.Errorf("view should show the online status, got:\n%s", view)
	}
}

func TestLateSnapshotKeepsSecretInput(t *testing.T) {
	m, ctrl, _ := newTestModel(t)
	m = typeRunes(m, "secret")

	m = typeRunes(m, "a")
	late := ctrl.Snapshot()
	m = typeRunes(m, "b")

	m, _ = update(m, snapshotMsg(late))
	m = typeRunes(m, "c")

	if got := m.input.Value(); got != "abc" {
		t.Errorf("input = %q, want %q", got, "abc")
	}
	if got := ctrl.Snapshot().Secret.Input; got != "abc" {
		t.Errorf("controller input = %q, want %q", got, "abc")
	}
}

func TestWaitForSnapshot(t *testing.T) {
	ch := make(chan dragonsmp.Snapshot, 1)
	ch <- dragonsmp.Snapshot{FormOpen: true}

	msg := waitForSnapshot(ch)()
	if sm, ok := msg.(snapshotMsg); !ok || !sm.FormOpen {
		t.Fatalf("msg = %#v, want snapshotMsg", msg)
	}

	close(ch)
	if _, ok := waitForSnapshot(ch)().(closedMsg); !ok {
		t.Fatal("closed subscription should yield closedMsg")
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t)

	m, cmd := update(m, key(tea.KeyCtrlC))
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}

	m2, _, _ := newTestModel(t)
	_, cmd = update(m2, closedMsg{})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("closed controller should quit")
	}
}
