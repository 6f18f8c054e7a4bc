package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dragonsmp/dragonsmp"
)

var (
	amber = lipgloss.Color("#FBBF24")
	slate = lipgloss.Color("#94A3B8")
	red   = lipgloss.Color("#EF4444")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(amber)

	dimStyle = lipgloss.NewStyle().
			Foreground(slate)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(amber).
			Padding(0, 2)

	ipStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#000000")).
		Background(amber).
		Padding(0, 2)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(amber).
			Padding(1, 3)

	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(amber).
			Padding(0, 1)
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch {
	case m.snap.Secret.Visible:
		body = m.overlay(m.secretView())
	case m.snap.FormOpen:
		body = m.overlay(m.formView())
	default:
		body = m.mainView()
	}

	if m.snap.Toast.Show {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.toastView())
	}
	return m.zones.Scan(body)
}

func (m Model) mainView() string {
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("DRAGONSMP"),
		"  ",
		statusLine(m.snap.Status),
	)

	ip := m.zones.Mark(zoneCopy, ipStyle.Render("SUNUCU ADRESİ  "+m.ctrl.ServerAddress()))

	store := m.zones.Mark(zoneStore, cardStyle.Render(
		titleStyle.Render("MARKET")+"\n"+dimStyle.Render("Ramazan ayına özel ürünler"),
	))
	apply := m.zones.Mark(zoneApply, cardStyle.Render(
		titleStyle.Render("REHBER BAŞVURUSU")+"\n"+dimStyle.Render("Ramazanda ekibimize katılın"),
	))
	discord := m.zones.Mark(zoneDiscord, cardStyle.Render(
		titleStyle.Render("DISCORD")+"\n"+dimStyle.Render(dragonsmp.DiscordURL),
	))
	cards := lipgloss.JoinHorizontal(lipgloss.Top, store, apply, discord)

	lines := []string{header, "", ip, "", cards, "", m.helpView()}
	if m.lastErr != nil {
		lines = append(lines, lipgloss.NewStyle().Foreground(red).Render(m.lastErr.Error()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func statusLine(st *dragonsmp.ServerStatus) string {
	if st == nil || !st.Online {
		return lipgloss.NewStyle().Foreground(red).Render("●") + " BAĞLANIYOR..."
	}
	return lipgloss.NewStyle().Foreground(amber).Render("●") +
		fmt.Sprintf(" SUNUCU AKTİF  %d/%d", st.Players.Online, st.Players.Max)
}

func (m Model) helpView() string {
	return dimStyle.Render("ctrl+y adresi kopyala • ctrl+f başvuru formu • ctrl+c çıkış")
}

func (m Model) formView() string {
	return m.zones.Mark(zoneModal, modalStyle.Render(strings.Join([]string{
		titleStyle.Render("BAŞVURU FORMU"),
		dimStyle.Render("DragonSMP Ekip Alımları"),
		"",
		m.ctrl.FormURL(),
		"",
		dimStyle.Render("ctrl+o tarayıcıda aç • esc kapat"),
	}, "\n")))
}

func (m Model) secretView() string {
	lines := []string{titleStyle.Render("GİZLİ PANEL"), "", m.input.View()}
	if m.snap.Secret.Message != "" {
		lines = append(lines, "", titleStyle.Render(m.snap.Secret.Message))
	}
	return m.zones.Mark(zoneModal, modalStyle.Render(strings.Join(lines, "\n")))
}

func (m Model) toastView() string {
	t := m.snap.Toast
	return toastStyle.Render(titleStyle.Render(t.Title) + "\n" + t.Desc)
}

// overlay centres a modal in the window. Everything around it is the
// overlay.
func (m Model) overlay(modal string) string {
	if m.width == 0 || m.height == 0 {
		return modal
	}
	return lipgloss.Place(m.width, m.height-4, lipgloss.Center, lipgloss.Center, modal)
}
