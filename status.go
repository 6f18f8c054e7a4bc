package dragonsmp

import (
	"github.com/dragonsmp/dragonsmp/internal/mcstatus"
	"github.com/dragonsmp/dragonsmp/internal/server"
	"github.com/dragonsmp/dragonsmp/internal/ui"
)

// ServerStatus is one decoded status document of the Minecraft server.
//
// A document is replaced wholesale by every successful poll; a failed poll
// keeps the previous one.
type ServerStatus = mcstatus.Status

// Players holds the player counts of a [ServerStatus].
type Players = mcstatus.Players

// Toast is the single notification slot of a [Snapshot].
type Toast = ui.Toast

// SecretPanel is the state of the hidden panel of a [Snapshot].
type SecretPanel = ui.SecretPanel

// Stats are the figures served by the companion API at /api/stats.
type Stats = server.Stats

// Target says where a pointer click landed relative to an open modal.
type Target = ui.Target

const (
	// TargetOverlay is the dimmed backdrop around a modal body.
	TargetOverlay = ui.TargetOverlay

	// TargetBody is the modal body itself.
	TargetBody = ui.TargetBody
)

// KeyEscape is the key name that closes the secret panel and the form modal.
const KeyEscape = ui.KeyEscape

// Snapshot is an immutable copy of the controller state.
//
// Snapshots are safe to keep and share; they never change after they are
// returned.
type Snapshot struct {
	// Status is nil until the first successful poll.
	Status *ServerStatus `json:"status"`

	Toast     Toast       `json:"toast"`
	KeyBuffer string      `json:"key_buffer"`
	Secret    SecretPanel `json:"secret"`
	FormOpen  bool        `json:"form_open"`
}

// snapshotOf deep-copies s so callers cannot reach controller memory.
func snapshotOf(s ui.State) Snapshot {
	return Snapshot{
		Status:    s.Status,
		Toast:     s.Toast,
		KeyBuffer: s.KeyBuffer,
		Secret:    s.Secret,
		FormOpen:  s.FormOpen,
	}.clone()
}

// clone returns a copy of s that shares no memory with it.
func (s Snapshot) clone() Snapshot {
	if s.Status != nil {
		st := *s.Status
		st.MOTD = append([]string(nil), s.Status.MOTD...)
		s.Status = &st
	}
	return s
}
