package ui

import (
	"time"

	"github.com/dragonsmp/dragonsmp/internal/mcstatus"
)

const (
	// ToastDuration is how long a toast stays visible after the latest
	// notify call.
	ToastDuration = 3000 * time.Millisecond

	// LinkDelay is the pause between resolving a link trigger and opening
	// the link.
	LinkDelay = 1000 * time.Millisecond

	// KeyBufferSize is the width of the rolling keystroke window.
	KeyBufferSize = 6

	// SecretWord opens the secret panel when typed.
	SecretWord = "secret"

	// KeyEscape is the key name that closes the secret panel.
	KeyEscape = "Escape"
)

// Toast is the single notification slot.
type Toast struct {
	Show  bool   `json:"show"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

// SecretPanel is the hidden panel opened by the secret word.
//
// Once Resolved is set the panel ignores input until it is closed; closing
// resets every field.
type SecretPanel struct {
	Visible  bool   `json:"visible"`
	Input    string `json:"input"`
	Message  string `json:"message"`
	Resolved bool   `json:"resolved"`
}

// State is the complete interaction state of one controller.
type State struct {
	// Status is nil until the first successful poll.
	Status    *mcstatus.Status `json:"status"`
	Toast     Toast            `json:"toast"`
	KeyBuffer string           `json:"key_buffer"`
	Secret    SecretPanel      `json:"secret"`
	FormOpen  bool             `json:"form_open"`
}

// EffectKind identifies a side effect requested by a transition.
type EffectKind int

const (
	// EffectArmToast (re)arms the toast dismissal timer for Delay.
	EffectArmToast EffectKind = iota + 1

	// EffectOpenLink schedules opening URL after Delay.
	EffectOpenLink

	// EffectCancelLink cancels a scheduled link open, if any.
	EffectCancelLink
)

func (k EffectKind) String() string {
	switch k {
	case EffectArmToast:
		return "arm_toast"
	case EffectOpenLink:
		return "open_link"
	case EffectCancelLink:
		return "cancel_link"
	default:
		return "unknown"
	}
}

// Effect is a side effect the state owner must perform after a transition.
type Effect struct {
	Kind  EffectKind
	Delay time.Duration
	URL   string
}
