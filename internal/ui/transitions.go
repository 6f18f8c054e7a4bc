package ui

import (
	"strings"

	"github.com/dragonsmp/dragonsmp/internal/mcstatus"
)

// Target says where a pointer click landed relative to a modal.
type Target int

const (
	// TargetOverlay is the dimmed backdrop around a modal body.
	TargetOverlay Target = iota
	// TargetBody is the modal body itself.
	TargetBody
)

// ApplyStatus replaces the stored server status.
func ApplyStatus(s State, st mcstatus.Status) State {
	s.Status = &st
	return s
}

// ShowToast makes the toast visible with the given text and asks the owner
// to (re)arm the dismissal timer. Any pending dismissal is superseded.
func ShowToast(s State, title, desc string) (State, []Effect) {
	s.Toast = Toast{Show: true, Title: title, Desc: desc}
	return s, []Effect{{Kind: EffectArmToast, Delay: ToastDuration}}
}

// DismissToast hides the toast.
func DismissToast(s State) State {
	s.Toast = Toast{}
	return s
}

// PressKey feeds one keystroke to the controller.
//
// With the secret panel closed the key is appended to the rolling buffer,
// which keeps only the trailing KeyBufferSize runes, case-folded. A buffer
// equal to SecretWord opens the panel and empties the buffer. Only the
// trailing window is compared, so a word interrupted by other keys (named
// keys such as "Shift" included) is not recognised. Escape additionally
// closes an open form modal.
//
// With the secret panel open the buffer is frozen and only Escape has an
// effect: it closes the panel.
func PressKey(s State, key string) (State, []Effect) {
	if s.Secret.Visible {
		if key == KeyEscape {
			return CloseSecret(s)
		}
		return s, nil
	}

	if key == KeyEscape {
		s = CloseForm(s)
	}

	buf := []rune(s.KeyBuffer + key)
	if len(buf) > KeyBufferSize {
		buf = buf[len(buf)-KeyBufferSize:]
	}
	s.KeyBuffer = strings.ToLower(string(buf))

	if s.KeyBuffer == SecretWord {
		return OpenSecret(s), nil
	}
	return s, nil
}

// OpenSecret shows the secret panel in its unresolved, empty state and
// clears the key buffer.
func OpenSecret(s State) State {
	s.Secret = SecretPanel{Visible: true}
	s.KeyBuffer = ""
	return s
}

// CloseSecret hides the secret panel and resets its input and message. A
// link scheduled by the panel is cancelled. Closing a closed panel is a
// no-op.
func CloseSecret(s State) (State, []Effect) {
	if !s.Secret.Visible {
		return s, nil
	}
	s.Secret = SecretPanel{}
	return s, []Effect{{Kind: EffectCancelLink}}
}

// SetSecretInput records a change of the secret panel's input field.
//
// Input is ignored while the panel is closed or already resolved. The value
// is lower-cased and matched against the trigger table; a match resolves the
// panel and may schedule a link.
func SetSecretInput(s State, input string) (State, []Effect) {
	if !s.Secret.Visible || s.Secret.Resolved {
		return s, nil
	}

	val := strings.ToLower(input)
	s.Secret.Input = val

	trig, ok := LookupTrigger(val)
	if !ok {
		return s, nil
	}

	s.Secret.Message = trig.Message
	s.Secret.Resolved = true
	if trig.Link == "" {
		return s, nil
	}
	return s, []Effect{{Kind: EffectOpenLink, Delay: LinkDelay, URL: trig.Link}}
}

// ClickSecret handles a click on the secret panel overlay. Clicks on the
// panel body do nothing.
func ClickSecret(s State, target Target) (State, []Effect) {
	if target != TargetOverlay {
		return s, nil
	}
	return CloseSecret(s)
}

// OpenForm shows the application form modal. Idempotent.
func OpenForm(s State) State {
	s.FormOpen = true
	return s
}

// CloseForm hides the application form modal. Idempotent.
func CloseForm(s State) State {
	s.FormOpen = false
	return s
}

// ClickForm handles a click on the form modal. Only clicks on the overlay
// close it; the body swallows its own clicks.
func ClickForm(s State, target Target) State {
	if target != TargetOverlay {
		return s
	}
	return CloseForm(s)
}
