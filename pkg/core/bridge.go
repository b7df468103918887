package core

import "strings"

// KeyCodeBack is the Android KEYCODE_BACK event code.
const KeyCodeBack = 4

// Bridge is the command channel to a connected device or emulator.
// Every call is a blocking round trip; implementations return an error only
// when the channel itself fails (binary missing, non-zero exit).
type Bridge interface {
	// ConnectionState returns the raw connection state, e.g. "device".
	ConnectionState() (string, error)

	// DumpHierarchy returns the current UI hierarchy markup.
	DumpHierarchy() (string, error)

	// Tap injects a tap at screen coordinates.
	Tap(x, y int) error

	// InputText injects text into the focused field. The text must already
	// be escaped for the bridge.
	InputText(text string) error

	// Launch starts package/activity.
	Launch(pkg, activity string) error

	// KeyEvent injects a key event.
	KeyEvent(code int) error
}

// EnsureConnected checks the connectivity precondition shared by the flow
// runner and the capture loop.
func EnsureConnected(b Bridge) error {
	state, err := b.ConnectionState()
	if err != nil {
		return ErrBridgeUnavailable.WithCause(err)
	}
	if strings.TrimSpace(state) != "device" {
		return ErrDeviceDisconnected.WithDetails(map[string]interface{}{"state": strings.TrimSpace(state)}).
			WithMessage("no device/emulator detected (got: " + strings.TrimSpace(state) + ")")
	}
	return nil
}
