// Package mock provides a scripted bridge for testing without a real device.
package mock

import (
	"fmt"
	"sync"
)

// Call records one bridge invocation.
type Call struct {
	Op   string // get-state, dump, tap, text, launch, keyevent
	Args []string
}

// Bridge is a mock implementation of core.Bridge for testing.
type Bridge struct {
	// Configuration
	State     string   // value returned by ConnectionState; "" means "device"
	StateErr  error    // error returned by ConnectionState
	Snapshots []string // dump queue; the last entry repeats once reached
	DumpErr   error
	FailOn    map[string]error // per-op failure injection, keyed by Call.Op

	mu    sync.Mutex
	calls []Call
	dumps int
}

// New creates a connected mock bridge that serves the given snapshots.
func New(snapshots ...string) *Bridge {
	return &Bridge{Snapshots: snapshots}
}

// ConnectionState reports the scripted adb state.
func (b *Bridge) ConnectionState() (string, error) {
	if err := b.record("get-state"); err != nil {
		return "", err
	}
	if b.StateErr != nil {
		return "", b.StateErr
	}
	if b.State == "" {
		return "device", nil
	}
	return b.State, nil
}

// DumpHierarchy returns the next scripted snapshot.
func (b *Bridge) DumpHierarchy() (string, error) {
	if err := b.record("dump"); err != nil {
		return "", err
	}
	if b.DumpErr != nil {
		return "", b.DumpErr
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Snapshots) == 0 {
		return "", fmt.Errorf("mock: no snapshot scripted")
	}
	i := b.dumps
	if i >= len(b.Snapshots) {
		i = len(b.Snapshots) - 1
	}
	b.dumps++
	return b.Snapshots[i], nil
}

// Tap records a tap.
func (b *Bridge) Tap(x, y int) error {
	return b.record("tap", fmt.Sprint(x), fmt.Sprint(y))
}

// InputText records typed text.
func (b *Bridge) InputText(text string) error {
	return b.record("text", text)
}

// Launch records an activity start.
func (b *Bridge) Launch(pkg, activity string) error {
	return b.record("launch", pkg+"/"+activity)
}

// KeyEvent records a key event.
func (b *Bridge) KeyEvent(code int) error {
	return b.record("keyevent", fmt.Sprint(code))
}

func (b *Bridge) record(op string, args ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, Call{Op: op, Args: args})
	if err, ok := b.FailOn[op]; ok {
		return err
	}
	return nil
}

// Calls returns a copy of every recorded call.
func (b *Bridge) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// Ops returns the recorded calls with the given op.
func (b *Bridge) Ops(op string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Taps returns recorded taps as [x, y] pairs.
func (b *Bridge) Taps() [][2]int {
	var out [][2]int
	for _, c := range b.Ops("tap") {
		var x, y int
		fmt.Sscan(c.Args[0], &x)
		fmt.Sscan(c.Args[1], &y)
		out = append(out, [2]int{x, y})
	}
	return out
}

// Texts returns recorded input text in order.
func (b *Bridge) Texts() []string {
	var out []string
	for _, c := range b.Ops("text") {
		out = append(out, c.Args[0])
	}
	return out
}

// Reset clears recorded calls and rewinds the snapshot queue.
func (b *Bridge) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
	b.dumps = 0
}
