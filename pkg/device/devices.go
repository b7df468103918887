package device

import (
	"fmt"
	"strings"
)

// DeviceEntry is one line of `adb devices -l`.
type DeviceEntry struct {
	Serial string
	State  string // device, offline, unauthorized, ...
	Model  string
}

// ListDevices returns every device adb knows about, in adb's order.
func ListDevices(adbPath string) ([]DeviceEntry, error) {
	d := New(Options{ADBPath: adbPath})
	out, err := d.adb("devices", "-l")
	if err != nil {
		return nil, err
	}
	return parseDevices(out), nil
}

// FirstAvailable returns a device for the first entry in the "device" state.
// opts.Serial is ignored; the other options carry over.
func FirstAvailable(opts Options) (*AndroidDevice, error) {
	entries, err := ListDevices(opts.ADBPath)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.State == "device" {
			opts.Serial = e.Serial
			return New(opts), nil
		}
	}
	return nil, fmt.Errorf("no connected devices found")
}

func parseDevices(out string) []DeviceEntry {
	var entries []DeviceEntry
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of") || strings.HasPrefix(line, "*") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		entry := DeviceEntry{Serial: parts[0], State: parts[1]}
		for _, p := range parts[2:] {
			if v, ok := strings.CutPrefix(p, "model:"); ok {
				entry.Model = v
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
