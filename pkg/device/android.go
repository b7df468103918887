// Package device provides the adb-backed device bridge.
package device

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/rocketplan/uiflow/pkg/logger"
)

// DumpPath is where uiautomator writes the window dump on the device.
const DumpPath = "/sdcard/window_dump.xml"

// Options configures an AndroidDevice.
type Options struct {
	ADBPath         string        // adb binary; empty means look it up
	Serial          string        // device serial; empty lets adb pick the only device
	CommandInterval time.Duration // minimum spacing between adb invocations (0 = none)
}

// AndroidDevice implements core.Bridge by shelling out to adb.
type AndroidDevice struct {
	serial  string
	adbPath string
	limiter *rate.Limiter
}

// New creates an AndroidDevice. It does not contact the device; use
// core.EnsureConnected for the connectivity check.
func New(opts Options) *AndroidDevice {
	adbPath := opts.ADBPath
	if adbPath == "" {
		adbPath = findADB()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.CommandInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.CommandInterval), 1)
	}

	return &AndroidDevice{
		serial:  opts.Serial,
		adbPath: adbPath,
		limiter: limiter,
	}
}

// Serial returns the device serial number ("" when adb picks the device).
func (d *AndroidDevice) Serial() string {
	return d.serial
}

// ADBPath returns the adb binary in use.
func (d *AndroidDevice) ADBPath() string {
	return d.adbPath
}

// ConnectionState runs `adb get-state`.
func (d *AndroidDevice) ConnectionState() (string, error) {
	out, err := d.adb("get-state")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// DumpHierarchy asks uiautomator for a compressed window dump and reads it back.
func (d *AndroidDevice) DumpHierarchy() (string, error) {
	if _, err := d.adb("shell", "uiautomator", "dump", "--compressed", DumpPath); err != nil {
		return "", err
	}
	out, err := d.adb("shell", "cat", DumpPath)
	if err != nil {
		return "", err
	}
	return extractXML(out), nil
}

// Tap injects a tap at (x, y).
func (d *AndroidDevice) Tap(x, y int) error {
	_, err := d.adb("shell", "input", "tap", strconv.Itoa(x), strconv.Itoa(y))
	return err
}

// InputText types text into the focused field. Spaces must already be
// escaped, see EscapeInputText.
func (d *AndroidDevice) InputText(text string) error {
	_, err := d.adb("shell", "input", "text", text)
	return err
}

// Launch starts an activity with `am start -n package/activity`.
func (d *AndroidDevice) Launch(pkg, activity string) error {
	_, err := d.adb("shell", "am", "start", "-n", pkg+"/"+activity)
	return err
}

// KeyEvent injects an Android key code.
func (d *AndroidDevice) KeyEvent(code int) error {
	_, err := d.adb("shell", "input", "keyevent", strconv.Itoa(code))
	return err
}

// Shell executes a shell command on the device.
func (d *AndroidDevice) Shell(cmd string) (string, error) {
	return d.adb("shell", cmd)
}

// EscapeInputText prepares text for `adb shell input text`, which treats a
// space as an argument separator; %s is its encoding for a space.
func EscapeInputText(text string) string {
	return strings.ReplaceAll(text, " ", "%s")
}

// extractXML drops anything adb prints around the dump payload.
func extractXML(out string) string {
	if start := strings.Index(out, "<?xml"); start > 0 {
		out = out[start:]
	}
	if end := strings.LastIndex(out, ">"); end != -1 && end < len(out)-1 {
		out = out[:end+1]
	}
	return out
}

// adb executes an ADB command.
func (d *AndroidDevice) adb(args ...string) (string, error) {
	if err := d.limiter.Wait(context.Background()); err != nil {
		return "", err
	}

	cmdArgs := make([]string, 0, len(args)+2)
	if d.serial != "" {
		cmdArgs = append(cmdArgs, "-s", d.serial)
	}
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.Command(d.adbPath, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.MultiWriter(&stderr, logger.GetWriter())

	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = strings.TrimSpace(stdout.String())
		}
		return "", fmt.Errorf("adb %s: %w: %s", strings.Join(args, " "), err, errMsg)
	}

	return stdout.String(), nil
}

// findADB locates the ADB binary: PATH first, then the SDK platform-tools.
// Falls back to plain "adb" so the failure surfaces on first use.
func findADB() string {
	if path, err := exec.LookPath("adb"); err == nil {
		return path
	}

	name := "adb"
	if runtime.GOOS == "windows" {
		name = "adb.exe"
	}
	for _, env := range []string{"ANDROID_HOME", "ANDROID_SDK_ROOT"} {
		if root := os.Getenv(env); root != "" {
			candidate := filepath.Join(root, "platform-tools", name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return "adb"
}
