package device

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rocketplan/uiflow/pkg/logger"
)

// bootPollInterval is how often WaitForBoot re-checks the device.
var bootPollInterval = time.Second

// BootStatus represents device boot state.
type BootStatus struct {
	StateReady     bool // adb get-state == "device"
	BootCompleted  bool // sys.boot_completed == "1"
	PackageManager bool // pm get-max-users succeeds
}

// IsFullyReady returns true if all boot checks passed.
func (bs *BootStatus) IsFullyReady() bool {
	return bs.StateReady && bs.BootCompleted && bs.PackageManager
}

func (bs *BootStatus) String() string {
	return fmt.Sprintf("state:%v boot:%v pm:%v", bs.StateReady, bs.BootCompleted, bs.PackageManager)
}

// CheckBootStatus runs the boot checks in order, stopping at the first one
// that is not ready. uiautomator dumps fail on a device that is still booting.
func (d *AndroidDevice) CheckBootStatus() *BootStatus {
	status := &BootStatus{}

	state, err := d.ConnectionState()
	status.StateReady = err == nil && state == "device"
	if !status.StateReady {
		return status
	}

	out, err := d.Shell("getprop sys.boot_completed")
	status.BootCompleted = err == nil && strings.TrimSpace(out) == "1"
	if !status.BootCompleted {
		return status
	}

	_, err = d.Shell("pm get-max-users")
	status.PackageManager = err == nil
	return status
}

// WaitForBoot polls CheckBootStatus until the device is fully ready, the
// timeout elapses or ctx is cancelled.
func (d *AndroidDevice) WaitForBoot(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logger.Info("Waiting for device boot: %s", d.serialOrDefault())
	ticker := time.NewTicker(bootPollInterval)
	defer ticker.Stop()

	for {
		status := d.CheckBootStatus()
		logger.Debug("Boot status for %s: %s", d.serialOrDefault(), status)
		if status.IsFullyReady() {
			logger.Info("Device ready: %s", d.serialOrDefault())
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return fmt.Errorf("device not ready after %v (%s): %w", timeout, status, ctx.Err())
		}
	}
}

func (d *AndroidDevice) serialOrDefault() string {
	if d.serial == "" {
		return "<default device>"
	}
	return d.serial
}
