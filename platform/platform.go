// Package platform holds small pieces of OS glue for opening the native
// sound configuration surfaces. Everything here is best-effort: commands
// are spawned detached and failures are only logged.
package platform

import (
	"os/exec"
	"runtime"

	"github.com/decred/slog"

	"github.com/volkeeper/volkeeper/audio"
)

func spawn(log slog.Logger, name string, args ...string) {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		log.Warnf("Failed to run %s: %v", name, err)
		return
	}
	// Detach; we never wait for control panels to close.
	go func() { _ = cmd.Wait() }()
}

// OpenDevicesList opens the OS audio device list, on the playback or
// recording tab depending on the device type.
func OpenDevicesList(deviceType audio.DeviceType, log slog.Logger) {
	switch runtime.GOOS {
	case "windows":
		tabIndex := "0"
		if deviceType == audio.Input {
			tabIndex = "1"
		}
		spawn(log, "rundll32.exe", "shell32.dll,Control_RunDLL", "mmsys.cpl,,"+tabIndex)
	case "darwin":
		spawn(log, "open", "x-apple.systempreferences:com.apple.Sound-Settings.extension")
	default:
		spawn(log, "pavucontrol")
	}
}

// OpenDeviceProperties opens the OS properties page for a single device.
func OpenDeviceProperties(deviceID string, log slog.Logger) {
	switch runtime.GOOS {
	case "windows":
		spawn(log, "rundll32.exe", "url.dll,FileProtocolHandler",
			"ms-settings:sound-properties?endpointId="+deviceID)
	case "darwin":
		spawn(log, "open", "x-apple.systempreferences:com.apple.Sound-Settings.extension")
	default:
		spawn(log, "pavucontrol")
	}
}

// OpenSoundSettings opens the general OS sound settings page.
func OpenSoundSettings(log slog.Logger) {
	switch runtime.GOOS {
	case "windows":
		spawn(log, "rundll32.exe", "url.dll,FileProtocolHandler", "ms-settings:sound")
	case "darwin":
		spawn(log, "open", "x-apple.systempreferences:com.apple.Sound-Settings.extension")
	default:
		spawn(log, "pavucontrol")
	}
}
