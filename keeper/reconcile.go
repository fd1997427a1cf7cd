package keeper

import (
	"github.com/decred/slog"

	"github.com/volkeeper/volkeeper/audio"
	"github.com/volkeeper/volkeeper/notify"
	"github.com/volkeeper/volkeeper/pkg/format"
	"github.com/volkeeper/volkeeper/state"
)

// reconcileDevice applies the volume and unmute locks of a tracked device
// against its live state. newVolume is the fraction reported by the change
// notification, or nil to re-query the current value (used for the
// synthetic event pushed on watch registration). Both checks are
// independent and both may fire for the same event.
func reconcileDevice(backend audio.Backend, st *state.PersistentState, deviceID string, newVolume *float32, debounce *notify.Debouncer, log slog.Logger) {
	settings, ok := st.Devices[deviceID]
	if !ok {
		// Not managed; a stale watcher may still fire after an unlock.
		return
	}

	device, err := backend.DeviceByID(deviceID)
	if err != nil {
		log.Debugf("Volume event for unresolvable device %s: %v", deviceID, err)
		return
	}

	if settings.IsVolumeLocked {
		restoreVolume(device, settings, newVolume, debounce, log)
	}

	if settings.IsUnmuteLocked {
		title, suffix := unmuteNotification(settings.DeviceType)
		checkAndUnmute(device, settings.Name, settings.NotifyOnUnmuteLock, title, suffix, debounce, log)
	}
}

// restoreVolume corrects drift from the locked target. The lock always
// wins: an external change is reverted, never adopted. Comparison happens
// on rounded integer percentages so repeated conversions cannot oscillate,
// and the correction itself re-triggers the watcher with a volume that
// compares equal, which terminates the loop.
func restoreVolume(device audio.Device, settings *state.DeviceSettings, newVolume *float32, debounce *notify.Debouncer, log slog.Logger) {
	var volume float32
	if newVolume != nil {
		volume = *newVolume
	} else {
		var err error
		volume, err = device.Volume()
		if err != nil {
			log.Warnf("Failed to read volume of %s: %v", settings.Name, err)
			return
		}
	}

	newPercent := audio.FloatToPercent(volume)
	if newPercent == settings.VolumePercent {
		return
	}

	if err := device.SetVolume(audio.PercentToFloat(settings.VolumePercent)); err != nil {
		log.Errorf("Failed to restore volume of %s: %v", settings.Name, err)
		return
	}
	log.Infof("Restored volume of %s from %s to %s due to lock settings",
		settings.Name, format.Percent(newPercent), format.Percent(settings.VolumePercent))

	if settings.NotifyOnVolumeLock {
		title := "Output Device Volume Restored"
		if settings.DeviceType == audio.Input {
			title = "Input Device Volume Restored"
		}
		debounce.Notify("volume_restore_"+device.ID(), title,
			settings.Name+" was restored to "+format.Percent(settings.VolumePercent)+
				" due to Keep volume locked setting.")
	}
}

// checkAndUnmute unmutes the device if it is currently muted.
func checkAndUnmute(device audio.Device, deviceName string, notifyUser bool, notificationTitle, notificationSuffix string, debounce *notify.Debouncer, log slog.Logger) {
	muted, err := device.Muted()
	if err != nil || !muted {
		return
	}
	if err := device.SetMute(false); err != nil {
		log.Errorf("Failed to unmute %s: %v", deviceName, err)
		return
	}
	log.Infof("Unmuted %s due to lock settings", deviceName)
	if notifyUser {
		debounce.Notify("unmute_"+device.ID(), notificationTitle, deviceName+" "+notificationSuffix)
	}
}

// unmuteNotification returns the type-specific title and message suffix
// for unmute notifications.
func unmuteNotification(deviceType audio.DeviceType) (title, suffix string) {
	if deviceType == audio.Input {
		return "Input Device Unmuted", "was unmuted due to Keep unmuted setting."
	}
	return "Output Device Unmuted", "was unmuted due to Keep unmuted setting."
}
