package keeper

import (
	"github.com/decred/slog"

	"github.com/volkeeper/volkeeper/audio"
	"github.com/volkeeper/volkeeper/notify"
	"github.com/volkeeper/volkeeper/state"
)

// EnforcePriorities drives the OS default-device slots back to the highest
// ranked active entry of each priority list, independently per device type.
func EnforcePriorities(backend audio.Backend, st *state.PersistentState, temp *state.TemporaryPriorities, debounce *notify.Debouncer, log slog.Logger) {
	for _, deviceType := range audio.Types {
		enforcePriorityForType(backend, st, deviceType, temp.Get(deviceType), debounce, log)
	}
}

func enforcePriorityForType(backend audio.Backend, st *state.PersistentState, deviceType audio.DeviceType, temporaryID string, debounce *notify.Debouncer, log slog.Logger) {
	// The temporary override, when set, outranks the whole persisted list.
	var priorityList []string
	if temporaryID != "" {
		priorityList = append(priorityList, temporaryID)
	}
	priorityList = append(priorityList, st.PriorityList(deviceType)...)

	targetID, ok := findHighestPriorityActiveDevice(backend, priorityList)
	if !ok {
		// Nothing on the list is active: no change, no notification.
		return
	}

	switched := false

	// Console and Multimedia move together: most OS surfaces only expose
	// Console, but some applications honor Multimedia.
	isConsoleCorrect := false
	if defaultDevice, err := backend.DefaultDevice(deviceType, audio.RoleConsole); err == nil {
		isConsoleCorrect = defaultDevice.ID() == targetID
	}
	if !isConsoleCorrect {
		log.Infof("Enforcing %s priority: Switching to %s", typeString(deviceType), targetID)
		if err := backend.SetDefaultDevice(targetID, audio.RoleConsole); err != nil {
			log.Warnf("Failed to switch %s default device: %v", typeString(deviceType), err)
		}
		if err := backend.SetDefaultDevice(targetID, audio.RoleMultimedia); err != nil {
			log.Warnf("Failed to switch %s multimedia device: %v", typeString(deviceType), err)
		}
		switched = true
	}

	// Communications is optional and separate: voice-call applications may
	// need a different endpoint than general playback.
	if st.SwitchCommunicationDevice(deviceType) {
		isCommCorrect := false
		if defaultDevice, err := backend.DefaultDevice(deviceType, audio.RoleCommunications); err == nil {
			isCommCorrect = defaultDevice.ID() == targetID
		}
		if !isCommCorrect {
			log.Infof("Enforcing %s priority (Communication): Switching to %s", typeString(deviceType), targetID)
			if err := backend.SetDefaultDevice(targetID, audio.RoleCommunications); err != nil {
				log.Warnf("Failed to switch %s communication device: %v", typeString(deviceType), err)
			}
			switched = true
		}
	}

	if switched && st.NotifyOnPriorityRestore(deviceType) {
		deviceName := "Unknown Device"
		if device, err := backend.DeviceByID(targetID); err == nil {
			deviceName = device.Name()
		}
		title := "Default Output Device Restored"
		if deviceType == audio.Input {
			title = "Default Input Device Restored"
		}
		debounce.Notify("priority_restore_"+targetID, title,
			"Switched to "+deviceName+" based on priority list.")
	}
}

// findHighestPriorityActiveDevice returns the first entry of the list
// whose backing device currently reports active.
func findHighestPriorityActiveDevice(backend audio.Backend, priorityList []string) (string, bool) {
	for _, deviceID := range priorityList {
		device, err := backend.DeviceByID(deviceID)
		if err != nil {
			continue
		}
		if active, err := device.Active(); err == nil && active {
			return deviceID, true
		}
	}
	return "", false
}

func typeString(t audio.DeviceType) string {
	if t == audio.Output {
		return "output"
	}
	return "input"
}
