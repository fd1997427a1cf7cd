package keeper

import (
	"github.com/decred/slog"

	"github.com/volkeeper/volkeeper/audio"
	"github.com/volkeeper/volkeeper/state"
)

// Migrate reconciles stored device ids against the currently enumerable
// devices. The OS occasionally reissues endpoint ids (driver reinstall,
// firmware update); the stored cleaned name is the identity that survives,
// so settings follow the name to the new id and priority-list entries are
// relinked in place. It reports whether the state changed and is
// idempotent: a second run over an unchanged topology changes nothing.
func Migrate(backend audio.Backend, st *state.PersistentState, log slog.Logger) bool {
	type candidate struct {
		id       string
		settings *state.DeviceSettings
		newName  string
	}
	var toMigrate []candidate
	var toRename []candidate

	for deviceID, settings := range st.Devices {
		device, err := backend.DeviceByID(deviceID)
		if err != nil {
			toMigrate = append(toMigrate, candidate{id: deviceID, settings: settings})
			continue
		}
		// Device resolves; a differing name is an update, not a migration.
		if currentName := device.Name(); currentName != settings.Name {
			log.Infof("Device %s with ID %s had the name changed to %s",
				settings.Name, deviceID, currentName)
			toRename = append(toRename, candidate{id: deviceID, settings: settings, newName: currentName})
		}
	}

	changed := false

	// Apply the name updates first; they are pure overwrites.
	for _, c := range toRename {
		c.settings.Name = c.newName
		changed = true
	}

	for _, c := range toMigrate {
		newID, err := findDeviceByNameAndType(backend, c.settings.Name, c.settings.DeviceType)
		if err != nil {
			log.Warnf("Device %s with ID %s could not be found, keeping it in case it returns",
				c.settings.Name, c.id)
			continue
		}

		delete(st.Devices, c.id)
		st.Devices[newID] = c.settings
		st.ReplaceInPriority(c.id, newID, c.settings.DeviceType)
		changed = true

		log.Infof("Migrated device %s from ID %s to %s", c.settings.Name, c.id, newID)
	}

	return changed
}

// findDeviceByNameAndType scans the active devices of a type for an exact
// cleaned-name match. Ties resolve to the first enumeration match; that
// ambiguity is accepted rather than resolved by a secondary key.
func findDeviceByNameAndType(backend audio.Backend, targetName string, deviceType audio.DeviceType) (string, error) {
	devices, err := backend.Devices(deviceType)
	if err != nil {
		return "", err
	}
	for _, device := range devices {
		if device.Name() == targetName {
			return device.ID(), nil
		}
	}
	return "", audio.ErrDeviceNotFound
}
