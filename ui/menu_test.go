package ui

import (
	"testing"

	"github.com/volkeeper/volkeeper/audio"
	"github.com/volkeeper/volkeeper/state"
)

// collect flattens the menu into all non-separator items, depth first.
func collect(items []Item) []Item {
	var out []Item
	for _, item := range items {
		if item.Separator {
			continue
		}
		out = append(out, item)
		out = append(out, collect(item.Children)...)
	}
	return out
}

func findByLabel(items []Item, label string) *Item {
	for i := range items {
		if items[i].Label == label {
			return &items[i]
		}
	}
	return nil
}

func TestBuildMenuBindings(t *testing.T) {
	backend := audio.NewFakeBackend()
	backend.AddDevice("out1", "Speakers", audio.Output)
	backend.AddDevice("in1", "Microphone", audio.Input)
	st := state.Default()
	var temp state.TemporaryPriorities

	menu, bindings := BuildMenu(backend, st, &temp)
	all := collect(menu.Items)

	// Every generated id must have a binding, and every leaf entry that
	// claims an id must either be bound or be one of the static entries.
	for _, item := range all {
		if item.ID == "" || len(item.Children) > 0 {
			continue
		}
		if item.ID == QuitItemID || item.ID == CheckUpdatesItemID {
			continue
		}
		if _, ok := bindings[item.ID]; !ok {
			t.Errorf("entry %q has unbound id %s", item.Label, item.ID)
		}
	}

	// The volume lock entry for out1 must bind back to out1.
	lockEntry := findByLabel(all, "Keep volume locked")
	if lockEntry == nil {
		t.Fatal("no volume lock entry in menu")
	}
	info := bindings[lockEntry.ID]
	if info.Setting != VolumeLock {
		t.Errorf("lock entry bound to setting %v", info.Setting)
	}
	// Output devices are listed before input devices.
	if info.DeviceID != "out1" {
		t.Errorf("first lock entry bound to %s, want out1", info.DeviceID)
	}
}

func TestBuildMenuNotifyEntriesFollowLocks(t *testing.T) {
	backend := audio.NewFakeBackend()
	backend.AddDevice("out1", "Speakers", audio.Output)
	st := state.Default()
	st.EnsureDevice("out1", "Speakers", audio.Output).IsVolumeLocked = true
	var temp state.TemporaryPriorities

	menu, _ := BuildMenu(backend, st, &temp)
	all := collect(menu.Items)

	volumeNotify := findByLabel(all, "Notify on volume restore")
	if volumeNotify == nil || !volumeNotify.Enabled {
		t.Error("volume notify entry should be enabled while the lock is on")
	}
	unmuteNotify := findByLabel(all, "Notify on unmute")
	if unmuteNotify == nil || unmuteNotify.Enabled {
		t.Error("unmute notify entry should be disabled while unmute lock is off")
	}
}

func TestBuildMenuPrioritySection(t *testing.T) {
	backend := audio.NewFakeBackend()
	backend.AddDevice("a", "A", audio.Output)
	backend.AddDevice("b", "B", audio.Output)
	st := state.Default()
	st.AddToPriority("a", "A", audio.Output)
	var temp state.TemporaryPriorities

	menu, bindings := BuildMenu(backend, st, &temp)
	all := collect(menu.Items)

	entry := findByLabel(all, "1. A")
	if entry == nil {
		t.Fatal("priority entry for A missing")
	}
	moveUp := findByLabel(entry.Children, "Move up")
	if moveUp == nil || moveUp.Enabled {
		t.Error("move up should be disabled for the top entry")
	}

	// Only b is left to add; a is already on the list.
	addMenu := findByLabel(all, "Add device")
	if addMenu == nil {
		t.Fatal("add device submenu missing")
	}
	var addIDs []string
	for _, child := range addMenu.Children {
		addIDs = append(addIDs, bindings[child.ID].DeviceID)
	}
	if len(addIDs) != 1 || addIDs[0] != "b" {
		t.Errorf("add candidates = %v, want [b]", addIDs)
	}
}

func TestBuildMenuTogglesDisabledWithoutList(t *testing.T) {
	backend := audio.NewFakeBackend()
	st := state.Default()
	var temp state.TemporaryPriorities

	menu, _ := BuildMenu(backend, st, &temp)
	all := collect(menu.Items)

	notify := findByLabel(all, "Notify on priority restore")
	if notify == nil {
		t.Fatal("priority notify toggle missing")
	}
	if notify.Enabled {
		t.Error("toggle enabled with neither a list nor a temporary override")
	}

	temp.Set(audio.Output, "dev1")
	menu, _ = BuildMenu(backend, st, &temp)
	all = collect(menu.Items)
	if notify = findByLabel(all, "Notify on priority restore"); notify == nil || !notify.Enabled {
		t.Error("toggle should enable when a temporary override is set")
	}
}

func TestBuildMenuTemporarySection(t *testing.T) {
	backend := audio.NewFakeBackend()
	backend.AddDevice("out1", "Speakers", audio.Output)
	st := state.Default()
	var temp state.TemporaryPriorities
	temp.Set(audio.Output, "out1")

	menu, bindings := BuildMenu(backend, st, &temp)
	all := collect(menu.Items)

	section := findByLabel(all, "Output device: Speakers")
	if section == nil {
		t.Fatal("temporary section does not show the active override")
	}
	if len(section.Children) != 1 {
		t.Fatalf("override candidates = %d, want 1", len(section.Children))
	}
	child := section.Children[0]
	if !child.Checked {
		t.Error("active override not checked")
	}
	if info := bindings[child.ID]; info.Setting != SetTemporaryPriority || info.DeviceID != "out1" {
		t.Errorf("override entry bound to %+v", info)
	}
}

func TestBuildMenuRefreshesStoredNames(t *testing.T) {
	backend := audio.NewFakeBackend()
	backend.AddDevice("out1", "New Name", audio.Output)
	st := state.Default()
	st.EnsureDevice("out1", "Old Name", audio.Output).IsVolumeLocked = true
	var temp state.TemporaryPriorities

	BuildMenu(backend, st, &temp)
	if st.Devices["out1"].Name != "New Name" {
		t.Errorf("stored name = %q, want refresh to live name", st.Devices["out1"].Name)
	}
}
