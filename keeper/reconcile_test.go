package keeper

import (
	"testing"

	"github.com/decred/slog"

	"github.com/volkeeper/volkeeper/audio"
	"github.com/volkeeper/volkeeper/state"
)

func TestReconcileRestoresLockedVolume(t *testing.T) {
	backend := audio.NewFakeBackend()
	device := backend.AddDevice("dev1", "Speakers", audio.Output)
	device.ChangeVolume(0.7)

	st := state.Default()
	settings := st.EnsureDevice("dev1", "Speakers", audio.Output)
	settings.IsVolumeLocked = true
	settings.VolumePercent = 50
	debounce, _ := testDebouncer()

	v := float32(0.7)
	reconcileDevice(backend, st, "dev1", &v, debounce, slog.Disabled)

	if device.SetVolumeCalls != 1 {
		t.Errorf("SetVolume called %d times, want 1", device.SetVolumeCalls)
	}
	live, _ := device.Volume()
	if audio.FloatToPercent(live) != 50 {
		t.Errorf("live volume = %v, want 50%%", audio.FloatToPercent(live))
	}
}

func TestReconcileConverges(t *testing.T) {
	backend := audio.NewFakeBackend()
	device := backend.AddDevice("dev1", "Speakers", audio.Output)

	st := state.Default()
	settings := st.EnsureDevice("dev1", "Speakers", audio.Output)
	settings.IsVolumeLocked = true
	settings.VolumePercent = 50
	debounce, _ := testDebouncer()

	// The correction itself triggers another volume event. Feeding that
	// event back must not cause a second SetVolume call.
	v := float32(0.7)
	reconcileDevice(backend, st, "dev1", &v, debounce, slog.Disabled)
	live, _ := device.Volume()
	reconcileDevice(backend, st, "dev1", &live, debounce, slog.Disabled)

	if device.SetVolumeCalls != 1 {
		t.Errorf("SetVolume called %d times, want 1 (no oscillation)", device.SetVolumeCalls)
	}
}

func TestReconcileQueriesVolumeOnNilEvent(t *testing.T) {
	backend := audio.NewFakeBackend()
	device := backend.AddDevice("dev1", "Speakers", audio.Output)
	device.ChangeVolume(0.3)

	st := state.Default()
	settings := st.EnsureDevice("dev1", "Speakers", audio.Output)
	settings.IsVolumeLocked = true
	settings.VolumePercent = 80
	debounce, _ := testDebouncer()

	reconcileDevice(backend, st, "dev1", nil, debounce, slog.Disabled)

	live, _ := device.Volume()
	if audio.FloatToPercent(live) != 80 {
		t.Errorf("live volume = %v%%, want 80%%", audio.FloatToPercent(live))
	}
}

func TestReconcileUnmutesLockedDevice(t *testing.T) {
	backend := audio.NewFakeBackend()
	device := backend.AddDevice("mic1", "Microphone", audio.Input)
	device.ChangeMute(true)

	st := state.Default()
	settings := st.EnsureDevice("mic1", "Microphone", audio.Input)
	settings.IsUnmuteLocked = true
	settings.NotifyOnUnmuteLock = true
	debounce, rec := testDebouncer()

	reconcileDevice(backend, st, "mic1", nil, debounce, slog.Disabled)

	if muted, _ := device.Muted(); muted {
		t.Error("device still muted")
	}
	if len(rec.calls) != 1 {
		t.Fatalf("notifications = %v, want one", rec.calls)
	}
	want := "Input Device Unmuted|Microphone was unmuted due to Keep unmuted setting."
	if rec.calls[0] != want {
		t.Errorf("notification = %q, want %q", rec.calls[0], want)
	}
}

func TestReconcileUnmuteSkipsWhenNotMuted(t *testing.T) {
	backend := audio.NewFakeBackend()
	device := backend.AddDevice("mic1", "Microphone", audio.Input)

	st := state.Default()
	st.EnsureDevice("mic1", "Microphone", audio.Input).IsUnmuteLocked = true
	debounce, _ := testDebouncer()

	reconcileDevice(backend, st, "mic1", nil, debounce, slog.Disabled)

	if device.SetMuteCalls != 0 {
		t.Errorf("SetMute called %d times on an unmuted device", device.SetMuteCalls)
	}
}

func TestReconcileBothLocksFireIndependently(t *testing.T) {
	backend := audio.NewFakeBackend()
	device := backend.AddDevice("dev1", "Headset", audio.Output)
	device.ChangeVolume(0.9)
	device.ChangeMute(true)

	st := state.Default()
	settings := st.EnsureDevice("dev1", "Headset", audio.Output)
	settings.IsVolumeLocked = true
	settings.VolumePercent = 40
	settings.IsUnmuteLocked = true
	debounce, _ := testDebouncer()

	reconcileDevice(backend, st, "dev1", nil, debounce, slog.Disabled)

	live, _ := device.Volume()
	if audio.FloatToPercent(live) != 40 {
		t.Error("volume lock did not fire")
	}
	if muted, _ := device.Muted(); muted {
		t.Error("unmute lock did not fire")
	}
}

func TestReconcileIgnoresUnmanagedDevice(t *testing.T) {
	backend := audio.NewFakeBackend()
	device := backend.AddDevice("dev1", "Speakers", audio.Output)
	device.ChangeVolume(0.7)

	st := state.Default()
	debounce, _ := testDebouncer()

	// A stale watcher may fire after the entry is unlocked and pruned.
	reconcileDevice(backend, st, "dev1", nil, debounce, slog.Disabled)

	if device.SetVolumeCalls != 0 || device.SetMuteCalls != 0 {
		t.Error("corrective call on an unmanaged device")
	}
}

func TestReconcileVolumeNotification(t *testing.T) {
	backend := audio.NewFakeBackend()
	device := backend.AddDevice("dev1", "Speakers", audio.Output)
	device.ChangeVolume(0.7)

	st := state.Default()
	settings := st.EnsureDevice("dev1", "Speakers", audio.Output)
	settings.IsVolumeLocked = true
	settings.VolumePercent = 50
	settings.NotifyOnVolumeLock = true
	debounce, rec := testDebouncer()

	reconcileDevice(backend, st, "dev1", nil, debounce, slog.Disabled)

	if len(rec.calls) != 1 {
		t.Fatalf("notifications = %v, want one", rec.calls)
	}
	want := "Output Device Volume Restored|Speakers was restored to 50% due to Keep volume locked setting."
	if rec.calls[0] != want {
		t.Errorf("notification = %q, want %q", rec.calls[0], want)
	}
}
