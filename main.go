package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fyne.io/systray"

	"github.com/volkeeper/volkeeper/audio"
	"github.com/volkeeper/volkeeper/events"
	"github.com/volkeeper/volkeeper/keeper"
	"github.com/volkeeper/volkeeper/lockfile"
	"github.com/volkeeper/volkeeper/logging"
	"github.com/volkeeper/volkeeper/notify"
	"github.com/volkeeper/volkeeper/persistence"
	"github.com/volkeeper/volkeeper/tray"
	"github.com/volkeeper/volkeeper/ui"
	"github.com/volkeeper/volkeeper/update"
)

const queueSize = 64

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	mainCtx, mainCancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer mainCancel()

	config, err := loadConfig(mainCtx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logBackend, err := logging.New(config.LogFile, config.DebugLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logBackend.Close()
	log := logBackend.Logger("MAIN")
	log.Infof("VolKeeper %s starting", update.Version)

	statePath := config.StateFile
	if statePath == "" {
		statePath, err = persistence.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to resolve state path: %w", err)
		}
	}

	notifier := notify.Desktop{AppName: "VolKeeper"}

	// Only one instance may enforce locks at a time. The lock file lives
	// next to the state file so both follow a relocated state dir.
	lockCtx, lockCancel := context.WithTimeout(mainCtx, 2*time.Second)
	defer lockCancel()
	lock, err := lockfile.Create(lockCtx, filepath.Join(filepath.Dir(statePath), "volkeeper.lock"))
	if err != nil {
		notifier.Notify("VolKeeper Already Running",
			"Another instance of VolKeeper is already running.")
		return fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	defer lock.Close()

	backend := audio.NewSystemBackend()
	store := persistence.NewStore(statePath, logBackend.Logger("STOR"))
	queue := events.NewQueue(queueSize)
	debounce := notify.NewDebouncer(notifier, logBackend.Logger("NTFY"))

	updateLog := logBackend.Logger("UPDT")
	if config.CheckUpdates {
		go update.CheckAndNotify(false, notifier, updateLog)
	}

	newKeeper := func(presenter ui.Presenter) *keeper.Keeper {
		var opts []keeper.Option
		if config.HeartbeatSeconds > 0 {
			opts = append(opts, keeper.WithHeartbeat(time.Duration(config.HeartbeatSeconds)*time.Second))
		}
		k := keeper.New(backend, store, queue, debounce, presenter,
			logBackend.Logger("KEEP"), opts...)
		k.CheckUpdates = func() {
			update.CheckAndNotify(true, notifier, updateLog)
		}
		return k
	}

	if config.NoTray {
		log.Infof("Running headless")
		newKeeper(ui.NopPresenter{}).Run(mainCtx)
		return nil
	}

	onReady := func() {
		systray.SetTitle("VolKeeper")
		presenter := tray.New(queue, logBackend.Logger("TRAY"))
		presenter.SetIcon(false)
		go newKeeper(presenter).Run(mainCtx)
	}
	onExit := func() {
		mainCancel()
	}
	systray.Run(onReady, onExit)

	return nil
}
