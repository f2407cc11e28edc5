package main

import (
	"codeberg.org/miketth/evremap/pkg/config"
	"codeberg.org/miketth/evremap/pkg/device"
	"codeberg.org/miketth/evremap/pkg/evremap"
	"codeberg.org/miketth/evremap/pkg/journal"
	"codeberg.org/miketth/evremap/pkg/journal/memory"
	"codeberg.org/miketth/evremap/pkg/journal/sqlite"
	"codeberg.org/miketth/evremap/pkg/layout"
	"codeberg.org/miketth/evremap/pkg/xkblayouts"
	"context"
	"errors"
	"fmt"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

var version = "dev"

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		log.Fatalf("error: %+v", err)
	}
}

func runDaemon(cfg config.Config) error {
	log, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := loadRegistry(cfg.EvdevXMLPath, log)
	table, err := config.ResolveLayout(cfg.Layout, registry)
	if err != nil {
		return fmt.Errorf("resolve layout: %w", err)
	}
	layoutName := describeLayout(table, registry)

	gw, err := device.Acquire(cfg.Device, cfg.DeviceName, log)
	if err != nil {
		return fmt.Errorf("acquire keyboard: %w", err)
	}
	defer gw.Close()

	store := openJournal(cfg, log)
	defer closeJournal(store, log)
	if err := store.StartSession(cfg.Device, table.Name); err != nil {
		log.Warnw("start journal session", "error", err)
	}

	policy := evremap.Policy{Table: table, Hotkey: cfg.Hotkey, LED: evdev.LED_CAPSL}
	remapper := evremap.NewRemapper(gw, policy, cfg.Bypass, store, log)

	log.Infow("started evremap", "layout", layoutName, "hotkey", evdev.KEYToString[cfg.Hotkey])

	errChan := make(chan error, 3)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		err := remapper.Run(ctx)
		if err != nil {
			errChan <- fmt.Errorf("remap: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := systemdNotifyLoop(ctx, layoutName)
		if err != nil {
			errChan <- fmt.Errorf("systemd notify: %w", err)
		}
	}()

	err = <-errChan
	switch {
	case errors.Is(err, context.Canceled):
		log.Info("shutting down")
		wg.Wait()
		return nil
	case err != nil:
		return err
	}

	return nil
}

func loadRegistry(path string, log *zap.SugaredLogger) *xkblayouts.Registry {
	if path == "" {
		return nil
	}

	registry, err := xkblayouts.ParseRegistry(path)
	if err != nil {
		log.Debugw("xkb registry unavailable, using built-in layout names", "path", path, "error", err)
		return nil
	}
	return registry
}

func describeLayout(table *layout.Table, registry *xkblayouts.Registry) string {
	if registry != nil {
		if name := registry.Describe(table.Layout, table.Variant); name != "" {
			return name
		}
	}
	return table.Name
}

// openJournal falls back to an in-memory journal so toggles are still
// summarised at shutdown when the database cannot be used.
func openJournal(cfg config.Config, log *zap.SugaredLogger) journal.Store {
	if cfg.NoJournal {
		return memory.NewJournal()
	}

	path := cfg.Journal
	if path == "" {
		var err error
		path, err = config.DefaultJournalPath()
		if err != nil {
			log.Warnw("journal disabled", "error", err)
			return memory.NewJournal()
		}
	}

	store, err := sqlite.NewJournal(path, log)
	if err != nil {
		log.Warnw("journal disabled", "path", path, "error", err)
		return memory.NewJournal()
	}

	log.Debugw("journal opened", "path", path)
	return store
}

func closeJournal(store journal.Store, log *zap.SugaredLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sessions, err := store.RecentSessions(ctx, 1)
	if err == nil && len(sessions) == 1 {
		log.Infow("session summary", "toggles", sessions[0].Toggles, "duration", time.Since(sessions[0].StartedAt).Round(time.Second))
	}

	if err := store.Close(); err != nil {
		log.Warnw("close journal", "error", err)
	}
}

func systemdNotifyLoop(ctx context.Context, layoutName string) error {
	// tell systemd that we're ready
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		return nil
	}

	_, _ = daemon.SdNotify(false, "STATUS=Remapping to "+layoutName)

	// notify watchdog
	t, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	loggerConfig.OutputPaths = []string{"stdout"}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}
