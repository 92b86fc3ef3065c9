// Command beatkeeperd runs the real-time musical sequencing driver.
//
// The network ingress that would feed control.Message values into the
// inbox, and the egress that would do something with a tick's emissions,
// are out of scope of this core: this binary wires the driver to an empty
// inbox and a logging sink, so it can run standalone and be exercised
// before a real ingress/egress is attached.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zurustar/beatkeeper/pkg/cli"
	"github.com/zurustar/beatkeeper/pkg/driver"
	"github.com/zurustar/beatkeeper/pkg/inbox"
	"github.com/zurustar/beatkeeper/pkg/logger"
	"github.com/zurustar/beatkeeper/pkg/master"
)

func startModeFromString(s string) master.StartMode {
	switch s {
	case "with-nearest":
		return master.WithNearest
	case "with-longest":
		return master.WithLongest
	default:
		return master.Immediate
	}
}

func resetModeFromString(s string) master.ResetMode {
	if s == "longest" {
		return master.Longest
	}
	return master.Individual
}

func run() error {
	cfg, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		return fmt.Errorf("parsing configuration: %w", err)
	}
	if cfg.ShowHelp {
		cli.PrintHelp(os.Stdout)
		return nil
	}

	if err := logger.InitLogger(cfg.LogLevel); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	log := logger.GetLogger()

	log.Info("starting beatkeeperd",
		"bpm", cfg.Bpm,
		"tick_period", cfg.TickPeriod,
		"start_mode", cfg.StartMode,
		"reset_mode", cfg.ResetMode,
		"sync_pulse", cfg.SyncPulseEnabled,
		"inbox_capacity", cfg.InboxCapacity)

	ib := inbox.New[string](cfg.InboxCapacity)

	sink := func(batch []string, tickTime time.Time) {
		log.Info("tick emission", "tick_time", tickTime, "entries", batch)
	}

	d := driver.New(driver.Config[string]{
		StartMode:        startModeFromString(cfg.StartMode),
		ResetMode:        resetModeFromString(cfg.ResetMode),
		InitialBpm:       cfg.Bpm,
		TickPeriod:       cfg.TickPeriod,
		SyncPulseEnabled: cfg.SyncPulseEnabled,
		SyncPulsePayload: "__sync__",
	}, ib, sink)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		d.Run(stop)
		close(done)
	}()

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())
	close(stop)
	<-done

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
