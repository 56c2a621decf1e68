// slot-clock keeps an NTP-synchronized wall clock on a 17-digit display and
// plays a slot-machine reveal when it resynchronizes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/term"

	"github.com/acolita/slot-clock/internal/adapters/ntpsource"
	"github.com/acolita/slot-clock/internal/adapters/realclock"
	"github.com/acolita/slot-clock/internal/adapters/realdialog"
	"github.com/acolita/slot-clock/internal/adapters/realentropy"
	"github.com/acolita/slot-clock/internal/adapters/realfs"
	"github.com/acolita/slot-clock/internal/adapters/stdoutdevice"
	"github.com/acolita/slot-clock/internal/adapters/tcelldevice"
	"github.com/acolita/slot-clock/internal/config"
	"github.com/acolita/slot-clock/internal/display"
	"github.com/acolita/slot-clock/internal/logging"
	"github.com/acolita/slot-clock/internal/ports"
	"github.com/acolita/slot-clock/internal/reveal"
	"github.com/acolita/slot-clock/internal/runner"
	"github.com/acolita/slot-clock/internal/timesync"
	"github.com/acolita/slot-clock/internal/xorshift"
)

// Version information - set at build time.
var (
	Version   = "0.3.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// device is a display that must be released on exit.
type device interface {
	ports.Device
	Close() error
}

func main() {
	var (
		configPath  string
		offset      int
		server      string
		deviceKind  string
		mode        string
		runInit     bool
		showVersion bool
	)

	flag.StringVar(&configPath, "config", config.DefaultConfigPath(), "Path to configuration file")
	flag.IntVar(&offset, "offset", 0, "UTC offset in whole hours (overrides config)")
	flag.StringVar(&server, "server", "", "NTP server host[:port] (overrides config)")
	flag.StringVar(&deviceKind, "device", "", "Display: 'stdout' or 'tcell' (overrides config)")
	flag.StringVar(&mode, "mode", "", "Scheduled resync: 'silent' or 'animated' (overrides config)")
	flag.BoolVar(&runInit, "init", false, "Run the interactive setup and write the config file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("slot-clock version %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		os.Exit(0)
	}

	fsys := realfs.New()

	cfg, err := config.Load(configPath, fsys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if runInit {
		if err := setup(cfg, configPath, realdialog.New(), fsys); err != nil {
			fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Only flags given on the command line override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "offset":
			cfg.UTCOffsetHours = offset
		case "server":
			cfg.Server = server
		case "device":
			cfg.Device.Kind = deviceKind
		case "mode":
			cfg.Resync.Mode = mode
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logOut, err := logging.Open(cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer logOut.Close()

	shares := sharesTerminal(cfg.Device.Kind,
		term.IsTerminal(int(os.Stdout.Fd())), term.IsTerminal(int(os.Stderr.Fd())))
	logger := logging.Setup(cfg.Logging.Level, logDestination(logOut, cfg.Logging.File, shares))

	logger.Info("starting slot-clock",
		slog.String("version", Version),
		slog.String("server", cfg.Server),
		slog.Int("utc_offset_hours", cfg.UTCOffsetHours),
		slog.String("device", cfg.Device.Kind),
		slog.String("resync_mode", cfg.Resync.Mode),
		slog.Duration("resync_interval", cfg.Resync.Interval),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher, err := config.NewWatcher(configPath, func(*config.Config) {
		logger.Info("config file changed; restart slot-clock to apply it",
			slog.String("path", configPath),
		)
	}, logger)
	if err != nil {
		logger.Debug("config watcher disabled", slog.String("error", err.Error()))
	} else {
		defer watcher.Close()
	}

	dev, err := openDevice(cfg.Device.Kind, cancel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening display: %v\n", err)
		os.Exit(1)
	}
	var closeOnce sync.Once
	closeDevice := func() {
		closeOnce.Do(func() {
			if err := dev.Close(); err != nil {
				logger.Warn("closing display", slog.String("error", err.Error()))
			}
		})
	}
	defer closeDevice()

	fatal := func(err error) {
		closeDevice()
		fmt.Fprintf(os.Stderr, "slot-clock: %v\n", err)
		os.Exit(1)
	}

	random, err := xorshift.Seed(realentropy.New())
	if err != nil {
		fatal(err)
	}

	wall := realclock.New()
	acquirer := timesync.NewAcquirer(ntpsource.New(cfg.NTP.Timeout), wall,
		timesync.WithLogger(logger),
	)
	panel := display.NewPanel(dev)

	animator := reveal.New(reveal.Config{
		Server:   cfg.Server,
		Acquirer: acquirer,
		Wall:     wall,
		Random:   random,
		Panel:    panel,
		Logger:   logger,
	})

	loop := runner.New(runner.Config{
		Server:         cfg.Server,
		OffsetHours:    cfg.UTCOffsetHours,
		Interval:       cfg.Resync.Interval,
		Mode:           runner.Mode(cfg.Resync.Mode),
		AnimateOnStart: cfg.Resync.AnimateOnStart,
		Acquirer:       acquirer,
		Resyncer:       animator,
		Panel:          panel,
		Wall:           wall,
		Logger:         logger,
		Fatal:          fatal,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := loop.Run(ctx); err != nil {
		fatal(err)
	}
}

func openDevice(kind string, onQuit func()) (device, error) {
	switch kind {
	case config.DeviceTcell:
		return tcelldevice.New(onQuit)
	case config.DeviceStdout:
		return stdoutdevice.New(os.Stdout), nil
	default:
		return nil, fmt.Errorf("unknown device %q", kind)
	}
}

// sharesTerminal reports whether stderr lands on the terminal showing the clock.
func sharesTerminal(deviceKind string, stdoutTTY, stderrTTY bool) bool {
	if deviceKind == config.DeviceTcell {
		return stderrTTY
	}
	return stdoutTTY && stderrTTY
}

// logDestination drops logs that would be drawn over the display, unless
// they go to a log file.
func logDestination(out io.Writer, logFile string, onDisplay bool) io.Writer {
	if logFile == "" && onDisplay {
		return io.Discard
	}
	return out
}

// setup runs the interactive form prefilled from cfg and saves the answers.
func setup(cfg *config.Config, path string, dialog ports.DialogProvider, fsys ports.FileSystem) error {
	if path == "" {
		return errors.New("no config path: pass -config")
	}

	answers, err := dialog.ClockConfigForm(cfg.FormData())
	if err != nil {
		return err
	}
	if !answers.Confirmed {
		fmt.Println("Setup cancelled; nothing written.")
		return nil
	}

	if err := cfg.ApplyForm(answers); err != nil {
		return err
	}
	if err := config.Save(cfg, path, fsys); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}
