package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/SoarinFerret/CycleWarden/internal/config"
	"github.com/SoarinFerret/CycleWarden/internal/engine"
	"github.com/SoarinFerret/CycleWarden/internal/events"
	"github.com/SoarinFerret/CycleWarden/internal/ipc"
	"github.com/SoarinFerret/CycleWarden/internal/kv"
	"github.com/SoarinFerret/CycleWarden/internal/logging"
	"github.com/SoarinFerret/CycleWarden/internal/loginctl"
	"github.com/SoarinFerret/CycleWarden/internal/metrics"
	"github.com/SoarinFerret/CycleWarden/internal/store"
	"github.com/SoarinFerret/CycleWarden/internal/telegram"
)

func main() {
	// a missing .env is normal
	_ = godotenv.Load()

	configPath, err := resolveConfigPath(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.LoadConfigFromFile(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}

	level, err := logging.Setup(os.Stderr, cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.Info("Using config file", "path", configPath)

	if err := run(configPath, cfg, level); err != nil {
		slog.Error("cyclewardend stopped", logging.Error(err))
		os.Exit(1)
	}
	slog.Info("Shutdown complete")
}

// resolveConfigPath prefers the first argument, then CYCLEWARDEN_CONFIG, then
// the per-user default.
func resolveConfigPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if p := os.Getenv("CYCLEWARDEN_CONFIG"); p != "" {
		return p, nil
	}
	p, err := config.DefaultPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return p, nil
}

func run(configPath string, cfg *config.Config, level *slog.LevelVar) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	backend, err := kv.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}
	defer backend.Close()
	slog.Info("Storage ready", logging.Backend(cfg.Storage.Backend), logging.Key(cfg.Storage.Key))

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var registry *prometheus.Registry
	if cfg.Metrics.Listen != "" {
		registry = prometheus.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.Events.NATSURL != "" {
		p, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
		if err != nil {
			return err
		}
		publisher = p
	}
	defer publisher.Close()

	cycles := store.New(ctx, backend, store.Options{Key: cfg.Storage.Key, Recorder: recorder})

	eng, err := engine.NewEngine(cycles, cfg, engine.Options{Recorder: recorder, Publisher: publisher})
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	var wg sync.WaitGroup
	spawn := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				slog.Error(name+" stopped", logging.Error(err))
			}
		}()
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); cfg.Telegram.Enabled && token != "" {
		bot, err := telegram.NewBot(token, telegram.NewCommands(cycles, cfg.Telegram.AllowedChatIDs))
		if err != nil {
			slog.Error("Telegram disabled", logging.Error(err))
		} else {
			eng.AddNotifier(bot)
			spawn("telegram bot", bot.Run)
		}
	} else if cfg.Telegram.Enabled {
		slog.Warn("Telegram enabled but TELEGRAM_BOT_TOKEN is not set")
	}

	spawn("engine", eng.Run)

	spawn("d-bus service", func(ctx context.Context) error {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("failed to connect to session bus: %w", err)
		}
		defer conn.Close()
		return ipc.Serve(ctx, conn, &ipc.CycleManager{Store: cycles})
	})

	if cfg.Timer.InterruptOnLock {
		spawn("logind watcher", func(ctx context.Context) error {
			slog.Info("Monitoring logind for lock and sleep")
			return loginctl.Watch(ctx, cycles)
		})
	}

	if registry != nil {
		spawn("metrics server", func(ctx context.Context) error {
			return serveMetrics(ctx, cfg.Metrics.Listen, registry)
		})
	}

	watcher, err := config.NewWatcher(configPath, func(next *config.Config) {
		if lvl, err := logging.ParseLevel(next.Log.Level); err == nil {
			level.Set(lvl)
		}
		eng.ApplyConfig(next)
		slog.Info("Config reloaded", "path", configPath)
	})
	if err != nil {
		slog.Warn("Config hot reload disabled", logging.Error(err))
	} else {
		spawn("config watcher", watcher.Run)
	}

	wg.Wait()
	return nil
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
