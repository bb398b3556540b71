package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/gexscan/config"
	"github.com/alejandrodnm/gexscan/internal/adapters/kalshi"
	"github.com/alejandrodnm/gexscan/internal/adapters/notify"
	"github.com/alejandrodnm/gexscan/internal/adapters/storage"
	"github.com/alejandrodnm/gexscan/internal/adapters/yahoo"
	"github.com/alejandrodnm/gexscan/internal/ports"
	"github.com/alejandrodnm/gexscan/internal/scanner"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	dryRun := flag.Bool("dry-run", false, "single cycle, no persistence")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	tips := flag.Bool("tips", false, "print interpretation notes under the blotter")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("gexscan starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"symbol", cfg.API.ProxySymbol,
		"markets", cfg.Markets.Path,
		"dry_run", *dryRun,
		"once", *once,
	)

	s, cleanup, err := buildScanner(cfg, *dryRun, *once, *tips)
	if err != nil {
		slog.Error("failed to build scanner", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		slog.Error("scanner exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("gexscan stopped cleanly")
}

// buildScanner cablea los adapters con el orquestador. En dry-run no se
// abre el storage: el ciclo se notifica pero no se persiste.
func buildScanner(cfg *config.Config, dryRun, once, tips bool) (*scanner.Scanner, func(), error) {
	loc, err := scanner.SessionLocation()
	if err != nil {
		return nil, nil, err
	}

	data := yahoo.NewClient(cfg.API.QuoteBase, cfg.API.ProxySymbol, loc)
	quotes := kalshi.NewFileProvider(cfg.Markets.Path)
	notifier := notify.NewConsole(tips)

	cleanup := func() {}
	var store ports.Storage
	if !dryRun {
		sq, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		store = sq
		cleanup = func() { sq.Close() }
	}

	scanCfg := scanner.Config{
		ScanInterval:       cfg.ScanInterval(),
		MinEdgeNet:         cfg.Scanner.MinEdgeNet,
		MaxTrades:          cfg.Scanner.MaxTrades,
		ProbClipMin:        cfg.Scanner.ProbClipMin,
		ProbClipMax:        cfg.Scanner.ProbClipMax,
		GEXTiltMaxAbs:      cfg.Scanner.GEXTiltMaxAbs,
		GEXLookaheadDays:   cfg.Scanner.GEXLookaheadDays,
		GEXScale:           cfg.Scanner.GEXScale,
		SPXToSPYRatio:      cfg.Scanner.SPXToSPYRatio,
		FeeK:               cfg.Scanner.FeeK,
		ContractMultiplier: cfg.Scanner.ContractMultiplier,
		DryRun:             dryRun || once,
	}

	s, err := scanner.New(scanCfg, data, quotes, store, notifier)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return s, cleanup, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
