package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yannickvh/ctrade/config"
	"github.com/yannickvh/ctrade/internal/adapters/marketdata"
	"github.com/yannickvh/ctrade/internal/adapters/report"
	"github.com/yannickvh/ctrade/internal/engine"
	"github.com/yannickvh/ctrade/internal/ports"
	"github.com/yannickvh/ctrade/internal/strategy"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	strategyName := flag.String("strategy", "sma-cross", "strategy to run (see -list)")
	list := flag.Bool("list", false, "list available strategies and exit")
	fast := flag.Int("fast", 10, "sma-cross fast period")
	slow := flag.Int("slow", 30, "sma-cross slow period")
	size := flag.Float64("size", 1.0, "order size per signal")
	tail := flag.Int("tail", 0, "print the last N equity-curve rows")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	registry := strategy.NewRegistry()
	registry.Register(strategy.NewSMACross(*fast, *slow, *size))
	registry.Register(strategy.NewBuyHold(*size))

	if *list {
		for _, name := range registry.List() {
			fmt.Println(name)
		}
		return
	}

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

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}

	strat, ok := registry.Get(*strategyName)
	if !ok {
		slog.Error("unknown strategy", "strategy", *strategyName, "available", registry.List())
		os.Exit(1)
	}

	slog.Info("ctrade starting",
		"config", *configPath,
		"strategy", strat.Name(),
		"source", cfg.Data.Source,
		"window", fmt.Sprintf("[%d, %d]", cfg.Backtest.StartTS, cfg.Backtest.EndTS),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	data, closeData, err := openData(ctx, cfg)
	if err != nil {
		slog.Error("failed to open market data", "err", err)
		os.Exit(1)
	}
	defer closeData()

	eng, err := engine.NewExecutionEngine(cfg.Backtest.FeeRate, cfg.Backtest.MaxVolumeRatio)
	if err != nil {
		slog.Error("failed to build execution engine", "err", err)
		os.Exit(1)
	}

	runner := engine.NewRunner(data, strat, eng, cfg.Backtest.SeedCash)
	result, err := runner.Run(ctx)
	if err != nil {
		slog.Error("backtest failed", "err", err, "state", runner.State().String())
		os.Exit(1)
	}

	report.NewConsole(os.Stdout, *tail).PrintSummary(runner, result, cfg.Backtest.SeedCash)
}

// openData builds the configured MarketData stream, optionally paced.
func openData(ctx context.Context, cfg *config.Config) (ports.MarketData, func(), error) {
	var (
		data     ports.MarketData
		closefn  = func() {}
		bt       = cfg.Backtest
		err      error
	)

	switch cfg.Data.Source {
	case "sqlite":
		sq, serr := marketdata.NewSQLiteData(ctx, cfg.Data.DSN, cfg.Data.Table, bt.AssetID, bt.StartTS, bt.EndTS)
		if serr != nil {
			return nil, nil, serr
		}
		data = sq
		closefn = func() {
			if cerr := sq.Close(); cerr != nil {
				slog.Warn("closing market data", "err", cerr)
			}
		}
	case "parquet":
		data, err = marketdata.NewParquetData(cfg.Data.Path, bt.AssetID, bt.StartTS, bt.EndTS)
		if err != nil {
			return nil, nil, err
		}
	case "csv":
		data, err = marketdata.LoadCSV(cfg.Data.Path, bt.AssetID, bt.StartTS, bt.EndTS)
		if err != nil {
			return nil, nil, err
		}
	}

	if bt.PaceBarsPerSec > 0 {
		data, err = marketdata.NewPacedData(ctx, data, bt.PaceBarsPerSec)
		if err != nil {
			closefn()
			return nil, nil, err
		}
	}
	return data, closefn, nil
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

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
}
