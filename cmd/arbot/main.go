package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/arbot/config"
	"github.com/alejandrodnm/arbot/internal/adapters/execution"
	"github.com/alejandrodnm/arbot/internal/adapters/gemini"
	"github.com/alejandrodnm/arbot/internal/adapters/notify"
	"github.com/alejandrodnm/arbot/internal/adapters/polymarket"
	"github.com/alejandrodnm/arbot/internal/adapters/storage"
	"github.com/alejandrodnm/arbot/internal/classify"
	"github.com/alejandrodnm/arbot/internal/execmode"
	"github.com/alejandrodnm/arbot/internal/metrics"
	"github.com/alejandrodnm/arbot/internal/pipeline"
	"github.com/alejandrodnm/arbot/internal/ports"
	"github.com/alejandrodnm/arbot/internal/review"
	"github.com/alejandrodnm/arbot/internal/solver"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one pipeline invocation and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	listen := flag.Bool("listen", false, "run the websocket price-feed listener beside the scheduler")

	// Operaciones sobre el estado persistido; ejecutan y salen.
	status := flag.Bool("status", false, "print metrics snapshot and execution mode")
	queue := flag.Bool("queue", false, "print the manual review queue")
	approve := flag.Int64("approve", 0, "approve the queue item with the given id")
	reject := flag.Int64("reject", 0, "reject the queue item with the given id")
	setMode := flag.String("set-mode", "", "set execution mode: paper|live")
	dryRun := flag.String("dry-run", "", "with -set-mode: force dry-run true|false (default derives from mode)")
	setTrigger := flag.String("set-trigger", "", "set trigger: manual|auto")
	history := flag.Bool("history", false, "print recent pipeline runs")
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

	store, err := storage.NewSQLite(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	audit := storage.NewJSONLAudit(cfg.Storage.AuditPath)
	mode := execmode.NewController(store, audit)
	reviewQueue := review.NewQueue(store, audit)
	aggregator := metrics.NewAggregator(store)
	console := notify.NewConsole()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ops := opsFlags{
		status:     *status,
		queue:      *queue,
		approve:    *approve,
		reject:     *reject,
		setMode:    *setMode,
		setTrigger: *setTrigger,
		history:    *history,
	}
	if *dryRun != "" {
		v, err := strconv.ParseBool(*dryRun)
		if err != nil {
			slog.Error("invalid -dry-run value, want true|false", "value", *dryRun)
			os.Exit(1)
		}
		ops.dryRun = &v
	}
	if ops.any() {
		os.Exit(runOps(ctx, ops, opsDeps{
			mode:    mode,
			queue:   reviewQueue,
			metrics: aggregator,
			runs:    store,
			console: console,
		}))
	}

	client := polymarket.NewClient(cfg.API.GammaBase, cfg.API.CLOBBase)

	var completer ports.Completer
	if cfg.Classifier.APIKey != "" {
		completer = gemini.NewClient(cfg.Classifier.APIKey, cfg.Classifier.Model, cfg.API.GeminiBase)
	} else {
		slog.Warn("GEMINI_API_KEY not set: classifier degraded to cross-product fallback")
	}

	var alertNotifier ports.AlertNotifier = console
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != 0 {
		tg, err := notify.NewTelegram(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			slog.Error("telegram setup failed", "err", err)
			os.Exit(1)
		}
		alertNotifier = tg
	}

	thresholds := metrics.Thresholds{
		DrawdownPctGt:   cfg.Alerts.DrawdownPctGt,
		ExecutionRateLt: cfg.Alerts.ExecutionRateLt,
		Cooldown:        cfg.AlertCooldown(),
	}

	router := pipeline.NewRouter(pipeline.Config{
		MinProfitMarginUSD:    cfg.Risk.MinProfitMarginUSD,
		MinLiquidityPerLegUSD: cfg.Risk.MinLiquidityPerLegUSD,
		RefSizeUSD:            cfg.Risk.RefSizeUSD,
		CapPctOfDepth:         cfg.Risk.CapPctOfDepth,
		MaxPositionUSD:        cfg.Risk.MaxPositionUSD,
		MaxPairsPerRun:        cfg.Pipeline.MaxPairsPerRun,
		MaxEvents:             cfg.Pipeline.MaxEvents,
	}, pipeline.Deps{
		Provider:   client,
		Classifier: classify.New(completer, cfg.Classifier.Temperature, cfg.Classifier.MaxOutputTokens),
		Solver:     solver.New(cfg.SolverTimeout()),
		Metrics:    aggregator,
		Alerts:     metrics.NewEvaluator(thresholds, store, alertNotifier),
		Queue:      reviewQueue,
		Mode:       mode,
		Executor:   execution.NewSelector(execution.NewPaper(), execution.NewLive(client)),
		Runs:       store,
		Audit:      audit,
	})

	slog.Info("arbot starting",
		"config", *configPath,
		"interval", cfg.Interval(),
		"once", *once,
		"mode", mode.Get(ctx).Mode,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return router.Run(gctx, cfg.Interval(), *once)
	})
	if *listen && !*once {
		listener := polymarket.NewListener(cfg.API.WSURL, nil, nil)
		g.Go(func() error {
			return listener.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("arbot exited with error", "err", err)
		os.Exit(1)
	}
	slog.Info("arbot stopped cleanly")
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
