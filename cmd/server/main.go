// Command server runs the scheduler as a long-lived process: it loads
// persisted Groups and monitor state, attaches one goroutine per
// enabled monitor, and serves Prometheus metrics plus a /healthz probe
// until interrupted.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/aliyansayz/marketwatch/config"
	"github.com/aliyansayz/marketwatch/internal/dataprovider"
	"github.com/aliyansayz/marketwatch/internal/groupmodel"
	"github.com/aliyansayz/marketwatch/internal/logger"
	"github.com/aliyansayz/marketwatch/internal/metrics"
	"github.com/aliyansayz/marketwatch/internal/model"
	"github.com/aliyansayz/marketwatch/internal/notification"
	"github.com/aliyansayz/marketwatch/internal/orchestrator"
	"github.com/aliyansayz/marketwatch/internal/scheduler"
	"github.com/aliyansayz/marketwatch/internal/store/filestore"
	redisstore "github.com/aliyansayz/marketwatch/internal/store/redis"
	"github.com/aliyansayz/marketwatch/internal/store/sqlite"
	"github.com/aliyansayz/marketwatch/internal/strategy"
)

func main() {
	cfg := config.Load()
	log := logger.Init("marketwatch-server", slog.LevelInfo)

	fstore, err := filestore.New(cfg.FileStoreDir)
	if err != nil {
		log.Error("filestore init failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groups := groupmodel.NewManager(fstore)
	if err := groups.LoadAll(ctx); err != nil {
		log.Error("load groups failed", "error", err)
		os.Exit(1)
	}

	if cfg.GroupsSeedPath != "" {
		seeded, err := config.LoadSeedGroups(cfg.GroupsSeedPath)
		if err != nil {
			log.Error("load seed groups failed", "error", err)
			os.Exit(1)
		}
		for _, g := range seeded {
			if _, exists := groups.Get(g.ID); exists {
				continue
			}
			if err := groups.Create(ctx, g); err != nil {
				log.Error("create seed group failed", "group_id", g.ID, "error", err)
			}
		}
	}

	historyStore, err := sqlite.New(sqlite.WriterConfig{DBPath: cfg.SQLitePath})
	if err != nil {
		log.Error("sqlite init failed", "error", err)
		os.Exit(1)
	}
	defer historyStore.Close()

	m := metrics.NewMetrics()
	health := metrics.NewHealthStatus()

	wsHub := notification.NewWSHub(log)
	notifiers := []model.Notifier{notification.NewLogNotifier(log), wsHub}

	var redisClient *goredis.Client
	var verdictCache model.VerdictCache
	if redisWriter, err := redisstore.New(redisstore.WriterConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}); err != nil {
		log.Warn("redis unavailable, continuing without verdict cache", "error", err)
	} else {
		defer redisWriter.Close()
		redisClient = redisWriter.Client()
		notifiers = append(notifiers, &eventPublishingNotifier{writer: redisWriter})

		breaker := redisstore.NewCircuitBreaker(5, 30*time.Second)
		breaker.OnStateChange = func(from, to redisstore.State) {
			log.Warn("redis circuit breaker transitioned", "from", from, "to", to)
		}
		verdictCache = redisstore.NewBufferedWriter(ctx, redisWriter, breaker, 256)
	}
	notifier := notification.NewMultiNotifier(notifiers...)

	health.StartLivenessChecker(ctx, redisClient, historyStore.DB(), 30*time.Second)

	registry := strategy.NewDefaultRegistry()
	provider := dataprovider.NewSynthetic()
	orch := orchestrator.New(provider, registry, cfg.ProviderTimeout)

	sched := scheduler.New(orch, groups, fstore, historyStore, notifier, log, m, verdictCache)

	metricsServer := metrics.NewServer(cfg.MetricsAddr, health)
	metricsServer.Mux().HandleFunc("/ws", wsHub.HandleWS)
	metricsServer.Start()

	if err := sched.Start(ctx); err != nil {
		log.Error("scheduler start failed", "error", err)
		os.Exit(1)
	}
	health.SetSchedulerRunning(true)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	health.SetSchedulerRunning(false)
	sched.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsServer.Stop(shutdownCtx)
}

// eventPublishingNotifier republishes every emitted Event onto the Redis
// pub/sub channel for subscribers of that channel, without the scheduler
// needing to know Redis exists. WebSocket dashboard clients are fed by
// wsHub directly, not through Redis.
type eventPublishingNotifier struct {
	writer *redisstore.Writer
}

func (n *eventPublishingNotifier) Notify(ctx context.Context, event model.Event) error {
	n.writer.PublishEvent(ctx, event)
	return nil
}
