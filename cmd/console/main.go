package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ecombuddha/console-core/internal/adminapi"
	"github.com/ecombuddha/console-core/internal/config"
	"github.com/ecombuddha/console-core/internal/gateway"
	"github.com/ecombuddha/console-core/internal/logging"
	"github.com/ecombuddha/console-core/internal/metrics"
	"github.com/ecombuddha/console-core/internal/poll"
	"github.com/ecombuddha/console-core/internal/session"
	"github.com/ecombuddha/console-core/internal/store"
)

func main() {
	apiURL := flag.String("api", "", "Backend base URL (overrides API_URL)")
	storePath := flag.String("store", "", "Session store file (overrides SESSION_STORE)")
	allowlistPath := flag.String("allowlist", "", "Offline allow-list file (overrides ALLOWLIST_PATH)")
	metricsAddr := flag.String("metrics", "", "Expose Prometheus metrics on this address (e.g. :9090)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}
	if *storePath != "" {
		cfg.Session.StorePath = *storePath
	}
	if *allowlistPath != "" {
		cfg.Session.AllowlistPath = *allowlistPath
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := store.OpenBolt(cfg.Session.StorePath)
	if err != nil {
		logger.Fatal("failed to open session store", zap.Error(err))
	}
	defer db.Close()

	m := metrics.NewDefault()

	// Remote login is the default; an allow-list file switches to the
	// offline variant. Either way the manager is the sole identity writer.
	sessions := session.NewManager(db, nil, logger)
	gw := gateway.New(cfg.API.BaseURL, sessions,
		gateway.WithLogger(logger),
		gateway.WithMetrics(m),
		gateway.WithTimeout(cfg.API.Timeout),
		gateway.WithRateLimit(cfg.API.RateLimit),
	)
	svc := adminapi.NewService(gw)

	if cfg.Session.AllowlistPath != "" {
		allowlist, err := session.LoadAllowlist(cfg.Session.AllowlistPath)
		if err != nil {
			logger.Fatal("failed to load allowlist", zap.Error(err))
		}
		sessions.SetAuthenticator(allowlist)
	} else {
		sessions.SetAuthenticator(adminapi.NewRemoteAuthenticator(svc))
	}

	logger.Info("console core starting",
		zap.String("backend", cfg.API.BaseURL),
		zap.Bool("production", cfg.IsProduction()))

	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 30*time.Second)
	if err := gateway.Probe(probeCtx, cfg.API.BaseURL, cfg.API.Timeout); err != nil {
		logger.Warn("backend health probe failed", zap.Error(err))
	}
	cancelProbe()

	if sess, ok := sessions.Restore(); ok {
		logger.Info("operator session restored",
			zap.String("operator", sess.Identity.DisplayLabel),
			zap.String("role", string(sess.Identity.Role)))
	} else {
		logger.Info("no persisted session, login required")
	}

	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				logger.Warn("metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var refresher *poll.Poller
	if cfg.Poll.Enabled {
		refresher = poll.New(cfg.Poll.Interval, func(ctx context.Context) error {
			if _, ok := sessions.Current(); !ok {
				return nil
			}
			stats, err := svc.Statistics(ctx)
			if err != nil {
				return err
			}
			logger.Info("dashboard refreshed",
				zap.Int("pending_requests", stats.PendingRequests),
				zap.Int("total_users", stats.TotalUsers))
			return nil
		}, logger)
		refresher.Run(ctx)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()
	if refresher != nil {
		refresher.Stop()
	}
}
