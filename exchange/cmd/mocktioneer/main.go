// Command mocktioneer runs the mock exchange HTTP service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/stackpop/mocktioneer/config"
	"github.com/stackpop/mocktioneer/exchange"
	"github.com/stackpop/mocktioneer/metrics"
	"github.com/stackpop/mocktioneer/verification"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Cannot load config: %v", err)
	}

	logger := cfg.NewLogger()
	logger.Infof("Config initialized (version %s)", exchange.Version)

	m := metrics.NewMetrics()

	cacheOpts := []verification.CacheOption{
		verification.WithTTL(cfg.KeySet.TTL),
		verification.WithScheme(cfg.KeySet.Scheme),
		verification.WithNamespace(cfg.KeySet.Namespace),
		verification.WithObserver(m),
	}
	if cfg.KeySet.SingleFlight {
		cacheOpts = append(cacheOpts, verification.WithSingleFlight())
	}
	keySets := verification.NewKeySetCache(verification.NewHTTPFetcher(cfg.KeySet.FetchTimeout), cacheOpts...)
	logger.WithFields(logrus.Fields{
		"ttl":           cfg.KeySet.TTL.String(),
		"scheme":        cfg.KeySet.Scheme,
		"namespace":     cfg.KeySet.Namespace,
		"single_flight": cfg.KeySet.SingleFlight,
	}).Info("Key set cache initialized")

	server := exchange.NewServer(cfg, logger, m, verification.NewVerifier(keySets))
	if err := server.Run(ctx); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
	logger.Info("Server stopped")
}
