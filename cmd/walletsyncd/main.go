package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emperorhan/wallet-balance-sync/internal/aggregator"
	"github.com/emperorhan/wallet-balance-sync/internal/bridge"
	"github.com/emperorhan/wallet-balance-sync/internal/config"
	"github.com/emperorhan/wallet-balance-sync/internal/domain/model"
	"github.com/emperorhan/wallet-balance-sync/internal/eventbus"
	"github.com/emperorhan/wallet-balance-sync/internal/resolver"
	"github.com/emperorhan/wallet-balance-sync/internal/store"
	"github.com/emperorhan/wallet-balance-sync/internal/store/postgres"
	redisstore "github.com/emperorhan/wallet-balance-sync/internal/store/redis"
	syncsvc "github.com/emperorhan/wallet-balance-sync/internal/sync"
	"github.com/emperorhan/wallet-balance-sync/internal/tokenlist"
	"github.com/emperorhan/wallet-balance-sync/internal/tracing"
	"github.com/emperorhan/wallet-balance-sync/internal/vault"
	"github.com/emperorhan/wallet-balance-sync/internal/vault/evm"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	catalog, err := config.LoadCatalog(cfg.Networks.File)
	if err != nil {
		logger.Error("failed to load network catalog", "file", cfg.Networks.File, "error", err)
		os.Exit(1)
	}
	wallets, err := config.LoadWallets(cfg.Wallets.File)
	if err != nil {
		logger.Error("failed to load wallet file", "file", cfg.Wallets.File, "error", err)
		os.Exit(1)
	}

	logger.Info("starting walletsyncd",
		"networks", len(catalog.Networks),
		"accounts", len(wallets.Accounts),
		"debounce_window", cfg.Sync.DebounceWindow,
		"poll_interval", cfg.Sync.PollInterval,
	)

	shutdownTracing, err := tracing.Init(context.Background(), "walletsyncd", cfg.Tracing.Endpoint, cfg.Tracing.Insecure, cfg.Tracing.SampleRatio)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()
	if cfg.Tracing.Endpoint != "" {
		logger.Info("tracing enabled", "endpoint", cfg.Tracing.Endpoint)
	}

	var tokenRepo store.TokenRepository
	if cfg.DB.URL != "" {
		db, err := postgres.New(postgres.Config{
			URL:             cfg.DB.URL,
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		tokenRepo = postgres.NewTokenRepo(db)
		logger.Info("custom token persistence enabled")
	}

	var mirror store.SnapshotMirror
	if cfg.Redis.URL != "" {
		m, err := redisstore.NewMirror(cfg.Redis.URL, cfg.Redis.Stream)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer m.Close()
		mirror = m
		logger.Info("snapshot mirror enabled", "stream", cfg.Redis.Stream)
	}

	tokens := tokenlist.NewCatalog(catalog.TopTokens)
	if tokenRepo != nil {
		tokens.WithRepository(tokenRepo)
	}

	directory := store.NewDirectory(wallets.Accounts)

	vaults := vault.NewRegistry()
	for _, network := range catalog.Networks {
		v := evm.New(network, directory, tokens, evm.Options{
			Timeout:                 cfg.Vault.Timeout,
			RPS:                     cfg.Vault.RPS,
			Burst:                   cfg.Vault.Burst,
			BreakerFailureThreshold: cfg.Vault.BreakerFailureThreshold,
			BreakerSuccessThreshold: cfg.Vault.BreakerSuccessThreshold,
			BreakerOpenTimeout:      cfg.Vault.BreakerOpenTimeout,
		}, logger)
		if err := vaults.Register(v); err != nil {
			logger.Error("failed to register vault", "network", network.ID, "error", err)
			os.Exit(1)
		}
	}

	state := store.NewMemory()
	if wallets.ActiveAccountID != "" && wallets.ActiveNetworkID != "" {
		state.SetActive(wallets.ActiveAccountID, wallets.ActiveNetworkID)
	}

	agg := aggregator.New(vaults, resolver.New(vaults), logger)

	service := syncsvc.New(state, state, directory, vaults, catalog.Networks, agg, syncsvc.Options{
		DebounceWindow: cfg.Sync.DebounceWindow,
		TopTokenLimit:  cfg.Sync.TopTokenLimit,
	}, logger)
	if mirror != nil {
		service.WithMirror(mirror)
	}
	if tokenRepo != nil {
		service.WithTokenRepository(tokenRepo)
	}
	defer service.Close()

	bus := eventbus.New()
	br := bridge.New(bus, state, service, logger)
	defer br.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runHealthServer(gCtx, cfg.Server.HealthPort, logger)
	})

	g.Go(func() error {
		runSyncLoop(gCtx, service, wallets, catalog.Networks, cfg.Sync.PollInterval, logger)
		return nil
	})

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("walletsyncd exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("walletsyncd shut down gracefully")
}

// runSyncLoop seeds network token lists once, then keeps every wallet's
// native balances and the active account's token balances fresh.
func runSyncLoop(ctx context.Context, service *syncsvc.Service, wallets *config.WalletCatalog, networks []model.Network, interval time.Duration, logger *slog.Logger) {
	for _, network := range networks {
		if _, err := service.FetchTokens(ctx, syncsvc.FetchTokensParams{NetworkID: network.ID}); err != nil {
			logger.Warn("initial token list fetch failed", "network", network.ID, "error", err)
		}
	}

	walletIDs := make([]string, 0)
	accountsByWallet := make(map[string][]string)
	for _, account := range wallets.Accounts {
		if _, ok := accountsByWallet[account.WalletID]; !ok {
			walletIDs = append(walletIDs, account.WalletID)
		}
		accountsByWallet[account.WalletID] = append(accountsByWallet[account.WalletID], account.ID)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	refresh := func() {
		for _, network := range networks {
			for _, walletID := range walletIDs {
				service.BatchFetchAccountBalances(syncsvc.BatchFetchAccountBalancesParams{
					WalletID:   walletID,
					NetworkID:  network.ID,
					AccountIDs: accountsByWallet[walletID],
				})
			}
		}
		if wallets.ActiveAccountID != "" && wallets.ActiveNetworkID != "" {
			service.FetchAccountTokensDebounced(syncsvc.FetchAccountTokensParams{
				AccountID:   wallets.ActiveAccountID,
				NetworkID:   wallets.ActiveNetworkID,
				WithBalance: true,
			})
		}
	}

	refresh()
	for {
		select {
		case <-ctx.Done():
			logger.Info("sync loop stopped")
			return
		case <-ticker.C:
			refresh()
		}
	}
}

func runHealthServer(ctx context.Context, port int, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Warn("failed to write health response", "error", err)
		}
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Warn("health server shutdown error", "error", err)
		}
	}()

	logger.Info("health server started", "port", port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}
