package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/quantumauth-io/quantum-go-utils/log"

	appconfig "github.com/quantumauth-io/crypto-tracker/cmd/crypto-tracker/config"
	"github.com/quantumauth-io/crypto-tracker/internal/assets"
	"github.com/quantumauth-io/crypto-tracker/internal/chains"
	"github.com/quantumauth-io/crypto-tracker/internal/dashboard"
	apphttp "github.com/quantumauth-io/crypto-tracker/internal/http"
	"github.com/quantumauth-io/crypto-tracker/internal/market"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	log.Info("crypto-tracker",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to load .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := appconfig.Load()
	if err != nil {
		log.Fatal("failed to parse config", "error", err)
	}
	if err = cfg.ApplyEnv(); err != nil {
		log.Fatal("invalid environment", "error", err)
	}
	if err = cfg.Validate(); err != nil {
		log.Fatal("invalid config", "error", err)
	}
	if cfg.GeneratedSecret() {
		log.Warn("no session secret configured, using a random one")
	}

	dialCtx, cancelDial := context.WithTimeout(ctx, 15*time.Second)
	chain, err := chains.Dial(dialCtx, cfg.Chain.Network, cfg.Chain.PreferredRPC)
	cancelDial()
	if err != nil {
		log.Error("chain init failed", "error", err)
		return
	}
	defer chain.Close()

	connectors, err := cfg.Connectors()
	if err != nil {
		log.Error("wallet connectors", "error", err)
		return
	}

	native, tokens := assets.BaseNative(), assets.BaseTokens()
	marketClient := market.NewClient(cfg.MarketClientConfig())

	registry := dashboard.NewRegistry(dashboard.Deps{
		Market:        marketClient,
		Balances:      assets.NewReader(chain.RPC(), native, tokens),
		Prices:        marketClient,
		Native:        native,
		Tokens:        tokens,
		Connectors:    connectors,
		PriceInterval: cfg.PriceInterval(),
	}, cfg.SessionIdleTTL())
	defer registry.Close()
	go registry.Run(ctx)

	handler := apphttp.NewHandler(registry, cfg.MiniAppInfo())
	router, err := apphttp.NewRouter(handler, apphttp.RouterConfig{
		AllowOrigins: cfg.CORSOrigins(),
		Sessions:     apphttp.NewSessionIssuer(cfg.Server.SessionSecret, cfg.SecureCookies()),
	})
	if err != nil {
		log.Error("router init failed", "error", err)
		return
	}

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", "addr", addr, "public_url", cfg.Server.PublicURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	} else {
		log.Info("HTTP server gracefully stopped")
	}
}
