// Package api implements app.Runner for the ledger server process.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/shakti-network/shakti-ledger/pkg/app/http"
	"github.com/shakti-network/shakti-ledger/pkg/config"
	"github.com/shakti-network/shakti-ledger/pkg/ledgerstore"
	loanservice "github.com/shakti-network/shakti-ledger/pkg/loan/service"
	"github.com/shakti-network/shakti-ledger/pkg/pgutil"
	"github.com/shakti-network/shakti-ledger/pkg/shg"
	vaultservice "github.com/shakti-network/shakti-ledger/pkg/vault/service"
)

// Server holds cfg to init the ledger server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new ledger server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("ledger server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting ledger server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	var chainClient *shg.Client
	if cfg.Ethereum.Enabled {
		chainClient, err = shg.NewClient(&cfg.Ethereum, logger)
		if err != nil {
			// The chain client only cross-checks mirror writes; the ledger
			// still serves without it.
			logger.Warn("chain client unavailable, running without on-chain reads", zap.Error(err))
			chainClient = nil
		} else {
			defer chainClient.Close()
		}
	}

	store := ledgerstore.NewStore(db)

	var verifier vaultservice.ChainVerifier
	var reader loanservice.ChainReader
	if chainClient != nil {
		verifier = chainClient
		reader = chainClient
	}

	vaultSvc := vaultservice.NewService(store, verifier, logger)
	loanSvc := loanservice.NewService(store, store, reader, cfg.Token, logger)

	router := s.setupRouter(vaultSvc, loanSvc, logger)

	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

func (s *Server) setupRouter(
	vaultSvc vaultservice.Service,
	loanSvc loanservice.Service,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	r.Use(apphttp.RequestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	vaultservice.RegisterRoutes(r, vaultSvc, logger)
	loanservice.RegisterRoutes(r, loanSvc, logger)

	return r
}
