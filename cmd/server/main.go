package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage/driver"
	"github.com/mmynk/splitledger/pkg/logging"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(true); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Options{Level: cfg.Level(), Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := driver.Open(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	identity := middleware.NewIdentityResolver(store)

	// Metrics sees every call; auth failures never reach the logging interceptor.
	interceptors := connect.WithInterceptors(
		metrics.Interceptor(),
		middleware.RequireAuth(jwtManager, api.PublicProcedures...),
		middleware.LoggingInterceptor(logger),
	)

	ledgerSvc := service.NewLedgerService(store, identity, service.LedgerConfig{
		Location:         cfg.Location(),
		GroupConcurrency: cfg.GroupConcurrency,
	}, logger)
	recordSvc := service.NewRecordService(store, identity, logger)
	authSvc := service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, identity, store, logger)

	mux := http.NewServeMux()
	mux.Handle(api.NewLedgerServiceHandler(ledgerSvc, interceptors))
	mux.Handle(api.NewRecordServiceHandler(recordSvc, interceptors))
	mux.Handle(api.NewAuthServiceHandler(authSvc, interceptors))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	loggedHandler := loggingMiddleware(corsMiddleware(mux))

	// h2c serves HTTP/2 without TLS for Connect and gRPC clients.
	h2cHandler := h2c.NewHandler(loggedHandler, &http2.Server{})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h2cHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("Connect server starting", "address", server.Addr, "url", "http://localhost"+server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
