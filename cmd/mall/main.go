package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"firstpick/internal/adapters/in/http/middleware"
	appcfg "firstpick/internal/infra/config"
	"firstpick/internal/infra/logger"
	mallDI "firstpick/internal/platform/di/mall"
)

// atomicHandler lets the server start before DI has finished.
type atomicHandler struct {
	v atomic.Value // http.Handler
}

func newAtomicHandler(initial http.Handler) *atomicHandler {
	ah := &atomicHandler{}
	ah.v.Store(initial)
	return ah
}

func (h *atomicHandler) Store(next http.Handler) { h.v.Store(next) }

func (h *atomicHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.v.Load().(http.Handler).ServeHTTP(w, r)
}

func main() {
	cfg, err := appcfg.Load(".")
	if err != nil {
		logger.Must("production").Fatal("config load failed", zap.Error(err))
	}
	log := logger.Must(cfg.Env)
	defer func() { _ = log.Sync() }()

	// Listen right away with /healthz only; the full router replaces it
	// once the container is built.
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	switcher := newAtomicHandler(middleware.CORS(cfg.CORSAllowedOrigin)(healthMux))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           switcher,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	var (
		mu        sync.Mutex
		container *mallDI.Container
	)
	go func() {
		initCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		c, err := mallDI.NewContainer(initCtx, cfg, log)
		if err != nil {
			log.Error("container init failed; serving /healthz only", zap.Error(err))
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			_ = c.Close()
			return
		}
		container = c
		switcher.Store(c.Handler())
		log.Info("handler switched to full router")
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}

	mu.Lock()
	defer mu.Unlock()
	if container != nil {
		if err := container.Close(); err != nil {
			log.Error("close resources", zap.Error(err))
		}
	}
	log.Info("server stopped")
}
