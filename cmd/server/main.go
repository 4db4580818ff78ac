package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"climb-sync/internal/gateway"
	"climb-sync/internal/nav"
	"climb-sync/internal/platform/config"
	"climb-sync/internal/platform/logger"
	"climb-sync/internal/platform/metrics"
	"climb-sync/internal/upload"
	"climb-sync/internal/vision"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	apiURL := config.GetEnv("VISION_API_URL", "http://localhost:9000/vision-project")
	wsURL := config.GetEnv("VISION_WS_URL", "ws://localhost:9000/vision-project/progress")
	transportKind := config.GetEnv("JOB_TRANSPORT", "poll")
	pollInterval := config.GetEnvMillis("POLL_INTERVAL_MS", upload.DefaultPollInterval)
	seekOffset := config.GetEnvInt("SEEK_OFFSET_MS", int(nav.DefaultSeekOffsetMillis))
	maxUploadMB := config.GetEnvInt("MAX_UPLOAD_MB", 500)
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")

	log := logger.New(logLevel, logFormat)

	client := vision.NewClient(apiURL)

	var transport upload.JobTransport
	switch transportKind {
	case "socket":
		transport = upload.NewSocketTransport(wsURL)
	default:
		transport = upload.NewPollingTransport(client, pollInterval)
	}

	met := metrics.New()
	hub := gateway.NewHub(log, met)
	repo := nav.NewInMemoryRepository()
	controller := nav.NewController(repo, hub, int64(seekOffset))
	hub.SetStatusHandler(func(index int, ready bool) error {
		if ready {
			return controller.PlayerReady(index)
		}
		return controller.PlayerError(index)
	})

	machine := upload.NewMachine(client, transport, log)
	gateway.WireJobEvents(machine, controller, met)

	h := gateway.NewHandler(controller, machine, log, met, int64(maxUploadMB)<<20)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/healthz", h.Health)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		met.Handler(func() {
			met.SetActiveVideos(len(controller.View().Videos))
			met.SetJobProgress(machine.State().Progress)
		}).ServeHTTP(w, req)
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/session", h.GetSession)
		r.Post("/upload", h.Upload)
		r.Route("/selection", func(r chi.Router) {
			r.Post("/limb", h.SelectLimb)
			r.Post("/hold", h.SelectHold)
		})
		r.Post("/players/{index}/status", h.PlayerStatus)
	})
	r.Get("/ws/players", hub.ServeWS)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"vision_api_url", apiURL,
		"job_transport", transportKind,
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	machine.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
