package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orcamentos/internal/config"
	"orcamentos/internal/infra"
	"orcamentos/internal/router"
	"orcamentos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if rdb == nil {
		log.Warn().Msg("REDIS_URL empty: no product cache, email queue disabled, confirmations kept in memory")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Optional backends ────────────────────────────────────────────────────
	var ext router.Externos

	if cfg.MinioEndpoint != "" {
		imagens, err := infra.NewImagensMinio(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Warn().Err(err).Msg("minio unavailable: item images stay inline")
		} else {
			ext.Imagens = imagens
		}
	}

	var assistenteCB *infra.CircuitBreaker
	if cfg.AssistenteURL != "" {
		assistenteCB = infra.NewCircuitBreaker(infra.DefaultCBConfig())
		ext.Assistente = infra.NewAssistenteClient(cfg.AssistenteURL, cfg.AssistenteTimeout, assistenteCB)
	}

	mailer := infra.NewMailer(cfg)
	if rdb != nil && mailer.Configurado() {
		ext.Despacho = worker.NewDispatcher(rdb)
	}

	svcs := router.NovosServicos(cfg, db, rdb, ext)

	// Worker pool is wired here (composition root) so that it shares the
	// services used by the HTTP layer.
	if ext.Despacho != nil {
		worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, map[string]worker.Processador{
			worker.JobEnvioOrcamento: worker.NewEnvioWorker(svcs.Orcamentos, mailer, cfg.EnvioMaxTentativas),
		})
	}

	r := router.New(ctx, cfg, db, rdb, assistenteCB, svcs)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("orcamentos backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
