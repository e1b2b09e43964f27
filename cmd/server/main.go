package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okieraised/faceid-gateway/internal/api"
	"github.com/okieraised/faceid-gateway/internal/config"
	"github.com/okieraised/faceid-gateway/internal/observability"
	"github.com/okieraised/faceid-gateway/internal/pipeline"
	"github.com/okieraised/faceid-gateway/internal/triton"
)

// model names this gateway loads at startup; a missing model fails the
// whole process rather than being discovered lazily mid-request.
const (
	modelDetection        = "face_detection_retina"
	modelQuality          = "face_quality"
	modelQualityAssetment = "face_quality_assetment"
	modelIdentification   = "face_identification"
)

var antiSpoofingModels = []string{"miniFAS_4", "miniFAS_2_7", "miniFAS_2", "miniFAS_1"}

func main() {
	configPath := flag.String("config", "conf/config.toml", "path to base config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logger.Level)
	slog.Info("starting faceid gateway", "http_port", cfg.Server.HTTPPort, "triton", cfg.Triton.Address())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := observability.SetupTracer(ctx, cfg.Tracer.URI, cfg.App.Name)
	if err != nil {
		slog.Warn("tracer setup failed — continuing without tracing", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				slog.Warn("tracer shutdown error", "error", err)
			}
		}()
	}

	client, err := triton.Dial(cfg.Triton.Address())
	if err != nil {
		slog.Error("dial inference server", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	detModel, err := triton.LoadModel(startupCtx, client, modelDetection)
	if err != nil {
		slog.Error("load model", "model", modelDetection, "error", err)
		os.Exit(1)
	}
	qualityModel, err := triton.LoadModel(startupCtx, client, modelQuality)
	if err != nil {
		slog.Error("load model", "model", modelQuality, "error", err)
		os.Exit(1)
	}
	qaModel, err := triton.LoadModel(startupCtx, client, modelQualityAssetment)
	if err != nil {
		slog.Error("load model", "model", modelQualityAssetment, "error", err)
		os.Exit(1)
	}
	idModel, err := triton.LoadModel(startupCtx, client, modelIdentification)
	if err != nil {
		slog.Error("load model", "model", modelIdentification, "error", err)
		os.Exit(1)
	}

	spoofModels := make(map[string]*triton.ModelHandle, len(antiSpoofingModels))
	for _, name := range antiSpoofingModels {
		m, err := triton.LoadModel(startupCtx, client, name)
		if err != nil {
			slog.Error("load model", "model", name, "error", err)
			os.Exit(1)
		}
		spoofModels[name] = m
	}

	orchestrator := &pipeline.Orchestrator{
		Detector:          pipeline.NewDetector(client, detModel),
		Quality:           pipeline.NewQualityClassifier(client, qualityModel),
		QualityAssessment: pipeline.NewQualityAssessment(client, qaModel),
		AntiSpoofing:      pipeline.NewAntiSpoofing(client, spoofModels),
		Extractor:         pipeline.NewExtractor(client, idModel),
	}

	router := api.NewRouter(api.RouterConfig{
		APIKey:         cfg.Server.APIKey,
		RequestTimeout: cfg.Server.Timeout(),
		Triton:         client,
		Orchestrator:   orchestrator,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("gateway listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("shutting down gateway...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("gateway stopped")
}
