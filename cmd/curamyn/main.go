package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/curamyn/curamyn/internal/config"
	httpapi "github.com/curamyn/curamyn/internal/http"
	"github.com/curamyn/curamyn/internal/lifecycle"
	"github.com/curamyn/curamyn/internal/llm"
	. "github.com/curamyn/curamyn/internal/logging"
	"github.com/curamyn/curamyn/internal/ocr"
	"github.com/curamyn/curamyn/internal/orchestrator"
	"github.com/curamyn/curamyn/internal/response"
	"github.com/curamyn/curamyn/internal/router"
	"github.com/curamyn/curamyn/internal/session"
	"github.com/curamyn/curamyn/internal/storage"
	"github.com/curamyn/curamyn/internal/stt"
	"github.com/curamyn/curamyn/internal/summary"
	"github.com/curamyn/curamyn/internal/tts"
	"github.com/curamyn/curamyn/internal/vision"
)

const version = "0.1.0"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("curamyn %s\n", version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	Init(&Options{
		Level:      cfg.Logging.Level,
		TimeFormat: "15:04:05",
		ShowCaller: true,
	})

	L_info("curamyn %s starting", version)

	// Missing credentials are fatal at startup, never per-request.
	if err := cfg.Validate(); err != nil {
		L_fatal("invalid configuration: %v", err)
	}

	store, err := storage.NewStore(cfg.Store)
	if err != nil {
		L_fatal("failed to open durable store: %v", err)
	}
	defer store.Close()

	provider, err := llm.NewOpenAIProvider(cfg.LLM)
	if err != nil {
		L_fatal("failed to init llm provider: %v", err)
	}

	ocrCfg := cfg.LLM
	ocrCfg.Model = cfg.OCR.Model
	ocrProvider, err := llm.NewOpenAIProvider(ocrCfg)
	if err != nil {
		L_fatal("failed to init ocr provider: %v", err)
	}

	sttProvider, err := stt.New(cfg.STT)
	if err != nil {
		L_fatal("failed to init stt provider: %v", err)
	}

	var classifier vision.Classifier
	if cfg.Vision.Endpoint != "" {
		classifier, err = vision.NewHTTPClassifier(cfg.Vision)
		if err != nil {
			L_fatal("failed to init vision classifier: %v", err)
		}
	} else {
		L_warn("vision endpoint not configured; clinical image analysis disabled")
		classifier = vision.Disabled{}
	}

	var synthesizer tts.Synthesizer
	if synth, err := tts.NewOpenAISynthesizer(cfg.LLM.APIKey, cfg.TTS); err == nil {
		synthesizer = synth
	} else {
		L_warn("tts unavailable: %v", err)
	}

	memoryTTL := time.Duration(cfg.Session.MemoryTTLMinutes) * time.Minute
	durableTTL := time.Duration(cfg.Session.DurableTTLHours) * time.Hour
	sessions := session.NewStore(memoryTTL, store)

	sweeper, err := session.NewSweepService(sessions, store,
		time.Duration(cfg.Session.SweepMinutes)*time.Minute, durableTTL)
	if err != nil {
		L_fatal("failed to init sweep service: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	analyzer := llm.NewAnalyzer(provider)
	summarizer := summary.New(provider)
	rt := router.New(sttProvider, ocr.NewVisionExtractor(ocrProvider), classifier)
	builder := response.NewBuilder(synthesizer)

	orch := orchestrator.New(rt, sessions, store, analyzer, summarizer, store, builder)
	lc := lifecycle.New(sessions, store, summarizer, store, store)

	server, err := httpapi.NewServer(cfg.Server, orch, lc, store)
	if err != nil {
		L_fatal("failed to init http server: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	L_info("curamyn ready", "listen", cfg.Server.Listen)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		L_info("received signal, shutting down", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			L_error("server error: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		L_error("shutdown error: %v", err)
	}

	L_info("curamyn stopped")
}
