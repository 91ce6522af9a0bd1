package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	clog "github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/gommon/log"

	"insights/pkg/config"
	"insights/pkg/inference"
	"insights/pkg/insights"
	"insights/pkg/progress"
	"insights/pkg/queue/analysis"
	"insights/pkg/server"
	"insights/pkg/utils"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer done()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Debug {
		log.SetLevel(log.DEBUG)
		clog.SetLevel(clog.DebugLevel)
	}

	if !utils.Exists(cfg.Product.Image) {
		log.Warnf("Product image %s not found, %s will answer 404", cfg.Product.Image, insights.DefaultImage)
	}

	inf, err := newInferencer(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	analyzer := insights.NewLLMAnalyzer(inf)
	analyzer.StructuredOutputs = cfg.Inference.StructuredOutputs

	q := analysis.New(ctx, analyzer, cfg.Queue.Workers, cfg.Queue.Size)
	q.Start()
	defer q.Stop()

	svc := insights.NewService(q, insights.Options{
		CacheTTL:      cfg.Cache.TTL,
		AnalysisImage: cfg.Product.ImageFromAnalysis,
	})
	if err := svc.History().Load(cfg.History.Path); err != nil {
		log.Warnf("Failed to load %s: %v", cfg.History.Path, err)
	} else if n := svc.History().Len(); n > 0 {
		log.Infof("Loaded %d insights from %s", n, cfg.History.Path)
	}
	if err := svc.LoadFailures(cfg.Failures.Path); err != nil {
		log.Warnf("Failed to load %s: %v", cfg.Failures.Path, err)
	}

	srv, err := server.NewServer(ctx, svc, server.Options{
		Progress:     progress.Config{Steps: cfg.Progress.Steps, Delay: cfg.Progress.Delay},
		ImagePath:    cfg.Product.Image,
		HistoryPath:  cfg.History.Path,
		FailuresPath: cfg.Failures.Path,
		Debug:        cfg.Debug,
	})
	if err != nil {
		log.Fatal(err)
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(err)
		}
		close(finishedShutDown)
	}()

	if err := srv.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(err)
		done()
	}
	<-finishedShutDown
}

// newInferencer builds the configured provider. OpenAI without an API key
// falls back to a local OpenAI-compatible server.
func newInferencer(ctx context.Context, cfg *config.Config) (inference.Inferencer, error) {
	p := cfg.Provider(cfg.Inference.Provider)

	switch cfg.Inference.Provider {
	case config.ProviderGrok:
		return inference.NewGrokInferencer(p.APIKey, p.Model), nil
	case config.ProviderGemini:
		return inference.NewGeminiInferencer(ctx, p.APIKey, p.Model)
	case config.ProviderKimi:
		return inference.NewKimiInferencer(p.APIKey, p.Model), nil
	case config.ProviderMoonshot:
		return inference.NewMoonshotInferencer(p.APIKey, p.Model), nil
	}

	openAI := inference.NewOpenAIInferencer(p.APIKey, p.Model)
	switch {
	case p.BaseURL != "":
		openAI.ChangeBaseURL(p.BaseURL)
	case p.APIKey == "":
		openAI.ChangeBaseURL(inference.LocalBaseURL)
		openAI.SetModel("")
		log.Infof("No OPENAI_API_KEY set, using local server at %s", inference.LocalBaseURL)
	}
	log.Infof("Using %s inference (model %q)", openAI.Name(), openAI.Model())
	return openAI, nil
}
