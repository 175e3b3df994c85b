package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/Asgar77/goodminds-app/internal/agent"
	"github.com/Asgar77/goodminds-app/internal/assessment"
	"github.com/Asgar77/goodminds-app/internal/config"
	"github.com/Asgar77/goodminds-app/internal/database"
	logger "github.com/Asgar77/goodminds-app/internal/logging"
	"github.com/Asgar77/goodminds-app/internal/realtime/bus"
	"github.com/Asgar77/goodminds-app/internal/repository"
	"github.com/Asgar77/goodminds-app/internal/router"
	"github.com/Asgar77/goodminds-app/internal/services"
	"github.com/Asgar77/goodminds-app/internal/speech"
	"github.com/Asgar77/goodminds-app/internal/store"
	"github.com/Asgar77/goodminds-app/internal/voice"
)

func main() {
	projectRoot := flag.String("root", ".", "directory holding config/ and .env")
	flag.Parse()

	cfg, v, err := config.Load(*projectRoot)
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	// Initialize Logger
	log, err := logger.Init(*projectRoot, cfg.Logging)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	config.Conf = cfg
	config.Watch(v, log)

	db, err := database.Open(log, cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}

	changes, err := bus.New(log, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect change bus", zap.Error(err))
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs := store.New(db, log, changes)
	if err := docs.Start(ctx); err != nil {
		log.Fatal("Failed to start document store", zap.Error(err))
	}
	repo := repository.New(db, docs)

	catalogPath := cfg.Assessments.Path
	if !filepath.IsAbs(catalogPath) {
		catalogPath = filepath.Join(*projectRoot, catalogPath)
	}
	catalog, err := assessment.LoadCatalog(catalogPath)
	if err != nil {
		log.Fatal("Failed to load assessments", zap.Error(err))
	}
	log.Info("Assessments loaded", zap.Int("count", catalog.Len()))

	manager, err := newVoiceManager(log, cfg, repo)
	if err != nil {
		log.Fatal("Failed to configure voice sessions", zap.Error(err))
	}

	var scheduler *services.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler = services.NewScheduler(log, repo, services.NewLogNotifier(log))
		if err := scheduler.Start(cfg.Scheduler.Spec); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	r := router.Setup(log, cfg.Server, router.Deps{
		Repo:     repo,
		Catalog:  catalog,
		Attempts: assessment.NewRegistry(),
		Voice:    manager,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("Server listening on http://localhost:" + cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	manager.Shutdown(shutdownCtx)
	if scheduler != nil {
		scheduler.Stop()
	}
	if err := docs.Close(); err != nil {
		log.Error("Failed to close change bus", zap.Error(err))
	}
}

// newVoiceManager wires the agent, speech clients and session store into a
// per-user controller factory. Missing speech credentials disable audio but
// keep text conversations working. The default topic follows config reloads.
func newVoiceManager(log *zap.Logger, cfg *config.Config, repo *repository.Repository) (*voice.Manager, error) {
	remote, err := agent.New(cfg.Agent, cfg.OpenAI)
	if err != nil {
		return nil, err
	}

	synth, err := speech.NewSynthesizer(cfg.Speech, cfg.Agent, cfg.OpenAI)
	if err != nil {
		log.Warn("Speech synthesis disabled", zap.Error(err))
	}
	var recognizer speech.Recognizer
	if cfg.OpenAI.APIKey != "" {
		recognizer = speech.NewWhisper(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.Speech.STTModel, cfg.Speech.Language)
	} else {
		log.Warn("Speech recognition disabled: openai.api_key is not set")
	}

	factory := func(userID string) *voice.Controller {
		var speaker voice.Speaker
		if synth != nil {
			speaker = speech.NewClipSpeaker(synth, cfg.Speech.ClipLimit)
		}
		return voice.NewController(remote, speaker, recognizer, repo, log.With(zap.String("user_id", userID)),
			voice.Options{DefaultTopic: config.Conf.Agent.Topic})
	}
	return voice.NewManager(factory, log), nil
}
