package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-intake-platform/cmd/mainconfig"
	"github.com/wolfman30/clinic-intake-platform/internal/api/router"
	appconfig "github.com/wolfman30/clinic-intake-platform/internal/config"
	"github.com/wolfman30/clinic-intake-platform/internal/http/handlers"
	"github.com/wolfman30/clinic-intake-platform/internal/intake"
	"github.com/wolfman30/clinic-intake-platform/internal/llm"
	"github.com/wolfman30/clinic-intake-platform/internal/notify"
	"github.com/wolfman30/clinic-intake-platform/internal/observability/metrics"
	"github.com/wolfman30/clinic-intake-platform/internal/speech"
	"github.com/wolfman30/clinic-intake-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-intake-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Session store.
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(redisOpts)
	sessionStore := intake.NewRedisSessionStore(rdb, cfg.SessionTTL)

	// Dialogue engine, with the LLM matcher layered on local matching
	// when configured.
	engineOpts := []intake.EngineOption{intake.WithEngineLogger(logger)}
	if cfg.MatcherEnabled {
		if matcherClient := buildMatcherClient(ctx, cfg, awsCfg, logger); matcherClient != nil {
			matcher := intake.NewLLMMatcher(matcherClient, cfg.BedrockModelID, cfg.MatcherTimeout, logger)
			engineOpts = append(engineOpts, intake.WithMatcher(matcher, cfg.MatcherTimeout))
		}
	}
	engine := intake.NewEngine(cfg.Provider1Name, cfg.Provider2Name, engineOpts...)

	// Summary delivery: queue feeds a worker pool that emails staff.
	var publisher *notify.Publisher
	var worker *notify.Worker
	sender := buildEmailSender(cfg, awsCfg, logger)
	if cfg.IntakeNotifyEmail != "" {
		if cfg.UseMemoryQueue || cfg.NotifyQueueURL == "" {
			memQueue := notify.NewMemoryQueue(128)
			publisher = notify.NewPublisher(memQueue, logger)
			worker = notify.NewWorker(memQueue, sender, cfg.IntakeNotifyEmail, logger,
				notify.WithWorkerCount(cfg.WorkerCount))
		} else {
			sqsQueue := notify.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotifyQueueURL)
			publisher = notify.NewPublisher(sqsQueue, logger)
			worker = notify.NewWorker(sqsQueue, sender, cfg.IntakeNotifyEmail, logger,
				notify.WithWorkerCount(cfg.WorkerCount))
		}
	} else {
		logger.Warn("INTAKE_NOTIFY_EMAIL not set, intake summaries disabled")
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	if worker != nil {
		worker.Start(workerCtx)
	}

	// Speech collaborators (optional): recording transcription plus
	// pre-rendered prompt audio.
	var promptAudio *speech.PromptAudioStore
	var transcriber *speech.RecordingTranscriber
	if cfg.OpenAIAPIKey != "" {
		speechSvc := speech.NewServiceFromAPIKey(cfg.OpenAIAPIKey, cfg.TTSVoice, logger)
		transcriber = speech.NewRecordingTranscriber(speechSvc, cfg.TwilioAccountSID, cfg.TwilioAuthToken, logger)
		if cfg.UseRecordedPrompts && cfg.PromptAudioBucket != "" {
			promptAudio = speech.NewPromptAudioStore(
				s3.NewFromConfig(awsCfg), speechSvc, cfg.PromptAudioBucket, cfg.AWSRegion, logger)
		}
	}

	intakeMetrics := metrics.NewIntakeMetrics(nil)

	voiceCfg := handlers.VoiceWebhookConfig{
		Engine:          engine,
		Store:           sessionStore,
		Metrics:         intakeMetrics,
		Logger:          logger,
		TwilioAuthToken: cfg.TwilioAuthToken,
		TransferNumber:  cfg.TwilioTransferNumber,
	}
	if publisher != nil {
		voiceCfg.Publisher = publisher
	}
	if promptAudio != nil {
		voiceCfg.PromptAudio = promptAudio
	}
	if transcriber != nil {
		voiceCfg.Transcriber = transcriber
	}
	voiceHandler := handlers.NewVoiceWebhookHandler(voiceCfg)

	r := router.New(&router.Config{
		Logger:         logger,
		VoiceHandler:   voiceHandler,
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Stop the workers after the server so in-flight calls can still
	// enqueue their summaries.
	stopWorkers()
	if worker != nil {
		worker.Wait()
	}

	logger.Info("server stopped")
}

// buildMatcherClient assembles the LLM used by the option matcher: Bedrock
// primary with Gemini fallback, either alone when only one is configured.
func buildMatcherClient(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) llm.Client {
	var primary llm.Client
	if cfg.BedrockModelID != "" {
		primary = llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg))
	}

	var fallback llm.Client
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Warn("failed to init gemini client", "error", err)
		} else {
			fallback = gemini
		}
	}

	switch {
	case primary != nil && fallback != nil:
		return llm.NewFallbackClient(primary, fallback, logger)
	case primary != nil:
		return primary
	case fallback != nil:
		return fallback
	default:
		return nil
	}
}

func buildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	var senders []notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		senders = append(senders, sg)
	}
	if cfg.SESFromEmail != "" {
		if ses := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); ses != nil {
			senders = append(senders, ses)
		}
	}
	if len(senders) == 0 {
		logger.Warn("no email provider configured, using stub sender")
		return notify.NewStubEmailSender(logger)
	}
	return notify.NewFailoverSender(logger, senders...)
}
